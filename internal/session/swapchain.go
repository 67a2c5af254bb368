package session

import (
	"image"

	"github.com/shiftwm/tab-client-go/internal/display"
)

// swapchain is the client-side framebuffer lease pool for one monitor. A
// buffer moves free -> leased on acquire, leased -> inflight on present, and
// back to free when the server sends buffer-released. At most one buffer is
// leased at a time; re-acquiring before present reuses the outstanding lease.
type swapchain struct {
	targets  []*display.FrameTarget
	inflight []bool
	leased   int
}

func newSwapchain(width, height, depth int) *swapchain {
	c := &swapchain{
		targets:  make([]*display.FrameTarget, depth),
		inflight: make([]bool, depth),
		leased:   -1,
	}
	for i := range c.targets {
		c.targets[i] = &display.FrameTarget{
			Img:    image.NewRGBA(image.Rect(0, 0, width, height)),
			Width:  width,
			Height: height,
			Buffer: i,
		}
	}
	return c
}

// acquire leases the next free buffer, or reports that all are inflight.
func (c *swapchain) acquire() (*display.FrameTarget, bool) {
	if c.leased >= 0 {
		return c.targets[c.leased], true
	}
	for i, busy := range c.inflight {
		if !busy {
			c.leased = i
			return c.targets[i], true
		}
	}
	return nil, false
}

// leasedTarget returns the buffer acquired this tick, if any.
func (c *swapchain) leasedTarget() (*display.FrameTarget, bool) {
	if c.leased < 0 {
		return nil, false
	}
	return c.targets[c.leased], true
}

// submit marks the leased buffer inflight; it stays unavailable until the
// server releases it.
func (c *swapchain) submit() {
	if c.leased < 0 {
		return
	}
	c.inflight[c.leased] = true
	c.leased = -1
}

// release returns a buffer to the free set.
func (c *swapchain) release(buffer int) {
	if buffer < 0 || buffer >= len(c.inflight) {
		return
	}
	c.inflight[buffer] = false
	if c.leased == buffer {
		c.leased = -1
	}
}
