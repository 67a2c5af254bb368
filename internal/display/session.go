package display

import "image"

// AcquireResult classifies the outcome of a frame-target request.
type AcquireResult int

const (
	// AcquireOK means a frame target was granted for this tick.
	AcquireOK AcquireResult = iota
	// AcquireNoBuffers means every framebuffer is still leased out. Expected
	// while the server holds presented buffers; the tick is skipped.
	AcquireNoBuffers
	// AcquireError means the request failed for a non-transient reason.
	AcquireError
)

// FrameTarget is a drawable surface granted for a single render+present
// cycle. It must not be retained across ticks; a fresh target is acquired
// every tick.
type FrameTarget struct {
	Img    *image.RGBA
	Width  int
	Height int
	Buffer int
}

// Session is the connection to the display server as the presentation core
// sees it. Pump and NextEvent never block.
type Session interface {
	// Pump advances the session's internal I/O state, moving any messages
	// that have already arrived into the pending event queue.
	Pump()

	// NextEvent pops one pending event, or reports that none remain. The
	// caller owns the returned event and must release it.
	NextEvent() (Event, bool)

	// AcquireFrame requests a frame target for the given monitor. The error
	// is non-nil only when the result is AcquireError.
	AcquireFrame(id MonitorID) (AcquireResult, *FrameTarget, error)

	// Present submits the most recently acquired target for the monitor.
	Present(id MonitorID) error

	// SendReady signals that the client is ready to present. Sent once,
	// after at least one monitor is known.
	SendReady() error

	// MonitorCount and MonitorID expose the session's monitor table for
	// startup discovery, independent of the event stream.
	MonitorCount() int
	MonitorID(i int) MonitorID
}

// Renderer draws one frame into a target, parameterized by the animation
// scalar.
type Renderer interface {
	Draw(target *FrameTarget, scale float64)
}
