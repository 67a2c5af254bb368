package display

import (
	"context"
	"fmt"
	"time"
)

// Loop is the frame presentation loop. Each tick it tries to acquire a frame
// target for the active monitor, renders and presents on success, and always
// pumps the session and drains events before the next tick. While no monitor
// is active it busy-polls the event stream without rendering.
//
// The loop is single-threaded: it is the only mutator of the registry, the
// spinner, and any acquired frame target.
type Loop struct {
	session  Session
	registry *Registry
	renderer Renderer
	spinner  *Spinner

	now  func() time.Time
	last time.Time
}

// NewLoop wires a presentation loop over the given collaborators.
func NewLoop(s Session, r *Registry, rend Renderer, spin *Spinner) *Loop {
	return &Loop{
		session:  s,
		registry: r,
		renderer: rend,
		spinner:  spin,
		now:      time.Now,
	}
}

// Run drives the loop until the context is cancelled or a fatal session
// error occurs. No-buffers ticks and monitorless stretches are not errors;
// the loop keeps polling indefinitely.
func (l *Loop) Run(ctx context.Context) error {
	l.last = l.now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		id, ok := l.registry.Active()
		if !ok {
			l.session.Pump()
			Drain(l.session, l.registry)
			continue
		}

		res, target, err := l.session.AcquireFrame(id)
		switch res {
		case AcquireOK:
			now := l.now()
			dt := now.Sub(l.last).Seconds()
			l.last = now
			l.spinner.Update(dt)
			l.renderer.Draw(target, l.spinner.Scale())
			if err := l.session.Present(id); err != nil {
				return fmt.Errorf("present %s: %w", id, err)
			}
		case AcquireNoBuffers:
			// Expected while the server holds our buffers. Skip the tick.
		case AcquireError:
			return fmt.Errorf("acquire frame for %s: %w", id, err)
		}

		// Runs every tick, whatever the acquire outcome. If the drain clears
		// the active monitor the next tick falls back to waiting.
		l.session.Pump()
		Drain(l.session, l.registry)
	}
}
