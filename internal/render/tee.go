package render

import (
	"image"

	"github.com/shiftwm/tab-client-go/internal/display"
)

// FrameSink receives a copy of each rendered frame.
type FrameSink interface {
	SetFrame(img *image.RGBA)
}

type teeRenderer struct {
	inner display.Renderer
	sink  FrameSink
}

// Tee wraps a renderer so every drawn frame is also handed to sink, for a
// local preview of what gets presented.
func Tee(inner display.Renderer, sink FrameSink) display.Renderer {
	return &teeRenderer{inner: inner, sink: sink}
}

func (t *teeRenderer) Draw(target *display.FrameTarget, scale float64) {
	t.inner.Draw(target, scale)
	t.sink.SetFrame(target.Img)
}
