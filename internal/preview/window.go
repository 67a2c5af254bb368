package preview

import (
	"image"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// Window is an optional local mirror of the most recently presented frame.
// SetFrame is called from the presentation loop goroutine; the Ebitengine
// callbacks run on the main goroutine, so the frame handoff is mutex-guarded
// and pixel data is copied on the way in (swapchain buffers are reused).
type Window struct {
	mu    sync.Mutex
	frame *image.RGBA
	tex   *ebiten.Image
}

// NewWindow creates a preview window.
func NewWindow() *Window {
	return &Window{}
}

// SetFrame stores a copy of the frame for the next draw.
func (w *Window) SetFrame(img *image.RGBA) {
	if img == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.frame == nil || w.frame.Bounds() != img.Bounds() {
		w.frame = image.NewRGBA(img.Bounds())
	}
	copy(w.frame.Pix, img.Pix)
}

// Run starts the Ebitengine game loop. Must be called from the main
// goroutine. Returns when the window is closed.
func (w *Window) Run() error {
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle("tab client preview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(w)
}

// --- ebiten.Game interface ---

func (w *Window) Update() error {
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	w.mu.Lock()
	frame := w.frame
	var pix []byte
	if frame != nil {
		pix = append([]byte(nil), frame.Pix...)
	}
	w.mu.Unlock()

	if frame == nil {
		return
	}

	fw, fh := frame.Bounds().Dx(), frame.Bounds().Dy()
	if w.tex == nil || w.tex.Bounds().Dx() != fw || w.tex.Bounds().Dy() != fh {
		w.tex = ebiten.NewImage(fw, fh)
	}
	w.tex.WritePixels(pix)

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale, offsetX, offsetY := aspectFitTransform(float64(sw), float64(sh), float64(fw), float64(fh))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(w.tex, op)
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// aspectFitTransform returns scale and offsets to fit the frame into the
// view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}
