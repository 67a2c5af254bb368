package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/shiftwm/tab-client-go/internal/display"
)

// Background is the clear color behind the sprite.
var Background = color.RGBA{R: 255, G: 191, B: 204, A: 255}

// Sprite widths below this fraction of full scale are not worth rasterizing.
const minVisibleScale = 1e-3

// SpriteRenderer draws a single texture centered in the frame target,
// aspect-preserving, with the animation scalar applied as a horizontal
// scale. Negative scalars mirror the sprite.
type SpriteRenderer struct {
	sprite *image.RGBA
	aspect float64
}

// NewSpriteRenderer loads the sprite texture from a PNG file.
func NewSpriteRenderer(path string) (*SpriteRenderer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return NewSpriteRendererFromImage(img)
}

// NewSpriteRendererFromImage builds a renderer around an already-decoded
// texture.
func NewSpriteRendererFromImage(img image.Image) (*SpriteRenderer, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("empty texture %v", b)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(b)
		draw.Draw(rgba, b, img, b.Min, draw.Src)
	}
	return &SpriteRenderer{
		sprite: rgba,
		aspect: float64(b.Dx()) / float64(b.Dy()),
	}, nil
}

// Draw clears the target and paints the sprite centered in it. The sprite
// box is half the target width, aspect-preserving, capped at 60% of the
// target height.
func (r *SpriteRenderer) Draw(target *display.FrameTarget, scale float64) {
	draw.Draw(target.Img, target.Img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	w := float64(target.Width) * 0.5
	h := w / r.aspect
	if h > float64(target.Height)*0.6 {
		h = float64(target.Height) * 0.6
		w = h * r.aspect
	}
	if math.Abs(scale) < minVisibleScale {
		return
	}

	sb := r.sprite.Bounds()
	sw := float64(sb.Dx())
	sh := float64(sb.Dy())
	cx := float64(target.Width) / 2
	cy := float64(target.Height) / 2

	sx := w * scale / sw
	sy := h / sh
	m := f64.Aff3{
		sx, 0, cx - sx*sw/2,
		0, sy, cy - sy*sh/2,
	}
	xdraw.ApproxBiLinear.Transform(target.Img, m, r.sprite, sb, xdraw.Over, nil)
}
