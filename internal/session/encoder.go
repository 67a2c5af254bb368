package session

import (
	"bytes"
	"image"
	"image/jpeg"
)

// encodeFrame serializes a rendered framebuffer for submission.
func encodeFrame(img *image.RGBA, quality int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(256 * 1024)
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
