package tesseract

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// encodePNG serializes img for the engine; PNG keeps binarized pixels exact.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
