package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	dimaging "github.com/disintegration/imaging"
)

// Processor normalizes uploaded evidence photos: decode, clamp the longest
// edge, re-encode as JPEG. A failed decode fails the whole batch upstream.
type Processor struct {
	maxEdge int
	quality int
}

// NewProcessor builds a processor with sane bounds.
func NewProcessor(maxEdge, quality int) *Processor {
	if maxEdge <= 0 {
		maxEdge = 1600
	}
	if quality <= 0 || quality > 100 {
		quality = 82
	}
	return &Processor{maxEdge: maxEdge, quality: quality}
}

// Normalize decodes raw image bytes and returns a resized JPEG.
func (p *Processor) Normalize(raw []byte) ([]byte, error) {
	img, err := dimaging.Decode(bytes.NewReader(raw), dimaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = p.clamp(img)

	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Processor) clamp(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= p.maxEdge && h <= p.maxEdge {
		return img
	}
	if w >= h {
		return dimaging.Resize(img, p.maxEdge, 0, dimaging.Lanczos)
	}
	return dimaging.Resize(img, 0, p.maxEdge, dimaging.Lanczos)
}
