package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// PreprocessOptions controls image cleanup before recognition.
// The zero value only flattens transparency onto white.
type PreprocessOptions struct {
	Grayscale bool

	// Contrast is a relative change in the range -1 to 1. Zero leaves
	// contrast untouched.
	Contrast float64

	// Threshold binarises the image at this luminance level when non-zero.
	// It implies Grayscale.
	Threshold uint8
}

func (o PreprocessOptions) isZero() bool {
	return !o.Grayscale && o.Contrast == 0 && o.Threshold == 0
}

// Preprocess flattens img onto white and applies the configured filters.
func Preprocess(img image.Image, opts PreprocessOptions) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	var out image.Image = imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)

	if opts.isZero() {
		return out
	}
	if opts.Contrast != 0 {
		out = adjust.Contrast(out, opts.Contrast)
	}
	if opts.Threshold != 0 {
		return segment.Threshold(out, opts.Threshold)
	}
	if opts.Grayscale {
		out = effect.Grayscale(out)
	}
	return out
}

// prepare decodes data, preprocesses it and re-encodes it as PNG.
func prepare(data []byte, opts PreprocessOptions) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no image data")
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, Preprocess(img, opts), imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
