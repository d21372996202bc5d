package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ExportOptions controls how a surface is exported.
type ExportOptions struct {
	// CropToContent trims the image to Region, or when Region is empty to
	// the bounding box of its non-transparent pixels.
	CropToContent bool

	// Region is the crop rectangle used by CropToContent, usually the
	// bounding box of the clip polygon.
	Region image.Rectangle

	// Scale resizes the result. Zero or 1 leaves the size unchanged.
	Scale float64
}

// ExportResult holds an encoded surface.
type ExportResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	OffsetX     int    `json:"offset_x"`
	OffsetY     int    `json:"offset_y"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// PNG holds the raw encoded bytes.
	PNG []byte `json:"-"`
}

// DataURL returns the result as a data: URL.
func (r *ExportResult) DataURL() string {
	return "data:" + r.MimeType + ";base64," + r.ImageBase64
}

// Export encodes img as PNG according to opts.
//
// Cropping an image with no visible pixels is an error: there is nothing to
// send downstream.
func Export(img image.Image, opts ExportOptions) (*ExportResult, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to export")
	}
	if opts.Scale < 0 {
		return nil, fmt.Errorf("invalid scale %v: must be positive", opts.Scale)
	}

	out := img
	offset := img.Bounds().Min
	if opts.CropToContent {
		content := opts.Region.Canon().Intersect(img.Bounds())
		if opts.Region.Empty() {
			content = ContentBounds(img)
		}
		if content.Empty() {
			return nil, fmt.Errorf("image has no visible content to crop to")
		}
		out = imaging.Crop(img, content)
		offset = content.Min
	}

	if opts.Scale != 0 && opts.Scale != 1.0 {
		w := int(float64(out.Bounds().Dx()) * opts.Scale)
		h := int(float64(out.Bounds().Dy()) * opts.Scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %v reduces image to nothing", opts.Scale)
		}
		out = imaging.Resize(out, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &ExportResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		OffsetX:     offset.X,
		OffsetY:     offset.Y,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		PNG:         buf.Bytes(),
	}, nil
}

// ContentBounds returns the bounding box of all pixels with non-zero alpha,
// or the empty rectangle when the image is fully transparent.
func ContentBounds(img image.Image) image.Rectangle {
	b := img.Bounds()
	var r image.Rectangle
	found := false
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a == 0 {
				continue
			}
			px := image.Rect(x, y, x+1, y+1)
			if !found {
				r, found = px, true
			} else {
				r = r.Union(px)
			}
		}
	}
	return r
}
