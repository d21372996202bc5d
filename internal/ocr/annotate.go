package ocr

import (
	"image"
	"image/color"

	"github.com/ironsheep/snapclip-mcp/internal/canvas"
)

// AnnotateBoxes returns a copy of img with an outline drawn around every
// region. A nil col draws in red; width <= 0 uses 2 pixels.
func AnnotateBoxes(img image.Image, regions []TextRegion, col color.Color, width float64) *image.RGBA {
	b := img.Bounds()
	c := canvas.NewRasterContext(b.Dx(), b.Dy())
	c.DrawImage(img, b, c.Bounds())

	if col == nil {
		col = color.NRGBA{R: 255, A: 255}
	}
	if width <= 0 {
		width = 2
	}

	for _, r := range regions {
		x1, y1 := float64(r.Bounds.X1-b.Min.X), float64(r.Bounds.Y1-b.Min.Y)
		x2, y2 := float64(r.Bounds.X2-b.Min.X), float64(r.Bounds.Y2-b.Min.Y)
		c.BeginPath()
		c.MoveTo(x1, y1)
		c.LineTo(x2, y1)
		c.LineTo(x2, y2)
		c.LineTo(x1, y2)
		c.ClosePath()
		c.Stroke(col, width)
	}
	return c.GetImageData()
}
