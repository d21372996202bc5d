package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
)

// Context is the render surface capability consumed by the clip engine.
//
// Any canvas-like API can satisfy it; RasterContext is the in-memory
// implementation used by the server.
type Context interface {
	// Size returns the intrinsic pixel dimensions of the surface.
	Size() image.Point

	// ClearRect sets every pixel of r inside the clip region to transparent black.
	ClearRect(r image.Rectangle)

	// DrawImage composites the sr portion of src over the dr portion of the
	// surface, scaling when the two rectangles differ in size.
	DrawImage(src image.Image, sr, dr image.Rectangle)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()

	// Clip intersects the clip region with the interior of the current path.
	Clip()

	// ResetClip removes any clip region.
	ResetClip()

	// Stroke draws the current path as lines of the given width.
	Stroke(c color.Color, width float64)

	// GetImageData returns a copy of the full pixel buffer.
	GetImageData() *image.RGBA

	// PutImageData writes img into the surface at the origin, ignoring the
	// clip region.
	PutImageData(img *image.RGBA)
}

// maxCoord bounds path coordinates handed to the rasterizer.
const maxCoord = 1 << 20

// RasterContext is a Context backed by an *image.RGBA.
//
// Paths are built and rasterized by a gg.Context of the same size; the
// resulting coverage is composited onto the buffer.
type RasterContext struct {
	buf    *image.RGBA
	dc     *gg.Context
	points int
	clip   *image.Alpha // nil when unclipped
}

var _ Context = (*RasterContext)(nil)

// NewRasterContext creates a transparent surface of the given size.
// Negative dimensions are treated as zero.
func NewRasterContext(width, height int) *RasterContext {
	width = max(width, 0)
	height = max(height, 0)
	return &RasterContext{
		buf: image.NewRGBA(image.Rect(0, 0, width, height)),
		dc:  gg.NewContext(width, height),
	}
}

// Size returns the buffer dimensions.
func (c *RasterContext) Size() image.Point {
	return c.buf.Bounds().Size()
}

// Bounds returns the buffer rectangle, always anchored at the origin.
func (c *RasterContext) Bounds() image.Rectangle {
	return c.buf.Bounds()
}

// ClearRect erases r. Inside a clip region only the covered fraction of each
// pixel is erased.
func (c *RasterContext) ClearRect(r image.Rectangle) {
	r = r.Canon().Intersect(c.buf.Bounds())
	if r.Empty() {
		return
	}
	if c.clip == nil {
		draw.Draw(c.buf, r, image.Transparent, image.Point{}, draw.Src)
		return
	}
	draw.DrawMask(c.buf, r, image.Transparent, image.Point{}, c.clip, r.Min, draw.Src)
}

// DrawImage blits src into the surface with source-over compositing.
//
// When sr and dr have different sizes the source region is resampled to the
// destination size first, so a snapshot captured at one resolution can be
// rendered onto a surface of another.
func (c *RasterContext) DrawImage(src image.Image, sr, dr image.Rectangle) {
	if src == nil {
		return
	}
	sr = sr.Canon().Intersect(src.Bounds())
	dr = dr.Canon()
	if sr.Empty() || dr.Empty() {
		return
	}

	var scaled image.Image
	var sp image.Point
	if sr.Size() == dr.Size() {
		scaled, sp = src, sr.Min
	} else {
		scaled = imaging.Resize(imaging.Crop(src, sr), dr.Dx(), dr.Dy(), imaging.Linear)
	}

	target := dr.Intersect(c.buf.Bounds())
	if target.Empty() {
		return
	}
	sp = sp.Add(target.Min.Sub(dr.Min))
	c.composite(target, scaled, sp)
}

// BeginPath discards the current path.
func (c *RasterContext) BeginPath() {
	c.dc.ClearPath()
	c.points = 0
}

// MoveTo starts a new subpath at (x, y).
func (c *RasterContext) MoveTo(x, y float64) {
	c.dc.MoveTo(bound(x), bound(y))
	c.points++
}

// LineTo adds a straight segment to (x, y).
func (c *RasterContext) LineTo(x, y float64) {
	c.dc.LineTo(bound(x), bound(y))
	c.points++
}

// ClosePath closes the current subpath back to its first point.
func (c *RasterContext) ClosePath() {
	c.dc.ClosePath()
}

// Clip intersects the clip region with the filled interior of the current
// path, closing it first. A path with fewer than three points produces an
// empty clip region.
func (c *RasterContext) Clip() {
	mask := image.NewAlpha(c.buf.Bounds())
	if c.points >= 3 && !mask.Rect.Empty() {
		c.dc.ClosePath()
		m := c.dc.AsMask()
		copy(mask.Pix, m.Data())
	}
	if c.clip != nil {
		both := image.NewAlpha(mask.Rect)
		draw.DrawMask(both, both.Rect, mask, image.Point{}, c.clip, image.Point{}, draw.Src)
		mask = both
	}
	c.clip = mask
}

// ResetClip removes the clip region.
func (c *RasterContext) ResetClip() {
	c.clip = nil
}

// Clipped reports whether a clip region is active.
func (c *RasterContext) Clipped() bool {
	return c.clip != nil
}

// Stroke paints the outline of the current path. The path is kept.
func (c *RasterContext) Stroke(col color.Color, width float64) {
	if col == nil || width <= 0 || c.buf.Rect.Empty() {
		return
	}
	c.dc.Clear()
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	if err := c.dc.StrokePreserve(); err != nil {
		return
	}
	c.composite(c.buf.Bounds(), straightAlpha(c.dc.Image()), image.Point{})
}

// GetImageData returns a copy of the buffer.
func (c *RasterContext) GetImageData() *image.RGBA {
	out := image.NewRGBA(c.buf.Bounds())
	copy(out.Pix, c.buf.Pix)
	return out
}

// PutImageData copies img into the buffer at the origin. Pixels of img that
// fall outside the buffer are dropped.
func (c *RasterContext) PutImageData(img *image.RGBA) {
	if img == nil {
		return
	}
	b := img.Bounds()
	dr := image.Rectangle{Max: b.Size()}.Intersect(c.buf.Bounds())
	if dr.Empty() {
		return
	}
	draw.Draw(c.buf, dr, img, b.Min, draw.Src)
}

// composite draws src over r, masked by the clip region when one is set.
func (c *RasterContext) composite(r image.Rectangle, src image.Image, sp image.Point) {
	if c.clip == nil {
		draw.Draw(c.buf, r, src, sp, draw.Over)
		return
	}
	draw.DrawMask(c.buf, r, src, sp, c.clip, r.Min, draw.Over)
}

// straightAlpha reinterprets a gg image, whose pixels are not
// premultiplied, as NRGBA.
func straightAlpha(img image.Image) image.Image {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		return img
	}
	return &image.NRGBA{Pix: rgba.Pix, Stride: rgba.Stride, Rect: rgba.Rect}
}

func bound(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-maxCoord, math.Min(maxCoord, v))
}
