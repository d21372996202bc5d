package engine

import (
	"image"
	"math"
)

// Point is a coordinate in the surface's intrinsic pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is an ordered list of points. The order defines the path.
type Polygon []Point

// Bounds returns the smallest integer rectangle containing every point, or
// the empty rectangle for an empty polygon. Coordinates beyond ±2^30 are
// clamped.
func (p Polygon) Bounds() image.Rectangle {
	if len(p) == 0 {
		return image.Rectangle{}
	}
	minX, minY := p[0].X, p[0].Y
	maxX, maxY := minX, minY
	for _, pt := range p[1:] {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return image.Rect(
		toInt(math.Floor(minX)), toInt(math.Floor(minY)),
		toInt(math.Ceil(maxX)), toInt(math.Ceil(maxY)),
	)
}

const coordLimit = 1 << 30

func toInt(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(-coordLimit, math.Min(coordLimit, v)))
}
