package ocr

import (
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"
)

// edgeThreshold is the Sobel magnitude above which a pixel counts as an edge.
const edgeThreshold = 30

// textWindows are the window sizes scanned for text-like edge density.
var textWindows = []image.Point{
	{80, 25},
	{100, 30},
	{150, 40},
	{200, 50},
}

// edgeMap marks edge pixels and keeps a summed-area table over them.
type edgeMap struct {
	w, h  int
	edges []bool
	sum   []int // (w+1)*(h+1)
}

func newEdgeMap(img image.Image) *edgeMap {
	sobel := effect.Sobel(Preprocess(img, PreprocessOptions{Grayscale: true}))
	b := sobel.Bounds()
	m := &edgeMap{
		w:     b.Dx(),
		h:     b.Dy(),
		edges: make([]bool, b.Dx()*b.Dy()),
		sum:   make([]int, (b.Dx()+1)*(b.Dy()+1)),
	}
	stride := m.w + 1
	for y := 0; y < m.h; y++ {
		row := 0
		for x := 0; x < m.w; x++ {
			// Sobel output is gray, the red channel carries the magnitude
			if sobel.Pix[sobel.PixOffset(x+b.Min.X, y+b.Min.Y)] > edgeThreshold {
				m.edges[y*m.w+x] = true
				row++
			}
			m.sum[(y+1)*stride+x+1] = m.sum[y*stride+x+1] + row
		}
	}
	return m
}

func (m *edgeMap) at(x, y int) bool {
	return m.edges[y*m.w+x]
}

// count returns the number of edge pixels in r.
func (m *edgeMap) count(r image.Rectangle) int {
	stride := m.w + 1
	return m.sum[r.Max.Y*stride+r.Max.X] - m.sum[r.Min.Y*stride+r.Max.X] -
		m.sum[r.Max.Y*stride+r.Min.X] + m.sum[r.Min.Y*stride+r.Min.X]
}

// horizontality is the share of edge runs in r that are horizontal. Lines of
// text produce more horizontal than vertical runs.
func (m *edgeMap) horizontality(r image.Rectangle) float64 {
	var hRuns, vRuns int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		in := false
		for x := r.Min.X; x < r.Max.X; x++ {
			e := m.at(x, y)
			if e && !in {
				hRuns++
			}
			in = e
		}
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		in := false
		for y := r.Min.Y; y < r.Max.Y; y++ {
			e := m.at(x, y)
			if e && !in {
				vRuns++
			}
			in = e
		}
	}
	if hRuns+vRuns == 0 {
		return 0
	}
	return float64(hRuns) / float64(hRuns+vRuns)
}

// DetectTextRegionsByEdges finds likely text blocks from edge density alone.
// It needs no OCR engine and backs DetectTextRegions in builds without cgo.
//
// Windows whose edge density lies between 5% and 40% are scored by how
// horizontal their edges are; overlapping hits are merged.
func DetectTextRegionsByEdges(img image.Image, minConfidence float64) *DetectTextRegionsResult {
	origin := img.Bounds().Min
	m := newEdgeMap(img)

	var hits []TextRegionBox
	for _, win := range textWindows {
		step := image.Pt(win.X/2, win.Y/2)
		for y := 0; y+win.Y <= m.h; y += step.Y {
			for x := 0; x+win.X <= m.w; x += step.X {
				r := image.Rect(x, y, x+win.X, y+win.Y)
				density := float64(m.count(r)) / float64(win.X*win.Y)
				if density < 0.05 || density > 0.4 {
					continue
				}
				confidence := m.horizontality(r) * (1 - math.Abs(density-0.2)/0.2)
				if confidence < minConfidence {
					continue
				}
				hits = append(hits, TextRegionBox{
					Bounds:     boundsFromRect(r.Add(origin)),
					Confidence: math.Round(confidence*1000) / 1000,
				})
			}
		}
	}

	merged := mergeBoxes(hits)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	return &DetectTextRegionsResult{
		Regions: merged,
		Count:   len(merged),
	}
}

// mergeBoxes unions overlapping boxes until no two overlap.
func mergeBoxes(boxes []TextRegionBox) []TextRegionBox {
	merged := append(make([]TextRegionBox, 0, len(boxes)), boxes...)
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(merged); i++ {
			for j := i + 1; j < len(merged); j++ {
				a, b := merged[i].Bounds.Rect(), merged[j].Bounds.Rect()
				if !a.Overlaps(b) {
					continue
				}
				merged[i].Bounds = boundsFromRect(a.Union(b))
				merged[i].Confidence = math.Max(merged[i].Confidence, merged[j].Confidence)
				merged = append(merged[:j], merged[j+1:]...)
				changed = true
				j--
			}
		}
	}
	return merged
}
