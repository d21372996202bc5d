package ocr

import (
	"errors"
	"image"
)

// ErrUnavailable is returned when the binary was built without Tesseract.
var ErrUnavailable = errors.New("tesseract OCR is not available in this build (requires cgo)")

// DefaultLanguage is used when Options.Language is empty.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Rect converts b to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Offset returns b translated by (dx, dy).
func (b Bounds) Offset(dx, dy int) Bounds {
	return Bounds{X1: b.X1 + dx, Y1: b.Y1 + dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

func boundsFromRect(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// TextRegion is a recognised word with its location and confidence.
type TextRegion struct {
	Text string `json:"text"`

	// Confidence ranges from 0.0 to 1.0.
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// OCRResult holds the text recognised in an image.
type OCRResult struct {
	// FullText is all recognised text with Tesseract's line breaks.
	FullText string `json:"full_text"`

	// Regions holds word boxes. It is empty when Tesseract could not report
	// boxes; FullText is still valid then.
	Regions []TextRegion `json:"regions"`

	Language string `json:"language"`
}

// TextRegionBox is a block-level text location without content.
type TextRegionBox struct {
	Bounds     Bounds  `json:"bounds"`
	Confidence float64 `json:"confidence"`
}

// DetectTextRegionsResult lists detected text blocks.
type DetectTextRegionsResult struct {
	Regions []TextRegionBox `json:"regions"`
	Count   int             `json:"count"`
}

// Options configures a recognition run.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "deu".
	Language string

	// TessdataPrefix overrides the tessdata directory when set.
	TessdataPrefix string

	// Preprocess is applied to the image before recognition.
	Preprocess PreprocessOptions
}

func (o Options) language() string {
	if o.Language == "" {
		return DefaultLanguage
	}
	return o.Language
}
