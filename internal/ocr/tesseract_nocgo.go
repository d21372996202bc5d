//go:build !cgo

package ocr

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Recognize always fails without cgo.
func Recognize(data []byte, opts Options) (*OCRResult, error) {
	return nil, ErrUnavailable
}

// DetectTextRegions falls back to DetectTextRegionsByEdges without cgo.
func DetectTextRegions(data []byte, minConfidence float64, opts Options) (*DetectTextRegionsResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no image data")
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return DetectTextRegionsByEdges(img, minConfidence), nil
}
