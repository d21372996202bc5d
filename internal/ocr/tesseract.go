//go:build cgo

package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Recognize runs OCR over PNG (or any Tesseract-readable) image bytes.
//
// Word boxes come from the RIL_WORD iterator level with empty words dropped.
// If boxes cannot be extracted the text is still returned with no regions.
func Recognize(data []byte, opts Options) (*OCRResult, error) {
	data, err := prepare(data, opts.Preprocess)
	if err != nil {
		return nil, err
	}

	client, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	result := &OCRResult{
		FullText: strings.TrimSpace(text),
		Regions:  []TextRegion{},
		Language: opts.language(),
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return result, nil
	}
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		result.Regions = append(result.Regions, TextRegion{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds:     boundsFromRect(box.Box),
		})
	}
	return result, nil
}

// DetectTextRegions returns block-level text boxes with confidence of at
// least minConfidence (0.0 to 1.0).
func DetectTextRegions(data []byte, minConfidence float64, opts Options) (*DetectTextRegionsResult, error) {
	data, err := prepare(data, opts.Preprocess)
	if err != nil {
		return nil, err
	}

	client, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_BLOCK)
	if err != nil {
		return nil, fmt.Errorf("failed to get text regions: %w", err)
	}

	regions := make([]TextRegionBox, 0, len(boxes))
	for _, box := range boxes {
		confidence := box.Confidence / 100.0
		if confidence < minConfidence {
			continue
		}
		regions = append(regions, TextRegionBox{
			Bounds:     boundsFromRect(box.Box),
			Confidence: confidence,
		})
	}

	return &DetectTextRegionsResult{
		Regions: regions,
		Count:   len(regions),
	}, nil
}

func newClient(opts Options) (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(opts.language()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return client, nil
}
