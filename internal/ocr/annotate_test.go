package ocr

import (
	"image"
	"image/color"
	"testing"
)

func TestAnnotateBoxes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 40))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	regions := []TextRegion{
		{Text: "hi", Confidence: 0.9, Bounds: Bounds{X1: 10, Y1: 10, X2: 50, Y2: 30}},
	}

	out := AnnotateBoxes(img, regions, nil, 2)

	if got := out.RGBAAt(10, 20); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("box edge: got %v, want red", got)
	}
	if got := out.RGBAAt(30, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("box interior: got %v, want white", got)
	}
	if got := img.RGBAAt(10, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Error("AnnotateBoxes modified its input")
	}
}

func TestAnnotateBoxes_NoRegions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.SetRGBA(3, 3, color.RGBA{1, 2, 3, 255})

	out := AnnotateBoxes(img, nil, color.Black, 0)
	if string(out.Pix) != string(img.Pix) {
		t.Error("no regions should leave pixels unchanged")
	}
}

func TestBounds(t *testing.T) {
	b := Bounds{X1: 1, Y1: 2, X2: 11, Y2: 12}
	if got := b.Rect(); got != image.Rect(1, 2, 11, 12) {
		t.Errorf("Rect: got %v", got)
	}
	if got := b.Offset(5, -2); got != (Bounds{X1: 6, Y1: 0, X2: 16, Y2: 10}) {
		t.Errorf("Offset: got %+v", got)
	}
}

func TestOptionsLanguage(t *testing.T) {
	if got := (Options{}).language(); got != DefaultLanguage {
		t.Errorf("default language: got %q", got)
	}
	if got := (Options{Language: "deu"}).language(); got != "deu" {
		t.Errorf("language: got %q", got)
	}
}
