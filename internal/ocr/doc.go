// Package ocr extracts text from clipped surfaces with Tesseract.
//
// The engine exports the clipped surface as PNG bytes; Recognize feeds those
// bytes to Tesseract (via gosseract/v2) and returns the full text together
// with word boxes and confidences. DetectTextRegions returns block-level boxes
// only. AnnotateBoxes draws recognised boxes back onto a copy of the image so
// a user can see what was read.
//
// # Preprocessing
//
// Clipped surfaces are transparent outside the polygon, which Tesseract reads
// as black. Preprocess flattens the image onto white and can optionally
// convert to grayscale, boost contrast, and binarise (using bild) before
// recognition.
//
// # Build Requirements
//
// gosseract links against libtesseract and therefore needs cgo. Builds with
// CGO_ENABLED=0 compile, but Recognize and DetectTextRegions return
// ErrUnavailable.
//
// Language data must be installed for each language used ("eng" by default).
// Options.TessdataPrefix points Tesseract at a non-standard tessdata
// directory.
package ocr
