package engine

import "image"

// Snapshot is the pristine pixel buffer captured when a frame is frozen.
// It is never modified after capture.
type Snapshot struct {
	pix *image.RGBA
}

// Size returns the snapshot dimensions.
func (s *Snapshot) Size() image.Point {
	return s.pix.Bounds().Size()
}

// Bounds returns the snapshot rectangle.
func (s *Snapshot) Bounds() image.Rectangle {
	return s.pix.Bounds()
}

// Image returns a copy of the snapshot pixels.
func (s *Snapshot) Image() *image.RGBA {
	out := image.NewRGBA(s.pix.Bounds())
	copy(out.Pix, s.pix.Pix)
	return out
}

// capture stores the current surface as the snapshot, replacing any
// previous one.
func (e *Engine) capture() {
	if e.ctx == nil {
		return
	}
	e.snap = &Snapshot{pix: e.ctx.GetImageData()}
}

// restore writes the snapshot back into the surface verbatim.
func (e *Engine) restore() {
	if e.ctx == nil || e.snap == nil {
		return
	}
	e.ctx.PutImageData(e.snap.pix)
}

// clearSnapshot drops the snapshot.
func (e *Engine) clearSnapshot() {
	e.snap = nil
}
