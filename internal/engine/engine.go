package engine

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/snapclip-mcp/internal/canvas"
)

// ErrNoSurface is returned by ExportPixels when no surface is mounted.
var ErrNoSurface = errors.New("no surface mounted")

// State is the engine lifecycle state.
type State int

const (
	// Idle: no snapshot.
	Idle State = iota
	// Armed: snapshot present, no polygon.
	Armed
	// Drawing: a polygon is accumulating.
	Drawing
	// Clipped: a clip has been applied; drawing is disabled until reset.
	Clipped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Drawing:
		return "drawing"
	case Clipped:
		return "clipped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Engine is the polygon capture-and-clip state machine bound to one surface.
type Engine struct {
	cfg     Config
	ctx     canvas.Context
	mapper  Mapper
	display *DisplayBox
	session Session
	snap    *Snapshot
	state   State

	// polygon the surface is currently clipped to
	clip Polygon
}

// New creates an Idle engine drawing through ctx. A nil ctx is allowed; the
// engine ignores every event until Mount is called.
func New(ctx canvas.Context, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:    cfg,
		ctx:    ctx,
		mapper: Mapper{EnableTouch: cfg.EnableTouch},
	}
}

// Mount replaces the render surface and reinitialises the engine.
func (e *Engine) Mount(ctx canvas.Context) {
	e.ctx = ctx
	e.Reinitialize()
}

// Config returns the engine configuration with defaults applied.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetDisplayBox records where the surface is shown on screen. Pointer
// events are mapped through it.
func (e *Engine) SetDisplayBox(box DisplayBox) {
	e.display = &box
}

// DisplayBox returns the current display box, if any.
func (e *Engine) DisplayBox() (DisplayBox, bool) {
	if e.display == nil {
		return DisplayBox{}, false
	}
	return *e.display, true
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// IsClipped reports whether a clip is applied.
func (e *Engine) IsClipped() bool {
	return e.state == Clipped
}

// Size returns the intrinsic surface size, or zero without a surface.
func (e *Engine) Size() image.Point {
	if e.ctx == nil {
		return image.Point{}
	}
	return e.ctx.Size()
}

// Snapshot returns the retained snapshot, or nil in Idle.
func (e *Engine) Snapshot() *Snapshot {
	return e.snap
}

// Points returns the polygon accumulated by the current gesture.
func (e *Engine) Points() Polygon {
	return e.session.Points()
}

// FreezeFrame blits frame onto the surface and captures the result as the
// new snapshot. A nil frame captures the surface as it is. Any polygon or
// clip in progress is discarded.
func (e *Engine) FreezeFrame(frame image.Image) {
	if e.ctx == nil {
		return
	}
	e.session.Reset()
	e.clip = nil
	e.ctx.ResetClip()
	e.ctx.BeginPath()
	if frame != nil {
		full := e.surfaceRect()
		e.ctx.ClearRect(full)
		e.ctx.DrawImage(frame, frame.Bounds(), full)
	}
	e.capture()
	e.state = Armed
}

// PointerDown maps ev and begins a polygon.
func (e *Engine) PointerDown(ev PointerEvent) {
	p, ok := e.mapper.Map(ev, e.display, e.Size())
	if !ok {
		return
	}
	e.Begin(p)
}

// PointerMove maps ev and extends the polygon.
func (e *Engine) PointerMove(ev PointerEvent) {
	if !e.session.Active() {
		return
	}
	p, ok := e.mapper.Map(ev, e.display, e.Size())
	if !ok {
		return
	}
	e.Extend(p)
}

// PointerUp ends the gesture and applies the clip.
func (e *Engine) PointerUp(ev PointerEvent) {
	if ev.Kind == Touch && !e.cfg.EnableTouch {
		return
	}
	e.End()
}

// Begin starts a polygon at p. It is ignored unless a snapshot is present
// and the surface is not clipped. Called while Drawing it abandons the
// previous polygon and wipes its preview.
func (e *Engine) Begin(p Point) {
	if e.state != Armed && e.state != Drawing {
		return
	}
	if e.state == Drawing && e.ctx != nil {
		e.restore()
	}
	e.session.Begin(p)
	e.state = Drawing
}

// Extend appends p to the polygon and redraws the preview stroke. It is a
// no-op when no gesture is in progress.
func (e *Engine) Extend(p Point) {
	if e.state != Drawing || !e.session.Extend(p) {
		return
	}
	e.drawPreview()
}

// End closes the gesture and clips the surface to the polygon. Called in
// Armed it clips to an empty polygon, leaving a fully transparent surface.
func (e *Engine) End() {
	if e.state != Armed && e.state != Drawing {
		return
	}
	e.clipAndCompose(e.session.End())
}

// Reset discards the polygon and any clip and restores the snapshot. It is
// valid in every state.
func (e *Engine) Reset() {
	e.session.Reset()
	e.clip = nil
	if e.ctx == nil {
		e.state = Idle
		return
	}
	e.ctx.ResetClip()
	e.ctx.BeginPath()
	if e.snap == nil {
		e.ctx.ClearRect(e.surfaceRect())
		e.state = Idle
		return
	}
	e.restore()
	e.state = Armed
}

// Reinitialize tears the engine down to Idle: no polygon, no snapshot, an
// unclipped transparent surface.
func (e *Engine) Reinitialize() {
	e.session.Reset()
	e.clip = nil
	e.clearSnapshot()
	e.state = Idle
	if e.ctx == nil {
		return
	}
	e.ctx.ResetClip()
	e.ctx.BeginPath()
	e.ctx.ClearRect(e.surfaceRect())
}

// ClipBounds returns the bounding box of the polygon the surface is clipped
// to, limited to the surface. It is empty unless the engine is Clipped to a
// polygon with at least three points.
func (e *Engine) ClipBounds() image.Rectangle {
	if e.state != Clipped || e.ctx == nil || len(e.clip) < 3 {
		return image.Rectangle{}
	}
	return e.clip.Bounds().Intersect(e.surfaceRect())
}

// Surface returns a copy of the visible pixel buffer, or nil without a
// surface.
func (e *Engine) Surface() *image.RGBA {
	if e.ctx == nil {
		return nil
	}
	return e.ctx.GetImageData()
}

// ExportPixels returns the visible surface encoded as PNG.
func (e *Engine) ExportPixels() ([]byte, error) {
	img := e.Surface()
	if img == nil {
		return nil, ErrNoSurface
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode surface: %w", err)
	}
	return buf.Bytes(), nil
}

// drawPreview repaints the snapshot and strokes the open polyline p0..pn.
func (e *Engine) drawPreview() {
	if e.ctx == nil {
		return
	}
	pts := e.session.Points()
	if len(pts) == 0 {
		return
	}
	if e.snap != nil {
		e.restore()
	} else {
		e.ctx.ClearRect(e.surfaceRect())
	}
	e.tracePath(pts, false)
	e.ctx.Stroke(e.cfg.PreviewColor, e.cfg.PreviewWidth)
}

// clipAndCompose clears the preview, clips to the closed polygon and renders
// the snapshot scaled to the surface's current size inside the clip.
func (e *Engine) clipAndCompose(poly Polygon) {
	if e.ctx == nil || e.snap == nil {
		return
	}
	full := e.surfaceRect()
	e.ctx.ResetClip()
	e.ctx.ClearRect(full)
	e.tracePath(poly, true)
	e.ctx.Clip()
	e.ctx.DrawImage(e.snap.pix, e.snap.Bounds(), full)
	e.clip = append(Polygon(nil), poly...)
	e.state = Clipped
}

func (e *Engine) tracePath(pts Polygon, closed bool) {
	e.ctx.BeginPath()
	for i, p := range pts {
		if i == 0 {
			e.ctx.MoveTo(p.X, p.Y)
		} else {
			e.ctx.LineTo(p.X, p.Y)
		}
	}
	if closed {
		e.ctx.ClosePath()
	}
}

func (e *Engine) surfaceRect() image.Rectangle {
	return image.Rectangle{Max: e.ctx.Size()}
}
