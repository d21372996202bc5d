package engine

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ironsheep/snapclip-mcp/internal/canvas"
)

var (
	red         = color.RGBA{255, 0, 0, 255}
	blue        = color.RGBA{0, 0, 255, 255}
	transparent = color.RGBA{}
)

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// newArmedEngine returns an engine with a frozen solid frame of the given size.
func newArmedEngine(t *testing.T, w, h int, c color.RGBA) *Engine {
	t.Helper()
	e := New(canvas.NewRasterContext(w, h), DefaultConfig())
	e.FreezeFrame(solidFrame(w, h, c))
	if e.State() != Armed {
		t.Fatalf("state after FreezeFrame: got %v, want armed", e.State())
	}
	return e
}

func drawPolygon(e *Engine, pts ...Point) {
	if len(pts) > 0 {
		e.Begin(pts[0])
		for _, p := range pts[1:] {
			e.Extend(p)
		}
	}
	e.End()
}

func decodeExport(t *testing.T, e *Engine) *image.RGBA {
	t.Helper()
	data, err := e.ExportPixels()
	if err != nil {
		t.Fatalf("ExportPixels failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	out := image.NewRGBA(img.Bounds())
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

func assertPixelsEqual(t *testing.T, got, want *image.RGBA) {
	t.Helper()
	if got.Bounds() != want.Bounds() {
		t.Fatalf("bounds: got %v, want %v", got.Bounds(), want.Bounds())
	}
	if !bytes.Equal(got.Pix, want.Pix) {
		t.Fatal("buffers are not pixel-identical")
	}
}

func TestNew_Idle(t *testing.T) {
	e := New(canvas.NewRasterContext(10, 10), Config{})
	if e.State() != Idle {
		t.Errorf("initial state: got %v, want idle", e.State())
	}
	if e.IsClipped() {
		t.Error("new engine should not be clipped")
	}
	if e.Snapshot() != nil {
		t.Error("new engine should have no snapshot")
	}

	cfg := e.Config()
	if cfg.PreviewWidth != 2 || cfg.PreviewColor == nil || cfg.PreferredFacing == "" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestTriangleClip(t *testing.T) {
	e := newArmedEngine(t, 100, 100, red)

	drawPolygon(e, Point{10, 10}, Point{90, 10}, Point{50, 90})

	if !e.IsClipped() {
		t.Fatalf("state: got %v, want clipped", e.State())
	}
	img := decodeExport(t, e)

	for _, p := range []image.Point{{50, 40}, {20, 12}, {80, 12}, {50, 85}} {
		if got := img.RGBAAt(p.X, p.Y); got != red {
			t.Errorf("inside %v: got %v, want red", p, got)
		}
	}
	for _, p := range []image.Point{{0, 0}, {99, 99}, {5, 50}, {95, 50}, {20, 80}, {80, 80}} {
		if got := img.RGBAAt(p.X, p.Y); got != transparent {
			t.Errorf("outside %v: got %v, want transparent", p, got)
		}
	}
}

func TestEndWithoutPoints(t *testing.T) {
	e := newArmedEngine(t, 50, 50, red)

	e.End()

	if e.State() != Clipped {
		t.Fatalf("state: got %v, want clipped", e.State())
	}
	for i, v := range decodeExport(t, e).Pix {
		if v != 0 {
			t.Fatalf("byte %d: got %d, want fully cleared surface", i, v)
		}
	}
}

func TestDegeneratePolygons(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
	}{
		{"single point", []Point{{25, 25}}},
		{"two points", []Point{{5, 5}, {45, 45}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newArmedEngine(t, 50, 50, red)
			drawPolygon(e, tt.pts...)
			if !e.IsClipped() {
				t.Fatalf("state: got %v, want clipped", e.State())
			}
			for i, v := range e.Surface().Pix {
				if v != 0 {
					t.Fatalf("byte %d: got %d, want empty clip", i, v)
				}
			}
		})
	}
}

func TestReset_RestoresSnapshot(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *Engine)
	}{
		{"armed", func(e *Engine) {}},
		{"drawing", func(e *Engine) {
			e.Begin(Point{1, 1})
			e.Extend(Point{30, 5})
		}},
		{"clipped", func(e *Engine) {
			drawPolygon(e, Point{10, 10}, Point{30, 10}, Point{20, 30})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newArmedEngine(t, 40, 40, red)
			want := e.Snapshot().Image()

			tt.setup(e)
			e.Reset()

			if e.IsClipped() {
				t.Error("IsClipped should be false after Reset")
			}
			if e.State() != Armed {
				t.Errorf("state: got %v, want armed", e.State())
			}
			if len(e.Points()) != 0 {
				t.Errorf("points after Reset: %v", e.Points())
			}
			assertPixelsEqual(t, e.Surface(), want)
		})
	}
}

func TestReset_Idle(t *testing.T) {
	e := New(canvas.NewRasterContext(10, 10), DefaultConfig())
	e.Reset()
	if e.State() != Idle {
		t.Errorf("state: got %v, want idle", e.State())
	}

	var nilCtx *Engine = New(nil, DefaultConfig())
	nilCtx.Reset()
	if nilCtx.State() != Idle {
		t.Errorf("state without surface: got %v, want idle", nilCtx.State())
	}
}

func TestReset_Repeated(t *testing.T) {
	e := newArmedEngine(t, 20, 20, blue)
	want := e.Snapshot().Image()

	drawPolygon(e, Point{0, 0}, Point{10, 0}, Point{10, 10})
	e.Reset()
	e.Reset()

	assertPixelsEqual(t, e.Surface(), want)
}

func TestCaptureRestoreRoundTrip(t *testing.T) {
	e := New(canvas.NewRasterContext(30, 20), DefaultConfig())
	frame := solidFrame(30, 20, blue)
	frame.SetRGBA(4, 4, color.RGBA{10, 200, 30, 255})
	frame.SetRGBA(12, 7, color.RGBA{0, 0, 0, 128})

	e.FreezeFrame(frame)
	captured := e.Surface()
	e.Reset()

	assertPixelsEqual(t, e.Surface(), captured)
	assertPixelsEqual(t, e.Snapshot().Image(), captured)
}

func TestFreezeWhileClipped(t *testing.T) {
	e := newArmedEngine(t, 40, 40, red)
	drawPolygon(e, Point{0, 0}, Point{20, 0}, Point{0, 20})

	e.FreezeFrame(solidFrame(40, 40, blue))
	if e.State() != Armed {
		t.Fatalf("state: got %v, want armed", e.State())
	}
	assertPixelsEqual(t, e.Surface(), solidFrame(40, 40, blue))

	drawPolygon(e, Point{0, 0}, Point{20, 0}, Point{0, 20})
	e.Reset()
	assertPixelsEqual(t, e.Surface(), solidFrame(40, 40, blue))
}

func TestFreezeFrame_ScalesFrame(t *testing.T) {
	e := New(canvas.NewRasterContext(40, 30), DefaultConfig())
	e.FreezeFrame(solidFrame(8, 6, red))

	if got := e.Snapshot().Size(); got != image.Pt(40, 30) {
		t.Errorf("snapshot size: got %v, want 40x30", got)
	}
	if got := e.Surface().RGBAAt(39, 29); got != red {
		t.Errorf("scaled corner: got %v, want red", got)
	}
}

func TestFreezeFrame_NilCapturesSurface(t *testing.T) {
	ctx := canvas.NewRasterContext(10, 10)
	ctx.PutImageData(solidFrame(10, 10, blue))

	e := New(ctx, DefaultConfig())
	e.FreezeFrame(nil)

	if e.State() != Armed {
		t.Fatalf("state: got %v, want armed", e.State())
	}
	assertPixelsEqual(t, e.Snapshot().Image(), solidFrame(10, 10, blue))
}

func TestDrawingDisabledWhileClipped(t *testing.T) {
	e := newArmedEngine(t, 40, 40, red)
	drawPolygon(e, Point{0, 0}, Point{40, 0}, Point{40, 40}, Point{0, 40})
	before := e.Surface()

	e.Begin(Point{5, 5})
	e.Extend(Point{10, 10})
	e.End()

	if e.State() != Clipped {
		t.Errorf("state: got %v, want clipped", e.State())
	}
	if len(e.Points()) != 0 {
		t.Errorf("points accumulated while clipped: %v", e.Points())
	}
	assertPixelsEqual(t, e.Surface(), before)
}

func TestIdleIgnoresGestures(t *testing.T) {
	e := New(canvas.NewRasterContext(20, 20), DefaultConfig())
	e.Begin(Point{1, 1})
	e.Extend(Point{5, 5})
	e.End()

	if e.State() != Idle {
		t.Errorf("state: got %v, want idle", e.State())
	}
	if len(e.Points()) != 0 {
		t.Errorf("points: got %v, want none", e.Points())
	}
}

func TestExtendWhileEmpty_NoPreview(t *testing.T) {
	e := newArmedEngine(t, 30, 30, red)
	before := e.Surface()

	e.Extend(Point{5, 5})
	e.Extend(Point{25, 25})

	if e.State() != Armed {
		t.Errorf("state: got %v, want armed", e.State())
	}
	if len(e.Points()) != 0 {
		t.Errorf("points: got %v, want none", e.Points())
	}
	assertPixelsEqual(t, e.Surface(), before)
}

func TestPreviewStroke(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreviewColor = color.NRGBA{0, 255, 0, 255}
	cfg.PreviewWidth = 4
	e := New(canvas.NewRasterContext(60, 60), cfg)
	e.FreezeFrame(solidFrame(60, 60, blue))

	e.Begin(Point{10, 30})
	if got := e.Surface().RGBAAt(30, 30); got != blue {
		t.Errorf("Begin alone should not draw, got %v", got)
	}

	e.Extend(Point{50, 30})
	img := e.Surface()
	if got := img.RGBAAt(30, 30); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("preview pixel: got %v, want green", got)
	}
	if got := img.RGBAAt(30, 10); got != blue {
		t.Errorf("pixel away from stroke: got %v, want blue", got)
	}

	// the preview never reaches the snapshot or the final clip
	if got := e.Snapshot().Image().RGBAAt(30, 30); got != blue {
		t.Errorf("snapshot modified by preview: %v", got)
	}
	e.Extend(Point{50, 50})
	e.Extend(Point{10, 50})
	e.End()
	if got := e.Surface().RGBAAt(30, 30); got != blue {
		t.Errorf("preview residue after clip at (30,30): got %v, want blue", got)
	}
}

func TestBeginWhileDrawing_WipesPreview(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreviewColor = color.NRGBA{0, 255, 0, 255}
	cfg.PreviewWidth = 4
	e := New(canvas.NewRasterContext(60, 60), cfg)
	e.FreezeFrame(solidFrame(60, 60, blue))

	e.Begin(Point{10, 30})
	e.Extend(Point{50, 30})
	if got := e.Surface().RGBAAt(30, 30); got == blue {
		t.Fatal("preview stroke not drawn")
	}

	e.Begin(Point{10, 10})
	if got := e.Surface().RGBAAt(30, 30); got != blue {
		t.Errorf("old preview after restart: got %v, want blue", got)
	}
	if e.State() != Drawing || len(e.Points()) != 1 {
		t.Errorf("after restart: state %v, %d points", e.State(), len(e.Points()))
	}
}

func TestClipBounds(t *testing.T) {
	e := newArmedEngine(t, 100, 100, red)
	if got := e.ClipBounds(); !got.Empty() {
		t.Errorf("armed: got %v, want empty", got)
	}

	drawPolygon(e, Point{10, 10}, Point{90, 10}, Point{50, 90})
	if got := e.ClipBounds(); got != image.Rect(10, 10, 90, 90) {
		t.Errorf("triangle: got %v", got)
	}

	e.Reset()
	if got := e.ClipBounds(); !got.Empty() {
		t.Errorf("after reset: got %v, want empty", got)
	}

	drawPolygon(e, Point{-20, 50}, Point{150, 50}, Point{50, 200})
	if got := e.ClipBounds(); got != image.Rect(0, 50, 100, 100) {
		t.Errorf("polygon past the edge: got %v", got)
	}

	e.Reset()
	drawPolygon(e, Point{10, 10}, Point{90, 90})
	if !e.IsClipped() {
		t.Fatal("two-point polygon should still clip")
	}
	if got := e.ClipBounds(); !got.Empty() {
		t.Errorf("degenerate: got %v, want empty", got)
	}
}

func TestClip_UsesExactPath(t *testing.T) {
	e := newArmedEngine(t, 100, 100, red)
	// square in the top-left quadrant traced clockwise
	drawPolygon(e, Point{0, 0}, Point{50, 0}, Point{50, 50}, Point{0, 50})

	img := e.Surface()
	if got := img.RGBAAt(25, 25); got != red {
		t.Errorf("inside square: got %v, want red", got)
	}
	if got := img.RGBAAt(49, 49); got != red {
		t.Errorf("inner corner: got %v, want red", got)
	}
	if got := img.RGBAAt(50, 50); got != transparent {
		t.Errorf("outer corner: got %v, want transparent", got)
	}
	if got := img.RGBAAt(75, 25); got != transparent {
		t.Errorf("outside square: got %v, want transparent", got)
	}
}

func TestPointerEvents_ScaledDisplay(t *testing.T) {
	e := newArmedEngine(t, 100, 100, red)
	e.SetDisplayBox(DisplayBox{Left: 100, Top: 50, Width: 50, Height: 50})

	e.PointerDown(PointerEvent{Kind: Mouse, ClientX: 100, ClientY: 50})
	e.PointerMove(PointerEvent{Kind: Mouse, ClientX: 125, ClientY: 50})
	e.PointerMove(PointerEvent{Kind: Mouse, ClientX: 125, ClientY: 75})
	e.PointerMove(PointerEvent{Kind: Mouse, ClientX: 100, ClientY: 75})

	want := Polygon{{0, 0}, {50, 0}, {50, 50}, {0, 50}}
	got := e.Points()
	if len(got) != len(want) {
		t.Fatalf("points: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d: got %v, want %v", i, got[i], want[i])
		}
	}

	e.PointerUp(PointerEvent{Kind: Mouse})
	if !e.IsClipped() {
		t.Fatal("PointerUp should clip")
	}
	if got := e.Surface().RGBAAt(25, 25); got != red {
		t.Errorf("inside: got %v, want red", got)
	}
	if got := e.Surface().RGBAAt(75, 75); got != transparent {
		t.Errorf("outside: got %v, want transparent", got)
	}
}

func TestPointerMove_WithoutPress(t *testing.T) {
	e := newArmedEngine(t, 20, 20, red)
	e.SetDisplayBox(DisplayBox{Width: 20, Height: 20})
	e.PointerMove(PointerEvent{Kind: Mouse, ClientX: 5, ClientY: 5})

	if e.State() != Armed || len(e.Points()) != 0 {
		t.Errorf("move without press changed state: %v %v", e.State(), e.Points())
	}
}

func TestTouchEvents(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		e := newArmedEngine(t, 100, 100, red)
		e.SetDisplayBox(DisplayBox{Width: 100, Height: 100})
		e.PointerDown(PointerEvent{Kind: Touch, Touches: []Contact{{10, 10}, {90, 90}}})
		e.PointerMove(PointerEvent{Kind: Touch, Touches: []Contact{{90, 10}}})
		e.PointerMove(PointerEvent{Kind: Touch, Touches: []Contact{{50, 90}}})

		want := Polygon{{10, 10}, {90, 10}, {50, 90}}
		got := e.Points()
		if len(got) != 3 {
			t.Fatalf("points: got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("point %d: got %v, want %v", i, got[i], want[i])
			}
		}
		e.PointerUp(PointerEvent{Kind: Touch})
		if !e.IsClipped() {
			t.Error("touch end should clip")
		}
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EnableTouch = false
		e := New(canvas.NewRasterContext(100, 100), cfg)
		e.FreezeFrame(solidFrame(100, 100, red))
		e.SetDisplayBox(DisplayBox{Width: 100, Height: 100})

		e.PointerDown(PointerEvent{Kind: Touch, Touches: []Contact{{10, 10}}})
		e.PointerUp(PointerEvent{Kind: Touch})
		if e.State() != Armed {
			t.Errorf("touch should be ignored, state %v", e.State())
		}
	})
}

func TestPointerDown_NoDisplayBox(t *testing.T) {
	e := newArmedEngine(t, 20, 20, red)
	e.PointerDown(PointerEvent{Kind: Mouse, ClientX: 15, ClientY: 15})

	got := e.Points()
	if len(got) != 1 || got[0] != (Point{}) {
		t.Errorf("point without display box: got %v, want [(0,0)]", got)
	}
}

func TestReinitialize(t *testing.T) {
	e := newArmedEngine(t, 20, 20, red)
	drawPolygon(e, Point{0, 0}, Point{10, 0}, Point{10, 10})

	e.Reinitialize()

	if e.State() != Idle {
		t.Errorf("state: got %v, want idle", e.State())
	}
	if e.Snapshot() != nil {
		t.Error("snapshot should be dropped")
	}
	for _, v := range e.Surface().Pix {
		if v != 0 {
			t.Fatal("surface should be cleared")
		}
	}

	// the surface must be unclipped again
	e.FreezeFrame(solidFrame(20, 20, blue))
	assertPixelsEqual(t, e.Surface(), solidFrame(20, 20, blue))
}

func TestMount(t *testing.T) {
	e := New(nil, DefaultConfig())
	e.FreezeFrame(solidFrame(10, 10, red))
	if e.State() != Idle {
		t.Fatalf("engine without surface should stay idle, got %v", e.State())
	}
	if _, err := e.ExportPixels(); !errors.Is(err, ErrNoSurface) {
		t.Errorf("ExportPixels without surface: got %v, want ErrNoSurface", err)
	}

	e.Mount(canvas.NewRasterContext(10, 10))
	e.FreezeFrame(solidFrame(10, 10, red))
	if e.State() != Armed {
		t.Errorf("state after Mount and freeze: got %v, want armed", e.State())
	}
	if e.Size() != image.Pt(10, 10) {
		t.Errorf("Size: got %v, want 10x10", e.Size())
	}
}

func TestClipAndCompose_ScalesSnapshot(t *testing.T) {
	// a surface remounted at a different resolution still renders the whole
	// snapshot inside the clip
	e := newArmedEngine(t, 20, 20, red)
	snap := e.snap

	ctx := canvas.NewRasterContext(80, 80)
	e.ctx = ctx
	e.snap = snap
	e.state = Armed
	drawPolygon(e, Point{0, 0}, Point{80, 0}, Point{80, 80}, Point{0, 80})

	img := e.Surface()
	for _, p := range []image.Point{{0, 0}, {40, 40}, {79, 79}} {
		if got := img.RGBAAt(p.X, p.Y); got != red {
			t.Errorf("scaled pixel %v: got %v, want red", p, got)
		}
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		Idle:     "idle",
		Armed:    "armed",
		Drawing:  "drawing",
		Clipped:  "clipped",
		State(7): "State(7)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("String(%d): got %q, want %q", int(s), got, want)
		}
	}
}

func TestStatus(t *testing.T) {
	e := New(canvas.NewRasterContext(40, 30), Config{})
	st := e.Status()
	if st.State != "idle" || st.HasSnapshot || st.Clipped || st.Display != nil {
		t.Errorf("idle status: got %+v", st)
	}
	if st.Width != 40 || st.Height != 30 || st.Facing != "environment" {
		t.Errorf("size/facing: got %+v", st)
	}

	e.SetDisplayBox(DisplayBox{Width: 40, Height: 30})
	e.FreezeFrame(nil)
	e.Begin(Point{1, 1})
	e.Extend(Point{5, 1})

	st = e.Status()
	if st.State != "drawing" || st.Points != 2 || !st.HasSnapshot || st.Display == nil {
		t.Errorf("drawing status: got %+v", st)
	}
}
