package engine

import "image"

// InputKind identifies the device family that produced a pointer event.
type InputKind int

const (
	// Mouse events carry a single coordinate pair.
	Mouse InputKind = iota
	// Touch events carry a list of contacts; only the first is used.
	Touch
)

func (k InputKind) String() string {
	switch k {
	case Mouse:
		return "mouse"
	case Touch:
		return "touch"
	}
	return "unknown"
}

// Contact is one active touch point in client coordinates.
type Contact struct {
	ClientX float64 `json:"client_x"`
	ClientY float64 `json:"client_y"`
}

// PointerEvent is a raw input event in client (viewport) coordinates.
type PointerEvent struct {
	Kind    InputKind
	ClientX float64
	ClientY float64
	Touches []Contact
}

// DisplayBox is the on-screen bounding box of the surface in client
// coordinates, the equivalent of getBoundingClientRect.
type DisplayBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Mapper converts client positions into intrinsic pixel positions.
type Mapper struct {
	// EnableTouch admits touch events. When false they are dropped.
	EnableTouch bool
}

// Map converts ev into pixel space for a surface of the given intrinsic
// size displayed in box.
//
// It reports false only when the event must be ignored (a touch event with
// touch input disabled). A missing display box, a zero-sized box or surface,
// or a touch event without contacts all map to (0,0).
func (m Mapper) Map(ev PointerEvent, box *DisplayBox, intrinsic image.Point) (Point, bool) {
	if ev.Kind == Touch && !m.EnableTouch {
		return Point{}, false
	}
	if box == nil || box.Width <= 0 || box.Height <= 0 || intrinsic.X <= 0 || intrinsic.Y <= 0 {
		return Point{}, true
	}

	clientX, clientY := ev.ClientX, ev.ClientY
	if ev.Kind == Touch {
		if len(ev.Touches) == 0 {
			return Point{}, true
		}
		clientX, clientY = ev.Touches[0].ClientX, ev.Touches[0].ClientY
	}

	scaleX := float64(intrinsic.X) / box.Width
	scaleY := float64(intrinsic.Y) / box.Height
	return Point{
		X: (clientX - box.Left) * scaleX,
		Y: (clientY - box.Top) * scaleY,
	}, true
}
