package engine

// Session accumulates the points of one freehand gesture.
//
// It is Empty until Begin and returns to Empty on End or Reset. The zero
// value is an Empty session.
type Session struct {
	points Polygon
	active bool
}

// Begin starts a new polygon at p, discarding any unfinished one.
func (s *Session) Begin(p Point) {
	s.points = Polygon{p}
	s.active = true
}

// Extend appends p and reports whether it was accepted. Points arriving
// while the session is Empty are dropped.
func (s *Session) Extend(p Point) bool {
	if !s.active {
		return false
	}
	s.points = append(s.points, p)
	return true
}

// End hands over the accumulated polygon and empties the session. The
// returned slice is never reused by the session.
func (s *Session) End() Polygon {
	poly := s.points
	s.points = nil
	s.active = false
	return poly
}

// Reset empties the session unconditionally.
func (s *Session) Reset() {
	s.points = nil
	s.active = false
}

// Active reports whether a gesture is in progress.
func (s *Session) Active() bool {
	return s.active
}

// Points returns a copy of the points accumulated so far.
func (s *Session) Points() Polygon {
	return append(Polygon(nil), s.points...)
}
