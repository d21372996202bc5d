package engine

// Status is a read-only summary of the engine for callers outside the
// gesture loop.
type Status struct {
	State       string      `json:"state"`
	Clipped     bool        `json:"clipped"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Points      int         `json:"points"`
	HasSnapshot bool        `json:"has_snapshot"`
	Display     *DisplayBox `json:"display,omitempty"`
	Facing      string      `json:"facing"`
}

// Status reports the current state.
func (e *Engine) Status() Status {
	size := e.Size()
	st := Status{
		State:       e.state.String(),
		Clipped:     e.IsClipped(),
		Width:       size.X,
		Height:      size.Y,
		Points:      len(e.session.Points()),
		HasSnapshot: e.snap != nil,
		Facing:      string(e.cfg.PreferredFacing),
	}
	if box, ok := e.DisplayBox(); ok {
		st.Display = &box
	}
	return st
}
