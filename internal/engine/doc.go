// Package engine implements the polygon capture-and-clip engine.
//
// An Engine owns one render surface (a canvas.Context injected at
// construction) and drives it through four cooperating parts:
//
//   - Mapper translates pointer and touch positions from display space into
//     the surface's intrinsic pixel space.
//   - Session accumulates the freehand polygon of a single gesture and asks
//     for a live preview stroke on every extension.
//   - Clip-and-compose closes the polygon on gesture end, clips the surface
//     to it and re-renders the retained snapshot inside the clip.
//   - The snapshot lifecycle captures the pristine buffer on every frozen
//     frame and restores it on reset.
//
// # States
//
//	Idle ──FreezeFrame──▶ Armed ──Begin──▶ Drawing ──End──▶ Clipped
//	  ▲                     ▲                                  │
//	  └──Reinitialize───────┴──────────────Reset───────────────┘
//
// End is also honoured in Armed, where it clips to an empty polygon.
//
// # Defensive No-ops
//
// Events that arrive before a surface is mounted, before a frame has been
// frozen, or while the surface is clipped are ignored. None of these paths
// return errors: they come from UI event ordering the engine does not control.
//
// # Concurrency
//
// An Engine is a synchronous state machine and is not safe for concurrent
// use. Callers that read the surface from other goroutines must serialise
// access themselves.
package engine
