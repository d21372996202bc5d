// Package canvas provides the 2D raster context the clip engine draws through.
//
// The Context interface is the minimal capability set the engine needs from a
// render surface: region clearing, scaled image blits, straight-line path
// construction, clip-to-path, stroking, and whole-buffer pixel reads and
// writes. RasterContext implements it over an in-memory *image.RGBA so the
// engine can run headless, in tests, or behind any transport. Path
// rasterization and stroking use gg's software renderer.
//
// # Coordinate System
//
// All coordinates are intrinsic pixel coordinates of the backing buffer with
// (0,0) at the top-left corner. Path coordinates are floating point; a pixel
// (x, y) covers the square [x, x+1) × [y, y+1).
//
// # Clipping
//
// Clip intersects the current clip region with the interior of the current
// path (non-zero winding). The path is closed before it is filled and is
// treated as a single outline. ClearRect,
// DrawImage and Stroke honour the clip region. PutImageData does not: it
// replaces the buffer verbatim, exactly like putImageData on an HTML canvas.
//
// # Thread Safety
//
// A RasterContext is not safe for concurrent use.
package canvas
