// Package imaging loads captured frames and encodes clipped surfaces for
// export.
//
// Frames are decoded from PNG, JPEG, or GIF files and kept in a FrameCache so
// a client can freeze the same frame repeatedly without re-reading it. Export
// turns a surface into PNG bytes, optionally cropped to the area that survived
// clipping and rescaled, ready for download or for an OCR or vision service.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. Regions
// are half-open: Min is inclusive and Max exclusive.
//
// # Thread Safety
//
// FrameCache is safe for concurrent use. Export does not mutate its input.
package imaging
