// Package camera supplies frozen frames to the clip engine.
//
// A Source is anything that can hand over the current video frame on demand.
// The engine consumes a frame only when the user freezes it; the source stays
// responsible for device permissions and track lifecycle. FileSource serves
// still images from disk through a FrameCache so the server can be driven
// headless.
//
// Device failures are reported as *DeviceError values named after the
// browser's getUserMedia errors, and Describe turns them into the messages
// shown to the user.
package camera
