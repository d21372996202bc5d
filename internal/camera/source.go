package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/ironsheep/snapclip-mcp/internal/imaging"
)

// Facing selects the front or rear camera.
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// ParseFacing accepts "environment", "user", or an empty string for the
// default rear camera.
func ParseFacing(s string) (Facing, error) {
	switch Facing(strings.ToLower(strings.TrimSpace(s))) {
	case "", FacingEnvironment:
		return FacingEnvironment, nil
	case FacingUser:
		return FacingUser, nil
	}
	return "", fmt.Errorf("unknown camera facing %q (want %q or %q)", s, FacingEnvironment, FacingUser)
}

// Source produces video frames.
type Source interface {
	// Frame returns the frame currently on display.
	Frame(ctx context.Context) (image.Image, error)

	// Stop releases the underlying device. Frame fails afterwards.
	Stop()
}

// Error names reported by DeviceError, matching the getUserMedia failures the
// capture page distinguishes.
const (
	ErrNameNotAllowed     = "NotAllowedError"
	ErrNameOverconstraint = "OverconstrainedError"
	ErrNameNotFound       = "NotFoundError"
	ErrNameNotReadable    = "NotReadableError"
)

// DeviceError is a failure to acquire or read the camera.
type DeviceError struct {
	Name string
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Err == nil {
		return e.Name
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// ErrStopped is returned by Frame after Stop.
var ErrStopped = &DeviceError{Name: ErrNameNotReadable, Err: errors.New("camera stopped")}

// Describe returns the user-facing message for a camera failure.
func Describe(err error) string {
	var de *DeviceError
	if !errors.As(err, &de) {
		return fmt.Sprintf("getUserMedia error: %v", err)
	}
	switch de.Name {
	case ErrNameOverconstraint:
		return "The resolution is not supported by your device."
	case ErrNameNotAllowed:
		return "Permissions have not been granted to use your camera, " +
			"you need to allow the page access to your devices in order to capture a frame."
	}
	return fmt.Sprintf("getUserMedia error: %s", de.Name)
}

// FileSource serves a still image from disk as a live frame.
type FileSource struct {
	cache  *imaging.FrameCache
	path   string
	facing Facing

	mu      sync.Mutex
	stopped bool
}

// NewFileSource returns a source streaming the image at path.
func NewFileSource(cache *imaging.FrameCache, path string, facing Facing) *FileSource {
	return &FileSource{cache: cache, path: path, facing: facing}
}

// Facing returns the camera this source stands in for.
func (s *FileSource) Facing() Facing {
	return s.facing
}

// Frame loads the image. Missing files are reported as NotFoundError and
// undecodable ones as NotReadableError.
func (s *FileSource) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return nil, ErrStopped
	}

	img, err := s.cache.Load(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &DeviceError{Name: ErrNameNotFound, Err: err}
		}
		if errors.Is(err, os.ErrPermission) {
			return nil, &DeviceError{Name: ErrNameNotAllowed, Err: err}
		}
		return nil, &DeviceError{Name: ErrNameNotReadable, Err: err}
	}
	return img, nil
}

// Stop marks the source as stopped.
func (s *FileSource) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// StillSource wraps an in-memory image as a Source.
type StillSource struct {
	Image image.Image
}

// Frame returns the wrapped image.
func (s StillSource) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Image == nil {
		return nil, &DeviceError{Name: ErrNameNotReadable, Err: errors.New("no frame")}
	}
	return s.Image, nil
}

// Stop is a no-op.
func (StillSource) Stop() {}
