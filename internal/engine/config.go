package engine

import (
	"image/color"

	"github.com/ironsheep/snapclip-mcp/internal/camera"
)

// Config holds the construction-time settings of an Engine.
type Config struct {
	// PreferredFacing is the camera the surrounding application should open.
	// The engine only carries it; frame acquisition is the caller's concern.
	PreferredFacing camera.Facing

	// EnableTouch admits touch events alongside mouse events.
	EnableTouch bool

	// PreviewColor and PreviewWidth style the live stroke drawn while a
	// gesture is in progress.
	PreviewColor color.Color
	PreviewWidth float64
}

// DefaultConfig returns the rear camera, touch enabled, and a 2px green
// preview stroke.
func DefaultConfig() Config {
	return Config{
		PreferredFacing: camera.FacingEnvironment,
		EnableTouch:     true,
		PreviewColor:    color.NRGBA{R: 0, G: 128, B: 0, A: 255},
		PreviewWidth:    2,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PreferredFacing == "" {
		c.PreferredFacing = d.PreferredFacing
	}
	if c.PreviewColor == nil {
		c.PreviewColor = d.PreviewColor
	}
	if c.PreviewWidth <= 0 {
		c.PreviewWidth = d.PreviewWidth
	}
	return c
}
