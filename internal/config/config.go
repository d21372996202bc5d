// Package config loads snapclip-mcp settings from defaults, an optional YAML
// file, and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/snapclip-mcp/internal/camera"
	"github.com/ironsheep/snapclip-mcp/internal/canvas"
	"github.com/ironsheep/snapclip-mcp/internal/engine"
	"github.com/ironsheep/snapclip-mcp/internal/vision"
)

// Environment variables read by Load.
const (
	EnvConfigFile   = "SNAPCLIP_CONFIG"
	EnvLogLevel     = "SNAPCLIP_LOG_LEVEL"
	EnvFacing       = "SNAPCLIP_FACING"
	EnvEnableTouch  = "SNAPCLIP_ENABLE_TOUCH"
	EnvPreviewColor = "SNAPCLIP_PREVIEW_COLOR"
	EnvPreviewWidth = "SNAPCLIP_PREVIEW_WIDTH"
	EnvHTTPAddr     = "SNAPCLIP_HTTP_ADDR"
	EnvVisionURL    = "SNAPCLIP_VISION_URL"
	EnvVisionModel  = "SNAPCLIP_VISION_MODEL"
	EnvAPIKey       = "OPENAI_API_KEY"
	EnvOCRLanguage  = "SNAPCLIP_OCR_LANGUAGE"
	EnvTessdata     = "TESSDATA_PREFIX"
)

// Config is the full server configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Capture  CaptureConfig `yaml:"capture"`
	HTTP     HTTPConfig    `yaml:"http"`
	Vision   VisionConfig  `yaml:"vision"`
	OCR      OCRConfig     `yaml:"ocr"`
}

// CaptureConfig feeds engine.Config.
type CaptureConfig struct {
	Facing       string  `yaml:"facing"`        // environment | user
	EnableTouch  *bool   `yaml:"enable_touch"`
	PreviewColor string  `yaml:"preview_color"` // CSS keyword or #hex
	PreviewWidth float64 `yaml:"preview_width"`
}

// HTTPConfig controls the optional download side door. Empty Addr disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// VisionConfig points at an OpenAI-compatible chat completions endpoint.
type VisionConfig struct {
	URL    string `yaml:"url"`
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"`
}

// OCRConfig selects Tesseract language data.
type OCRConfig struct {
	Language       string `yaml:"language"`
	TessdataPrefix string `yaml:"tessdata_prefix"`
}

// Default returns the built-in configuration.
func Default() *Config {
	touch := true
	return &Config{
		LogLevel: "info",
		Capture: CaptureConfig{
			Facing:       string(camera.FacingEnvironment),
			EnableTouch:  &touch,
			PreviewColor: "green",
			PreviewWidth: 2,
		},
		Vision: VisionConfig{
			URL:   vision.DefaultURL,
			Model: vision.DefaultModel,
		},
		OCR: OCRConfig{
			Language: "eng",
		},
	}
}

// Load builds the configuration using getenv for lookups. A nil getenv uses
// os.Getenv.
func Load(getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := Default()
	if path := getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.LogLevel, EnvLogLevel)
	setString(&c.Capture.Facing, EnvFacing)
	setString(&c.Capture.PreviewColor, EnvPreviewColor)
	setString(&c.HTTP.Addr, EnvHTTPAddr)
	setString(&c.Vision.URL, EnvVisionURL)
	setString(&c.Vision.Model, EnvVisionModel)
	setString(&c.Vision.APIKey, EnvAPIKey)
	setString(&c.OCR.Language, EnvOCRLanguage)
	setString(&c.OCR.TessdataPrefix, EnvTessdata)

	if v := getenv(EnvEnableTouch); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvEnableTouch, v, err)
		}
		c.Capture.EnableTouch = &b
	}
	if v := getenv(EnvPreviewWidth); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPreviewWidth, v, err)
		}
		c.Capture.PreviewWidth = w
	}
	return nil
}

// Validate checks values that the engine cannot default.
func (c *Config) Validate() error {
	if _, err := camera.ParseFacing(c.Capture.Facing); err != nil {
		return err
	}
	if _, err := canvas.ParseColor(c.Capture.PreviewColor); err != nil {
		return fmt.Errorf("preview color: %w", err)
	}
	if c.Capture.PreviewWidth < 0 {
		return fmt.Errorf("preview width must not be negative, got %v", c.Capture.PreviewWidth)
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// Engine converts the capture settings to an engine.Config. Invalid values
// fall back to engine defaults; Load has already rejected them.
func (c *Config) Engine() engine.Config {
	ec := engine.DefaultConfig()
	if f, err := camera.ParseFacing(c.Capture.Facing); err == nil {
		ec.PreferredFacing = f
	}
	if c.Capture.EnableTouch != nil {
		ec.EnableTouch = *c.Capture.EnableTouch
	}
	if col, err := canvas.ParseColor(c.Capture.PreviewColor); err == nil {
		ec.PreviewColor = col
	}
	if c.Capture.PreviewWidth > 0 {
		ec.PreviewWidth = c.Capture.PreviewWidth
	}
	return ec
}

// VisionClient returns a client for the configured endpoint.
func (c *Config) VisionClient() *vision.Client {
	return vision.NewClient(c.Vision.URL, c.Vision.Model, c.Vision.APIKey)
}
