// Package config provides configuration management for character-clusterer.
//
// Values come from three layers, later layers overriding earlier ones:
// built-in defaults, an optional YAML file, and CLUSTERER_* environment variables.
// The resulting Config is handed to each clustering call; nothing here is global.
//
// Top-level keys match the clusterer command line flags (threshold, vertical-scale,
// max-iterations, metric, top-edge), so the same file serves as the CLI's flag
// config file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/landa/character-clusterer/internal/cluster"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Environment variables read by ApplyEnv.
const (
	EnvThreshold     = "CLUSTERER_THRESHOLD"
	EnvVerticalScale = "CLUSTERER_VERTICAL_SCALE"
	EnvMaxIterations = "CLUSTERER_MAX_ITERATIONS"
	EnvMetric        = "CLUSTERER_METRIC"
	EnvTopEdge       = "CLUSTERER_TOP_EDGE"
	EnvLogLevel      = "CLUSTERER_LOG_LEVEL"
	EnvOCRLanguage   = "CLUSTERER_OCR_LANGUAGE"
)

// Config holds every tunable of the clustering tools.
type Config struct {
	Threshold     float64 `yaml:"threshold"`
	VerticalScale float64 `yaml:"vertical-scale"`
	MaxIterations int     `yaml:"max-iterations"`
	Metric        string  `yaml:"metric"`
	TopEdge       string  `yaml:"top-edge"`
	LogLevel      string  `yaml:"log-level"`

	OCR    OCRConfig    `yaml:"ocr"`
	Render RenderConfig `yaml:"render"`
}

// OCRConfig controls glyph acquisition.
type OCRConfig struct {
	Language      string  `yaml:"language"`
	MinConfidence float64 `yaml:"min-confidence"`

	// Binarize thresholds the image before recognition.
	Binarize bool `yaml:"binarize"`

	// Upscale enlarges small images before recognition; 1 disables it.
	Upscale float64 `yaml:"upscale"`
}

// RenderConfig controls cluster rendering.
type RenderConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Scale  float64 `yaml:"scale"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Threshold:     cluster.DefaultThreshold,
		VerticalScale: cluster.DefaultVerticalScale,
		MaxIterations: cluster.DefaultMaxIterations,
		Metric:        cluster.MetricEdge,
		TopEdge:       cluster.DefaultTopEdge.String(),
		LogLevel:      "info",
		OCR: OCRConfig{
			Language:      "eng",
			MinConfidence: 0.3,
			Binarize:      true,
			Upscale:       1.0,
		},
		Render: RenderConfig{
			Width:  1000,
			Height: 800,
			Scale:  1.0,
		},
	}
}

// DefaultPath returns $HOME/.config/character-clusterer/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "character-clusterer", "config.yaml")
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to the defaults when it
// does not. An empty path means DefaultPath. Environment overrides are applied and
// the result is validated.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CLUSTERER_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvThreshold, err)
		}
		c.Threshold = f
	}
	if v, ok := os.LookupEnv(EnvVerticalScale); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvVerticalScale, err)
		}
		c.VerticalScale = f
	}
	if v, ok := os.LookupEnv(EnvMaxIterations); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvMaxIterations, err)
		}
		c.MaxIterations = n
	}
	if v, ok := os.LookupEnv(EnvMetric); ok {
		c.Metric = v
	}
	if v, ok := os.LookupEnv(EnvTopEdge); ok {
		c.TopEdge = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvOCRLanguage); ok {
		c.OCR.Language = v
	}
	return nil
}

// Validate checks every field and returns an error wrapping ErrInvalid.
func (c *Config) Validate() error {
	if _, err := c.ClusterOptions(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: log level: %v", ErrInvalid, err)
	}
	if c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 1 {
		return fmt.Errorf("%w: ocr min-confidence must be within [0, 1], got %v", ErrInvalid, c.OCR.MinConfidence)
	}
	if c.OCR.Upscale <= 0 || math.IsNaN(c.OCR.Upscale) {
		return fmt.Errorf("%w: ocr upscale must be > 0, got %v", ErrInvalid, c.OCR.Upscale)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("%w: render size must be positive, got %dx%d", ErrInvalid, c.Render.Width, c.Render.Height)
	}
	if c.Render.Scale <= 0 || math.IsNaN(c.Render.Scale) {
		return fmt.Errorf("%w: render scale must be > 0, got %v", ErrInvalid, c.Render.Scale)
	}
	return nil
}

// ClusterOptions converts the clustering fields into cluster.Options.
func (c *Config) ClusterOptions() (cluster.Options, error) {
	topEdge, err := cluster.ParseTopEdgeMode(c.TopEdge)
	if err != nil {
		return cluster.Options{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	metric, err := cluster.NewMetric(c.Metric, c.VerticalScale, topEdge)
	if err != nil {
		return cluster.Options{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	opts := cluster.Options{
		Threshold:     c.Threshold,
		MaxIterations: c.MaxIterations,
		Metric:        metric,
	}
	if err := opts.Validate(); err != nil {
		return cluster.Options{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return opts, nil
}

// Level returns the configured log level, Info when it cannot be parsed.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
