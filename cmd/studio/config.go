package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/studio"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigDir  = ".studio"
	defaultConfigName = "config.yaml"
)

var errConfigNotFound = errors.New("studio config not found")

// Config is the on-disk editor configuration. Zero fields keep the
// library defaults.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Stage struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"stage"`

	Zoom struct {
		Min     float64 `yaml:"min"`
		Max     float64 `yaml:"max"`
		Step    float64 `yaml:"step"`
		Default float64 `yaml:"default"`
		PanX    float64 `yaml:"pan_x"`
		PanY    float64 `yaml:"pan_y"`
	} `yaml:"zoom"`

	MinSize       float64 `yaml:"min_size"`
	PreviewCap    float64 `yaml:"preview_cap"`
	FrameBox      float64 `yaml:"frame_box"`
	ExportScale   float64 `yaml:"export_scale"`
	CacheMB       int     `yaml:"cache_mb"`
	DecodeWorkers int     `yaml:"decode_workers"`
	MaxPixels     int     `yaml:"max_pixels"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return defaultConfigName
	}
	return filepath.Join(home, defaultConfigDir, defaultConfigName)
}

// resolveConfigPath picks the explicit path, then $STUDIO_CONFIG, then the
// default location. The bool reports whether the file is expected to exist.
func resolveConfigPath(explicit string) (string, bool) {
	if strings.TrimSpace(explicit) != "" {
		return expandUserPath(explicit), true
	}
	if env := strings.TrimSpace(os.Getenv("STUDIO_CONFIG")); env != "" {
		return expandUserPath(env), true
	}
	p := defaultConfigPath()
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return p, false
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil && strings.TrimSpace(home) != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return path
}

// loadConfig reads path, expanding environment variables before parsing.
func loadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errConfigNotFound
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Zoom.Min < 0 || c.Zoom.Max < 0 {
		return fmt.Errorf("invalid zoom bounds [%v, %v]", c.Zoom.Min, c.Zoom.Max)
	}
	if lo, hi := c.zoomBounds(); lo > hi {
		return fmt.Errorf("invalid zoom bounds [%v, %v]", lo, hi)
	}
	if c.Zoom.Step != 0 && c.Zoom.Step <= 1 {
		return fmt.Errorf("zoom step must be greater than 1, got %v", c.Zoom.Step)
	}
	if c.ExportScale < 0 {
		return fmt.Errorf("export_scale must be positive, got %v", c.ExportScale)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// zoomBounds returns the zoom range with unset ends filled from the
// editor defaults.
func (c Config) zoomBounds() (lo, hi float64) {
	lo, hi = c.Zoom.Min, c.Zoom.Max
	if lo == 0 {
		lo = studio.DefaultMinZoom
	}
	if hi == 0 {
		hi = studio.DefaultMaxZoom
	}
	return lo, hi
}

// Options converts the configuration to editor options.
func (c Config) Options() []studio.Option {
	var opts []studio.Option
	if c.Stage.Width > 0 && c.Stage.Height > 0 {
		opts = append(opts, studio.WithStageSize(c.Stage.Width, c.Stage.Height))
	}
	if c.Zoom.Min > 0 || c.Zoom.Max > 0 {
		opts = append(opts, studio.WithZoomBounds(c.zoomBounds()))
	}
	if c.Zoom.Step > 0 {
		opts = append(opts, studio.WithZoomStep(c.Zoom.Step))
	}
	if c.Zoom.Default > 0 || c.Zoom.PanX != 0 || c.Zoom.PanY != 0 {
		z := c.Zoom.Default
		if z == 0 {
			z = 1
		}
		opts = append(opts, studio.WithDefaultView(gg.Pt(c.Zoom.PanX, c.Zoom.PanY), z))
	}
	if c.MinSize > 0 {
		opts = append(opts, studio.WithMinSize(c.MinSize))
	}
	if c.PreviewCap > 0 {
		opts = append(opts, studio.WithPreviewCap(c.PreviewCap))
	}
	if c.FrameBox > 0 {
		opts = append(opts, studio.WithFrameBox(c.FrameBox, c.FrameBox))
	}
	if c.ExportScale > 0 {
		opts = append(opts, studio.WithExportScale(c.ExportScale))
	}
	if c.CacheMB > 0 {
		opts = append(opts, studio.WithCacheBudget(c.CacheMB))
	}
	if c.DecodeWorkers > 0 {
		opts = append(opts, studio.WithDecodeWorkers(c.DecodeWorkers))
	}
	if c.MaxPixels > 0 {
		opts = append(opts, studio.WithMaxPixels(c.MaxPixels))
	}
	return opts
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}
