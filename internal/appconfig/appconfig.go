// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigName is the base name viper searches for when no --config is given.
	DefaultConfigName = "ampliconplot"
	// EnvPrefix prefixes environment variable overrides (AMPLICONPLOT_PAGESIZE, ...).
	EnvPrefix = "AMPLICONPLOT"

	defaultPrefix      = "ampliconplot"
	defaultHeatmapSize = "1000x800"
	defaultHGraphSize  = "1200x500"
	defaultVGraphSize  = "600x1200"
	defaultPageSize    = 100
	defaultSmoothing   = 100.0
	defaultLayout      = "horizontal"
	defaultRenderer    = "gnuplot"
	defaultLogFile     = "ampliconplot.log"
)

// Config represents the merged application configuration.
type Config struct {
	Prefix      string  `json:"prefix"`
	HeatmapSize string  `json:"heatmapSize"`
	HGraphSize  string  `json:"hgraphSize"`
	VGraphSize  string  `json:"vgraphSize"`
	PageSize    int     `json:"pageSize"`
	Smoothing   float64 `json:"smoothing"`
	Layout      string  `json:"layout"`
	Renderer    string  `json:"renderer"`
	SkipRender  bool    `json:"skipRender"`
	Debug       bool    `json:"debug"`
	LogFile     string  `json:"logFile,omitempty"`
	ConfigPath  string  `json:"-"`
}

// Size is an image size in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Prefix:      defaultPrefix,
		HeatmapSize: defaultHeatmapSize,
		HGraphSize:  defaultHGraphSize,
		VGraphSize:  defaultVGraphSize,
		PageSize:    defaultPageSize,
		Smoothing:   defaultSmoothing,
		Layout:      defaultLayout,
		Renderer:    defaultRenderer,
	}
}

// SetDefaults registers every default with v so config files and
// environment variables only need to name what they change.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("prefix", d.Prefix)
	v.SetDefault("heatmapSize", d.HeatmapSize)
	v.SetDefault("hgraphSize", d.HGraphSize)
	v.SetDefault("vgraphSize", d.VGraphSize)
	v.SetDefault("pageSize", d.PageSize)
	v.SetDefault("smoothing", d.Smoothing)
	v.SetDefault("layout", d.Layout)
	v.SetDefault("renderer", d.Renderer)
	v.SetDefault("skipRender", false)
	v.SetDefault("debug", false)
}

// Decode materializes the merged viper state (flags > file > env > defaults)
// and validates it.
func Decode(v *viper.Viper) (Config, error) {
	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return defaultLogFile
}

// RendererBinary returns the renderer command, applying a default if not set.
func (c Config) RendererBinary() string {
	if b := strings.TrimSpace(c.Renderer); b != "" {
		return b
	}
	return defaultRenderer
}

// Sizes parses the three image sizes.
func (c Config) Sizes() (heatmap, hgraph, vgraph Size, err error) {
	if heatmap, err = ParseSize(c.HeatmapSize); err != nil {
		return Size{}, Size{}, Size{}, fmt.Errorf("heatmapSize: %w", err)
	}
	if hgraph, err = ParseSize(c.HGraphSize); err != nil {
		return Size{}, Size{}, Size{}, fmt.Errorf("hgraphSize: %w", err)
	}
	if vgraph, err = ParseSize(c.VGraphSize); err != nil {
		return Size{}, Size{}, Size{}, fmt.Errorf("vgraphSize: %w", err)
	}
	return heatmap, hgraph, vgraph, nil
}

// ParseSize reads a WIDTHxHEIGHT string.
func ParseSize(s string) (Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Size{}, fmt.Errorf("size %q is not WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return Size{}, fmt.Errorf("size %q has invalid width", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return Size{}, fmt.Errorf("size %q has invalid height", s)
	}
	return Size{Width: width, Height: height}, nil
}
