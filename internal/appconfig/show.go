package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		d := Defaults()
		cfg = &d
	}
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Prefix:          %s\n", cfg.Prefix)
	fmt.Fprintf(out, "  Heatmap Size:    %s\n", cfg.HeatmapSize)
	fmt.Fprintf(out, "  H-Graph Size:    %s\n", cfg.HGraphSize)
	fmt.Fprintf(out, "  V-Graph Size:    %s\n", cfg.VGraphSize)
	fmt.Fprintf(out, "  Page Size:       %d\n", cfg.PageSize)
	fmt.Fprintf(out, "  Smoothing:       %g\n", cfg.Smoothing)
	fmt.Fprintf(out, "  Layout:          %s\n", cfg.Layout)
	fmt.Fprintf(out, "  Renderer:        %s\n", cfg.RendererBinary())
	fmt.Fprintf(out, "  Skip Render:     %v\n", cfg.SkipRender)
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFilePath())
}

// DumpConfig pretty-prints the raw struct.
func DumpConfig(out io.Writer, cfg *Config) {
	if cfg == nil {
		d := Defaults()
		cfg = &d
	}
	pp.Fprintln(out, *cfg)
}
