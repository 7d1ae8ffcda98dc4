package ampliconplot

import (
	"fmt"

	"github.com/mwiater/ampliconplot/internal/appconfig"
	"github.com/mwiater/ampliconplot/internal/logging"
	"github.com/mwiater/ampliconplot/internal/plot"
	"github.com/mwiater/ampliconplot/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// renderCmd implements 'render', which turns one statistics file into
// gnuplot scripts and images.
var renderCmd = &cobra.Command{
	Use:   "render [input]",
	Short: "Generate charts from an amplicon statistics file",
	Long: `Reads amplicon statistics (a file, a compressed file, or "-" for stdin),
writes one gnuplot script per chart and renders each to PNG.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		settings, err := settingsFromConfig(*cfg)
		if err != nil {
			return err
		}

		var renderer render.Renderer = render.Discard{}
		if !cfg.SkipRender {
			g := render.NewGnuplot(cfg.RendererBinary())
			if _, err := g.Check(cmd.Context()); err != nil {
				return err
			}
			renderer = g
		}

		input := "-"
		if len(args) == 1 {
			input = args[0]
		}
		logging.LogEvent("Rendering %s with prefix %s (layout=%s pageSize=%d)", input, settings.Prefix, settings.Layout, settings.PageSize)

		summary, err := plot.Run(cmd.Context(), input, settings, renderer)
		if err != nil {
			return err
		}
		summary.Render(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	d := appconfig.Defaults()
	flags := renderCmd.Flags()
	flags.StringP("prefix", "p", d.Prefix, "output path prefix for scripts and images")
	flags.String("heatmapSize", d.HeatmapSize, "heatmap image size (WIDTHxHEIGHT)")
	flags.String("hgraphSize", d.HGraphSize, "horizontal graph image size (WIDTHxHEIGHT)")
	flags.String("vgraphSize", d.VGraphSize, "vertical graph image size (WIDTHxHEIGHT)")
	flags.Int("pageSize", d.PageSize, "maximum samples per heatmap page")
	flags.Float64("smoothing", d.Smoothing, "small-sample constant added to mis-priming denominators")
	flags.String("layout", d.Layout, "chart orientation: horizontal or vertical")
	flags.String("renderer", d.Renderer, "gnuplot binary name or path")
	flags.Bool("skipRender", false, "write scripts without invoking the renderer")

	for _, name := range []string{"prefix", "heatmapSize", "hgraphSize", "vgraphSize", "pageSize", "smoothing", "layout", "renderer", "skipRender"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// settingsFromConfig converts the validated configuration into pipeline
// settings.
func settingsFromConfig(cfg appconfig.Config) (plot.Settings, error) {
	heatmap, hgraph, vgraph, err := cfg.Sizes()
	if err != nil {
		return plot.Settings{}, err
	}
	layout, err := plot.ParseLayout(cfg.Layout)
	if err != nil {
		return plot.Settings{}, err
	}
	return plot.Settings{
		Prefix:    cfg.Prefix,
		PageSize:  cfg.PageSize,
		Smoothing: cfg.Smoothing,
		Layout:    layout,
		Heatmap:   heatmap,
		HGraph:    hgraph,
		VGraph:    vgraph,
	}, nil
}
