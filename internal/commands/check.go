package ampliconplot

import (
	"fmt"

	"github.com/mwiater/ampliconplot/internal/render"
	"github.com/spf13/cobra"
)

// checkCmd implements 'check', which verifies the configured renderer.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the renderer is installed and recent enough",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}
		binary := cfg.RendererBinary()
		if override, _ := cmd.Flags().GetString("renderer"); override != "" {
			binary = override
		}
		g := render.NewGnuplot(binary)
		v, err := g.Check(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: gnuplot %s (minimum %d.%d)\n", g.Binary, v, render.MinimumVersion.Major, render.MinimumVersion.Minor)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().String("renderer", "", "gnuplot binary name or path (overrides config)")
}
