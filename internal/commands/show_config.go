package ampliconplot

import (
	"github.com/mwiater/ampliconplot/internal/appconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the config file is loaded properly and overridden by environment variables and flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			appconfig.DumpConfig(cmd.OutOrStdout(), GetConfig())
			return
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), GetConfig())
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
	showConfigCmd.Flags().Bool("raw", false, "dump the raw configuration struct")
}
