package ampliconplot

import (
	"github.com/spf13/cobra"
)

// showCmd represents the 'show' command group.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for showing information",
	Long:  `The 'show' command groups subcommands that display information about the ampliconplot setup.`,
}

func init() {
	rootCmd.AddCommand(showCmd)
}
