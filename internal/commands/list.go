package ampliconplot

import (
	"github.com/spf13/cobra"
)

// listCmd represents the 'list' command group.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Group commands for listing information",
}

func init() {
	rootCmd.AddCommand(listCmd)
}
