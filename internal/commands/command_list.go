package ampliconplot

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// CommandInfo holds the path and description of a command for display.
type CommandInfo struct {
	Path        string
	Description string
}

var (
	listHeading = lipgloss.NewStyle().Bold(true)
	listPath    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// ListCommands prints the command tree in a two-column layout.
func ListCommands(out io.Writer, commands []CommandInfo) {
	width := 0
	for _, data := range commands {
		if w := lipgloss.Width(data.Path); w > width {
			width = w
		}
	}

	fmt.Fprintln(out, listHeading.Render("Commands and Subcommands:"))
	pathCol := listPath.Width(width + 2)
	for _, data := range commands {
		fmt.Fprintf(out, "  %s%s\n", pathCol.Render(data.Path), data.Description)
	}
}
