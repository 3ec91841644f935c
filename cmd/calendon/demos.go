package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/calendon/internal/demos"
)

var demosCmd = &cobra.Command{
	Use:   "demos",
	Short: "List built-in demos",
	Long:  `Shows the demos that can be run with "calendon -d <id>".`,
	Args:  cobra.NoArgs,
	Run:   runDemos,
}

func runDemos(cmd *cobra.Command, args []string) {
	list := demos.List()
	if len(list) == 0 {
		fmt.Println("No demos available.")
		return
	}

	rows := make([]table.Row, len(list))
	for i, d := range list {
		rows[i] = table.Row{d.ID, d.Title}
	}
	columns := []table.Column{
		{Title: "ID", Width: width(rows, 0, 2)},
		{Title: "Title", Width: width(rows, 1, 5)},
	}

	fmt.Println(renderTable(columns, rows))
	fmt.Println()
	fmt.Println("Run 'calendon -d <id>' to start a demo.")
}
