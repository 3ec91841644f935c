package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/calendon/internal/config"
	"github.com/vovakirdan/calendon/internal/engine"
)

var flagDefaults bool

var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List core systems and their options",
	Long: `Shows the core systems in initialization order with the command line
options each one owns.

With --defaults, prints a configuration file holding every system's
default settings instead. Save it as ~/.calendon/config.yaml (or point
CALENDON_CONFIG at it) and edit as needed.`,
	Args: cobra.NoArgs,
	RunE: runSystems,
}

func init() {
	systemsCmd.Flags().BoolVar(&flagDefaults, "defaults", false, "Print the default configuration as YAML")
}

func runSystems(cmd *cobra.Command, args []string) error {
	e := engine.New(engine.Options{Logger: log.New(cmd.ErrOrStderr())})
	if err := e.BuildSubsystems(); err != nil {
		return err
	}
	reg := e.Registry()
	if err := reg.ApplyDefaults(); err != nil {
		return err
	}

	if flagDefaults {
		var sections []config.Section
		for _, s := range reg.Subsystems() {
			sections = append(sections, config.Section{Name: s.Name(), Config: s.Config()})
		}
		out, err := config.Encode(sections)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	}

	var rows []table.Row
	for i, s := range reg.Subsystems() {
		opts := s.Options()
		if len(opts) == 0 {
			rows = append(rows, table.Row{fmt.Sprint(i), s.Name(), "", ""})
			continue
		}
		for j, o := range opts {
			name, id := "", ""
			if j == 0 {
				name, id = s.Name(), fmt.Sprint(i)
			}
			flag := strings.Join(nonEmpty(o.Short, o.Long), ",")
			if o.Arg != "" {
				flag += " " + o.Arg
			}
			rows = append(rows, table.Row{id, name, flag, o.Help})
		}
	}
	columns := []table.Column{
		{Title: "#", Width: 2},
		{Title: "System", Width: width(rows, 1, 6)},
		{Title: "Option", Width: width(rows, 2, 6)},
		{Title: "Description", Width: width(rows, 3, 11)},
	}
	fmt.Println(renderTable(columns, rows))
	return nil
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
