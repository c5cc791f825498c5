package main

import (
	"fmt"

	"cellmapper/cmd/cellmap/ui"
	"cellmapper/internal/config"
	"cellmapper/internal/logging"
	"cellmapper/internal/mapping"
	"cellmapper/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// packFlags holds --ns --np --rows --cols.
var packFlags mapping.PackConfig

// appOptions merges the config pack with any pack flags given on the command
// line. The grid is created immediately when the merged pack is complete.
func appOptions(cmd *cobra.Command, cfg *config.Config) ui.Options {
	pack := cfg.Pack
	flagged := false
	for name, dst := range map[string]*int{
		"ns":   &pack.Ns,
		"np":   &pack.Np,
		"rows": &pack.Rows,
		"cols": &pack.Cols,
	} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			flagged = true
			v, _ := cmd.Flags().GetInt(name)
			*dst = v
		}
	}

	return ui.Options{
		Pack:         pack,
		AutoCreate:   flagged || cfg.HasPack(),
		Styles:       ui.NewStyles(ui.ThemeByName(cfg.UI.Theme)),
		CellWidth:    cfg.UI.CellWidth,
		OutputHeight: cfg.UI.OutputHeight,
	}
}

// runInteractive starts the grid UI. The final array is printed on exit.
func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	sess := session.New(session.WithParallelGroup(cfg.ParallelGroup))
	logging.UI("interactive session %s", sess.ID())

	p := tea.NewProgram(
		ui.NewApp(sess, appOptions(cmd, cfg)),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive grid failed: %w", err)
	}

	if sess.Configured() {
		fmt.Fprintln(cmd.OutOrStdout(), sess.Output())
	}
	return nil
}
