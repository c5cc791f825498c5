package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"cellmapper/cmd/cellmap/ui"
	"cellmapper/internal/config"
	"cellmapper/internal/script"
	"cellmapper/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runFailFast bool
	runSummary  bool
	runEach     bool
)

// runCmd replays a script
var runCmd = &cobra.Command{
	Use:   "run [file|-]",
	Short: "Run a cellmap script and print the resulting array",
	Long: `Replays a script of grid clicks and prints the final array to stdout.
Rejected statements are reported on stderr and the run continues unless
--fail-fast is set. Reads stdin when the file is "-" or omitted.

Script commands:
  configure <ns> <np> <rows> <cols>
  group <p>                # set the Parallel Group field
  assign <row> <col> [p]   # click a cell, optionally with a one-off group
  print                    # print the current array

Example:
  cellmap run pack.cm
  echo "configure 2 1 2 2; assign 0 0; assign 0 1 2" | cellmap run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func runScript(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	source := "-"
	if len(args) == 1 {
		source = args[0]
	}

	sess := newScriptSession(cfg)
	procLogger().Debug("running script",
		zap.String("source", source),
		zap.String("session", sess.ID()),
	)

	var in io.Reader = cmd.InOrStdin()
	name := "stdin"
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in, name = f, source
	}

	sum, err := executeScript(ctx, name, in, sess, cmd.OutOrStdout(), cmd.ErrOrStderr(), runFailFast, runEach)
	if err != nil {
		return err
	}

	procLogger().Debug("script finished",
		zap.Int("statements", sum.Statements),
		zap.Int("errors", sum.Errors),
	)

	if runSummary {
		report := ui.Report{
			Source:     name,
			Configured: sess.Configured(),
			Pack:       sess.Pack(),
			Entries:    sess.Entries(),
			Output:     sess.Output(),
			Statements: sum.Statements,
			Errors:     sum.Errors,
			Infos:      sum.Infos,
		}
		out, err := ui.RenderMarkdown(report.Markdown(), ui.ThemeByName(cfg.UI.Theme), 80)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
	}
	return nil
}

// newScriptSession creates a session seeded from the config: the Parallel
// Group field, and the grid when the config carries a complete pack.
func newScriptSession(cfg *config.Config) *session.Session {
	sess := session.New(session.WithParallelGroup(cfg.ParallelGroup))
	if cfg.HasPack() {
		sess.ConfigurePack(cfg.Pack)
	}
	return sess
}

// executeScript parses and runs one script. Arrays go to stdout, rejected
// statements and notices to stderr. The final array is printed unless the
// script already printed one.
func executeScript(ctx context.Context, name string, in io.Reader, sess *session.Session, stdout, stderr io.Writer, failFast, each bool) (script.Summary, error) {
	parser, err := script.NewParser()
	if err != nil {
		return script.Summary{}, err
	}
	sc, err := parser.Parse(name, in)
	if err != nil {
		return script.Summary{}, err
	}

	printed := false
	runner := script.NewRunner(sess, script.WithFailFast(failFast), script.WithEachClick(each))
	sum, err := runner.Run(ctx, sc, func(ev script.Event) {
		if n := ev.Notice; n != nil && n.Level != session.LevelSuccess {
			fmt.Fprintf(stderr, "%s:%d: %s: %s: %s\n", name, ev.Line, ev.Command, n.Title, n.Message)
		}
		if ev.Output != "" {
			fmt.Fprintln(stdout, ev.Output)
			printed = true
		}
	})
	if err != nil {
		return sum, err
	}

	if !printed {
		fmt.Fprintln(stdout, sess.Output())
	}
	return sum, nil
}
