package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cellmapper/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var watchDebounce time.Duration

// watchCmd re-runs a script on every save
var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-run a cellmap script whenever it changes",
	Long: `Runs the script once, then again every time the file is saved, printing
the fresh array each time. Every run starts from an empty mapping.

Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

// watchRun is the rendered result of one script run.
type watchRun struct {
	stdout []byte
	stderr []byte
	err    error
}

func runWatch(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	debounce := watchDebounce
	if debounce <= 0 {
		debounce = cfg.GetWatchDebounce()
	}

	runs := make(chan watchRun, 1)
	handler := func(ctx context.Context, path string) error {
		r := runScriptFile(path, func(name string, in io.Reader, stdout, stderr io.Writer) error {
			_, err := executeScript(ctx, name, in, newScriptSession(cfg), stdout, stderr, false, runEach)
			return err
		})
		select {
		case runs <- r:
		case <-ctx.Done():
		}
		return r.err
	}

	w, err := watch.New(args[0], debounce, handler)
	if err != nil {
		return err
	}

	procLogger().Info("watching script",
		zap.String("path", w.Path()),
		zap.Duration("debounce", debounce),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(runs)
		if err := w.Start(gctx); err != nil {
			w.Stop()
			return err
		}
		_ = w.Trigger(gctx)
		return w.Run(gctx)
	})

	g.Go(func() error {
		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		n := 0
		for r := range runs {
			n++
			fmt.Fprintf(errOut, "--- run %d (%s)\n", n, time.Now().Format("15:04:05"))
			_, _ = errOut.Write(r.stderr)
			_, _ = out.Write(r.stdout)
			if r.err != nil {
				fmt.Fprintf(errOut, "error: %v\n", r.err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	stats := w.GetStats()
	procLogger().Debug("watch stopped",
		zap.Int("runs", stats.Runs),
		zap.Int("failures", stats.Failures),
	)
	return nil
}

// runScriptFile opens path and runs fn on it, capturing both output streams.
func runScriptFile(path string, fn func(name string, in io.Reader, stdout, stderr io.Writer) error) watchRun {
	var stdout, stderr bytes.Buffer
	f, err := os.Open(path)
	if err != nil {
		return watchRun{err: fmt.Errorf("failed to open script: %w", err)}
	}
	defer f.Close()

	err = fn(path, f, &stdout, &stderr)
	return watchRun{stdout: stdout.Bytes(), stderr: stderr.Bytes(), err: err}
}
