package main

import (
	"fmt"
	"os"

	"cellmapper/internal/config"
	"cellmapper/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	workspace string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cellmap",
	Short: "cellmap - battery cell position mapper",
	Long: `cellmap records where the electrical cells of an Ns x Np battery pack sit on
a rows x columns physical grid.

Cells are numbered in series order as you click them, each tagged with the
current parallel group. The mapping is emitted as a Modelica-style array:

  [series,group,x,y;series,group,x,y;...]

Run without arguments to start the interactive grid.`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Interactive mode owns the terminal
		if cmd == cmd.Root() {
			return nil
		}

		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: runInteractive,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")

	// Interactive prefill
	rootCmd.Flags().IntVar(&packFlags.Ns, "ns", 0, "Cells in series")
	rootCmd.Flags().IntVar(&packFlags.Np, "np", 0, "Cells in parallel")
	rootCmd.Flags().IntVar(&packFlags.Rows, "rows", 0, "Grid rows")
	rootCmd.Flags().IntVar(&packFlags.Cols, "cols", 0, "Grid columns")

	// Run flags
	runCmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "Stop at the first rejected statement")
	runCmd.Flags().BoolVar(&runSummary, "summary", false, "Print a Markdown summary after the run")
	runCmd.Flags().BoolVar(&runEach, "each", false, "Print the array after every assign")

	// Watch flags
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period before re-running (default from config)")
	watchCmd.Flags().BoolVar(&runEach, "each", false, "Print the array after every assign")

	// Config subcommands
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	// Add commands to root
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveWorkspace returns the --workspace flag or the current directory.
func resolveWorkspace() (string, error) {
	if workspace != "" {
		return workspace, nil
	}
	ws, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace: %w", err)
	}
	return ws, nil
}

// loadConfig reads the workspace config and starts category logging.
func loadConfig() (*config.Config, string, error) {
	ws, err := resolveWorkspace()
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(config.DefaultPath(ws))
	if err != nil {
		return nil, ws, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, ws, fmt.Errorf("invalid config %s: %w", config.DefaultPath(ws), err)
	}

	if err := logging.Initialize(ws, cfg.Logging.ToLogging()); err != nil {
		return nil, ws, fmt.Errorf("failed to initialize logging: %w", err)
	}
	logging.Boot("workspace %s", ws)
	logging.BootDebug("verbose=%v", verbose)
	logging.ConfigLog("loaded %s (theme %s, parallel_group %q, pack set: %v)",
		config.DefaultPath(ws), cfg.UI.Theme, cfg.ParallelGroup, cfg.HasPack())
	return cfg, ws, nil
}

// procLogger returns the process logger, or a no-op one when the pre-run hook
// did not build it.
func procLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
