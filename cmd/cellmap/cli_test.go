package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cellmapper/internal/config"
	"cellmapper/internal/mapping"

	"github.com/spf13/cobra"
)

const exampleScript = `# 2s1p pack on a 2x2 grid
configure 2 1 2 2
assign 0 0 1
assign 0 1 2
assign 0 0 5
`

func newTestCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

func TestRunScript_File(t *testing.T) {
	ws := setupWorkspace(t)
	path := filepath.Join(ws, "pack.cm")
	writeFile(t, path, exampleScript)

	cmd, out, errOut := newTestCmd()
	if err := runScript(cmd, []string{path}); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	if got := out.String(); got != "[1,5,1,1;2,2,1,2]\n" {
		t.Errorf("stdout = %q", got)
	}
	if errOut.Len() != 0 {
		t.Errorf("expected no notices, got %q", errOut.String())
	}
}

func TestRunScript_Stdin(t *testing.T) {
	setupWorkspace(t)

	cmd, out, _ := newTestCmd()
	cmd.SetIn(strings.NewReader("configure 1 1 1 2; assign 0 1; print; assign 0 0"))
	if err := runScript(cmd, nil); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	// print already emitted an array, so the final one is not repeated
	if got := out.String(); got != "[1,1,1,2]\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRunScript_NoticesGoToStderr(t *testing.T) {
	ws := setupWorkspace(t)
	path := filepath.Join(ws, "pack.cm")
	writeFile(t, path, "configure 1 1 1 1\nassign 5 5\ngroup x\nassign 0 0\ngroup 1\nassign 0 0\n")

	cmd, out, errOut := newTestCmd()
	if err := runScript(cmd, []string{path}); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	if got := out.String(); got != "[1,1,1,1]\n" {
		t.Errorf("stdout = %q", got)
	}
	for _, want := range []string{
		path + ":2: assign: Error: Position (5, 5) is outside the grid",
		path + ":4: assign: Error: Parallel group must be integer",
	} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("stderr missing %q:\n%s", want, errOut.String())
		}
	}
}

func TestRunScript_ConfigGroupCheckedAtClick(t *testing.T) {
	ws := setupWorkspace(t)
	cfg := config.DefaultConfig()
	cfg.ParallelGroup = "abc"
	if err := cfg.Save(config.DefaultPath(ws)); err != nil {
		t.Fatal(err)
	}

	cmd, out, errOut := newTestCmd()
	cmd.SetIn(strings.NewReader("configure 1 1 1 1\nassign 0 0\ngroup 2\nassign 0 0\n"))
	if err := runScript(cmd, []string{"-"}); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	if !strings.Contains(errOut.String(), "stdin:2: assign: Error: Parallel group must be integer") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if got := out.String(); got != "[1,2,1,1]\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRunScript_FailFast(t *testing.T) {
	ws := setupWorkspace(t)
	runFailFast = true
	path := filepath.Join(ws, "pack.cm")
	writeFile(t, path, "configure 1 1 1 1\nassign 0 0 x\nassign 0 0\n")

	cmd, out, _ := newTestCmd()
	err := runScript(cmd, []string{path})
	if !errors.Is(err, mapping.ErrInvalidParallelGroup) {
		t.Fatalf("expected ErrInvalidParallelGroup, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no array on failure, got %q", out.String())
	}
}

func TestRunScript_EachAndSummary(t *testing.T) {
	ws := setupWorkspace(t)
	runEach, runSummary = true, true
	path := filepath.Join(ws, "pack.cm")
	writeFile(t, path, exampleScript)

	cmd, out, _ := newTestCmd()
	if err := runScript(cmd, []string{path}); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	got := out.String()
	for _, want := range []string{"[1,1,1,1]\n", "[1,1,1,1;2,2,1,2]\n", "[1,5,1,1;2,2,1,2]\n", "Series"} {
		if !strings.Contains(got, want) {
			t.Errorf("stdout missing %q:\n%s", want, got)
		}
	}
}

func TestRunScript_ParseErrorAndMissingFile(t *testing.T) {
	ws := setupWorkspace(t)
	path := filepath.Join(ws, "bad.cm")
	writeFile(t, path, "configure 1 1\n")

	cmd, _, _ := newTestCmd()
	if err := runScript(cmd, []string{path}); err == nil || !strings.Contains(err.Error(), "parse error") {
		t.Errorf("expected parse error, got %v", err)
	}
	if err := runScript(cmd, []string{filepath.Join(ws, "missing.cm")}); err == nil {
		t.Error("expected error for missing script")
	}
}

func TestRunScript_ConfigPackAndGroup(t *testing.T) {
	ws := setupWorkspace(t)
	cfg := config.DefaultConfig()
	cfg.Pack = mapping.PackConfig{Ns: 2, Np: 1, Rows: 1, Cols: 2}
	cfg.ParallelGroup = "3"
	if err := cfg.Save(config.DefaultPath(ws)); err != nil {
		t.Fatal(err)
	}

	cmd, out, _ := newTestCmd()
	cmd.SetIn(strings.NewReader("assign 0 1\n"))
	if err := runScript(cmd, []string{"-"}); err != nil {
		t.Fatalf("runScript: %v", err)
	}
	if got := out.String(); got != "[1,3,1,2]\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	ws := setupWorkspace(t)

	output := captureOutput(t, func() {
		if err := runConfigInit(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runConfigInit: %v", err)
		}
	})
	if !strings.Contains(output, "Wrote") {
		t.Errorf("unexpected output: %s", output)
	}
	if _, err := os.Stat(config.DefaultPath(ws)); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	output = captureOutput(t, func() {
		if err := runConfigInit(&cobra.Command{}, nil); err != nil {
			t.Fatalf("runConfigInit second run: %v", err)
		}
	})
	if !strings.Contains(output, "already exists") {
		t.Errorf("expected existing-config notice, got: %s", output)
	}

	t.Setenv("CELLMAP_PARALLEL_GROUP", "7")
	cmd, out, _ := newTestCmd()
	if err := runConfigShow(cmd, nil); err != nil {
		t.Fatalf("runConfigShow: %v", err)
	}
	if !strings.Contains(out.String(), `parallel_group: "7"`) {
		t.Errorf("expected env override in output:\n%s", out.String())
	}
}

func TestAppOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Pack = mapping.PackConfig{Ns: 2, Np: 1}

	cmd := &cobra.Command{}
	var pf mapping.PackConfig
	cmd.Flags().IntVar(&pf.Ns, "ns", 0, "")
	cmd.Flags().IntVar(&pf.Np, "np", 0, "")
	cmd.Flags().IntVar(&pf.Rows, "rows", 0, "")
	cmd.Flags().IntVar(&pf.Cols, "cols", 0, "")

	opts := appOptions(cmd, cfg)
	if opts.AutoCreate {
		t.Error("incomplete config pack without flags must not auto-create")
	}

	if err := cmd.ParseFlags([]string{"--rows", "2", "--cols", "1"}); err != nil {
		t.Fatal(err)
	}
	opts = appOptions(cmd, cfg)
	if opts.Pack != (mapping.PackConfig{Ns: 2, Np: 1, Rows: 2, Cols: 1}) {
		t.Errorf("unexpected merged pack %+v", opts.Pack)
	}
	if !opts.AutoCreate {
		t.Error("expected auto-create with flags")
	}
	if opts.CellWidth != cfg.UI.CellWidth {
		t.Errorf("expected cell width from config, got %d", opts.CellWidth)
	}
}

func TestRunWatch(t *testing.T) {
	ws := setupWorkspace(t)
	watchDebounce = 30 * time.Millisecond
	path := filepath.Join(ws, "pack.cm")
	writeFile(t, path, "configure 1 1 1 1\nassign 0 0\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	var out, errOut syncBuffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	done := make(chan error, 1)
	go func() { done <- runWatch(cmd, []string{path}) }()

	waitFor(t, func() bool { return out.Contains("[1,1,1,1]") })

	writeFile(t, path, "configure 2 1 1 2\nassign 0 1\n")
	waitFor(t, func() bool { return out.Contains("[1,1,1,2]") })
	if !errOut.Contains("--- run 2") {
		t.Errorf("expected run banner on stderr, got %q", errOut.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWatch: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("runWatch did not stop after cancel")
	}
}

func TestRunWatch_MissingDirectory(t *testing.T) {
	ws := setupWorkspace(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	cmd, _, _ := newTestCmd()
	cmd.SetContext(ctx)
	if err := runWatch(cmd, []string{filepath.Join(ws, "nope", "pack.cm")}); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
