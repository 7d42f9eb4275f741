package main

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/export"
)

func newTestCmd(t *testing.T) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addConfigFlags(cmd)
	return cmd
}

func TestResolveConfig_Layering(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cloth.yaml")
	fromFile := config.DefaultConfig()
	fromFile.Cloth.Width = 7
	fromFile.Run.Ticks = 42
	if err := config.Save(file, fromFile); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCmd(t)
	for flag, v := range map[string]string{"preset": "silk", "config": file, "ticks": "9"} {
		if err := cmd.Flags().Set(flag, v); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cloth.Width != 7 {
		t.Errorf("expected width from the config file, got %d", cfg.Cloth.Width)
	}
	if cfg.Run.Ticks != 9 {
		t.Errorf("expected the ticks flag to win, got %d", cfg.Run.Ticks)
	}
}

func TestResolveConfig_Preset(t *testing.T) {
	cmd := newTestCmd(t)
	if err := cmd.Flags().Set("preset", "large"); err != nil {
		t.Fatal(err)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if want := config.GetPreset("large"); cfg.Cloth.Width != want.Cloth.Width || !cfg.Solver.Parallel {
		t.Errorf("expected the large preset, got %+v", cfg.Cloth)
	}
	if runName(nil) != "large" || runName([]string{"x"}) != "x" {
		t.Error("unexpected run name")
	}
}

func TestResolveConfig_Errors(t *testing.T) {
	cmd := newTestCmd(t)
	if err := cmd.Flags().Set("preset", "nope"); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveConfig(cmd); err == nil {
		t.Error("expected unknown preset error")
	}

	cmd = newTestCmd(t)
	if err := cmd.Flags().Set("substeps", "0"); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveConfig(cmd); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSetupLogging(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	dataDir = t.TempDir()

	if err := setupLogging(true); err != nil {
		t.Fatal(err)
	}
	log.Printf("hello")
	data, err := os.ReadFile(filepath.Join(dataDir, "logs", "clothsim.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("expected the log line in the file")
	}

	if err := setupLogging(false); err != nil {
		t.Fatal(err)
	}
}

func TestTraceRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cloth.Width, cfg.Cloth.Height = 4, 4
	cfg.Run.Ticks = 50

	tr, result, err := traceRun(context.Background(), cfg, -1, "xy")
	if err != nil {
		t.Fatal(err)
	}
	if tr.Index != 14 || tr.XAxis != 0 || tr.YAxis != 1 {
		t.Errorf("unexpected trace setup %+v", tr)
	}
	if len(tr.Points) != result.StepsTaken || result.StepsTaken != 50 {
		t.Errorf("expected 50 points, got %d over %d steps", len(tr.Points), result.StepsTaken)
	}
	if export.TraceToSVG(tr, 100, 100, "#fff") == "" {
		t.Error("expected an svg path")
	}
}

func TestTraceRun_Errors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Run.Ticks = 5
	if _, _, err := traceRun(context.Background(), cfg, 0, "ab"); err == nil {
		t.Error("expected unknown plane error")
	}
	if _, _, err := traceRun(context.Background(), cfg, 1<<20, "xz"); !errors.Is(err, cloth.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}
