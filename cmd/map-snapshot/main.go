// Snapshot tool: renders one scope of the dashboard headlessly and writes the
// map as SVG. ATLAS_SNAPSHOT_SCOPE names a city (empty means the overview),
// ATLAS_SNAPSHOT_PRICE optionally applies a "min-max" price filter first.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"rental-atlas/internal/app"
	"rental-atlas/internal/config"
	"rental-atlas/internal/filter"
	"rental-atlas/internal/logger"
	"rental-atlas/internal/render"
)

func main() {
	config.LoadEnvFiles()
	l := logger.Setup()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	rows, err := app.LoadRows(ctx, cfg)
	if err != nil {
		l.Error("dataset_error", "err", err)
		os.Exit(1)
	}
	a, err := app.New(ctx, cfg, rows, float64(cfg.SnapshotWidth), float64(cfg.SnapshotHeight))
	if err != nil {
		l.Error("app_init_error", "err", err)
		os.Exit(1)
	}
	defer a.Close()
	m := a.Machine

	req := m.Start()
	if price := os.Getenv("ATLAS_SNAPSHOT_PRICE"); price != "" {
		f, err := filter.Parse(map[string]string{filter.OptPrice: price})
		if err != nil {
			l.Error("snapshot_filter_error", "err", err)
			os.Exit(1)
		}
		req = m.BeginFilter(f)
	}
	if err := m.Run(ctx, req); err != nil {
		l.Error("snapshot_root_error", "err", err)
		os.Exit(1)
	}
	if cfg.SnapshotScope != "" {
		req, err := m.BeginDrill(cfg.SnapshotScope)
		if err != nil {
			l.Error("snapshot_drill_rejected", "city", cfg.SnapshotScope, "err", err, "notice", m.Notice().Text)
			os.Exit(1)
		}
		if err := m.Run(ctx, req); err != nil {
			l.Error("snapshot_drill_error", "city", cfg.SnapshotScope, "err", err)
			os.Exit(1)
		}
	}

	f, err := os.Create(cfg.SnapshotOut)
	if err != nil {
		l.Error("snapshot_create_error", "err", err)
		os.Exit(1)
	}
	w := bufio.NewWriter(f)
	if err := render.WriteSVG(w, a.Surface.Frame()); err != nil {
		l.Error("snapshot_write_error", "err", err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		l.Error("snapshot_write_error", "err", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		l.Error("snapshot_close_error", "err", err)
		os.Exit(1)
	}
	l.Info("snapshot_written", "out", cfg.SnapshotOut, "scope", m.Scope().String(), "markers", len(a.Surface.Markers()))
	for _, id := range a.Board.Shown() {
		for _, line := range a.Board.Panel(id).Lines() {
			fmt.Printf("[%s] %s\n", id, line)
		}
	}
}
