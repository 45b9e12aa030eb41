// Dashboard entry point: reads configuration, loads the dataset and runs the
// terminal UI. Logs go to LOG_FILE because the UI owns the terminal.
package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"rental-atlas/internal/app"
	"rental-atlas/internal/config"
	"rental-atlas/internal/logger"
	"rental-atlas/internal/tui"
)

func main() {
	config.LoadEnvFiles()
	l, closer, err := logger.SetupFile("rental-atlas.log")
	defer closer.Close()
	if err != nil {
		l.Error("log_file_error", "err", err)
	}
	l.Debug("log_init_ok")
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rows, err := app.LoadRows(ctx, cfg)
	if err != nil {
		l.Error("dataset_error", "err", err)
		os.Exit(1)
	}
	// The real size arrives with the first WindowSizeMsg.
	a, err := app.New(ctx, cfg, rows, 160, 120)
	if err != nil {
		l.Error("app_init_error", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(tui.New(ctx, a.Machine, a.Surface, a.Board), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		l.Error("tui_error", "err", err)
		os.Exit(1)
	}
	l.Info("shutdown")
}
