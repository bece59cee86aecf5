package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkral/tempmail/internal/app"
	"github.com/mkral/tempmail/internal/credential"
	"github.com/mkral/tempmail/internal/inbox"
	"github.com/mkral/tempmail/internal/logging"
	"github.com/mkral/tempmail/internal/model"
	"github.com/mkral/tempmail/internal/store"
	appsync "github.com/mkral/tempmail/internal/sync"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tempmail:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	log, logCloser, err := logging.New(filepath.Join(cfg.DataDir, "tempmail.log"))
	if err != nil {
		return err
	}
	defer logCloser.Close()

	st, err := store.NewSQLiteStore(filepath.Join(cfg.DataDir, "tempmail.db"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	engine := inbox.New(st)
	if err := engine.Load(context.Background()); err != nil {
		return fmt.Errorf("loading mailbox cache: %w", err)
	}

	registry := app.DefaultRegistry()

	tokenFor := func(address string) (string, error) {
		return credential.Get(credential.TokenKey(address))
	}

	poller := appsync.New(
		engine,
		registry,
		st,
		tokenFor,
		time.Duration(cfg.Poll.IntervalSec)*time.Second,
		log,
	)

	root := app.New(st, engine, registry, poller, cfg, log)

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
