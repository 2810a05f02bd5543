package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/conorfennell/salita/internal/config"
	"github.com/conorfennell/salita/internal/domain"
	"github.com/conorfennell/salita/internal/sentence"
	"github.com/conorfennell/salita/internal/srs"
	"github.com/conorfennell/salita/internal/storage"
	"github.com/conorfennell/salita/internal/sync"
)

// app wires the stores and engines a command needs. Decks are only loaded by
// commands that use them, since git sources may need a network round trip.
type app struct {
	cfg       config.Config
	out       io.Writer
	db        *storage.DB
	scheduler *srs.Scheduler

	catalog   *domain.Catalog
	validator *sentence.Validator
}

func newApp(cfg config.Config, out io.Writer) (*app, error) {
	db, err := storage.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	slog.Debug("Database opened", "path", cfg.DB)

	return &app{
		cfg:       cfg,
		out:       out,
		db:        db,
		scheduler: srs.NewScheduler(db, srs.WithLogger(slog.Default())),
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// loadDecks reads the configured deck sources once and builds the validator
// over their vocabulary.
func (a *app) loadDecks(ctx context.Context) error {
	if a.catalog != nil {
		return nil
	}
	res, err := sync.Load(ctx, a.cfg.Decks, a.cfg.ReposDir)
	if err != nil {
		return fmt.Errorf("failed to load decks: %w", err)
	}
	a.catalog = res.Catalog
	a.validator = sentence.NewValidator(res.Catalog.Vocabulary,
		sentence.WithParticles(a.cfg.Particles.Focus, a.cfg.Particles.Possession))
	return nil
}
