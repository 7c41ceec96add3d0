package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bracket-elo/internal/db"

	"github.com/rs/zerolog"
)

// Repositories groups repositories that share one transaction.
type Repositories struct {
	Players *PlayerRepository
	Ledger  *LedgerRepository
	Events  *EventRepository
}

type Transactor struct {
	db      *sql.DB
	players *PlayerRepository
	ledger  *LedgerRepository
	events  *EventRepository
	logger  zerolog.Logger
}

func NewTransactor(sqlDB *sql.DB, players *PlayerRepository, ledger *LedgerRepository, events *EventRepository, logger zerolog.Logger) *Transactor {
	return &Transactor{
		db:      sqlDB,
		players: players,
		ledger:  ledger,
		events:  events,
		logger:  logger,
	}
}

// WithinTx runs fn against repositories bound to a single transaction and
// commits only if fn returns nil.
func (t *Transactor) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	repos := Repositories{
		Players: t.players.withTx(tx),
		Ledger:  t.ledger.withTx(tx),
		Events:  t.events.withTx(tx),
	}

	if err := fn(repos); err != nil {
		t.logger.Debug().Err(err).Msg("rolling back transaction")
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// runBatch runs fn in its own transaction, or directly when the repository is
// already bound to one.
func runBatch(ctx context.Context, sqlDB *sql.DB, queries *db.Queries, fn func(q *db.Queries) error) error {
	if sqlDB == nil {
		return fn(queries)
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(queries.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}
