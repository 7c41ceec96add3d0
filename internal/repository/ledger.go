package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bracket-elo/internal/db"
	"bracket-elo/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// LedgerRepository is append-only; the schema rejects updates and deletes on sets.
type LedgerRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewLedgerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *LedgerRepository {
	return &LedgerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *LedgerRepository) withTx(tx *sql.Tx) *LedgerRepository {
	return &LedgerRepository{
		queries: r.queries.WithTx(tx),
		logger:  r.logger,
	}
}

// Append writes entry and fills in its ID and CreatedAt when unset.
func (r *LedgerRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	if entry.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		entry.ID = id
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	err := r.queries.InsertSet(ctx, db.InsertSetParams{
		ID:                entry.ID,
		EventID:           entry.EventID,
		SetID:             entry.SetID,
		PlayerOneGlobalID: entry.PlayerOneGlobalID,
		PlayerOneName:     entry.PlayerOneName,
		PlayerOneRating:   entry.PlayerOneRating,
		PlayerOneScore:    int64(entry.PlayerOneScore),
		PlayerOneDelta:    entry.PlayerOneDelta,
		PlayerTwoGlobalID: entry.PlayerTwoGlobalID,
		PlayerTwoName:     entry.PlayerTwoName,
		PlayerTwoRating:   entry.PlayerTwoRating,
		PlayerTwoScore:    int64(entry.PlayerTwoScore),
		PlayerTwoDelta:    entry.PlayerTwoDelta,
		TournamentName:    entry.TournamentName,
		GameName:          entry.GameName,
		SetTime:           entry.SetTime,
		CreatedAt:         entry.CreatedAt,
	})
	if err != nil {
		r.logger.Error().Err(err).Int64("event_id", entry.EventID).Str("set_id", entry.SetID).Msg("failed to append ledger entry")
		return fmt.Errorf("failed to append ledger entry for set %s: %w", entry.SetID, err)
	}
	return nil
}

func (r *LedgerRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.LedgerEntry, error) {
	sets, err := r.queries.ListSetsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger for event %d: %w", eventID, err)
	}
	return toLedgerEntries(sets), nil
}

// ListByPlayer returns the player's most recent entries first.
func (r *LedgerRepository) ListByPlayer(ctx context.Context, globalID int64, limit int) ([]domain.LedgerEntry, error) {
	sets, err := r.queries.ListSetsByPlayer(ctx, db.ListSetsByPlayerParams{
		GlobalID: globalID,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger for player %d: %w", globalID, err)
	}
	return toLedgerEntries(sets), nil
}

func toLedgerEntries(sets []db.Set) []domain.LedgerEntry {
	result := make([]domain.LedgerEntry, len(sets))
	for i, s := range sets {
		result[i] = domain.LedgerEntry{
			ID:                s.ID,
			EventID:           s.EventID,
			SetID:             s.SetID,
			PlayerOneGlobalID: s.PlayerOneGlobalID,
			PlayerOneName:     s.PlayerOneName,
			PlayerOneRating:   s.PlayerOneRating,
			PlayerOneScore:    int(s.PlayerOneScore),
			PlayerOneDelta:    s.PlayerOneDelta,
			PlayerTwoGlobalID: s.PlayerTwoGlobalID,
			PlayerTwoName:     s.PlayerTwoName,
			PlayerTwoRating:   s.PlayerTwoRating,
			PlayerTwoScore:    int(s.PlayerTwoScore),
			PlayerTwoDelta:    s.PlayerTwoDelta,
			TournamentName:    s.TournamentName,
			GameName:          s.GameName,
			SetTime:           s.SetTime,
			CreatedAt:         s.CreatedAt,
		}
	}
	return result
}
