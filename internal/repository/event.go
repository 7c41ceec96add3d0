package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bracket-elo/internal/db"
	"bracket-elo/internal/domain"

	"github.com/rs/zerolog"
)

type EventRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewEventRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *EventRepository {
	return &EventRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *EventRepository) withTx(tx *sql.Tx) *EventRepository {
	return &EventRepository{
		queries: r.queries.WithTx(tx),
		logger:  r.logger,
	}
}

func (r *EventRepository) IsIngested(ctx context.Context, eventID int64) (bool, error) {
	_, err := r.queries.GetIngestedEvent(ctx, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up event %d: %w", eventID, err)
	}
	return true, nil
}

func (r *EventRepository) MarkIngested(ctx context.Context, event *domain.IngestedEvent) error {
	err := r.queries.InsertIngestedEvent(ctx, db.InsertIngestedEventParams{
		EventID:        event.EventID,
		EventName:      event.EventName,
		TournamentName: event.TournamentName,
		GameName:       event.GameName,
		Namespace:      event.Namespace,
		MatchCount:     int64(event.MatchCount),
		ForfeitCount:   int64(event.ForfeitCount),
		WinnerGlobalID: event.WinnerGlobalID,
		IngestedAt:     event.IngestedAt,
	})
	if err != nil {
		r.logger.Error().Err(err).Int64("event_id", event.EventID).Msg("failed to mark event ingested")
		return fmt.Errorf("failed to mark event %d ingested: %w", event.EventID, err)
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context, limit int) ([]domain.IngestedEvent, error) {
	events, err := r.queries.ListIngestedEvents(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list ingested events: %w", err)
	}

	result := make([]domain.IngestedEvent, len(events))
	for i, e := range events {
		result[i] = domain.IngestedEvent{
			EventID:        e.EventID,
			EventName:      e.EventName,
			TournamentName: e.TournamentName,
			GameName:       e.GameName,
			Namespace:      e.Namespace,
			MatchCount:     int(e.MatchCount),
			ForfeitCount:   int(e.ForfeitCount),
			WinnerGlobalID: e.WinnerGlobalID,
			IngestedAt:     e.IngestedAt,
		}
	}
	return result, nil
}
