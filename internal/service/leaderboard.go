package service

import (
	"context"

	"bracket-elo/internal/constants"
	"bracket-elo/internal/domain"
	"bracket-elo/internal/repository"

	"github.com/rs/zerolog"
)

// LeaderboardService answers read-only queries over the stored ratings.
type LeaderboardService struct {
	players *repository.PlayerRepository
	ledger  *repository.LedgerRepository
	events  *repository.EventRepository
	logger  zerolog.Logger
}

func NewLeaderboardService(players *repository.PlayerRepository, ledger *repository.LedgerRepository, events *repository.EventRepository, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{players: players, ledger: ledger, events: events, logger: logger}
}

func clampLimit(limit, def, ceiling int) int {
	if limit <= 0 {
		return def
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context, namespace string, limit int) ([]domain.PlayerRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	ns, err := repository.ResolveNamespace(namespace)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, constants.DefaultLeaderboardLimit, constants.MaxLeaderboardLimit)

	players, err := s.players.Leaderboard(ctx, ns, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("namespace", ns).Msg("failed to load leaderboard")
		return nil, err
	}

	s.logger.Debug().Str("namespace", ns).Int("count", len(players)).Msg("leaderboard loaded")
	return players, nil
}

func (s *LeaderboardService) GetPlayer(ctx context.Context, globalID int64, namespace string) (*domain.PlayerRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	ns, err := repository.ResolveNamespace(namespace)
	if err != nil {
		return nil, err
	}
	return s.players.Find(ctx, globalID, ns)
}

// GetPlayerHistory returns the player's ledger entries, newest first.
func (s *LeaderboardService) GetPlayerHistory(ctx context.Context, globalID int64, limit int) ([]domain.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	limit = clampLimit(limit, constants.DefaultHistoryLimit, constants.MaxLeaderboardLimit)
	return s.ledger.ListByPlayer(ctx, globalID, limit)
}

func (s *LeaderboardService) GetEventLedger(ctx context.Context, eventID int64) ([]domain.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.ledger.ListByEvent(ctx, eventID)
}

func (s *LeaderboardService) ListNamespaces(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.players.ListNamespaces(ctx)
}

func (s *LeaderboardService) ListIngestedEvents(ctx context.Context, limit int) ([]domain.IngestedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	limit = clampLimit(limit, constants.DefaultHistoryLimit, constants.MaxLeaderboardLimit)
	return s.events.List(ctx, limit)
}
