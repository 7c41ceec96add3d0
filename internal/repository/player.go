package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bracket-elo/internal/constants"
	"bracket-elo/internal/db"
	"bracket-elo/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	queries *db.Queries
	db      *sql.DB // nil when bound to a transaction
	logger  zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *PlayerRepository) withTx(tx *sql.Tx) *PlayerRepository {
	return &PlayerRepository{
		queries: r.queries.WithTx(tx),
		logger:  r.logger,
	}
}

func (r *PlayerRepository) EnsureNamespace(ctx context.Context, namespace string) error {
	if !validNamespace(namespace) {
		return fmt.Errorf("namespace %q: %w", namespace, domain.ErrInvalidNamespace)
	}

	err := r.queries.InsertNamespace(ctx, db.InsertNamespaceParams{
		Name:      namespace,
		CreatedAt: time.Now(),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("namespace", namespace).Msg("failed to ensure namespace")
		return fmt.Errorf("failed to ensure namespace %s: %w", namespace, err)
	}
	return nil
}

func (r *PlayerRepository) ListNamespaces(ctx context.Context) ([]string, error) {
	rows, err := r.queries.ListNamespaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}

	names := make([]string, len(rows))
	for i, ns := range rows {
		names[i] = ns.Name
	}
	return names, nil
}

// GetOrCreate returns the stored record, inserting a default one first if the
// player has never been seen in namespace. An existing name is never replaced.
func (r *PlayerRepository) GetOrCreate(ctx context.Context, globalID int64, name, namespace string) (*domain.PlayerRecord, error) {
	now := time.Now()
	err := r.queries.InsertPlayerIfMissing(ctx, db.InsertPlayerIfMissingParams{
		Namespace: namespace,
		GlobalID:  globalID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		r.logger.Error().Err(err).Int64("global_id", globalID).Str("namespace", namespace).Msg("failed to create player")
		return nil, fmt.Errorf("failed to create player %d in %s: %w", globalID, namespace, err)
	}

	player, err := r.queries.GetPlayer(ctx, db.GetPlayerParams{Namespace: namespace, GlobalID: globalID})
	if err != nil {
		r.logger.Error().Err(err).Int64("global_id", globalID).Str("namespace", namespace).Msg("failed to get player")
		return nil, fmt.Errorf("failed to get player %d in %s: %w", globalID, namespace, err)
	}

	record := toPlayerRecord(player)
	return &record, nil
}

func (r *PlayerRepository) Find(ctx context.Context, globalID int64, namespace string) (*domain.PlayerRecord, error) {
	player, err := r.queries.GetPlayer(ctx, db.GetPlayerParams{Namespace: namespace, GlobalID: globalID})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %d in %s: %w", globalID, namespace, domain.ErrPlayerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d in %s: %w", globalID, namespace, err)
	}

	record := toPlayerRecord(player)
	return &record, nil
}

// Save persists the match-driven fields only: rating, games, wins, losses and
// ratio. Rank and tournament counters have their own writers.
func (r *PlayerRepository) Save(ctx context.Context, record *domain.PlayerRecord, namespace string) error {
	affected, err := r.queries.UpdatePlayerStats(ctx, db.UpdatePlayerStatsParams{
		Rating:       record.Rating,
		GamesPlayed:  int64(record.GamesPlayed),
		Wins:         int64(record.Wins),
		Losses:       int64(record.Losses),
		WinLossRatio: record.WinLossRatio,
		UpdatedAt:    time.Now(),
		Namespace:    namespace,
		GlobalID:     record.GlobalID,
	})
	if err != nil {
		r.logger.Error().Err(err).Int64("global_id", record.GlobalID).Str("namespace", namespace).Msg("failed to save player")
		return fmt.Errorf("failed to save player %d in %s: %w", record.GlobalID, namespace, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to save player %d in %s: %w", record.GlobalID, namespace, domain.ErrPlayerNotFound)
	}

	r.logger.Debug().
		Int64("global_id", record.GlobalID).
		Str("namespace", namespace).
		Float64("rating", record.Rating).
		Int("games_played", record.GamesPlayed).
		Msg("player saved")
	return nil
}

func (r *PlayerRepository) List(ctx context.Context, namespace string) ([]domain.PlayerRecord, error) {
	players, err := r.queries.ListPlayersByNamespace(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list players in %s: %w", namespace, err)
	}

	result := make([]domain.PlayerRecord, len(players))
	for i, p := range players {
		result[i] = toPlayerRecord(p)
	}
	return result, nil
}

// Leaderboard returns ranked players in rank order. Players created after the
// last rank pass (rank 0) are left out.
func (r *PlayerRepository) Leaderboard(ctx context.Context, namespace string, limit int) ([]domain.PlayerRecord, error) {
	players, err := r.queries.ListRankedPlayers(ctx, db.ListRankedPlayersParams{
		Namespace: namespace,
		Limit:     int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard for %s: %w", namespace, err)
	}

	result := make([]domain.PlayerRecord, len(players))
	for i, p := range players {
		result[i] = toPlayerRecord(p)
	}
	return result, nil
}

func (r *PlayerRepository) SaveRanks(ctx context.Context, namespace string, ranks []domain.RankAssignment) error {
	return runBatch(ctx, r.db, r.queries, func(q *db.Queries) error {
		for i := 0; i < len(ranks); i += constants.DBBatchSize {
			end := i + constants.DBBatchSize
			if end > len(ranks) {
				end = len(ranks)
			}

			for _, rank := range ranks[i:end] {
				err := q.UpdatePlayerRank(ctx, db.UpdatePlayerRankParams{
					PlayerRank: int64(rank.Rank),
					Namespace:  namespace,
					GlobalID:   rank.GlobalID,
				})
				if err != nil {
					return fmt.Errorf("failed to save rank for player %d in %s: %w", rank.GlobalID, namespace, err)
				}
			}
		}
		return nil
	})
}

// IncrementTournamentsPlayed bumps the participation counter, creating the
// row for players whose only sets in the event were forfeits.
func (r *PlayerRepository) IncrementTournamentsPlayed(ctx context.Context, globalID int64, name, namespace string) error {
	now := time.Now()
	err := r.queries.IncrementTournamentsPlayed(ctx, db.IncrementTournamentsPlayedParams{
		Namespace: namespace,
		GlobalID:  globalID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to increment tournaments played for player %d in %s: %w", globalID, namespace, err)
	}
	return nil
}

func (r *PlayerRepository) IncrementTournamentsWon(ctx context.Context, globalID int64, namespace string) error {
	affected, err := r.queries.IncrementTournamentsWon(ctx, db.IncrementTournamentsWonParams{
		UpdatedAt: time.Now(),
		Namespace: namespace,
		GlobalID:  globalID,
	})
	if err != nil {
		return fmt.Errorf("failed to increment tournaments won for player %d in %s: %w", globalID, namespace, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to increment tournaments won for player %d in %s: %w", globalID, namespace, domain.ErrPlayerNotFound)
	}
	return nil
}

func toPlayerRecord(p db.Player) domain.PlayerRecord {
	return domain.PlayerRecord{
		GlobalID:          p.GlobalID,
		Name:              p.Name,
		Rank:              int(p.PlayerRank),
		Rating:            p.Rating,
		GamesPlayed:       int(p.GamesPlayed),
		Wins:              int(p.Wins),
		Losses:            int(p.Losses),
		WinLossRatio:      p.WinLossRatio,
		TournamentsPlayed: int(p.TournamentsPlayed),
		TournamentsWon:    int(p.TournamentsWon),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
