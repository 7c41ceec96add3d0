package service

import (
	"cmp"
	"context"
	"slices"

	"bracket-elo/internal/domain"

	"github.com/rs/zerolog"
)

type Ranker struct {
	players PlayerStore
	logger  zerolog.Logger
}

func NewRanker(players PlayerStore, logger zerolog.Logger) *Ranker {
	return &Ranker{players: players, logger: logger}
}

// RecomputeRanks overwrites every rank in namespace: rating descending, equal
// ratings ordered by global id ascending.
func (r *Ranker) RecomputeRanks(ctx context.Context, namespace string) ([]domain.RankAssignment, error) {
	players, err := r.players.List(ctx, namespace)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(players, func(a, b domain.PlayerRecord) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.GlobalID, b.GlobalID)
	})

	ranks := make([]domain.RankAssignment, len(players))
	for i, p := range players {
		ranks[i] = domain.RankAssignment{GlobalID: p.GlobalID, Rank: i + 1}
	}

	if err := r.players.SaveRanks(ctx, namespace, ranks); err != nil {
		return nil, err
	}

	r.logger.Info().Str("namespace", namespace).Int("players", len(ranks)).Msg("ranks recomputed")
	return ranks, nil
}

// IncrementTournamentCount credits one tournament to every roster participant.
// Callers must invoke it once per event per namespace.
func (r *Ranker) IncrementTournamentCount(ctx context.Context, roster domain.Roster, namespace string) error {
	seen := make(map[int64]bool, len(roster))
	participants := make([]domain.Participant, 0, len(roster))
	for _, p := range roster {
		if seen[p.GlobalID] {
			continue
		}
		seen[p.GlobalID] = true
		participants = append(participants, p)
	}
	slices.SortFunc(participants, func(a, b domain.Participant) int {
		return cmp.Compare(a.GlobalID, b.GlobalID)
	})

	for _, p := range participants {
		if err := r.players.IncrementTournamentsPlayed(ctx, p.GlobalID, p.Name, namespace); err != nil {
			return err
		}
	}

	r.logger.Debug().Str("namespace", namespace).Int("participants", len(participants)).Msg("tournament counts incremented")
	return nil
}
