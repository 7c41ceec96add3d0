package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"bracket-elo/internal/domain"
	"bracket-elo/internal/elo"
	"bracket-elo/internal/metrics"

	"github.com/rs/zerolog"
)

type EventInput struct {
	EventID        int64
	TournamentName string
	GameName       string
	GameNamespace  string
	Roster         domain.Roster
	Matches        []domain.MatchResult
}

type EventSummary struct {
	Processed      int
	Rated          int
	Forfeits       int
	WinnerGlobalID int64 // 0 when the final was tied or forfeited
	Entries        []domain.LedgerEntry
}

// LedgerProcessor applies one event's sets to player ratings and writes the
// ledger. It is not safe for concurrent use on the same namespaces.
type LedgerProcessor struct {
	players PlayerStore
	ledger  LedgerStore
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewLedgerProcessor(players PlayerStore, ledger LedgerStore, m *metrics.Metrics, logger zerolog.Logger) *LedgerProcessor {
	return &LedgerProcessor{players: players, ledger: ledger, metrics: m, logger: logger}
}

type ratedPair struct {
	one, two *domain.PlayerRecord
}

func (p *LedgerProcessor) ProcessEvent(ctx context.Context, in EventInput) (*EventSummary, error) {
	log := p.logger.With().
		Int64("event_id", in.EventID).
		Str("tournament", in.TournamentName).
		Str("game", in.GameName).
		Logger()

	for _, ns := range []string{domain.OverallNamespace, in.GameNamespace} {
		if err := p.players.EnsureNamespace(ctx, ns); err != nil {
			return nil, err
		}
	}

	// completion order drives K-factor tiers and ratings; ties keep input order
	matches := slices.Clone(in.Matches)
	slices.SortStableFunc(matches, func(a, b domain.MatchResult) int {
		return a.CompletedAt.Compare(b.CompletedAt)
	})

	log.Info().Int("match_count", len(matches)).Int("roster_size", len(in.Roster)).Msg("processing event")

	summary := &EventSummary{Entries: make([]domain.LedgerEntry, 0, len(matches))}
	for _, match := range matches {
		entry, err := p.processMatch(ctx, in, match)
		if err != nil {
			log.Error().Err(err).Str("set_id", match.SetID).Msg("failed to process set")
			return nil, err
		}

		summary.Processed++
		if match.IsForfeit() {
			summary.Forfeits++
		} else {
			summary.Rated++
		}
		summary.Entries = append(summary.Entries, *entry)
	}

	if len(matches) > 0 {
		winner, err := p.awardFinal(ctx, in, matches[len(matches)-1])
		if err != nil {
			return nil, err
		}
		summary.WinnerGlobalID = winner
	}

	log.Info().
		Int("rated", summary.Rated).
		Int("forfeits", summary.Forfeits).
		Int64("winner_global_id", summary.WinnerGlobalID).
		Msg("event processed")

	return summary, nil
}

func (p *LedgerProcessor) processMatch(ctx context.Context, in EventInput, match domain.MatchResult) (*domain.LedgerEntry, error) {
	one, two, err := resolvePair(in.Roster, match)
	if err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		EventID:           in.EventID,
		SetID:             match.SetID,
		PlayerOneGlobalID: one.GlobalID,
		PlayerOneName:     one.Name,
		PlayerOneScore:    match.PlayerOneScore,
		PlayerTwoGlobalID: two.GlobalID,
		PlayerTwoName:     two.Name,
		PlayerTwoScore:    match.PlayerTwoScore,
		TournamentName:    in.TournamentName,
		GameName:          in.GameName,
		SetTime:           match.CompletedAt.UTC().Format(time.RFC3339),
	}

	if match.IsForfeit() {
		if entry.PlayerOneRating, err = p.currentRating(ctx, one.GlobalID); err != nil {
			return nil, err
		}
		if entry.PlayerTwoRating, err = p.currentRating(ctx, two.GlobalID); err != nil {
			return nil, err
		}
		if err := p.ledger.Append(ctx, entry); err != nil {
			return nil, err
		}

		p.metrics.MatchForfeited()
		p.logger.Debug().
			Str("set_id", match.SetID).
			Int("score_one", match.PlayerOneScore).
			Int("score_two", match.PlayerTwoScore).
			Msg("forfeit recorded without rating change")
		return entry, nil
	}

	overall, err := p.loadPair(ctx, one, two, domain.OverallNamespace)
	if err != nil {
		return nil, err
	}
	game, err := p.loadPair(ctx, one, two, in.GameNamespace)
	if err != nil {
		return nil, err
	}

	entry.PlayerOneRating = overall.one.Rating
	entry.PlayerTwoRating = overall.two.Rating

	deltaOne, deltaTwo := p.rate(overall, match)
	p.rate(game, match)

	for _, pair := range []struct {
		ns      string
		players ratedPair
	}{
		{domain.OverallNamespace, overall},
		{in.GameNamespace, game},
	} {
		if err := p.players.Save(ctx, pair.players.one, pair.ns); err != nil {
			return nil, err
		}
		if err := p.players.Save(ctx, pair.players.two, pair.ns); err != nil {
			return nil, err
		}
	}

	entry.PlayerOneDelta = deltaOne
	entry.PlayerTwoDelta = deltaTwo
	if err := p.ledger.Append(ctx, entry); err != nil {
		return nil, err
	}

	p.metrics.MatchRated(deltaOne, deltaTwo)
	p.logger.Debug().
		Str("set_id", match.SetID).
		Int64("player_one", one.GlobalID).
		Float64("delta_one", deltaOne).
		Int64("player_two", two.GlobalID).
		Float64("delta_two", deltaTwo).
		Msg("set rated")
	return entry, nil
}

func (p *LedgerProcessor) loadPair(ctx context.Context, one, two domain.Participant, namespace string) (ratedPair, error) {
	recordOne, err := p.players.GetOrCreate(ctx, one.GlobalID, one.Name, namespace)
	if err != nil {
		return ratedPair{}, err
	}
	recordTwo, err := p.players.GetOrCreate(ctx, two.GlobalID, two.Name, namespace)
	if err != nil {
		return ratedPair{}, err
	}
	return ratedPair{one: recordOne, two: recordTwo}, nil
}

// rate computes deltas from the pre-set records and then applies them.
func (p *LedgerProcessor) rate(pair ratedPair, match domain.MatchResult) (float64, float64) {
	deltaOne, deltaTwo := elo.Compute(*pair.one, *pair.two, match.PlayerOneScore, match.PlayerTwoScore)
	elo.Apply(pair.one, deltaOne, match.PlayerOneScore, match.PlayerTwoScore)
	elo.Apply(pair.two, deltaTwo, match.PlayerTwoScore, match.PlayerOneScore)
	return deltaOne, deltaTwo
}

// currentRating reads the overall rating without creating a row.
func (p *LedgerProcessor) currentRating(ctx context.Context, globalID int64) (float64, error) {
	record, err := p.players.Find(ctx, globalID, domain.OverallNamespace)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return domain.DefaultRating, nil
	}
	if err != nil {
		return 0, err
	}
	return record.Rating, nil
}

// awardFinal credits the tournament win to the strictly higher scorer of the
// last set. Tied or forfeited finals have no winner.
func (p *LedgerProcessor) awardFinal(ctx context.Context, in EventInput, final domain.MatchResult) (int64, error) {
	if final.IsForfeit() || final.PlayerOneScore == final.PlayerTwoScore {
		p.logger.Warn().
			Int64("event_id", in.EventID).
			Str("set_id", final.SetID).
			Int("score_one", final.PlayerOneScore).
			Int("score_two", final.PlayerTwoScore).
			Msg("final set has no winner, tournament win not assigned")
		return 0, nil
	}

	winnerID := final.PlayerOneID
	if final.PlayerTwoScore > final.PlayerOneScore {
		winnerID = final.PlayerTwoID
	}
	winner := in.Roster[winnerID]

	for _, ns := range []string{domain.OverallNamespace, in.GameNamespace} {
		if err := p.players.IncrementTournamentsWon(ctx, winner.GlobalID, ns); err != nil {
			return 0, err
		}
	}

	p.logger.Info().
		Int64("event_id", in.EventID).
		Int64("winner_global_id", winner.GlobalID).
		Str("winner", winner.Name).
		Msg("tournament winner recorded")
	return winner.GlobalID, nil
}

func resolvePair(roster domain.Roster, match domain.MatchResult) (domain.Participant, domain.Participant, error) {
	one, ok := roster[match.PlayerOneID]
	if !ok {
		return domain.Participant{}, domain.Participant{}, fmt.Errorf("set %s: entrant %d: %w", match.SetID, match.PlayerOneID, domain.ErrUnknownParticipant)
	}
	two, ok := roster[match.PlayerTwoID]
	if !ok {
		return domain.Participant{}, domain.Participant{}, fmt.Errorf("set %s: entrant %d: %w", match.SetID, match.PlayerTwoID, domain.ErrUnknownParticipant)
	}
	if one.GlobalID == two.GlobalID {
		return domain.Participant{}, domain.Participant{}, fmt.Errorf("set %s: global id %d: %w", match.SetID, one.GlobalID, domain.ErrSelfMatch)
	}
	return one, two, nil
}
