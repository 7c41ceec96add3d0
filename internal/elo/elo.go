// Package elo computes set-level Elo rating changes.
//
// A set of N games is rated as N independent game units evaluated at the
// pre-set ratings, so a 3-1 win moves ratings more than a 2-1 win.
package elo

import (
	"math"

	"bracket-elo/internal/domain"
)

const (
	KFactorLimit       = 20
	KFactorStandard    = 24.0
	KFactorProvisional = 32.0

	ratingScale = 400.0
)

// KFactor picks the update sensitivity from the games a player had before the set.
func KFactor(gamesPlayed int) float64 {
	if gamesPlayed < KFactorLimit {
		return KFactorProvisional
	}
	return KFactorStandard
}

// ExpectedScores returns the number of game units each side is expected to
// take out of units.
func ExpectedScores(ratingOne, ratingTwo float64, units int) (float64, float64) {
	quotientOne := math.Pow(10, ratingOne/ratingScale)
	quotientTwo := math.Pow(10, ratingTwo/ratingScale)

	shareOne := quotientOne / (quotientOne + quotientTwo)
	shareTwo := quotientTwo / (quotientOne + quotientTwo)

	return shareOne * float64(units), shareTwo * float64(units)
}

// Compute returns the rating deltas for both players of a set. Either score
// being domain.ForfeitScore yields zero deltas.
func Compute(one, two domain.PlayerRecord, scoreOne, scoreTwo int) (float64, float64) {
	if scoreOne == domain.ForfeitScore || scoreTwo == domain.ForfeitScore {
		return 0.0, 0.0
	}

	kOne := KFactor(one.GamesPlayed)
	kTwo := KFactor(two.GamesPlayed)

	expectedOne, expectedTwo := ExpectedScores(one.Rating, two.Rating, scoreOne+scoreTwo)

	deltaOne := kOne * (float64(scoreOne) - expectedOne)
	deltaTwo := kTwo * (float64(scoreTwo) - expectedTwo)

	return deltaOne, deltaTwo
}

// Apply folds one set into a record: the rating delta plus game counters.
func Apply(record *domain.PlayerRecord, delta float64, ownScore, opponentScore int) {
	record.Rating += delta
	record.GamesPlayed += ownScore + opponentScore
	record.Wins += ownScore
	record.Losses += opponentScore
	record.WinLossRatio = WinLossRatio(record.Wins, record.GamesPlayed)
}

func WinLossRatio(wins, gamesPlayed int) float64 {
	if gamesPlayed == 0 {
		return 0.0
	}
	return float64(wins) / float64(gamesPlayed)
}
