package domain

import (
	"time"
)

const (
	OverallNamespace = "overall"
	DefaultRating    = 1500.0

	// ForfeitScore marks a side with no recorded result (DQ or no-show).
	ForfeitScore = -1
)

type PlayerRecord struct {
	GlobalID          int64
	Name              string
	Rank              int
	Rating            float64
	GamesPlayed       int
	Wins              int
	Losses            int
	WinLossRatio      float64
	TournamentsPlayed int
	TournamentsWon    int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewPlayerRecord returns the defaults a player starts with in any namespace.
func NewPlayerRecord(globalID int64, name string) PlayerRecord {
	return PlayerRecord{
		GlobalID: globalID,
		Name:     name,
		Rating:   DefaultRating,
	}
}

type Participant struct {
	Name     string
	GlobalID int64
}

// Roster maps an event-local entrant id to the participant behind it.
type Roster map[int64]Participant

type MatchResult struct {
	SetID          string
	PlayerOneID    int64
	PlayerOneScore int
	PlayerTwoID    int64
	PlayerTwoScore int
	CompletedAt    time.Time
}

func (m MatchResult) IsForfeit() bool {
	return m.PlayerOneScore == ForfeitScore || m.PlayerTwoScore == ForfeitScore
}

type LedgerEntry struct {
	ID                string // nanoid
	EventID           int64
	SetID             string
	PlayerOneGlobalID int64
	PlayerOneName     string
	PlayerOneRating   float64 // overall rating before the set
	PlayerOneScore    int
	PlayerOneDelta    float64
	PlayerTwoGlobalID int64
	PlayerTwoName     string
	PlayerTwoRating   float64
	PlayerTwoScore    int
	PlayerTwoDelta    float64
	TournamentName    string
	GameName          string
	SetTime           string // ISO-8601, UTC
	CreatedAt         time.Time
}

type EventMeta struct {
	EventID        int64
	EventName      string
	TournamentName string
	GameName       string
}

type RankAssignment struct {
	GlobalID int64
	Rank     int
}

type IngestedEvent struct {
	EventID        int64
	EventName      string
	TournamentName string
	GameName       string
	Namespace      string
	MatchCount     int
	ForfeitCount   int
	WinnerGlobalID int64 // 0 when the final produced no winner
	IngestedAt     time.Time
}
