package db

import (
	"time"
)

type IngestedEvent struct {
	EventID        int64
	EventName      string
	TournamentName string
	GameName       string
	Namespace      string
	MatchCount     int64
	ForfeitCount   int64
	WinnerGlobalID int64
	IngestedAt     time.Time
}

type Namespace struct {
	Name      string
	CreatedAt time.Time
}

type Player struct {
	Namespace         string
	GlobalID          int64
	Name              string
	PlayerRank        int64
	Rating            float64
	GamesPlayed       int64
	Wins              int64
	Losses            int64
	WinLossRatio      float64
	TournamentsPlayed int64
	TournamentsWon    int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Set struct {
	ID                string
	EventID           int64
	SetID             string
	PlayerOneGlobalID int64
	PlayerOneName     string
	PlayerOneRating   float64
	PlayerOneScore    int64
	PlayerOneDelta    float64
	PlayerTwoGlobalID int64
	PlayerTwoName     string
	PlayerTwoRating   float64
	PlayerTwoScore    int64
	PlayerTwoDelta    float64
	TournamentName    string
	GameName          string
	SetTime           string
	CreatedAt         time.Time
}
