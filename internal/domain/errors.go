package domain

import "errors"

var (
	ErrUnknownParticipant   = errors.New("participant not in event roster")
	ErrInvalidNamespace     = errors.New("namespace normalizes to an empty identifier")
	ErrReservedNamespace    = errors.New("namespace is reserved")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrEventAlreadyIngested = errors.New("event already ingested")
	ErrNoMatches            = errors.New("event has no completed sets")
	ErrSelfMatch            = errors.New("both entrants belong to the same player")
)
