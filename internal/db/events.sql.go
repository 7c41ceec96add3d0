package db

import (
	"context"
	"time"
)

const eventColumns = `event_id, event_name, tournament_name, game_name, namespace,
       match_count, forfeit_count, winner_global_id, ingested_at`

func scanIngestedEvent(row interface{ Scan(dest ...any) error }, i *IngestedEvent) error {
	return row.Scan(
		&i.EventID,
		&i.EventName,
		&i.TournamentName,
		&i.GameName,
		&i.Namespace,
		&i.MatchCount,
		&i.ForfeitCount,
		&i.WinnerGlobalID,
		&i.IngestedAt,
	)
}

const insertIngestedEvent = `-- name: InsertIngestedEvent :exec
INSERT INTO ingested_events (` + eventColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertIngestedEventParams struct {
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

func (q *Queries) InsertIngestedEvent(ctx context.Context, arg InsertIngestedEventParams) error {
	_, err := q.db.ExecContext(ctx, insertIngestedEvent,
		arg.EventID,
		arg.EventName,
		arg.TournamentName,
		arg.GameName,
		arg.Namespace,
		arg.MatchCount,
		arg.ForfeitCount,
		arg.WinnerGlobalID,
		arg.IngestedAt,
	)
	return err
}

const getIngestedEvent = `-- name: GetIngestedEvent :one
SELECT ` + eventColumns + `
FROM ingested_events
WHERE event_id = ?
`

func (q *Queries) GetIngestedEvent(ctx context.Context, eventID int64) (IngestedEvent, error) {
	row := q.db.QueryRowContext(ctx, getIngestedEvent, eventID)
	var i IngestedEvent
	err := scanIngestedEvent(row, &i)
	return i, err
}

const listIngestedEvents = `-- name: ListIngestedEvents :many
SELECT ` + eventColumns + `
FROM ingested_events
ORDER BY ingested_at DESC
LIMIT ?
`

func (q *Queries) ListIngestedEvents(ctx context.Context, limit int64) ([]IngestedEvent, error) {
	rows, err := q.db.QueryContext(ctx, listIngestedEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []IngestedEvent
	for rows.Next() {
		var i IngestedEvent
		if err := scanIngestedEvent(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
