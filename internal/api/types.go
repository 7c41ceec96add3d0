package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"bracket-elo/internal/domain"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse[T any] struct {
	Data   *T             `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// ID accepts start.gg identifiers sent either as numbers or strings
// (unstarted sets use ids like "preview_123_0").
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	*id = ID(b)
	return nil
}

func (id ID) Int64() (int64, error) {
	v, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric id %q: %w", string(id), err)
	}
	return v, nil
}

type pageInfo struct {
	TotalPages int `json:"totalPages"`
}

type connection[N any] struct {
	PageInfo pageInfo `json:"pageInfo"`
	Nodes    []N      `json:"nodes"`
}

type named struct {
	Name string `json:"name"`
}

type tournamentData struct {
	Tournament *struct {
		Name   string `json:"name"`
		Events []struct {
			ID        ID     `json:"id"`
			Name      string `json:"name"`
			Videogame named  `json:"videogame"`
		} `json:"events"`
	} `json:"tournament"`
}

type eventMetaData struct {
	Event *struct {
		ID         ID     `json:"id"`
		Name       string `json:"name"`
		Tournament named  `json:"tournament"`
		Videogame  named  `json:"videogame"`
	} `json:"event"`
}

type entrantsData struct {
	Event *struct {
		Entrants *connection[entrantNode] `json:"entrants"`
	} `json:"event"`
}

type entrantNode struct {
	ID           ID `json:"id"`
	Participants []struct {
		GamerTag string `json:"gamerTag"`
		User     *struct {
			ID ID `json:"id"`
		} `json:"user"`
	} `json:"participants"`
}

type setsData struct {
	Event *struct {
		Sets *connection[setNode] `json:"sets"`
	} `json:"event"`
}

type setNode struct {
	ID          ID     `json:"id"`
	CompletedAt *int64 `json:"completedAt"`
	Slots       []struct {
		Entrant *struct {
			ID ID `json:"id"`
		} `json:"entrant"`
		Standing *struct {
			Stats struct {
				Score struct {
					Value *int `json:"value"`
				} `json:"score"`
			} `json:"stats"`
		} `json:"standing"`
	} `json:"slots"`
}

func (n setNode) toMatchResult() (domain.MatchResult, error) {
	if len(n.Slots) < 2 || n.Slots[0].Entrant == nil || n.Slots[1].Entrant == nil {
		return domain.MatchResult{}, fmt.Errorf("set %s: %w", n.ID, ErrMalformedSet)
	}

	one, err := n.Slots[0].Entrant.ID.Int64()
	if err != nil {
		return domain.MatchResult{}, err
	}
	two, err := n.Slots[1].Entrant.ID.Int64()
	if err != nil {
		return domain.MatchResult{}, err
	}

	if n.CompletedAt == nil {
		return domain.MatchResult{}, fmt.Errorf("set %s: no completion time: %w", n.ID, ErrMalformedSet)
	}
	completed := time.Unix(*n.CompletedAt, 0).UTC()

	return domain.MatchResult{
		SetID:          string(n.ID),
		PlayerOneID:    one,
		PlayerOneScore: n.slotScore(0),
		PlayerTwoID:    two,
		PlayerTwoScore: n.slotScore(1),
		CompletedAt:    completed,
	}, nil
}

// slotScore treats a missing standing or score as a forfeit.
func (n setNode) slotScore(i int) int {
	standing := n.Slots[i].Standing
	if standing == nil || standing.Stats.Score.Value == nil {
		return domain.ForfeitScore
	}
	return *standing.Stats.Score.Value
}
