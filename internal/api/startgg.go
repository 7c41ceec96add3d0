package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	"bracket-elo/internal/config"
	"bracket-elo/internal/constants"
	"bracket-elo/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
)

//go:embed queries/*.graphql
var queryFS embed.FS

var (
	queryTournamentEvents = mustQuery("tournament_events.graphql")
	queryEventMeta        = mustQuery("event_meta.graphql")
	queryEventEntrants    = mustQuery("event_entrants.graphql")
	queryEventSets        = mustQuery("event_sets.graphql")
)

func mustQuery(name string) string {
	b, err := queryFS.ReadFile("queries/" + name)
	if err != nil {
		panic(fmt.Sprintf("missing embedded query %s: %v", name, err))
	}
	return string(b)
}

var (
	ErrMissingToken = errors.New("start.gg API token is not configured")
	ErrAPIStatus    = errors.New("unexpected API status")
	ErrRateLimited  = errors.New("start.gg rate limit exceeded")
	ErrGraphQL      = errors.New("graphql error")
	ErrNotFound     = errors.New("not found on start.gg")
	ErrMalformedSet = errors.New("set is missing entrant or completion data")
	ErrMissingUser  = errors.New("entrant has no linked user account")
)

// StartGGClient reads tournament data from the start.gg GraphQL API.
type StartGGClient struct {
	token       string
	url         string
	client      *fasthttp.Client
	logger      zerolog.Logger
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewStartGGClient never fails on a missing token so read-only callers can
// still start; every query returns ErrMissingToken instead.
func NewStartGGClient(cfg *config.Config, logger zerolog.Logger) *StartGGClient {
	if cfg.StartGGToken == "" {
		logger.Warn().Msg("STARTGG_API_TOKEN not set, event ingestion is disabled")
	}

	return &StartGGClient{
		token: cfg.StartGGToken,
		url:   cfg.StartGGURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     constants.APIPageConcurrency * 2,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
		rateLimit: RateLimitInfo{
			Limit:     80,
			Remaining: 80,
			Reset:     60,
			UpdatedAt: time.Now(),
		},
	}
}

func (c *StartGGClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *StartGGClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

func (c *StartGGClient) GetTournamentEvents(ctx context.Context, slug string) ([]domain.EventMeta, error) {
	data, err := doQuery[tournamentData](ctx, c, queryTournamentEvents, map[string]any{"slug": slug})
	if err != nil {
		return nil, err
	}
	if data.Tournament == nil {
		return nil, fmt.Errorf("tournament %q: %w", slug, ErrNotFound)
	}

	events := make([]domain.EventMeta, 0, len(data.Tournament.Events))
	for _, e := range data.Tournament.Events {
		id, err := e.ID.Int64()
		if err != nil {
			return nil, err
		}
		events = append(events, domain.EventMeta{
			EventID:        id,
			EventName:      e.Name,
			TournamentName: data.Tournament.Name,
			GameName:       e.Videogame.Name,
		})
	}
	return events, nil
}

func (c *StartGGClient) GetEventMeta(ctx context.Context, eventID int64) (*domain.EventMeta, error) {
	data, err := doQuery[eventMetaData](ctx, c, queryEventMeta, map[string]any{"eventId": eventID})
	if err != nil {
		return nil, err
	}
	if data.Event == nil {
		return nil, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}

	return &domain.EventMeta{
		EventID:        eventID,
		EventName:      data.Event.Name,
		TournamentName: data.Event.Tournament.Name,
		GameName:       data.Event.Videogame.Name,
	}, nil
}

// GetRoster maps every entrant id in the event to the account behind it.
func (c *StartGGClient) GetRoster(ctx context.Context, eventID int64) (domain.Roster, error) {
	vars := map[string]any{"eventId": eventID}
	nodes, err := fetchAllPages(ctx, c, queryEventEntrants, vars, constants.EntrantsPerPage,
		func(d *entrantsData) (*connection[entrantNode], error) {
			if d.Event == nil || d.Event.Entrants == nil {
				return nil, fmt.Errorf("event %d entrants: %w", eventID, ErrNotFound)
			}
			return d.Event.Entrants, nil
		})
	if err != nil {
		return nil, err
	}

	roster := make(domain.Roster, len(nodes))
	for _, n := range nodes {
		entrantID, err := n.ID.Int64()
		if err != nil {
			return nil, err
		}
		if len(n.Participants) == 0 || n.Participants[0].User == nil {
			return nil, fmt.Errorf("entrant %d: %w", entrantID, ErrMissingUser)
		}
		p := n.Participants[0]
		globalID, err := p.User.ID.Int64()
		if err != nil {
			return nil, err
		}
		roster[entrantID] = domain.Participant{Name: p.GamerTag, GlobalID: globalID}
	}

	c.logger.Debug().Int64("event_id", eventID).Int("entrants", len(roster)).Msg("roster fetched")
	return roster, nil
}

// GetMatches returns the event's completed sets in the order start.gg lists
// them. A missing score is reported as domain.ForfeitScore.
func (c *StartGGClient) GetMatches(ctx context.Context, eventID int64) ([]domain.MatchResult, error) {
	vars := map[string]any{
		"eventId": eventID,
		"states":  []int{constants.CompletedSetState},
	}
	nodes, err := fetchAllPages(ctx, c, queryEventSets, vars, constants.SetsPerPage,
		func(d *setsData) (*connection[setNode], error) {
			if d.Event == nil || d.Event.Sets == nil {
				return nil, fmt.Errorf("event %d sets: %w", eventID, ErrNotFound)
			}
			return d.Event.Sets, nil
		})
	if err != nil {
		return nil, err
	}

	matches := make([]domain.MatchResult, 0, len(nodes))
	for _, n := range nodes {
		m, err := n.toMatchResult()
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	c.logger.Debug().Int64("event_id", eventID).Int("sets", len(matches)).Msg("sets fetched")
	return matches, nil
}

// fetchAllPages reads page 1 to learn the page count, then fetches the rest
// concurrently. Nodes are returned in page order.
func fetchAllPages[T, N any](
	ctx context.Context,
	c *StartGGClient,
	query string,
	vars map[string]any,
	perPage int,
	pick func(*T) (*connection[N], error),
) ([]N, error) {
	fetch := func(ctx context.Context, page int) (*connection[N], error) {
		v := maps.Clone(vars)
		v["page"] = page
		v["perPage"] = perPage

		data, err := doQuery[T](ctx, c, query, v)
		if err != nil {
			return nil, err
		}
		return pick(data)
	}

	first, err := fetch(ctx, 1)
	if err != nil {
		return nil, err
	}

	total := max(first.PageInfo.TotalPages, 1)
	pages := make([][]N, total)
	pages[0] = first.Nodes

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.APIPageConcurrency)
	for page := 2; page <= total; page++ {
		g.Go(func() error {
			conn, err := fetch(gctx, page)
			if err != nil {
				return fmt.Errorf("failed to fetch page %d: %w", page, err)
			}
			pages[page-1] = conn.Nodes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var nodes []N
	for _, p := range pages {
		nodes = append(nodes, p...)
	}
	return nodes, nil
}

func doQuery[T any](ctx context.Context, client *StartGGClient, query string, variables map[string]any) (*T, error) {
	if client.token == "" {
		return nil, ErrMissingToken
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+client.token)
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.ExternalAPITimeout)
	}
	if err := client.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("failed to reach start.gg: %w", err)
	}

	client.updateRateLimit(resp)

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusTooManyRequests:
		client.logger.Warn().Int("reset", client.GetRateLimitInfo().Reset).Msg("start.gg rate limit hit")
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("%w: %d", ErrAPIStatus, resp.StatusCode())
	}

	var result graphQLResponse[T]
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}
	if result.Data == nil {
		return nil, fmt.Errorf("%w: empty data", ErrGraphQL)
	}
	return result.Data, nil
}
