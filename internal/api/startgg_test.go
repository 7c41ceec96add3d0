package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"bracket-elo/internal/config"
	"bracket-elo/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type recordedRequest struct {
	auth        string
	contentType string
	query       string
	variables   map[string]any
}

type fakeStartGG struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(req recordedRequest) (int, string)
}

func (f *fakeStartGG) handle(ctx *fasthttp.RequestCtx) {
	var body graphQLRequest
	if err := json.Unmarshal(ctx.PostBody(), &body); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		return
	}

	req := recordedRequest{
		auth:        string(ctx.Request.Header.Peek("Authorization")),
		contentType: string(ctx.Request.Header.ContentType()),
		query:       body.Query,
		variables:   body.Variables,
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	status, payload := f.respond(req)
	ctx.Response.Header.Set("X-Ratelimit-Remaining", "79")
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(payload)
}

func newTestClient(t *testing.T, token string, respond func(req recordedRequest) (int, string)) (*StartGGClient, *fakeStartGG) {
	t.Helper()

	fake := &fakeStartGG{respond: respond}
	ln := fasthttputil.NewInmemoryListener()
	go fasthttp.Serve(ln, fake.handle)
	t.Cleanup(func() { ln.Close() })

	cfg := &config.Config{StartGGToken: token, StartGGURL: "http://startgg.test/gql/alpha"}
	client := NewStartGGClient(cfg, zerolog.Nop())
	client.client.Dial = func(addr string) (net.Conn, error) { return ln.Dial() }
	return client, fake
}

func pageOf(req recordedRequest) int {
	return int(req.variables["page"].(float64))
}

func TestGetEventMeta(t *testing.T) {
	client, fake := newTestClient(t, "secret", func(req recordedRequest) (int, string) {
		return 200, `{"data":{"event":{"id":9001,"name":"Tekken 8 Singles","tournament":{"name":"Friday Frays #12"},"videogame":{"name":"TEKKEN 8"}}}}`
	})

	meta, err := client.GetEventMeta(context.Background(), 9001)
	require.NoError(t, err)
	assert.Equal(t, &domain.EventMeta{
		EventID:        9001,
		EventName:      "Tekken 8 Singles",
		TournamentName: "Friday Frays #12",
		GameName:       "TEKKEN 8",
	}, meta)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, "Bearer secret", req.auth)
	assert.Equal(t, "application/json", req.contentType)
	assert.Contains(t, req.query, "query EventMeta")
	assert.Equal(t, float64(9001), req.variables["eventId"])
	assert.Equal(t, 79, client.GetRateLimitInfo().Remaining)
}

func TestGetEventMeta_NullEvent(t *testing.T) {
	client, _ := newTestClient(t, "secret", func(recordedRequest) (int, string) {
		return 200, `{"data":{"event":null}}`
	})

	_, err := client.GetEventMeta(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetTournamentEvents(t *testing.T) {
	client, fake := newTestClient(t, "secret", func(recordedRequest) (int, string) {
		return 200, `{"data":{"tournament":{"name":"Friday Frays #12","events":[
			{"id":9001,"name":"Tekken 8 Singles","videogame":{"name":"TEKKEN 8"}},
			{"id":"9002","name":"SF6 Singles","videogame":{"name":"Street Fighter 6"}}]}}}`
	})

	events, err := client.GetTournamentEvents(context.Background(), "friday-frays-12")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(9002), events[1].EventID)
	assert.Equal(t, "Street Fighter 6", events[1].GameName)
	assert.Equal(t, "Friday Frays #12", events[1].TournamentName)
	assert.Equal(t, "friday-frays-12", fake.requests[0].variables["slug"])
}

func TestGetRoster_Paginates(t *testing.T) {
	client, fake := newTestClient(t, "secret", func(req recordedRequest) (int, string) {
		page := pageOf(req)
		return 200, fmt.Sprintf(`{"data":{"event":{"entrants":{"pageInfo":{"totalPages":3},"nodes":[
			{"id":%d,"participants":[{"gamerTag":"player%d","user":{"id":%d}}]}]}}}}`, 100+page, page, page)
	})

	roster, err := client.GetRoster(context.Background(), 9001)
	require.NoError(t, err)
	assert.Equal(t, domain.Roster{
		101: {Name: "player1", GlobalID: 1},
		102: {Name: "player2", GlobalID: 2},
		103: {Name: "player3", GlobalID: 3},
	}, roster)

	require.Len(t, fake.requests, 3)
	for _, req := range fake.requests {
		assert.Equal(t, float64(499), req.variables["perPage"])
	}
}

func TestGetRoster_MissingUser(t *testing.T) {
	client, _ := newTestClient(t, "secret", func(recordedRequest) (int, string) {
		return 200, `{"data":{"event":{"entrants":{"pageInfo":{"totalPages":1},"nodes":[
			{"id":101,"participants":[{"gamerTag":"guest","user":null}]}]}}}}`
	})

	_, err := client.GetRoster(context.Background(), 9001)
	require.ErrorIs(t, err, ErrMissingUser)
}

func TestGetMatches(t *testing.T) {
	client, fake := newTestClient(t, "secret", func(req recordedRequest) (int, string) {
		if pageOf(req) == 1 {
			return 200, `{"data":{"event":{"sets":{"pageInfo":{"totalPages":2},"nodes":[
				{"id":555,"completedAt":1710007200,"slots":[
					{"entrant":{"id":101},"standing":{"stats":{"score":{"value":3}}}},
					{"entrant":{"id":102},"standing":{"stats":{"score":{"value":1}}}}]}]}}}}`
		}
		return 200, `{"data":{"event":{"sets":{"pageInfo":{"totalPages":2},"nodes":[
			{"id":"556","completedAt":1710003600,"slots":[
				{"entrant":{"id":103},"standing":{"stats":{"score":{"value":null}}}},
				{"entrant":{"id":104},"standing":null}]}]}}}}`
	})

	matches, err := client.GetMatches(context.Background(), 9001)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, domain.MatchResult{
		SetID:          "555",
		PlayerOneID:    101,
		PlayerOneScore: 3,
		PlayerTwoID:    102,
		PlayerTwoScore: 1,
		CompletedAt:    time.Unix(1710007200, 0).UTC(),
	}, matches[0])

	assert.Equal(t, "556", matches[1].SetID)
	assert.Equal(t, domain.ForfeitScore, matches[1].PlayerOneScore)
	assert.Equal(t, domain.ForfeitScore, matches[1].PlayerTwoScore)
	assert.True(t, matches[1].IsForfeit())

	for _, req := range fake.requests {
		assert.Equal(t, float64(70), req.variables["perPage"])
		assert.Equal(t, []any{float64(3)}, req.variables["states"])
	}
}

func TestGetMatches_MalformedSet(t *testing.T) {
	tests := []struct {
		name string
		node string
	}{
		{"missing entrant", `{"id":1,"completedAt":1,"slots":[{"entrant":{"id":101},"standing":null},{"entrant":null,"standing":null}]}`},
		{"single slot", `{"id":2,"completedAt":1,"slots":[{"entrant":{"id":101},"standing":null}]}`},
		{"null completedAt", `{"id":3,"completedAt":null,"slots":[
			{"entrant":{"id":101},"standing":{"stats":{"score":{"value":3}}}},
			{"entrant":{"id":102},"standing":{"stats":{"score":{"value":1}}}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, "secret", func(recordedRequest) (int, string) {
				return 200, `{"data":{"event":{"sets":{"pageInfo":{"totalPages":1},"nodes":[` + tt.node + `]}}}}`
			})

			matches, err := client.GetMatches(context.Background(), 9001)
			require.ErrorIs(t, err, ErrMalformedSet)
			assert.Empty(t, matches)
		})
	}
}

func TestDoQuery_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"rate limited", 429, `{}`, ErrRateLimited},
		{"server error", 502, `bad gateway`, ErrAPIStatus},
		{"graphql errors", 200, `{"errors":[{"message":"Your query complexity is too high"}]}`, ErrGraphQL},
		{"no data", 200, `{}`, ErrGraphQL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, "secret", func(recordedRequest) (int, string) {
				return tt.status, tt.body
			})

			_, err := client.GetEventMeta(context.Background(), 1)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDoQuery_GraphQLMessagesSurface(t *testing.T) {
	client, _ := newTestClient(t, "secret", func(recordedRequest) (int, string) {
		return 200, `{"errors":[{"message":"first"},{"message":"second"}]}`
	})

	_, err := client.GetEventMeta(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "first; second"))
}

func TestDoQuery_MissingToken(t *testing.T) {
	client, fake := newTestClient(t, "", func(recordedRequest) (int, string) {
		return 200, `{}`
	})

	_, err := client.GetRoster(context.Background(), 1)
	require.ErrorIs(t, err, ErrMissingToken)
	assert.Empty(t, fake.requests)
}

func TestID_UnmarshalJSON(t *testing.T) {
	var ids []ID
	require.NoError(t, json.Unmarshal([]byte(`[12, "34", "preview_9_1", null]`), &ids))
	assert.Equal(t, []ID{"12", "34", "preview_9_1", ""}, ids)

	v, err := ids[1].Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(34), v)

	_, err = ids[2].Int64()
	assert.Error(t, err)
}
