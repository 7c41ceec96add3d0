package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bracket-elo/internal/domain"
)

type playerKey struct {
	namespace string
	globalID  int64
}

// memStore is an in-memory PlayerStore and LedgerStore. It hands out copies
// so callers must Save to persist changes.
type memStore struct {
	namespaces map[string]bool
	players    map[playerKey]domain.PlayerRecord
	ledger     []domain.LedgerEntry
	fail       map[string]error
	calls      []string
}

func newMemStore() *memStore {
	return &memStore{
		namespaces: map[string]bool{domain.OverallNamespace: true},
		players:    make(map[playerKey]domain.PlayerRecord),
		fail:       make(map[string]error),
	}
}

func (m *memStore) record(op string) error {
	m.calls = append(m.calls, op)
	return m.fail[op]
}

func (m *memStore) put(namespace string, rec domain.PlayerRecord) {
	m.namespaces[namespace] = true
	m.players[playerKey{namespace, rec.GlobalID}] = rec
}

func (m *memStore) get(namespace string, globalID int64) (domain.PlayerRecord, bool) {
	rec, ok := m.players[playerKey{namespace, globalID}]
	return rec, ok
}

func (m *memStore) EnsureNamespace(_ context.Context, namespace string) error {
	if err := m.record("EnsureNamespace"); err != nil {
		return err
	}
	if namespace == "" {
		return domain.ErrInvalidNamespace
	}
	m.namespaces[namespace] = true
	return nil
}

func (m *memStore) GetOrCreate(_ context.Context, globalID int64, name, namespace string) (*domain.PlayerRecord, error) {
	if err := m.record("GetOrCreate"); err != nil {
		return nil, err
	}
	if !m.namespaces[namespace] {
		return nil, fmt.Errorf("namespace %s missing", namespace)
	}
	key := playerKey{namespace, globalID}
	rec, ok := m.players[key]
	if !ok {
		rec = domain.NewPlayerRecord(globalID, name)
		m.players[key] = rec
	}
	return &rec, nil
}

func (m *memStore) Find(_ context.Context, globalID int64, namespace string) (*domain.PlayerRecord, error) {
	if err := m.record("Find"); err != nil {
		return nil, err
	}
	rec, ok := m.players[playerKey{namespace, globalID}]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	return &rec, nil
}

func (m *memStore) Save(_ context.Context, record *domain.PlayerRecord, namespace string) error {
	if err := m.record("Save"); err != nil {
		return err
	}
	key := playerKey{namespace, record.GlobalID}
	stored, ok := m.players[key]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	stored.Rating = record.Rating
	stored.GamesPlayed = record.GamesPlayed
	stored.Wins = record.Wins
	stored.Losses = record.Losses
	stored.WinLossRatio = record.WinLossRatio
	m.players[key] = stored
	return nil
}

func (m *memStore) List(_ context.Context, namespace string) ([]domain.PlayerRecord, error) {
	if err := m.record("List"); err != nil {
		return nil, err
	}
	var out []domain.PlayerRecord
	for key, rec := range m.players {
		if key.namespace == namespace {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GlobalID < out[j].GlobalID })
	return out, nil
}

func (m *memStore) SaveRanks(_ context.Context, namespace string, ranks []domain.RankAssignment) error {
	if err := m.record("SaveRanks"); err != nil {
		return err
	}
	for _, r := range ranks {
		key := playerKey{namespace, r.GlobalID}
		rec := m.players[key]
		rec.Rank = r.Rank
		m.players[key] = rec
	}
	return nil
}

func (m *memStore) IncrementTournamentsPlayed(_ context.Context, globalID int64, name, namespace string) error {
	if err := m.record("IncrementTournamentsPlayed"); err != nil {
		return err
	}
	key := playerKey{namespace, globalID}
	rec, ok := m.players[key]
	if !ok {
		rec = domain.NewPlayerRecord(globalID, name)
	}
	rec.TournamentsPlayed++
	m.players[key] = rec
	return nil
}

func (m *memStore) IncrementTournamentsWon(_ context.Context, globalID int64, namespace string) error {
	if err := m.record("IncrementTournamentsWon"); err != nil {
		return err
	}
	key := playerKey{namespace, globalID}
	rec, ok := m.players[key]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	rec.TournamentsWon++
	m.players[key] = rec
	return nil
}

func (m *memStore) Append(_ context.Context, entry *domain.LedgerEntry) error {
	if err := m.record("Append"); err != nil {
		return err
	}
	m.ledger = append(m.ledger, *entry)
	return nil
}

// fakeProvider serves canned event data keyed by event id.
type fakeProvider struct {
	meta        map[int64]*domain.EventMeta
	rosters     map[int64]domain.Roster
	matches     map[int64][]domain.MatchResult
	tournaments map[string][]domain.EventMeta
	err         error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		meta:        make(map[int64]*domain.EventMeta),
		rosters:     make(map[int64]domain.Roster),
		matches:     make(map[int64][]domain.MatchResult),
		tournaments: make(map[string][]domain.EventMeta),
	}
}

func (f *fakeProvider) add(meta domain.EventMeta, roster domain.Roster, matches []domain.MatchResult) {
	f.meta[meta.EventID] = &meta
	f.rosters[meta.EventID] = roster
	f.matches[meta.EventID] = matches
}

func (f *fakeProvider) GetEventMeta(_ context.Context, eventID int64) (*domain.EventMeta, error) {
	if f.err != nil {
		return nil, f.err
	}
	meta, ok := f.meta[eventID]
	if !ok {
		return nil, fmt.Errorf("event %d not found", eventID)
	}
	return meta, nil
}

func (f *fakeProvider) GetRoster(_ context.Context, eventID int64) (domain.Roster, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rosters[eventID], nil
}

func (f *fakeProvider) GetMatches(_ context.Context, eventID int64) ([]domain.MatchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.matches[eventID], nil
}

func (f *fakeProvider) GetTournamentEvents(_ context.Context, slug string) ([]domain.EventMeta, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tournaments[slug], nil
}

var baseTime = time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

func match(setID string, p1 int64, s1 int, p2 int64, s2 int, completed time.Time) domain.MatchResult {
	return domain.MatchResult{
		SetID:          setID,
		PlayerOneID:    p1,
		PlayerOneScore: s1,
		PlayerTwoID:    p2,
		PlayerTwoScore: s2,
		CompletedAt:    completed,
	}
}
