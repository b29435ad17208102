package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/Dosada05/tourney/brackets"
	"github.com/Dosada05/tourney/metrics"
	"github.com/Dosada05/tourney/models"
	"github.com/Dosada05/tourney/repositories"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		f.messages = append(f.messages, msg)
	}
}

func (f *fakeBroadcaster) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.Type)
	}
	return out
}

type fakeArchiver struct {
	archiveFunc func(ctx context.Context, tournament *models.Tournament, matches []*models.Match) (string, error)
	removed     []uuid.UUID
}

func (f *fakeArchiver) Archive(ctx context.Context, tournament *models.Tournament, matches []*models.Match) (string, error) {
	if f.archiveFunc != nil {
		return f.archiveFunc(ctx, tournament, matches)
	}
	return "https://cdn.example.com/brackets/" + tournament.ID.String() + ".json", nil
}

func (f *fakeArchiver) Remove(ctx context.Context, tournamentID uuid.UUID) error {
	f.removed = append(f.removed, tournamentID)
	return nil
}

type testEnv struct {
	store       *repositories.MemoryStore
	broadcaster *fakeBroadcaster
	archiver    *fakeArchiver
	brackets    BracketService
	matches     MatchService
	tournaments TournamentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repositories.NewMemoryStore()
	broadcaster := &fakeBroadcaster{}
	archiver := &fakeArchiver{}
	m := metrics.New(prometheus.NewRegistry())
	logger := slog.Default()

	bracketService := NewBracketService(store, nil, logger)
	return &testEnv{
		store:       store,
		broadcaster: broadcaster,
		archiver:    archiver,
		brackets:    bracketService,
		matches:     NewMatchService(store, broadcaster, m, logger),
		tournaments: NewTournamentService(store, bracketService, broadcaster, archiver, m, logger),
	}
}

var owner = models.Actor{ID: "owner-1", Role: models.RoleUser}

func competitors(names ...string) []models.Competitor {
	out := make([]models.Competitor, len(names))
	for i, name := range names {
		out[i] = models.Competitor{ID: i + 1, Name: name}
	}
	return out
}

func numbered(n int) []models.Competitor {
	out := make([]models.Competitor, n)
	for i := range out {
		out[i] = models.Competitor{ID: i + 1, Name: fmt.Sprintf("Team %d", i+1)}
	}
	return out
}

func (e *testEnv) create(t *testing.T, list []models.Competitor) *models.Tournament {
	t.Helper()
	tournament, err := e.tournaments.CreateTournament(context.Background(), owner, CreateTournamentInput{
		Name:        "Test Cup",
		Competitors: list,
	})
	require.NoError(t, err)
	return tournament
}

func (e *testEnv) bracket(t *testing.T, tournamentID uuid.UUID) []*models.Match {
	t.Helper()
	matches, err := e.store.ListMatchesByTournament(context.Background(), tournamentID)
	require.NoError(t, err)
	return matches
}

// play records a win for winner in its current scheduled match.
func (e *testEnv) play(t *testing.T, tournamentID uuid.UUID, winner int) *models.Match {
	t.Helper()
	for _, m := range e.bracket(t, tournamentID) {
		if m.IsCompleted() || !m.HasParticipant(winner) || m.OccupiedSlots() != 2 {
			continue
		}
		result := models.MatchResult{WinnerID: winner, Team1Score: 1}
		if *m.Team2ID == winner {
			result = models.MatchResult{WinnerID: winner, Team2Score: 1}
		}
		updated, err := e.matches.RecordMatchResult(context.Background(), m.ID, result)
		require.NoError(t, err)
		return updated
	}
	require.FailNow(t, fmt.Sprintf("competitor %d has no playable match", winner))
	return nil
}

func roundMatches(matches []*models.Match, round int) []*models.Match {
	var out []*models.Match
	for _, m := range matches {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}

var errBoom = errors.New("boom")
