package services

import (
	"context"
	"sync"
	"testing"

	"github.com/Dosada05/tourney/brackets"
	"github.com/Dosada05/tourney/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchService_FourCompetitorScenario(t *testing.T) {
	for _, order := range [][]int{{0, 1}, {1, 0}} {
		t.Run("order", func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			tournament := env.create(t, competitors("A", "B", "C", "D"))

			matches := env.bracket(t, tournament.ID)
			require.Len(t, matches, 3)
			semis := roundMatches(matches, 1)
			require.Len(t, semis, 2)
			final := roundMatches(matches, 2)[0]

			winners := []int{1, 3} // A beats B, C beats D
			for _, i := range order {
				updated, err := env.matches.RecordMatchResult(ctx, semis[i].ID, models.MatchResult{Team1Score: 2, Team2Score: 0, WinnerID: winners[i]})
				require.NoError(t, err)
				assert.Equal(t, semis[i].ID, updated.ID, "the completed match is returned, not its successor")
				assert.Equal(t, models.MatchStatusCompleted, updated.Status)
			}

			got, err := env.matches.GetMatch(ctx, final.ID)
			require.NoError(t, err)
			require.NotNil(t, got.Team1ID)
			require.NotNil(t, got.Team2ID)
			assert.ElementsMatch(t, []int{1, 3}, []int{*got.Team1ID, *got.Team2ID})
			assert.Equal(t, winners[order[0]], *got.Team1ID, "first finisher takes team1")

			_, err = env.matches.RecordMatchResult(ctx, final.ID, models.MatchResult{Team1Score: 1, Team2Score: 0, WinnerID: 1})
			require.NoError(t, err)

			done, err := env.tournaments.CompleteTournament(ctx, tournament.ID)
			require.NoError(t, err)
			require.NotNil(t, done.ChampionID)
			assert.Equal(t, 1, *done.ChampionID)
			assert.Equal(t, models.StatusCompleted, done.Status)
		})
	}
}

func TestMatchService_FiveCompetitorsByeAdvances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.create(t, numbered(5))

	matches := env.bracket(t, tournament.ID)
	require.Len(t, matches, 4)
	playIn := roundMatches(matches, 1)
	require.Len(t, playIn, 1)

	_, err := env.matches.RecordMatchResult(ctx, playIn[0].ID, models.MatchResult{Team1Score: 0, Team2Score: 3, WinnerID: 2})
	require.NoError(t, err)

	successor, err := env.matches.GetMatch(ctx, *playIn[0].NextMatchID)
	require.NoError(t, err)
	assert.Equal(t, 3, *successor.Team1ID, "bye recipient was seeded at build time")
	assert.Equal(t, 2, *successor.Team2ID)
}

func TestMatchService_RecordMatchResultErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("match not found", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.matches.RecordMatchResult(ctx, uuid.New(), models.MatchResult{WinnerID: 1})
		assert.ErrorIs(t, err, ErrMatchNotFound)
	})

	t.Run("winner not a participant", func(t *testing.T) {
		env := newTestEnv(t)
		tournament := env.create(t, numbered(4))
		semi := roundMatches(env.bracket(t, tournament.ID), 1)[0]
		_, err := env.matches.RecordMatchResult(ctx, semi.ID, models.MatchResult{WinnerID: 4})
		assert.ErrorIs(t, err, ErrInvalidResult)
	})

	t.Run("participant missing", func(t *testing.T) {
		env := newTestEnv(t)
		tournament := env.create(t, numbered(4))
		final := roundMatches(env.bracket(t, tournament.ID), 2)[0]
		_, err := env.matches.RecordMatchResult(ctx, final.ID, models.MatchResult{WinnerID: 1})
		assert.ErrorIs(t, err, ErrInvalidResult)
	})

	t.Run("no overwrite", func(t *testing.T) {
		env := newTestEnv(t)
		tournament := env.create(t, numbered(4))
		semi := roundMatches(env.bracket(t, tournament.ID), 1)[0]

		_, err := env.matches.RecordMatchResult(ctx, semi.ID, models.MatchResult{Team1Score: 3, Team2Score: 1, WinnerID: 1})
		require.NoError(t, err)
		_, err = env.matches.RecordMatchResult(ctx, semi.ID, models.MatchResult{Team1Score: 0, Team2Score: 5, WinnerID: 2})
		assert.ErrorIs(t, err, ErrAlreadyCompleted)

		stored, err := env.matches.GetMatch(ctx, semi.ID)
		require.NoError(t, err)
		assert.Equal(t, models.MatchResult{Team1Score: 3, Team2Score: 1, WinnerID: 1}, *stored.Result)

		final, err := env.matches.GetMatch(ctx, *semi.NextMatchID)
		require.NoError(t, err)
		assert.Equal(t, 1, final.OccupiedSlots(), "winner advanced exactly once")
	})

	t.Run("successor full rolls back", func(t *testing.T) {
		env := newTestEnv(t)
		tournament := env.create(t, numbered(4))
		matches := env.bracket(t, tournament.ID)
		semi := roundMatches(matches, 1)[0]

		final := roundMatches(matches, 2)[0]
		seven, eight := 7, 8
		final.Team1ID, final.Team2ID = &seven, &eight
		require.NoError(t, env.store.SaveMatches(ctx, final))

		_, err := env.matches.RecordMatchResult(ctx, semi.ID, models.MatchResult{Team1Score: 1, WinnerID: 1})
		assert.ErrorIs(t, err, ErrSuccessorMatchFull)

		stored, err := env.matches.GetMatch(ctx, semi.ID)
		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusScheduled, stored.Status, "the match must not complete when the winner cannot advance")
		assert.Nil(t, stored.Result)
	})

	t.Run("tournament closed", func(t *testing.T) {
		env := newTestEnv(t)
		tournament := env.create(t, numbered(4))
		_, err := env.tournaments.UpdateTournamentStatus(ctx, owner, tournament.ID, models.StatusCanceled)
		require.NoError(t, err)

		semi := roundMatches(env.bracket(t, tournament.ID), 1)[0]
		_, err = env.matches.RecordMatchResult(ctx, semi.ID, models.MatchResult{WinnerID: 1})
		assert.ErrorIs(t, err, ErrTournamentClosed)
	})
}

func TestMatchService_ConcurrentSiblingsNeverLoseASlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	const size = 64
	tournament := env.create(t, numbered(size))

	first := roundMatches(env.bracket(t, tournament.ID), 1)
	require.Len(t, first, size/2)

	var wg sync.WaitGroup
	errs := make(chan error, len(first))
	for _, m := range first {
		wg.Add(1)
		go func(m *models.Match) {
			defer wg.Done()
			_, err := env.matches.RecordMatchResult(ctx, m.ID, models.MatchResult{Team1Score: 1, WinnerID: *m.Team1ID})
			errs <- err
		}(m)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	winners := map[int]bool{}
	for _, m := range first {
		winners[*m.Team1ID] = true
	}
	seated := map[int]bool{}
	for _, m := range roundMatches(env.bracket(t, tournament.ID), 2) {
		require.NotNil(t, m.Team1ID, "match %d lost a slot write", m.Number)
		require.NotNil(t, m.Team2ID, "match %d lost a slot write", m.Number)
		assert.NotEqual(t, *m.Team1ID, *m.Team2ID)
		seated[*m.Team1ID] = true
		seated[*m.Team2ID] = true
	}
	assert.Equal(t, winners, seated)
	assert.Nil(t, brackets.ValidateBracket(env.bracket(t, tournament.ID)))
}

func TestMatchService_BroadcastsUpdates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.create(t, numbered(2))
	final := env.bracket(t, tournament.ID)[0]

	_, err := env.matches.RecordMatchResult(ctx, final.ID, models.MatchResult{Team1Score: 1, WinnerID: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{brackets.EventBracketCreated, brackets.EventMatchUpdated}, env.broadcaster.types())
	msg := env.broadcaster.messages[1]
	assert.Equal(t, brackets.RoomForTournament(tournament.ID), msg.RoomID)
	payload, ok := msg.Payload.(MatchUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, final.ID, payload.Match.ID)
	assert.Nil(t, payload.Successor)
}

func TestMatchService_ListMatches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.create(t, numbered(8))

	matches, err := env.matches.ListMatches(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 7)

	_, err = env.matches.ListMatches(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
