package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/tourney/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournament(adminID string, start time.Time) *models.Tournament {
	return &models.Tournament{
		ID:          uuid.New(),
		Name:        "Spring Cup",
		StartDate:   start,
		EndDate:     start.Add(7 * 24 * time.Hour),
		Status:      models.StatusCreated,
		AdminID:     adminID,
		Competitors: []models.Competitor{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}, {ID: 4, Name: "D"}},
		CreatedAt:   start,
	}
}

// newBracket returns the four-competitor bracket: the final first, then both semis.
func newBracket(tournamentID uuid.UUID, created time.Time) []*models.Match {
	final := &models.Match{ID: uuid.New(), TournamentID: tournamentID, Number: 1, Round: 2, Status: models.MatchStatusScheduled, CreatedAt: created}
	semi := func(number, team1, team2 int) *models.Match {
		next := final.ID
		return &models.Match{
			ID: uuid.New(), TournamentID: tournamentID, Number: number, Round: 1,
			Team1ID: &team1, Team2ID: &team2, NextMatchID: &next,
			Status: models.MatchStatusScheduled, CreatedAt: created,
		}
	}
	return []*models.Match{final, semi(2, 1, 2), semi(3, 3, 4)}
}

func seed(t *testing.T, store Store) (*models.Tournament, []*models.Match) {
	t.Helper()
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Second)
	tournament := newTournament("admin-1", start)
	matches := newBracket(tournament.ID, start)
	require.NoError(t, store.WithTx(ctx, func(tx Tx) error {
		if err := tx.SaveTournament(ctx, tournament); err != nil {
			return err
		}
		return tx.SaveMatches(ctx, matches...)
	}))
	return tournament, matches
}

// runStoreSuite exercises the contract every Store implementation must honor.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store := newStore(t)
		tournament, matches := seed(t, store)

		got, err := store.GetTournament(ctx, tournament.ID)
		require.NoError(t, err)
		assert.Equal(t, tournament.Name, got.Name)
		assert.Equal(t, tournament.Competitors, got.Competitors)
		assert.Equal(t, models.StatusCreated, got.Status)

		listed, err := store.ListMatchesByTournament(ctx, tournament.ID)
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, []int{1, 1, 2}, []int{listed[0].Round, listed[1].Round, listed[2].Round})
		assert.Equal(t, matches[1].ID, listed[0].ID)
		assert.Equal(t, matches[2].ID, listed[1].ID)
		assert.Equal(t, matches[0].ID, listed[2].ID)

		semi, err := store.GetMatch(ctx, matches[1].ID)
		require.NoError(t, err)
		require.NotNil(t, semi.NextMatchID)
		assert.Equal(t, matches[0].ID, *semi.NextMatchID)
		assert.Equal(t, 1, *semi.Team1ID)
		assert.Nil(t, semi.Result)
	})

	t.Run("not found", func(t *testing.T) {
		store := newStore(t)
		_, err := store.GetTournament(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrTournamentNotFound)
		_, err = store.GetMatch(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrMatchNotFound)
		assert.ErrorIs(t, store.DeleteTournament(ctx, uuid.New()), ErrTournamentNotFound)
	})

	t.Run("match requires tournament", func(t *testing.T) {
		store := newStore(t)
		err := store.SaveMatches(ctx, newBracket(uuid.New(), time.Now().UTC())[0])
		assert.ErrorIs(t, err, ErrMatchTournamentInvalid)
	})

	t.Run("match numbers are unique per tournament", func(t *testing.T) {
		store := newStore(t)
		tournament, _ := seed(t, store)
		fresh := func(number int) *models.Match {
			return &models.Match{
				ID: uuid.New(), TournamentID: tournament.ID, Number: number, Round: 1,
				Status: models.MatchStatusScheduled, CreatedAt: time.Now().UTC(),
			}
		}

		err := store.SaveMatches(ctx, fresh(1))
		assert.ErrorIs(t, err, ErrMatchNumberConflict, "clash with a stored match")

		err = store.WithTx(ctx, func(tx Tx) error {
			return tx.SaveMatches(ctx, fresh(10), fresh(10))
		})
		assert.ErrorIs(t, err, ErrMatchNumberConflict, "clash inside one batch")

		err = store.WithTx(ctx, func(tx Tx) error {
			if err := tx.SaveMatches(ctx, fresh(11)); err != nil {
				return err
			}
			return tx.SaveMatches(ctx, fresh(11))
		})
		assert.ErrorIs(t, err, ErrMatchNumberConflict, "clash with a match staged in the same transaction")

		listed, err := store.ListMatchesByTournament(ctx, tournament.ID)
		require.NoError(t, err)
		assert.Len(t, listed, 3, "failed writes must not persist")
	})

	t.Run("result persists", func(t *testing.T) {
		store := newStore(t)
		_, matches := seed(t, store)

		semi := matches[1]
		at := time.Now().UTC().Truncate(time.Second)
		semi.Status = models.MatchStatusCompleted
		semi.Result = &models.MatchResult{Team1Score: 3, Team2Score: 1, WinnerID: 1}
		semi.CompletedAt = &at
		require.NoError(t, store.SaveMatches(ctx, semi))

		got, err := store.GetMatch(ctx, semi.ID)
		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusCompleted, got.Status)
		require.NotNil(t, got.Result)
		assert.Equal(t, *semi.Result, *got.Result)
		require.NotNil(t, got.CompletedAt)
		assert.True(t, at.Equal(*got.CompletedAt))
	})

	t.Run("rollback on error", func(t *testing.T) {
		store := newStore(t)
		tournament, matches := seed(t, store)
		boom := errors.New("boom")

		err := store.WithTx(ctx, func(tx Tx) error {
			final, err := tx.LockMatch(ctx, matches[0].ID)
			if err != nil {
				return err
			}
			winner := 1
			final.Team1ID = &winner
			if err := tx.SaveMatches(ctx, final); err != nil {
				return err
			}
			locked, err := tx.LockTournament(ctx, tournament.ID)
			if err != nil {
				return err
			}
			locked.Status = models.StatusCanceled
			if err := tx.SaveTournament(ctx, locked); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		final, err := store.GetMatch(ctx, matches[0].ID)
		require.NoError(t, err)
		assert.Nil(t, final.Team1ID)
		got, err := store.GetTournament(ctx, tournament.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCreated, got.Status)
	})

	t.Run("tx sees own writes", func(t *testing.T) {
		store := newStore(t)
		tournament, matches := seed(t, store)

		require.NoError(t, store.WithTx(ctx, func(tx Tx) error {
			final, err := tx.LockMatch(ctx, matches[0].ID)
			require.NoError(t, err)
			id := 3
			final.Team2ID = &id
			require.NoError(t, tx.SaveMatches(ctx, final))

			again, err := tx.GetMatch(ctx, final.ID)
			require.NoError(t, err)
			assert.Equal(t, 3, *again.Team2ID)

			listed, err := tx.ListMatchesByTournament(ctx, tournament.ID)
			require.NoError(t, err)
			require.Len(t, listed, 3)
			assert.Equal(t, 3, *listed[2].Team2ID)
			return nil
		}))
	})

	t.Run("locked successor serializes writers", func(t *testing.T) {
		store := newStore(t)
		_, matches := seed(t, store)
		final := matches[0].ID

		var wg sync.WaitGroup
		for _, competitor := range []int{1, 3} {
			wg.Add(1)
			go func(competitor int) {
				defer wg.Done()
				err := store.WithTx(ctx, func(tx Tx) error {
					m, err := tx.LockMatch(ctx, final)
					if err != nil {
						return err
					}
					id := competitor
					if m.Team1ID == nil {
						m.Team1ID = &id
					} else {
						m.Team2ID = &id
					}
					return tx.SaveMatches(ctx, m)
				})
				assert.NoError(t, err)
			}(competitor)
		}
		wg.Wait()

		got, err := store.GetMatch(ctx, final)
		require.NoError(t, err)
		require.NotNil(t, got.Team1ID)
		require.NotNil(t, got.Team2ID)
		assert.ElementsMatch(t, []int{1, 3}, []int{*got.Team1ID, *got.Team2ID})
	})

	t.Run("list and delete", func(t *testing.T) {
		store := newStore(t)
		base := time.Now().UTC().Truncate(time.Second)
		early := newTournament("admin-1", base)
		late := newTournament("admin-1", base.Add(48*time.Hour))
		other := newTournament("admin-2", base.Add(24*time.Hour))
		other.Status = models.StatusActive
		for _, tr := range []*models.Tournament{early, late, other} {
			require.NoError(t, store.SaveTournament(ctx, tr))
		}
		require.NoError(t, store.SaveMatches(ctx, newBracket(early.ID, base)...))

		admin := "admin-1"
		mine, err := store.ListTournaments(ctx, ListTournamentsFilter{AdminID: &admin})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, late.ID, mine[0].ID)
		assert.Equal(t, early.ID, mine[1].ID)

		active := models.StatusActive
		onlyActive, err := store.ListTournaments(ctx, ListTournamentsFilter{Status: &active})
		require.NoError(t, err)
		require.Len(t, onlyActive, 1)
		assert.Equal(t, other.ID, onlyActive[0].ID)

		page, err := store.ListTournaments(ctx, ListTournamentsFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, other.ID, page[0].ID)

		require.NoError(t, store.DeleteTournament(ctx, early.ID))
		_, err = store.GetTournament(ctx, early.ID)
		assert.ErrorIs(t, err, ErrTournamentNotFound)
		left, err := store.ListMatchesByTournament(ctx, early.ID)
		require.NoError(t, err)
		assert.Empty(t, left)
	})
}
