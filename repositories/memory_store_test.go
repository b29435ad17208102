package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStore_LockHonorsContext(t *testing.T) {
	store := NewMemoryStore()
	_, matches := seed(t, store)
	final := matches[0].ID

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.WithTx(context.Background(), func(tx Tx) error {
			if _, err := tx.LockMatch(context.Background(), final); err != nil {
				return err
			}
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := store.WithTx(ctx, func(tx Tx) error {
		_, err := tx.LockMatch(ctx, final)
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, matches := seed(t, store)

	m, err := store.GetMatch(ctx, matches[1].ID)
	require.NoError(t, err)
	*m.Team1ID = 99

	again, err := store.GetMatch(ctx, matches[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *again.Team1ID)
}

func TestMemoryStore_TreeShapeIsFixed(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, matches := seed(t, store)

	semi := matches[1].Clone()
	semi.Round = 7
	semi.NextMatchID = nil
	require.NoError(t, store.SaveMatches(ctx, semi))

	got, err := store.GetMatch(ctx, semi.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Round)
	require.NotNil(t, got.NextMatchID)
	assert.Equal(t, matches[0].ID, *got.NextMatchID)
}
