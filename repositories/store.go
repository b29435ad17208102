package repositories

import (
	"context"
	"errors"

	"github.com/Dosada05/tourney/models"
	"github.com/google/uuid"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match references an unknown tournament")
	ErrMatchNumberConflict    = errors.New("match number already used in this tournament")
	ErrTournamentNotFound     = errors.New("tournament not found")
)

type ListTournamentsFilter struct {
	Status  *models.TournamentStatus
	AdminID *string
	Limit   int
	Offset  int
}

// Repository is the read/write surface shared by a Store and a running transaction.
// Returned values are owned by the caller.
type Repository interface {
	GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	// SaveTournament inserts the tournament or overwrites its mutable fields.
	SaveTournament(ctx context.Context, t *models.Tournament) error

	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	// ListMatchesByTournament returns the bracket ordered by round, then number.
	ListMatchesByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Match, error)
	// SaveMatches inserts new matches and updates slots, status and result of existing ones.
	// Tree shape (round, number, successor) is fixed at insert.
	SaveMatches(ctx context.Context, matches ...*models.Match) error
}

// Tx is a unit of work. Lock* calls hold the row until the transaction ends, so a
// caller that locks a match and then its successor serializes against every other
// transaction touching the same successor.
type Tx interface {
	Repository
	LockMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	LockTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
}

type Store interface {
	Repository
	ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	// DeleteTournament removes the tournament together with its bracket.
	DeleteTournament(ctx context.Context, id uuid.UUID) error
	// WithTx runs fn in a transaction. Writes are committed only when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
