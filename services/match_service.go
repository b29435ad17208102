package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tourney/brackets"
	"github.com/Dosada05/tourney/metrics"
	"github.com/Dosada05/tourney/models"
	"github.com/Dosada05/tourney/repositories"
	"github.com/google/uuid"
)

type MatchService interface {
	GetMatch(ctx context.Context, matchID uuid.UUID) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID uuid.UUID) ([]*models.Match, error)
	// RecordMatchResult completes the match and advances the winner into its successor.
	// The returned match is the completed one, not the successor.
	RecordMatchResult(ctx context.Context, matchID uuid.UUID, result models.MatchResult) (*models.Match, error)
}

type matchService struct {
	store       repositories.Store
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewMatchService(store repositories.Store, broadcaster Broadcaster, m *metrics.Metrics, logger *slog.Logger) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		store:       store,
		broadcaster: broadcaster,
		metrics:     m,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *matchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*models.Match, error) {
	return s.store.GetMatch(ctx, matchID)
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID uuid.UUID) ([]*models.Match, error) {
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	matches, err := s.store.ListMatchesByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %s: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) RecordMatchResult(ctx context.Context, matchID uuid.UUID, result models.MatchResult) (*models.Match, error) {
	started := time.Now()
	var completed, successor *models.Match

	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		// Locks go child first, then successor. Siblings racing for the same
		// successor queue on its lock and each sees the other's slot write.
		m, err := tx.LockMatch(ctx, matchID)
		if err != nil {
			return err
		}

		tournament, err := tx.GetTournament(ctx, m.TournamentID)
		if err != nil {
			return err
		}
		if tournament.Status == models.StatusCompleted || tournament.Status == models.StatusCanceled {
			return fmt.Errorf("%w: tournament %s is %s", ErrTournamentClosed, tournament.ID, tournament.Status)
		}

		if err := brackets.ApplyResult(m, result, s.now()); err != nil {
			return err
		}
		toSave := []*models.Match{m}

		if m.NextMatchID != nil {
			next, err := tx.LockMatch(ctx, *m.NextMatchID)
			if err != nil {
				if errors.Is(err, ErrMatchNotFound) {
					return fmt.Errorf("%w: successor %s of match %s does not exist", ErrMalformedBracket, *m.NextMatchID, m.ID)
				}
				return err
			}
			if _, err := brackets.OccupySlot(next, result.WinnerID); err != nil {
				return err
			}
			toSave = append(toSave, next)
			successor = next
		}

		if err := tx.SaveMatches(ctx, toSave...); err != nil {
			return err
		}
		completed = m
		return nil
	})

	took := time.Since(started)
	if err != nil {
		s.metrics.ObserveMatchResult(resultOutcome(err), took)
		if errors.Is(err, ErrSuccessorMatchFull) || errors.Is(err, ErrMalformedBracket) {
			s.logger.ErrorContext(ctx, "bracket inconsistency while recording result",
				slog.String("match_id", matchID.String()),
				slog.Int("winner_id", result.WinnerID),
				slog.Any("error", err))
		}
		return nil, err
	}
	s.metrics.ObserveMatchResult(metrics.OutcomeRecorded, took)

	s.logger.InfoContext(ctx, "match result recorded",
		slog.String("match_id", completed.ID.String()),
		slog.String("tournament_id", completed.TournamentID.String()),
		slog.Int("round", completed.Round),
		slog.Int("winner_id", result.WinnerID))

	publish(s.broadcaster, completed.TournamentID, brackets.EventMatchUpdated, MatchUpdatedPayload{
		Match:     completed,
		Successor: successor,
	})
	return completed, nil
}

func resultOutcome(err error) string {
	switch {
	case errors.Is(err, ErrSuccessorMatchFull), errors.Is(err, ErrMalformedBracket):
		return metrics.OutcomeInconsistent
	case errors.Is(err, ErrInvalidResult), errors.Is(err, ErrAlreadyCompleted),
		errors.Is(err, ErrMatchNotFound), errors.Is(err, ErrTournamentClosed):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
