package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tourney/brackets"
	"github.com/Dosada05/tourney/models"
	"github.com/Dosada05/tourney/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BracketValidation is the operator view of a stored bracket's structure.
type BracketValidation struct {
	TournamentID    uuid.UUID     `json:"tournament_id"`
	Valid           bool          `json:"valid"`
	Matches         int           `json:"matches"`
	Rounds          int           `json:"rounds"`
	IncompleteMatch *models.Match `json:"incomplete_match,omitempty"`
}

type BracketService interface {
	// BuildBracket generates and self-checks the bracket for a tournament without storing it.
	BuildBracket(ctx context.Context, tournamentID uuid.UUID, competitors []models.Competitor) ([]*models.Match, error)
	PreviewBracket(ctx context.Context, competitors []models.Competitor) ([]*models.Match, error)
	GetFullTournamentData(ctx context.Context, tournamentID uuid.UUID) (*models.Tournament, error)
	ValidateTournamentBracket(ctx context.Context, tournamentID uuid.UUID) (*BracketValidation, error)
}

type bracketService struct {
	store     repositories.Store
	generator brackets.BracketGenerator
	logger    *slog.Logger
}

func NewBracketService(store repositories.Store, generator brackets.BracketGenerator, logger *slog.Logger) BracketService {
	if generator == nil {
		generator = brackets.NewSingleEliminationGenerator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &bracketService{store: store, generator: generator, logger: logger}
}

func (s *bracketService) BuildBracket(ctx context.Context, tournamentID uuid.UUID, competitors []models.Competitor) ([]*models.Match, error) {
	matches, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID: tournamentID,
		Competitors:  competitors,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidBracketInput) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "bracket generator failed its own checks",
			slog.String("generator", s.generator.GetName()),
			slog.Int("competitors", len(competitors)),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrBracketIntegrity, err)
	}

	if bad := brackets.ValidateBracket(matches); bad != nil {
		return nil, fmt.Errorf("%w: match %d in round %d is structurally incomplete", ErrBracketIntegrity, bad.Number, bad.Round)
	}
	if len(matches) > 0 {
		if _, err := brackets.FindRoot(matches); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBracketIntegrity, err)
		}
	}

	s.logger.DebugContext(ctx, "bracket built",
		slog.String("tournament_id", tournamentID.String()),
		slog.Int("competitors", len(competitors)),
		slog.Int("matches", len(matches)),
		slog.Int("rounds", brackets.RoundsFor(len(competitors))))
	return matches, nil
}

func (s *bracketService) PreviewBracket(ctx context.Context, competitors []models.Competitor) ([]*models.Match, error) {
	return s.BuildBracket(ctx, uuid.Nil, competitors)
}

// GetFullTournamentData loads the tournament and its bracket concurrently.
func (s *bracketService) GetFullTournamentData(ctx context.Context, tournamentID uuid.UUID) (*models.Tournament, error) {
	var (
		tournament *models.Tournament
		matches    []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.store.GetTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to fetch tournament %s: %w", tournamentID, err)
		}
		tournament = t
		return nil
	})

	g.Go(func() error {
		list, err := s.store.ListMatchesByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to fetch matches of tournament %s: %w", tournamentID, err)
		}
		matches = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	tournament.Matches = make([]models.Match, 0, len(matches))
	for _, m := range matches {
		tournament.Matches = append(tournament.Matches, *m)
	}
	return tournament, nil
}

func (s *bracketService) ValidateTournamentBracket(ctx context.Context, tournamentID uuid.UUID) (*BracketValidation, error) {
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	matches, err := s.store.ListMatchesByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	report := &BracketValidation{
		TournamentID: tournamentID,
		Matches:      len(matches),
	}
	for _, m := range matches {
		if m.Round > report.Rounds {
			report.Rounds = m.Round
		}
	}
	report.IncompleteMatch = brackets.ValidateBracket(matches)
	report.Valid = report.IncompleteMatch == nil
	if report.Valid && len(matches) > 0 {
		if _, err := brackets.FindRoot(matches); err != nil {
			report.Valid = false
		}
	}
	if !report.Valid {
		s.logger.WarnContext(ctx, "stored bracket is structurally incomplete", slog.String("tournament_id", tournamentID.String()))
	}
	return report, nil
}
