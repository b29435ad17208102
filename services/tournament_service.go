package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tourney/brackets"
	"github.com/Dosada05/tourney/metrics"
	"github.com/Dosada05/tourney/models"
	"github.com/Dosada05/tourney/repositories"
	"github.com/google/uuid"
)

const (
	defaultTournamentLength = 7 * 24 * time.Hour
	defaultListLimit        = 20
	maxListLimit            = 100
)

type CreateTournamentInput struct {
	Name        string              `json:"name"`
	StartDate   *time.Time          `json:"start_date,omitempty"`
	EndDate     *time.Time          `json:"end_date,omitempty"`
	Competitors []models.Competitor `json:"competitors"`
}

type TournamentService interface {
	// CreateTournament builds the bracket and stores it together with the tournament.
	CreateTournament(ctx context.Context, actor models.Actor, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)
	DeleteTournament(ctx context.Context, actor models.Actor, id uuid.UUID) error
	UpdateTournamentStatus(ctx context.Context, actor models.Actor, id uuid.UUID, status models.TournamentStatus) (*models.Tournament, error)
	// CompleteTournament closes the tournament with the winner of its final as champion.
	CompleteTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	// EnsureCanEdit returns the tournament when the actor owns it or is an admin.
	EnsureCanEdit(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Tournament, error)
}

type tournamentService struct {
	store       repositories.Store
	brackets    BracketService
	broadcaster Broadcaster
	archiver    BracketArchiver
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewTournamentService(
	store repositories.Store,
	bracketService BracketService,
	broadcaster Broadcaster,
	archiver BracketArchiver,
	m *metrics.Metrics,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		store:       store,
		brackets:    bracketService,
		broadcaster: broadcaster,
		archiver:    archiver,
		metrics:     m,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, actor models.Actor, input CreateTournamentInput) (*models.Tournament, error) {
	if actor.ID == "" {
		return nil, ErrAuthenticationFailed
	}
	now := s.now()
	tournament := &models.Tournament{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		StartDate:   now,
		Status:      models.StatusCreated,
		AdminID:     actor.ID,
		Competitors: input.Competitors,
		CreatedAt:   now,
	}
	if input.StartDate != nil {
		tournament.StartDate = input.StartDate.UTC()
	}
	tournament.EndDate = tournament.StartDate.Add(defaultTournamentLength)
	if input.EndDate != nil {
		tournament.EndDate = input.EndDate.UTC()
	}
	if err := validateTournament(tournament); err != nil {
		return nil, err
	}

	matches, err := s.brackets.BuildBracket(ctx, tournament.ID, tournament.Competitors)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx repositories.Tx) error {
		if err := tx.SaveTournament(ctx, tournament); err != nil {
			return fmt.Errorf("failed to save tournament: %w", err)
		}
		if err := tx.SaveMatches(ctx, matches...); err != nil {
			return fmt.Errorf("failed to save bracket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveBracketBuilt(len(tournament.Competitors))
	s.logger.InfoContext(ctx, "tournament created",
		slog.String("tournament_id", tournament.ID.String()),
		slog.String("admin_id", actor.ID),
		slog.Int("competitors", len(tournament.Competitors)),
		slog.Int("matches", len(matches)))
	publish(s.broadcaster, tournament.ID, brackets.EventBracketCreated, BracketCreatedPayload{
		TournamentID: tournament.ID,
		Matches:      matches,
	})

	tournament.Matches = make([]models.Match, 0, len(matches))
	for _, m := range matches {
		tournament.Matches = append(tournament.Matches, *m)
	}
	return tournament, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	return s.store.GetTournament(ctx, id)
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	if filter.Status != nil && !isKnownStatus(*filter.Status) {
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidStatus, *filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.store.ListTournaments(ctx, filter)
}

func (s *tournamentService) EnsureCanEdit(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Tournament, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tournament.CanEdit(actor.ID, actor.IsAdmin()) {
		return nil, ErrForbiddenOperation
	}
	return tournament, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	tournament, err := s.EnsureCanEdit(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTournament(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "tournament deleted", slog.String("tournament_id", id.String()), slog.String("actor_id", actor.ID))

	if s.archiver != nil && tournament.ArchiveURL != nil {
		if err := s.archiver.Remove(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "failed to remove bracket archive", slog.String("tournament_id", id.String()), slog.Any("error", err))
		}
	}
	return nil
}

func (s *tournamentService) UpdateTournamentStatus(ctx context.Context, actor models.Actor, id uuid.UUID, status models.TournamentStatus) (*models.Tournament, error) {
	if !isKnownStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidStatus, status)
	}
	if status == models.StatusCompleted {
		if _, err := s.EnsureCanEdit(ctx, actor, id); err != nil {
			return nil, err
		}
		return s.CompleteTournament(ctx, id)
	}

	var updated *models.Tournament
	changed := false
	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		tournament, err := tx.LockTournament(ctx, id)
		if err != nil {
			return err
		}
		if !tournament.CanEdit(actor.ID, actor.IsAdmin()) {
			return ErrForbiddenOperation
		}
		if !isValidStatusTransition(tournament.Status, status) {
			return fmt.Errorf("%w: from '%s' to '%s'", ErrTournamentInvalidStatusTransition, tournament.Status, status)
		}
		updated = tournament
		if tournament.Status == status {
			return nil
		}
		tournament.Status = status
		changed = true
		return tx.SaveTournament(ctx, tournament)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.InfoContext(ctx, "tournament status changed",
			slog.String("tournament_id", id.String()),
			slog.String("status", string(status)))
		publish(s.broadcaster, id, brackets.EventTournamentUpdated, updated)
	}
	return updated, nil
}

func (s *tournamentService) CompleteTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	var (
		tournament *models.Tournament
		matches    []*models.Match
		already    bool
	)

	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		t, err := tx.LockTournament(ctx, id)
		if err != nil {
			return err
		}
		if t.Status == models.StatusCompleted {
			tournament, already = t, true
			return nil
		}
		if t.Status == models.StatusCanceled {
			return fmt.Errorf("%w: canceled tournament cannot be completed", ErrTournamentInvalidStatusTransition)
		}

		list, err := tx.ListMatchesByTournament(ctx, id)
		if err != nil {
			return err
		}
		champion, err := championOf(t, list)
		if err != nil {
			return err
		}

		t.ChampionID = &champion
		t.Status = models.StatusCompleted
		if err := tx.SaveTournament(ctx, t); err != nil {
			return err
		}
		tournament, matches = t, list
		return nil
	})
	if err != nil {
		return nil, err
	}
	if already {
		return tournament, nil
	}

	s.metrics.IncTournamentsCompleted()
	s.logger.InfoContext(ctx, "tournament completed",
		slog.String("tournament_id", id.String()),
		slog.Int("champion_id", *tournament.ChampionID))

	s.archive(ctx, tournament, matches)
	publish(s.broadcaster, id, brackets.EventTournamentCompleted, tournament)
	return tournament, nil
}

// archive uploads the finished bracket. Failures are logged; the tournament stays completed.
func (s *tournamentService) archive(ctx context.Context, tournament *models.Tournament, matches []*models.Match) {
	if s.archiver == nil {
		return
	}
	location, err := s.archiver.Archive(ctx, tournament, matches)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to archive bracket", slog.String("tournament_id", tournament.ID.String()), slog.Any("error", err))
		return
	}
	tournament.ArchiveURL = &location
	if err := s.store.SaveTournament(ctx, tournament); err != nil {
		s.logger.WarnContext(ctx, "failed to store archive url", slog.String("tournament_id", tournament.ID.String()), slog.Any("error", err))
	}
}

// IsClientError reports whether err is caused by the request rather than by the server.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrValidationFailed, ErrInvalidBracketInput, ErrInvalidResult, ErrTournamentInvalidStatus,
		ErrAlreadyCompleted, ErrTournamentNotFinished, ErrTournamentInvalidStatusTransition, ErrTournamentClosed,
		ErrMatchNotFound, ErrTournamentNotFound, ErrForbiddenOperation, ErrAuthenticationFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
