package services

import (
	"fmt"
	"strings"

	"github.com/Dosada05/tourney/brackets"
	"github.com/Dosada05/tourney/models"
)

// championOf reads the champion off the final. A bracket without matches has a single
// competitor, who wins by walkover.
func championOf(t *models.Tournament, matches []*models.Match) (int, error) {
	if len(matches) == 0 {
		if len(t.Competitors) == 1 {
			return t.Competitors[0].ID, nil
		}
		return 0, fmt.Errorf("%w: tournament %s has %d competitors and no matches", ErrMalformedBracket, t.ID, len(t.Competitors))
	}
	champion, err := brackets.Champion(matches)
	if err != nil {
		return 0, err
	}
	if _, ok := t.CompetitorByID(champion); !ok {
		return 0, fmt.Errorf("%w: champion %d is not a competitor of tournament %s", ErrMalformedBracket, champion, t.ID)
	}
	return champion, nil
}

func validateTournament(t *models.Tournament) error {
	if t.Name == "" {
		return fmt.Errorf("%w: %w", ErrValidationFailed, ErrTournamentNameRequired)
	}
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: %w", ErrValidationFailed, ErrTournamentInvalidDateRange)
	}
	if len(t.Competitors) == 0 {
		return fmt.Errorf("%w: at least one competitor is required", ErrInvalidBracketInput)
	}
	for i, c := range t.Competitors {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: competitor at position %d has no name", ErrInvalidBracketInput, i)
		}
	}
	return nil
}

func isKnownStatus(status models.TournamentStatus) bool {
	switch status {
	case models.StatusCreated, models.StatusActive, models.StatusCompleted, models.StatusCanceled:
		return true
	}
	return false
}

// isValidStatusTransition covers administrative transitions. Completion goes through
// CompleteTournament only.
func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusCreated:   {models.StatusActive, models.StatusCanceled},
		models.StatusActive:    {models.StatusCanceled},
		models.StatusCompleted: {},
		models.StatusCanceled:  {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}
