package brackets

import (
	"fmt"
	"time"

	"github.com/Dosada05/tourney/models"
)

// ApplyResult completes m with result. The match must be scheduled, have both slots
// filled and name one of its occupants as the winner.
func ApplyResult(m *models.Match, result models.MatchResult, at time.Time) error {
	if m.IsCompleted() {
		return fmt.Errorf("%w: match %s", ErrAlreadyCompleted, m.ID)
	}
	if m.Team1ID == nil || m.Team2ID == nil {
		return fmt.Errorf("%w: match %s is still waiting for a participant", ErrInvalidResult, m.ID)
	}
	if !m.HasParticipant(result.WinnerID) {
		return fmt.Errorf("%w: winner %d does not play in match %s", ErrInvalidResult, result.WinnerID, m.ID)
	}
	if result.Team1Score < 0 || result.Team2Score < 0 {
		return fmt.Errorf("%w: scores must not be negative", ErrInvalidResult)
	}

	res := result
	completedAt := at
	m.Status = models.MatchStatusCompleted
	m.Result = &res
	m.CompletedAt = &completedAt
	return nil
}

// OccupySlot writes competitorID into the first empty slot, team1 before team2, and
// returns the slot number. Filled slots are never overwritten.
func OccupySlot(m *models.Match, competitorID int) (int, error) {
	id := competitorID
	switch {
	case m.Team1ID == nil:
		m.Team1ID = &id
		return 1, nil
	case m.Team2ID == nil:
		m.Team2ID = &id
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: match %s", ErrSuccessorMatchFull, m.ID)
	}
}

// Champion returns the winner recorded on the final match.
func Champion(matches []*models.Match) (int, error) {
	root, err := FindRoot(matches)
	if err != nil {
		return 0, err
	}
	if !root.IsCompleted() || root.Result == nil || root.Result.WinnerID == 0 {
		return 0, fmt.Errorf("%w: final match %s is %s", ErrTournamentNotFinished, root.ID, root.Status)
	}
	return root.Result.WinnerID, nil
}
