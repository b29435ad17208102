package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
)

// MatchResult хранит итог завершённого матча.
type MatchResult struct {
	Team1Score int `json:"team1_score"`
	Team2Score int `json:"team2_score"`
	WinnerID   int `json:"winner_id"`
}

// Match is one node of a single-elimination bracket. NextMatchID points at the
// match the winner advances into and is nil only for the final.
type Match struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	TournamentID uuid.UUID    `json:"tournament_id" db:"tournament_id"`
	Number       int          `json:"number" db:"number"`
	Round        int          `json:"round" db:"round"`
	Team1ID      *int         `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID      *int         `json:"team2_id,omitempty" db:"team2_id"`
	NextMatchID  *uuid.UUID   `json:"next_match_id,omitempty" db:"next_match_id"`
	Status       MatchStatus  `json:"status" db:"status"`
	Result       *MatchResult `json:"result,omitempty" db:"-"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
}

// HasParticipant reports whether competitorID occupies one of the match slots.
func (m *Match) HasParticipant(competitorID int) bool {
	return (m.Team1ID != nil && *m.Team1ID == competitorID) ||
		(m.Team2ID != nil && *m.Team2ID == competitorID)
}

// OccupiedSlots returns how many of the two slots are filled.
func (m *Match) OccupiedSlots() int {
	n := 0
	if m.Team1ID != nil {
		n++
	}
	if m.Team2ID != nil {
		n++
	}
	return n
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

// Clone returns a deep copy so stores can hand out matches without sharing slot pointers.
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	c.Team1ID = cloneInt(m.Team1ID)
	c.Team2ID = cloneInt(m.Team2ID)
	if m.NextMatchID != nil {
		next := *m.NextMatchID
		c.NextMatchID = &next
	}
	if m.Result != nil {
		res := *m.Result
		c.Result = &res
	}
	if m.CompletedAt != nil {
		at := *m.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
