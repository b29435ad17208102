package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusCreated   TournamentStatus = "created"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
	StatusCanceled  TournamentStatus = "canceled"
)

// Tournament представляет турнир.
type Tournament struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	StartDate   time.Time        `json:"start_date" db:"start_date"`
	EndDate     time.Time        `json:"end_date" db:"end_date"`
	Status      TournamentStatus `json:"status" db:"status"`
	AdminID     string           `json:"admin_id" db:"admin_id"`
	Competitors []Competitor     `json:"competitors" db:"competitors"`
	ChampionID  *int             `json:"champion_id,omitempty" db:"champion_id"`
	ArchiveURL  *string          `json:"archive_url,omitempty" db:"archive_url"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Matches []Match `json:"matches,omitempty" db:"-"`
}

// CanEdit reports whether the actor may manage the tournament.
func (t *Tournament) CanEdit(actorID string, isAdmin bool) bool {
	return isAdmin || (actorID != "" && actorID == t.AdminID)
}

// CompetitorByID finds a competitor in the seeding list.
func (t *Tournament) CompetitorByID(id int) (Competitor, bool) {
	for _, c := range t.Competitors {
		if c.ID == id {
			return c, true
		}
	}
	return Competitor{}, false
}

func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	c := *t
	c.Competitors = append([]Competitor(nil), t.Competitors...)
	c.ChampionID = cloneInt(t.ChampionID)
	if t.ArchiveURL != nil {
		u := *t.ArchiveURL
		c.ArchiveURL = &u
	}
	c.Matches = append([]Match(nil), t.Matches...)
	return &c
}
