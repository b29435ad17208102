package services

import (
	"context"

	"github.com/Dosada05/tourney/brackets"
	"github.com/Dosada05/tourney/models"
	"github.com/google/uuid"
)

// Broadcaster delivers bracket events to live subscribers. *brackets.Hub implements it.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// BracketArchiver stores a snapshot of a finished bracket. *storage.BracketArchiver implements it.
type BracketArchiver interface {
	Archive(ctx context.Context, tournament *models.Tournament, matches []*models.Match) (string, error)
	Remove(ctx context.Context, tournamentID uuid.UUID) error
}

type MatchUpdatedPayload struct {
	Match     *models.Match `json:"match"`
	Successor *models.Match `json:"successor,omitempty"`
}

type BracketCreatedPayload struct {
	TournamentID uuid.UUID       `json:"tournament_id"`
	Matches      []*models.Match `json:"matches"`
}

func publish(b Broadcaster, tournamentID uuid.UUID, event string, payload interface{}) {
	if b == nil {
		return
	}
	room := brackets.RoomForTournament(tournamentID)
	b.BroadcastToRoom(room, brackets.WebSocketMessage{Type: event, Payload: payload, RoomID: room})
}
