package brackets

import (
	"context"

	"github.com/Dosada05/tourney/models"
	"github.com/google/uuid"
)

type GenerateBracketParams struct {
	TournamentID uuid.UUID
	Competitors  []models.Competitor
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error)

	GetName() string
}
