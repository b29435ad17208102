// tourney/brackets/single_elimination.go
package brackets

import (
	"context"
	"fmt"
	"math/bits"
	"time"

	"github.com/Dosada05/tourney/models"
	"github.com/google/uuid"
)

// node is a slot of the perfect tree before byes are pruned.
// Index i has children 2i+1 and 2i+2.
type node struct {
	round  int
	parent int
	seats  []int
	pruned bool
}

type SingleEliminationGenerator struct {
	newID func() uuid.UUID
	now   func() time.Time
}

func NewSingleEliminationGenerator() *SingleEliminationGenerator {
	return &SingleEliminationGenerator{
		newID: uuid.New,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// RoundsFor returns ceil(log2(n)), the number of rounds a bracket of n competitors needs.
func RoundsFor(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// GenerateBracket builds N-1 matches for N competitors.
//
// The perfect tree of depth RoundsFor(N) is laid out breadth-first from the final.
// Competitors are dealt in list order into the leaves, team1 then team2, so that the
// first N-L leaves are full and every remaining leaf holds one competitor (a bye).
// Bye leaves are pruned and their occupant is seeded straight into the parent match,
// which leaves every round-1 match with two competitors and no feeders.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	competitors := params.Competitors
	if err := checkCompetitors(competitors); err != nil {
		return nil, err
	}

	n := len(competitors)
	if n == 1 {
		return []*models.Match{}, nil
	}

	numRounds := RoundsFor(n)
	leaves := 1 << (numRounds - 1)
	fullLeaves := n - leaves
	total := 1<<numRounds - 1

	nodes := make([]*node, total)
	for i := range nodes {
		depth := bits.Len(uint(i+1)) - 1
		parent := -1
		if i > 0 {
			parent = (i - 1) / 2
		}
		nodes[i] = &node{round: numRounds - depth, parent: parent}
	}

	firstLeaf := leaves - 1
	next := 0
	for leaf := 0; leaf < leaves; leaf++ {
		nd := nodes[firstLeaf+leaf]
		seats := 1
		if leaf < fullLeaves {
			seats = 2
		}
		for s := 0; s < seats; s++ {
			nd.seats = append(nd.seats, competitors[next].ID)
			next++
		}
	}
	if next != n {
		return nil, fmt.Errorf("internal error: dealt %d of %d competitors", next, n)
	}

	// Byes: only leaves can hold a single competitor, and only when the tree has a parent level.
	pruned := 0
	for i := firstLeaf; i < total; i++ {
		nd := nodes[i]
		if len(nd.seats) != 1 || nd.parent < 0 {
			continue
		}
		parent := nodes[nd.parent]
		parent.seats = append(parent.seats, nd.seats[0])
		nd.pruned = true
		pruned++
	}

	ids := make([]uuid.UUID, total)
	createdAt := g.now()
	matches := make([]*models.Match, 0, total-pruned)
	for i, nd := range nodes {
		if nd.pruned {
			continue
		}
		ids[i] = g.newID()
		m := &models.Match{
			ID:           ids[i],
			TournamentID: params.TournamentID,
			Number:       len(matches) + 1,
			Round:        nd.round,
			Status:       models.MatchStatusScheduled,
			CreatedAt:    createdAt,
		}
		if nd.parent >= 0 {
			parentID := ids[nd.parent]
			m.NextMatchID = &parentID
		}
		for _, competitorID := range nd.seats {
			if _, err := OccupySlot(m, competitorID); err != nil {
				return nil, fmt.Errorf("internal error: seeding match %d: %w", m.Number, err)
			}
		}
		matches = append(matches, m)
	}

	if len(matches) != n-1 {
		return nil, fmt.Errorf("internal error: generated %d matches for %d competitors", len(matches), n)
	}
	if bad := ValidateBracket(matches); bad != nil {
		return nil, fmt.Errorf("internal error: match %d (round %d) is structurally incomplete", bad.Number, bad.Round)
	}

	return matches, nil
}

func checkCompetitors(competitors []models.Competitor) error {
	if len(competitors) == 0 {
		return fmt.Errorf("%w: at least one competitor is required", ErrInvalidBracketInput)
	}
	seen := make(map[int]struct{}, len(competitors))
	for i, c := range competitors {
		if c.ID <= 0 {
			return fmt.Errorf("%w: competitor at position %d has invalid id %d", ErrInvalidBracketInput, i, c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate competitor id %d", ErrInvalidBracketInput, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}
