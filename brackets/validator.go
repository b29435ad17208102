package brackets

import (
	"sort"

	"github.com/Dosada05/tourney/models"
	"github.com/google/uuid"
)

// FeederIndex maps a match id to the matches whose winner advances into it.
type FeederIndex map[uuid.UUID][]*models.Match

func NewFeederIndex(matches []*models.Match) FeederIndex {
	idx := make(FeederIndex, len(matches))
	for _, m := range matches {
		if m.NextMatchID != nil {
			idx[*m.NextMatchID] = append(idx[*m.NextMatchID], m)
		}
	}
	return idx
}

// completedFeeders counts feeders of m that already have a winner.
func (idx FeederIndex) completedFeeders(m *models.Match) int {
	completed := 0
	for _, f := range idx[m.ID] {
		if f.IsCompleted() {
			completed++
		}
	}
	return completed
}

// Entrants counts what competes in m: feeder matches plus slots seeded at build time.
// A completed feeder has already written its winner into one of m's slots, so those
// slots are not counted twice.
func (idx FeederIndex) Entrants(m *models.Match) int {
	seeded := m.OccupiedSlots() - idx.completedFeeders(m)
	if seeded < 0 {
		seeded = 0
	}
	return len(idx[m.ID]) + seeded
}

// ValidateBracket returns the first structurally incomplete match ordered by round and
// then creation number, or nil when the bracket is well-formed. A match is incomplete
// when it does not have exactly two entrants, when a round-1 match has feeders, or when
// a completed feeder's winner is missing from it.
// The input slice and its matches are not modified.
func ValidateBracket(matches []*models.Match) *models.Match {
	idx := NewFeederIndex(matches)

	ordered := make([]*models.Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Round != ordered[j].Round {
			return ordered[i].Round < ordered[j].Round
		}
		return ordered[i].Number < ordered[j].Number
	})

	for _, m := range ordered {
		if m.Round == 1 && len(idx[m.ID]) > 0 {
			return m
		}
		if m.OccupiedSlots() < idx.completedFeeders(m) {
			return m
		}
		if idx.Entrants(m) != 2 {
			return m
		}
	}
	return nil
}

// FindRoot returns the single match without a successor.
func FindRoot(matches []*models.Match) (*models.Match, error) {
	var root *models.Match
	for _, m := range matches {
		if m.NextMatchID != nil {
			continue
		}
		if root != nil {
			return nil, ErrMalformedBracket
		}
		root = m
	}
	if root == nil {
		return nil, ErrMalformedBracket
	}
	return root, nil
}
