package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/Dosada05/tourney/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func competitorsN(n int) []models.Competitor {
	out := make([]models.Competitor, n)
	for i := range out {
		out[i] = models.Competitor{ID: i + 1, Name: fmt.Sprintf("Team %d", i+1)}
	}
	return out
}

func generate(t *testing.T, competitors []models.Competitor) []*models.Match {
	t.Helper()
	matches, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: uuid.New(),
		Competitors:  competitors,
	})
	require.NoError(t, err)
	return matches
}

func roundsOf(matches []*models.Match) map[int][]*models.Match {
	out := make(map[int][]*models.Match)
	for _, m := range matches {
		out[m.Round] = append(out[m.Round], m)
	}
	return out
}

func intPtr(v int) *int { return &v }

func TestRoundsFor(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {16, 4}, {17, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundsFor(tt.n), "n=%d", tt.n)
	}
}

func TestGenerateBracket_SizeAndStructure(t *testing.T) {
	for n := 1; n <= 40; n++ {
		t.Run(fmt.Sprintf("%d competitors", n), func(t *testing.T) {
			matches := generate(t, competitorsN(n))

			require.Len(t, matches, n-1)
			assert.Nil(t, ValidateBracket(matches))
			if n == 1 {
				return
			}

			root, err := FindRoot(matches)
			require.NoError(t, err)
			assert.Equal(t, RoundsFor(n), root.Round)
			assert.Equal(t, 1, root.Number)

			idx := NewFeederIndex(matches)
			seated := make(map[int]int)
			for _, m := range matches {
				if m.Team1ID != nil {
					seated[*m.Team1ID]++
				}
				if m.Team2ID != nil {
					seated[*m.Team2ID]++
				}
				if m.Round == 1 {
					assert.Empty(t, idx[m.ID], "round-1 match %d must be a leaf", m.Number)
					assert.Equal(t, 2, m.OccupiedSlots(), "round-1 match %d must be full", m.Number)
				}
				for _, f := range idx[m.ID] {
					assert.Equal(t, m.Round-1, f.Round, "feeder of match %d is in the wrong round", m.Number)
				}
				assert.Equal(t, models.MatchStatusScheduled, m.Status)
			}
			for _, c := range competitorsN(n) {
				assert.Equal(t, 1, seated[c.ID], "competitor %d must be seated exactly once", c.ID)
			}
		})
	}
}

func TestGenerateBracket_FourCompetitors(t *testing.T) {
	matches := generate(t, competitorsN(4))
	require.Len(t, matches, 3)

	rounds := roundsOf(matches)
	require.Len(t, rounds[1], 2)
	require.Len(t, rounds[2], 1)

	final := rounds[2][0]
	assert.Nil(t, final.Team1ID)
	assert.Nil(t, final.Team2ID)

	assert.Equal(t, intPtr(1), rounds[1][0].Team1ID)
	assert.Equal(t, intPtr(2), rounds[1][0].Team2ID)
	assert.Equal(t, intPtr(3), rounds[1][1].Team1ID)
	assert.Equal(t, intPtr(4), rounds[1][1].Team2ID)
	for _, m := range rounds[1] {
		require.NotNil(t, m.NextMatchID)
		assert.Equal(t, final.ID, *m.NextMatchID)
	}
}

func TestGenerateBracket_FiveCompetitorsSeedsByes(t *testing.T) {
	matches := generate(t, competitorsN(5))
	require.Len(t, matches, 4)

	rounds := roundsOf(matches)
	require.Len(t, rounds, 3)
	require.Len(t, rounds[1], 1)
	require.Len(t, rounds[2], 2)
	require.Len(t, rounds[3], 1)

	playIn := rounds[1][0]
	assert.Equal(t, intPtr(1), playIn.Team1ID)
	assert.Equal(t, intPtr(2), playIn.Team2ID)

	// Competitors 3, 4 and 5 had byes and start in round 2.
	semi1, semi2 := rounds[2][0], rounds[2][1]
	assert.Equal(t, intPtr(3), semi1.Team1ID)
	assert.Nil(t, semi1.Team2ID, "slot is reserved for the play-in winner")
	assert.Equal(t, intPtr(4), semi2.Team1ID)
	assert.Equal(t, intPtr(5), semi2.Team2ID)
	require.NotNil(t, playIn.NextMatchID)
	assert.Equal(t, semi1.ID, *playIn.NextMatchID)
}

func TestGenerateBracket_Deterministic(t *testing.T) {
	type seat struct {
		Number, Round int
		Team1, Team2  *int
		Next          int
	}
	layout := func(matches []*models.Match) []seat {
		numbers := make(map[uuid.UUID]int, len(matches))
		for _, m := range matches {
			numbers[m.ID] = m.Number
		}
		out := make([]seat, 0, len(matches))
		for _, m := range matches {
			s := seat{Number: m.Number, Round: m.Round, Team1: m.Team1ID, Team2: m.Team2ID}
			if m.NextMatchID != nil {
				s.Next = numbers[*m.NextMatchID]
			}
			out = append(out, s)
		}
		return out
	}

	competitors := competitorsN(11)
	first := layout(generate(t, competitors))
	second := layout(generate(t, competitors))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("bracket layout differs between runs (-first +second):\n%s", diff)
	}
}

func TestGenerateBracket_InvalidInput(t *testing.T) {
	tests := []struct {
		name        string
		competitors []models.Competitor
	}{
		{name: "empty", competitors: nil},
		{name: "duplicate ids", competitors: []models.Competitor{{ID: 1}, {ID: 2}, {ID: 1}}},
		{name: "zero id", competitors: []models.Competitor{{ID: 1}, {ID: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{
				Competitors: tt.competitors,
			})
			assert.ErrorIs(t, err, ErrInvalidBracketInput)
			assert.Nil(t, matches)
		})
	}
}
