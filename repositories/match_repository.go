package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tourney/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const matchColumns = `
	id, tournament_id, number, round, team1_id, team2_id, next_match_id, status,
	team1_score, team2_score, winner_id, created_at, completed_at`

func scanMatch(row rowScanner) (*models.Match, error) {
	m := &models.Match{}
	var team1Score, team2Score, winnerID sql.NullInt64
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.Number, &m.Round, &m.Team1ID, &m.Team2ID, &m.NextMatchID, &m.Status,
		&team1Score, &team2Score, &winnerID, &m.CreatedAt, &m.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if winnerID.Valid {
		m.Result = &models.MatchResult{
			Team1Score: int(team1Score.Int64),
			Team2Score: int(team2Score.Int64),
			WinnerID:   int(winnerID.Int64),
		}
	}
	return m, nil
}

func (r *pgRepo) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	return r.getMatch(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
}

func (r *pgRepo) lockMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	return r.getMatch(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, id)
}

func (r *pgRepo) getMatch(ctx context.Context, query string, id uuid.UUID) (*models.Match, error) {
	m, err := scanMatch(r.exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %s: %w", id, err)
	}
	return m, nil
}

func (r *pgRepo) ListMatchesByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY round ASC, number ASC`

	rows, err := r.exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *pgRepo) SaveMatches(ctx context.Context, matches ...*models.Match) error {
	query := `
		INSERT INTO matches (
			id, tournament_id, number, round, team1_id, team2_id, next_match_id, status,
			team1_score, team2_score, winner_id, created_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			team1_id = EXCLUDED.team1_id,
			team2_id = EXCLUDED.team2_id,
			status = EXCLUDED.status,
			team1_score = EXCLUDED.team1_score,
			team2_score = EXCLUDED.team2_score,
			winner_id = EXCLUDED.winner_id,
			completed_at = EXCLUDED.completed_at`

	for _, m := range matches {
		var team1Score, team2Score, winnerID *int
		if m.Result != nil {
			team1Score, team2Score, winnerID = &m.Result.Team1Score, &m.Result.Team2Score, &m.Result.WinnerID
		}
		_, err := r.exec.ExecContext(ctx, query,
			m.ID, m.TournamentID, m.Number, m.Round, m.Team1ID, m.Team2ID, m.NextMatchID, m.Status,
			team1Score, team2Score, winnerID, m.CreatedAt, m.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save match %s: %w", m.ID, handleMatchError(err))
		}
	}
	return nil
}

func handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// "23503": foreign_key_violation
		// "23505": unique_violation
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_next_match_id_fkey":
			return ErrMatchNotFound
		case "matches_tournament_id_number_key":
			return ErrMatchNumberConflict
		}
	}
	return err
}
