package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/tourney/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const tournamentColumns = `
	id, name, start_date, end_date, status, admin_id, competitors,
	champion_id, archive_url, created_at`

func scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	var competitors []byte
	err := row.Scan(
		&t.ID, &t.Name, &t.StartDate, &t.EndDate, &t.Status, &t.AdminID, &competitors,
		&t.ChampionID, &t.ArchiveURL, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(competitors, &t.Competitors); err != nil {
		return nil, fmt.Errorf("failed to decode competitors of tournament %s: %w", t.ID, err)
	}
	return t, nil
}

func (r *pgRepo) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	return r.getTournament(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
}

func (r *pgRepo) lockTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	return r.getTournament(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1 FOR UPDATE`, id)
}

func (r *pgRepo) getTournament(ctx context.Context, query string, id uuid.UUID) (*models.Tournament, error) {
	t, err := scanTournament(r.exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *pgRepo) SaveTournament(ctx context.Context, t *models.Tournament) error {
	competitors, err := json.Marshal(t.Competitors)
	if err != nil {
		return fmt.Errorf("failed to encode competitors: %w", err)
	}

	query := `
		INSERT INTO tournaments (
			id, name, start_date, end_date, status, admin_id, competitors,
			champion_id, archive_url, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			status = EXCLUDED.status,
			champion_id = EXCLUDED.champion_id,
			archive_url = EXCLUDED.archive_url`

	_, err = r.exec.ExecContext(ctx, query,
		t.ID, t.Name, t.StartDate, t.EndDate, t.Status, t.AdminID, competitors,
		t.ChampionID, t.ArchiveURL, t.CreatedAt,
	)
	return handleTournamentError(err)
}

func (s *PostgresStore) ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.AdminID != nil {
		query += fmt.Sprintf(" AND admin_id = $%d", argID)
		args = append(args, *filter.AdminID)
		argID++
	}

	query += " ORDER BY start_date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (s *PostgresStore) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23514": // check_violation
			if pqErr.Constraint == "tournaments_status_check" {
				return fmt.Errorf("invalid tournament status: %w", err)
			}
		}
	}
	return err
}
