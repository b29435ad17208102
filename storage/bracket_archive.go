package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/tourney/models"
	"github.com/google/uuid"
)

const archivePrefix = "brackets/"

// BracketSnapshot is the document written for a finished tournament.
type BracketSnapshot struct {
	Tournament *models.Tournament `json:"tournament"`
	Matches    []*models.Match    `json:"matches"`
	ArchivedAt time.Time          `json:"archived_at"`
}

// BracketArchiver uploads JSON snapshots of completed brackets.
type BracketArchiver struct {
	uploader FileUploader
	now      func() time.Time
}

func NewBracketArchiver(uploader FileUploader) *BracketArchiver {
	return &BracketArchiver{uploader: uploader, now: func() time.Time { return time.Now().UTC() }}
}

func ArchiveKey(tournamentID uuid.UUID) string {
	return archivePrefix + tournamentID.String() + ".json"
}

// Archive uploads the snapshot and returns its public URL.
func (a *BracketArchiver) Archive(ctx context.Context, tournament *models.Tournament, matches []*models.Match) (string, error) {
	snapshot := BracketSnapshot{
		Tournament: tournament,
		Matches:    matches,
		ArchivedAt: a.now(),
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode bracket snapshot for tournament %s: %w", tournament.ID, err)
	}

	result, err := a.uploader.Upload(ctx, ArchiveKey(tournament.ID), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}

// Remove deletes the snapshot of a tournament, if any.
func (a *BracketArchiver) Remove(ctx context.Context, tournamentID uuid.UUID) error {
	return a.uploader.Delete(ctx, ArchiveKey(tournamentID))
}
