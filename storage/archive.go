package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/tabletennis-scoring/models"
)

const scoresheetContentType = "application/json"

// Archiver writes the final scoresheet of a finished match to object storage.
type Archiver struct {
	uploader FileUploader
}

func NewArchiver(uploader FileUploader) *Archiver {
	return &Archiver{uploader: uploader}
}

type archivedScoresheet struct {
	Kind       string      `json:"kind"`
	ArchivedAt time.Time   `json:"archived_at"`
	Document   interface{} `json:"document"`
}

func MatchArchiveKey(matchID string) string {
	return fmt.Sprintf("matches/%s/scoresheet.json", matchID)
}

func TeamMatchArchiveKey(teamMatchID string) string {
	return fmt.Sprintf("team-matches/%s/scoresheet.json", teamMatchID)
}

func (a *Archiver) ArchiveMatch(ctx context.Context, m *models.Match, at time.Time) (*UploadResult, error) {
	return a.put(ctx, MatchArchiveKey(m.ID), "match", m, at)
}

func (a *Archiver) ArchiveTeamMatch(ctx context.Context, tm *models.TeamMatch, at time.Time) (*UploadResult, error) {
	return a.put(ctx, TeamMatchArchiveKey(tm.ID), "team_match", tm, at)
}

// RemoveMatch drops the archived scoresheet of a match that is no longer
// completed.
func (a *Archiver) RemoveMatch(ctx context.Context, matchID string) error {
	return a.uploader.Delete(ctx, MatchArchiveKey(matchID))
}

func (a *Archiver) RemoveTeamMatch(ctx context.Context, teamMatchID string) error {
	return a.uploader.Delete(ctx, TeamMatchArchiveKey(teamMatchID))
}

func (a *Archiver) put(ctx context.Context, key, kind string, doc interface{}, at time.Time) (*UploadResult, error) {
	body, err := json.MarshalIndent(archivedScoresheet{Kind: kind, ArchivedAt: at.UTC(), Document: doc}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s archive: %w", kind, err)
	}
	return a.uploader.Upload(ctx, key, scoresheetContentType, bytes.NewReader(body))
}
