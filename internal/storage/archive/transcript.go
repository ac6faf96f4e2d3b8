package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andreas2301/genericllmadapter/internal/core"
)

// Transcript is the exported form of one session.
type Transcript struct {
	Session core.Session    `json:"session"`
	Entries []core.LogEntry `json:"entries"`
}

// ExportTranscript serializes a session with its history and writes it to the
// archive. Returns the storage path of the written transcript.
func ExportTranscript(ctx context.Context, storage Storage, session *core.Session, entries []core.LogEntry) (string, error) {
	data, err := json.MarshalIndent(Transcript{
		Session: *session,
		Entries: entries,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling transcript: %w", err)
	}

	path := fmt.Sprintf("transcripts/%s/%s.json",
		session.StartedAt.UTC().Format("2006/01/02"), session.ID)
	if err := storage.Write(ctx, path, data); err != nil {
		return "", fmt.Errorf("writing transcript: %w", err)
	}
	return path, nil
}
