package ops

import (
	"time"

	"github.com/counselhq/counsel/internal/session"
)

// StatusOutput describes the persisted session record without touching
// the network.
type StatusOutput struct {
	HasSession       bool   `json:"hasSession"`
	ThreadID         string `json:"threadId,omitempty"`
	Topic            string `json:"topic,omitempty"`
	LastUsed         string `json:"lastUsed,omitempty"`
	MessageCount     int    `json:"messageCount,omitempty"`
	WorkingDirectory string `json:"workingDirectory,omitempty"`
}

// Status reports the current session record, or hasSession=false when no
// thread has completed yet.
func Status(store session.Store) *StatusOutput {
	rec := store.Load()
	out := &StatusOutput{
		HasSession:       rec.ThreadID != "",
		ThreadID:         rec.ThreadID,
		Topic:            rec.Topic,
		MessageCount:     rec.MessageCount,
		WorkingDirectory: rec.WorkingDirectory,
	}
	if !rec.LastUsed.IsZero() {
		out.LastUsed = rec.LastUsed.Format(time.RFC3339)
	}
	return out
}
