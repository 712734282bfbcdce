package ops

import (
	"github.com/counselhq/counsel/internal/errors"
	"github.com/counselhq/counsel/internal/session"
)

// ResetOutput confirms session removal.
type ResetOutput struct {
	Success bool `json:"success"`
	Cleared bool `json:"cleared"`
}

// Reset removes the persisted session record. The next continue action
// will degrade to starting a new thread.
func Reset(store session.Store) (*ResetOutput, error) {
	rec := store.Load()
	if err := store.Clear(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &ResetOutput{
		Success: true,
		Cleared: rec.ThreadID != "",
	}, nil
}
