// Package session persists the single conversation record that lets a
// continue action resume the right external thread across otherwise
// stateless process invocations.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Record is the singleton persisted session state. It is overwritten
// wholesale on every successful exchange; there is no history and no
// support for multiple concurrent sessions.
type Record struct {
	// ThreadID is the opaque identifier of the last external thread.
	ThreadID string `json:"threadId,omitempty"`

	// Topic is the last-known topic label.
	Topic string `json:"topic,omitempty"`

	// LastUsed is the time of the last successful completion.
	LastUsed time.Time `json:"lastUsed,omitzero"`

	// MessageCount is 1 after a new thread and increments per continue.
	MessageCount int `json:"messageCount,omitempty"`

	// WorkingDirectory is reused on continue when the request omits one.
	WorkingDirectory string `json:"workingDirectory,omitempty"`
}

// Store is the persistence handle threaded through orchestration so tests
// can inject a fake instead of touching ambient files.
type Store interface {
	// Load returns the persisted record, or an empty record when the
	// file is missing or unparsable. It never fails.
	Load() Record

	// Save overwrites the persisted record wholesale.
	Save(Record) error

	// Clear removes the persisted record. Missing state is not an error.
	Clear() error
}

// FileStore persists the record as a single human-inspectable JSON document.
// The file is not locked: concurrent invocations are not a supported use
// case and the last save wins.
type FileStore struct {
	Path string
}

// NewFileStore creates a store backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// DefaultPath returns the fixed session file location next to the counsel
// binary, so removing the binary's directory also resets continuity.
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), "counsel-session.json"), nil
}

// Load reads the persisted record. Corrupt or unreadable state degrades to
// an empty record rather than aborting the invocation.
func (s *FileStore) Load() Record {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Record{}
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}
	}
	return rec
}

// Save overwrites the session file with the given record.
func (s *FileStore) Save(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o600)
}

// Clear deletes the session file, resetting conversation continuity.
func (s *FileStore) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
