// Package reason abstracts the external reasoning service: a provider that
// opens or resumes conversation threads and runs one prompt per turn.
package reason

import "context"

// ThreadOptions configures a thread at open time.
type ThreadOptions struct {
	// WorkingDirectory grants the service read access to a codebase.
	// Empty means no codebase access.
	WorkingDirectory string
}

// Turn is the normalized result of one exchange.
type Turn struct {
	// ThreadID identifies the thread for later resumption. It may differ
	// from the id the thread was opened with; callers should persist the
	// value returned here.
	ThreadID string

	// Response is the normalized final response text.
	Response string
}

// Thread is a handle on one conversation with the reasoning service.
type Thread interface {
	// Run sends a prompt and blocks until the service answers.
	Run(ctx context.Context, prompt string) (*Turn, error)
}

// Service opens and resumes threads with the reasoning service.
type Service interface {
	// StartThread opens a fresh conversation.
	StartThread(opts ThreadOptions) Thread

	// ResumeThread reattaches to a previously persisted thread id.
	ResumeThread(id string, opts ThreadOptions) Thread
}
