package ops

import (
	"context"
	"time"

	"github.com/counselhq/counsel/internal/config"
	"github.com/counselhq/counsel/internal/errors"
	"github.com/counselhq/counsel/internal/input"
	"github.com/counselhq/counsel/internal/reason"
	"github.com/counselhq/counsel/internal/session"
)

// now is package state so tests can pin the clock.
var now = time.Now

// AskOutput is the success payload of the Ask operation.
type AskOutput struct {
	Success     bool   `json:"success"`
	ThreadID    string `json:"threadId"`
	Response    string `json:"response"`
	CanContinue bool   `json:"canContinue"`
}

// Ask runs one exchange with the reasoning service and, on success,
// rewrites the session record. A failed exchange leaves the previous
// record untouched so a later continue still resumes the last thread
// that actually completed.
func Ask(ctx context.Context, svc reason.Service, store session.Store, cfg *config.Config, req input.Request) (*AskOutput, error) {
	prev := store.Load()

	// The request's working directory wins; the record's carries codebase
	// access across turns without being re-specified.
	workDir := req.WorkingDirectory
	if workDir == "" {
		workDir = prev.WorkingDirectory
	}
	threadOpts := reason.ThreadOptions{WorkingDirectory: workDir}

	// Continue without a prior thread degrades to starting fresh rather
	// than failing.
	var thread reason.Thread
	resumed := false
	if req.Action == input.ActionContinue && prev.ThreadID != "" {
		thread = svc.ResumeThread(prev.ThreadID, threadOpts)
		resumed = true
	} else {
		thread = svc.StartThread(threadOpts)
	}

	outbound := req.Prompt
	if req.Context != "" {
		outbound = req.Context + "\n\n" + req.Prompt
	}

	turn, err := thread.Run(ctx, outbound)
	if err != nil {
		return nil, errors.NewUpstream(err)
	}

	threadID := turn.ThreadID
	if threadID == "" {
		threadID = prev.ThreadID
	}

	topic := req.Topic
	if topic == "" {
		topic = prev.Topic
	}
	if topic == "" {
		topic = cfg.DefaultTopic
	}

	messageCount := 1
	if resumed {
		messageCount = prev.MessageCount + 1
	}

	rec := session.Record{
		ThreadID:         threadID,
		Topic:            topic,
		LastUsed:         now(),
		MessageCount:     messageCount,
		WorkingDirectory: workDir,
	}
	if err := store.Save(rec); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &AskOutput{
		Success:     true,
		ThreadID:    threadID,
		Response:    turn.Response,
		CanContinue: true,
	}, nil
}
