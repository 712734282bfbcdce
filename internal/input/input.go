// Package input resolves the single effective request for an invocation
// from mutually exclusive channels: an explicit input file, piped stdin,
// or bare positional arguments. Channels are modeled as ordered source
// providers so precedence stays testable apart from the CLI entry point.
package input

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/counselhq/counsel/internal/errors"
)

// Action selects the thread lifecycle for a request.
type Action string

const (
	ActionNew      Action = "new"
	ActionContinue Action = "continue"
)

// Request is the validated input for one invocation.
type Request struct {
	Action Action `json:"action"`
	Prompt string `json:"prompt"`

	// Context, when present, is prepended to Prompt with a blank line
	// between them.
	Context string `json:"context,omitempty"`

	// Topic is a short descriptive label carried on the session record.
	Topic string `json:"topic,omitempty"`

	// WorkingDirectory grants the reasoning service read access to a
	// codebase for context-aware answers.
	WorkingDirectory string `json:"workingDirectory,omitempty"`

	// PromptFile names a file whose contents replace Prompt entirely.
	PromptFile string `json:"promptFile,omitempty"`
}

// Report describes a request in validate-only mode. It lets callers
// sanity-check quoting-sensitive prompts before spending an API call.
type Report struct {
	Valid               bool   `json:"valid"`
	Action              Action `json:"action"`
	PromptLength        int    `json:"promptLength"`
	HasContext          bool   `json:"hasContext"`
	HasTopic            bool   `json:"hasTopic"`
	HasWorkingDirectory bool   `json:"hasWorkingDirectory"`
}

// NewReport builds the validate-only report for an already-validated request.
func NewReport(req *Request) *Report {
	return &Report{
		Valid:               true,
		Action:              req.Action,
		PromptLength:        len(req.Prompt),
		HasContext:          req.Context != "",
		HasTopic:            req.Topic != "",
		HasWorkingDirectory: req.WorkingDirectory != "",
	}
}

// Source is one input channel. Read returns the raw JSON payload, whether
// the channel had anything to offer, and a fatal error if the channel was
// selected but unreadable.
type Source interface {
	Read() (raw string, ok bool, err error)
}

// FileSource reads the payload from an explicit --input-file path.
type FileSource struct {
	Path string
}

// Read returns the file contents. A missing or unreadable file is fatal;
// an empty path means the channel is not in play.
func (s FileSource) Read() (string, bool, error) {
	if s.Path == "" {
		return "", false, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", false, errors.NewFileRead(s.Path, err)
	}
	return string(data), true, nil
}

// StdinSource reads the payload from piped standard input. Interactive
// terminals are skipped so an idle invocation doesn't block on a read.
type StdinSource struct {
	Reader      io.Reader
	Interactive bool
}

func (s StdinSource) Read() (string, bool, error) {
	if s.Interactive || s.Reader == nil {
		return "", false, nil
	}
	data, err := io.ReadAll(s.Reader)
	if err != nil {
		return "", false, errors.NewInternal(err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", false, nil
	}
	return text, true, nil
}

// ArgsSource synthesizes a request from bare positional arguments:
// a new-thread action whose prompt is the joined arguments.
type ArgsSource struct {
	Args []string
}

func (s ArgsSource) Read() (string, bool, error) {
	joined := strings.TrimSpace(strings.Join(s.Args, " "))
	if joined == "" {
		return "", false, nil
	}
	payload, err := json.Marshal(Request{Action: ActionNew, Prompt: joined})
	if err != nil {
		return "", false, errors.NewInternal(err)
	}
	return string(payload), true, nil
}

// Options carries everything Resolve needs from the CLI layer.
type Options struct {
	// InputFile is the --input-file flag value (highest precedence).
	InputFile string

	// PromptFile is the --prompt-file flag value. It overrides the
	// resolved prompt and beats any promptFile field inside the JSON.
	PromptFile string

	// Args are bare positional arguments (lowest precedence).
	Args []string

	// Stdin is the process's standard input stream.
	Stdin io.Reader

	// StdinIsTerminal reports whether stdin is an interactive terminal
	// rather than a pipe.
	StdinIsTerminal bool
}

// previewLimit bounds how much offending text a parse error echoes back.
const previewLimit = 120

// preview returns a bounded slice of raw input for parse error messages.
func preview(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > previewLimit {
		return raw[:previewLimit] + "..."
	}
	return raw
}

// Resolve produces exactly one validated Request. The first available
// source wins: input file, then piped stdin, then positional arguments.
// No source available is an error, not an empty request.
func Resolve(opts Options) (*Request, error) {
	sources := []Source{
		FileSource{Path: opts.InputFile},
		StdinSource{Reader: opts.Stdin, Interactive: opts.StdinIsTerminal},
		ArgsSource{Args: opts.Args},
	}

	var raw string
	found := false
	for _, src := range sources {
		text, ok, err := src.Read()
		if err != nil {
			return nil, err
		}
		if ok {
			raw = text
			found = true
			break
		}
	}
	if !found {
		return nil, errors.NewNoInput()
	}

	req := &Request{}
	if err := json.Unmarshal([]byte(raw), req); err != nil {
		return nil, errors.NewParse(preview(raw), err)
	}

	if err := Finalize(req, opts.PromptFile); err != nil {
		return nil, err
	}

	return req, nil
}

// Finalize applies the prompt-file override and validates the request.
// It is shared by the CLI resolver and the MCP handlers, which receive
// already-decoded requests.
//
// Override precedence: an explicit prompt-file path beats the request's
// own PromptFile field; file contents replace the prompt entirely rather
// than appending to it. A read failure on either path is fatal.
func Finalize(req *Request, explicitPromptFile string) error {
	promptPath := explicitPromptFile
	if promptPath == "" {
		promptPath = req.PromptFile
	}
	if promptPath != "" {
		data, err := os.ReadFile(promptPath)
		if err != nil {
			return errors.NewFileRead(promptPath, err)
		}
		req.Prompt = string(data)
	}

	return Validate(req)
}

// Validate checks the request invariants in order: a recognized action,
// then a non-empty effective prompt.
func Validate(req *Request) error {
	if req.Action != ActionNew && req.Action != ActionContinue {
		return errors.NewInvalidRequest(`Invalid 'action' field: must be "new" or "continue"`)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return errors.NewInvalidRequest("Missing 'prompt' field in input")
	}
	return nil
}
