package main

import (
	"encoding/json"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/counselhq/counsel/internal/config"
	"github.com/counselhq/counsel/internal/errors"
	"github.com/counselhq/counsel/internal/input"
	"github.com/counselhq/counsel/internal/mcp"
	"github.com/counselhq/counsel/internal/ops"
	"github.com/counselhq/counsel/internal/reason"
	"github.com/counselhq/counsel/internal/session"
)

// appEnv bundles the CLI's injected dependencies so tests can swap the
// reasoning service, session store, and streams.
type appEnv struct {
	cfg             *config.Config
	store           session.Store
	newService      func(apiKey string) reason.Service
	stdin           io.Reader
	stdinIsTerminal bool
	stdout          io.Writer
	getenv          func(string) string
}

// failurePayload is the structured error body. Every failure terminates
// the invocation; there are no partial success states.
type failurePayload struct {
	Success     bool   `json:"success"`
	Error       string `json:"error"`
	CanContinue bool   `json:"canContinue"`
}

// newCLIApp creates the CLI application. The root action is the ask flow;
// auxiliary operations are subcommands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "counsel",
		Usage:   "Ask an external reasoning model for a second opinion",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input-file", Usage: "Read the JSON request from this file (highest precedence)"},
			&cli.StringFlag{Name: "prompt-file", Usage: "Replace the resolved prompt with this file's contents"},
			&cli.BoolFlag{Name: "validate", Usage: "Check the input and print a validation report without calling the service"},
		},
		Action: func(c *cli.Context) error {
			return runAsk(c, env)
		},
		Commands: []*cli.Command{
			statusCmd(env),
			resetCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// runAsk resolves the request, optionally short-circuits into the
// validation report, and otherwise runs one exchange with the service.
func runAsk(c *cli.Context, env *appEnv) error {
	req, err := input.Resolve(input.Options{
		InputFile:       c.String("input-file"),
		PromptFile:      c.String("prompt-file"),
		Args:            c.Args().Slice(),
		Stdin:           env.stdin,
		StdinIsTerminal: env.stdinIsTerminal,
	})
	if err != nil {
		return outputError(env.stdout, err)
	}

	if c.Bool("validate") {
		return outputJSON(env.stdout, input.NewReport(req))
	}

	// The credential is checked after validation so --validate works
	// without one, and before any external call.
	apiKey := env.getenv(config.CredentialEnvVar)
	if apiKey == "" {
		return outputError(env.stdout, errors.NewMissingCredential(config.CredentialEnvVar))
	}

	svc := env.newService(apiKey)
	out, err := ops.Ask(c.Context, svc, env.store, env.cfg, *req)
	if err != nil {
		return outputError(env.stdout, err)
	}

	return outputJSON(env.stdout, out)
}

// statusCmd creates the status command.
func statusCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Print the persisted session record",
		Action: func(_ *cli.Context) error {
			return outputJSON(env.stdout, ops.Status(env.store))
		},
	}
}

// resetCmd creates the reset command.
func resetCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Delete the persisted session record",
		Action: func(_ *cli.Context) error {
			out, err := ops.Reset(env.store)
			if err != nil {
				return outputError(env.stdout, err)
			}
			return outputJSON(env.stdout, out)
		},
	}
}

// serveCmd creates the MCP server command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run as an MCP server over stdio",
		Action: func(_ *cli.Context) error {
			h := mcp.NewHandlers(env.cfg, env.store, func() (reason.Service, error) {
				apiKey := env.getenv(config.CredentialEnvVar)
				if apiKey == "" {
					return nil, errors.NewMissingCredential(config.CredentialEnvVar)
				}
				return env.newService(apiKey), nil
			})
			return mcp.Run(env.cfg, h, Version)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError writes the structured failure body and returns a silent
// non-zero exit so callers get both signals: the payload and the status.
func outputError(w io.Writer, err error) error {
	payload := failurePayload{
		Success:     false,
		Error:       errorMessage(err),
		CanContinue: false,
	}
	if jsonErr := outputJSON(w, payload); jsonErr != nil {
		return cli.Exit(jsonErr.Error(), 1)
	}
	return cli.Exit("", 1)
}

// errorMessage strips the internal code prefix for the payload; the
// message text already carries the context a caller needs.
func errorMessage(err error) string {
	if cErr, ok := err.(*errors.CounselError); ok {
		return cErr.Message
	}
	return err.Error()
}
