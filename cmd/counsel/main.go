package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/counselhq/counsel/internal/config"
	"github.com/counselhq/counsel/internal/reason"
	"github.com/counselhq/counsel/internal/session"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// stdinIsTerminal returns true if stdin is a terminal (not piped).
func stdinIsTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func main() {
	// Best-effort .env load; the credential check happens later, after
	// input validation.
	_ = godotenv.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(filepath.Join(homeDir, ".counsel"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	sessionPath := cfg.SessionPath
	if sessionPath == "" {
		sessionPath, err = session.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: could not resolve session path: %v\n", err)
			os.Exit(1)
		}
	}

	env := &appEnv{
		cfg:   cfg,
		store: session.NewFileStore(sessionPath),
		newService: func(apiKey string) reason.Service {
			return reason.NewOpenAIService(reason.OpenAIOptions{
				APIKey:  apiKey,
				Model:   cfg.Model,
				BaseURL: cfg.BaseURL,
			})
		},
		stdin:           os.Stdin,
		stdinIsTerminal: stdinIsTerminal(),
		stdout:          os.Stdout,
		getenv:          os.Getenv,
	}

	if err := newCLIApp(env).Run(os.Args); err != nil {
		code := 1
		if exitErr, ok := err.(cli.ExitCoder); ok {
			code = exitErr.ExitCode()
		}
		// Failure payloads were already written as JSON; only surface
		// errors that never reached that path (e.g. flag parse errors).
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		}
		os.Exit(code)
	}
}
