package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ranjeet447/schoolerp-gateway/config"
	"github.com/ranjeet447/schoolerp-gateway/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx     context.Context
	Logger  *slog.Logger
	Config  config.AppConfig
	Gateway *bootstrap.Gateway
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx := context.Background()
	gw, err := bootstrap.BuildGateway(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "build gateway", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal wiring failure to callers
	}
	defer gw.Close()

	cmdCtx := &commandContext{
		Ctx:     ctx,
		Logger:  logger,
		Config:  cfg,
		Gateway: gw,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Authenticate against the backend and store the session",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Clear the stored session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the active session identity",
			run:         runWhoami,
		},
		"status": {
			name:        "status",
			description: "Show session, impersonation, and backend reachability",
			run:         runStatus,
		},
		"impersonate": {
			name:        "impersonate",
			description: "Begin acting as a tenant user (platform operators only)",
			run:         runImpersonate,
		},
		"exit-impersonation": {
			name:        "exit-impersonation",
			description: "End the impersonation episode and restore the operator session",
			run:         runExitImpersonation,
		},
		"request": {
			name:        "request",
			description: "Dispatch an authenticated request through the gateway",
			run:         runRequest,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: gateway <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-20s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
