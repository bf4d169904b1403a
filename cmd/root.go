// Package cmd implements the CLI command structure for taskdeck.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/taskdeck/taskdeck/internal/config"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the taskdeck CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdeck", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags live on the same flag set and are parsed during load.
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand; bare "taskdeck" opens the TUI.
	subcommand := "tui"
	remaining := fs.Args()
	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		subcommand = remaining[0]
		remaining = remaining[1:]
	}

	app := newAppEnv(cfg)

	switch subcommand {
	case "signup":
		return signupCommand(ctx, app, remaining)
	case "login":
		return loginCommand(ctx, app, remaining)
	case "logout":
		return logoutCommand(app, remaining)
	case "whoami":
		return whoamiCommand(ctx, app, remaining)
	case "ls", "list":
		return lsCommand(ctx, app, remaining)
	case "add":
		return addCommand(ctx, app, remaining)
	case "edit":
		return editCommand(ctx, app, remaining)
	case "done":
		return doneCommand(ctx, app, remaining)
	case "rm":
		return rmCommand(ctx, app, remaining)
	case "counts":
		return countsCommand(ctx, app, remaining)
	case "import":
		return importCommand(ctx, app, remaining)
	case "tui":
		return tuiCommand(ctx, app, remaining)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func versionCommand() error {
	fmt.Printf("taskdeck %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `taskdeck - a terminal client for your to-do backend

Usage:
  taskdeck [flags] <command> [command flags]

Commands:
  tui            Open the interactive terminal UI (default)
  signup         Create an account and sign in
  login          Sign in and store the session token
  logout         Discard the stored session token
  whoami         Show the signed-in user's profile
  ls             List tasks (-pending / -completed to filter)
  add            Add a task: taskdeck add [-desc text] <title>
  edit           Edit a task: taskdeck edit [-title t] [-desc d] [-completed bool] <id>
  done           Toggle a task's completed state: taskdeck done <id>
  rm             Delete a task: taskdeck rm <id>
  counts         Show pending/completed counters (-remote asks the server)
  import         Bulk-create tasks from a JSON file: taskdeck import <file>
  version        Show version
  help           Show this help

Flags:
`)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
