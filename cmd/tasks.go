package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/task"
)

// lsCommand lists the signed-in user's tasks.
func lsCommand(ctx context.Context, app *appEnv, args []string) error {
	fs := flag.NewFlagSet("taskdeck ls", flag.ContinueOnError)
	pendingOnly := fs.Bool("pending", false, "Show pending tasks only")
	completedOnly := fs.Bool("completed", false, "Show completed tasks only")
	verbose := fs.Bool("v", false, "Show descriptions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pendingOnly && *completedOnly {
		return fmt.Errorf("-pending and -completed are mutually exclusive")
	}

	store, err := app.sessionStore()
	if err != nil {
		return err
	}
	if err := store.Refresh(ctx); err != nil {
		return err
	}

	shown := 0
	for _, t := range store.Tasks() {
		if *pendingOnly && t.Completed {
			continue
		}
		if *completedOnly && !t.Completed {
			continue
		}
		fmt.Println(formatTask(t, *verbose))
		shown++
	}
	if shown == 0 {
		fmt.Println("No tasks.")
	}

	pending, completed := store.Counts()
	fmt.Printf("\n%d pending, %d completed\n", pending, completed)
	return nil
}

func formatTask(t task.Task, verbose bool) string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	line := fmt.Sprintf("  %s (%s) %s", box, t.ID, t.Title)
	if verbose && t.Description != "" {
		line += "\n      " + t.Description
	}
	return line
}

// addCommand creates one task.
func addCommand(ctx context.Context, app *appEnv, args []string) error {
	fs := flag.NewFlagSet("taskdeck add", flag.ContinueOnError)
	desc := fs.String("desc", "", "Task description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" {
		return fmt.Errorf("usage: taskdeck add [-desc text] <title>")
	}

	store, err := app.sessionStore()
	if err != nil {
		return err
	}
	created, err := store.Create(ctx, title, *desc)
	if err != nil {
		return err
	}
	fmt.Printf("Added task %s: %s\n", created.ID, created.Title)
	return nil
}

// editCommand updates a task's fields. Only flags that were set on the
// command line are sent; everything else is left unchanged server-side.
func editCommand(ctx context.Context, app *appEnv, args []string) error {
	fs := flag.NewFlagSet("taskdeck edit", flag.ContinueOnError)
	title := fs.String("title", "", "New title")
	desc := fs.String("desc", "", "New description")
	completed := fs.Bool("completed", false, "Completed state")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id := fs.Arg(0)
	if id == "" {
		return fmt.Errorf("usage: taskdeck edit [-title t] [-desc d] [-completed bool] <id>")
	}

	var in api.UpdateTaskInput
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			in.Title = title
		case "desc":
			in.Description = desc
		case "completed":
			in.Completed = completed
		}
	})
	if in.Title == nil && in.Description == nil && in.Completed == nil {
		return fmt.Errorf("nothing to change: pass -title, -desc or -completed")
	}

	store, err := app.sessionStore()
	if err != nil {
		return err
	}
	if err := store.Refresh(ctx); err != nil {
		return err
	}
	updated, err := store.Update(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Printf("Updated task %s: %s\n", updated.ID, updated.Title)
	return nil
}

// doneCommand toggles a task's completed state.
func doneCommand(ctx context.Context, app *appEnv, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskdeck done <id>")
	}

	store, err := app.sessionStore()
	if err != nil {
		return err
	}
	if err := store.Refresh(ctx); err != nil {
		return err
	}
	toggled, err := store.Toggle(ctx, args[0])
	if err != nil {
		return err
	}
	state := "pending"
	if toggled.Completed {
		state = "completed"
	}
	fmt.Printf("Task %s is now %s: %s\n", toggled.ID, state, toggled.Title)
	return nil
}

// rmCommand deletes a task.
func rmCommand(ctx context.Context, app *appEnv, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskdeck rm <id>")
	}

	store, err := app.sessionStore()
	if err != nil {
		return err
	}
	if err := store.Refresh(ctx); err != nil {
		return err
	}
	if err := store.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted task %s\n", args[0])
	return nil
}

// countsCommand shows the pending/completed counters. By default they
// are derived from a fresh local list; -remote asks the backend's
// counter endpoints instead.
func countsCommand(ctx context.Context, app *appEnv, args []string) error {
	fs := flag.NewFlagSet("taskdeck counts", flag.ContinueOnError)
	remote := fs.Bool("remote", false, "Ask the server's counter endpoints")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := app.sessionStore()
	if err != nil {
		return err
	}

	var pending, completed int
	if *remote {
		pending, err = app.client.PendingCount(ctx, store.UserID())
		if err != nil {
			return err
		}
		completed, err = app.client.CompletedCount(ctx, store.UserID())
		if err != nil {
			return err
		}
	} else {
		if err := store.Refresh(ctx); err != nil {
			return err
		}
		pending, completed = store.Counts()
	}

	fmt.Printf("pending:   %d\ncompleted: %d\n", pending, completed)
	return nil
}

// importCommand bulk-creates tasks from a validated JSON file.
func importCommand(ctx context.Context, app *appEnv, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskdeck import <file>")
	}

	f, err := task.LoadImportFile(args[0])
	if err != nil {
		return err
	}
	if len(f.Tasks) == 0 {
		return fmt.Errorf("%s contains no tasks", args[0])
	}

	store, err := app.sessionStore()
	if err != nil {
		return err
	}

	for i, entry := range f.Tasks {
		created, err := store.Create(ctx, entry.Title, entry.Description)
		if err != nil {
			return fmt.Errorf("importing task %d of %d (%q): %w", i+1, len(f.Tasks), entry.Title, err)
		}
		app.logger.Debug("imported task", "id", created.ID, "title", created.Title)
	}
	fmt.Printf("Imported %d tasks from %s\n", len(f.Tasks), args[0])
	return nil
}
