package cmd

import (
	"context"
	"fmt"

	"github.com/taskdeck/taskdeck/internal/ui"
)

// tuiCommand starts the interactive terminal interface.
func tuiCommand(ctx context.Context, app *appEnv, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: taskdeck tui")
	}
	return ui.Run(ctx, ui.App{
		Config: app.cfg,
		Client: app.client,
		Tokens: app.tokens,
		Logger: app.logger,
	})
}
