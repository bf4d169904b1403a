package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/token"
)

// appEnv wires the shared dependencies for one command invocation.
type appEnv struct {
	cfg    *config.Config
	logger *log.Logger
	tokens *token.Store
	client *api.Client
}

func newAppEnv(cfg *config.Config) *appEnv {
	logger := logging.New(logging.Options{
		Level:           cfg.LogLevel,
		Format:          cfg.LogFormat,
		ReportTimestamp: cfg.LogTimestamps,
	})
	tokens := token.NewStore(cfg.TokenFile)
	return &appEnv{
		cfg:    cfg,
		logger: logger,
		tokens: tokens,
		client: api.New(cfg.APIBaseURL, cfg.Timeout(), tokens),
	}
}

// sessionStore resolves the signed-in user from the stored token and
// returns a task store bound to them. Absence of a token or of a usable
// user id aborts here, before any network call.
func (a *appEnv) sessionStore() (*task.Store, error) {
	tok, err := a.tokens.Token()
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, fmt.Errorf("not logged in: run 'taskdeck login' first")
	}
	uid, err := session.UserID(tok)
	if err != nil {
		return nil, fmt.Errorf("stored token is unusable, log in again: %w", err)
	}
	return task.NewStore(a.client, uid)
}
