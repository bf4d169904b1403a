package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/session"
)

// signupCommand creates an account and stores the issued token.
func signupCommand(ctx context.Context, app *appEnv, args []string) error {
	fs := flag.NewFlagSet("taskdeck signup", flag.ContinueOnError)
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" || *password == "" {
		return fmt.Errorf("signup requires -name, -email and -password")
	}

	resp, err := app.client.Signup(ctx, api.SignupInput{
		Name:     *name,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}
	return finishAuth(ctx, app, resp)
}

// loginCommand signs in and stores the issued token.
func loginCommand(ctx context.Context, app *appEnv, args []string) error {
	fs := flag.NewFlagSet("taskdeck login", flag.ContinueOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("login requires -email and -password")
	}

	resp, err := app.client.Login(ctx, api.LoginInput{
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}
	return finishAuth(ctx, app, resp)
}

// finishAuth persists the token and greets with the fetched profile.
// The token must yield a user id, otherwise every task command would be
// dead on arrival; in that case it is not stored.
func finishAuth(ctx context.Context, app *appEnv, resp api.AuthResponse) error {
	uid, err := session.UserID(resp.Token)
	if err != nil {
		return fmt.Errorf("server issued an unusable token: %w", err)
	}
	if err := app.tokens.Save(resp.Token); err != nil {
		return err
	}
	app.logger.Debug("session token stored", "path", app.tokens.Path(), "user", uid)

	user, err := app.client.CurrentUser(ctx)
	if err != nil {
		// Logged in fine; the greeting is best-effort.
		fmt.Printf("Logged in (user %s)\n", uid)
		return nil
	}
	fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

// logoutCommand discards the stored token.
func logoutCommand(app *appEnv, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	if err := app.tokens.Clear(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

// whoamiCommand shows the signed-in user's profile.
func whoamiCommand(ctx context.Context, app *appEnv, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	if !app.tokens.Authenticated() {
		return fmt.Errorf("not logged in")
	}

	user, err := app.client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	fmt.Printf("  id:      %s\n", user.ID)
	fmt.Printf("  since:   %s\n", user.CreatedAt.Format("2006-01-02"))
	return nil
}
