package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/airpass/internal/client/client"
	"github.com/dmitrijs2005/airpass/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for email, password and an optional name and creates an
// account. The new session is stored locally.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	name, err := getSimpleText(a.reader, "Name (optional)", a.out)
	if err != nil {
		return err
	}

	id, err := a.auth.Signup(ctx, email, string(password), name)
	if err != nil {
		return a.fail(ctx, "Signup failed", err)
	}
	a.setIdentity(id)
	fmt.Fprintf(a.out, "Welcome, %s! Your passport key is %s\n", displayName(id), id.UserKey)
	return nil
}

// Login prompts for credentials and signs in. Logging in needs the server;
// offline, the previously stored session (if any) keeps working.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		return a.fail(ctx, "Login failed", err)
	}
	a.setIdentity(id)
	a.setMode(ctx, ModeOnline)
	fmt.Fprintf(a.out, "Signed in as %s\n", displayName(id))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return a.fail(ctx, "Logout failed", err)
	}
	a.setIdentity(nil)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	id, err := a.auth.WhoAmI(ctx)
	if err != nil {
		if errors.Is(err, client.ErrNotSignedIn) {
			a.setIdentity(nil)
		}
		return a.fail(ctx, "Not signed in", err)
	}
	a.setIdentity(id)

	state := "not verified (offline)"
	if id.Verified {
		state = "verified"
	}
	fmt.Fprintf(a.out, "%s\n  userKey: %s\n  session: %s", displayName(id), id.UserKey, state)
	if !id.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, ", expires %s", id.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(a.out)
	return nil
}

// fail prints a user-facing message for err and returns it. Being offline is
// reported as such rather than as an error.
func (a *App) fail(ctx context.Context, what string, err error) error {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ctx, ModeOffline)
		fmt.Fprintf(a.out, "%s: server unreachable, try again when online\n", what)
	case errors.Is(err, client.ErrNotSignedIn):
		fmt.Fprintln(a.out, "You are not signed in. Use 'login' or 'signup'.")
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintf(a.out, "%s: session expired, please log in again\n", what)
	default:
		fmt.Fprintf(a.out, "%s: %v\n", what, err)
	}
	a.logger.Debug(ctx, what, "error", err)
	return err
}
