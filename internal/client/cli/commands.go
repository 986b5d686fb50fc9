package cli

import (
	"context"
	"errors"
	"strings"

	apiclient "github.com/dmitrijs2005/chatgate/internal/client/client"
	"github.com/dmitrijs2005/chatgate/internal/cryptox"
)

var errNotLoggedIn = errors.New("not logged in")

func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		printlnFn("error:", err)
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		printlnFn("error:", err)
		return err
	}
	defer cryptox.Wipe(password)

	token, err := a.api.Login(ctx, userName, string(password))
	if err != nil {
		printlnFn("Login unsuccessful:", err)
		return err
	}

	a.mu.Lock()
	a.token = token
	a.userName = userName
	a.mu.Unlock()

	printlnFn("Login successful")
	return nil
}

func (a *App) Query(ctx context.Context, text string) error {
	a.mu.Lock()
	token := a.token
	a.mu.Unlock()

	if token == "" {
		printlnFn("Please login first")
		return errNotLoggedIn
	}
	if strings.TrimSpace(text) == "" {
		printlnFn("Usage: query <text>")
		return nil
	}

	res, err := a.api.Query(ctx, token, text)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			printlnFn("Session expired, please login again")
			a.clearSession()
			return err
		}
		printlnFn("Query failed:", err)
		return err
	}

	printlnFn(res.Response)
	return nil
}

func (a *App) Health(ctx context.Context) error {
	if err := a.api.Health(ctx); err != nil {
		a.setMode(ModeOffline)
		printlnFn("Unhealthy:", err)
		return err
	}
	a.setMode(ModeOnline)
	printlnFn("Healthy")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.clearSession()
	printlnFn("Logged out")
	return nil
}

func (a *App) clearSession() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = ""
	a.userName = ""
}
