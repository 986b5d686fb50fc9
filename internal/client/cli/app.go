package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	apiclient "github.com/dmitrijs2005/chatgate/internal/client/client"
	"github.com/dmitrijs2005/chatgate/internal/client/config"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// API is the subset of the gateway client the CLI uses.
type API interface {
	Login(ctx context.Context, username, password string) (string, error)
	Query(ctx context.Context, token, text string) (*apiclient.QueryResponse, error)
	Health(ctx context.Context) error
}

type App struct {
	config   *config.Config
	api      API
	reader   *bufio.Reader
	out      io.Writer
	mu       sync.Mutex
	token    string
	userName string
	mode     Mode
}

func NewApp(c *config.Config) *App {
	return newApp(c, apiclient.NewClient(c.ServerURL, c.RequestTimeout), os.Stdin, os.Stdout)
}

func newApp(c *config.Config, api API, in io.Reader, out io.Writer) *App {
	return &App{config: c, api: api, reader: bufio.NewReader(in), out: out}
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token != ""
}

func (a *App) status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	s += string(a.mode)
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mode = mode
}

// StartOnlineStatusWatcher polls /health until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.api.Health(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// Run starts the REPL on the app's input and returns when it ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn("Welcome to chatgate CLI (type 'help' for commands)")

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.status, a.reader)
}
