package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Query(ctx context.Context, text string) error
	Health(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It exits on EOF or when the user types "exit" or "quit".
//
//	help            show available commands
//	login           authenticate
//	query <text>    ask the gateway (alias: q)
//	health          check the gateway
//	logout          drop the token
//	exit | quit     leave the program
//
// Handler errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("chatgate %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}

		cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		switch cmd {
		case "":
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: query <text>, health, logout, exit")
			} else {
				printlnFn("Available commands: login, health, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "q", "query":
			_ = a.Query(ctx, strings.TrimSpace(rest))

		case "health":
			_ = a.Health(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
