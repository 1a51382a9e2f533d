package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	LogExposure(ctx context.Context) error
	Passport(ctx context.Context, args []string) error
	Insights(ctx context.Context) error
	Health(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: signup, login, exit"
	helpSignedIn  = "Available commands: whoami, log, passport [limit], insights, " +
		"health [set|conditions|delete], history [limit|summary [days]|add|clear], " +
		"export [download|list], sync, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// It exits on EOF, on "exit"/"quit", or when ctx is cancelled.
//
// Prompts issued by the commands read from the same reader, so the REPL and
// the commands never buffer stdin separately.
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures to the user.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("airpass %s > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if requiresLogin(cmd) && !a.isLoggedIn() {
			printlnFn("Please 'login' or 'signup' first.")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "signup", "register":
			_ = a.Signup(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "log":
			_ = a.LogExposure(ctx)

		case "passport", "p":
			_ = a.Passport(ctx, args)

		case "insights":
			_ = a.Insights(ctx)

		case "health":
			_ = a.Health(ctx, args)

		case "history":
			_ = a.History(ctx, args)

		case "export":
			_ = a.Export(ctx, args)

		case "sync":
			_ = a.Sync(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func requiresLogin(cmd string) bool {
	switch cmd {
	case "log", "passport", "p", "insights", "health", "history", "export", "sync", "logout":
		return true
	}
	return false
}
