package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Users(ctx context.Context) error
	Profile(ctx context.Context, id string) error
	ChangePassword(ctx context.Context, id string) error
	Health(ctx context.Context) error
}

// runREPL reads commands line by line until EOF, "exit" or "quit":
//
//	help               show available commands
//	register           create a user
//	login              check a user's credentials
//	users              list users
//	profile [id]       show one user
//	passwd [id]        change a user's password
//	health             query the service health
//
// Handler errors are already reported to the user and do not stop the loop.
// The reader is shared with the command prompts so no input is buffered
// away from them.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn("authctl> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, arg := parts[0], ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			printlnFn("Available commands: register, login, users, profile [id], passwd [id], health, exit")

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "users", "ls":
			_ = a.Users(ctx)

		case "profile":
			_ = a.Profile(ctx, arg)

		case "passwd":
			_ = a.ChangePassword(ctx, arg)

		case "health":
			_ = a.Health(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
