package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	AddChild(ctx context.Context) error
	ListChildren(ctx context.Context) error
	DeleteChild(ctx context.Context, args []string) error
	AddEntry(ctx context.Context) error
	ListEntries(ctx context.Context, args []string) error
	ShowEntry(ctx context.Context, args []string) error
	DeleteEntry(ctx context.Context, args []string) error
	AddFood(ctx context.Context) error
	ListFood(ctx context.Context, args []string) error
	SetFoodCategory(ctx context.Context, args []string) error
	ListReports(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	Backup(ctx context.Context) error
	Restore(ctx context.Context, args []string) error
}

// runREPL reads a line, parses the first token as the command and dispatches
// to methods on 'a'. Errors from handlers are printed, never fatal; the loop
// exits on EOF or "exit"/"quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("journal> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn("Commands: children, addchild, delchild <id>, entries <child>, addentry, show <id>, delentry <id>,")
			printlnFn("          foods <child>, addfood, setcat <id> <category>, reports <child>,")
			printlnFn("          sync, status, backup, restore <file>, exit")
		case "children":
			err = a.ListChildren(ctx)
		case "addchild":
			err = a.AddChild(ctx)
		case "delchild":
			err = a.DeleteChild(ctx, args)
		case "entries":
			err = a.ListEntries(ctx, args)
		case "addentry":
			err = a.AddEntry(ctx)
		case "show":
			err = a.ShowEntry(ctx, args)
		case "delentry":
			err = a.DeleteEntry(ctx, args)
		case "foods":
			err = a.ListFood(ctx, args)
		case "addfood":
			err = a.AddFood(ctx)
		case "setcat":
			err = a.SetFoodCategory(ctx, args)
		case "reports":
			err = a.ListReports(ctx, args)
		case "sync":
			err = a.Sync(ctx)
		case "status":
			err = a.Status(ctx)
		case "backup":
			err = a.Backup(ctx)
		case "restore":
			err = a.Restore(ctx, args)
		case "exit", "quit":
			return
		default:
			printlnFn("Unknown command, type 'help'")
		}
		if err != nil {
			printlnFn(fmt.Sprintf("error: %v", err))
		}
	}
}
