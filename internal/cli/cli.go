// Package cli implements the clipctl command line client.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"shared-clipboard/internal/client"
	"shared-clipboard/internal/clipboard"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	defaultServer  = "http://localhost:8080"
	defaultTimeout = 5 * time.Second
)

// API is the subset of the HTTP client the commands use.
type API interface {
	Submit(ctx context.Context, text string) (client.Item, error)
	List(ctx context.Context) ([]client.Item, error)
	Get(ctx context.Context, id int64) (client.Item, error)
}

// Deps carries everything Run touches outside the process.
type Deps struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	NewAPI func(server string, timeout time.Duration) API
	Copier clipboard.Copier
}

// Run parses argv (without the program name) and executes one command.
func Run(ctx context.Context, argv []string, deps Deps) int {
	global := flag.NewFlagSet("clipctl", flag.ContinueOnError)
	global.SetOutput(deps.Stderr)

	server := defaultServer
	if deps.Getenv != nil {
		if env := deps.Getenv("CLIPCTL_SERVER"); env != "" {
			server = env
		}
	}

	global.StringVar(&server, "server", server, "Base URL of the clipboard server (env CLIPCTL_SERVER).")
	timeout := global.Duration("timeout", defaultTimeout, "Per-request timeout.")
	global.Usage = func() { writeHelp(deps.Stderr) }

	if err := global.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	rest := global.Args()
	if len(rest) == 0 {
		writeHelp(deps.Stderr)
		return exitUsage
	}

	api := deps.NewAPI(server, *timeout)
	cmd, args := rest[0], rest[1:]

	var err error
	switch cmd {
	case "help":
		writeHelp(deps.Stdout)
		return exitOK
	case "push":
		err = runPush(ctx, api, args, deps)
	case "list":
		err = runList(ctx, api, args, deps)
	case "copy":
		err = runCopy(ctx, api, args, deps)
	default:
		fmt.Fprintf(deps.Stderr, "clipctl: unknown command %q\n", cmd)
		writeHelp(deps.Stderr)
		return exitUsage
	}

	if err == nil {
		return exitOK
	}

	fmt.Fprintf(deps.Stderr, "clipctl %s: %v\n", cmd, err)
	var usage usageError
	if errors.As(err, &usage) {
		return exitUsage
	}
	return exitError
}

type usageError struct{ msg string }

func (u usageError) Error() string { return u.msg }

func runPush(ctx context.Context, api API, args []string, deps Deps) error {
	text := strings.Join(args, " ")
	if len(args) == 0 && deps.Stdin != nil {
		raw, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(raw)
	}

	item, err := api.Submit(ctx, text)
	if errors.Is(err, client.ErrEmptyText) {
		return usageError{msg: "nothing to push: text is empty"}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "pushed %d\n", item.ID)
	return nil
}

func runList(ctx context.Context, api API, args []string, deps Deps) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(deps.Stderr)
	watch := fs.Duration("watch", 0, "Refresh the list at this interval until interrupted.")
	if err := fs.Parse(args); err != nil {
		return usageError{msg: err.Error()}
	}

	if err := printList(ctx, api, deps.Stdout); err != nil {
		return err
	}
	if *watch <= 0 {
		return nil
	}

	ticker := time.NewTicker(*watch)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Fprintln(deps.Stdout, "--")
			if err := printList(ctx, api, deps.Stdout); err != nil {
				return err
			}
		}
	}
}

func printList(ctx context.Context, api API, w io.Writer) error {
	items, err := api.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "(empty)")
		return nil
	}

	for _, it := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\n",
			it.ID,
			it.CreatedAt.Local().Format("15:04:05"),
			oneLine(it.Text),
		)
	}
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func runCopy(ctx context.Context, api API, args []string, deps Deps) error {
	var (
		item client.Item
		err  error
	)

	switch len(args) {
	case 0:
		var items []client.Item
		items, err = api.List(ctx)
		if err == nil && len(items) == 0 {
			err = client.ErrNotFound
		}
		if err == nil {
			item = items[0]
		}
	case 1:
		id, parseErr := strconv.ParseInt(args[0], 10, 64)
		if parseErr != nil {
			return usageError{msg: fmt.Sprintf("invalid id %q", args[0])}
		}
		item, err = api.Get(ctx, id)
	default:
		return usageError{msg: "expected at most one id"}
	}
	if err != nil {
		return err
	}

	if err := deps.Copier.Copy(item.Text); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "copied %d\n", item.ID)
	return nil
}

func writeHelp(w io.Writer) {
	fmt.Fprint(w, `usage: clipctl [-server URL] [-timeout DUR] <command> [args]

commands:
  push [text...]    store text (reads stdin when no text is given)
  list [-watch DUR] print entries, newest first
  copy [id]         copy an entry (default: newest) to the local clipboard
`)
}
