package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shared-clipboard/internal/cli"
	"shared-clipboard/internal/client"
	"shared-clipboard/internal/clipboard"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := cli.Run(ctx, os.Args[1:], cli.Deps{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
		NewAPI: func(server string, timeout time.Duration) cli.API {
			return client.New(server, client.WithHTTPClient(&http.Client{Timeout: timeout}))
		},
		Copier: clipboard.NewSystem(),
	})

	stop()
	os.Exit(code)
}
