package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/soccercentral/assistant/internal/cli/assistantctl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := assistantctl.Run(ctx, os.Args[1:], assistantctl.Options{
		BaseURL:   os.Getenv("ASSISTANT_BASE_URL"),
		APIKey:    os.Getenv("ASSISTANT_API_KEY"),
		SessionID: os.Getenv("ASSISTANT_SESSION_ID"),
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	})
	os.Exit(code)
}
