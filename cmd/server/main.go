package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"salvo/server/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	reload := make(chan struct{}, 1)
	go func() {
		for range hangup {
			select {
			case reload <- struct{}{}:
			default:
			}
		}
	}()

	cfg := app.DefaultConfig()
	cfg.Reload = reload
	if err := app.Run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}
