package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/post-service/internal/config"
	"github.com/iliyamo/post-service/internal/queue"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("config: .env: %v", err)
	}
	cfg := config.LoadEventsConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: cfg.URL, Queue: cfg.Queue, LogDir: cfg.LogDir}
	log.Printf("consumer: queue=%s log=%s", cfg.Queue, cfg.LogDir)
	if err := c.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("consumer: %v", err)
	}
	log.Printf("consumer: stopped")
}
