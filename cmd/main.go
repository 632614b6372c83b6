package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/moderation"
	"chat-hub/observability"
	"chat-hub/projection"
	"chat-hub/runtime"
	"chat-hub/runtime/workers"
	"chat-hub/search"
	"chat-hub/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components and manages the process lifecycle.
// This pattern is preferred over calling os.Exit or panic directly because
// it ensures all 'defer' statements are executed before the program exits
// and decouples initialization from the main entry point.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	censoredChar, err := CharacterRune(config.CensoredCharacter)
	if err != nil {
		return err
	}

	// 2. Moderation & Search
	words, err := moderation.EmbeddedWords()
	if err != nil {
		return fmt.Errorf("loading censored words: %w", err)
	}
	moderator, err := moderation.NewModerator(words, censoredChar, log)
	if err != nil {
		return fmt.Errorf("building moderator: %w", err)
	}

	index, err := search.NewInMemoryIndex(log)
	if err != nil {
		return fmt.Errorf("building search index: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	// 3. Domain & Hub
	metrics := observability.NewHubMetrics(log)
	hub := runtime.NewHub(log, metrics)
	service := services.NewChatService(log, moderator, index)

	// Seed the default channel every client lands in.
	lobby, err := service.CreateRoom(domain.CreateRoomInput{
		Name: "general",
		Type: domain.RoomChannel,
	}, "system")
	if err != nil {
		return fmt.Errorf("seeding default room: %w", err)
	}
	log.Info("Default room created", "room", lobby.ID)

	// 4. Dispatch pipeline
	events := make(chan event.DomainEvent, config.EventBufferSize)
	dispatcher := workers.NewDispatcher(log, hub, events).
		Add(projection.NewTimeline(), projection.NewRoster())

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(dispatcher)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go reportMetrics(ctx, log, metrics, config.MetricsLogInterval)

	// The transport (out of process scope) registers connections on the
	// hub, drives the service, and feeds resulting events into `events`.
	log.Info("Hub ready",
		"mailbox_capacity", config.MailboxCapacity,
		"event_buffer", config.EventBufferSize)

	sup.Run(ctx)
	log.Info("Shutdown complete", "stats", metrics.Snapshot())
	return nil
}

func reportMetrics(ctx context.Context, log *slog.Logger,
	metrics *observability.HubMetrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Info("Hub stats", "stats", metrics.Snapshot())
		}
	}
}
