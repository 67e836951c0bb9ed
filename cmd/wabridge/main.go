package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wabridge/internal/app"
	"wabridge/internal/app/config"
	"wabridge/pkg/logger"

	"github.com/rs/zerolog/log"
)

var versionFlag = flag.Bool("version", false, "Display version information and exit")

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("WABridge version %s\n", app.Version)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	logger.SetGlobalLogger(logger.NewFromAppConfig(cfg))

	log.Info().Str("version", app.Version).Msg("Starting WABridge")

	// Create application container
	container, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application container")
	}
	defer container.Close()

	// Create server before starting the session so the control surface
	// is configured even if pairing takes a while
	server := app.NewServer(container)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	// Start the WhatsApp session loop, then serve the control API
	container.Session().Start(ctx)

	if err := server.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	log.Info().Msg("WABridge stopped gracefully")
}
