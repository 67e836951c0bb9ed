package app

import (
	"context"
	"fmt"

	"wabridge/internal/app/config"
	"wabridge/internal/domain"
	"wabridge/internal/infra/whatsapp"
	"wabridge/internal/services"
	"wabridge/internal/storage"
	"wabridge/internal/storage/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// Container holds all application dependencies
type Container struct {
	config     *config.Config
	instanceID string
	db         *storage.Database

	// WhatsApp
	storeManager *whatsapp.StoreManager
	client       *whatsapp.Client

	// Repositories
	stateRepo *repository.StateRepository

	// Session
	session *services.Session
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{
		config:     cfg,
		instanceID: uuid.NewString(),
	}

	if err := container.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := container.initializeWhatsApp(); err != nil {
		return nil, fmt.Errorf("failed to initialize WhatsApp: %w", err)
	}

	if err := container.initializeRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if err := container.initializeSession(); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	log.Info().Str("instance_id", container.instanceID).Msg("Application container initialized successfully")
	return container, nil
}

// initializeDatabase sets up the database connection and runs migrations
func (c *Container) initializeDatabase() error {
	db, err := storage.New(c.config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.db = db
	log.Info().Str("path", c.config.Database.Path).Msg("Database initialized successfully")
	return nil
}

// initializeWhatsApp sets up the device store and the transport client.
// The event handler delegates to c.session through a closure: the session
// does not exist yet at this point, but no events flow before
// Session.Start is called.
func (c *Container) initializeWhatsApp() error {
	waLogger := waLog.Stdout("WhatsApp", c.config.WhatsApp.LogLevel, true)

	storeManager, err := whatsapp.NewStoreManager(c.db.DB.DB, waLogger)
	if err != nil {
		return fmt.Errorf("failed to create WhatsApp store manager: %w", err)
	}
	c.storeManager = storeManager

	ctx := context.Background()
	device, err := storeManager.GetDevice(ctx)
	if err != nil {
		return fmt.Errorf("failed to load device: %w", err)
	}

	handler := func(evt domain.Event) {
		c.session.HandleEvent(evt)
	}
	c.client = whatsapp.NewClient(device, waLogger, handler, c.config.WhatsApp.OSName)

	log.Info().
		Bool("paired", c.client.IsLoggedIn()).
		Msg("WhatsApp initialized successfully")
	return nil
}

// initializeRepositories sets up all repositories
func (c *Container) initializeRepositories() error {
	c.stateRepo = repository.NewStateRepository(c.db.DB)

	log.Info().Msg("Repositories initialized successfully")
	return nil
}

// initializeSession sets up the session lifecycle loop
func (c *Container) initializeSession() error {
	renderer := services.NewQRRenderer(c.config.WhatsApp.PrintQR)
	buffer := services.NewIncomingBuffer(c.config.WhatsApp.IncomingBufSize)

	c.session = services.NewSession(c.client, renderer, buffer,
		services.WithStateStore(c.stateRepo),
	)

	log.Info().Msg("Session initialized successfully")
	return nil
}

// Close closes all resources
func (c *Container) Close() error {
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
			return err
		}
	}

	log.Info().Msg("Application container closed successfully")
	return nil
}

// Getters for dependencies

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) InstanceID() string {
	return c.instanceID
}

func (c *Container) Database() *storage.Database {
	return c.db
}

func (c *Container) StateRepository() *repository.StateRepository {
	return c.stateRepo
}

func (c *Container) Session() *services.Session {
	return c.session
}
