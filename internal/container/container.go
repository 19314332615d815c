package container

import (
	"log/slog"

	"gorm.io/gorm"

	"pdfcmd/internal/config"
	"pdfcmd/internal/database"
	"pdfcmd/internal/services"
)

// Container holds all dependencies for the application
type Container struct {
	config *config.Config
	db     *gorm.DB
	logger *slog.Logger

	// Services
	preferencesService *services.PreferencesService
	historyService     *services.HistoryService
	mergeService       *services.MergeService
}

// New creates a new dependency injection container. A database that cannot
// be opened is logged and the container falls back to running without
// preferences and history.
func New(cfg *config.Config) *Container {
	c := &Container{
		config: cfg,
		logger: cfg.Logger,
	}

	if err := cfg.EnsureDirectories(); err != nil {
		c.logger.Warn("Failed to create data directories", "error", err)
	}

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		c.logger.Warn("Failed to initialize database, continuing without history", "path", cfg.DatabasePath, "error", err)
	} else {
		c.db = db
	}

	c.initServices()
	return c
}

// NewWithDB creates a container around an already opened database
func NewWithDB(cfg *config.Config, db *gorm.DB) *Container {
	c := &Container{
		config: cfg,
		db:     db,
		logger: cfg.Logger,
	}
	c.initServices()
	return c
}

// initServices initializes all services with their dependencies
func (c *Container) initServices() {
	if c.db != nil {
		c.preferencesService = services.NewPreferencesService(c.db)
		c.historyService = services.NewHistoryService(c.db)
	}
	c.mergeService = services.NewMergeService(c.config, c.preferencesService, c.historyService)
}

// GetMergeService returns the merge service
func (c *Container) GetMergeService() *services.MergeService {
	return c.mergeService
}

// GetPreferencesService returns the preferences service, nil without a database
func (c *Container) GetPreferencesService() *services.PreferencesService {
	return c.preferencesService
}

// GetHistoryService returns the history service, nil without a database
func (c *Container) GetHistoryService() *services.HistoryService {
	return c.historyService
}

// GetConfig returns the application configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// HasDatabase reports whether preferences and history are available
func (c *Container) HasDatabase() bool {
	return c.db != nil
}

// Close releases the database
func (c *Container) Close() error {
	if c.db == nil {
		return nil
	}
	err := database.Close(c.db)
	c.db = nil
	return err
}
