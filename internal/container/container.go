package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/garyjia/school-admin/internal/application/port"
	"github.com/garyjia/school-admin/internal/application/service"
	"github.com/garyjia/school-admin/internal/config"
	"github.com/garyjia/school-admin/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	db           *sqlite.DB
	repositories *RepositoryBundle
	fileStorage  port.FileStorage
	services     *ServiceBundle

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Class   port.ClassRepository
	Student port.StudentRepository
	Voucher port.VoucherRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Class  service.ClassService
	Fee    service.FeeService
	Import service.ImportService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes the database, storage and services.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	db, err := ProvideDatabase(ctx, &c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = db

	repos, err := ProvideRepositories(db, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	c.repositories = repos
	c.logger.Info("Database initialized", zap.String("path", c.config.Database.Path))

	fileStorage, err := ProvideStorage(&c.config.Storage, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.fileStorage = fileStorage
	c.logger.Info("Storage initialized", zap.String("base_dir", c.config.Storage.BaseDir))

	services, err := ProvideServices(&ServiceDeps{
		Config:    c.config,
		Repos:     c.repositories,
		TxManager: c.db,
		Storage:   c.fileStorage,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.services = services

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close releases all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")
	c.ready.Store(false)
	c.closed.Store(true)

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			return fmt.Errorf("close database: %w", err)
		}
		c.logger.Info("Database closed")
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready reports whether Start has completed.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health pings the database and reports component status.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	switch {
	case c.db == nil:
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	default:
		if err := c.db.PingContext(ctx); err != nil {
			status.Components["database"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	}

	if c.services != nil {
		status.Components["services"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["services"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

// Services returns the application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Repositories returns the repository bundle.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Config returns the loaded configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Healthy reports whether every component is up.
func (c *Container) Healthy(ctx context.Context) bool {
	return c.Health(ctx).Overall
}
