package container

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"gorate/adapters/excel"
	"gorate/adapters/postgres"
	"gorate/adapters/rng"
	"gorate/app"
	"gorate/internal"
	"gorate/internal/config"
	"gorate/internal/errors"
	"gorate/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Event source: postgres when DATABASE_URL is set, else EVENTS_FILE, else none
	Source ports.EventSource
	RNG    ports.RNGPort

	RateService *app.RateService
}

// New creates a container from configuration without touching any source
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Container{
		Config: cfg,
		Logger: internal.DefaultLogger,
		RNG:    rng.NewPCGAdapter(),
	}, nil
}

// Init opens the configured event source and builds the rate service
func (c *Container) Init(ctx context.Context) error {
	if err := c.initSource(ctx); err != nil {
		return err
	}

	svc, err := app.NewRateService(ctx, c.Config.Model, c.RNG, c.Source)
	if err != nil {
		return errors.Wrap(err, "failed to create rate service")
	}
	c.RateService = svc
	return nil
}

func (c *Container) initSource(ctx context.Context) error {
	switch {
	case c.Config.Database.URL != "":
		db, err := postgres.Connect(ctx, c.Config.Database.URL)
		if err != nil {
			return errors.Wrap(err, "failed to connect to database")
		}
		source, err := postgres.NewEventSource(db, c.Config.Database.Table)
		if err != nil {
			db.Close()
			return err
		}
		c.DB = db
		c.Source = source
		log.Printf("[Container] Reading events from postgres table %s", c.Config.Database.Table)

	case c.Config.Source.EventsFile != "":
		cfg := excel.DefaultExcelConfig()
		cfg.FilePath = c.Config.Source.EventsFile
		cfg.TimestampColumn = c.Config.Source.Column
		source, err := excel.NewFileEventSource(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to load events file")
		}
		c.Source = source
		log.Printf("[Container] Reading events from %s", cfg.FilePath)

	default:
		c.Logger.Warn("[Container] No event source configured; only stateless endpoints are available")
	}
	return nil
}

// Shutdown releases the database connection, if any
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
