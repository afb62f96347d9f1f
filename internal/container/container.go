// Package container builds the application object graph from
// configuration, so both the UI server and the headless API share one
// bootstrap path.
package container

import (
	"log"

	"lightlab/adapters/archive"
	"lightlab/adapters/cache"
	"lightlab/adapters/catalogfile"
	"lightlab/adapters/postgres"
	"lightlab/adapters/render"
	"lightlab/app"
	"lightlab/internal/config"
	"lightlab/internal/errors"
	"lightlab/ports"
)

// Container holds the wired application services.
type Container struct {
	Config  *config.Config
	Service *app.ExploreService

	cache  ports.CacheStorePort
	ledger *postgres.RunRepository
}

// New loads the catalog and wires adapters into the explore service.
// events may be nil. The catalog file is required: a missing or
// malformed file is fatal here, per the startup error taxonomy.
func New(cfg *config.Config, events app.EventPublisher) (*Container, error) {
	var reader ports.CatalogReaderPort = catalogfile.NewReader()
	cat, err := reader.Load(cfg.Catalog.File)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load reference catalog")
	}

	var cacheStore ports.CacheStorePort
	if cfg.Archive.CacheDBPath != "" {
		store, err := cache.NewSQLiteStore(cfg.Archive.CacheDBPath)
		if err != nil {
			// The cache is an optimization; run without it.
			log.Printf("[Container] cache unavailable, downloads will not be cached: %v", err)
		} else {
			cacheStore = store
		}
	}

	archiveClient := archive.NewClient(cfg.Archive.BaseURL, cfg.Archive.Timeout, cacheStore)

	var (
		ledger     *postgres.RunRepository
		ledgerPort ports.RunLedgerPort
	)
	if cfg.Database.URL != "" {
		ledger, err = postgres.NewRunRepository(cfg.Database.URL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize run ledger")
		}
		ledgerPort = ledger
	}

	service := app.NewExploreService(
		cat,
		archiveClient,
		render.NewFigure(),
		ledgerPort,
		events,
		app.PipelineSettings{
			FlattenWindow: cfg.Pipeline.FlattenWindow,
			OutlierSigma:  cfg.Pipeline.OutlierSigma,
			Oversample:    cfg.Pipeline.Oversample,
		},
	)

	return &Container{
		Config:  cfg,
		Service: service,
		cache:   cacheStore,
		ledger:  ledger,
	}, nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			log.Printf("[Container] cache close failed: %v", err)
		}
	}
	if c.ledger != nil {
		if err := c.ledger.Close(); err != nil {
			log.Printf("[Container] ledger close failed: %v", err)
		}
	}
}
