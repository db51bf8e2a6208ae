package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"trader-storefront/config"
	"trader-storefront/models"
	"trader-storefront/state"
)

// User-facing catalog status messages
const (
	msgCatalogLoading  = "Loading catalog…"
	msgCatalogLoaded   = "Catalog loaded."
	msgCatalogFailed   = "Couldn't load catalog from endpoint."
	msgCatalogFallback = "Couldn't load catalog from endpoint. Showing demo items."
)

// CatalogLoader fetches the catalog and installs it in the store.
// Load never fails: errors become the configured fallback plus a status message.
type CatalogLoader struct {
	store    *state.Store
	source   CatalogSource
	fallback string
	logger   *zap.Logger
	now      func() time.Time
}

// NewCatalogLoader creates a CatalogLoader.
// fallback is config.FallbackEmpty or config.FallbackDemo.
func NewCatalogLoader(store *state.Store, source CatalogSource, fallback string, logger *zap.Logger) *CatalogLoader {
	return &CatalogLoader{
		store:    store,
		source:   source,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// Load fetches the catalog, applies the fallback policy on failure and
// returns the catalog now held by the store. A response that arrives after
// a newer load was started is discarded.
func (l *CatalogLoader) Load(ctx context.Context) models.Catalog {
	gen := l.store.BeginLoad()
	l.store.SetMessage(msgCatalogLoading, false)

	catalog, err := l.source.FetchCatalog(ctx)
	status := models.CatalogStatus{
		Online:     err == nil,
		LastLoaded: l.now(),
	}

	if err != nil {
		l.logger.Warn("⚠️  catalog load failed, applying fallback",
			zap.Error(err),
			zap.String("fallback", l.fallback),
			zap.Uint64("generation", gen),
		)
		if l.fallback == config.FallbackDemo {
			catalog = models.DemoCatalog()
			status.Demo = true
			status.Message = msgCatalogFallback
		} else {
			catalog = models.Catalog{}
			status.Message = msgCatalogFailed
		}
	} else {
		status.Message = msgCatalogLoaded
		status.Good = true
	}

	if !l.store.ApplyCatalog(gen, catalog, status) {
		l.logger.Info("discarding stale catalog response",
			zap.Uint64("generation", gen),
			zap.Uint64("current", l.store.Generation()),
		)
		return l.store.Catalog()
	}

	if err == nil {
		l.logger.Info("✓ catalog loaded", zap.Int("entries", len(catalog)), zap.Uint64("generation", gen))
	}
	return catalog
}
