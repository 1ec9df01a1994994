package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/vtu_api/internal/catalog"
	"github.com/GTDGit/vtu_api/internal/metrics"
)

// CatalogReloadWorker polls the catalog file and installs it when it changes.
// A broken file is logged and the previous catalog keeps serving.
type CatalogReloadWorker struct {
	store    *catalog.Store
	interval time.Duration
}

// NewCatalogReloadWorker constructs a CatalogReloadWorker.
func NewCatalogReloadWorker(store *catalog.Store, interval time.Duration) *CatalogReloadWorker {
	return &CatalogReloadWorker{
		store:    store,
		interval: interval,
	}
}

// Start runs the reload loop until ctx is canceled. It returns at once when
// the catalog is embedded.
func (w *CatalogReloadWorker) Start(ctx context.Context) {
	if w.store.Path() == "" {
		log.Info().Msg("Catalog is embedded, reload worker not started")
		return
	}
	log.Info().
		Str("path", w.store.Path()).
		Dur("interval", w.interval).
		Msg("Starting catalog reload worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run()
		case <-ctx.Done():
			log.Info().Msg("Catalog reload worker stopped")
			return
		}
	}
}

func (w *CatalogReloadWorker) run() {
	changed, err := w.store.Reload()
	if err != nil {
		metrics.CatalogReloadsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("path", w.store.Path()).Msg("Catalog reload failed, keeping current catalog")
		return
	}
	if !changed {
		return
	}
	metrics.CatalogReloadsTotal.WithLabelValues("reloaded").Inc()
	log.Info().
		Str("path", w.store.Path()).
		Int("services", len(w.store.Current().Services)).
		Msg("Catalog reloaded")
}
