package jobs

import (
	"context"
	"log"
	"time"

	"github.com/tfia/ywt-server/internal/config"
	"github.com/tfia/ywt-server/internal/repository"
)

// StartPendingCleanupJob periodically removes registrations whose activation
// window has long passed. Their codes expire out of Redis on their own; this
// reclaims the matching pending rows.
func StartPendingCleanupJob(ctx context.Context, cfg config.Config, store repository.Store) {
	if !cfg.PendingCleanupEnabled {
		return
	}
	interval := cfg.PendingCleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().UTC().Add(-cfg.ActivationTTL)
				removed, err := store.DeletePendingBefore(ctx, cutoff)
				if err != nil {
					log.Printf("pending cleanup job error: %v", err)
					continue
				}
				if removed > 0 {
					log.Printf("pending cleanup job removed %d stale registrations", removed)
				}
			}
		}
	}()
}
