package cron

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	db "centsible-server/src/db/sql"
	"centsible-server/src/util"
)

// Start schedules the nightly purge of stale global vendor mappings:
// low-confidence rows older than the retention window. User-owned mappings
// are never touched.
func Start(pool *pgxpool.Pool) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		purged, err := db.PurgeStaleGlobalMappings(ctx, pool, time.Now())
		if err != nil {
			util.Logger.Errorf("Vendor mapping cleanup failed: %v", err)
			return
		}
		if purged > 0 {
			util.Logger.Infof("Purged %d stale global vendor mappings", purged)
		}
	})
	if err != nil {
		util.Logger.Errorf("Failed to schedule vendor mapping cleanup: %v", err)
	}

	c.Start()
	util.Logger.Info("Cron jobs started (vendor mapping cleanup nightly at 03:00)")
	return c
}
