package core

// scheduler.go runs background maintenance on a cron schedule in the outlet
// time zone. The audit archive job moves old audit_log rows to
// audit_log_archive in batches, then purges archive rows past retention.
// A failed run is logged and retried on the next tick.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ArchiveConfig holds configuration for the archive scheduler.
type ArchiveConfig struct {
	Schedule              string // Cron expression (default: 03:30 daily)
	HotRetentionDays      int    // Days to keep in audit_log (default: 90)
	ArchiveRetentionYears int    // Years to keep in archive (default: 7)
	BatchSize             int    // Rows per batch (default: 5000)
}

func (c *ArchiveConfig) applyDefaults() {
	if c.Schedule == "" {
		c.Schedule = "30 3 * * *"
	}
	if c.HotRetentionDays <= 0 {
		c.HotRetentionDays = 90
	}
	if c.ArchiveRetentionYears <= 0 {
		c.ArchiveRetentionYears = 7
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 5000
	}
}

// StartArchiveScheduler registers the archive job and starts the cron
// runner. The job stops when ctx is cancelled; the returned cron can be
// inspected for the next run.
func (s *Service) StartArchiveScheduler(ctx context.Context, cfg ArchiveConfig) (*cron.Cron, error) {
	cfg.applyDefaults()

	c := cron.New(cron.WithLocation(s.loc))
	if _, err := c.AddFunc(cfg.Schedule, func() { s.RunArchiveJob(ctx, cfg) }); err != nil {
		return nil, fmt.Errorf("schedule archive job %q: %w", cfg.Schedule, err)
	}
	c.Start()

	slog.Info("archive scheduler started",
		"schedule", cfg.Schedule,
		"location", s.loc.String(),
		"hot_retention_days", cfg.HotRetentionDays,
		"archive_retention_years", cfg.ArchiveRetentionYears,
		"batch_size", cfg.BatchSize,
	)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		slog.Info("archive scheduler stopped")
	}()

	return c, nil
}

// RunArchiveJob performs one archive and purge cycle. Archiving repeats
// until a batch comes back short, so a backlog clears in a single run.
func (s *Service) RunArchiveJob(ctx context.Context, cfg ArchiveConfig) {
	cfg.applyDefaults()
	start := time.Now()

	var archived int64
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := s.store.ArchiveAudit(ctx, cfg.HotRetentionDays, cfg.BatchSize)
		if err != nil {
			slog.Error("archive failed", "error", err, "archived_so_far", archived)
			break
		}
		archived += n
		if n < int64(cfg.BatchSize) {
			break
		}
	}
	slog.Info("archived audit log entries", "entries_archived", archived)

	purged, err := s.store.PurgeArchive(ctx, cfg.ArchiveRetentionYears)
	if err != nil {
		slog.Error("purge failed", "error", err)
	} else {
		slog.Info("purged old archive entries", "entries_purged", purged)
	}

	slog.Info("archive job completed", "duration_ms", time.Since(start).Milliseconds())
}
