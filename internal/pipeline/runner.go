package pipeline

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/backmassage/bidsmanager/internal/bids"
	"github.com/backmassage/bidsmanager/internal/config"
	"github.com/backmassage/bidsmanager/internal/display"
	"github.com/backmassage/bidsmanager/internal/logging"
)

// Job is the operation applied to every file in a batch.
type Job struct {
	Edits    []Edit
	Metadata map[string]any // Merged into each file's sidecar when non-empty.
	Mode     bids.SyncMode  // Defaults to bids.Move.
}

// Run is the top-level batch entry point. It processes paths sequentially
// and returns aggregate stats. Cancelling ctx stops the batch between files.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, store *bids.Store, paths []string, job Job) RunStats {
	var stats RunStats
	if job.Mode == "" {
		job.Mode = bids.Move
	}

	stats.Total = len(paths)
	claims := NewClaims()

	logBatchHeader(cfg, log, job, &stats)

	for i, path := range paths {
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}
		stats.Current = i + 1

		processFile(cfg, log, store, path, job, &stats, claims)
	}

	logSummary(cfg, log, &stats)
	return stats
}

// processFile handles one file: open → edit → plan → claim → sync.
func processFile(
	cfg *config.Config,
	log *logging.Logger,
	store *bids.Store,
	path string,
	job Job,
	stats *RunStats,
	claims *Claims,
) {
	log.Info("[%d/%d] %s", stats.Current, stats.Total, filepath.Base(path))

	// --- Open ---
	img, err := store.Open(path)
	if err != nil {
		log.Error("%v", err)
		stats.Failed++
		return
	}
	fi, err := store.Stat(path)
	if err != nil {
		log.Error("File not found: %s", path)
		stats.Failed++
		return
	}

	// --- Edit ---
	if err := ApplyEdits(img, job.Edits); err != nil {
		log.Error("Edit failed: %v", err)
		stats.Failed++
		return
	}
	if len(job.Metadata) > 0 {
		if img.Extension() == ".json" {
			log.Warn("Metadata patch ignored for sidecar file %s", filepath.Base(path))
		} else if err := img.MergeMetadata(job.Metadata); err != nil {
			log.Error("Cannot merge metadata: %v", err)
			stats.Failed++
			return
		}
	}

	// --- Plan and claim ---
	plan, err := store.Plan(img, job.Mode)
	if err != nil {
		log.Error("%v", err)
		stats.Failed++
		return
	}
	if err := claims.Claim(plan.From, plan.To); err != nil {
		log.Error("%v", err)
		stats.Failed++
		return
	}
	if !plan.Changed() && !plan.WriteSidecar {
		log.Debug(cfg.Verbose, "Unchanged: %s", plan.To)
		stats.Unchanged++
		return
	}

	// --- Dry run ---
	if cfg.DryRun {
		if plan.Changed() {
			if exists, _ := store.Exists(plan.To); exists {
				log.Warn("Would skip (exists): %s", filepath.Base(plan.To))
				stats.Skipped++
				return
			}
		}
		logPlan(log, plan)
		record(stats, plan, fi.Size())
		return
	}

	// --- Sync ---
	if err := store.Update(img, job.Mode); err != nil {
		if plan.Changed() && img.Location() == plan.To {
			// The image was relocated; the sidecar step failed.
			log.Error("Partial sync: %s -> %s, sidecar not synced: %v",
				filepath.Base(plan.From), plan.To, err)
			stats.Failed++
			return
		}
		if errors.Is(err, bids.ErrDestinationExists) {
			log.Warn("Skip (exists): %s", filepath.Base(plan.To))
			stats.Skipped++
			return
		}
		log.Error("Sync failed: %v", err)
		stats.Failed++
		return
	}
	record(stats, plan, fi.Size())
	if plan.Changed() {
		log.Success("%s -> %s", filepath.Base(plan.From), plan.To)
	} else {
		log.Success("Wrote sidecar %s", plan.SidecarTo)
	}
}

// record counts a completed (or, in dry-run mode, planned) sync.
func record(stats *RunStats, p bids.SyncPlan, size int64) {
	switch {
	case !p.Changed():
		stats.Updated++
	case p.Mode == bids.Copy:
		stats.Copied++
		stats.Bytes += size
	default:
		stats.Renamed++
		stats.Bytes += size
	}
}

func logPlan(log *logging.Logger, p bids.SyncPlan) {
	if p.Changed() {
		log.Plan("%s %s -> %s", p.Mode, p.From, p.To)
	}
	if p.RelocateSidecar {
		log.Plan("%s sidecar %s -> %s", p.Mode, p.SidecarFrom, p.SidecarTo)
	}
	if p.WriteSidecar {
		log.Plan("write sidecar %s", p.SidecarTo)
	}
}

func logBatchHeader(cfg *config.Config, log *logging.Logger, job Job, stats *RunStats) {
	log.Info("Mode: %s | Files: %d | Edits: %d | Metadata keys: %d",
		job.Mode, stats.Total, len(job.Edits), len(job.Metadata))
	for _, e := range job.Edits {
		log.Debug(cfg.Verbose, "  edit %s", e)
	}
	if cfg.DryRun {
		log.Warn("DRY RUN - no files will be modified")
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d renamed, %d copied, %d updated, %d unchanged, %d skipped, %d failed",
		stats.Renamed, stats.Copied, stats.Updated, stats.Unchanged, stats.Skipped, stats.Failed)
	log.Info("  Total files processed: %d", stats.Current)

	if cfg.DryRun {
		log.Info("  Would relocate: %s (dry run)", display.FormatBytes(stats.Bytes))
		return
	}
	if stats.Failed == 0 {
		log.Success("  Relocated: %s", display.FormatBytes(stats.Bytes))
	} else {
		log.Warn("  Relocated: %s; %d file(s) failed", display.FormatBytes(stats.Bytes), stats.Failed)
	}
}
