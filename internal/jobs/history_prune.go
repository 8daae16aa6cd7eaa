package jobs

import (
	"context"
	"time"

	"estate_market_backend/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const pruneRunTimeout = 5 * time.Minute

// SearchHistoryPruner deletes search history older than a cutoff.
type SearchHistoryPruner interface {
	PruneSearchHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}

// HistoryPruneJob periodically removes search history past the retention window.
type HistoryPruneJob struct {
	pruner        SearchHistoryPruner
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewHistoryPruneJob creates a new HistoryPruneJob.
func NewHistoryPruneJob(pruner SearchHistoryPruner, logger *zap.Logger, cfg *config.Config) *HistoryPruneJob {
	scheduler := cron.New(
		cron.WithLogger(NewCronLogger(logger.Named("cron"))),
		cron.WithChain(cron.SkipIfStillRunning(NewCronLogger(logger.Named("cron")))),
	)
	return &HistoryPruneJob{
		pruner:        pruner,
		logger:        logger.Named("HistoryPruneJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules the job and starts the scheduler. An empty schedule or
// a non-positive retention disables it.
func (j *HistoryPruneJob) SetupAndStart() error {
	spec := j.cfg.HistoryPruneJobSchedule
	if spec == "" || j.cfg.HistoryRetentionDays <= 0 {
		j.logger.Warn("History prune job disabled (HISTORY_PRUNE_JOB_SCHEDULE or HISTORY_RETENTION_DAYS unset)")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(spec, j.RunOnce)
	if err != nil {
		j.logger.Error("Failed to schedule history prune job", zap.String("spec", spec), zap.Error(err))
		return err
	}

	j.logger.Info("History prune job scheduled", zap.String("spec", spec), zap.Int("retentionDays", j.cfg.HistoryRetentionDays), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// RunOnce prunes search history immediately.
func (j *HistoryPruneJob) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneRunTimeout)
	defer cancel()

	retention := time.Duration(j.cfg.HistoryRetentionDays) * 24 * time.Hour
	deleted, err := j.pruner.PruneSearchHistory(ctx, retention)
	if err != nil {
		j.logger.Error("History prune run failed", zap.Error(err))
		return
	}
	j.logger.Info("History prune run completed", zap.Int64("rowsDeleted", deleted))
}

// Stop stops the scheduler, waiting up to ten seconds for a running prune.
func (j *HistoryPruneJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("History prune scheduler stopped")
	case <-time.After(10 * time.Second):
		j.logger.Warn("History prune scheduler stop timed out")
	}
}
