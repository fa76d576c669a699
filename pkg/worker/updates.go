package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yomikata/yomikata/pkg/catalog"
	"github.com/yomikata/yomikata/pkg/observability"
)

// checkTimeout bounds one update-check run against the repository.
const checkTimeout = 2 * time.Minute

// UpdateChecker periodically recomputes which installed sources have a newer
// repository version and publishes the count as a gauge. Update state is
// never persisted, so a crash simply resets it until the next run.
type UpdateChecker struct {
	catalog *catalog.Service
	repoURL string
	log     *logrus.Logger
	metrics *observability.Metrics
	cron    *cron.Cron
}

// NewUpdateChecker creates an update checker against the configured
// repository. Metrics may be nil.
func NewUpdateChecker(svc *catalog.Service, repoURL string, log *logrus.Logger, metrics *observability.Metrics) *UpdateChecker {
	if log == nil {
		log = logrus.New()
	}
	return &UpdateChecker{
		catalog: svc,
		repoURL: repoURL,
		log:     log,
		metrics: metrics,
		cron:    cron.New(),
	}
}

// Start schedules the periodic check. The schedule is a standard cron
// expression ("0 */6 * * *") or a descriptor ("@hourly").
func (u *UpdateChecker) Start(schedule string) error {
	_, err := u.cron.AddFunc(schedule, u.runOnce)
	if err != nil {
		return err
	}
	u.cron.Start()
	u.log.WithField("schedule", schedule).Info("update checker started")
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (u *UpdateChecker) Stop() {
	ctx := u.cron.Stop()
	<-ctx.Done()
	u.log.Info("update checker stopped")
}

// RunNow performs one check outside the schedule, for startup and tests.
func (u *UpdateChecker) RunNow(ctx context.Context) (int, error) {
	sources, err := u.catalog.CheckUpdates(ctx, u.repoURL)
	if err != nil {
		return 0, err
	}

	updates := 0
	for _, src := range sources {
		if src.HasUpdate {
			updates++
			u.log.WithFields(logrus.Fields{
				"source_id": src.ID,
				"name":      src.Name,
				"installed": src.Version,
			}).Info("source update available")
		}
	}

	if u.metrics != nil {
		u.metrics.SourcesWithUpdate.Set(float64(updates))
		u.metrics.InstalledSources.Set(float64(len(sources)))
	}
	return updates, nil
}

func (u *UpdateChecker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	updates, err := u.RunNow(ctx)
	if err != nil {
		u.log.WithError(err).Warn("update check failed")
		return
	}
	u.log.WithField("updates", updates).Debug("update check complete")
}
