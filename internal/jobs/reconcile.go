package jobs

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultReconcileTimeout = 5 * time.Minute

// Recomputer rewrites every brand's carCount from the live car count.
type Recomputer interface {
	RecomputeAll(ctx context.Context) (int, error)
}

// CarCountReconcileJob repairs carCount drift left by writes that ran
// without a transaction.
type CarCountReconcileJob struct {
	ctx        context.Context
	recomputer Recomputer
	timeout    time.Duration
	running    atomic.Bool
}

// NewCarCountReconcileJob returns a job whose runs are cancelled when ctx is.
func NewCarCountReconcileJob(ctx context.Context, recomputer Recomputer) *CarCountReconcileJob {
	return &CarCountReconcileJob{ctx: ctx, recomputer: recomputer, timeout: defaultReconcileTimeout}
}

// Run is called by cron. Overlapping runs are skipped.
func (j *CarCountReconcileJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		log.Warn("car count reconcile still running, skipping")
		return
	}
	defer j.running.Store(false)

	ctx, cancel := context.WithTimeout(j.ctx, j.timeout)
	defer cancel()

	start := time.Now()
	corrected, err := j.recomputer.RecomputeAll(ctx)
	entry := log.WithFields(log.Fields{
		"corrected":   corrected,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("car count reconcile failed")
		return
	}
	if corrected > 0 {
		entry.Warn("car count reconcile corrected drift")
		return
	}
	entry.Debug("car count reconcile found no drift")
}
