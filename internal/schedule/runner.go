// Package schedule runs periodic maintenance jobs on a seconds-resolution
// cron.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

type Runner struct {
	cron    *cron.Cron
	timeout time.Duration
}

// NewRunner returns a stopped runner. Each job run gets its own context
// bounded by timeout.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		timeout: timeout,
	}
}

// Add registers job under name on a six-field spec such as "0 */15 * * * *".
func (r *Runner) Add(name, spec string, job Job) error {
	_, err := r.cron.AddFunc(spec, func() {
		r.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	logger.WithFields(logger.Fields{"job": name, "spec": spec}).Info("job scheduled")
	return nil
}

func (r *Runner) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		logger.WithField("job", name).Errorf("job failed: %v", err)
		return
	}
	logger.WithFields(logger.Fields{"job": name, "took": time.Since(start)}).Debug("job finished")
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (r *Runner) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}
