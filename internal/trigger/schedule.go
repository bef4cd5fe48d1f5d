package trigger

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"dmworker/internal/logger"
)

// ErrInvalidSchedule is returned for a cron expression the scheduler rejects.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Schedule calls run on every tick of expr (standard five-field cron or
// descriptors such as "@every 5m") until ctx is done or run fails. A tick
// that fires while a batch is still running is skipped.
func Schedule(ctx context.Context, expr string, run RunFunc, log *logger.Logger) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var guard Guard

	errCh := make(chan error, 1)
	c := cron.New()

	_, err := c.AddFunc(expr, func() {
		if runCtx.Err() != nil {
			return
		}

		if !guard.TryLock() {
			log.Warn("Skipping scheduled run, previous run still in progress")
			return
		}
		defer guard.Unlock()

		log.Info("Scheduled run starting")

		if err := run(runCtx); err != nil {
			cancel()
			select {
			case errCh <- err:
			default:
			}
		}
	})
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidSchedule, expr, err)
	}

	c.Start()
	log.Info("Scheduler started", "schedule", expr)

	defer func() {
		<-c.Stop().Done()
		log.Info("Scheduler stopped")
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
