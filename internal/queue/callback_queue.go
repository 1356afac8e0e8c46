// Package queue drains the durable partner-callback queue. Jobs are frozen
// at enqueue time (payload and signature); the drainer only delivers.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/dao"
	"launcx-order-api/internal/logger"
	ordermodel "launcx-order-api/internal/model/order"
	"launcx-order-api/internal/utils"
)

type Drainer struct {
	OrderDao *dao.OrderDao
	Log      *logrus.Logger
}

func NewDrainer() *Drainer {
	return &Drainer{OrderDao: dao.NewOrderDao(), Log: logger.NewLogger("callback-queue")}
}

// shouldDeadLetter decides whether a failed delivery is worth retrying.
// A 4xx response means the partner rejected the payload and a retry cannot
// change that; exhausting the attempt budget ends retries too. statusCode 0
// means the request never got a response.
func shouldDeadLetter(statusCode, attempts, maxAttempts int) bool {
	if statusCode >= 400 && statusCode < 500 {
		return true
	}
	return attempts >= maxAttempts
}

// Transient-failure budget inside one job-level attempt.
var (
	deliverTries    = 3
	deliverRetryGap = 2 * time.Second
)

// deliver posts one job. Transient failures (no response, or a 5xx) are
// retried inline and still count as one job-level attempt; a 4xx means the
// partner rejected the payload, so retrying inside the cycle is pointless.
func (d *Drainer) deliver(ctx context.Context, job ordermodel.CallbackJob) (int, error) {
	var status int
	var lastErr error
	_ = utils.DoWithRetry(ctx, deliverTries, deliverRetryGap, func() error {
		callCtx, cancel := context.WithTimeout(ctx, time.Duration(config.C.CallbackQueue.TimeoutSec)*time.Second)
		defer cancel()
		st, _, err := utils.HttpPostRaw(callCtx, job.URL, map[string]string{
			"Content-Type":         "application/json",
			"X-Callback-Signature": job.Signature,
		}, []byte(job.Payload))
		status = st
		if err != nil {
			lastErr = err
			return err
		}
		if st >= 200 && st < 300 {
			lastErr = nil
			return nil
		}
		lastErr = fmt.Errorf("partner responded %d", st)
		if st >= 400 && st < 500 {
			return nil
		}
		return lastErr
	})
	return status, lastErr
}

// DrainOnce processes one batch of pending jobs.
func (d *Drainer) DrainOnce(ctx context.Context) {
	maxAttempts := config.C.CallbackQueue.MaxAttempts
	jobs, err := d.OrderDao.ListPendingCallbackJobs(maxAttempts, config.C.CallbackQueue.BatchSize)
	if err != nil {
		d.Log.Errorf("list pending jobs failed: %v", err)
		return
	}
	for _, job := range jobs {
		status, err := d.deliver(ctx, job)
		if err == nil {
			if merr := d.OrderDao.MarkJobDelivered(job.ID); merr != nil {
				d.Log.Errorf("job %d delivered but mark failed: %v", job.ID, merr)
			}
			continue
		}

		attempts := job.Attempts + 1
		if shouldDeadLetter(status, attempts, maxAttempts) {
			var code *int
			if status > 0 {
				code = &status
			}
			if derr := d.OrderDao.MoveJobToDeadLetter(job, attempts, err.Error(), code); derr != nil {
				d.Log.Errorf("job %d dead-letter move failed: %v", job.ID, derr)
			} else {
				d.Log.Warnf("job %d dead-lettered after %d attempts: %v", job.ID, attempts, err)
			}
			continue
		}
		if berr := d.OrderDao.BumpJobAttempt(job.ID, err.Error()); berr != nil {
			d.Log.Errorf("job %d attempt bump failed: %v", job.ID, berr)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// Start drains on the configured interval until ctx is cancelled.
func (d *Drainer) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Duration(config.C.CallbackQueue.DrainSeconds) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.DrainOnce(ctx)
			}
		}
	}()
}
