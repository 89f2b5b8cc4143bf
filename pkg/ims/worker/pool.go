// Package worker implements the background pool that drains the job ledger:
// it polls for PENDING jobs, claims them with a compare-and-set transition to
// RUNNING, and drives a JobProcessor to completion or failure.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	metrics "github.com/molspect/imsbase/pkg/ims/core/metrics"
	"github.com/molspect/imsbase/pkg/ims/ledger"
	logger "github.com/molspect/imsbase/pkg/ims/support/util/logger"
)

// JobProcessor executes a claimed job. Implementations report progress through
// the ledger Service and return an error to fail the job.
type JobProcessor interface {
	Process(ctx context.Context, job *model.Job, ledger *ledger.Service) error
}

// Pool runs a fixed number of workers that poll the ledger for pending jobs.
type Pool struct {
	store        repository.JobLedger
	ledger       *ledger.Service
	processor    JobProcessor
	recorder     metrics.MetricRecorder
	tracer       metrics.Tracer
	poolSize     int
	pollInterval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPool creates a worker pool. processor may be nil, in which case the pool
// starts but stays idle.
func NewPool(
	store repository.JobLedger,
	ledgerSvc *ledger.Service,
	processor JobProcessor,
	recorder metrics.MetricRecorder,
	tracer metrics.Tracer,
	poolSize int,
	pollInterval time.Duration,
) *Pool {
	if poolSize <= 0 {
		poolSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Pool{
		store:        store,
		ledger:       ledgerSvc,
		processor:    processor,
		recorder:     recorder,
		tracer:       tracer,
		poolSize:     poolSize,
		pollInterval: pollInterval,
		stopCh:       make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) error {
	if p.processor == nil {
		logger.Infof("Worker pool: no job processor registered, pool stays idle.")
		return nil
	}

	for i := 0; i < p.poolSize; i++ {
		workerID := uuid.NewString()
		p.wg.Add(1)
		go p.run(workerID)
	}
	logger.Infof("Worker pool started with %d workers (poll interval: %s).", p.poolSize, p.pollInterval)
	return nil
}

// Stop signals the workers to finish their current job and waits for them,
// honoring the context deadline.
func (p *Pool) Stop(ctx context.Context) error {
	close(p.stopCh)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Infof("Worker pool stopped.")
		return nil
	case <-ctx.Done():
		logger.Warnf("Worker pool shutdown timed out: %v", ctx.Err())
		return ctx.Err()
	}
}

func (p *Pool) run(workerID string) {
	defer p.wg.Done()
	logger.Debugf("Worker %s: started.", workerID)

	for {
		select {
		case <-p.stopCh:
			logger.Debugf("Worker %s: stopping.", workerID)
			return
		default:
		}

		ctx := context.Background()
		job, err := p.store.ClaimPendingJob(ctx)
		if err != nil {
			if !errors.Is(err, repository.ErrJobNotFound) {
				logger.Errorf("Worker %s: failed to claim a job: %v", workerID, err)
			}
			p.sleep()
			continue
		}

		p.process(ctx, workerID, job)
	}
}

func (p *Pool) process(ctx context.Context, workerID string, job *model.Job) {
	logger.Infof("Worker %s: processing job %d (type=%d, dataset=%d).", workerID, job.ID, job.Type, job.DatasetID)

	if p.recorder != nil {
		p.recorder.RecordJobStart(ctx, job)
	}
	if p.tracer != nil {
		var end func()
		ctx, end = p.tracer.StartJobSpan(ctx, job)
		defer end()
	}

	if err := p.processor.Process(ctx, job, p.ledger); err != nil {
		logger.Errorf("Worker %s: job %d failed: %v", workerID, job.ID, err)
		if p.tracer != nil {
			p.tracer.RecordError(ctx, "worker", err)
		}
		if _, failErr := p.ledger.Fail(ctx, job.ID, err.Error()); failErr != nil {
			logger.Errorf("Worker %s: failed to mark job %d as failed: %v", workerID, job.ID, failErr)
		}
		return
	}

	if _, err := p.ledger.Complete(ctx, job.ID); err != nil {
		logger.Errorf("Worker %s: failed to complete job %d: %v", workerID, job.ID, err)
		return
	}
	logger.Infof("Worker %s: job %d completed.", workerID, job.ID)
}

func (p *Pool) sleep() {
	select {
	case <-p.stopCh:
	case <-time.After(p.pollInterval):
	}
}
