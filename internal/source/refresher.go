package source

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/tank0226/current-task/internal/metrics"
	"github.com/tank0226/current-task/internal/state"
	"github.com/tank0226/current-task/internal/util"
)

const fetchTimeout = 10 * time.Second

// Sink receives already-resolved refresh results. The engine implements it.
type Sink interface {
	Submit(taskMetrics state.TaskMetrics, fetchErr error)
}

// Refresher owns the asynchronous task refresh cycle. It runs on its own
// interval, independent of the engine tick, and hands each result to the
// sink as a resolved value; fetch failures become error results and never
// stop the cycle.
type Refresher struct {
	source    Source
	sink      Sink
	recorder  *metrics.Recorder
	logger    *util.Logger
	interval  time.Duration
	scheduler gocron.Scheduler
}

// NewRefresher creates a refresher scheduling fetches at the given interval.
func NewRefresher(src Source, sink Sink, recorder *metrics.Recorder, interval time.Duration, logger *util.Logger) (*Refresher, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Refresher{
		source:    src,
		sink:      sink,
		recorder:  recorder,
		logger:    logger,
		interval:  interval,
		scheduler: scheduler,
	}, nil
}

// Start schedules the refresh job, running once immediately.
func (r *Refresher) Start() error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.refresh),
		gocron.WithName("task-refresh"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule refresh job: %w", err)
	}
	r.scheduler.Start()
	r.logger.Infof("refreshing %s every %s", r.source.Name(), r.interval)
	return nil
}

// Stop shuts the scheduler down, waiting for a running fetch to finish.
func (r *Refresher) Stop() error {
	return r.scheduler.Shutdown()
}

// RefreshNow performs one fetch outside the schedule, e.g. after a reload.
func (r *Refresher) RefreshNow() {
	r.refresh()
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	tasks, err := r.source.Fetch(ctx)
	if err != nil {
		r.logger.Warnf("task refresh failed: %v", err)
		r.recorder.IncRefresh(false)
		r.sink.Submit(state.TaskMetrics{}, err)
		return
	}
	r.recorder.IncRefresh(true)
	r.sink.Submit(state.ComputeMetrics(tasks, time.Now()), nil)
}
