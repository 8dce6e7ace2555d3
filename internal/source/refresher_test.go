package source

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tank0226/current-task/internal/state"
	"github.com/tank0226/current-task/internal/util"
)

type stubSource struct {
	tasks []state.Task
	err   error
}

func (s *stubSource) Fetch(ctx context.Context) ([]state.Task, error) {
	return s.tasks, s.err
}

func (s *stubSource) Name() string { return "stub" }

type recordingSink struct {
	mu      sync.Mutex
	metrics []state.TaskMetrics
	errs    []error
}

func (r *recordingSink) Submit(taskMetrics state.TaskMetrics, fetchErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, taskMetrics)
	r.errs = append(r.errs, fetchErr)
}

func newTestRefresher(t *testing.T, src Source, sink Sink) *Refresher {
	t.Helper()
	logger := util.NewLoggerWithWriter(util.LevelError, io.Discard)
	refresher, err := NewRefresher(src, sink, nil, time.Minute, logger)
	require.NoError(t, err)
	return refresher
}

func TestRefreshSubmitsComputedMetrics(t *testing.T) {
	src := &stubSource{tasks: []state.Task{
		{Title: "write report", MarkedCurrent: true},
		{Title: "other"},
	}}
	sink := &recordingSink{}
	refresher := newTestRefresher(t, src, sink)

	refresher.RefreshNow()

	require.Len(t, sink.metrics, 1)
	require.NoError(t, sink.errs[0])
	assert.Equal(t, 1, sink.metrics[0].NumberMarkedCurrent)
	assert.Equal(t, "write report", sink.metrics[0].CurrentTaskTitle)
}

func TestRefreshSubmitsFetchError(t *testing.T) {
	src := &stubSource{err: errors.New("service unavailable")}
	sink := &recordingSink{}
	refresher := newTestRefresher(t, src, sink)

	refresher.RefreshNow()

	require.Len(t, sink.errs, 1)
	require.Error(t, sink.errs[0])
	assert.Zero(t, sink.metrics[0].NumberMarkedCurrent)
}
