package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/metrics"
)

type fakeLock struct {
	acquired bool
	err      error
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.acquired = false
	f.releases++
	return nil
}

type testJob struct {
	name  string
	err   error
	panic bool
	runs  int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	if t.panic {
		panic("kaboom")
	}
	return t.err
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return service
}

func TestServiceRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	panicking := &testJob{name: "panic", panic: true}
	last := &testJob{name: "last"}
	lock := &fakeLock{}
	service := newTestService(t, lock, success, failure, panicking, last)

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	for _, job := range []*testJob{success, failure, panicking, last} {
		if job.runs != 1 {
			t.Fatalf("expected %s to run once, ran %d", job.name, job.runs)
		}
	}
	if lock.releases != 1 || lock.acquired {
		t.Fatalf("expected lock released once, got releases=%d acquired=%v", lock.releases, lock.acquired)
	}
}

func TestServiceRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "reconcile"}
	lock := &fakeLock{acquired: true}
	service := newTestService(t, lock, job)

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected job skipped, ran %d", job.runs)
	}
	if lock.releases != 0 {
		t.Fatalf("lock released without being acquired")
	}
}

func TestServiceRunOnceSurfacesLockError(t *testing.T) {
	job := &testJob{name: "reconcile"}
	service := newTestService(t, &fakeLock{err: errors.New("redis down")}, job)

	if err := service.RunOnce(context.Background()); err == nil {
		t.Fatal("expected lock error")
	}
	if job.runs != 0 {
		t.Fatalf("expected job skipped, ran %d", job.runs)
	}
}

func TestServiceDefaultsInterval(t *testing.T) {
	service := newTestService(t, &fakeLock{})
	if service.interval != 15*time.Minute {
		t.Fatalf("expected default interval, got %s", service.interval)
	}
}

func TestNewServiceRequiresLock(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})})
	if err == nil {
		t.Fatal("expected missing lock error")
	}
}

type slowJob struct{}

func (slowJob) Name() string { return "slow" }

func (slowJob) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestServiceRunOnceTimesOutStuckJob(t *testing.T) {
	after := &testJob{name: "after"}
	reg := prometheus.NewRegistry()
	service, err := NewService(ServiceParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Registry:   NewRegistry(slowJob{}, after),
		Lock:       &fakeLock{},
		Metrics:    metrics.NewCronJobMetrics(reg),
		JobTimeout: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if after.runs != 1 {
		t.Fatalf("expected job after the stuck one to run, ran %d", after.runs)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var outcomes []string
	for _, mf := range mfs {
		if mf.GetName() != "marketbill_cron_job_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" {
					outcomes = append(outcomes, l.GetValue())
				}
			}
		}
	}
	if len(outcomes) != 2 || !contains(outcomes, metrics.CronOutcomeTimeout) || !contains(outcomes, metrics.CronOutcomeSuccess) {
		t.Fatalf("unexpected outcomes %v", outcomes)
	}
}

func TestServiceJobTimeoutDefaultsToInterval(t *testing.T) {
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Lock:     &fakeLock{},
		Interval: time.Minute,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if service.jobTimeout != time.Minute {
		t.Fatalf("expected job timeout to follow interval, got %s", service.jobTimeout)
	}
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "once"}
	service := newTestService(t, &fakeLock{}, job)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
