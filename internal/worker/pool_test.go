package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_RunsSubmittedJobs(t *testing.T) {
	p := NewPool("test", 3, 10)
	p.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(funcJob{name: "count", fn: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}
	p.Stop()

	assert.Equal(t, int32(5), ran.Load())
}

func TestPool_SubmitFailsWhenFull(t *testing.T) {
	p := NewPool("test", 1, 1)
	// not started, so nothing drains the queue
	require.NoError(t, p.Submit(funcJob{name: "a", fn: func(context.Context) error { return nil }}))

	err := p.Submit(funcJob{name: "b", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 1, p.QueueSize())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool("test", 1, 1)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	err := p.Submit(funcJob{name: "late", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestPool_SurvivesFailingAndPanickingJobs(t *testing.T) {
	p := NewPool("test", 1, 4)
	p.Start(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, p.Submit(funcJob{name: "fail", fn: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, p.Submit(funcJob{name: "panic", fn: func(context.Context) error { panic("bad") }}))
	require.NoError(t, p.Submit(funcJob{name: "ok", fn: func(context.Context) error {
		wg.Done()
		return nil
	}}))

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after a failing job")
	}
	p.Stop()
}
