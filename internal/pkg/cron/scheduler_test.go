package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRebuilder struct {
	calls []int
	err   error
}

func (f *fakeRebuilder) RebuildRecent(ctx context.Context, lookbackDays int) error {
	f.calls = append(f.calls, lookbackDays)
	return f.err
}

func TestScheduler_AddJob_RejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(time.UTC)

	err := s.AddJob("bad", "not a cron spec", func(ctx context.Context) error { return nil })

	assert.Error(t, err)
}

func TestRebuildJobs_RegisterAndRunOnce(t *testing.T) {
	s := NewScheduler(time.UTC)
	r := &fakeRebuilder{}

	require.NoError(t, NewRebuildJobs(r, "0 2 * * *", 7).RegisterJobs(s))
	s.RunOnce(context.Background())

	assert.Equal(t, []int{7}, r.calls)
}

func TestScheduler_RunOnce_ContinuesAfterFailure(t *testing.T) {
	s := NewScheduler(time.UTC)
	ran := 0
	require.NoError(t, s.AddJob("fails", "@hourly", func(ctx context.Context) error {
		ran++
		return errors.New("boom")
	}))
	require.NoError(t, s.AddJob("succeeds", "@hourly", func(ctx context.Context) error {
		ran++
		return nil
	}))

	s.RunOnce(context.Background())

	assert.Equal(t, 2, ran)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(nil)
	require.NoError(t, s.AddJob("noop", "@every 1h", func(ctx context.Context) error { return nil }))

	s.Start()
	s.Stop()
}
