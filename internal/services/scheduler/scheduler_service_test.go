package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestRegisterJob(t *testing.T) {
	s := NewService(arbor.NewLogger())

	require.NoError(t, s.RegisterJob("refresh", "0 0 * * *", func() error { return nil }))
	assert.Error(t, s.RegisterJob("refresh", "0 0 * * *", func() error { return nil }), "duplicate name")
	assert.Error(t, s.RegisterJob("bad", "every day", func() error { return nil }), "invalid cron")

	statuses := s.GetAllJobStatuses()
	require.Contains(t, statuses, "refresh")
	assert.Equal(t, "0 0 * * *", statuses["refresh"].Schedule)
	assert.Nil(t, statuses["refresh"].LastRun)
}

func TestStartStop(t *testing.T) {
	s := NewService(arbor.NewLogger())
	require.NoError(t, s.RegisterJob("gc", "17 * * * *", func() error { return nil }))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())

	status := s.GetAllJobStatuses()["gc"]
	require.NotNil(t, status.NextRun)
	assert.Equal(t, 17, status.NextRun.Minute())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
}

func TestTriggerJob(t *testing.T) {
	tests := []struct {
		name      string
		handler   func() error
		wantError string
	}{
		{"success", func() error { return nil }, ""},
		{"failure", func() error { return errors.New("feed unavailable") }, "feed unavailable"},
		{"panic", func() error { panic("boom") }, "panic: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(arbor.NewLogger())
			var calls atomic.Int32
			require.NoError(t, s.RegisterJob("job", "0 0 * * *", func() error {
				calls.Add(1)
				return tt.handler()
			}))

			require.NoError(t, s.TriggerJob("job"))

			require.Eventually(t, func() bool {
				status := s.GetAllJobStatuses()["job"]
				return status.LastRun != nil && !status.IsRunning
			}, 2*time.Second, 10*time.Millisecond)

			assert.Equal(t, int32(1), calls.Load())
			assert.Equal(t, tt.wantError, s.GetAllJobStatuses()["job"].LastError)
		})
	}
}

func TestTriggerJob_Unknown(t *testing.T) {
	s := NewService(arbor.NewLogger())
	assert.Error(t, s.TriggerJob("missing"))
}

func TestTriggerJob_AlreadyRunning(t *testing.T) {
	s := NewService(arbor.NewLogger())
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, s.RegisterJob("slow", "0 0 * * *", func() error {
		close(started)
		<-release
		return nil
	}))

	require.NoError(t, s.TriggerJob("slow"))
	<-started
	assert.Error(t, s.TriggerJob("slow"))

	close(release)
	require.Eventually(t, func() bool {
		return !s.GetAllJobStatuses()["slow"].IsRunning
	}, 2*time.Second, 10*time.Millisecond)
}
