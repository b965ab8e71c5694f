package scheduler

import (
	"testing"

	"carrental-backend/internal/config"
	"carrental-backend/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	runner := jobs.NewJobRunner(nil)

	t.Run("Every minute", func(t *testing.T) {
		s, err := NewScheduler(runner, config.SchedulerConfig{StatusTransitions: "@every 60s"})
		require.NoError(t, err)
		assert.Equal(t, 1, s.Entries())
	})

	t.Run("Six field spec", func(t *testing.T) {
		s, err := NewScheduler(runner, config.SchedulerConfig{StatusTransitions: "0 */5 * * * *"})
		require.NoError(t, err)
		assert.Equal(t, 1, s.Entries())
	})

	t.Run("Invalid spec", func(t *testing.T) {
		_, err := NewScheduler(runner, config.SchedulerConfig{StatusTransitions: "every minute"})
		assert.Error(t, err)
	})
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler(jobs.NewJobRunner(nil), config.SchedulerConfig{StatusTransitions: "@every 1h"})
	require.NoError(t, err)

	s.Start()
	s.Stop()
}
