package quest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"shellquest/pkg/quest"
)

// The facade should be enough to embed a full session without touching
// internal packages.
func TestEmbeddingRoundTrip(t *testing.T) {
	adv, err := quest.DefaultAdventure()
	require.NoError(t, err)

	s, err := quest.New(context.Background(), quest.Config{
		Adventure: adv,
		Store:     quest.NewMemoryStore(),
	})
	require.NoError(t, err)

	steps := s.Turn(context.Background(), "pwd")
	require.Len(t, steps, 1)
	require.Equal(t, 0, steps[0].Result.ExitCode)
	require.Equal(t, []string{"/home/student"}, steps[0].Result.Stdout)
	require.Equal(t, quest.TaskCompleted, steps[0].Outcome)

	m, ok := s.CurrentMission()
	require.True(t, ok)
	require.NotEmpty(t, m.Title)
}
