package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	t.Run("prefixed", func(t *testing.T) {
		id := NewID("poll")
		require.True(t, strings.HasPrefix(id, "poll_"))
		require.Len(t, id, len("poll_")+32)
	})

	t.Run("bare", func(t *testing.T) {
		id := NewID("")
		require.Len(t, id, 32)
		require.NotContains(t, id, "-")
	})

	t.Run("unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for i := 0; i < 1000; i++ {
			id := NewID("opt")
			_, dup := seen[id]
			require.False(t, dup, "duplicate id %s", id)
			seen[id] = struct{}{}
		}
	})
}
