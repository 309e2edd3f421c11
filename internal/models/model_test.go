package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHowLong(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"seconds", now.Add(-30 * time.Second), "30 seconds"},
		{"minutes", now.Add(-5 * time.Minute), "5 minutes"},
		{"hours", now.Add(-3 * time.Hour), "3 hours"},
		{"days", now.Add(-2 * 24 * time.Hour), "2 days"},
		{"weeks", now.Add(-15 * 24 * time.Hour), "2 weeks"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, howLong(tc.at))
		})
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		require.True(t, ValidCategory(c))
	}
	require.False(t, ValidCategory("gadgets"))
	require.False(t, ValidCategory(""))
}
