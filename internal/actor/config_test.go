package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitDurationBeforeRetry(t *testing.T) {
	maxDelay := 600 * time.Second

	cases := []struct {
		n    int
		want time.Duration
	}{
		{0, 2 * time.Second},
		{1, 4 * time.Second},
		{2, 8 * time.Second},
		{3, 16 * time.Second},
		{8, 512 * time.Second},
		{9, 600 * time.Second},
	}
	for _, tc := range cases {
		got := WaitDurationBeforeRetry(tc.n, maxDelay)
		require.Equal(t, tc.want, got, "n=%d", tc.n)
	}
}

func TestWaitDurationBeforeRetryExponentCap(t *testing.T) {
	maxDelay := 600 * time.Second

	got := WaitDurationBeforeRetry(1000, maxDelay)
	require.Equal(t, maxDelay, got)
}
