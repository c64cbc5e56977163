package clock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPeriodOf(t *testing.T) {
	period, err := PeriodOf(1_234, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(12), period)

	period, err = PeriodOf(99, 100)
	require.NoError(t, err)
	require.Zero(t, period)

	_, err = PeriodOf(10, 0)
	require.Error(t, err)
}

func TestManualClock(t *testing.T) {
	c := NewManual(10)
	require.Equal(t, uint64(10), c.CurrentBlock())
	require.Equal(t, uint64(15), c.Advance(5))
	require.NoError(t, c.Set(20))
	require.Error(t, c.Set(19))
	require.Equal(t, uint64(20), c.CurrentBlock())
}
