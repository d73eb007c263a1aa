package season

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCurrent(t *testing.T) {
	tz := time.UTC

	testCases := []struct {
		now      time.Time
		expected Season
	}{
		{
			now: time.Date(2000, 5, 22, 0, 0, 0, 0, tz),
			expected: Season{
				StartYear: 1999,
				EndYear:   2000,
				StartTime: time.Date(1999, 8, 1, 0, 0, 0, 0, tz),
			},
		},
		{
			now: time.Date(2011, 12, 22, 0, 0, 0, 0, tz),
			expected: Season{
				StartYear: 2011,
				EndYear:   2012,
				StartTime: time.Date(2011, 8, 1, 0, 0, 0, 0, tz),
			},
		},
		{
			now: time.Date(2025, 8, 1, 0, 0, 0, 0, tz),
			expected: Season{
				StartYear: 2025,
				EndYear:   2026,
				StartTime: time.Date(2025, 8, 1, 0, 0, 0, 0, tz),
			},
		},
		{
			now: time.Date(2025, 7, 31, 23, 59, 59, 0, tz),
			expected: Season{
				StartYear: 2024,
				EndYear:   2025,
				StartTime: time.Date(2024, 8, 1, 0, 0, 0, 0, tz),
			},
		},
	}

	for _, test := range testCases {
		s := Current(test.now)
		require.Equal(t, test.expected, s)
	}
}

func TestCurrentCodeEveryMonth(t *testing.T) {
	for year := 2014; year <= 2030; year++ {
		for month := time.January; month <= time.December; month++ {
			now := time.Date(year, month, 15, 12, 0, 0, 0, time.UTC)
			expected := year - 1
			if month >= time.August {
				expected = year
			}
			require.Equal(t, expected, Current(now).StartYear, now.String())
			require.Equal(t, Label(expected), Current(now).Label())
		}
	}
}

func TestLabel(t *testing.T) {
	require.Equal(t, "2025/26", Label(2025))
	require.Equal(t, "2014/15", Label(2014))
	require.Equal(t, "1999/00", Label(1999))
	require.Equal(t, "2025", CurrentCode(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
}
