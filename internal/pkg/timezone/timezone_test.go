package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResolver_Location_FallsBackOnUnknownTimezone(t *testing.T) {
	r := NewResolver("Asia/Jakarta")

	assert.Equal(t, "Asia/Jakarta", r.Location("").String())
	assert.Equal(t, "Asia/Jakarta", r.Location("Mars/Olympus_Mons").String())
	assert.Equal(t, "Asia/Manila", r.Location("Asia/Manila").String())
}

func TestNewResolver_InvalidDefaultUsesUTC(t *testing.T) {
	r := NewResolver("not-a-zone")
	assert.Equal(t, time.UTC, r.Location("also-not-a-zone"))
}

func TestResolver_DayRange_UsesCompanyLocalDay(t *testing.T) {
	// 2024-03-02 20:00 UTC is already 2024-03-03 in Manila (UTC+8)
	instant := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)
	r := NewResolver("UTC")

	start, end := r.DayRange("Asia/Manila", instant)

	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2024, 3, 3, 0, 0, 0, 0, manila)))
	assert.True(t, end.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, manila)))
	assert.Equal(t, Date(2024, 3, 3), r.LocalDate("Asia/Manila", instant))

	// The same instant is still March 2nd in UTC
	assert.Equal(t, Date(2024, 3, 2), r.LocalDate("UTC", instant))
}

func TestResolver_DateRange_AcrossDST(t *testing.T) {
	r := NewResolver("UTC")

	start, end := r.DateRange("America/New_York", Date(2024, 3, 10))

	assert.Equal(t, 23*time.Hour, end.Sub(start))
}

func TestResolver_LastNDaysRange(t *testing.T) {
	now := time.Date(2024, 3, 10, 5, 0, 0, 0, time.UTC)
	r := NewResolver("UTC").WithClock(fixedClock(now))

	start, end := r.LastNDaysRange("UTC", 7)

	assert.True(t, start.Equal(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)))
	assert.True(t, end.Equal(now))
}

func TestResolver_Today(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)
	r := NewResolver("UTC").WithClock(fixedClock(now))

	assert.Equal(t, Date(2025, 1, 1), r.Today("Asia/Jakarta"))
	assert.Equal(t, Date(2024, 12, 31), r.Today("UTC"))
}

func TestDays(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"single day", Date(2024, 1, 5), Date(2024, 1, 5), 1},
		{"inclusive range", Date(2024, 1, 5), Date(2024, 1, 10), 6},
		{"month boundary", Date(2024, 1, 30), Date(2024, 2, 2), 4},
		{"reversed", Date(2024, 1, 10), Date(2024, 1, 5), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Len(t, Days(c.start, c.end), c.want)
		})
	}
}
