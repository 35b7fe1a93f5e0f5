package team

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWorkDays(t *testing.T) {
	cases := []struct {
		input string
		want  []time.Weekday
	}{
		{"", []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}},
		{"1,3,5", []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
		{"6, 7", []time.Weekday{time.Saturday, time.Sunday}},
		{"0,8,x,2", []time.Weekday{time.Tuesday}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseWorkDays(c.input), "ParseWorkDays(%q)", c.input)
	}
}

func TestTeam_IsWorkDay(t *testing.T) {
	tm := Team{WorkDays: "1,2,3,4,5"}

	assert.True(t, tm.IsWorkDay(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))  // Monday
	assert.False(t, tm.IsWorkDay(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))) // Sunday
}
