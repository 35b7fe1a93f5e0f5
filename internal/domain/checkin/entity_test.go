package checkin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeReadiness(t *testing.T) {
	cases := []struct {
		name                          string
		mood, stress, sleep, physical int
		wantScore                     int
		wantStatus                    ReadinessStatus
	}{
		{"best possible", 10, 1, 10, 10, 100, StatusGreen},
		{"worst possible", 1, 10, 1, 1, 0, StatusRed},
		{"middling", 6, 5, 6, 6, 56, StatusYellow},
		{"good", 8, 3, 8, 8, 78, StatusGreen},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			score, status := ComputeReadiness(c.mood, c.stress, c.sleep, c.physical)
			assert.Equal(t, c.wantScore, score)
			assert.Equal(t, c.wantStatus, status)
		})
	}
}

func TestStatusForScore_Boundaries(t *testing.T) {
	assert.Equal(t, StatusGreen, StatusForScore(70))
	assert.Equal(t, StatusYellow, StatusForScore(69))
	assert.Equal(t, StatusYellow, StatusForScore(50))
	assert.Equal(t, StatusRed, StatusForScore(49))
}

func TestFirstPerUser(t *testing.T) {
	base := time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC)
	in := []CheckIn{
		{ID: "a1", UserID: "a", CreatedAt: base},
		{ID: "b1", UserID: "b", CreatedAt: base.Add(time.Minute)},
		{ID: "a2", UserID: "a", CreatedAt: base.Add(time.Hour)},
	}

	out := FirstPerUser(in)

	assert.Len(t, out, 2)
	assert.Equal(t, "a1", out[0].ID)
	assert.Equal(t, "b1", out[1].ID)
}

func TestSubmitCheckInRequest_Validate(t *testing.T) {
	ok := SubmitCheckInRequest{Mood: 5, Stress: 5, Sleep: 5, PhysicalHealth: 5}
	assert.NoError(t, ok.Validate())

	bad := SubmitCheckInRequest{Mood: 0, Stress: 11, Sleep: 5, PhysicalHealth: 5}
	err := bad.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mood")
	assert.Contains(t, err.Error(), "stress")
}
