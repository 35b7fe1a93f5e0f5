package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestAggregateSummaries_WeightedAverage(t *testing.T) {
	days := []DailyTeamSummary{
		{IsWorkDay: true, ExpectedToCheckIn: 4, CheckedInCount: 4, GreenCount: 4, AvgReadinessScore: f(80)},
		{IsWorkDay: true, ExpectedToCheckIn: 4, CheckedInCount: 1, NotCheckedInCount: 3, RedCount: 1, AvgReadinessScore: f(40)},
	}

	agg := AggregateSummaries(days)

	require.NotNil(t, agg.AvgReadinessScore)
	assert.Equal(t, 72.0, *agg.AvgReadinessScore)
	require.NotNil(t, agg.ComplianceRate)
	assert.Equal(t, 62.5, *agg.ComplianceRate)
	assert.Equal(t, 2, agg.Days)
	assert.Equal(t, 2, agg.WorkDays)
	assert.Equal(t, 5, agg.CheckedInCount)
}

func TestAggregateSummaries_SkipsNullAverageAndZeroExpected(t *testing.T) {
	days := []DailyTeamSummary{
		{IsHoliday: true, TotalMembers: 5},
		{ExpectedToCheckIn: 3, NotCheckedInCount: 3},
	}

	agg := AggregateSummaries(days)

	assert.Nil(t, agg.AvgReadinessScore)
	require.NotNil(t, agg.ComplianceRate)
	assert.Equal(t, 0.0, *agg.ComplianceRate)
	assert.Equal(t, 1, agg.HolidayDays)
}

func TestAggregateSummaries_Empty(t *testing.T) {
	agg := AggregateSummaries(nil)

	assert.Nil(t, agg.AvgReadinessScore)
	assert.Nil(t, agg.ComplianceRate)
}

func TestCompliance(t *testing.T) {
	assert.Nil(t, Compliance(0, 0))
	assert.Equal(t, 66.67, *Compliance(2, 3))
	assert.Equal(t, 100.0, *Compliance(3, 3))
}

func TestRebuildRequest_Validate(t *testing.T) {
	ok := RebuildRequest{StartDate: "2024-01-01", EndDate: "2024-01-31"}
	assert.NoError(t, ok.Validate())

	tooLong := RebuildRequest{StartDate: "2024-01-01", EndDate: "2024-12-31"}
	assert.Error(t, tooLong.Validate())

	reversed := RebuildRequest{StartDate: "2024-01-31", EndDate: "2024-01-01"}
	assert.Error(t, reversed.Validate())
}
