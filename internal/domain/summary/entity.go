package summary

import (
	"math"
	"time"
)

// DailyTeamSummary is the materialized per-team, per-day readiness aggregate.
// It is keyed by (TeamID, Date) and only ever written by the recalculation
// engine. Date is a company-local calendar date.
type DailyTeamSummary struct {
	ID                string
	TeamID            string
	CompanyID         string
	Date              time.Time
	TotalMembers      int
	OnLeaveCount      int
	ExpectedToCheckIn int
	CheckedInCount    int
	NotCheckedInCount int
	GreenCount        int
	YellowCount       int
	RedCount          int
	AvgReadinessScore *float64
	ComplianceRate    *float64
	IsWorkDay         bool
	IsHoliday         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StatusTotal is the number of check-ins that contributed to the average.
func (s DailyTeamSummary) StatusTotal() int {
	return s.GreenCount + s.YellowCount + s.RedCount
}

// Aggregate folds several daily summaries into period totals.
type Aggregate struct {
	Days              int
	WorkDays          int
	HolidayDays       int
	OnLeaveCount      int
	ExpectedToCheckIn int
	CheckedInCount    int
	NotCheckedInCount int
	GreenCount        int
	YellowCount       int
	RedCount          int
	AvgReadinessScore *float64
	ComplianceRate    *float64
}

// AggregateSummaries sums counts and re-derives the period average as a mean
// weighted by each day's check-in count, skipping days without an average.
// Compliance is recomputed from the summed counts and is nil when nobody was
// expected over the period.
func AggregateSummaries(summaries []DailyTeamSummary) Aggregate {
	var (
		agg         Aggregate
		scoreSum    float64
		scoreWeight int
	)
	for _, s := range summaries {
		agg.Days++
		if s.IsWorkDay {
			agg.WorkDays++
		}
		if s.IsHoliday {
			agg.HolidayDays++
		}
		agg.OnLeaveCount += s.OnLeaveCount
		agg.ExpectedToCheckIn += s.ExpectedToCheckIn
		agg.CheckedInCount += s.CheckedInCount
		agg.NotCheckedInCount += s.NotCheckedInCount
		agg.GreenCount += s.GreenCount
		agg.YellowCount += s.YellowCount
		agg.RedCount += s.RedCount

		if s.AvgReadinessScore != nil && s.StatusTotal() > 0 {
			scoreSum += *s.AvgReadinessScore * float64(s.StatusTotal())
			scoreWeight += s.StatusTotal()
		}
	}

	if scoreWeight > 0 {
		agg.AvgReadinessScore = Round2(scoreSum / float64(scoreWeight))
	}
	agg.ComplianceRate = Compliance(agg.CheckedInCount, agg.ExpectedToCheckIn)
	return agg
}

// Compliance returns checkedIn/expected as a percentage, or nil when expected is zero.
func Compliance(checkedIn, expected int) *float64 {
	if expected <= 0 {
		return nil
	}
	return Round2(float64(checkedIn) / float64(expected) * 100)
}

// Round2 rounds v to two decimals.
func Round2(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}
