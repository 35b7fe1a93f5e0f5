package summary

import (
	"strconv"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/validator"
)

const (
	DefaultHistoryDays = 7
	MaxHistoryDays     = 366
	MaxRebuildDays     = 93
)

type HistoryRequest struct {
	TeamID string
	Days   string

	// Parsed
	DayCount int
}

func (r *HistoryRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.TeamID != "" && !validator.IsValidUUID(r.TeamID) {
		errs = append(errs, validator.ValidationError{
			Field:   "teamId",
			Message: "teamId must be a valid UUID",
		})
	}

	r.DayCount = DefaultHistoryDays
	if r.Days != "" {
		n, err := strconv.Atoi(r.Days)
		if err != nil || !validator.IsInRange(n, 1, MaxHistoryDays) {
			errs = append(errs, validator.ValidationError{
				Field:   "days",
				Message: "days must be a number between 1 and " + strconv.Itoa(MaxHistoryDays),
			})
		} else {
			r.DayCount = n
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RebuildRequest struct {
	TeamID    string `json:"team_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	// Parsed
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *RebuildRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.TeamID != "" && !validator.IsValidUUID(r.TeamID) {
		errs = append(errs, validator.ValidationError{
			Field:   "team_id",
			Message: "team_id must be a valid UUID",
		})
	}

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if okStart && okEnd {
		switch {
		case end.Before(start):
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		case len(timezone.Days(start, end)) > MaxRebuildDays:
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "range must not exceed " + strconv.Itoa(MaxRebuildDays) + " days",
			})
		}
	}
	r.Start, r.End = start, end

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SummaryResponse struct {
	TeamID            string   `json:"team_id"`
	Date              string   `json:"date"`
	TotalMembers      int      `json:"total_members"`
	OnLeaveCount      int      `json:"on_leave_count"`
	ExpectedToCheckIn int      `json:"expected_to_check_in"`
	CheckedInCount    int      `json:"checked_in_count"`
	NotCheckedInCount int      `json:"not_checked_in_count"`
	GreenCount        int      `json:"green_count"`
	YellowCount       int      `json:"yellow_count"`
	RedCount          int      `json:"red_count"`
	AvgReadinessScore *float64 `json:"avg_readiness_score"`
	ComplianceRate    *float64 `json:"compliance_rate"`
	IsWorkDay         bool     `json:"is_work_day"`
	IsHoliday         bool     `json:"is_holiday"`
}

type AggregateResponse struct {
	Days              int      `json:"days"`
	WorkDays          int      `json:"work_days"`
	HolidayDays       int      `json:"holiday_days"`
	OnLeaveCount      int      `json:"on_leave_count"`
	ExpectedToCheckIn int      `json:"expected_to_check_in"`
	CheckedInCount    int      `json:"checked_in_count"`
	NotCheckedInCount int      `json:"not_checked_in_count"`
	GreenCount        int      `json:"green_count"`
	YellowCount       int      `json:"yellow_count"`
	RedCount          int      `json:"red_count"`
	AvgReadinessScore *float64 `json:"avg_readiness_score"`
	ComplianceRate    *float64 `json:"compliance_rate"`
}

type HistoryResponse struct {
	TeamID    string            `json:"team_id"`
	TeamName  string            `json:"team_name"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Summaries []SummaryResponse `json:"summaries"`
	Aggregate AggregateResponse `json:"aggregate"`
}

type RebuildResponse struct {
	TeamID    string            `json:"team_id"`
	Summaries []SummaryResponse `json:"summaries"`
}

func ToResponse(s DailyTeamSummary) SummaryResponse {
	return SummaryResponse{
		TeamID:            s.TeamID,
		Date:              s.Date.Format(timezone.DateLayout),
		TotalMembers:      s.TotalMembers,
		OnLeaveCount:      s.OnLeaveCount,
		ExpectedToCheckIn: s.ExpectedToCheckIn,
		CheckedInCount:    s.CheckedInCount,
		NotCheckedInCount: s.NotCheckedInCount,
		GreenCount:        s.GreenCount,
		YellowCount:       s.YellowCount,
		RedCount:          s.RedCount,
		AvgReadinessScore: s.AvgReadinessScore,
		ComplianceRate:    s.ComplianceRate,
		IsWorkDay:         s.IsWorkDay,
		IsHoliday:         s.IsHoliday,
	}
}

func ToResponses(summaries []DailyTeamSummary) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, ToResponse(s))
	}
	return out
}

func ToAggregateResponse(a Aggregate) AggregateResponse {
	return AggregateResponse{
		Days:              a.Days,
		WorkDays:          a.WorkDays,
		HolidayDays:       a.HolidayDays,
		OnLeaveCount:      a.OnLeaveCount,
		ExpectedToCheckIn: a.ExpectedToCheckIn,
		CheckedInCount:    a.CheckedInCount,
		NotCheckedInCount: a.NotCheckedInCount,
		GreenCount:        a.GreenCount,
		YellowCount:       a.YellowCount,
		RedCount:          a.RedCount,
		AvgReadinessScore: a.AvgReadinessScore,
		ComplianceRate:    a.ComplianceRate,
	}
}
