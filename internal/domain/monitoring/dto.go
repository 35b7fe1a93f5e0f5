package monitoring

import (
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/exception"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/validator"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// Exemption list states
	ExemptionPending = "PENDING"
	ExemptionActive  = "ACTIVE"
)

type MonitoringFilter struct {
	// Search & Filter
	TeamID   *string `json:"team_id,omitempty"`
	Search   *string `json:"search,omitempty"`
	Status   *string `json:"status,omitempty"`
	Severity *string `json:"severity,omitempty"`
	MinDrop  *int    `json:"min_drop,omitempty"`
	Days     *int    `json:"days,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *MonitoringFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.TeamID != nil && !validator.IsValidUUID(*f.TeamID) {
		errs = append(errs, validator.ValidationError{
			Field:   "teamId",
			Message: "teamId must be a valid UUID",
		})
	}

	if f.Severity != nil && !validator.IsInSlice(*f.Severity, Severities) {
		errs = append(errs, validator.ValidationError{
			Field:   "severity",
			Message: "severity must be one of CRITICAL, SIGNIFICANT, NOTABLE, MINOR",
		})
	}

	if f.MinDrop != nil && !validator.IsInRange(*f.MinDrop, 1, 100) {
		errs = append(errs, validator.ValidationError{
			Field:   "minDrop",
			Message: "minDrop must be between 1 and 100",
		})
	}

	if f.Days != nil && !validator.IsInRange(*f.Days, 1, 365) {
		errs = append(errs, validator.ValidationError{
			Field:   "days",
			Message: "days must be between 1 and 365",
		})
	}

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = DefaultPage
	}

	if f.Limit < 0 || f.Limit > MaxLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("limit must be between 1 and %d", MaxLimit),
		})
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ValidateStatus checks the status filter against the values an endpoint accepts.
func (f *MonitoringFilter) ValidateStatus(allowed ...string) error {
	if f.Status == nil || validator.IsInSlice(*f.Status, allowed) {
		return nil
	}
	return validator.ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("status must be one of %v", allowed),
	}}
}

// Offset returns the zero-based index of the first item of the page.
func (f MonitoringFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type TeamInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
	Date     string `json:"date"`
}

// Pagination is the list metadata of every paged endpoint. Handlers send it
// as the envelope meta, so it is not part of the list body.
type Pagination struct {
	TotalCount int64  `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
	Showing    string `json:"showing"`
}

func NewPagination(total int64, page, limit, shown int) Pagination {
	p := Pagination{TotalCount: total, Page: page, Limit: limit}
	if limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	if shown == 0 {
		p.Showing = fmt.Sprintf("0 of %d", total)
		return p
	}
	from := (page-1)*limit + 1
	p.Showing = fmt.Sprintf("%d-%d of %d", from, from+shown-1, total)
	return p
}

type StatsResponse struct {
	Team       TeamInfo                  `json:"team"`
	Today      summary.SummaryResponse   `json:"today"`
	Source     string                    `json:"source"` // store or computed
	Last7Days  summary.AggregateResponse `json:"last_7_days"`
	Last30Days summary.AggregateResponse `json:"last_30_days"`
}

type ListCheckInsResponse struct {
	Pagination `json:"-"`
	Team     TeamInfo                  `json:"team"`
	CheckIns []checkin.CheckInResponse `json:"checkins"`
}

type NotCheckedInMember struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type ListNotCheckedInResponse struct {
	Pagination `json:"-"`
	Team    TeamInfo             `json:"team"`
	Members []NotCheckedInMember `json:"members"`
}

type SuddenChangeResponse struct {
	UserID          string    `json:"user_id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	CheckInID       string    `json:"checkin_id"`
	CheckedInAt     time.Time `json:"checked_in_at"`
	TodayScore      int       `json:"today_score"`
	TodayStatus     string    `json:"today_status"`
	BaselineAvg     float64   `json:"baseline_avg"`
	BaselineSamples int       `json:"baseline_samples"`
	Change          float64   `json:"change"`
	Severity        string    `json:"severity"`
}

type ListSuddenChangesResponse struct {
	Pagination `json:"-"`
	Team          TeamInfo               `json:"team"`
	Counts        SeverityCounts         `json:"counts"`
	SuddenChanges []SuddenChangeResponse `json:"sudden_changes"`
}

type ListExemptionsResponse struct {
	Pagination `json:"-"`
	Team       TeamInfo                      `json:"team"`
	Exemptions []exception.ExceptionResponse `json:"exemptions"`
}

type OverviewResponse struct {
	Team              TeamInfo                      `json:"team"`
	Stats             summary.SummaryResponse       `json:"stats"`
	CheckIns          []checkin.CheckInResponse     `json:"checkins"`
	NotCheckedIn      []NotCheckedInMember          `json:"not_checked_in"`
	SuddenChanges     []SuddenChangeResponse        `json:"sudden_changes"`
	SuddenCounts      SeverityCounts                `json:"sudden_change_counts"`
	PendingExemptions []exception.ExceptionResponse `json:"pending_exemptions"`
	ActiveExemptions  []exception.ExceptionResponse `json:"active_exemptions"`
}

func ToSuddenChangeResponse(s SuddenChange) SuddenChangeResponse {
	return SuddenChangeResponse{
		UserID:          s.UserID,
		FullName:        s.FullName,
		Email:           s.Email,
		CheckInID:       s.CheckInID,
		CheckedInAt:     s.CheckedInAt,
		TodayScore:      s.TodayScore,
		TodayStatus:     s.TodayStatus,
		BaselineAvg:     s.BaselineAvg,
		BaselineSamples: s.BaselineSamples,
		Change:          s.Change,
		Severity:        string(s.Severity),
	}
}
