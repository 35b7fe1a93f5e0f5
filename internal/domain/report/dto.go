package report

import (
	"fmt"
	"strconv"

	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/validator"
)

// ========================================
// WORKER HEALTH REPORT
// ========================================

const (
	DefaultPeriodDays = 30
	MaxPeriodDays     = 365
)

type WorkerHealthReportRequest struct {
	UserID string
	Days   string

	// Parsed
	PeriodDays int
}

func (r *WorkerHealthReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "member id must be a valid UUID",
		})
	}

	if r.PeriodDays == 0 {
		r.PeriodDays = DefaultPeriodDays
	}
	if r.Days != "" {
		n, err := strconv.Atoi(r.Days)
		if err != nil || !validator.IsInRange(n, 1, MaxPeriodDays) {
			errs = append(errs, validator.ValidationError{
				Field:   "days",
				Message: fmt.Sprintf("days must be between 1 and %d", MaxPeriodDays),
			})
		} else {
			r.PeriodDays = n
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WorkerHealthReport struct {
	Worker         WorkerInfo      `json:"worker"`
	Period         Period          `json:"period"`
	Baseline       *Baseline       `json:"baseline"`
	MonthlyHistory []MonthlyBucket `json:"monthly_history"`
	GeneratedAt    string          `json:"generated_at"`
}

type WorkerInfo struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
}

type Period struct {
	Days int    `json:"days"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Baseline summarizes the check-ins of the trailing period. It is absent when
// the worker has no check-ins in the period.
type Baseline struct {
	CheckInCount      int     `json:"checkin_count"`
	AvgScore          float64 `json:"avg_score"`
	AvgMood           float64 `json:"avg_mood"`
	AvgStress         float64 `json:"avg_stress"`
	AvgSleep          float64 `json:"avg_sleep"`
	AvgPhysicalHealth float64 `json:"avg_physical_health"`
	MinScore          int     `json:"min_score"`
	MaxScore          int     `json:"max_score"`
	GreenCount        int     `json:"green_count"`
	YellowCount       int     `json:"yellow_count"`
	RedCount          int     `json:"red_count"`
}

// MonthlyBucket groups check-ins by company-local year and month.
type MonthlyBucket struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Label        string  `json:"label"`
	CheckInCount int     `json:"checkin_count"`
	AvgScore     float64 `json:"avg_score"`
}
