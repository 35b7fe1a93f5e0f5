package checkin

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/validator"
)

type SubmitCheckInRequest struct {
	Mood           int     `json:"mood"`
	Stress         int     `json:"stress"`
	Sleep          int     `json:"sleep"`
	PhysicalHealth int     `json:"physical_health"`
	Notes          *string `json:"notes,omitempty"`
}

func (r *SubmitCheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	scores := []struct {
		field string
		value int
	}{
		{"mood", r.Mood},
		{"stress", r.Stress},
		{"sleep", r.Sleep},
		{"physical_health", r.PhysicalHealth},
	}
	for _, s := range scores {
		if !validator.IsInRange(s.value, MinSubScore, MaxSubScore) {
			errs = append(errs, validator.ValidationError{
				Field:   s.field,
				Message: fmt.Sprintf("%s must be between %d and %d", s.field, MinSubScore, MaxSubScore),
			})
		}
	}

	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckInResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name,omitempty"`
	UserEmail       string    `json:"user_email,omitempty"`
	Mood            int       `json:"mood"`
	Stress          int       `json:"stress"`
	Sleep           int       `json:"sleep"`
	PhysicalHealth  int       `json:"physical_health"`
	ReadinessScore  int       `json:"readiness_score"`
	ReadinessStatus string    `json:"readiness_status"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToResponse maps a stored check-in to its JSON shape.
func ToResponse(c CheckIn) CheckInResponse {
	resp := CheckInResponse{
		ID:              c.ID,
		UserID:          c.UserID,
		Mood:            c.Mood,
		Stress:          c.Stress,
		Sleep:           c.Sleep,
		PhysicalHealth:  c.PhysicalHealth,
		ReadinessScore:  c.ReadinessScore,
		ReadinessStatus: string(c.ReadinessStatus),
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt,
	}
	if c.UserName != nil {
		resp.UserName = *c.UserName
	}
	if c.UserEmail != nil {
		resp.UserEmail = *c.UserEmail
	}
	return resp
}
