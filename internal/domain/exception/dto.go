package exception

import (
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/validator"
)

type CreateExceptionRequest struct {
	Type      string  `json:"type"`
	Reason    *string `json:"reason,omitempty"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`

	// Parsed
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *CreateExceptionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Type, Types) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type is invalid",
		})
	}

	r.Start, r.End, errs = validateDates(r.StartDate, r.EndDate, errs)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CreateExemptionRequest struct {
	UserID               string  `json:"user_id"`
	Type                 string  `json:"type"`
	Reason               *string `json:"reason,omitempty"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
	TriggeredByCheckinID *string `json:"triggered_by_checkin_id,omitempty"`

	// Parsed
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *CreateExemptionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id must be a valid UUID",
		})
	}

	if !validator.IsInSlice(r.Type, Types) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type is invalid",
		})
	}

	if r.TriggeredByCheckinID != nil && !validator.IsValidUUID(*r.TriggeredByCheckinID) {
		errs = append(errs, validator.ValidationError{
			Field:   "triggered_by_checkin_id",
			Message: "triggered_by_checkin_id must be a valid UUID",
		})
	}

	r.Start, r.End, errs = validateDates(r.StartDate, r.EndDate, errs)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateExceptionRequest edits an exception. Nil fields are left unchanged.
type UpdateExceptionRequest struct {
	Type      *string `json:"type,omitempty"`
	Reason    *string `json:"reason,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`

	// Parsed
	Start *time.Time `json:"-"`
	End   *time.Time `json:"-"`
}

func (r *UpdateExceptionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Type != nil && !validator.IsInSlice(*r.Type, Types) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type is invalid",
		})
	}

	if r.StartDate != nil {
		if d, ok := validator.IsValidDate(*r.StartDate); ok {
			r.Start = &d
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if r.EndDate != nil {
		if d, ok := validator.IsValidDate(*r.EndDate); ok {
			r.End = &d
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EndEarlyRequest struct {
	EndDate string `json:"end_date"`

	// Parsed
	End time.Time `json:"-"`
}

func (r *EndEarlyRequest) Validate() error {
	d, ok := validator.IsValidDate(r.EndDate)
	if !ok {
		return validator.ValidationErrors{{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		}}
	}
	r.End = d
	return nil
}

func validateDates(start, end string, errs validator.ValidationErrors) (time.Time, time.Time, validator.ValidationErrors) {
	s, okStart := validator.IsValidDate(start)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	e, okEnd := validator.IsValidDate(end)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if okStart && okEnd && e.Before(s) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}
	return s, e, errs
}

type ExceptionResponse struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	UserName             string     `json:"user_name,omitempty"`
	UserEmail            string     `json:"user_email,omitempty"`
	Type                 string     `json:"type"`
	Reason               *string    `json:"reason,omitempty"`
	Status               string     `json:"status"`
	StartDate            string     `json:"start_date"`
	EndDate              string     `json:"end_date"`
	IsExemption          bool       `json:"is_exemption"`
	TriggeredByCheckinID *string    `json:"triggered_by_checkin_id,omitempty"`
	ReviewedBy           *string    `json:"reviewed_by,omitempty"`
	ReviewedAt           *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func ToResponse(e Exception) ExceptionResponse {
	resp := ExceptionResponse{
		ID:                   e.ID,
		UserID:               e.UserID,
		Type:                 string(e.Type),
		Reason:               e.Reason,
		Status:               string(e.Status),
		StartDate:            e.StartDate.Format(timezone.DateLayout),
		EndDate:              e.EndDate.Format(timezone.DateLayout),
		IsExemption:          e.IsExemption,
		TriggeredByCheckinID: e.TriggeredByCheckinID,
		ReviewedBy:           e.ReviewedBy,
		ReviewedAt:           e.ReviewedAt,
		CreatedAt:            e.CreatedAt,
	}
	if e.UserName != nil {
		resp.UserName = *e.UserName
	}
	if e.UserEmail != nil {
		resp.UserEmail = *e.UserEmail
	}
	return resp
}
