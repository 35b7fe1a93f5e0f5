package exception

import (
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

type Type string

const (
	TypeSickLeave     Type = "SICK_LEAVE"
	TypeAnnualLeave   Type = "ANNUAL_LEAVE"
	TypePersonalLeave Type = "PERSONAL_LEAVE"
	TypeFatigue       Type = "FATIGUE"
	TypeOther         Type = "OTHER"
)

var Types = []string{
	string(TypeSickLeave),
	string(TypeAnnualLeave),
	string(TypePersonalLeave),
	string(TypeFatigue),
	string(TypeOther),
}

// Exception is a requested or approved absence. StartDate and EndDate are
// inclusive calendar dates.
type Exception struct {
	ID                   string
	UserID               string
	CompanyID            string
	Type                 Type
	Reason               *string
	Status               Status
	StartDate            time.Time
	EndDate              time.Time
	IsExemption          bool
	TriggeredByCheckinID *string
	ReviewedBy           *string
	ReviewedAt           *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Join
	UserName  *string
	UserEmail *string
}

// CountsAsLeave reports whether the exception takes its holder out of the
// expected check-in population.
func (e Exception) CountsAsLeave() bool {
	return e.Status == StatusApproved && e.IsExemption
}

// Covers reports whether e counts as leave on the calendar date.
func (e Exception) Covers(date time.Time) bool {
	return e.CountsAsLeave() && !date.Before(e.StartDate) && !date.After(e.EndDate)
}

// Range returns the inclusive date span of e.
func (e Exception) Range() DateRange {
	return DateRange{Start: e.StartDate, End: e.EndDate}
}

// Filterable fields understood by ExceptionRepository.
const (
	FieldID          query.Field = "id"
	FieldUserID      query.Field = "user_id"
	FieldCompanyID   query.Field = "company_id"
	FieldStatus      query.Field = "status"
	FieldIsExemption query.Field = "is_exemption"
	FieldStartDate   query.Field = "start_date"
	FieldEndDate     query.Field = "end_date"
	FieldCreatedAt   query.Field = "created_at"
	FieldUserName    query.Field = "user_name"
	FieldUserEmail   query.Field = "user_email"
)

// ActiveOn matches approved exemptions that contain date.
func ActiveOn(date time.Time) query.All {
	return query.All{Preds: []query.Predicate{
		query.Eq{Field: FieldStatus, Value: string(StatusApproved)},
		query.Eq{Field: FieldIsExemption, Value: true},
		query.OnOrBefore{Field: FieldStartDate, Value: date},
		query.OnOrAfter{Field: FieldEndDate, Value: date},
	}}
}

// CoveringDate selects approved exemptions of the given users that contain date.
func CoveringDate(userIDs []string, date time.Time) query.Spec {
	return query.Where(
		query.In{Field: FieldUserID, Values: userIDs},
		ActiveOn(date),
	)
}
