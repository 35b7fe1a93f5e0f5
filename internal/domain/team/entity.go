package team

import (
	"strconv"
	"strings"
	"time"
)

// DefaultWorkDays is Monday to Friday in ISO weekday numbers.
const DefaultWorkDays = "1,2,3,4,5"

type Team struct {
	ID         string
	CompanyID  string
	Name       string
	LeaderID   *string
	WorkDays   string // comma-separated ISO weekdays, 1 = Monday ... 7 = Sunday
	ShiftStart string // HH:MM
	ShiftEnd   string // HH:MM
	IsActive   bool

	// Join
	CompanyTimezone string
}

// Member is an active team member as seen by the monitoring views.
type Member struct {
	ID       string
	FullName string
	Email    string
}

// IsWorkDay reports whether the calendar date falls on one of the team's work days.
func (t Team) IsWorkDay(date time.Time) bool {
	wd := date.Weekday()
	for _, d := range ParseWorkDays(t.WorkDays) {
		if d == wd {
			return true
		}
	}
	return false
}

// ParseWorkDays parses a comma-separated list of ISO weekday numbers. Unknown
// entries are skipped; an empty list yields Monday to Friday.
func ParseWorkDays(s string) []time.Weekday {
	if strings.TrimSpace(s) == "" {
		s = DefaultWorkDays
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > 7 {
			continue
		}
		days = append(days, time.Weekday(n%7))
	}
	return days
}

// MemberIDs returns the ids of members in order.
func MemberIDs(members []Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}
