package monitoring

import "time"

type Severity string

const (
	SeverityCritical    Severity = "CRITICAL"
	SeveritySignificant Severity = "SIGNIFICANT"
	SeverityNotable     Severity = "NOTABLE"
	SeverityMinor       Severity = "MINOR"
)

var Severities = []string{
	string(SeverityCritical),
	string(SeveritySignificant),
	string(SeverityNotable),
	string(SeverityMinor),
}

// Rank orders severities, most severe first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeveritySignificant:
		return 1
	case SeverityNotable:
		return 2
	default:
		return 3
	}
}

// SeverityForChange tiers a score change against the baseline mean.
func SeverityForChange(change float64) Severity {
	switch {
	case change <= -30:
		return SeverityCritical
	case change <= -20:
		return SeveritySignificant
	case change <= -10:
		return SeverityNotable
	default:
		return SeverityMinor
	}
}

// DefaultMinDrop is the smallest drop below baseline reported as a sudden change.
const DefaultMinDrop = 10

// SuddenChange is a member whose score today fell sharply below their own
// trailing baseline.
type SuddenChange struct {
	UserID          string
	FullName        string
	Email           string
	CheckInID       string
	CheckedInAt     time.Time
	TodayScore      int
	TodayStatus     string
	BaselineAvg     float64
	BaselineSamples int
	Change          float64
	Severity        Severity
}

// DroppedAtLeast keeps the changes at least minDrop points below baseline,
// preserving order.
func DroppedAtLeast(changes []SuddenChange, minDrop float64) []SuddenChange {
	out := make([]SuddenChange, 0, len(changes))
	for _, c := range changes {
		if c.Change <= -minDrop {
			out = append(out, c)
		}
	}
	return out
}

// SeverityCounts is the distribution of a whole team's sudden changes.
type SeverityCounts struct {
	Critical    int `json:"critical"`
	Significant int `json:"significant"`
	Notable     int `json:"notable"`
	Minor       int `json:"minor"`
	Total       int `json:"total"`
}

func CountSeverities(changes []SuddenChange) SeverityCounts {
	var c SeverityCounts
	for _, s := range changes {
		switch s.Severity {
		case SeverityCritical:
			c.Critical++
		case SeveritySignificant:
			c.Significant++
		case SeverityNotable:
			c.Notable++
		default:
			c.Minor++
		}
		c.Total++
	}
	return c
}
