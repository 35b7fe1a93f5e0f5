package checkin

import (
	"math"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
)

type ReadinessStatus string

const (
	StatusGreen  ReadinessStatus = "GREEN"
	StatusYellow ReadinessStatus = "YELLOW"
	StatusRed    ReadinessStatus = "RED"
)

// Valid reports whether s is a known readiness status.
func (s ReadinessStatus) Valid() bool {
	return s == StatusGreen || s == StatusYellow || s == StatusRed
}

const (
	MinSubScore = 1
	MaxSubScore = 10

	greenThreshold  = 70
	yellowThreshold = 50
)

// CheckIn is a worker's daily self-assessment. Sub-scores are 1..10; stress is
// inverted when deriving the readiness score.
type CheckIn struct {
	ID              string
	UserID          string
	CompanyID       string
	Mood            int
	Stress          int
	Sleep           int
	PhysicalHealth  int
	ReadinessScore  int
	ReadinessStatus ReadinessStatus
	Notes           *string
	CreatedAt       time.Time

	// Join
	UserName  *string
	UserEmail *string
}

// ComputeReadiness derives the 0..100 readiness score and its status band.
func ComputeReadiness(mood, stress, sleep, physicalHealth int) (int, ReadinessStatus) {
	span := float64(MaxSubScore - MinSubScore)
	points := float64(mood-MinSubScore) +
		float64(MaxSubScore-stress) +
		float64(sleep-MinSubScore) +
		float64(physicalHealth-MinSubScore)
	score := int(math.Round(points / (4 * span) * 100))
	return score, StatusForScore(score)
}

// StatusForScore buckets a readiness score.
func StatusForScore(score int) ReadinessStatus {
	switch {
	case score >= greenThreshold:
		return StatusGreen
	case score >= yellowThreshold:
		return StatusYellow
	default:
		return StatusRed
	}
}

// Filterable fields understood by CheckInRepository.
const (
	FieldID        query.Field = "id"
	FieldUserID    query.Field = "user_id"
	FieldCompanyID query.Field = "company_id"
	FieldCreatedAt query.Field = "created_at"
	FieldStatus    query.Field = "readiness_status"
	FieldScore     query.Field = "readiness_score"
	FieldUserName  query.Field = "user_name"
	FieldUserEmail query.Field = "user_email"
)

// FirstPerUser keeps the earliest check-in of each user. The input must be
// ordered by created_at ascending.
func FirstPerUser(checkIns []CheckIn) []CheckIn {
	seen := make(map[string]struct{}, len(checkIns))
	out := make([]CheckIn, 0, len(checkIns))
	for _, c := range checkIns {
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		out = append(out, c)
	}
	return out
}
