package anomaly

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/monitoring"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
)

const DefaultBaselineDays = 7

type SuddenChangeDetectorImpl struct {
	checkin.CheckInRepository
	clock        *timezone.Resolver
	baselineDays int
}

func NewSuddenChangeDetector(repo checkin.CheckInRepository, clock *timezone.Resolver, baselineDays int) monitoring.SuddenChangeDetector {
	if baselineDays <= 0 {
		baselineDays = DefaultBaselineDays
	}
	return &SuddenChangeDetectorImpl{
		CheckInRepository: repo,
		clock:             clock,
		baselineDays:      baselineDays,
	}
}

// Detect implements monitoring.SuddenChangeDetector. The baseline is every
// check-in of the baselineDays calendar days before today. Every member whose
// score fell below their baseline is returned; callers pick the drop size.
func (d *SuddenChangeDetectorImpl) Detect(ctx context.Context, members []team.Member, tz string, minBaseline int) ([]monitoring.SuddenChange, error) {
	if len(members) == 0 {
		return []monitoring.SuddenChange{}, nil
	}
	if minBaseline < 1 {
		minBaseline = 1
	}

	today := d.clock.Today(tz)
	todayStart, todayEnd := d.clock.DateRange(tz, today)
	baselineStart, _ := d.clock.DateRange(tz, today.AddDate(0, 0, -d.baselineDays))

	checkIns, err := d.CheckInRepository.List(ctx, query.Where(
		query.In{Field: checkin.FieldUserID, Values: team.MemberIDs(members)},
		query.Between{Field: checkin.FieldCreatedAt, From: baselineStart, To: todayEnd},
	).OrderBy(checkin.FieldCreatedAt, false))
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}

	var todays []checkin.CheckIn
	baseline := make(map[string][]int)
	for _, c := range checkIns {
		if c.CreatedAt.Before(todayStart) {
			baseline[c.UserID] = append(baseline[c.UserID], c.ReadinessScore)
			continue
		}
		todays = append(todays, c)
	}
	todays = checkin.FirstPerUser(todays)

	byID := make(map[string]team.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	changes := make([]monitoring.SuddenChange, 0)
	// Newest check-in first, so ties keep recency order after the stable sort
	for i := len(todays) - 1; i >= 0; i-- {
		c := todays[i]
		samples := baseline[c.UserID]
		if len(samples) < minBaseline {
			continue
		}

		avg := mean(samples)
		change := round2(float64(c.ReadinessScore) - avg)
		if change >= 0 {
			continue
		}

		m := byID[c.UserID]
		changes = append(changes, monitoring.SuddenChange{
			UserID:          c.UserID,
			FullName:        m.FullName,
			Email:           m.Email,
			CheckInID:       c.ID,
			CheckedInAt:     c.CreatedAt,
			TodayScore:      c.ReadinessScore,
			TodayStatus:     string(c.ReadinessStatus),
			BaselineAvg:     round2(avg),
			BaselineSamples: len(samples),
			Change:          change,
			Severity:        monitoring.SeverityForChange(change),
		})
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Severity.Rank() < changes[j].Severity.Rank()
	})
	return changes, nil
}

func mean(values []int) float64 {
	var sum int
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
