package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
)

type CheckInServiceImpl struct {
	tx database.Transactor
	checkin.CheckInRepository
	company.CompanyRepository
	team.TeamRepository
	trigger summary.Trigger
	clock   *timezone.Resolver
}

func NewCheckInService(
	tx database.Transactor,
	checkInRepo checkin.CheckInRepository,
	companyRepo company.CompanyRepository,
	teamRepo team.TeamRepository,
	trigger summary.Trigger,
	clock *timezone.Resolver,
) checkin.CheckInService {
	return &CheckInServiceImpl{
		tx:                tx,
		CheckInRepository: checkInRepo,
		CompanyRepository: companyRepo,
		TeamRepository:    teamRepo,
		trigger:           trigger,
		clock:             clock,
	}
}

// Submit implements checkin.CheckInService.
func (s *CheckInServiceImpl) Submit(ctx context.Context, actor user.Actor, req checkin.SubmitCheckInRequest) (checkin.CheckInResponse, error) {
	if err := req.Validate(); err != nil {
		return checkin.CheckInResponse{}, err
	}

	c, err := s.CompanyRepository.GetByID(ctx, actor.CompanyID)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound) {
			return checkin.CheckInResponse{}, company.ErrCompanyNotFound
		}
		return checkin.CheckInResponse{}, fmt.Errorf("failed to get company: %w", err)
	}

	now := s.clock.Now()
	dayStart, dayEnd := s.clock.DayRange(c.Timezone, now)
	score, status := checkin.ComputeReadiness(req.Mood, req.Stress, req.Sleep, req.PhysicalHealth)

	var created checkin.CheckIn
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// Concurrent submits for the same local day wait here until the first commits
		if err := s.CheckInRepository.LockUserDay(txCtx, actor.UserID, s.clock.LocalDate(c.Timezone, now)); err != nil {
			return err
		}

		existing, err := s.CheckInRepository.Count(txCtx, query.Where(
			query.Eq{Field: checkin.FieldUserID, Value: actor.UserID},
			query.Between{Field: checkin.FieldCreatedAt, From: dayStart, To: dayEnd},
		))
		if err != nil {
			return fmt.Errorf("failed to check today's check-in: %w", err)
		}
		if existing > 0 {
			return checkin.ErrAlreadyCheckedIn
		}

		created, err = s.CheckInRepository.Create(txCtx, checkin.CheckIn{
			UserID:          actor.UserID,
			CompanyID:       actor.CompanyID,
			Mood:            req.Mood,
			Stress:          req.Stress,
			Sleep:           req.Sleep,
			PhysicalHealth:  req.PhysicalHealth,
			ReadinessScore:  score,
			ReadinessStatus: status,
			Notes:           req.Notes,
			CreatedAt:       now,
		})
		if err != nil {
			return fmt.Errorf("failed to create check-in: %w", err)
		}
		return nil
	})
	if err != nil {
		return checkin.CheckInResponse{}, err
	}

	s.fire(ctx, actor, c.Timezone, now)
	return checkin.ToResponse(created), nil
}

// fire recalculates the member's team for the check-in's local day. Users
// outside any team have no summary to refresh.
func (s *CheckInServiceImpl) fire(ctx context.Context, actor user.Actor, tz string, at time.Time) {
	t, err := s.TeamRepository.GetByMember(ctx, actor.UserID, actor.CompanyID)
	if err != nil {
		if !errors.Is(err, team.ErrNoTeamAssigned) {
			slog.Error("Failed to resolve check-in team", "user_id", actor.UserID, "action", "checkin", "error", err)
		}
		return
	}

	date := s.clock.LocalDate(tz, at)
	s.trigger.Fire(ctx, summary.RecalculationRequest{
		TeamID:    t.ID,
		CompanyID: t.CompanyID,
		Timezone:  tz,
		StartDate: date,
		EndDate:   date,
		Action:    "checkin",
	})
}
