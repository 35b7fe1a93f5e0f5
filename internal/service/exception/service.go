package exception

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/exception"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
)

type ExceptionServiceImpl struct {
	tx database.Transactor
	exception.ExceptionRepository
	team.TeamRepository
	user.UserRepository
	trigger summary.Trigger
	now     func() time.Time
}

func NewExceptionService(
	tx database.Transactor,
	exceptionRepo exception.ExceptionRepository,
	teamRepo team.TeamRepository,
	userRepo user.UserRepository,
	trigger summary.Trigger,
) exception.ExceptionService {
	return &ExceptionServiceImpl{
		tx:                  tx,
		ExceptionRepository: exceptionRepo,
		TeamRepository:      teamRepo,
		UserRepository:      userRepo,
		trigger:             trigger,
		now:                 time.Now,
	}
}

// CreateRequest implements exception.ExceptionService.
func (s *ExceptionServiceImpl) CreateRequest(ctx context.Context, actor user.Actor, req exception.CreateExceptionRequest) (exception.ExceptionResponse, error) {
	if err := req.Validate(); err != nil {
		return exception.ExceptionResponse{}, err
	}

	newException := exception.Exception{
		UserID:      actor.UserID,
		CompanyID:   actor.CompanyID,
		Type:        exception.Type(req.Type),
		Reason:      req.Reason,
		Status:      exception.StatusPending,
		StartDate:   req.Start,
		EndDate:     req.End,
		IsExemption: true,
	}

	var created exception.Exception
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.checkOverlap(txCtx, newException); err != nil {
			return err
		}
		var err error
		created, err = s.ExceptionRepository.Create(txCtx, newException)
		if err != nil {
			return fmt.Errorf("failed to create exception: %w", err)
		}
		return nil
	})
	if err != nil {
		return exception.ExceptionResponse{}, err
	}

	s.fire(ctx, exception.TransitionCreate, nil, &created)
	return exception.ToResponse(created), nil
}

// CreateExemption implements exception.ExceptionService. The exemption is
// approved on creation.
func (s *ExceptionServiceImpl) CreateExemption(ctx context.Context, actor user.Actor, req exception.CreateExemptionRequest) (exception.ExceptionResponse, error) {
	if err := req.Validate(); err != nil {
		return exception.ExceptionResponse{}, err
	}

	holder, err := s.UserRepository.GetByID(ctx, req.UserID, actor.CompanyID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return exception.ExceptionResponse{}, user.ErrUserNotFound
		}
		return exception.ExceptionResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.authorizeReview(ctx, actor, holder.ID); err != nil {
		return exception.ExceptionResponse{}, err
	}

	reviewedAt := s.now()
	newException := exception.Exception{
		UserID:               holder.ID,
		CompanyID:            actor.CompanyID,
		Type:                 exception.Type(req.Type),
		Reason:               req.Reason,
		Status:               exception.StatusApproved,
		StartDate:            req.Start,
		EndDate:              req.End,
		IsExemption:          true,
		TriggeredByCheckinID: req.TriggeredByCheckinID,
		ReviewedBy:           &actor.UserID,
		ReviewedAt:           &reviewedAt,
	}

	var created exception.Exception
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.checkOverlap(txCtx, newException); err != nil {
			return err
		}
		var err error
		created, err = s.ExceptionRepository.Create(txCtx, newException)
		if err != nil {
			return fmt.Errorf("failed to create exemption: %w", err)
		}
		return nil
	})
	if err != nil {
		return exception.ExceptionResponse{}, err
	}

	s.fire(ctx, exception.TransitionCreateExemption, nil, &created)
	return exception.ToResponse(created), nil
}

// Approve implements exception.ExceptionService.
func (s *ExceptionServiceImpl) Approve(ctx context.Context, actor user.Actor, id string) (exception.ExceptionResponse, error) {
	return s.review(ctx, actor, id, exception.StatusApproved, exception.TransitionApprove)
}

// Reject implements exception.ExceptionService.
func (s *ExceptionServiceImpl) Reject(ctx context.Context, actor user.Actor, id string) (exception.ExceptionResponse, error) {
	return s.review(ctx, actor, id, exception.StatusRejected, exception.TransitionReject)
}

func (s *ExceptionServiceImpl) review(ctx context.Context, actor user.Actor, id string, status exception.Status, t exception.Transition) (exception.ExceptionResponse, error) {
	before, err := s.get(ctx, actor, id)
	if err != nil {
		return exception.ExceptionResponse{}, err
	}
	if err := s.authorizeReview(ctx, actor, before.UserID); err != nil {
		return exception.ExceptionResponse{}, err
	}
	if before.Status != exception.StatusPending {
		return exception.ExceptionResponse{}, exception.ErrAlreadyProcessed
	}

	reviewedAt := s.now()
	after := before
	after.Status = status
	after.ReviewedBy = &actor.UserID
	after.ReviewedAt = &reviewedAt

	var updated exception.Exception
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if status == exception.StatusApproved {
			if err := s.checkOverlap(txCtx, after); err != nil {
				return err
			}
		}
		var err error
		updated, err = s.ExceptionRepository.Update(txCtx, after)
		if err != nil {
			return fmt.Errorf("failed to update exception: %w", err)
		}
		return nil
	})
	if err != nil {
		return exception.ExceptionResponse{}, err
	}

	s.fire(ctx, t, &before, &updated)
	return exception.ToResponse(updated), nil
}

// Update implements exception.ExceptionService. Holders may edit their own
// pending requests; reviewers may also move the dates of approved ones.
func (s *ExceptionServiceImpl) Update(ctx context.Context, actor user.Actor, id string, req exception.UpdateExceptionRequest) (exception.ExceptionResponse, error) {
	if err := req.Validate(); err != nil {
		return exception.ExceptionResponse{}, err
	}

	before, err := s.get(ctx, actor, id)
	if err != nil {
		return exception.ExceptionResponse{}, err
	}

	switch before.Status {
	case exception.StatusPending:
		if before.UserID != actor.UserID {
			if err := s.authorizeReview(ctx, actor, before.UserID); err != nil {
				return exception.ExceptionResponse{}, err
			}
		}
	case exception.StatusApproved:
		if err := s.authorizeReview(ctx, actor, before.UserID); err != nil {
			return exception.ExceptionResponse{}, err
		}
	default:
		return exception.ExceptionResponse{}, exception.ErrAlreadyProcessed
	}

	after := before
	if req.Type != nil {
		after.Type = exception.Type(*req.Type)
	}
	if req.Reason != nil {
		after.Reason = req.Reason
	}
	if req.Start != nil {
		after.StartDate = *req.Start
	}
	if req.End != nil {
		after.EndDate = *req.End
	}
	if after.EndDate.Before(after.StartDate) {
		return exception.ExceptionResponse{}, exception.ErrInvalidDateRange
	}

	var updated exception.Exception
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.checkOverlap(txCtx, after); err != nil {
			return err
		}
		var err error
		updated, err = s.ExceptionRepository.Update(txCtx, after)
		if err != nil {
			return fmt.Errorf("failed to update exception: %w", err)
		}
		return nil
	})
	if err != nil {
		return exception.ExceptionResponse{}, err
	}

	s.fire(ctx, exception.TransitionUpdate, &before, &updated)
	return exception.ToResponse(updated), nil
}

// EndEarly implements exception.ExceptionService.
func (s *ExceptionServiceImpl) EndEarly(ctx context.Context, actor user.Actor, id string, req exception.EndEarlyRequest) (exception.ExceptionResponse, error) {
	if err := req.Validate(); err != nil {
		return exception.ExceptionResponse{}, err
	}

	before, err := s.get(ctx, actor, id)
	if err != nil {
		return exception.ExceptionResponse{}, err
	}
	if before.UserID != actor.UserID {
		if err := s.authorizeReview(ctx, actor, before.UserID); err != nil {
			return exception.ExceptionResponse{}, err
		}
	}
	if before.Status != exception.StatusApproved {
		return exception.ExceptionResponse{}, exception.ErrNotApproved
	}
	if req.End.Before(before.StartDate) || !req.End.Before(before.EndDate) {
		return exception.ExceptionResponse{}, exception.ErrInvalidEndDate
	}

	after := before
	after.EndDate = req.End

	updated, err := s.ExceptionRepository.Update(ctx, after)
	if err != nil {
		return exception.ExceptionResponse{}, fmt.Errorf("failed to end exception early: %w", err)
	}

	s.fire(ctx, exception.TransitionEndEarly, &before, &updated)
	return exception.ToResponse(updated), nil
}

// Cancel implements exception.ExceptionService.
func (s *ExceptionServiceImpl) Cancel(ctx context.Context, actor user.Actor, id string) error {
	before, err := s.get(ctx, actor, id)
	if err != nil {
		return err
	}
	if before.UserID != actor.UserID {
		if err := s.authorizeReview(ctx, actor, before.UserID); err != nil {
			return err
		}
	}

	if err := s.ExceptionRepository.Delete(ctx, before.ID, before.CompanyID); err != nil {
		if errors.Is(err, exception.ErrExceptionNotFound) {
			return exception.ErrExceptionNotFound
		}
		return fmt.Errorf("failed to delete exception: %w", err)
	}

	s.fire(ctx, exception.TransitionCancel, &before, nil)
	return nil
}

func (s *ExceptionServiceImpl) get(ctx context.Context, actor user.Actor, id string) (exception.Exception, error) {
	e, err := s.ExceptionRepository.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		if errors.Is(err, exception.ErrExceptionNotFound) {
			return exception.Exception{}, exception.ErrExceptionNotFound
		}
		return exception.Exception{}, fmt.Errorf("failed to get exception: %w", err)
	}
	return e, nil
}

// authorizeReview allows elevated roles on any holder of their company and
// team leads on members of the team they lead.
func (s *ExceptionServiceImpl) authorizeReview(ctx context.Context, actor user.Actor, holderID string) error {
	if !actor.Role.CanReview() {
		return user.ErrInsufficientPermissions
	}
	if actor.Role.IsElevated() {
		return nil
	}

	led, err := s.TeamRepository.GetByLeader(ctx, actor.UserID, actor.CompanyID)
	if err != nil {
		if errors.Is(err, team.ErrNoTeamAssigned) {
			return team.ErrForbiddenTeam
		}
		return fmt.Errorf("failed to get led team: %w", err)
	}
	holderTeam, err := s.TeamRepository.GetByMember(ctx, holderID, actor.CompanyID)
	if err != nil {
		if errors.Is(err, team.ErrNoTeamAssigned) {
			return team.ErrForbiddenTeam
		}
		return fmt.Errorf("failed to get member team: %w", err)
	}
	if led.ID != holderTeam.ID {
		return team.ErrForbiddenTeam
	}
	return nil
}

// checkOverlap rejects e when another pending or approved exception of the
// same holder shares a date with it.
func (s *ExceptionServiceImpl) checkOverlap(ctx context.Context, e exception.Exception) error {
	existing, err := s.ExceptionRepository.List(ctx, query.Where(
		query.Eq{Field: exception.FieldUserID, Value: e.UserID},
		query.Eq{Field: exception.FieldCompanyID, Value: e.CompanyID},
		query.Any{Preds: []query.Predicate{
			query.Eq{Field: exception.FieldStatus, Value: string(exception.StatusPending)},
			query.Eq{Field: exception.FieldStatus, Value: string(exception.StatusApproved)},
		}},
		query.OnOrBefore{Field: exception.FieldStartDate, Value: e.EndDate},
		query.OnOrAfter{Field: exception.FieldEndDate, Value: e.StartDate},
	))
	if err != nil {
		return fmt.Errorf("failed to check overlapping exceptions: %w", err)
	}
	for _, other := range existing {
		if other.ID != e.ID {
			return exception.ErrOverlapping
		}
	}
	return nil
}

// fire enqueues recalculation of the dates whose coverage the transition
// changed. Failures are logged; the write has already succeeded.
func (s *ExceptionServiceImpl) fire(ctx context.Context, t exception.Transition, before, after *exception.Exception) {
	r, ok := exception.AffectedRange(t, before, after)
	if !ok {
		return
	}

	holder := after
	if holder == nil {
		holder = before
	}

	holderTeam, err := s.TeamRepository.GetByMember(ctx, holder.UserID, holder.CompanyID)
	if err != nil {
		if errors.Is(err, team.ErrNoTeamAssigned) {
			slog.Debug("Exception holder has no team, skipping recalculation", "exception_id", holder.ID, "user_id", holder.UserID)
			return
		}
		slog.Error("Failed to resolve exception holder team",
			"exception_id", holder.ID,
			"user_id", holder.UserID,
			"start_date", r.Start.Format(timezone.DateLayout),
			"end_date", r.End.Format(timezone.DateLayout),
			"action", string(t),
			"error", err,
		)
		return
	}

	s.trigger.Fire(ctx, summary.RecalculationRequest{
		TeamID:    holderTeam.ID,
		CompanyID: holderTeam.CompanyID,
		Timezone:  holderTeam.CompanyTimezone,
		StartDate: r.Start,
		EndDate:   r.End,
		Action:    string(t),
	})
}
