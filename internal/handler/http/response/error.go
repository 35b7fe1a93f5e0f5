package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/exception"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Team domain errors
	case errors.Is(err, team.ErrNoTeamAssigned):
		ErrorWithCode(w, http.StatusBadRequest, "NO_TEAM_ASSIGNED", "No team assigned")
	case errors.Is(err, team.ErrTeamNotFound):
		ErrorWithCode(w, http.StatusNotFound, "TEAM_NOT_FOUND", "Team not found")
	case errors.Is(err, team.ErrForbiddenTeam):
		ErrorWithCode(w, http.StatusForbidden, "FORBIDDEN_TEAM", "You do not have access to this team")
	case errors.Is(err, team.ErrMemberNotFound):
		ErrorWithCode(w, http.StatusNotFound, "MEMBER_NOT_FOUND", "Team member not found")

	// User and company errors
	case errors.Is(err, user.ErrCompanyIDRequired):
		Forbidden(w, "No company associated with this user")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, report.ErrWorkerNotFound):
		NotFound(w, "Worker not found")

	// Exception domain errors
	case errors.Is(err, exception.ErrExceptionNotFound):
		NotFound(w, "Exception not found")
	case errors.Is(err, exception.ErrAlreadyProcessed):
		Conflict(w, "Exception already processed")
	case errors.Is(err, exception.ErrOverlapping):
		Conflict(w, err.Error())
	case errors.Is(err, exception.ErrNotApproved),
		errors.Is(err, exception.ErrInvalidEndDate),
		errors.Is(err, exception.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	// Check-in and summary errors
	case errors.Is(err, checkin.ErrAlreadyCheckedIn):
		Conflict(w, err.Error())
	case errors.Is(err, summary.ErrInvalidRange):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
