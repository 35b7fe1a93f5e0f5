package exception

import (
	"testing"

	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
	"github.com/stretchr/testify/assert"
)

func approved(startDay, endDay int) *Exception {
	return &Exception{
		Status:      StatusApproved,
		IsExemption: true,
		StartDate:   timezone.Date(2024, 1, startDay),
		EndDate:     timezone.Date(2024, 1, endDay),
	}
}

func withStatus(e *Exception, s Status) *Exception {
	c := *e
	c.Status = s
	return &c
}

func jan(from, to int) DateRange {
	return DateRange{Start: timezone.Date(2024, 1, from), End: timezone.Date(2024, 1, to)}
}

func TestAffectedRange(t *testing.T) {
	cases := []struct {
		name   string
		t      Transition
		before *Exception
		after  *Exception
		want   DateRange
		wantOK bool
	}{
		{"approve", TransitionApprove, withStatus(approved(5, 10), StatusPending), approved(5, 10), jan(5, 10), true},
		{"reject", TransitionReject, withStatus(approved(5, 10), StatusPending), withStatus(approved(5, 10), StatusRejected), DateRange{}, false},
		{"create pending request", TransitionCreate, nil, withStatus(approved(5, 10), StatusPending), DateRange{}, false},
		{"create exemption", TransitionCreateExemption, nil, approved(5, 10), jan(5, 10), true},
		{"shrink while approved", TransitionUpdate, approved(5, 10), approved(5, 8), jan(5, 10), true},
		{"move while approved", TransitionUpdate, approved(5, 10), approved(12, 14), jan(5, 14), true},
		{"update pending", TransitionUpdate, withStatus(approved(5, 10), StatusPending), withStatus(approved(6, 9), StatusPending), DateRange{}, false},
		{"end early", TransitionEndEarly, approved(5, 10), approved(5, 7), jan(8, 10), true},
		{"end early without shortening", TransitionEndEarly, approved(5, 10), approved(5, 10), DateRange{}, false},
		{"cancel approved", TransitionCancel, approved(5, 10), nil, jan(5, 10), true},
		{"cancel pending", TransitionCancel, withStatus(approved(5, 10), StatusPending), nil, DateRange{}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := AffectedRange(c.t, c.before, c.after)
			assert.Equal(t, c.wantOK, ok)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestAffectedRange_IgnoresNonExemptions(t *testing.T) {
	e := approved(5, 10)
	e.IsExemption = false

	_, ok := AffectedRange(TransitionApprove, nil, e)

	assert.False(t, ok)
}

func TestException_Covers(t *testing.T) {
	e := approved(5, 10)

	assert.False(t, e.Covers(timezone.Date(2024, 1, 4)))
	assert.True(t, e.Covers(timezone.Date(2024, 1, 5)))
	assert.True(t, e.Covers(timezone.Date(2024, 1, 10)))
	assert.False(t, e.Covers(timezone.Date(2024, 1, 11)))
	assert.False(t, withStatus(e, StatusPending).Covers(timezone.Date(2024, 1, 6)))
}

func TestCreateExceptionRequest_Validate(t *testing.T) {
	req := CreateExceptionRequest{Type: "SICK_LEAVE", StartDate: "2024-01-05", EndDate: "2024-01-10"}
	assert.NoError(t, req.Validate())
	assert.Equal(t, timezone.Date(2024, 1, 5), req.Start)

	reversed := CreateExceptionRequest{Type: "SICK_LEAVE", StartDate: "2024-01-10", EndDate: "2024-01-05"}
	assert.Error(t, reversed.Validate())

	badType := CreateExceptionRequest{Type: "VACATION", StartDate: "2024-01-05", EndDate: "2024-01-05"}
	assert.Error(t, badType.Validate())
}
