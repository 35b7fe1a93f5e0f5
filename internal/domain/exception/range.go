package exception

import "time"

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Union returns the smallest range containing both r and o.
func (r DateRange) Union(o DateRange) DateRange {
	out := r
	if o.Start.Before(out.Start) {
		out.Start = o.Start
	}
	if o.End.After(out.End) {
		out.End = o.End
	}
	return out
}

// Transition names an exception state change that may move leave coverage.
type Transition string

const (
	TransitionCreate          Transition = "create"
	TransitionCreateExemption Transition = "create_exemption"
	TransitionApprove         Transition = "approve"
	TransitionReject          Transition = "reject"
	TransitionUpdate          Transition = "update"
	TransitionEndEarly        Transition = "end_early"
	TransitionCancel          Transition = "cancel"
)

// AffectedRange returns the calendar dates whose team summaries must be
// recomputed after the transition from before to after. before is nil for
// creations and after is nil for cancellations. ok is false when no date
// changed coverage.
func AffectedRange(t Transition, before, after *Exception) (DateRange, bool) {
	switch t {
	case TransitionCreate, TransitionCreateExemption, TransitionApprove:
		if after == nil || !after.CountsAsLeave() {
			return DateRange{}, false
		}
		return after.Range(), true

	case TransitionReject:
		return DateRange{}, false

	case TransitionUpdate:
		var (
			r  DateRange
			ok bool
		)
		if before != nil && before.CountsAsLeave() {
			r, ok = before.Range(), true
		}
		if after != nil && after.CountsAsLeave() {
			if ok {
				r = r.Union(after.Range())
			} else {
				r, ok = after.Range(), true
			}
		}
		return r, ok

	case TransitionEndEarly:
		if before == nil || after == nil || !before.CountsAsLeave() {
			return DateRange{}, false
		}
		if !after.EndDate.Before(before.EndDate) {
			return DateRange{}, false
		}
		return DateRange{Start: after.EndDate.AddDate(0, 0, 1), End: before.EndDate}, true

	case TransitionCancel:
		if before == nil || !before.CountsAsLeave() {
			return DateRange{}, false
		}
		return before.Range(), true
	}

	return DateRange{}, false
}
