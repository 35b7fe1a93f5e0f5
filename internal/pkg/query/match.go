package query

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Record exposes the fields of an in-memory value. It returns nil for fields
// the value does not have.
type Record func(Field) any

// Matches reports whether r satisfies every predicate of s.
func (s Spec) Matches(r Record) bool {
	return Match(All{Preds: s.Where}, r)
}

// Match evaluates p against r with the same semantics repositories apply in SQL.
func Match(p Predicate, r Record) bool {
	switch p := p.(type) {
	case Eq:
		return equal(r(p.Field), p.Value)

	case In:
		v := fmt.Sprint(r(p.Field))
		for _, want := range p.Values {
			if v == want {
				return true
			}
		}
		return false

	case Between:
		t, ok := r(p.Field).(time.Time)
		return ok && !t.Before(p.From) && t.Before(p.To)

	case OnOrBefore:
		t, ok := r(p.Field).(time.Time)
		return ok && !t.After(p.Value)

	case OnOrAfter:
		t, ok := r(p.Field).(time.Time)
		return ok && !t.Before(p.Value)

	case Search:
		term := strings.ToLower(strings.TrimSpace(p.Term))
		if term == "" || len(p.Fields) == 0 {
			return true
		}
		for _, f := range p.Fields {
			if s, ok := r(f).(string); ok && strings.Contains(strings.ToLower(s), term) {
				return true
			}
		}
		return false

	case All:
		for _, sub := range p.Preds {
			if !Match(sub, r) {
				return false
			}
		}
		return true

	case Any:
		for _, sub := range p.Preds {
			if Match(sub, r) {
				return true
			}
		}
		return false
	}
	return false
}

func equal(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// Apply filters, sorts and pages items in memory using rec to read fields.
func Apply[T any](items []T, s Spec, rec func(T) Record) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if s.Matches(rec(it)) {
			out = append(out, it)
		}
	}

	if len(s.Order) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			ri, rj := rec(out[i]), rec(out[j])
			for _, o := range s.Order {
				c := compare(ri(o.Field), rj(o.Field))
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if s.Offset > 0 {
		if s.Offset >= len(out) {
			return out[:0]
		}
		out = out[s.Offset:]
	}
	if s.Limit > 0 && s.Limit < len(out) {
		out = out[:s.Limit]
	}
	return out
}

func compare(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Compare(bv)
	case int:
		bv, _ := b.(int)
		return av - bv
	case float64:
		bv, _ := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
