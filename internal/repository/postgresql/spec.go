package postgresql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
)

var ErrUnsupportedField = errors.New("unsupported filter field")

// columns maps the query fields a repository supports onto SQL expressions.
type columns map[query.Field]string

// specBuilder renders a query.Spec as a WHERE clause with positional args.
type specBuilder struct {
	cols columns
	args []any
}

func newSpecBuilder(cols columns, args ...any) *specBuilder {
	return &specBuilder{cols: cols, args: args}
}

func (b *specBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *specBuilder) col(f query.Field) (string, error) {
	c, ok := b.cols[f]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedField, f)
	}
	return c, nil
}

// where renders the predicates of spec joined by AND. It returns "TRUE" when
// spec has none.
func (b *specBuilder) where(spec query.Spec) (string, error) {
	return b.join(spec.Where, " AND ", "TRUE")
}

func (b *specBuilder) join(preds []query.Predicate, sep, empty string) (string, error) {
	if len(preds) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		s, err := b.predicate(p)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *specBuilder) predicate(p query.Predicate) (string, error) {
	switch p := p.(type) {
	case query.Eq:
		c, err := b.col(p.Field)
		if err != nil {
			return "", err
		}
		if p.Value == nil {
			return c + " IS NULL", nil
		}
		return c + " = " + b.arg(p.Value), nil

	case query.In:
		c, err := b.col(p.Field)
		if err != nil {
			return "", err
		}
		if len(p.Values) == 0 {
			return "FALSE", nil
		}
		return c + " = ANY(" + b.arg(p.Values) + ")", nil

	case query.Between:
		c, err := b.col(p.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s >= %s AND %s < %s)", c, b.arg(p.From), c, b.arg(p.To)), nil

	case query.OnOrBefore:
		c, err := b.col(p.Field)
		if err != nil {
			return "", err
		}
		return c + " <= " + b.arg(p.Value), nil

	case query.OnOrAfter:
		c, err := b.col(p.Field)
		if err != nil {
			return "", err
		}
		return c + " >= " + b.arg(p.Value), nil

	case query.Search:
		term := strings.TrimSpace(p.Term)
		if term == "" || len(p.Fields) == 0 {
			return "TRUE", nil
		}
		placeholder := b.arg("%" + term + "%")
		parts := make([]string, 0, len(p.Fields))
		for _, f := range p.Fields {
			c, err := b.col(f)
			if err != nil {
				return "", err
			}
			parts = append(parts, c+" ILIKE "+placeholder)
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil

	case query.All:
		return b.join(p.Preds, " AND ", "TRUE")

	case query.Any:
		return b.join(p.Preds, " OR ", "FALSE")
	}

	return "", fmt.Errorf("unsupported predicate %T", p)
}

// tail renders ORDER BY, LIMIT and OFFSET.
func (b *specBuilder) tail(spec query.Spec, defaultOrder string) (string, error) {
	var sb strings.Builder

	if len(spec.Order) > 0 {
		parts := make([]string, 0, len(spec.Order))
		for _, o := range spec.Order {
			c, err := b.col(o.Field)
			if err != nil {
				return "", err
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts = append(parts, c+" "+dir)
		}
		sb.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	} else if defaultOrder != "" {
		sb.WriteString(" ORDER BY " + defaultOrder)
	}

	if spec.Limit > 0 {
		sb.WriteString(" LIMIT " + b.arg(spec.Limit))
	}
	if spec.Offset > 0 {
		sb.WriteString(" OFFSET " + b.arg(spec.Offset))
	}
	return sb.String(), nil
}
