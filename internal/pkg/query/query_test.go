package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type row struct {
	id     string
	name   string
	status string
	at     time.Time
}

func (r row) record() Record {
	return func(f Field) any {
		switch f {
		case "id":
			return r.id
		case "name":
			return r.name
		case "status":
			return r.status
		case "at":
			return r.at
		}
		return nil
	}
}

var base = time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)

var rows = []row{
	{"1", "Ann Lee", "GREEN", base.Add(2 * time.Hour)},
	{"2", "Bob Park", "RED", base.Add(1 * time.Hour)},
	{"3", "Annie Cho", "RED", base.Add(26 * time.Hour)},
}

func TestSpec_BuildersDoNotAlias(t *testing.T) {
	s := Where(Eq{Field: "status", Value: "RED"})
	a := s.And(Search{Fields: []Field{"name"}, Term: "ann"})
	b := s.And(Eq{Field: "id", Value: "2"})

	assert.Len(t, s.Where, 1)
	assert.IsType(t, Search{}, a.Where[1])
	assert.IsType(t, Eq{}, b.Where[1])
}

func TestSpec_PageAndUnpaged(t *testing.T) {
	s := Where().OrderBy("at", true).Page(2, 20)
	assert.Equal(t, 20, s.Limit)
	assert.Equal(t, 20, s.Offset)

	u := s.Unpaged()
	assert.Zero(t, u.Limit)
	assert.Zero(t, u.Offset)
	assert.Nil(t, u.Order)

	assert.Equal(t, 0, Where().Page(0, 10).Offset)
}

func TestApply_FilterSortPage(t *testing.T) {
	rec := func(r row) Record { return r.record() }

	day := Where(Between{Field: "at", From: base, To: base.AddDate(0, 0, 1)})
	got := Apply(rows, day.OrderBy("at", false), rec)
	assert.Equal(t, []string{"2", "1"}, ids(got))

	search := Where(Search{Fields: []Field{"name"}, Term: "ANN"})
	assert.Equal(t, []string{"1", "3"}, ids(Apply(rows, search, rec)))

	paged := Where().OrderBy("at", true).Page(2, 2)
	assert.Equal(t, []string{"2"}, ids(Apply(rows, paged, rec)))

	beyond := Where().Page(5, 2)
	assert.Empty(t, Apply(rows, beyond, rec))
}

func TestMatch_InAnyAll(t *testing.T) {
	r := rows[2].record()

	assert.True(t, Match(In{Field: "id", Values: []string{"3", "4"}}, r))
	assert.False(t, Match(In{Field: "id"}, r))
	assert.False(t, Match(Any{}, r))
	assert.True(t, Match(All{}, r))
	assert.True(t, Match(Any{Preds: []Predicate{
		Eq{Field: "status", Value: "GREEN"},
		All{Preds: []Predicate{Eq{Field: "status", Value: "RED"}, OnOrAfter{Field: "at", Value: base}}},
	}}, r))
	assert.True(t, Match(OnOrBefore{Field: "at", Value: rows[2].at}, r))
}

func ids(rs []row) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.id)
	}
	return out
}
