// Package query holds typed filter specifications that repositories translate
// into their storage dialect. Services build a Spec per endpoint instead of
// passing ad hoc maps of conditions.
package query

import "time"

// Field names a filterable attribute of an entity. Each repository maps the
// fields it supports onto columns and rejects the rest.
type Field string

// Predicate is one condition of a Spec.
type Predicate interface {
	predicate()
}

// Eq matches Field = Value.
type Eq struct {
	Field Field
	Value any
}

// In matches Field IN Values. An empty Values list matches nothing.
type In struct {
	Field  Field
	Values []string
}

// Between matches From <= Field < To.
type Between struct {
	Field Field
	From  time.Time
	To    time.Time
}

// OnOrBefore matches Field <= Value.
type OnOrBefore struct {
	Field Field
	Value time.Time
}

// OnOrAfter matches Field >= Value.
type OnOrAfter struct {
	Field Field
	Value time.Time
}

// Search matches a case-insensitive substring of Term in any of Fields.
type Search struct {
	Fields []Field
	Term   string
}

// All matches when every predicate matches.
type All struct {
	Preds []Predicate
}

// Any matches when at least one predicate matches. An empty Any matches nothing.
type Any struct {
	Preds []Predicate
}

func (Eq) predicate()         {}
func (In) predicate()         {}
func (Between) predicate()    {}
func (OnOrBefore) predicate() {}
func (OnOrAfter) predicate()  {}
func (Search) predicate()     {}
func (All) predicate()        {}
func (Any) predicate()        {}

// Order sorts by Field.
type Order struct {
	Field Field
	Desc  bool
}

// Spec is a conjunction of predicates with optional ordering and paging.
type Spec struct {
	Where  []Predicate
	Order  []Order
	Limit  int
	Offset int
}

// Where starts a spec from the given predicates.
func Where(preds ...Predicate) Spec {
	return Spec{Where: preds}
}

// And returns a copy of s with p appended.
func (s Spec) And(p Predicate) Spec {
	where := make([]Predicate, 0, len(s.Where)+1)
	where = append(where, s.Where...)
	s.Where = append(where, p)
	return s
}

// OrderBy returns a copy of s sorted by field.
func (s Spec) OrderBy(field Field, desc bool) Spec {
	order := make([]Order, 0, len(s.Order)+1)
	order = append(order, s.Order...)
	s.Order = append(order, Order{Field: field, Desc: desc})
	return s
}

// Page returns a copy of s limited to one 1-based page.
func (s Spec) Page(page, limit int) Spec {
	if page < 1 {
		page = 1
	}
	s.Limit = limit
	s.Offset = (page - 1) * limit
	return s
}

// Unpaged returns a copy of s without limit and offset, for counting.
func (s Spec) Unpaged() Spec {
	s.Limit = 0
	s.Offset = 0
	s.Order = nil
	return s
}
