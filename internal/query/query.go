// Package query turns request parameters into filter, sort, and
// grouping specifications over todo records. Everything in this
// package is a pure function of its inputs; stores translate the
// resulting specifications into their native query form.
package query

import (
	"net/url"
	"regexp"
	"sort"

	"github.com/spetr/todoquery/pkg/types"
)

// Field names recognized by filters and sorts. These match the field
// names in the persisted record layout.
const (
	FieldOwner    = "owner"
	FieldStatus   = "status"
	FieldBody     = "body"
	FieldCategory = "category"
)

// Recognized values for the status parameter.
const (
	StatusComplete   = "complete"
	StatusIncomplete = "incomplete"
)

// DefaultSortField is used when no (or an unrecognized) sortby
// parameter is supplied.
const DefaultSortField = FieldCategory

// Filter is a conjunction of the predicates present in a listing
// request. A nil field contributes no predicate; the zero Filter
// matches every record.
type Filter struct {
	Owner    *string // case-insensitive exact match
	Category *string // case-insensitive exact match
	Status   *bool   // exact boolean match
	Body     *string // case-insensitive substring match
}

// Sort is a (field, direction) pair controlling result ordering.
type Sort struct {
	Field      string
	Descending bool
}

// ParseList builds the filter and sort for a listing request from its
// query parameters. All parameters are optional; absence means no
// predicate. The only rejected input is a status value other than
// "complete" or "incomplete"; that fails before any store access.
func ParseList(params url.Values) (Filter, Sort, error) {
	var f Filter

	if params.Has(FieldOwner) {
		v := params.Get(FieldOwner)
		f.Owner = &v
	}
	if params.Has(FieldCategory) {
		v := params.Get(FieldCategory)
		f.Category = &v
	}
	if params.Has(FieldStatus) {
		switch params.Get(FieldStatus) {
		case StatusComplete:
			v := true
			f.Status = &v
		case StatusIncomplete:
			v := false
			f.Status = &v
		default:
			return Filter{}, Sort{}, &types.ValidationError{
				Param:   FieldStatus,
				Message: "The status filter must be either 'complete' or 'incomplete'",
			}
		}
	}
	if key, ok := containsParam(params); ok {
		v := params.Get(key)
		f.Body = &v
	}

	return f, parseSort(params), nil
}

// containsParam locates the body-substring parameter. The public name
// is "contains"; "body" is accepted as an alias for symmetry with the
// other field filters.
func containsParam(params url.Values) (string, bool) {
	if params.Has("contains") {
		return "contains", true
	}
	if params.Has(FieldBody) {
		return FieldBody, true
	}
	return "", false
}

func parseSort(params url.Values) Sort {
	field := params.Get("sortby")
	switch field {
	case FieldOwner, FieldStatus, FieldBody, FieldCategory:
	default:
		field = DefaultSortField
	}
	// Only the literal "desc" selects descending order.
	return Sort{Field: field, Descending: params.Get("sortorder") == "desc"}
}

// LiteralPattern returns a regular expression pattern that matches
// text equal to literal, with special pattern characters escaped so
// the literal is never interpreted as a pattern. Case-insensitivity is
// applied by the consumer (the "i" regex option).
func LiteralPattern(literal string) string {
	return "^" + regexp.QuoteMeta(literal) + "$"
}

// SubstringPattern is LiteralPattern without anchors: it matches text
// containing literal anywhere.
func SubstringPattern(literal string) string {
	return regexp.QuoteMeta(literal)
}

// Matches reports whether the todo satisfies every predicate present
// in the filter. It evaluates the same escaped, case-insensitive
// patterns the production store builds, so both store implementations
// share one set of match semantics.
func (f Filter) Matches(t types.Todo) bool {
	if f.Owner != nil && !matchPattern(LiteralPattern(*f.Owner), t.Owner) {
		return false
	}
	if f.Category != nil && !matchPattern(LiteralPattern(*f.Category), t.Category) {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Body != nil && !matchPattern(SubstringPattern(*f.Body), t.Body) {
		return false
	}
	return true
}

func matchPattern(pattern, value string) bool {
	// The pattern is always a quoted literal, so compilation cannot
	// fail; an anchored "(?i)" prefix gives the case-insensitive
	// semantics the stores request via regex options.
	re := regexp.MustCompile("(?i)" + pattern)
	return re.MatchString(value)
}

// Apply sorts todos by the sort specification. Records that compare
// equal on the sort field are ordered by id so repeated queries return
// identical sequences.
func (s Sort) Apply(todos []types.Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		a, b := todos[i], todos[j]
		av, bv := sortKey(a, s.Field), sortKey(b, s.Field)
		if av != bv {
			if s.Descending {
				return av > bv
			}
			return av < bv
		}
		if s.Descending {
			return a.ID.Hex() > b.ID.Hex()
		}
		return a.ID.Hex() < b.ID.Hex()
	})
}

func sortKey(t types.Todo, field string) string {
	switch field {
	case FieldOwner:
		return t.Owner
	case FieldStatus:
		// false sorts before true, matching the store's boolean order.
		if t.Status {
			return "1"
		}
		return "0"
	case FieldBody:
		return t.Body
	default:
		return t.Category
	}
}
