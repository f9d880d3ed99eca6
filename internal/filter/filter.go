// Package filter implements the search, filter and sort controls of the
// results view over a claim set.
package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/claimaudit/internal/model"
)

// ErrInvalidQuery is returned for unknown sort fields or orders
var ErrInvalidQuery = errors.New("invalid query")

// SortField names a claim field the results can be ordered by
type SortField string

const (
	SortTrustScore  SortField = "trustScore"
	SortCategory    SortField = "category"
	SortConsistency SortField = "consistency"
	SortText        SortField = "text"
	SortPageNumber  SortField = "pageNumber"
)

// Order is the sort direction
type Order string

const (
	Desc Order = "desc"
	Asc  Order = "asc"
)

// Query selects and orders claims. Zero values mean "all" and the
// default ordering (trust score, descending).
type Query struct {
	Search      string
	Category    model.Category
	Consistency model.Consistency
	SortBy      SortField
	Order       Order
}

// Validate checks the query's labels against their enumerations
func (q Query) Validate() error {
	if q.Category != model.AnyCategory && !q.Category.Valid() {
		return fmt.Errorf("%w: category %q", ErrInvalidQuery, q.Category)
	}
	if q.Consistency != "" && !q.Consistency.Valid() {
		return fmt.Errorf("%w: consistency %q", ErrInvalidQuery, q.Consistency)
	}
	switch q.SortBy {
	case "", SortTrustScore, SortCategory, SortConsistency, SortText, SortPageNumber:
	default:
		return fmt.Errorf("%w: sort field %q", ErrInvalidQuery, q.SortBy)
	}
	switch q.Order {
	case "", Asc, Desc:
	default:
		return fmt.Errorf("%w: order %q", ErrInvalidQuery, q.Order)
	}
	return nil
}

// Matches reports whether a single claim passes the query's filters
func (q Query) Matches(c model.Claim) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(c.Text), strings.ToLower(q.Search)) {
		return false
	}
	if q.Category != model.AnyCategory && c.Category != q.Category {
		return false
	}
	if q.Consistency != "" && c.Consistency != q.Consistency {
		return false
	}
	return true
}

// Apply returns the matching claims in query order as a new slice.
// The input is left untouched. Ties keep their original relative order.
func (q Query) Apply(claims []model.Claim) []model.Claim {
	out := make([]model.Claim, 0, len(claims))
	for _, c := range claims {
		if q.Matches(c) {
			out = append(out, c)
		}
	}

	less := lessFunc(q.SortBy)
	desc := q.Order != Asc
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(field SortField) func(a, b model.Claim) bool {
	switch field {
	case SortCategory:
		return func(a, b model.Claim) bool { return lowerLess(string(a.Category), string(b.Category)) }
	case SortConsistency:
		return func(a, b model.Claim) bool { return lowerLess(string(a.Consistency), string(b.Consistency)) }
	case SortText:
		return func(a, b model.Claim) bool { return lowerLess(a.Text, b.Text) }
	case SortPageNumber:
		return func(a, b model.Claim) bool { return a.PageNumber < b.PageNumber }
	default:
		return func(a, b model.Claim) bool { return a.TrustScore < b.TrustScore }
	}
}

func lowerLess(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}
