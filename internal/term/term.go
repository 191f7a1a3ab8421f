// Package term defines search terms and the parser that turns raw user
// input into them.
//
// A [Term] is either a text term or a numeric range. Terms are immutable
// values and compare with ==. The constructors never return a term in an
// invalid configuration; invalid input yields an error instead.
package term

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/Iron-Ham/pulse/internal/errors"
)

// Kind identifies which case of a Term is populated.
type Kind int

const (
	// KindText is a single free-text term.
	KindText Kind = iota + 1
	// KindRange is a numeric range with at least one bound.
	KindRange
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindRange:
		return "range"
	default:
		return "invalid"
	}
}

// Bound is an optional range endpoint.
type Bound struct {
	Value float64
	Set   bool
}

// At returns a set bound.
func At(v float64) Bound {
	return Bound{Value: v, Set: true}
}

// Unset is the absent bound.
var Unset = Bound{}

// String formats the bound, or "*" when unset.
func (b Bound) String() string {
	if !b.Set {
		return "*"
	}
	return strconv.FormatFloat(b.Value, 'g', -1, 64)
}

// Term is a validated search term. The zero value is not a valid term.
type Term struct {
	kind Kind
	text string
	lo   Bound
	hi   Bound
}

// NewText creates a text term. The value is NFC-normalised and must not be empty.
func NewText(value string) (Term, error) {
	value = norm.NFC.String(value)
	if value == "" {
		return Term{}, errors.NewValidationError("text term cannot be empty").WithField("text")
	}
	return Term{kind: KindText, text: value}, nil
}

// NewRange creates a range term. At least one bound must be set, set bounds
// must be finite, and lo must not exceed hi.
func NewRange(lo, hi Bound) (Term, error) {
	if !lo.Set && !hi.Set {
		return Term{}, errors.NewValidationError("range needs at least one bound").WithField("range")
	}
	for _, b := range []Bound{lo, hi} {
		if b.Set && (math.IsNaN(b.Value) || math.IsInf(b.Value, 0)) {
			return Term{}, errors.NewValidationError("range bound must be finite").WithField("range").WithValue(b.Value)
		}
	}
	if lo.Set && hi.Set && lo.Value > hi.Value {
		return Term{}, errors.NewValidationError("range minimum exceeds maximum").
			WithField("range").
			WithValue(fmt.Sprintf("%s-%s", lo, hi))
	}
	return Term{kind: KindRange, lo: lo, hi: hi}, nil
}

// Kind reports which case is populated.
func (t Term) Kind() Kind { return t.kind }

// IsZero reports whether t is the zero (invalid) term.
func (t Term) IsZero() bool { return t.kind == 0 }

// Text returns the text value and true for text terms.
func (t Term) Text() (string, bool) {
	return t.text, t.kind == KindText
}

// Range returns the bounds and true for range terms.
func (t Term) Range() (lo, hi Bound, ok bool) {
	return t.lo, t.hi, t.kind == KindRange
}

// Contains reports whether v lies within a range term. Text terms contain nothing.
func (t Term) Contains(v float64) bool {
	if t.kind != KindRange {
		return false
	}
	if t.lo.Set && v < t.lo.Value {
		return false
	}
	if t.hi.Set && v > t.hi.Value {
		return false
	}
	return true
}

// Equal reports value equality.
func (t Term) Equal(other Term) bool {
	return t == other
}

// String renders the term for display. Ranges print as "lo-hi"; an unset
// minimum prints as "*" and a range without maximum prints its minimum alone.
func (t Term) String() string {
	switch t.kind {
	case KindText:
		return t.text
	case KindRange:
		if !t.hi.Set {
			return t.lo.String()
		}
		return t.lo.String() + "-" + t.hi.String()
	default:
		return "<invalid>"
	}
}
