package term

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/Iron-Ham/pulse/internal/errors"
)

// Reason classifies why raw input was rejected.
type Reason int

const (
	// ReasonEmpty means no fragments remained after splitting.
	ReasonEmpty Reason = iota + 1
	// ReasonMixed means text and numbers were combined.
	ReasonMixed
	// ReasonMultipleText means more than one text fragment was given.
	ReasonMultipleText
	// ReasonRangeOrder means the range minimum exceeds the maximum.
	ReasonRangeOrder
)

// String returns a stable identifier, used as a metric label.
func (r Reason) String() string {
	switch r {
	case ReasonEmpty:
		return "empty"
	case ReasonMixed:
		return "mixed"
	case ReasonMultipleText:
		return "multiple_text"
	case ReasonRangeOrder:
		return "range_order"
	default:
		return "unknown"
	}
}

// Rejection is returned by Parse for input that does not form a term.
// It is user-facing and never retryable.
type Rejection struct {
	Reason Reason
	Input  string
}

// Message returns the text shown to the user.
func (r *Rejection) Message() string {
	switch r.Reason {
	case ReasonEmpty:
		return "Enter a word or a number range to search."
	case ReasonMixed:
		return "Search for either a word or a number range, not both."
	case ReasonMultipleText:
		return "Only one word can be searched at a time."
	case ReasonRangeOrder:
		return "The first number of a range must not be larger than the second."
	default:
		return "Invalid search."
	}
}

// Error implements error.
func (r *Rejection) Error() string {
	return fmt.Sprintf("search term rejected [%s]: %q", r.Reason, r.Input)
}

// Is matches errors.ErrTermRejected and any other *Rejection.
func (r *Rejection) Is(target error) bool {
	if _, ok := target.(*Rejection); ok {
		return true
	}
	return target == errors.ErrTermRejected
}

// Unwrap returns nil; a rejection has no underlying cause.
func (r *Rejection) Unwrap() error { return nil }

// Severity implements errors.PulseError.
func (r *Rejection) Severity() errors.Severity { return errors.SeverityInfo }

// IsRetryable implements errors.PulseError.
func (r *Rejection) IsRetryable() bool { return false }

// IsUserFacing implements errors.PulseError.
func (r *Rejection) IsUserFacing() bool { return true }

var _ errors.PulseError = (*Rejection)(nil)

// Parse turns raw input into a Term.
//
// The input is split on ',', '-' and whitespace. A single non-numeric
// fragment becomes a text term. One or two numeric fragments become a range
// with the first as minimum and the second as maximum; further numeric
// fragments are ignored. Any other shape is rejected with a *Rejection.
// Parse never panics.
func Parse(raw string) (Term, error) {
	fragments := split(raw)
	if len(fragments) == 0 {
		return Term{}, &Rejection{Reason: ReasonEmpty, Input: raw}
	}

	var texts []string
	var numbers []float64
	for _, f := range fragments {
		if n, ok := parseNumber(f); ok {
			numbers = append(numbers, n)
		} else {
			texts = append(texts, f)
		}
	}

	if len(texts) > 0 {
		if len(numbers) > 0 {
			return Term{}, &Rejection{Reason: ReasonMixed, Input: raw}
		}
		if len(texts) > 1 {
			return Term{}, &Rejection{Reason: ReasonMultipleText, Input: raw}
		}
		t, err := NewText(texts[0])
		if err != nil {
			return Term{}, &Rejection{Reason: ReasonEmpty, Input: raw}
		}
		return t, nil
	}

	lo, hi := At(numbers[0]), Unset
	if len(numbers) > 1 {
		hi = At(numbers[1])
	}
	if hi.Set && lo.Value > hi.Value {
		return Term{}, &Rejection{Reason: ReasonRangeOrder, Input: raw}
	}
	t, err := NewRange(lo, hi)
	if err != nil {
		// Unreachable: bounds are finite and ordered at this point.
		return Term{}, &Rejection{Reason: ReasonRangeOrder, Input: raw}
	}
	return t, nil
}

func split(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '-' || unicode.IsSpace(r)
	})
}

// parseNumber accepts fragments that parse fully as a finite float.
// "NaN" and "Inf" spellings are treated as text.
func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
