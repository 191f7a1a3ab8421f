package transport

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/term"
)

// Query parameters of the /search endpoint.
const (
	ParamText = "text" // text term, taken verbatim
	ParamMin  = "min"  // range lower bound
	ParamMax  = "max"  // range upper bound
	ParamRaw  = "q"    // raw user input, run through term.Parse
)

// SearchResponse is the JSON body returned by /search.
type SearchResponse struct {
	Found   bool   `json:"found"`
	Matches int    `json:"matches"`
	Term    string `json:"term"`
}

// ErrorResponse is the JSON body returned by /search on failure.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// EncodeQuery renders t as /search query parameters. Range bounds are sent
// separately so that every range, including one with only a maximum,
// survives the round trip.
func EncodeQuery(t term.Term) url.Values {
	v := url.Values{}
	if text, ok := t.Text(); ok {
		v.Set(ParamText, text)
		return v
	}
	if lo, hi, ok := t.Range(); ok {
		if lo.Set {
			v.Set(ParamMin, strconv.FormatFloat(lo.Value, 'g', -1, 64))
		}
		if hi.Set {
			v.Set(ParamMax, strconv.FormatFloat(hi.Value, 'g', -1, 64))
		}
	}
	return v
}

// DecodeQuery rebuilds a term from /search query parameters. A raw "q"
// parameter is parsed like user input and may yield a *term.Rejection.
func DecodeQuery(v url.Values) (term.Term, error) {
	if v.Has(ParamRaw) {
		return term.Parse(v.Get(ParamRaw))
	}
	if v.Has(ParamText) {
		return term.NewText(v.Get(ParamText))
	}

	lo, err := decodeBound(v, ParamMin)
	if err != nil {
		return term.Term{}, err
	}
	hi, err := decodeBound(v, ParamMax)
	if err != nil {
		return term.Term{}, err
	}
	return term.NewRange(lo, hi)
}

func decodeBound(v url.Values, key string) (term.Bound, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return term.Unset, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return term.Unset, errors.NewValidationError("bound is not a number").
			WithField(key).
			WithValue(s)
	}
	return term.At(f), nil
}
