package errors

import (
	"errors"
	"fmt"
	"testing"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// TransportError Tests
// -----------------------------------------------------------------------------

func TestNewTransportError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewTransportError("search request failed", cause)

	if err.message != "search request failed" {
		t.Errorf("message = %q, want %q", err.message, "search request failed")
	}
	if err.cause != cause {
		t.Errorf("cause = %v, want %v", err.cause, cause)
	}
	if err.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityWarning)
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
	if err.IsUserFacing() {
		t.Error("IsUserFacing() = true, want false")
	}
}

func TestTransportError_Error(t *testing.T) {
	cause := errors.New("503")
	tests := []struct {
		name string
		err  *TransportError
		want string
	}{
		{
			name: "no context",
			err:  NewTransportError("search request failed", cause),
			want: "transport error: search request failed: 503",
		},
		{
			name: "full context",
			err:  NewTransportError("search request failed", cause).WithTerm("cats").WithAttempt(3).WithInvocation(2),
			want: "transport error [term=cats, attempt=3, invocation=2]: search request failed: 503",
		},
		{
			name: "no cause",
			err:  NewTransportError("search request failed", nil).WithAttempt(1),
			want: "transport error [attempt=1]: search request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransportError_Is(t *testing.T) {
	cause := errors.New("timeout")
	err := NewTransportError("search request failed", cause)

	if !errors.Is(err, ErrTransportFailed) {
		t.Error("errors.Is(err, ErrTransportFailed) = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if errors.Is(err, ErrSourceFailed) {
		t.Error("errors.Is(err, ErrSourceFailed) = true, want false")
	}

	var te *TransportError
	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.As(wrapped, &te) {
		t.Fatal("errors.As() failed to find TransportError")
	}
	if te != err {
		t.Error("errors.As() returned a different TransportError")
	}
}

func TestTransportError_WithRetryable(t *testing.T) {
	err := NewTransportError("bad request", nil).WithRetryable(false)
	if err.IsRetryable() {
		t.Error("IsRetryable() = true after WithRetryable(false)")
	}
}

// -----------------------------------------------------------------------------
// SourceError Tests
// -----------------------------------------------------------------------------

func TestSourceError(t *testing.T) {
	cause := ErrSourceValue
	err := NewSourceError("read counter file", cause).WithSource("views")

	want := "source error [source=views]: read counter file: counter source value is not an integer"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrSourceFailed) {
		t.Error("errors.Is(err, ErrSourceFailed) = false, want true")
	}
	if !errors.Is(err, ErrSourceValue) {
		t.Error("errors.Is(err, ErrSourceValue) = false, want true")
	}
	if got := NewSourceError("poll", nil).Error(); got != "source error: poll" {
		t.Errorf("Error() without source = %q", got)
	}
}

// -----------------------------------------------------------------------------
// ValidationError Tests
// -----------------------------------------------------------------------------

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("text term cannot be empty")

	if err.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityWarning)
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "message only",
			err:  NewValidationError("bad input"),
			want: "validation error: bad input",
		},
		{
			name: "field and value",
			err:  NewValidationError("range minimum exceeds maximum").WithField("range").WithValue("5-2"),
			want: "validation error [field=range, value=5-2]: range minimum exceeds maximum",
		},
		{
			name: "with cause",
			err:  NewValidationError("bad input").WithField("x").WithCause(errors.New("boom")),
			want: "validation error [field=x]: bad input: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Is(t *testing.T) {
	err := NewValidationError("bad input")
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("errors.Is(err, ErrInvalidInput) = false, want true")
	}
	if !errors.Is(err, &ValidationError{}) {
		t.Error("errors.Is(err, &ValidationError{}) = false, want true")
	}
	if errors.Is(err, ErrTransportFailed) {
		t.Error("errors.Is(err, ErrTransportFailed) = true, want false")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("x"), false},
		{"transport error", NewTransportError("x", nil), true},
		{"wrapped transport error", fmt.Errorf("wrap: %w", NewTransportError("x", nil)), true},
		{"wrapped sentinel", fmt.Errorf("wrap: %w", ErrTransportFailed), true},
		{"validation error", NewValidationError("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("x"), false},
		{"transport error", NewTransportError("x", nil), false},
		{"validation error", NewValidationError("x"), true},
		{"wrapped validation error", Wrap(NewValidationError("x"), "ctx"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetSeverity(t *testing.T) {
	if got := GetSeverity(nil); got != SeverityDebug {
		t.Errorf("GetSeverity(nil) = %v, want %v", got, SeverityDebug)
	}
	if got := GetSeverity(errors.New("x")); got != SeverityError {
		t.Errorf("GetSeverity(plain) = %v, want %v", got, SeverityError)
	}
	if got := GetSeverity(NewSourceError("x", nil)); got != SeverityWarning {
		t.Errorf("GetSeverity(source) = %v, want %v", got, SeverityWarning)
	}
}

// -----------------------------------------------------------------------------
// Wrap Tests
// -----------------------------------------------------------------------------

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	base := errors.New("base")
	err := Wrap(base, "failed to load corpus")
	if err.Error() != "failed to load corpus: base" {
		t.Errorf("Wrap() = %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("Wrap() should preserve the chain")
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "ctx %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	base := errors.New("base")
	err := Wrapf(base, "failed to read %s", "views.txt")
	if err.Error() != "failed to read views.txt: base" {
		t.Errorf("Wrapf() = %q", err.Error())
	}
}
