package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/logging"
	"github.com/Iron-Ham/pulse/internal/search"
	"github.com/Iron-Ham/pulse/internal/term"
)

var _ search.Transport = (*HTTP)(nil)

const (
	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 5 * time.Second

	// maxResponseSize caps the body read from the search endpoint.
	maxResponseSize = 1 << 20

	userAgent = "pulse/1.0"

	// RequestIDHeader carries the invocation request ID.
	RequestIDHeader = "X-Request-Id"
)

// HTTPError is returned for non-200 responses.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, e.Message)
}

// HTTP queries a remote index over GET {endpoint}/search.
type HTTP struct {
	endpoint *url.URL
	client   *http.Client
	logger   *logging.Logger
}

// NewHTTP creates an HTTP transport for endpoint. A zero timeout uses
// DefaultTimeout.
func NewHTTP(endpoint string, timeout time.Duration, logger *logging.Logger) (*HTTP, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.NewValidationError("endpoint must be an absolute http(s) URL").
			WithField("search.endpoint").
			WithValue(endpoint)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTP{
		endpoint: u,
		client:   &http.Client{Timeout: timeout},
		logger:   logging.OrNop(logger).WithComponent("transport.http"),
	}, nil
}

// Invoke implements search.Transport.
func (h *HTTP) Invoke(ctx context.Context, t term.Term) (bool, error) {
	u := *h.endpoint
	u.Path += "/search"
	u.RawQuery = EncodeQuery(t).Encode()
	target := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if id := search.RequestID(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		var e ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return false, &HTTPError{StatusCode: resp.StatusCode, URL: target, Message: msg}
	}

	var out SearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return false, fmt.Errorf("failed to decode search response: %w", err)
	}

	h.logger.Debug("search response",
		"term", t.String(),
		"found", out.Found,
		"matches", out.Matches,
		"request_id", search.RequestID(ctx),
	)
	return out.Found, nil
}
