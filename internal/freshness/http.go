package freshness

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds a single state request.
const DefaultRequestTimeout = 10 * time.Second

// HTTPSource fetches the current state from the fantasy platform's state
// endpoint, which returns a JSON body like
// {"season":"2025","week":3,"season_type":"regular"}.
type HTTPSource struct {
	url    string
	client *http.Client
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient overrides the default client, primarily for tests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = client
	}
}

// WithRequestTimeout bounds each state request. Non-positive values keep
// the current timeout.
func WithRequestTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// NewHTTPSource creates a source that GETs url for the current state.
func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: DefaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentState implements Source.
func (s *HTTPSource) CurrentState(ctx context.Context) (State, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return State{}, fmt.Errorf("failed to build state request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return State{}, fmt.Errorf("state request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return State{}, fmt.Errorf("state request returned %s", resp.Status)
	}

	var body struct {
		Season string `json:"season"`
		Week   int    `json:"week"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return State{}, fmt.Errorf("failed to decode state response: %w", err)
	}
	if body.Season == "" {
		return State{}, fmt.Errorf("state response missing season")
	}

	return State{Season: body.Season, Week: body.Week}, nil
}
