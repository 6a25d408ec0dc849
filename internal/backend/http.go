package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/concave-dev/sluice/internal/logging"
	"github.com/go-resty/resty/v2"
)

// ClassifyRequest is the wire format of a batch sent to the classification server.
type ClassifyRequest struct {
	Sequences []string `json:"sequences"`
}

// ClassifyResponse is the classification server's reply; Results[i] labels
// Sequences[i].
type ClassifyResponse struct {
	Results []string `json:"results"`
}

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	BaseURL string // Classification server base URL, e.g. http://127.0.0.1:8001

	// Timeout bounds a single HTTP attempt. The caller's context bounds the
	// whole call including retries.
	Timeout time.Duration

	// BusyRetries is how many times a 429 is retried before ErrBusy is
	// returned. The scheduler never overlaps batches, so a 429 means some
	// other client is using the server.
	BusyRetries   int
	BusyRetryWait time.Duration
	BusyRetryMax  time.Duration

	UserAgent string
}

// DefaultHTTPConfig returns settings suitable for a local classification server.
func DefaultHTTPConfig(baseURL string) HTTPConfig {
	return HTTPConfig{
		BaseURL:       baseURL,
		Timeout:       30 * time.Second,
		BusyRetries:   3,
		BusyRetryWait: 50 * time.Millisecond,
		BusyRetryMax:  500 * time.Millisecond,
		UserAgent:     "sluiced",
	}
}

// HTTPClient is a Classifier backed by a remote classification server
// speaking POST /classify {"sequences": [...]} -> {"results": [...]}.
type HTTPClient struct {
	client  *resty.Client
	baseURL string
}

// NewHTTPClient creates a resty-based classifier for the server at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	client := resty.New()
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	client.SetLogger(logging.RestyLogger{})

	client.
		SetTimeout(cfg.Timeout).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)

	// Retry only when the server reports it is busy; any other failure
	// fails the batch.
	client.
		SetRetryCount(cfg.BusyRetries).
		SetRetryWaitTime(cfg.BusyRetryWait).
		SetRetryMaxWaitTime(cfg.BusyRetryMax).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r != nil && r.StatusCode() == http.StatusTooManyRequests
		})

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Sending batch to classification server: %s %s", req.Method, req.URL)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("Classification server response: %d (took %v)", resp.StatusCode(), resp.Time())
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("Classification request failed: %s %s - %v", req.Method, req.URL, err)
	})

	return &HTTPClient{
		client:  client,
		baseURL: baseURL,
	}
}

// Classify posts texts to the classification server and returns its labels.
func (h *HTTPClient) Classify(ctx context.Context, texts []string) ([]string, error) {
	var result ClassifyResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(ClassifyRequest{Sequences: texts}).
		SetResult(&result).
		Post("/classify")

	if err != nil {
		return nil, fmt.Errorf("failed to reach classification server at %s: %w", h.baseURL, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: server at %s still busy after retries", ErrBusy, h.baseURL)
	default:
		return nil, fmt.Errorf("classification server returned status %d: %s", resp.StatusCode(), resp.String())
	}

	if len(result.Results) != len(texts) {
		return nil, fmt.Errorf("%w: got %d results for %d sequences",
			ErrMalformedResponse, len(result.Results), len(texts))
	}

	return result.Results, nil
}

// BaseURL returns the classification server URL this client targets.
func (h *HTTPClient) BaseURL() string {
	return h.baseURL
}
