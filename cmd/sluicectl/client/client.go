// Package client provides the HTTP client sluicectl uses to talk to a sluice
// proxy.
//
// The SluiceAPIClient wraps resty with sluice-specific behaviour: the
// /api/v1 base path, JSON headers, retries on connection failures only, and
// debug logging of every request. Response types are the proxy's own
// handler types, so the CLI and the daemon cannot drift apart.
//
// Non-2xx responses become *APIError. Kind maps them to short names
// ("queue_full", "backend_failure") for summaries such as the simulate
// report.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/concave-dev/sluice/cmd/sluicectl/config"
	"github.com/concave-dev/sluice/internal/api/handlers"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/netutil"
	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx answer from the proxy.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
}

// errorBody is the proxy's error response shape.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// SluiceAPIClient talks to the sluice proxy REST API.
type SluiceAPIClient struct {
	client  *resty.Client
	baseURL string
}

// NewSluiceAPIClient creates a client for the proxy at apiAddr (host:port)
// with a per-request timeout in seconds.
func NewSluiceAPIClient(apiAddr string, timeout int) *SluiceAPIClient {
	client := resty.New()

	baseURL := fmt.Sprintf("http://%s/api/v1", apiAddr)

	client.SetLogger(logging.RestyLogger{})

	client.
		SetTimeout(time.Duration(timeout)*time.Second).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("sluicectl/%s", config.Version))

	// Only retry on connection errors, not HTTP errors: a 429 is the
	// proxy's backpressure and is reported to the user as is
	client.
		SetRetryCount(2).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		})

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Making API request: %s %s", req.Method, req.URL)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("API response: %d %s (took %v)",
			resp.StatusCode(), resp.Status(), resp.Time())
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("API request failed: %s %s - %v", req.Method, req.URL, err)
	})

	return &SluiceAPIClient{
		client:  client,
		baseURL: baseURL,
	}
}

// CreateAPIClient creates a client from the global CLI flags.
func CreateAPIClient() *SluiceAPIClient {
	return NewSluiceAPIClient(config.Global.APIAddr, config.Global.Timeout)
}

// BaseURL returns the API base URL including the /api/v1 prefix.
func (api *SluiceAPIClient) BaseURL() string {
	return api.baseURL
}

// Classify sends one sequence and returns its label.
func (api *SluiceAPIClient) Classify(ctx context.Context, text string) (string, error) {
	var result handlers.ClassifyResponse
	var failure errorBody

	resp, err := api.client.R().
		SetContext(ctx).
		SetBody(handlers.ClassifyRequest{Sequence: &text}).
		SetResult(&result).
		SetError(&failure).
		Post("/classify")
	if err != nil {
		return "", api.connectError(err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", apiError(resp, failure)
	}
	return result.Result, nil
}

// GetStats returns the proxy's scheduler statistics and configuration.
func (api *SluiceAPIClient) GetStats() (*handlers.StatsResponse, error) {
	var result handlers.StatsResponse
	var failure errorBody

	resp, err := api.client.R().
		SetResult(&result).
		SetError(&failure).
		Get("/stats")
	if err != nil {
		return nil, api.connectError(err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, apiError(resp, failure)
	}
	return &result, nil
}

// GetHealth returns the proxy's health report.
func (api *SluiceAPIClient) GetHealth() (*handlers.HealthResponse, error) {
	var result handlers.HealthResponse

	resp, err := api.client.R().
		SetResult(&result).
		Get("/health")
	if err != nil {
		return nil, api.connectError(err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, apiError(resp, errorBody{})
	}
	return &result, nil
}

// GetReady returns the proxy's readiness. A full queue is reported in the
// response, not as an error.
func (api *SluiceAPIClient) GetReady() (*handlers.ReadyResponse, error) {
	var result handlers.ReadyResponse

	resp, err := api.client.R().
		SetResult(&result).
		SetError(&result).
		Get("/ready")
	if err != nil {
		return nil, api.connectError(err)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusServiceUnavailable:
		return &result, nil
	default:
		return nil, apiError(resp, errorBody{})
	}
}

// connectError wraps a transport failure, pointing at the daemon when
// nothing is listening.
func (api *SluiceAPIClient) connectError(err error) error {
	if netutil.IsConnectionRefusedError(err) {
		return fmt.Errorf("no sluice proxy listening at %s (is sluiced running?): %w", api.baseURL, err)
	}
	return fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
}

func apiError(resp *resty.Response, body errorBody) *APIError {
	msg := body.Details
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = resp.String()
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: msg}
}

// Kind names the failure class of err for summaries. It returns "" for
// errors that did not come from this client.
func Kind(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return "queue_full"
		case http.StatusBadGateway:
			return "backend_failure"
		case http.StatusServiceUnavailable:
			return "unavailable"
		case http.StatusGatewayTimeout:
			return "timeout"
		default:
			return fmt.Sprintf("http_%d", apiErr.StatusCode)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return ""
}
