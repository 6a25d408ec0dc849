package simulate

import (
	"context"
	"errors"
	"math"
	"slices"
	"time"

	"github.com/concave-dev/sluice/internal/backend"
	"github.com/concave-dev/sluice/internal/scheduler"
)

// Result is the outcome of one simulated request.
type Result struct {
	Client  string
	Length  int
	Label   string
	Err     error
	Latency time.Duration
}

// ClientReport summarises one client's requests.
type ClientReport struct {
	Name      string         `json:"name"`
	Requests  int            `json:"requests"`
	Successes int            `json:"successes"`
	Failures  int            `json:"failures"`
	Elapsed   time.Duration  `json:"elapsed"`
	P50       time.Duration  `json:"p50"`
	P95       time.Duration  `json:"p95"`
	Max       time.Duration  `json:"max"`
	Labels    map[string]int `json:"labels,omitempty"`
	Errors    map[string]int `json:"errors,omitempty"`
}

// Report summarises a whole run.
type Report struct {
	Clients   []ClientReport `json:"clients"`
	Requests  int            `json:"requests"`
	Successes int            `json:"successes"`
	Failures  int            `json:"failures"`
	Elapsed   time.Duration  `json:"elapsed"`
}

// ErrorClassifier names the kind of a failed request for reporting, for
// example "queue_full". It returns "" for errors it does not recognise.
type ErrorClassifier func(error) string

func summarise(name string, results []Result, elapsed time.Duration, classify ErrorClassifier) ClientReport {
	rep := ClientReport{
		Name:     name,
		Requests: len(results),
		Elapsed:  elapsed,
		Labels:   make(map[string]int),
		Errors:   make(map[string]int),
	}

	var latencies []time.Duration
	for _, r := range results {
		if r.Err != nil {
			rep.Failures++
			rep.Errors[errorKind(r.Err, classify)]++
			continue
		}
		rep.Successes++
		rep.Labels[r.Label]++
		latencies = append(latencies, r.Latency)
	}

	slices.Sort(latencies)
	rep.P50 = percentile(latencies, 0.50)
	rep.P95 = percentile(latencies, 0.95)
	if n := len(latencies); n > 0 {
		rep.Max = latencies[n-1]
	}
	return rep
}

// percentile uses the nearest-rank method on sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p * float64(len(sorted))))
	rank = min(max(rank, 1), len(sorted))
	return sorted[rank-1]
}

func errorKind(err error, classify ErrorClassifier) string {
	if classify != nil {
		if kind := classify(err); kind != "" {
			return kind
		}
	}
	switch {
	case errors.Is(err, scheduler.ErrQueueFull):
		return "queue_full"
	case errors.Is(err, scheduler.ErrBackendFailure):
		return "backend_failure"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, backend.ErrBusy):
		return "busy"
	case errors.Is(err, backend.ErrMalformedResponse):
		return "malformed"
	default:
		return "error"
	}
}
