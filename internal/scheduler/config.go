package scheduler

import (
	"fmt"
	"time"

	"github.com/concave-dev/sluice/internal/backend"
	"github.com/concave-dev/sluice/internal/validate"
)

// Config holds the batching and admission policy.
//
// MaxWait is the starvation bound: once the oldest pending job has waited
// this long, the next dispatch is built around the overdue jobs regardless of
// length. Linger optionally holds back a short batch of long strings in the
// hope that more long strings arrive; it must be strictly below MaxWait.
type Config struct {
	MaxBatchSize   int           `json:"max_batch_size" mapstructure:"max_batch_size"`
	MaxWait        time.Duration `json:"max_wait" mapstructure:"max_wait"`
	MaxQueueDepth  int           `json:"max_queue_depth" mapstructure:"max_queue_depth"`
	BackendTimeout time.Duration `json:"backend_timeout" mapstructure:"backend_timeout"`

	// Length similarity: jobs no longer than max(s+MinSpread, ceil(s*SimilarityRatio))
	// share a batch with the shortest pending job of length s.
	SimilarityRatio float64 `json:"similarity_ratio" mapstructure:"similarity_ratio"`
	MinSpread       int     `json:"min_spread" mapstructure:"min_spread"`

	// Linger applies only to non-full batches whose longest job has at least
	// LargeLength code points. Zero disables it.
	Linger      time.Duration `json:"linger" mapstructure:"linger"`
	LargeLength int           `json:"large_length" mapstructure:"large_length"`
}

// DefaultConfig returns a configuration tuned for the quadratic-cost
// simulated backend with 2ms cost units and strings up to ~25 code points.
func DefaultConfig() *Config {
	return &Config{
		MaxBatchSize:    backend.MaxBatchSize,
		MaxWait:         1500 * time.Millisecond,
		MaxQueueDepth:   1000,
		BackendTimeout:  30 * time.Second,
		SimilarityRatio: 1.5,
		MinSpread:       2,
		Linger:          0,
		LargeLength:     0,
	}
}

// Validate checks that the configuration can be used to build a scheduler.
func (c *Config) Validate() error {
	if err := validate.ValidateIntRange(c.MaxBatchSize, 1, backend.MaxBatchSize, "max batch size"); err != nil {
		return err
	}
	if err := validate.ValidatePositiveTimeout(c.MaxWait, "max wait"); err != nil {
		return err
	}
	if err := validate.ValidateIntRange(c.MaxQueueDepth, 1, 1_000_000, "max queue depth"); err != nil {
		return err
	}
	if err := validate.ValidatePositiveTimeout(c.BackendTimeout, "backend timeout"); err != nil {
		return err
	}
	if err := validate.ValidateFloatMin(c.SimilarityRatio, 1, "similarity ratio"); err != nil {
		return err
	}
	if c.MinSpread < 0 {
		return fmt.Errorf("min spread cannot be negative, got %d", c.MinSpread)
	}
	if err := validate.ValidateNonNegativeDuration(c.Linger, "linger"); err != nil {
		return err
	}
	if c.Linger > 0 && c.Linger >= c.MaxWait {
		return fmt.Errorf("linger (%v) must be less than max wait (%v)", c.Linger, c.MaxWait)
	}
	if c.LargeLength < 0 {
		return fmt.Errorf("large length cannot be negative, got %d", c.LargeLength)
	}
	return nil
}

// lingerEnabled reports whether the planner may hold back long batches.
func (c *Config) lingerEnabled() bool {
	return c.Linger > 0 && c.LargeLength > 0
}
