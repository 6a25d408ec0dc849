package simulate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/concave-dev/sluice/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Submitter classifies one sequence. The sluicectl API client and the
// in-process LocalSubmitter both satisfy it.
type Submitter interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Options tune a simulation run.
type Options struct {
	// Seed makes a run reproducible; each profile derives its own stream.
	Seed uint64

	// TimeScale multiplies every pause. 1 replays the profiles in real
	// time, 0 removes pauses entirely.
	TimeScale float64

	// RequestTimeout bounds each request; 0 means no per-request bound.
	RequestTimeout time.Duration

	// ErrorClassifier names transport-specific failures in the report.
	ErrorClassifier ErrorClassifier
}

// DefaultOptions replays the profiles in real time with a 30s request bound.
func DefaultOptions() Options {
	return Options{
		Seed:           uint64(time.Now().UnixNano()),
		TimeScale:      1,
		RequestTimeout: 30 * time.Second,
	}
}

// Runner replays traffic profiles against a Submitter.
type Runner struct {
	submitter Submitter
	profiles  []Profile
	opts      Options
}

// NewRunner creates a runner. With no profiles it uses DefaultProfiles.
func NewRunner(s Submitter, opts Options, profiles ...Profile) (*Runner, error) {
	if s == nil {
		return nil, fmt.Errorf("submitter cannot be nil")
	}
	if opts.TimeScale < 0 {
		return nil, fmt.Errorf("time scale must be non-negative, got %v", opts.TimeScale)
	}
	if len(profiles) == 0 {
		profiles = DefaultProfiles()
	}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	return &Runner{submitter: s, profiles: profiles, opts: opts}, nil
}

// Run replays every profile concurrently and returns the report once all
// requests have resolved. Request failures are counted, not returned; the
// error is non-nil only when ctx ends before the run completes.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	reports := make([]ClientReport, len(r.profiles))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range r.profiles {
		rng := rand.New(rand.NewPCG(r.opts.Seed, uint64(i)))
		g.Go(func() error {
			rep, err := r.runClient(gctx, p, rng)
			reports[i] = rep
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Clients: reports, Elapsed: time.Since(start)}
	for _, c := range reports {
		report.Requests += c.Requests
		report.Successes += c.Successes
		report.Failures += c.Failures
	}

	logging.Info("Simulation finished: %d/%d requests succeeded in %v",
		report.Successes, report.Requests, report.Elapsed.Round(time.Millisecond))
	return report, nil
}

func (r *Runner) runClient(ctx context.Context, p Profile, rng *rand.Rand) (ClientReport, error) {
	start := time.Now()
	results := make([]Result, 0, p.Requests())

	for burst := range p.Bursts {
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for range p.PerBurst {
			text := p.sequence(rng)
			wg.Add(1)
			go func() {
				defer wg.Done()
				res := r.send(ctx, p.Name, text)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}()

			if err := r.pause(ctx, uniform(rng, p.MinGap, p.MaxGap)); err != nil {
				wg.Wait()
				return summarise(p.Name, results, time.Since(start), r.opts.ErrorClassifier), err
			}
		}
		wg.Wait()

		logging.Debug("Simulation: client %s finished burst %d/%d", p.Name, burst+1, p.Bursts)

		if burst < p.Bursts-1 {
			if err := r.pause(ctx, uniform(rng, p.MinBurstGap, p.MaxBurstGap)); err != nil {
				return summarise(p.Name, results, time.Since(start), r.opts.ErrorClassifier), err
			}
		}
	}

	rep := summarise(p.Name, results, time.Since(start), r.opts.ErrorClassifier)
	logging.Info("Simulation: client %s done, %d/%d succeeded in %v",
		p.Name, rep.Successes, rep.Requests, rep.Elapsed.Round(time.Millisecond))
	return rep, nil
}

func (r *Runner) send(ctx context.Context, client, text string) Result {
	if r.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	label, err := r.submitter.Classify(ctx, text)
	res := Result{
		Client:  client,
		Length:  len([]rune(text)),
		Label:   label,
		Err:     err,
		Latency: time.Since(start),
	}
	if err != nil {
		logging.Debug("Simulation: client %s request (len %d) failed: %v", client, res.Length, err)
	}
	return res
}

func (r *Runner) pause(ctx context.Context, d time.Duration) error {
	d = time.Duration(float64(d) * r.opts.TimeScale)
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
