package scheduler

import (
	"math"
	"slices"
	"time"
)

// Reason records why a batch was formed.
type Reason string

const (
	// ReasonMaxWait: the oldest job hit MaxWait and the batch was built around overdue jobs.
	ReasonMaxWait Reason = "max_wait"

	// ReasonFull: a full batch of similar-length jobs was available.
	ReasonFull Reason = "full"

	// ReasonIdle: the backend was idle and a partial batch was sent rather than wait.
	ReasonIdle Reason = "idle"
)

// Decision is the planner's answer. Either Jobs is non-empty, or no batch
// should be sent now and WakeAt (if set) says when to ask again.
type Decision struct {
	Jobs   []*Job
	Reason Reason
	WakeAt time.Time
}

// Empty reports whether the decision dispatches nothing.
func (d Decision) Empty() bool {
	return len(d.Jobs) == 0
}

// Planner chooses which pending jobs form the next batch. It is pure: given
// the same pending set and clock it returns the same decision, and it never
// modifies the slice it is handed.
//
// SELECTION ORDER:
//  1. Overdue: if any job has waited MaxWait, the oldest overdue jobs go
//     first, topped up with the oldest jobs no longer than the longest
//     overdue job so the riders add no service time.
//  2. Similar length: otherwise the shortest pending length s sets the
//     class bound max(s+MinSpread, ceil(s*SimilarityRatio)) and the oldest
//     jobs within the bound are taken, preferring shorter ones on ties.
//  3. Linger: a non-full class whose longest job is at least LargeLength may
//     be held back until its oldest job has waited Linger.
type Planner struct {
	cfg Config
}

// NewPlanner creates a planner for cfg. cfg must already be validated.
func NewPlanner(cfg Config) *Planner {
	return &Planner{cfg: cfg}
}

// Plan selects the next batch from pending as of now.
func (p *Planner) Plan(pending []*Job, now time.Time) Decision {
	if len(pending) == 0 {
		return Decision{}
	}
	if d, ok := p.planOverdue(pending, now); ok {
		return d
	}
	return p.planByLength(pending, now)
}

// Deadline is when job becomes overdue.
func (p *Planner) Deadline(job *Job) time.Time {
	return job.SubmittedAt.Add(p.cfg.MaxWait)
}

// ClassBound returns the longest length allowed in a batch whose shortest
// job has length shortest.
func (p *Planner) ClassBound(shortest int) int {
	byRatio := int(math.Ceil(float64(shortest) * p.cfg.SimilarityRatio))
	return max(shortest+p.cfg.MinSpread, byRatio)
}

func (p *Planner) planOverdue(pending []*Job, now time.Time) (Decision, bool) {
	var due, rest []*Job
	for _, j := range pending {
		if now.Sub(j.SubmittedAt) >= p.cfg.MaxWait {
			due = append(due, j)
		} else {
			rest = append(rest, j)
		}
	}
	if len(due) == 0 {
		return Decision{}, false
	}

	slices.SortStableFunc(due, byAge)
	batch := due[:min(len(due), p.cfg.MaxBatchSize)]

	if len(batch) < p.cfg.MaxBatchSize {
		limit := maxLength(batch)
		slices.SortStableFunc(rest, byAge)
		for _, j := range rest {
			if len(batch) == p.cfg.MaxBatchSize {
				break
			}
			if j.Length <= limit {
				batch = append(batch, j)
			}
		}
	}

	return Decision{Jobs: batch, Reason: ReasonMaxWait}, true
}

func (p *Planner) planByLength(pending []*Job, now time.Time) Decision {
	shortest := pending[0].Length
	for _, j := range pending[1:] {
		shortest = min(shortest, j.Length)
	}
	bound := p.ClassBound(shortest)

	eligible := make([]*Job, 0, len(pending))
	for _, j := range pending {
		if j.Length <= bound {
			eligible = append(eligible, j)
		}
	}
	slices.SortStableFunc(eligible, byAgeThenLength)
	batch := eligible[:min(len(eligible), p.cfg.MaxBatchSize)]

	if len(batch) == p.cfg.MaxBatchSize {
		return Decision{Jobs: batch, Reason: ReasonFull}
	}

	if p.cfg.lingerEnabled() && maxLength(batch) >= p.cfg.LargeLength {
		oldest := slices.MinFunc(batch, byAge)
		if hold := oldest.SubmittedAt.Add(p.cfg.Linger); now.Before(hold) {
			return Decision{WakeAt: hold}
		}
	}

	return Decision{Jobs: batch, Reason: ReasonIdle}
}

func byAge(a, b *Job) int {
	if c := a.SubmittedAt.Compare(b.SubmittedAt); c != 0 {
		return c
	}
	return cmpSeq(a, b)
}

func byAgeThenLength(a, b *Job) int {
	if c := a.SubmittedAt.Compare(b.SubmittedAt); c != 0 {
		return c
	}
	if a.Length != b.Length {
		return a.Length - b.Length
	}
	return cmpSeq(a, b)
}

func cmpSeq(a, b *Job) int {
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	default:
		return 0
	}
}

func maxLength(jobs []*Job) int {
	n := 0
	for _, j := range jobs {
		n = max(n, j.Length)
	}
	return n
}
