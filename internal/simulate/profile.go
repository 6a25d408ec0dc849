// Package simulate generates classification traffic against a sluice proxy
// and summarises how it was served.
//
// A run replays one or more client profiles concurrently. Each profile sends
// bursts of fixed-character strings with random lengths and random pauses,
// fires every request in its own goroutine, and waits for the burst to
// resolve before pausing for the next one. The default pair of profiles
// mixes short bursty traffic with a steady stream of longer strings, which
// is the workload the size-aware batching policy is designed for.
package simulate

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Profile describes the traffic shape of one simulated client.
type Profile struct {
	Name string

	Bursts   int // number of bursts
	PerBurst int // requests per burst

	MinLength int // inclusive
	MaxLength int // inclusive
	Fill      rune

	MinGap time.Duration // pause between requests within a burst
	MaxGap time.Duration

	MinBurstGap time.Duration // pause between bursts
	MaxBurstGap time.Duration
}

// ClientA sends three bursts of five short strings.
func ClientA() Profile {
	return Profile{
		Name:        "a",
		Bursts:      3,
		PerBurst:    5,
		MinLength:   5,
		MaxLength:   12,
		Fill:        'a',
		MinGap:      50 * time.Millisecond,
		MaxGap:      100 * time.Millisecond,
		MinBurstGap: 500 * time.Millisecond,
		MaxBurstGap: time.Second,
	}
}

// ClientB sends a steady stream of twelve longer strings.
func ClientB() Profile {
	return Profile{
		Name:      "b",
		Bursts:    1,
		PerBurst:  12,
		MinLength: 10,
		MaxLength: 25,
		Fill:      'b',
		MinGap:    200 * time.Millisecond,
		MaxGap:    500 * time.Millisecond,
	}
}

// DefaultProfiles returns client A and client B.
func DefaultProfiles() []Profile {
	return []Profile{ClientA(), ClientB()}
}

// Requests is the total number of requests the profile sends.
func (p Profile) Requests() int {
	return p.Bursts * p.PerBurst
}

// Validate checks that the profile can be run.
func (p Profile) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("profile name cannot be empty")
	case p.Bursts < 1 || p.PerBurst < 1:
		return fmt.Errorf("profile %s: bursts and per-burst must be positive", p.Name)
	case p.MinLength < 0 || p.MaxLength < p.MinLength:
		return fmt.Errorf("profile %s: invalid length range [%d, %d]", p.Name, p.MinLength, p.MaxLength)
	case p.MinGap < 0 || p.MaxGap < p.MinGap:
		return fmt.Errorf("profile %s: invalid request gap [%v, %v]", p.Name, p.MinGap, p.MaxGap)
	case p.MinBurstGap < 0 || p.MaxBurstGap < p.MinBurstGap:
		return fmt.Errorf("profile %s: invalid burst gap [%v, %v]", p.Name, p.MinBurstGap, p.MaxBurstGap)
	}
	return nil
}

func (p Profile) sequence(rng *rand.Rand) string {
	n := p.MinLength + rng.IntN(p.MaxLength-p.MinLength+1)
	fill := p.Fill
	if fill == 0 {
		fill = 'x'
	}
	return strings.Repeat(string(fill), n)
}

func uniform(rng *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rng.Int64N(int64(hi-lo)+1))
}
