package backend

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

// TestServiceTime tests the quadratic cost model
func TestServiceTime(t *testing.T) {
	tests := []struct {
		maxLen int
		unit   time.Duration
		want   time.Duration
	}{
		{0, 2 * time.Millisecond, 0},
		{1, 2 * time.Millisecond, 2 * time.Millisecond},
		{5, 2 * time.Millisecond, 50 * time.Millisecond},
		{25, 2 * time.Millisecond, 1250 * time.Millisecond},
		{10, time.Microsecond, 100 * time.Microsecond},
		{-3, time.Millisecond, 0},
		{5, 0, 0},
		{2_200_000, 2 * time.Millisecond, time.Duration(math.MaxInt64)},
		{3_037_000_500, time.Nanosecond, time.Duration(math.MaxInt64)},
	}

	for _, tt := range tests {
		if got := ServiceTime(tt.maxLen, tt.unit); got != tt.want {
			t.Errorf("ServiceTime(%d, %v) = %v, want %v", tt.maxLen, tt.unit, got, tt.want)
		}
	}
}

// TestMaxLength tests code point based length measurement
func TestMaxLength(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  int
	}{
		{"empty batch", nil, 0},
		{"ascii", []string{"a", "abc", "ab"}, 3},
		{"empty string", []string{""}, 0},
		{"multibyte counts runes", []string{"héllo", "日本"}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxLength(tt.texts); got != tt.want {
				t.Errorf("MaxLength(%q) = %d, want %d", tt.texts, got, tt.want)
			}
		})
	}
}

// TestSimulatedClassify tests positional labelling and latency
func TestSimulatedClassify(t *testing.T) {
	sim := NewSimulated(time.Millisecond, WithLabeler(HeuristicLabeler))
	texts := []string{"hello world", "func main() {}", "x := 1"}

	start := time.Now()
	labels, err := sim.Classify(context.Background(), texts)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	want := []string{LabelNotCode, LabelCode, LabelCode}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}

	// longest text has 14 code points: 196ms
	if elapsed < 196*time.Millisecond {
		t.Errorf("Classify() took %v, want at least 196ms", elapsed)
	}

	stats := sim.Stats()
	if stats.Calls != 1 || stats.Texts != 3 {
		t.Errorf("Stats() = %+v, want 1 call with 3 texts", stats)
	}
}

// TestSimulatedRejectsOversizedBatch tests the batch size limit
func TestSimulatedRejectsOversizedBatch(t *testing.T) {
	sim := NewSimulated(time.Microsecond)

	_, err := sim.Classify(context.Background(), []string{"a", "b", "c", "d", "e", "f"})
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("Classify(6 texts) error = %v, want ErrBatchTooLarge", err)
	}
	if sim.Stats().Oversized != 1 {
		t.Errorf("Oversized = %d, want 1", sim.Stats().Oversized)
	}
	if sim.Stats().Calls != 0 {
		t.Errorf("Calls = %d, want 0", sim.Stats().Calls)
	}
}

// TestSimulatedRejectsConcurrentBatch tests single-flight enforcement
func TestSimulatedRejectsConcurrentBatch(t *testing.T) {
	sim := NewSimulated(time.Millisecond)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// 20² ms keeps the backend busy long enough to collide
		if _, err := sim.Classify(context.Background(), []string{"aaaaaaaaaaaaaaaaaaaa"}); err != nil {
			t.Errorf("first Classify() error = %v", err)
		}
	}()

	deadline := time.Now().Add(time.Second)
	for !sim.Busy() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	_, err := sim.Classify(context.Background(), []string{"b"})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Classify() error = %v, want ErrBusy", err)
	}

	wg.Wait()
	if sim.Busy() {
		t.Error("backend still busy after batch completed")
	}
	if sim.Stats().Busy != 1 {
		t.Errorf("Busy rejections = %d, want 1", sim.Stats().Busy)
	}
}

// TestSimulatedContextCancel tests that cancellation frees the backend
func TestSimulatedContextCancel(t *testing.T) {
	sim := NewSimulated(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := sim.Classify(ctx, []string{"long enough to take minutes"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Classify() error = %v, want deadline exceeded", err)
	}
	if sim.Busy() {
		t.Error("backend still busy after cancellation")
	}
}

// TestLabelerByName tests labeler flag resolution
func TestLabelerByName(t *testing.T) {
	for _, name := range []string{"", "random", "heuristic"} {
		l, err := LabelerByName(name, 1)
		if err != nil {
			t.Errorf("LabelerByName(%q) error = %v", name, err)
			continue
		}
		if got := l("some text"); got != LabelCode && got != LabelNotCode {
			t.Errorf("LabelerByName(%q) produced %q", name, got)
		}
	}

	if _, err := LabelerByName("oracle", 1); err == nil {
		t.Error("LabelerByName(\"oracle\") expected error")
	}
}

// TestRandomLabelerSeeded tests that a seed reproduces the label sequence
func TestRandomLabelerSeeded(t *testing.T) {
	a, b := RandomLabeler(42), RandomLabeler(42)

	seen := map[string]int{}
	for i := range 64 {
		la, lb := a("x"), b("x")
		if la != lb {
			t.Fatalf("draw %d: labels differ for the same seed: %q vs %q", i, la, lb)
		}
		seen[la]++
	}
	if seen[LabelCode] == 0 || seen[LabelNotCode] == 0 {
		t.Errorf("expected both labels in 64 draws, got %v", seen)
	}
}
