package simulate

import (
	"context"

	"github.com/concave-dev/sluice/internal/scheduler"
)

// LocalSubmitter feeds a scheduler in the same process, so a simulation can
// run without an HTTP hop.
type LocalSubmitter struct {
	Scheduler *scheduler.Scheduler
}

// Classify submits text and waits for its label.
func (l LocalSubmitter) Classify(ctx context.Context, text string) (string, error) {
	h, err := l.Scheduler.Submit(ctx, text)
	if err != nil {
		return "", err
	}
	return h.Wait(ctx)
}
