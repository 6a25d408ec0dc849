package scheduler

// Observer receives scheduler lifecycle events. Implementations must be
// cheap and non-blocking; they run on the submit path and the event loop.
type Observer interface {
	JobAdmitted(job *Job)
	JobRejected(err error)
	JobWithdrawn(job *Job)
	BatchDispatched(batch *Batch)
	BatchCompleted(batch *Batch, err error)
	QueueDepth(depth int)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) JobAdmitted(*Job) {}
func (NoopObserver) JobRejected(error) {}
func (NoopObserver) JobWithdrawn(*Job) {}
func (NoopObserver) BatchDispatched(*Batch) {}
func (NoopObserver) BatchCompleted(*Batch, error) {}
func (NoopObserver) QueueDepth(int) {}
