package queue

import "errors"

var (
	// ErrQueueEmpty indicates there are no jobs ready to be processed.
	ErrQueueEmpty = errors.New("queue is empty")
	// ErrJobParked indicates a job exhausted its retry budget and was
	// moved to the parked list for manual inspection.
	ErrJobParked = errors.New("job parked after exhausting retries")
	// ErrDuplicateJob indicates an identical job is already queued.
	ErrDuplicateJob = errors.New("duplicate job already queued")
)
