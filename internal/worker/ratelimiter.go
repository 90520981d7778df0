package worker

import (
	"math/rand"
	"time"
)

// jobRateLimiter enforces a jittered delay between jobs so the workers
// stay inside the classification oracle's rate limits.
type jobRateLimiter struct {
	lastJob     time.Time
	minInterval time.Duration
	maxJitter   time.Duration
	rng         *rand.Rand
}

// newJobRateLimiter creates a rate limiter with base interval and jitter.
// For example, baseInterval=1s and jitter=200ms yields delays of 800ms-1.2s.
func newJobRateLimiter(baseInterval, jitter time.Duration) *jobRateLimiter {
	return &jobRateLimiter{
		lastJob:     time.Now().Add(-baseInterval),
		minInterval: baseInterval,
		maxJitter:   jitter,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// waitForNextSlot blocks until enough time has passed since the last job.
func (r *jobRateLimiter) waitForNextSlot() {
	elapsed := time.Since(r.lastJob)

	targetDelay := r.minInterval
	if r.maxJitter > 0 {
		jitterOffset := time.Duration(r.rng.Int63n(int64(r.maxJitter*2))) - r.maxJitter
		targetDelay += jitterOffset
	}

	if elapsed < targetDelay {
		time.Sleep(targetDelay - elapsed)
	}

	r.lastJob = time.Now()
}
