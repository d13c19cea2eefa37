package logging

import "sync"

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when the completed share of a batch crosses a bucket boundary.
type ProgressSampler struct {
	mu         sync.Mutex
	bucketSize float64
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 5%).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether progress at done/total should be logged. The
// first and last items always log. Safe for concurrent use.
func (s *ProgressSampler) ShouldLog(done, total int) bool {
	if s == nil || total <= 0 {
		return true
	}
	percent := float64(done) / float64(total) * 100
	bucket := int(percent / s.bucketSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if done >= total || bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}
