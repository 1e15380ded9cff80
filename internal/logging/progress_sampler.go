package logging

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when the completed fraction crosses a bucket boundary.
type ProgressSampler struct {
	bucketSize float64
	lastBucket int
	lastBytes  int64
	byteStep   int64
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 5%). When the total is unknown it emits every
// byteStep bytes instead (default 64 MiB).
func NewProgressSampler(bucketSize float64, byteStep int64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	if byteStep <= 0 {
		byteStep = 64 << 20
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1, lastBytes: -1, byteStep: byteStep}
}

// ShouldLog reports whether a progress reading should be logged. A total of
// zero or less means the size is unknown.
func (s *ProgressSampler) ShouldLog(done, total int64) bool {
	if s == nil {
		return true
	}
	if total <= 0 {
		if s.lastBytes < 0 || done-s.lastBytes >= s.byteStep {
			s.lastBytes = done
			return true
		}
		return false
	}
	percent := float64(done) / float64(total) * 100
	bucket := int(percent / s.bucketSize)
	if percent >= 100 {
		bucket = int(100 / s.bucketSize)
	}
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}

// Reset clears the sampler state (e.g. when a new download starts).
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = -1
	s.lastBytes = -1
}
