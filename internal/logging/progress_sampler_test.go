package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(10, 0)
	const total = 1000
	cases := []struct {
		done int64
		want bool
	}{
		{0, true},
		{50, false},
		{100, true},
		{150, false},
		{350, true},
		{360, false},
		{1000, true},
		{1000, false},
	}
	for _, tc := range cases {
		if got := s.ShouldLog(tc.done, total); got != tc.want {
			t.Fatalf("ShouldLog(%d) = %v, want %v", tc.done, got, tc.want)
		}
	}
}

func TestProgressSamplerUnknownTotal(t *testing.T) {
	s := NewProgressSampler(5, 100)
	if !s.ShouldLog(0, 0) {
		t.Fatal("first reading should log")
	}
	if s.ShouldLog(99, 0) {
		t.Fatal("reading below byte step should not log")
	}
	if !s.ShouldLog(100, 0) {
		t.Fatal("reading at byte step should log")
	}
	s.Reset()
	if !s.ShouldLog(100, 0) {
		t.Fatal("reading after reset should log")
	}
}

func TestNilProgressSamplerAlwaysLogs(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(1, 2) {
		t.Fatal("nil sampler should log")
	}
	s.Reset()
}
