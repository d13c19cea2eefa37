package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 5},
		{"default bucket size for negative", -1, 5},
		{"custom bucket size", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(5, 10) {
		t.Error("ShouldLog on nil sampler should always return true")
	}
}

func TestProgressSampler_Buckets(t *testing.T) {
	s := NewProgressSampler(25)
	var logged []int
	for done := 1; done <= 10; done++ {
		if s.ShouldLog(done, 10) {
			logged = append(logged, done)
		}
	}
	// 10% -> bucket 0, 30% -> 1, 50% -> 2, 80% -> 3, 100% -> 4
	want := []int{1, 3, 5, 8, 10}
	if len(logged) != len(want) {
		t.Fatalf("logged = %v, want %v", logged, want)
	}
	for i := range want {
		if logged[i] != want[i] {
			t.Fatalf("logged = %v, want %v", logged, want)
		}
	}
}

func TestProgressSampler_ZeroTotal(t *testing.T) {
	s := NewProgressSampler(5)
	if !s.ShouldLog(0, 0) {
		t.Fatal("expected unknown totals to always log")
	}
}
