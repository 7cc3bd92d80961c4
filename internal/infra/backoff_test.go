package infra

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	cases := []struct {
		retry int
		want  time.Duration
	}{
		{-1, 1 * time.Second},
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{6, 60 * time.Second},  // 64s capped
		{31, 60 * time.Second}, // shift-overflow guard
	}

	for _, tc := range cases {
		if got := CalculateBackoff(tc.retry); got != tc.want {
			t.Errorf("CalculateBackoff(%d) = %v, want %v", tc.retry, got, tc.want)
		}
	}
}
