package domain

import (
	"errors"
	"testing"
)

func TestPreferenceFromSliders(t *testing.T) {
	pref, err := PreferenceFromSliders([]int{1, 3, 5, 0, 9}, 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0, 0.5, 1, 0, 1}
	for i := range want {
		if pref[i] != want[i] {
			t.Errorf("pref[%d] = %v, want %v", i, pref[i], want[i])
		}
	}

	if _, err := PreferenceFromSliders([]int{1}, 5, 5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty range, got %v", err)
	}
}

func TestPreferenceVector_Validate(t *testing.T) {
	if err := (PreferenceVector{0, 0.5, 1}).Validate(3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (PreferenceVector{0, 0.5}).Validate(3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected length error, got %v", err)
	}
	if err := (PreferenceVector{0, 1.5, 0}).Validate(3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected range error, got %v", err)
	}
}

func TestArgMax(t *testing.T) {
	tests := []struct {
		in   []float64
		want int
	}{
		{nil, -1},
		{[]float64{0.2}, 0},
		{[]float64{0.1, 0.9, 0.3}, 1},
		{[]float64{0.5, 1, 1, 0.2}, 1},
		{[]float64{0, 0, 0}, 0},
	}
	for _, tt := range tests {
		if got := ArgMax(tt.in); got != tt.want {
			t.Errorf("ArgMax(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
