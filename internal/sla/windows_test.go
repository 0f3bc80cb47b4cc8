package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/sla-engine/internal/domain"
)

func TestMergePauseWindows(t *testing.T) {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }
	window := func(from, to int) domain.PauseWindow {
		return domain.PauseWindow{StartsAt: at(from), EndsAt: at(to)}
	}

	tests := []struct {
		name    string
		windows []domain.PauseWindow
		want    []Interval
	}{
		{
			name:    "empty input",
			windows: nil,
			want:    nil,
		},
		{
			name:    "disjoint windows stay separate",
			windows: []domain.PauseWindow{window(1, 2), window(4, 5)},
			want:    []Interval{{Start: at(1), End: at(2)}, {Start: at(4), End: at(5)}},
		},
		{
			name:    "overlapping windows merge",
			windows: []domain.PauseWindow{window(1, 4), window(3, 6)},
			want:    []Interval{{Start: at(1), End: at(6)}},
		},
		{
			name:    "touching windows merge",
			windows: []domain.PauseWindow{window(1, 3), window(3, 5)},
			want:    []Interval{{Start: at(1), End: at(5)}},
		},
		{
			name:    "unordered input is sorted",
			windows: []domain.PauseWindow{window(5, 6), window(1, 2)},
			want:    []Interval{{Start: at(1), End: at(2)}, {Start: at(5), End: at(6)}},
		},
		{
			name:    "contained window absorbed",
			windows: []domain.PauseWindow{window(1, 8), window(2, 3), window(4, 5)},
			want:    []Interval{{Start: at(1), End: at(8)}},
		},
		{
			name:    "zero length windows dropped",
			windows: []domain.PauseWindow{window(2, 2), window(3, 4)},
			want:    []Interval{{Start: at(3), End: at(4)}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MergePauseWindows(tc.windows))
		})
	}
}

func TestOverlap(t *testing.T) {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	a := Interval{Start: at(1), End: at(4)}
	assert.Equal(t, 2*time.Hour, Overlap(a, Interval{Start: at(2), End: at(6)}))
	assert.Equal(t, time.Duration(0), Overlap(a, Interval{Start: at(4), End: at(5)}))
	assert.Equal(t, 3*time.Hour, Overlap(a, Interval{Start: at(0), End: at(10)}))
}
