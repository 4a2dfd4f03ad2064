package competition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func record(activities, amh, urus Count) DistributorRecord {
	return DistributorRecord{Activities: activities, AMHSold: amh, URUSSold: urus}
}

func TestPoints(t *testing.T) {
	tests := []struct {
		name     string
		record   DistributorRecord
		config   PointConfig
		expected int
	}{
		{
			name:     "all tallies unset",
			record:   record(Unset, Unset, Unset),
			config:   DefaultPointConfig(),
			expected: 0,
		},
		{
			name:     "default weights",
			record:   record(CountOf(20), CountOf(3), CountOf(4)),
			config:   DefaultPointConfig(),
			expected: 107,
		},
		{
			name:     "unset treated as zero",
			record:   record(CountOf(2), Unset, CountOf(7)),
			config:   PointConfig{ActivityWeight: 10, PrimaryWeight: 2, SecondaryWeight: 3},
			expected: 41,
		},
		{
			name:     "zero weights give zero points",
			record:   record(CountOf(50), CountOf(50), CountOf(50)),
			config:   PointConfig{},
			expected: 0,
		},
		{
			name:     "negative weights are plain multipliers",
			record:   record(CountOf(4), CountOf(1), Unset),
			config:   PointConfig{ActivityWeight: -5, PrimaryWeight: 1, SecondaryWeight: 1},
			expected: -19,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Points(tt.record, tt.config))
		})
	}
}

func TestTotals(t *testing.T) {
	r := record(CountOf(3), CountOf(5), Unset)

	assert.Equal(t, 8, TotalQuantity(r))
	assert.Equal(t, 5, TotalSales(r), "activities are not sales")

	score := ScoreRecord(r, DefaultPointConfig())
	assert.Equal(t, Score{TotalQuantity: 8, TotalSales: 5, Points: 20}, score)
}

func TestPointsMonotonicPerWeight(t *testing.T) {
	cfg := PointConfig{ActivityWeight: 3, PrimaryWeight: 2, SecondaryWeight: 1}
	base := record(CountOf(1), CountOf(1), CountOf(1))
	basePoints := Points(base, cfg)

	bumped := []DistributorRecord{
		record(CountOf(2), CountOf(1), CountOf(1)),
		record(CountOf(1), CountOf(2), CountOf(1)),
		record(CountOf(1), CountOf(1), CountOf(2)),
	}
	for _, r := range bumped {
		assert.Greater(t, Points(r, cfg), basePoints)
	}
}

func TestPointsNonNegative(t *testing.T) {
	cfg := PointConfig{ActivityWeight: 7, PrimaryWeight: 0, SecondaryWeight: 2}
	for a := 0; a < 5; a++ {
		for m := 0; m < 5; m++ {
			for u := 0; u < 5; u++ {
				assert.GreaterOrEqual(t, Points(record(CountOf(a), CountOf(m), CountOf(u)), cfg), 0)
			}
		}
	}
}
