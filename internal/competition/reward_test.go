package competition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewardFor(t *testing.T) {
	tests := []struct {
		name        string
		points      int
		hasActivity bool
		expected    Reward
	}{
		{"no activity beats any points", 2000, false, NoReward},
		{"exactly 100", 100, true, FiveAMH},
		{"just under 100", 99, true, ThreeAMH},
		{"exactly 60", 60, true, ThreeAMH},
		{"exactly 40", 40, true, TwoAMH},
		{"exactly 20", 20, true, OneAMH},
		{"just under 20", 19, true, NoReward},
		{"zero points with activity", 0, true, NoReward},
		{"negative points", -50, true, NoReward},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RewardFor(tt.points, tt.hasActivity))
		})
	}
}

func TestRewardMonotonicWithActivity(t *testing.T) {
	prev := RewardFor(-10, true)
	for p := -9; p <= 150; p++ {
		current := RewardFor(p, true)
		assert.GreaterOrEqual(t, current.Units(), prev.Units(), "points %d", p)
		prev = current
	}
}

func TestRewardLabels(t *testing.T) {
	assert.Equal(t, "5 AMH", FiveAMH.String())
	assert.Equal(t, "3 AMH", ThreeAMH.String())
	assert.Equal(t, "2 AMH", TwoAMH.String())
	assert.Equal(t, "1 AMH", OneAMH.String())
	assert.Equal(t, "No reward", NoReward.String())

	var r Reward
	require.NoError(t, r.UnmarshalText([]byte("3 AMH")))
	assert.Equal(t, ThreeAMH, r)
	assert.Error(t, r.UnmarshalText([]byte("7 AMH")))
}

func TestRewardScenarios(t *testing.T) {
	cfg := PointConfig{ActivityWeight: 5, PrimaryWeight: 1, SecondaryWeight: 1}

	busy := DistributorRecord{Activities: CountOf(20), AMHSold: CountOf(0), URUSSold: CountOf(0)}
	assert.Equal(t, 100, Points(busy, cfg))
	assert.Equal(t, FiveAMH, RewardFor(Points(busy, cfg), busy.HasActivity()))

	seller := DistributorRecord{Activities: CountOf(0), AMHSold: CountOf(1000), URUSSold: CountOf(1000)}
	assert.Equal(t, 2000, Points(seller, cfg))
	assert.Equal(t, NoReward, RewardFor(Points(seller, cfg), seller.HasActivity()))
}

func TestRewardIgnoresStanding(t *testing.T) {
	cfg := DefaultPointConfig()
	view := DeriveView([]DistributorRecord{
		{ID: "1", Name: "first", Activities: CountOf(1), AMHSold: CountOf(55)},
		{ID: "2", Name: "second", Activities: CountOf(0), AMHSold: CountOf(60)},
		{ID: "3", Name: "third", Activities: CountOf(1), URUSSold: CountOf(55)},
	}, cfg)

	require.Len(t, view.Rows, 3)
	assert.Equal(t, 60, view.Rows[0].Points)
	assert.Equal(t, 60, view.Rows[1].Points)
	assert.Equal(t, ThreeAMH, view.Rows[0].Reward)
	assert.Equal(t, NoReward, view.Rows[1].Reward)
	assert.Equal(t, view.Rows[0].Reward, view.Rows[2].Reward, "same points and activity give the same reward at any rank")
	assert.NotEqual(t, view.Rows[0].Rank, view.Rows[2].Rank)
}
