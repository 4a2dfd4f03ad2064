package competition

import "fmt"

// Reward is the prize tier a distributor qualifies for.
type Reward int

const (
	NoReward Reward = iota
	OneAMH
	TwoAMH
	ThreeAMH
	FiveAMH
)

// RewardRule grants Reward to distributors with activity and at least
// MinPoints points.
type RewardRule struct {
	Reward    Reward `json:"reward"`
	MinPoints int    `json:"min_points"`
}

// RewardRules are evaluated top-down; the first satisfied rule wins.
var RewardRules = []RewardRule{
	{Reward: FiveAMH, MinPoints: 100},
	{Reward: ThreeAMH, MinPoints: 60},
	{Reward: TwoAMH, MinPoints: 40},
	{Reward: OneAMH, MinPoints: 20},
}

// RewardFor decides the tier from points and activity presence alone.
// Rank and total sales deliberately play no part. Points are compared as raw
// integers, so negative totals simply fall through to NoReward.
func RewardFor(points int, hasActivity bool) Reward {
	if !hasActivity {
		return NoReward
	}
	for _, rule := range RewardRules {
		if points >= rule.MinPoints {
			return rule.Reward
		}
	}
	return NoReward
}

// Units is the number of free machines the tier is worth.
func (r Reward) Units() int {
	switch r {
	case FiveAMH:
		return 5
	case ThreeAMH:
		return 3
	case TwoAMH:
		return 2
	case OneAMH:
		return 1
	default:
		return 0
	}
}

func (r Reward) String() string {
	if r.Units() == 0 {
		return "No reward"
	}
	return fmt.Sprintf("%d AMH", r.Units())
}

// MarshalText renders the tier label, e.g. "3 AMH".
func (r Reward) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Reward) UnmarshalText(text []byte) error {
	s := string(text)
	for _, candidate := range []Reward{NoReward, OneAMH, TwoAMH, ThreeAMH, FiveAMH} {
		if candidate.String() == s {
			*r = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown reward %q", s)
}
