package competition

// TierBucket collects the winners of one reward tier.
type TierBucket struct {
	Reward   Reward         `json:"reward"`
	Winners  []RankedRecord `json:"winners"`
	Machines int            `json:"machines"`
}

// Count is the number of winners in the bucket.
func (b TierBucket) Count() int {
	return len(b.Winners)
}

// Summary is the reward breakdown for a ranked collection.
type Summary struct {
	Buckets     []TierBucket `json:"buckets"`
	WinnerCount int          `json:"winner_count"`
	GrandTotal  int          `json:"grand_total"`
}

// Summarize partitions ranked records into the four reward tiers. Each bucket
// keeps the order of its input, so passing standings yields rank order.
// Records without a reward land in no bucket.
func Summarize(ranked []RankedRecord) Summary {
	buckets := make([]TierBucket, len(RewardRules))
	index := make(map[Reward]int, len(RewardRules))
	for i, rule := range RewardRules {
		buckets[i] = TierBucket{Reward: rule.Reward, Winners: []RankedRecord{}}
		index[rule.Reward] = i
	}

	for _, r := range ranked {
		i, ok := index[r.Reward]
		if !ok {
			continue
		}
		buckets[i].Winners = append(buckets[i].Winners, r)
	}

	summary := Summary{Buckets: buckets}
	for i := range buckets {
		buckets[i].Machines = buckets[i].Count() * buckets[i].Reward.Units()
		summary.WinnerCount += buckets[i].Count()
		summary.GrandTotal += buckets[i].Machines
	}
	return summary
}

// Bucket returns the bucket for a reward tier; NoReward yields an empty bucket.
func (s Summary) Bucket(r Reward) TierBucket {
	for _, b := range s.Buckets {
		if b.Reward == r {
			return b
		}
	}
	return TierBucket{Reward: r, Winners: []RankedRecord{}}
}
