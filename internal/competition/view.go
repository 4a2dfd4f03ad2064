package competition

// RankedRecord is a record together with everything derived from it.
type RankedRecord struct {
	DistributorRecord
	Score
	Rank   int    `json:"rank"`
	Reward Reward `json:"reward"`
}

// View is the full derived state for one collection and config.
type View struct {
	Config PointConfig `json:"config"`

	// Rows keeps collection order, which is the order records are edited in.
	Rows []RankedRecord `json:"distributors"`

	// Standings holds the same records ordered by rank.
	Standings []RankedRecord `json:"standings"`

	Summary Summary `json:"summary"`
}

// DeriveView scores, ranks, rewards and summarises the collection. It is a
// pure function of its inputs and is recomputed in full after every change.
func DeriveView(records []DistributorRecord, cfg PointConfig) View {
	rows := make([]RankedRecord, len(records))
	points := make([]int, len(records))

	for i, r := range records {
		score := ScoreRecord(r, cfg)
		points[i] = score.Points
		rows[i] = RankedRecord{
			DistributorRecord: r,
			Score:             score,
			Reward:            RewardFor(score.Points, r.HasActivity()),
		}
	}

	standings := make([]RankedRecord, 0, len(records))
	for pos, idx := range StandingsOrder(points) {
		rows[idx].Rank = pos + 1
		standings = append(standings, rows[idx])
	}

	return View{
		Config:    cfg,
		Rows:      rows,
		Standings: standings,
		Summary:   Summarize(standings),
	}
}

// Winners returns the standings entries that earned a reward, grouped by tier
// from highest to lowest and in rank order within each tier.
func (v View) Winners() []RankedRecord {
	winners := make([]RankedRecord, 0, v.Summary.WinnerCount)
	for _, bucket := range v.Summary.Buckets {
		winners = append(winners, bucket.Winners...)
	}
	return winners
}
