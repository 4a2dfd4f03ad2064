package competition

// Score is the set of per-record figures derived from the raw tallies.
type Score struct {
	TotalQuantity int `json:"total_quantity"`
	TotalSales    int `json:"total_sales"`
	Points        int `json:"points"`
}

// Points is the weighted sum used for ordering and reward thresholds.
func Points(r DistributorRecord, cfg PointConfig) int {
	return r.Activities.Int()*cfg.ActivityWeight +
		r.AMHSold.Int()*cfg.PrimaryWeight +
		r.URUSSold.Int()*cfg.SecondaryWeight
}

// TotalQuantity counts activities and both products together.
func TotalQuantity(r DistributorRecord) int {
	return r.Activities.Int() + r.AMHSold.Int() + r.URUSSold.Int()
}

// TotalSales counts units sold; activities are excluded.
func TotalSales(r DistributorRecord) int {
	return r.AMHSold.Int() + r.URUSSold.Int()
}

func ScoreRecord(r DistributorRecord, cfg PointConfig) Score {
	return Score{
		TotalQuantity: TotalQuantity(r),
		TotalSales:    TotalSales(r),
		Points:        Points(r, cfg),
	}
}
