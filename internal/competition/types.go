package competition

import "fmt"

// DefaultDistributorName is the placeholder record every new session starts with.
const DefaultDistributorName = "Distributor 1"

// Field names a single editable attribute of a DistributorRecord.
type Field string

const (
	FieldName       Field = "name"
	FieldActivities Field = "activities"
	FieldAMHSold    Field = "amh_sold"
	FieldURUSSold   Field = "urus_sold"
)

// ParseField maps a wire name onto a Field. The camelCase spellings used by
// the page are accepted as well.
func ParseField(s string) (Field, error) {
	switch s {
	case "name":
		return FieldName, nil
	case "activities":
		return FieldActivities, nil
	case "amh_sold", "amhSold":
		return FieldAMHSold, nil
	case "urus_sold", "urusSold":
		return FieldURUSSold, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// DistributorRecord is one row of competition data.
type DistributorRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Activities Count  `json:"activities"`
	AMHSold    Count  `json:"amh_sold"`
	URUSSold   Count  `json:"urus_sold"`
}

// HasActivity reports whether the distributor logged at least one activity.
// Rewards are only granted to distributors with activity.
func (r DistributorRecord) HasActivity() bool {
	return r.Activities.Int() > 0
}

// PointConfig holds the multipliers applied to each tally.
type PointConfig struct {
	ActivityWeight  int `json:"activity_weight"`
	PrimaryWeight   int `json:"primary_weight"`   // per AMH sold
	SecondaryWeight int `json:"secondary_weight"` // per URUS sold
}

// DefaultPointConfig returns 5 points per activity and 1 point per unit sold.
func DefaultPointConfig() PointConfig {
	return PointConfig{
		ActivityWeight:  5,
		PrimaryWeight:   1,
		SecondaryWeight: 1,
	}
}
