package competition

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveView(t *testing.T) {
	records := []DistributorRecord{
		named("late", 1, 0, 0),
		named("leader", 20, 5, 5),
		named("middle", 6, 0, 3),
	}

	view := DeriveView(records, DefaultPointConfig())

	require.Len(t, view.Rows, 3)
	assert.Equal(t, "late", view.Rows[0].Name, "rows keep collection order")
	assert.Equal(t, 3, view.Rows[0].Rank)
	assert.Equal(t, 1, view.Rows[1].Rank)
	assert.Equal(t, 2, view.Rows[2].Rank)

	require.Len(t, view.Standings, 3)
	assert.Equal(t, []string{"leader", "middle", "late"},
		[]string{view.Standings[0].Name, view.Standings[1].Name, view.Standings[2].Name})
	for i, s := range view.Standings {
		assert.Equal(t, i+1, s.Rank)
	}

	leader := view.Standings[0]
	assert.Equal(t, 110, leader.Points)
	assert.Equal(t, 30, leader.TotalQuantity)
	assert.Equal(t, 10, leader.TotalSales)
	assert.Equal(t, FiveAMH, leader.Reward)

	assert.Equal(t, DefaultPointConfig(), view.Config)
}

func TestDeriveViewDoesNotMutateInput(t *testing.T) {
	records := []DistributorRecord{named("b", 0, 1, 0), named("a", 9, 0, 0)}
	DeriveView(records, DefaultPointConfig())
	assert.Equal(t, "b", records[0].Name)
	assert.Equal(t, "a", records[1].Name)
}

func TestDeriveViewReactsToConfig(t *testing.T) {
	records := []DistributorRecord{
		named("seller", 1, 30, 0),
		named("active", 10, 0, 0),
	}

	byActivity := DeriveView(records, PointConfig{ActivityWeight: 5, PrimaryWeight: 1, SecondaryWeight: 1})
	assert.Equal(t, "active", byActivity.Standings[0].Name)

	bySales := DeriveView(records, PointConfig{ActivityWeight: 1, PrimaryWeight: 3, SecondaryWeight: 1})
	assert.Equal(t, "seller", bySales.Standings[0].Name)
}

func TestViewJSONShape(t *testing.T) {
	view := DeriveView([]DistributorRecord{named("solo", 4, 0, 0)}, DefaultPointConfig())

	data, err := json.Marshal(view)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	rows := decoded["distributors"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "solo", row["name"])
	assert.Equal(t, float64(20), row["points"])
	assert.Equal(t, float64(1), row["rank"])
	assert.Equal(t, "1 AMH", row["reward"])

	summary := decoded["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["grand_total"])
}
