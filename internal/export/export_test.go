package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(DefaultBranding())
	require.NoError(t, err)
	return r
}

func sampleView() competition.View {
	return competition.DeriveView([]competition.DistributorRecord{
		{ID: "a", Name: "Bronze Co", Activities: competition.CountOf(4)},
		{ID: "b", Name: "Gold <Inc>", Activities: competition.CountOf(20), AMHSold: competition.CountOf(3)},
		{ID: "c", Name: "Idle", AMHSold: competition.CountOf(500)},
		{ID: "d", Name: "Silver", Activities: competition.CountOf(12)},
	}, competition.DefaultPointConfig())
}

func TestPresentation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newRenderer(t).Presentation(&buf, sampleView()))
	html := buf.String()

	assert.Contains(t, html, "<h1>Distributor Competition</h1>")
	assert.Contains(t, html, "Jack World No.1")
	assert.Contains(t, html, "AMH/URUS Sales Ranking &amp; Rewards")
	assert.Contains(t, html, "Each Activity = 5 points")
	assert.Contains(t, html, "5 free AMH")
	assert.Contains(t, html, "At least 20 points")

	assert.Contains(t, html, "Gold &lt;Inc&gt;", "names are escaped")
	assert.NotContains(t, html, "Gold <Inc>")

	idle := strings.Index(html, "Idle")
	gold := strings.Index(html, "Gold &lt;Inc&gt;")
	silver := strings.Index(html, "Silver")
	bronze := strings.Index(html, "Bronze Co")
	assert.True(t, idle < gold && gold < silver && silver < bronze, "rows follow rank order")

	assert.Contains(t, html, `class="rank rank-1"`)
	assert.Contains(t, html, `class="reward reward-none"`)
	assert.Contains(t, html, `class="reward reward-5"`)
}

func TestCertificates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newRenderer(t).Certificates(&buf, sampleView()))
	html := buf.String()

	assert.Equal(t, 3, strings.Count(html, `<div class="certificate"`))
	assert.NotContains(t, html, "Idle", "records without a reward get no certificate")

	gold := strings.Index(html, "Gold &lt;Inc&gt;")
	silver := strings.Index(html, "Silver")
	bronze := strings.Index(html, "Bronze Co")
	assert.True(t, gold < silver && silver < bronze, "certificates are grouped from the highest tier down")

	assert.Contains(t, html, `data-color="#eab308"`)
	assert.Contains(t, html, `data-color="#3b82f6"`)
	assert.Contains(t, html, `data-color="#a855f7"`)
	assert.Contains(t, html, "#2</div>")
}

func TestCertificatesWithoutWinners(t *testing.T) {
	view := competition.DeriveView([]competition.DistributorRecord{
		{ID: "a", Name: "Nobody", Activities: competition.CountOf(1)},
	}, competition.DefaultPointConfig())

	var buf bytes.Buffer
	err := newRenderer(t).Certificates(&buf, view)
	assert.ErrorIs(t, err, ErrNoWinners)
	assert.Zero(t, buf.Len())
}

func TestTierColor(t *testing.T) {
	assert.Equal(t, "#eab308", TierColor(competition.FiveAMH))
	assert.Equal(t, "#22c55e", TierColor(competition.TwoAMH))
	assert.Equal(t, "", TierColor(competition.NoReward))
}
