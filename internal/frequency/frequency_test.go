package frequency

import (
	"fmt"
	"testing"

	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visits(org, email string, n int) []datanorm.Record {
	out := make([]datanorm.Record, n)
	for i := range out {
		out[i] = datanorm.Record{ClientName: org, VisitorEmail: email}
	}
	return out
}

func concat(groups ...[]datanorm.Record) []datanorm.Record {
	var out []datanorm.Record
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func TestFrequentVisitorsThresholdIsStrict(t *testing.T) {
	records := concat(
		visits("A", "ana@x.com", 5),
		visits("B", "ana@x.com", 3),
		visits("B", "bia@x.com", 4),
	)

	rows := FrequentVisitors(records, DefaultThreshold)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{Organization: "A", VisitorEmail: "ana@x.com", Visits: 5}, rows[0])
}

func TestFrequentVisitorsOrdering(t *testing.T) {
	records := concat(
		visits("A", "a1", 5),
		visits("B", "b1", 7),
		visits("C", "c1", 5),
		visits("A", "a2", 6),
	)

	rows := FrequentVisitors(records, DefaultThreshold)
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = fmt.Sprintf("%s/%s=%d", r.Organization, r.VisitorEmail, r.Visits)
	}
	assert.Equal(t, []string{"B/b1=7", "A/a2=6", "A/a1=5", "C/c1=5"}, got)
}

func TestFrequentVisitorsSkipsUngroupable(t *testing.T) {
	records := concat(visits("", "a@x.com", 9), visits("A", "", 9))
	assert.Empty(t, FrequentVisitors(records, DefaultThreshold))
}

func TestConsolidateAndPanel(t *testing.T) {
	records := concat(
		visits("Zeta", "z1", 5),
		visits("Zeta", "z2", 5),
		visits("Alfa", "a1", 6),
		visits("Alfa", "a2", 6),
		visits("Beta", "b1", 9),
		visits("Gama", "g1", 5),
		visits("Gama", "g2", 2),
	)
	rows := FrequentVisitors(records, DefaultThreshold)

	consolidated := Consolidate(rows)
	assert.Equal(t, []ConsolidatedRow{
		{FrequentVisitors: 1, Organizations: 2},
		{FrequentVisitors: 2, Organizations: 2},
	}, consolidated)

	total := 0
	for _, c := range consolidated {
		total += c.Organizations
	}
	assert.Equal(t, 4, total, "consolidated counts sum to organizations with a frequent visitor")

	panel := PanelView(rows)
	require.Len(t, panel, 2)
	assert.Equal(t, 1, panel[0].FrequentVisitors)
	assert.Equal(t, []string{"Beta", "Gama"}, panel[0].Organizations)
	assert.Equal(t, "Beta, Gama", panel[0].Label)
	assert.Equal(t, "Alfa, Zeta", panel[1].Label)
}

func TestEmptyInput(t *testing.T) {
	rows := FrequentVisitors(nil, DefaultThreshold)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.NotNil(t, Consolidate(rows))
	assert.Empty(t, Consolidate(rows))
	assert.NotNil(t, PanelView(rows))
	assert.Empty(t, PanelView(rows))
}
