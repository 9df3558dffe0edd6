package dashboard

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visit(client, email, flag string, y, m, d int) datanorm.Record {
	date := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	idx := datanorm.WeekdayIndex(date)
	return datanorm.Record{
		ClientName:   client,
		VisitorEmail: email,
		HostNotified: flag,
		InviteDate:   date,
		WeekdayIndex: idx,
		WeekdayName:  datanorm.WeekdayNames[idx],
		Year:         y,
		Month:        m,
		Day:          d,
	}
}

func dataset() []datanorm.Record {
	var records []datanorm.Record
	for i := 1; i <= 6; i++ {
		records = append(records, visit("Acme", "ana@acme.com", "Sim", 2025, 4, i))
	}
	records = append(records,
		visit("Cubo", "ops@cubo.com", "Não", 2025, 4, 7),
		visit("Beta", "bia@beta.com", "Sim", 2025, 5, 2),
		visit("Beta", "bia@beta.com", "Não", 2024, 3, 4),
	)
	return records
}

func TestBuildDefaultsToFirstOptions(t *testing.T) {
	view, err := Build(dataset(), Filter{}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []int{2025, 2024}, view.Periods.Years)
	assert.Equal(t, []int{3, 4, 5}, view.Periods.Months)
	assert.Equal(t, 2025, view.Filter.Year)
	assert.Equal(t, 3, view.Filter.Month)

	// 2025-03 has no records: cards still render, charts are empty.
	assert.Equal(t, WarningEmptyPeriod, view.Warning)
	assert.Equal(t, 9, view.Cards.TotalInvites)
	assert.Empty(t, view.Daily)
	assert.NotNil(t, view.Daily)
}

func TestBuildCardsUseFullSetChartsUseFiltered(t *testing.T) {
	view, err := Build(dataset(), Filter{Year: 2025, Month: 4}, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, view.Warning)

	assert.Equal(t, 9, view.Cards.TotalInvites, "cards cover the whole dataset")
	assert.Equal(t, 7, view.Cards.NotifiedCount)
	assert.Equal(t, 2, view.Cards.NotNotifiedCount)
	assert.Equal(t, 1, view.Cards.VenueGuestCount)
	assert.Equal(t, 7, view.FilteredCount)

	require.Len(t, view.Daily, 30)
	sum := 0
	for _, b := range view.Daily {
		sum += b.Count
	}
	assert.Equal(t, 7, sum)

	require.Len(t, view.TopOrganizations, 1)
	assert.Equal(t, "Acme", view.TopOrganizations[0].Label)

	require.Len(t, view.FrequentVisitors, 1)
	assert.Equal(t, 6, view.FrequentVisitors[0].Visits)
	require.Len(t, view.Consolidated, 1)
	assert.Equal(t, 1, view.Consolidated[0].Organizations)
	require.Len(t, view.Panel, 1)
	assert.Equal(t, "Acme", view.Panel[0].Label)
	assert.Len(t, view.Weekday, 7)
}

func TestBuildOrganizationAndNotificationFilters(t *testing.T) {
	view, err := Build(dataset(), Filter{Year: 2025, Month: 4, Organization: "cubo"}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, view.FilteredCount)
	assert.Empty(t, view.TopOrganizations, "the venue operator is never a top organization")

	view, err = Build(dataset(), Filter{Year: 2025, Month: 4, Notification: datanorm.NotificationNotNotified}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, view.FilteredCount)
	assert.Equal(t, 9, view.Cards.TotalInvites)
}

func TestBuildThresholdOption(t *testing.T) {
	view, err := Build(dataset(), Filter{Year: 2025, Month: 4}, Options{FrequentThreshold: 6})
	require.NoError(t, err)
	assert.Empty(t, view.FrequentVisitors)
	assert.Empty(t, view.Panel)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(nil, Filter{}, DefaultOptions())
	assert.True(t, errors.Is(err, ErrNoRecords))

	_, err = PeriodOptions(nil)
	assert.True(t, errors.Is(err, ErrPeriodUnavailable))
}

func TestFilterApplyIsIndependent(t *testing.T) {
	records := dataset()
	out := Filter{Year: 2025, Month: 4}.Apply(records)
	for i := range out {
		out[i].ClientName = fmt.Sprintf("changed-%d", i)
	}
	assert.Equal(t, "Acme", records[0].ClientName)
}
