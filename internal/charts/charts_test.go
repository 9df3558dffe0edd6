package charts

import (
	"fmt"
	"testing"
	"time"

	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/ignite/cubo-visits/internal/frequency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visit(client string, y, m, d int) datanorm.Record {
	date := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	idx := datanorm.WeekdayIndex(date)
	return datanorm.Record{
		ClientName:   client,
		InviteDate:   date,
		WeekdayIndex: idx,
		WeekdayName:  datanorm.WeekdayNames[idx],
		Year:         y,
		Month:        m,
		Day:          d,
	}
}

func TestTopOrganizations(t *testing.T) {
	var records []datanorm.Record
	for i := 0; i < 12; i++ {
		for j := 0; j <= i; j++ {
			records = append(records, visit(fmt.Sprintf("Org %02d", i), 2025, 4, 1))
		}
	}
	for i := 0; i < 50; i++ {
		records = append(records, visit("Cubo Itaú", 2025, 4, 1), visit("CUBO", 2025, 4, 2))
	}

	top := TopOrganizations(records, "cubo", DefaultTopOrganizations)
	require.Len(t, top, 10)
	assert.Equal(t, Bucket{Label: "Org 11", Count: 12}, top[0])
	assert.Equal(t, Bucket{Label: "Org 02", Count: 3}, top[9])
	for _, b := range top {
		assert.NotContains(t, b.Label, "ubo")
	}
}

func TestTopOrganizationsTiesKeepEncounterOrder(t *testing.T) {
	records := []datanorm.Record{visit("B", 2025, 4, 1), visit("A", 2025, 4, 1), visit("C", 2025, 4, 1), visit("C", 2025, 4, 1)}
	top := TopOrganizations(records, "Cubo", 0)
	assert.Equal(t, []Bucket{{"C", 2}, {"B", 1}, {"A", 1}}, top)
}

func TestTopOrganizationsSkipsBlankNames(t *testing.T) {
	records := []datanorm.Record{visit("", 2025, 4, 1), visit("", 2025, 4, 2), visit("A", 2025, 4, 1)}
	top := TopOrganizations(records, "Cubo", 0)
	assert.Equal(t, []Bucket{{"A", 1}}, top)
}

func TestDaily(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		days  int
	}{
		{"thirty days", 2025, 4, 30},
		{"thirty-one days", 2025, 1, 31},
		{"leap february", 2024, 2, 29},
		{"february", 2025, 2, 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []datanorm.Record{
				visit("A", tt.year, tt.month, 3),
				visit("A", tt.year, tt.month, 3),
				visit("A", tt.year, tt.month, tt.days),
				visit("A", tt.year, tt.month+1, 1),
			}
			series := Daily(records)
			require.Len(t, series, tt.days)

			sum := 0
			for i, b := range series {
				assert.Equal(t, i+1, b.Day)
				assert.Equal(t, i+1, b.Date.Day())
				sum += b.Count
			}
			assert.Equal(t, 3, sum, "only records of the earliest month are counted")
			assert.Equal(t, 0, series[0].Count)
			assert.Equal(t, 2, series[2].Count)
			assert.Equal(t, 1, series[tt.days-1].Count)
		})
	}
}

func TestDailyEmpty(t *testing.T) {
	series := Daily(nil)
	assert.NotNil(t, series)
	assert.Empty(t, series)
}

func TestWeekday(t *testing.T) {
	records := []datanorm.Record{
		visit("A", 2025, 4, 28), // Mon
		visit("A", 2025, 4, 28),
		visit("A", 2025, 5, 4), // Sun
	}
	series := Weekday(records)
	require.Len(t, series, 7)
	assert.Equal(t, Bucket{"Segunda-feira", 2}, series[0])
	assert.Equal(t, Bucket{"Terça-feira", 0}, series[1])
	assert.Equal(t, Bucket{"Domingo", 1}, series[6])
}

func TestConsolidated(t *testing.T) {
	series := Consolidated([]frequency.ConsolidatedRow{{FrequentVisitors: 1, Organizations: 3}, {FrequentVisitors: 4, Organizations: 1}})
	assert.Equal(t, []Bucket{{"1", 3}, {"4", 1}}, series)
}
