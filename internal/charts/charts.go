// Package charts shapes record sets into ready-to-plot series.
package charts

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/ignite/cubo-visits/internal/frequency"
)

// DefaultTopOrganizations is the number of bars in the top-organizations chart.
const DefaultTopOrganizations = 10

// Bucket is one labelled count.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DayBucket is the invitation count of one calendar day.
type DayBucket struct {
	Date  time.Time `json:"date"`
	Day   int       `json:"day"`
	Count int       `json:"count"`
}

// TopOrganizations counts invitations per organization, leaving out blank
// names and any name that contains the venue name, and returns the limit
// largest counts.
func TopOrganizations(records []datanorm.Record, venue string, limit int) []Bucket {
	if limit <= 0 {
		limit = DefaultTopOrganizations
	}
	venueKey := datanorm.Fold(venue)

	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		if r.ClientName == "" {
			continue
		}
		if venueKey != "" && strings.Contains(datanorm.Fold(r.ClientName), venueKey) {
			continue
		}
		if _, ok := counts[r.ClientName]; !ok {
			order = append(order, r.ClientName)
		}
		counts[r.ClientName]++
	}

	out := make([]Bucket, 0, len(order))
	for _, name := range order {
		out = append(out, Bucket{Label: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Daily returns one bucket per day of the month of the earliest record,
// including days without invitations. Records outside that month are not counted.
func Daily(records []datanorm.Record) []DayBucket {
	if len(records) == 0 {
		return []DayBucket{}
	}
	earliest := records[0].InviteDate
	for _, r := range records[1:] {
		if r.InviteDate.Before(earliest) {
			earliest = r.InviteDate
		}
	}
	year, month := earliest.Year(), earliest.Month()
	days := DaysIn(year, month)

	out := make([]DayBucket, days)
	for d := 1; d <= days; d++ {
		out[d-1] = DayBucket{Date: time.Date(year, month, d, 0, 0, 0, 0, time.UTC), Day: d}
	}
	for _, r := range records {
		if r.Year == year && r.Month == int(month) {
			out[r.Day-1].Count++
		}
	}
	return out
}

// DaysIn returns the number of days of month in year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Weekday returns seven buckets, Monday to Sunday, zero-filled.
func Weekday(records []datanorm.Record) []Bucket {
	out := make([]Bucket, len(datanorm.WeekdayNames))
	for i, name := range datanorm.WeekdayNames {
		out[i] = Bucket{Label: name}
	}
	for _, r := range records {
		out[r.WeekdayIndex].Count++
	}
	return out
}

// Consolidated turns consolidation rows into bars labelled by the
// frequent-visitor count.
func Consolidated(rows []frequency.ConsolidatedRow) []Bucket {
	out := make([]Bucket, len(rows))
	for i, r := range rows {
		out[i] = Bucket{Label: strconv.Itoa(r.FrequentVisitors), Count: r.Organizations}
	}
	return out
}
