// Package metrics computes the scalar dashboard cards over a record set.
//
// Every function works on exactly the slice it is given. Callers choose the
// set: headline cards use the full dataset, charts use the period-filtered one.
package metrics

import (
	"math"

	"github.com/ignite/cubo-visits/internal/datanorm"
)

// DefaultVenueOperator is the reserved organization name of the venue itself.
const DefaultVenueOperator = "Cubo"

// Card labels, in display order.
const (
	LabelTotalInvites   = "Total de Convites"
	LabelNotified       = "Anfitriões Notificados"
	LabelNotNotified    = "Não Notificados"
	LabelVenueGuests    = "Convidados Cubo"
	LabelAvgBusinessDay = "Média por Dia Útil"
)

// Summary bundles the five headline cards.
type Summary struct {
	TotalInvites          int `json:"total_invites"`
	NotifiedCount         int `json:"notified_count"`
	NotNotifiedCount      int `json:"not_notified_count"`
	VenueGuestCount       int `json:"venue_guest_count"`
	AveragePerBusinessDay int `json:"average_per_business_day"`
}

// Card is one labelled value.
type Card struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Cards returns the summary as labelled values in display order.
func (s Summary) Cards() []Card {
	return []Card{
		{LabelTotalInvites, s.TotalInvites},
		{LabelNotified, s.NotifiedCount},
		{LabelNotNotified, s.NotNotifiedCount},
		{LabelVenueGuests, s.VenueGuestCount},
		{LabelAvgBusinessDay, s.AveragePerBusinessDay},
	}
}

// Compute evaluates every card over records.
func Compute(records []datanorm.Record, venue string) Summary {
	return Summary{
		TotalInvites:          TotalInvites(records),
		NotifiedCount:         NotifiedCount(records),
		NotNotifiedCount:      NotNotifiedCount(records),
		VenueGuestCount:       VenueGuestCount(records, venue),
		AveragePerBusinessDay: AveragePerBusinessDay(records),
	}
}

// TotalInvites is the number of invitation records.
func TotalInvites(records []datanorm.Record) int { return len(records) }

// NotifiedCount counts records whose host flag folds to "sim".
func NotifiedCount(records []datanorm.Record) int {
	return countFlag(records, datanorm.FlagYes)
}

// NotNotifiedCount counts records whose host flag folds to "não".
func NotNotifiedCount(records []datanorm.Record) int {
	return countFlag(records, datanorm.FlagNo)
}

func countFlag(records []datanorm.Record, flag string) int {
	n := 0
	for _, r := range records {
		if datanorm.Fold(r.HostNotified) == flag {
			n++
		}
	}
	return n
}

// VenueGuestCount counts invitations whose organization equals the venue name.
func VenueGuestCount(records []datanorm.Record, venue string) int {
	if venue == "" {
		venue = DefaultVenueOperator
	}
	key := datanorm.Fold(venue)
	n := 0
	for _, r := range records {
		if datanorm.Fold(r.ClientName) == key {
			n++
		}
	}
	return n
}

// AveragePerBusinessDay is the number of Monday–Friday invitations divided by
// the number of distinct Monday–Friday dates, rounded half to even. It is 0
// when no business day is present.
func AveragePerBusinessDay(records []datanorm.Record) int {
	days := make(map[[3]int]struct{})
	count := 0
	for _, r := range records {
		if !r.IsBusinessDay() {
			continue
		}
		count++
		days[[3]int{r.Year, r.Month, r.Day}] = struct{}{}
	}
	if len(days) == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(count) / float64(len(days))))
}
