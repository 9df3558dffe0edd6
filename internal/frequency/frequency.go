// Package frequency finds visitors who keep coming back to the same
// organization and rolls them up per organization.
package frequency

import (
	"sort"
	"strings"

	"github.com/ignite/cubo-visits/internal/datanorm"
)

// DefaultThreshold is the visit count a visitor must exceed to be frequent.
const DefaultThreshold = 4

// PanelSeparator joins organization names inside a panel group.
const PanelSeparator = ", "

// Row is one frequent visitor of one organization.
type Row struct {
	Organization string `json:"organization"`
	VisitorEmail string `json:"visitor_email"`
	Visits       int    `json:"visits"`
}

// ConsolidatedRow counts organizations sharing the same number of frequent visitors.
type ConsolidatedRow struct {
	FrequentVisitors int `json:"frequent_visitors"`
	Organizations    int `json:"organizations"`
}

// PanelGroup lists the organizations that have FrequentVisitors frequent visitors.
type PanelGroup struct {
	FrequentVisitors int      `json:"frequent_visitors"`
	Organizations    []string `json:"organizations"`
	Label            string   `json:"label"`
}

type visitorKey struct {
	org   string
	email string
}

// FrequentVisitors groups records by organization and visitor e-mail and keeps
// the pairs with more than threshold visits, most visits first. Pairs with the
// same count keep the order in which they were first seen. Records without an
// organization or e-mail cannot be grouped and are skipped.
func FrequentVisitors(records []datanorm.Record, threshold int) []Row {
	counts := make(map[visitorKey]int)
	var order []visitorKey
	for _, r := range records {
		if r.ClientName == "" || r.VisitorEmail == "" {
			continue
		}
		k := visitorKey{org: r.ClientName, email: r.VisitorEmail}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}

	rows := make([]Row, 0)
	for _, k := range order {
		if n := counts[k]; n > threshold {
			rows = append(rows, Row{Organization: k.org, VisitorEmail: k.email, Visits: n})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Visits > rows[j].Visits })
	return rows
}

// perOrganization counts frequent visitors per organization in first-seen order.
func perOrganization(rows []Row) ([]string, map[string]int) {
	counts := make(map[string]int)
	var orgs []string
	for _, r := range rows {
		if _, ok := counts[r.Organization]; !ok {
			orgs = append(orgs, r.Organization)
		}
		counts[r.Organization]++
	}
	return orgs, counts
}

// Consolidate groups organizations by how many frequent visitors each has and
// counts the organizations per group, ascending by frequent-visitor count.
func Consolidate(rows []Row) []ConsolidatedRow {
	_, perOrg := perOrganization(rows)
	byCount := make(map[int]int)
	for _, n := range perOrg {
		byCount[n]++
	}

	out := make([]ConsolidatedRow, 0, len(byCount))
	for n, orgs := range byCount {
		out = append(out, ConsolidatedRow{FrequentVisitors: n, Organizations: orgs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FrequentVisitors < out[j].FrequentVisitors })
	return out
}

// PanelView lists organization names per frequent-visitor count, ascending.
// Names inside a group are sorted alphabetically.
func PanelView(rows []Row) []PanelGroup {
	orgs, perOrg := perOrganization(rows)
	groups := make(map[int][]string)
	for _, org := range orgs {
		n := perOrg[org]
		groups[n] = append(groups[n], org)
	}

	out := make([]PanelGroup, 0, len(groups))
	for n, names := range groups {
		sort.Strings(names)
		out = append(out, PanelGroup{
			FrequentVisitors: n,
			Organizations:    names,
			Label:            strings.Join(names, PanelSeparator),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FrequentVisitors < out[j].FrequentVisitors })
	return out
}
