// Package dashboard composes the pipeline outputs for one render pass.
//
// The headline cards are always computed over the full dataset while every
// chart and table uses the period-filtered set. Both feed the slide export,
// so the asymmetry lives here and nowhere else.
package dashboard

import (
	"errors"

	"github.com/ignite/cubo-visits/internal/charts"
	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/ignite/cubo-visits/internal/frequency"
	"github.com/ignite/cubo-visits/internal/metrics"
)

var (
	ErrNoRecords         = errors.New("no records loaded")
	ErrPeriodUnavailable = errors.New("period data unavailable")
)

// WarningEmptyPeriod is attached to a view whose filtered set is empty.
const WarningEmptyPeriod = "no data for the selected period"

// Options carries the configurable business constants.
type Options struct {
	VenueOperator     string
	FrequentThreshold int
	TopOrganizations  int
}

// DefaultOptions mirrors the defaults of the config package.
func DefaultOptions() Options {
	return Options{
		VenueOperator:     metrics.DefaultVenueOperator,
		FrequentThreshold: frequency.DefaultThreshold,
		TopOrganizations:  charts.DefaultTopOrganizations,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.VenueOperator == "" {
		o.VenueOperator = d.VenueOperator
	}
	if o.FrequentThreshold <= 0 {
		o.FrequentThreshold = d.FrequentThreshold
	}
	if o.TopOrganizations <= 0 {
		o.TopOrganizations = d.TopOrganizations
	}
	return o
}

// Filter is the UI selection. Zero Year or Month selects the first option of
// that selector.
type Filter struct {
	Year         int                         `json:"year"`
	Month        int                         `json:"month"`
	Organization string                      `json:"organization,omitempty"`
	Notification datanorm.NotificationFilter `json:"notification,omitempty"`
}

// Periods lists the selector options: years newest first, months ascending.
type Periods struct {
	Years         []int    `json:"years"`
	Months        []int    `json:"months"`
	Organizations []string `json:"organizations"`
}

// View is everything one render needs.
type View struct {
	Filter  Filter          `json:"filter"`
	Periods Periods         `json:"periods"`
	Cards   metrics.Summary `json:"cards"`
	Warning string          `json:"warning,omitempty"`

	FilteredCount    int                         `json:"filtered_count"`
	TopOrganizations []charts.Bucket             `json:"top_organizations"`
	Daily            []charts.DayBucket          `json:"daily"`
	Weekday          []charts.Bucket             `json:"weekday"`
	FrequentVisitors []frequency.Row             `json:"frequent_visitors"`
	Consolidated     []frequency.ConsolidatedRow `json:"consolidated"`
	ConsolidatedBars []charts.Bucket             `json:"consolidated_bars"`
	Panel            []frequency.PanelGroup      `json:"panel"`
}

// PeriodOptions returns the selector options, or ErrPeriodUnavailable when
// the records carry no period at all.
func PeriodOptions(records []datanorm.Record) (Periods, error) {
	p := Periods{
		Years:         datanorm.Years(records),
		Months:        datanorm.Months(records),
		Organizations: datanorm.Organizations(records),
	}
	if len(p.Years) == 0 || len(p.Months) == 0 {
		return p, ErrPeriodUnavailable
	}
	return p, nil
}

// Resolve fills a zero year or month with the first selector option.
func (f Filter) Resolve(p Periods) Filter {
	if f.Year == 0 && len(p.Years) > 0 {
		f.Year = p.Years[0]
	}
	if f.Month == 0 && len(p.Months) > 0 {
		f.Month = p.Months[0]
	}
	return f
}

// Apply returns the filtered subset used by charts and tables.
func (f Filter) Apply(records []datanorm.Record) []datanorm.Record {
	out := datanorm.FilterPeriod(records, f.Year, f.Month)
	if f.Organization != "" {
		out = datanorm.FilterOrganization(out, f.Organization)
	}
	if f.Notification != datanorm.NotificationAny {
		out = datanorm.FilterNotification(out, f.Notification)
	}
	return out
}

// Build runs one full recomputation over records.
func Build(records []datanorm.Record, filter Filter, opts Options) (*View, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	opts = opts.withDefaults()

	periods, err := PeriodOptions(records)
	if err != nil {
		return nil, err
	}
	filter = filter.Resolve(periods)

	view := &View{
		Filter:  filter,
		Periods: periods,
		Cards:   metrics.Compute(records, opts.VenueOperator),
	}

	filtered := filter.Apply(records)
	view.FilteredCount = len(filtered)
	if len(filtered) == 0 {
		view.Warning = WarningEmptyPeriod
		view.TopOrganizations = []charts.Bucket{}
		view.Daily = []charts.DayBucket{}
		view.Weekday = []charts.Bucket{}
		view.FrequentVisitors = []frequency.Row{}
		view.Consolidated = []frequency.ConsolidatedRow{}
		view.ConsolidatedBars = []charts.Bucket{}
		view.Panel = []frequency.PanelGroup{}
		return view, nil
	}

	view.TopOrganizations = charts.TopOrganizations(filtered, opts.VenueOperator, opts.TopOrganizations)
	view.Daily = charts.Daily(filtered)
	view.Weekday = charts.Weekday(filtered)
	view.FrequentVisitors = frequency.FrequentVisitors(filtered, opts.FrequentThreshold)
	view.Consolidated = frequency.Consolidate(view.FrequentVisitors)
	view.ConsolidatedBars = charts.Consolidated(view.Consolidated)
	view.Panel = frequency.PanelView(view.FrequentVisitors)
	return view, nil
}
