package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ignite/cubo-visits/internal/dashboard"
	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/ignite/cubo-visits/internal/pkg/httputil"
)

// parseFilter reads ?year=&month=&organization=&notified=. Missing year or
// month stay zero and resolve to the first selector option.
func parseFilter(r *http.Request) (dashboard.Filter, error) {
	q := r.URL.Query()
	var f dashboard.Filter

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year <= 0 {
			return f, fmt.Errorf("invalid year %q", v)
		}
		f.Year = year
	}
	if v := q.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return f, fmt.Errorf("invalid month %q", v)
		}
		f.Month = month
	}
	f.Organization = q.Get("organization")

	notification, ok := datanorm.ParseNotificationFilter(q.Get("notified"))
	if !ok {
		return f, fmt.Errorf("invalid notified %q: use sim or nao", q.Get("notified"))
	}
	f.Notification = notification
	return f, nil
}

// Periods lists the year, month and organization selector options.
//
//	GET /api/sessions/{sessionID}/periods
func (h *Handlers) Periods(w http.ResponseWriter, r *http.Request) {
	records, ok := h.loadRecords(w, r)
	if !ok {
		return
	}
	periods, err := dashboard.PeriodOptions(records)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	httputil.OK(w, periods)
}

// Dashboard recomputes the full view for the requested filter.
//
//	GET /api/sessions/{sessionID}/dashboard?year=&month=&organization=&notified=
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	records, ok := h.loadRecords(w, r)
	if !ok {
		return
	}

	start := time.Now()
	view, err := dashboard.Build(records, filter, h.options())
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	h.metrics.ObservePipeline(start)
	httputil.OK(w, view)
}
