package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/cubo-visits/internal/dashboard"
	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/ignite/cubo-visits/internal/export"
	"github.com/ignite/cubo-visits/internal/pkg/httputil"
)

// archiveTimeout bounds the S3 copy so a slow bucket never blocks a download.
const archiveTimeout = 15 * time.Second

// exportInput resolves the filter and both record sets for an export.
func (h *Handlers) exportInput(w http.ResponseWriter, r *http.Request) (full, filtered []datanorm.Record, filter dashboard.Filter, ok bool) {
	filter, err := parseFilter(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return nil, nil, filter, false
	}
	full, ok = h.loadRecords(w, r)
	if !ok {
		return nil, nil, filter, false
	}
	if len(full) == 0 {
		h.respondStoreError(w, dashboard.ErrNoRecords)
		return nil, nil, filter, false
	}
	periods, err := dashboard.PeriodOptions(full)
	if err != nil {
		h.respondPipelineError(w, err)
		return nil, nil, filter, false
	}
	filter = filter.Resolve(periods)
	return full, filter.Apply(full), filter, true
}

// ExportDeck downloads the dashboard as a slide deck.
//
//	GET /api/sessions/{sessionID}/export/deck
func (h *Handlers) ExportDeck(w http.ResponseWriter, r *http.Request) {
	full, filtered, filter, ok := h.exportInput(w, r)
	if !ok {
		return
	}

	deck, err := export.BuildDeck(full, filtered, export.DeckOptions{
		Title:            h.dashboard.Title,
		Year:             filter.Year,
		Month:            filter.Month,
		VenueOperator:    h.dashboard.VenueOperator,
		TopOrganizations: h.dashboard.TopOrganizations,
	})
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	data, err := deck.Bytes()
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	h.metrics.Export("deck")
	filename := "dashboard_cubo.pptx"
	h.archive(r.Context(), w, sessionID(r)+"-"+filename, data, export.ContentTypeDeck)
	httputil.Attachment(w, filename, export.ContentTypeDeck, data)
}

// ExportWorkbook downloads the period tables as a workbook.
//
//	GET /api/sessions/{sessionID}/export/workbook
func (h *Handlers) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	_, filtered, filter, ok := h.exportInput(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, filtered, export.WorkbookOptions{
		FrequentThreshold: h.dashboard.FrequentThreshold,
	}); err != nil {
		httputil.InternalError(w, err)
		return
	}

	h.metrics.Export("workbook")
	filename := fmt.Sprintf("visitas_cubo_%d_%02d.xlsx", filter.Year, filter.Month)
	h.archive(r.Context(), w, sessionID(r)+"-"+filename, buf.Bytes(), export.ContentTypeWorkbook)
	httputil.Attachment(w, filename, export.ContentTypeWorkbook, buf.Bytes())
}

// archive copies an export when archival is configured. Failures are logged
// and never fail the download.
func (h *Handlers) archive(ctx context.Context, w http.ResponseWriter, name string, data []byte, contentType string) {
	if h.archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	key, err := h.archiver.Archive(ctx, name, data, contentType)
	if err != nil {
		h.log.Warn("export archive failed", "name", name, "error", err)
		return
	}
	w.Header().Set("X-Archive-Key", key)
}
