package api

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/ignite/cubo-visits/internal/dashboard"
	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/ignite/cubo-visits/internal/ingest"
	"github.com/ignite/cubo-visits/internal/pkg/httputil"
	"github.com/ignite/cubo-visits/internal/pkg/telemetry"
)

// Ingestion sources, used as the metrics label.
const (
	sourceUpload = "upload"
	sourcePaste  = "paste"
)

// multipartMemory is kept in memory before spilling upload parts to disk.
const multipartMemory = 8 << 20

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type ingestResponse struct {
	Source  string            `json:"source"`
	Format  string            `json:"format,omitempty"`
	Rows    int               `json:"rows"`
	Kept    int               `json:"kept"`
	Dropped int               `json:"dropped"`
	Periods dashboard.Periods `json:"periods"`
}

// CreateSession starts an empty dashboard session.
//
//	POST /api/sessions
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := h.store.Create(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	h.log.Info("session created", "session", id)
	httputil.Created(w, sessionResponse{SessionID: id})
}

// DeleteSession drops a session and its records.
//
//	DELETE /api/sessions/{sessionID}
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.log.Info("session deleted", "session", id)
	httputil.NoContent(w)
}

// Upload replaces the session's records with an uploaded spreadsheet.
//
//	POST /api/sessions/{sessionID}/upload   (multipart field "file")
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if !h.requireSession(r.Context(), w, id) {
		return
	}
	release, ok := h.acquireIngest(w, r, id)
	if !ok {
		return
	}
	defer release()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.metrics.Ingestion(sourceUpload, telemetry.OutcomeReadError, 0, 0)
		h.respondIngestError(w, fmt.Errorf("read upload: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.metrics.Ingestion(sourceUpload, telemetry.OutcomeReadError, 0, 0)
		httputil.BadRequest(w, `multipart field "file" is required`)
		return
	}
	defer file.Close()

	raw, format, err := ingest.ReadFile(file, header.Filename)
	if err != nil {
		h.metrics.Ingestion(sourceUpload, telemetry.OutcomeReadError, 0, 0)
		h.log.Warn("upload rejected", "session", id, "filename", header.Filename, "error", err)
		h.respondIngestError(w, err)
		return
	}
	h.replace(w, r, id, sourceUpload, string(format), raw)
}

type pasteRequest struct {
	Text string `json:"text"`
}

// Paste replaces the session's records with tab-separated text copied from a
// spreadsheet. The body is the raw text, or JSON {"text": "..."}.
//
//	POST /api/sessions/{sessionID}/paste
func (h *Handlers) Paste(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if !h.requireSession(r.Context(), w, id) {
		return
	}
	release, ok := h.acquireIngest(w, r, id)
	if !ok {
		return
	}
	defer release()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	var text string
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		var req pasteRequest
		if !httputil.Decode(w, r, &req) {
			h.metrics.Ingestion(sourcePaste, telemetry.OutcomeReadError, 0, 0)
			return
		}
		text = req.Text
	} else {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.metrics.Ingestion(sourcePaste, telemetry.OutcomeReadError, 0, 0)
			h.respondIngestError(w, fmt.Errorf("read body: %w", err))
			return
		}
		text = string(body)
	}

	raw, err := ingest.ReadPasted(text)
	if err != nil {
		h.metrics.Ingestion(sourcePaste, telemetry.OutcomeReadError, 0, 0)
		h.respondIngestError(w, err)
		return
	}
	h.replace(w, r, id, sourcePaste, "", raw)
}

// replace normalizes raw and swaps it in as the session's record set. Any
// failure leaves the previous set untouched.
func (h *Handlers) replace(w http.ResponseWriter, r *http.Request, id, source, format string, raw datanorm.RawTable) {
	records, stats, err := datanorm.NormalizeWithStats(raw)
	if err != nil {
		h.metrics.Ingestion(source, telemetry.OutcomeMissingColumns, 0, 0)
		h.log.Warn("ingestion rejected", "session", id, "source", source, "error", err)
		h.respondIngestError(w, err)
		return
	}
	if len(records) == 0 {
		h.metrics.Ingestion(source, telemetry.OutcomeReadError, 0, stats.Dropped)
		h.respondIngestError(w, errNoUsableRows)
		return
	}

	if err := h.store.Replace(r.Context(), id, records); err != nil {
		h.respondStoreError(w, err)
		return
	}
	h.metrics.Ingestion(source, telemetry.OutcomeOK, stats.Kept, stats.Dropped)

	periods, _ := dashboard.PeriodOptions(records)
	h.log.Info("records replaced",
		"session", id,
		"source", source,
		"rows", stats.TotalRows,
		"kept", stats.Kept,
		"dropped", stats.Dropped,
	)
	httputil.OK(w, ingestResponse{
		Source:  source,
		Format:  format,
		Rows:    stats.TotalRows,
		Kept:    stats.Kept,
		Dropped: stats.Dropped,
		Periods: periods,
	})
}
