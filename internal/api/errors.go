package api

import (
	"errors"
	"net/http"

	"github.com/ignite/cubo-visits/internal/dashboard"
	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/ignite/cubo-visits/internal/ingest"
	"github.com/ignite/cubo-visits/internal/pkg/httputil"
	"github.com/ignite/cubo-visits/internal/session"
)

// Error codes carried in the JSON envelope.
const (
	codeNoData            = "no_data"
	codeMissingColumns    = "missing_columns"
	codePeriodUnavailable = "period_unavailable"
	codeUnsupportedFormat = "unsupported_format"
	codeIngestFailed      = "ingest_failed"
	codeIngestInProgress  = "ingest_in_progress"
)

// errNoUsableRows is returned when every row of an upload was dropped.
var errNoUsableRows = errors.New("no row has a readable invite date")

func (h *Handlers) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, session.ErrEmpty), errors.Is(err, dashboard.ErrNoRecords):
		httputil.ErrorWithCode(w, http.StatusConflict, codeNoData, err.Error(), nil)
	default:
		httputil.InternalError(w, err)
	}
}

func (h *Handlers) respondPipelineError(w http.ResponseWriter, err error) {
	if errors.Is(err, dashboard.ErrPeriodUnavailable) {
		httputil.ErrorWithCode(w, http.StatusUnprocessableEntity, codePeriodUnavailable, err.Error(), nil)
		return
	}
	h.respondStoreError(w, err)
}

// respondIngestError maps a failed upload or paste. 4xx messages describe the
// user's input and are safe to return verbatim.
func (h *Handlers) respondIngestError(w http.ResponseWriter, err error) {
	var missing *datanorm.MissingColumnsError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &missing):
		httputil.ErrorWithCode(w, http.StatusUnprocessableEntity, codeMissingColumns, err.Error(), missing.Columns)
	case errors.As(err, &tooLarge):
		httputil.Error(w, http.StatusRequestEntityTooLarge, "upload exceeds the configured size limit")
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		httputil.ErrorWithCode(w, http.StatusBadRequest, codeUnsupportedFormat, err.Error(), nil)
	case errors.Is(err, session.ErrNotFound):
		httputil.NotFound(w, err.Error())
	default:
		httputil.ErrorWithCode(w, http.StatusBadRequest, codeIngestFailed, err.Error(), nil)
	}
}
