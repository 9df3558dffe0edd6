package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/cubo-visits/internal/config"
	"github.com/ignite/cubo-visits/internal/dashboard"
	"github.com/ignite/cubo-visits/internal/datanorm"
	"github.com/ignite/cubo-visits/internal/pkg/distlock"
	"github.com/ignite/cubo-visits/internal/pkg/httputil"
	"github.com/ignite/cubo-visits/internal/pkg/logger"
	"github.com/ignite/cubo-visits/internal/pkg/telemetry"
	"github.com/ignite/cubo-visits/internal/session"
)

// ingestLockTTL bounds how long a crashed ingestion can block its session.
const ingestLockTTL = 2 * time.Minute

// Handlers contains all HTTP handlers
type Handlers struct {
	store     session.Store
	redis     *redis.Client
	metrics   *telemetry.Metrics
	archiver  Archiver
	dashboard config.DashboardConfig
	maxUpload int64
	log       *logger.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(cfg *config.Config, deps Deps) *Handlers {
	return &Handlers{
		store:     deps.Store,
		redis:     deps.Redis,
		metrics:   deps.Metrics,
		archiver:  deps.Archiver,
		dashboard: cfg.Dashboard,
		maxUpload: cfg.Upload.MaxBytes(),
		log:       logger.With("component", "api"),
	}
}

func (h *Handlers) options() dashboard.Options {
	return dashboard.Options{
		VenueOperator:     h.dashboard.VenueOperator,
		FrequentThreshold: h.dashboard.FrequentThreshold,
		TopOrganizations:  h.dashboard.TopOrganizations,
	}
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

// requireSession answers 404 for ids that were never issued or have expired.
// A session without data yet is fine.
func (h *Handlers) requireSession(ctx context.Context, w http.ResponseWriter, id string) bool {
	if !session.ValidID(id) {
		httputil.NotFound(w, session.ErrNotFound.Error())
		return false
	}
	if _, err := h.store.Load(ctx, id); err != nil && !errors.Is(err, session.ErrEmpty) {
		h.respondStoreError(w, err)
		return false
	}
	return true
}

// loadRecords returns the session's current record set or writes the error.
func (h *Handlers) loadRecords(w http.ResponseWriter, r *http.Request) ([]datanorm.Record, bool) {
	id := sessionID(r)
	if !session.ValidID(id) {
		httputil.NotFound(w, session.ErrNotFound.Error())
		return nil, false
	}
	records, err := h.store.Load(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err)
		return nil, false
	}
	return records, true
}

// ingestLock serializes uploads and pastes into one session.
func (h *Handlers) ingestLock(id string) distlock.DistLock {
	return distlock.NewLock(h.redis, "ingest:"+id, ingestLockTTL)
}

// acquireIngest takes the session's ingestion lock. On success the caller
// must run the returned release func.
func (h *Handlers) acquireIngest(w http.ResponseWriter, r *http.Request, id string) (func(), bool) {
	lock := h.ingestLock(id)
	ok, err := lock.Acquire(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return nil, false
	}
	if !ok {
		httputil.ErrorWithCode(w, http.StatusConflict, codeIngestInProgress,
			"another upload for this session is still being processed", nil)
		return nil, false
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(ctx); err != nil {
			h.log.Warn("failed to release ingestion lock", "session", id, "error", err)
		}
	}, true
}
