// Package apilog records one audit event per request: what was asked, by
// whom, and how it ended. Events go to the access_log table and the webapi
// topic, both best-effort so audit plumbing never fails a request.
package apilog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/otcheredev/dicomweb-store/internal/broker"
	"github.com/otcheredev/dicomweb-store/internal/dbtypes"
	"github.com/otcheredev/dicomweb-store/internal/middleware"
	"github.com/otcheredev/dicomweb-store/internal/models"
	"github.com/otcheredev/dicomweb-store/internal/repository"
)

// Recorder builds the middleware.
type Recorder struct {
	repo      *repository.AccessLogRepository
	publisher broker.Publisher
}

// NewRecorder wires the sinks. publisher may be nil when no broker is
// configured.
func NewRecorder(repo *repository.AccessLogRepository, publisher broker.Publisher) *Recorder {
	return &Recorder{repo: repo, publisher: publisher}
}

// statusWriter captures what the handler sent.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

// RedactHeaders drops every header whose lower-cased name contains
// "authorization" or "cookie" and flattens the rest to single values.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "authorization") || strings.Contains(lower, "cookie") {
			continue
		}
		if len(values) > 0 {
			out[lower] = values[0]
		}
	}
	return out
}

var lastRequestNano atomic.Int64

// requestID is monotonically increasing nanosecond wall time, hex-rendered.
// When the clock repeats or steps back, the previous id plus one is used.
func requestID() string {
	now := time.Now().UnixNano()
	for {
		last := lastRequestNano.Load()
		next := now
		if next <= last {
			next = last + 1
		}
		if lastRequestNano.CompareAndSwap(last, next) {
			return fmt.Sprintf("%x", next)
		}
	}
}

// Middleware records the request on entry and completes the event when the
// handler returns.
func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := requestID()

		headerBag, err := json.Marshal(RedactHeaders(r.Header))
		if err != nil {
			headerBag = []byte("{}")
		}

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		tenantID, _ := middleware.GetTenantID(r.Context())
		claims := middleware.GetClaims(r.Context())

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}
		contentLength := sw.Header().Get("Content-Length")
		if contentLength == "" {
			contentLength = strconv.FormatInt(sw.bytes, 10)
		}

		event := models.AccessLogEvent{
			Timestamp:     start.UTC(),
			TenantID:      dbtypes.Make[dbtypes.Len64](tenantID),
			RequestID:     reqID,
			Method:        dbtypes.Make[dbtypes.Len10](r.Method),
			Path:          dbtypes.Make[dbtypes.Len512](r.URL.Path),
			Query:         r.URL.RawQuery,
			PeerAddr:      dbtypes.Make[dbtypes.Len45](r.RemoteAddr),
			Headers:       string(headerBag),
			User:          dbtypes.Make[dbtypes.Len128](claims.Username()),
			UserID:        dbtypes.Make[dbtypes.Len64](claims.UserID()),
			Status:        status,
			ContentLength: contentLength,
			DurationMs:    time.Since(start).Milliseconds(),
		}

		go rec.record(event)
	})
}

// record ships the event to both sinks. Neither failure affects the request.
func (rec *Recorder) record(event models.AccessLogEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if rec.repo != nil {
		if err := rec.repo.Create(ctx, &event); err != nil {
			log.Debug().Err(err).Msg("access log insert failed")
		}
	}
	if rec.publisher != nil {
		if err := rec.publisher.SendWebAPI(ctx, []models.AccessLogEvent{event}); err != nil {
			log.Debug().Err(err).Msg("access log publish failed")
		}
	}
}
