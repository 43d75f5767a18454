package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"spamguard/pkg/metrics"
	"spamguard/pkg/models"
	"spamguard/pkg/rewrite"
)

type API struct {
	ServiceName string

	r  *mux.Router
	rw *rewrite.Rewriter
	kw *kafka.Writer

	// in-flight request log sends
	logs sync.WaitGroup
}

func New(name string, rw *rewrite.Rewriter, kafkaWriter *kafka.Writer) (*API, error) {
	api := API{
		ServiceName: name,
		r:           mux.NewRouter(),
		rw:          rw,
		kw:          kafkaWriter,
	}
	api.endpoints()

	return &api, nil
}

func (api *API) Router() *mux.Router {
	return api.r
}

// WaitLogs blocks until every request log entry handed to Kafka so far has
// been written or has failed. Call it after the HTTP server has shut down
// and before closing the Kafka writer.
func (api *API) WaitLogs() {
	api.logs.Wait()
}

func (api *API) endpoints() {
	api.r.Use(api.requestIDMiddleware)
	if api.kw != nil {
		api.r.Use(api.loggingMiddleware(api.kw))
	}
	api.r.Use(api.recoverMiddleware)
	api.r.Use(api.headerMiddleware)

	api.r.HandleFunc("/highlight-spam", api.highlightSpam).Methods(http.MethodPost, http.MethodOptions)
	api.r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

func (api *API) highlightSpam(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	reqID := GetRequestID(r.Context())
	sID := shorten(reqID)

	var req models.HighlightRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		metrics.RequestsTotal.WithLabelValues("unknown", metrics.OutcomeBadRequest).Inc()
		log.Debugf("[highlightSpam][%s] failed to decode request body: %v", sID, err)
		return
	}
	defer r.Body.Close()

	kind := rewrite.KindOf(req.IsHTML)
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "No text provided")
		metrics.RequestsTotal.WithLabelValues(kind.String(), metrics.OutcomeBadRequest).Inc()
		log.Debugf("[highlightSpam][%s] request without text", sID)
		return
	}

	res, err := api.rw.Rewrite(r.Context(), kind, req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		metrics.RequestsTotal.WithLabelValues(kind.String(), metrics.OutcomeServerError).Inc()
		log.Errorf("[highlightSpam][%s] failed to rewrite %s document: %v", sID, kind, err)
		return
	}

	resp := models.HighlightResponse{
		HighlightedText:  res.Highlighted,
		ReplacedText:     res.Replaced,
		SpamWords:        res.Found,
		HighlightedHTML:  res.HighlightedHTML,
		HighlightedPlain: res.HighlightedPlain,
		ReplacedPlain:    res.ReplacedPlain,
	}

	b, err := json.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		metrics.RequestsTotal.WithLabelValues(kind.String(), metrics.OutcomeServerError).Inc()
		log.Errorf("[highlightSpam][%s] failed to encode response data: %v", sID, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		log.Errorf("[highlightSpam][%s] failed to write response: %v", sID, err)
		return
	}
	metrics.RequestsTotal.WithLabelValues(kind.String(), metrics.OutcomeOK).Inc()
	log.Debugf("[highlightSpam][%s] %s document, %d spam words, response sent to: %v", sID, kind, len(res.Found), r.RemoteAddr)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}

// GetRequestID extracts the request ID from the context.
// It returns the request ID as a string if present, otherwise returns an empty string.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// shorten truncates a string to 6 characters if it is longer than 6, appends '...' at the end,
// otherwise it returns the string unchanged.
func shorten(s string) string {
	if len(s) > 6 {
		return s[:6] + "..."
	}
	return s
}
