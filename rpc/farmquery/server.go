// Package farmquery serves read-only JSON views of the liquidity mining state.
package farmquery

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	lm "farmchain/native/liquiditymining"
	"farmchain/native/xykmining"
	"farmchain/observability/eventlog"
)

// Reader is the committed-state view served by the API.
type Reader interface {
	GlobalFarm(id lm.FarmID) (*lm.GlobalFarm, error)
	YieldFarm(globalFarmID lm.FarmID, pair xykmining.AssetPair, id lm.FarmID) (*lm.YieldFarm, error)
	Deposit(id lm.DepositID) (*lm.Deposit, [20]byte, error)
	Digest() (string, error)
}

// EventSource lists indexed events.
type EventSource interface {
	List(ctx context.Context, filter eventlog.Filter) ([]eventlog.Record, error)
}

type Config struct {
	Reader Reader
	// Events is optional; /v1/events is only mounted when set.
	Events   EventSource
	Gatherer prometheus.Gatherer
	Limits   RateLimit
	Logger   *slog.Logger
}

type server struct {
	reader Reader
	events EventSource
	logger *slog.Logger
}

const maxEventPage = 500

// New builds the query router.
func New(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &server{reader: cfg.Reader, events: cfg.Events, logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1", func(sr chi.Router) {
		sr.Use(NewRateLimiter(cfg.Limits, logger).Middleware)
		sr.Get("/global-farms/{id}", s.handleGlobalFarm)
		sr.Get("/yield-farms/{globalFarmID}/{id}", s.handleYieldFarm)
		sr.Get("/deposits/{id}", s.handleDeposit)
		sr.Get("/state/digest", s.handleDigest)
		if s.events != nil {
			sr.Get("/events", s.handleEvents)
		}
	})
	return otelhttp.NewHandler(r, "farmquery")
}

func (s *server) handleGlobalFarm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUint(w, chi.URLParam(r, "id"), 32)
	if !ok {
		return
	}
	farm, err := s.reader.GlobalFarm(lm.FarmID(id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGlobalFarmView(farm))
}

func (s *server) handleYieldFarm(w http.ResponseWriter, r *http.Request) {
	globalID, ok := parseUint(w, chi.URLParam(r, "globalFarmID"), 32)
	if !ok {
		return
	}
	id, ok := parseUint(w, chi.URLParam(r, "id"), 32)
	if !ok {
		return
	}
	assetIn, ok := parseUint(w, r.URL.Query().Get("assetIn"), 32)
	if !ok {
		return
	}
	assetOut, ok := parseUint(w, r.URL.Query().Get("assetOut"), 32)
	if !ok {
		return
	}
	pair := xykmining.AssetPair{AssetIn: lm.AssetID(assetIn), AssetOut: lm.AssetID(assetOut)}
	farm, err := s.reader.YieldFarm(lm.FarmID(globalID), pair, lm.FarmID(id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newYieldFarmView(farm))
}

func (s *server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUint(w, chi.URLParam(r, "id"), 64)
	if !ok {
		return
	}
	deposit, owner, err := s.reader.Deposit(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDepositView(deposit, owner))
}

func (s *server) handleDigest(w http.ResponseWriter, r *http.Request) {
	digest, err := s.reader.Digest()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"digest": digest})
}

func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := eventlog.Filter{
		Type:         query.Get("type"),
		GlobalFarmID: query.Get("globalFarmId"),
		DepositID:    query.Get("depositId"),
		Limit:        100,
	}
	if raw := query.Get("limit"); raw != "" {
		limit, ok := parseUint(w, raw, 32)
		if !ok {
			return
		}
		filter.Limit = int(min(limit, maxEventPage))
	}
	records, err := s.events.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]eventView, 0, len(records))
	for _, record := range records {
		evt, err := record.Event()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out = append(out, eventView{ID: record.ID.String(), Seq: record.Seq, Type: evt.Type, Attributes: evt.Attributes})
	}
	writeJSON(w, http.StatusOK, out)
}

func parseUint(w http.ResponseWriter, raw string, bits int) (uint64, bool) {
	value, err := strconv.ParseUint(raw, 10, bits)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid numeric parameter " + strconv.Quote(raw)})
		return 0, false
	}
	return value, true
}

func isNotFound(err error) bool {
	return errors.Is(err, lm.ErrGlobalFarmNotFound) ||
		errors.Is(err, lm.ErrYieldFarmNotFound) ||
		errors.Is(err, lm.ErrDepositNotFound)
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if isNotFound(err) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	s.logger.Error("query failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
