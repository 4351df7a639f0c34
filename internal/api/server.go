package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"GaugeKeeper/internal/gauge"
	"GaugeKeeper/internal/metrics"
	"GaugeKeeper/internal/recorder"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the gauge ledger over HTTP.
type Server struct {
	Ledger   *gauge.Ledger
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Now      func() uint64

	gatherer prometheus.Gatherer
	log      *zap.Logger
}

// NewServer creates a Server. gatherer backs the /metrics endpoint.
func NewServer(l *gauge.Ledger, rec recorder.Recorder, m *metrics.Metrics, gatherer prometheus.Gatherer, log *zap.Logger) *Server {
	return &Server{
		Ledger:   l,
		Recorder: rec,
		Metrics:  m,
		Now:      func() uint64 { return uint64(time.Now().Unix()) },
		gatherer: gatherer,
		log:      log.Named("api"),
	}
}

// Router returns the HTTP routes of the server.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/supply", s.getSupply).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{addr}", s.getAccount).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{addr}/deposit", s.deposit).Methods(http.MethodPost)
	v1.HandleFunc("/accounts/{addr}/withdraw", s.withdraw).Methods(http.MethodPost)
	v1.HandleFunc("/accounts/{addr}/poke", s.poke).Methods(http.MethodPost)
	v1.HandleFunc("/accounts/{addr}/kick", s.kick).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	s.log.Info("stopped")
	return nil
}
