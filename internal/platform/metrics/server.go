// internal/platform/metrics/server.go
package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ingestrouter/internal/platform/errors"
	"ingestrouter/internal/platform/logx"
)

// Server expone /metrics y /health.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger logx.Logger
}

// Handler retorna el mux con /metrics para gatherer y /health.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// Start escucha en addr y sirve en segundo plano.
func Start(addr string, gatherer prometheus.Gatherer, logger logx.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}

	s := &Server{
		srv: &http.Server{
			Handler:           Handler(gatherer),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:     ln,
		logger: logger.With("component", "metrics"),
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Err(err, "msg", "metrics server stopped")
		}
	}()

	s.logger.Info("metrics server listening", "addr", ln.Addr().String())
	return s, nil
}

// Addr retorna la dirección efectiva (útil con puerto 0).
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown detiene el servidor.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
