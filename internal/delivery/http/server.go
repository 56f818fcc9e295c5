package http

import (
	"context"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/tentens-tech/lease-dashboard/internal/application"
)

const (
	AuthTokenHeader = "X-Auth-Token"
	RequestIDHeader = "X-Request-Id"
)

type Server struct {
	app    *application.Application
	Server *http.Server
}

func New(app *application.Application) *Server {
	s := &Server{
		app: app,
	}

	s.Server = &http.Server{}
	if cfg := app.Config; cfg != nil {
		s.Server.ReadTimeout = cfg.Server.Timeout.Read
		s.Server.WriteTimeout = cfg.Server.Timeout.Write
		s.Server.IdleTimeout = cfg.Server.Timeout.Idle
	}

	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /leases", s.withRequest(s.handleLeaseList))
	mux.HandleFunc("POST /leases", s.withRequest(s.handleLeaseCreate))
	mux.HandleFunc("GET /leases/{id}", s.withRequest(s.handleLeaseGet))
	mux.HandleFunc("PUT /leases/{id}", s.withRequest(s.handleLeaseUpdate))
	mux.HandleFunc("PATCH /leases/{id}", s.withRequest(s.handleLeaseUpdate))
	mux.HandleFunc("DELETE /leases/{id}", s.withRequest(s.handleLeaseDelete))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	if s.app.Config != nil && s.app.Config.Server.PPROFEnabled {
		log.Info("pprof endpoints are enabled")
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	return mux
}

func (s *Server) Start(addr string) error {
	s.Server.Addr = addr
	s.Server.Handler = s.Handler()

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}

type requestHandler func(w http.ResponseWriter, r *http.Request, req *application.Request)

// withRequest builds the request context for one HTTP call and releases its
// client handle once the handler returns. The X-Request-Id header is only a
// correlation value for logs and the response; handles are keyed by the
// server generated request ID.
func (s *Server) withRequest(next requestHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := s.app.NewRequest(r.Header.Get(AuthTokenHeader))
		defer s.app.Release(req)

		correlationID := r.Header.Get(RequestIDHeader)
		if correlationID == "" {
			correlationID = req.ID
		}

		w.Header().Set(RequestIDHeader, correlationID)
		log.WithFields(log.Fields{
			"request_id":     req.ID,
			"correlation_id": correlationID,
			"method":         r.Method,
			"path":           r.URL.Path,
		}).Debug("Handling lease request")

		next(w, r, req)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
