package httpx

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splax/passport/internal/repository"
	"github.com/splax/passport/internal/service/identity"
)

// UserRouter wires the relying service endpoints to the identity service.
type UserRouter struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	identity identity.Service
	metrics  *requestMetrics
}

// NewUserRouter assembles the relying service routes.
func NewUserRouter(logger *slog.Logger, identitySvc identity.Service) *UserRouter {
	r := &UserRouter{
		mux:      http.NewServeMux(),
		logger:   logger,
		identity: identitySvc,
		metrics:  newRequestMetrics("user"),
	}
	r.register()
	return r
}

// ServeHTTP delegates to the underlying mux.
func (r *UserRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *UserRouter) register() {
	r.mux.HandleFunc("/health", r.wrap("/health", r.handleHealth))
	r.mux.HandleFunc("/me", r.wrap("/me", r.handleMe))
	r.mux.Handle("/metrics", promhttp.Handler())
}

func (r *UserRouter) wrap(route string, next http.HandlerFunc) http.HandlerFunc {
	return audit(r.logger, r.metrics, route, next)
}

func (r *UserRouter) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "user-service"})
}

func (r *UserRouter) handleMe(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	profile, err := r.identity.WhoAmI(req.Context(), req.Header.Get("Authorization"))
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrMissingToken):
			writeError(w, http.StatusUnauthorized, "Missing token")
		case errors.Is(err, identity.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "Invalid token")
		case errors.Is(err, repository.ErrNotFound):
			// Verified token for a user absent from the local projection.
			r.logger.Error("verified user missing from projection", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		default:
			r.logger.Error("whoami failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
