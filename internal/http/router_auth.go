package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splax/passport/internal/service/auth"
)

// AuthRouter wires the identity authority endpoints to the auth service.
type AuthRouter struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	auth    auth.Service
	metrics *requestMetrics
}

// NewAuthRouter assembles the identity authority routes.
func NewAuthRouter(logger *slog.Logger, authSvc auth.Service) *AuthRouter {
	r := &AuthRouter{
		mux:     http.NewServeMux(),
		logger:  logger,
		auth:    authSvc,
		metrics: newRequestMetrics("auth"),
	}
	r.register()
	return r
}

// ServeHTTP delegates to the underlying mux.
func (r *AuthRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *AuthRouter) register() {
	r.mux.HandleFunc("/health", r.wrap("/health", r.handleHealth))
	r.mux.HandleFunc("/login", r.wrap("/login", r.handleLogin))
	r.mux.HandleFunc("/register", r.wrap("/register", r.handleRegister))
	r.mux.HandleFunc("/verify", r.wrap("/verify", r.handleVerify))
	r.mux.Handle("/metrics", promhttp.Handler())
}

func (r *AuthRouter) wrap(route string, next http.HandlerFunc) http.HandlerFunc {
	return audit(r.logger, r.metrics, route, next)
}

func (r *AuthRouter) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "auth-service"})
}

func (r *AuthRouter) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	token, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			r.logger.Error("login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (r *AuthRouter) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	user, err := r.auth.Register(req.Context(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, auth.ErrEmailTaken):
			writeError(w, http.StatusConflict, "User already exists")
		default:
			r.logger.Error("registration failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user": map[string]any{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

func (r *AuthRouter) handleVerify(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	header := req.Header.Get("Authorization")
	if strings.TrimSpace(header) == "" {
		writeVerifyError(w, http.StatusUnauthorized, "Missing token")
		return
	}
	// Second whitespace-separated segment is the token; the scheme word is
	// not inspected.
	parts := strings.Fields(header)
	if len(parts) < 2 {
		writeVerifyError(w, http.StatusUnauthorized, "Invalid token format")
		return
	}
	claims, err := r.auth.Verify(parts[1])
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			writeVerifyError(w, http.StatusUnauthorized, "Token expired")
		case errors.Is(err, auth.ErrTokenInvalid):
			writeVerifyError(w, http.StatusUnauthorized, "Invalid token")
		default:
			r.logger.Error("token verification failed", "error", err)
			writeVerifyError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user": map[string]any{
			"userId": claims.UserID,
			"email":  claims.Email,
		},
	})
}
