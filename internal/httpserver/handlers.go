package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	authdomain "authservice/backend/internal/domain/auth"

	"github.com/go-chi/chi/v5"
)

const (
	registeredMessage = "registration successful, please log in"
	maxBodyBytes      = 1 << 20
)

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) registerRoutes() {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "resource not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMethodNotAllowed(w, s.allowedMethods(r.URL.Path)...)
	})

	s.router.Get("/", s.handleStatus)
	s.router.Post("/register", s.handleRegister)
	s.router.Post("/login", s.handleLogin)
	s.router.With(s.authMiddleware).Get("/private", s.handlePrivate)
}

func (s *Server) allowedMethods(path string) []string {
	var allowed []string
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		if s.router.Match(chi.NewRouteContext(), method, path) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Server Up"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := s.authService.Register(r.Context(), authdomain.Credentials{
		Username: payload.Username,
		Password: payload.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrMissingField), errors.Is(err, authdomain.ErrUsernameTaken):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.internalError(w, r, "register failed", err)
		}
		return
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	writeJSON(w, http.StatusOK, map[string]string{"success": registeredMessage})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, user, err := s.authService.Login(r.Context(), authdomain.Credentials{
		Username: payload.Username,
		Password: payload.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrMissingField):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, authdomain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, authdomain.ErrInvalidCredentials.Error())
		default:
			s.internalError(w, r, "login failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"user":         user,
	})
}

// decodeCredentials reads a JSON credentials body of at most maxBodyBytes and
// writes the error response itself when it returns false.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsPayload, bool) {
	var payload credentialsPayload
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
		}
		return payload, false
	}
	return payload, true
}

func (s *Server) handlePrivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := s.authService.WhoAmI(r.Context(), userID)
	if err != nil {
		if errors.Is(err, authdomain.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			s.internalError(w, r, "identity lookup failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": map[string]any{"user": user},
	})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.WithError(err).
		WithField("path", r.URL.Path).
		Error(msg)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
