package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/codeclash/battle-backend/internal/auth"
	"github.com/codeclash/battle-backend/internal/store"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Register(svc *auth.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
			return
		}

		u, err := svc.Register(r.Context(), req.Name, req.Email, req.Password)
		if errors.Is(err, auth.ErrUserExists) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "User already exists"})
			return
		}
		if err != nil {
			log.Error("registration failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Server error"})
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			Message string      `json:"message"`
			User    *store.User `json:"user"`
		}{Message: "User registered successfully", User: u})
	}
}

func Login(svc *auth.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
			return
		}

		u, pair, err := svc.Login(r.Context(), req.Email, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid email or password"})
			return
		}
		if err != nil {
			log.Error("login failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Server error"})
			return
		}

		writeJSON(w, http.StatusOK, struct {
			User         *store.User `json:"user"`
			AccessToken  string      `json:"access_token"`
			RefreshToken string      `json:"refresh_token"`
		}{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
	}
}

func GoogleOAuth(svc *auth.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req googleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
			return
		}

		u, err := svc.GoogleUpsert(r.Context(), req.Name, req.Email)
		if err != nil {
			log.Error("google oauth upsert failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Server error"})
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Message string      `json:"message"`
			User    *store.User `json:"user"`
		}{Message: "Google OAuth user stored successfully", User: u})
	}
}

func Refresh(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
			return
		}

		access, err := svc.Refresh(req.RefreshToken)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			return
		}

		writeJSON(w, http.StatusOK, struct {
			AccessToken string `json:"access_token"`
		}{AccessToken: access})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
