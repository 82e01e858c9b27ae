package http

import (
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

func ownerID(r *http.Request) int64 {
	p, _ := auth.FromContext(r.Context())
	return p.UserID
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if errs := decodeJSON(r, &req); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	if errs := s.validator.check(req); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	pair, err := s.svc.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			slog.InfoContext(r.Context(), "Login rejected", "username", req.Username)
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if errs := decodeJSON(r, &req); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	if errs := s.validator.check(req); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	access, err := s.svc.Users.Refresh(req.Refresh)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

type registeredUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// handleRegister answers with {"error": msg} on failure rather than field
// errors. Unexpected failures pass their message through with a 500.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if errs := decodeJSON(r, &req); errs != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	u, err := s.svc.Users.Register(r.Context(), services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			writeErrorMessage(w, http.StatusBadRequest, ve.Message)
			return
		}
		slog.ErrorContext(r.Context(), "Registration failed", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user": registeredUser{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		},
	})
}
