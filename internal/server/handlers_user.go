package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/nepalkings/kings-server/internal/user"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	Success  bool   `json:"success"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	created, err := s.userMgr.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, user.ErrUsernameTaken) {
			status = http.StatusConflict
		}
		writeJSON(w, status, errorBody(err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		Success:  true,
		UserID:   created.ID,
		Username: created.Username,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	account, err := s.userMgr.Authenticate(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorBody(err.Error()))
			return
		}
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Success:  true,
		UserID:   account.ID,
		Username: account.Username,
	})
}
