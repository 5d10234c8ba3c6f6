package http

import (
	"errors"
	"net/http"

	"github.com/tfia/ywt-server/internal/auth"
	"github.com/tfia/ywt-server/internal/crypto"
	"github.com/tfia/ywt-server/internal/model"
	"github.com/tfia/ywt-server/internal/repository"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.login(w, r, model.RoleUser, "User not found", "Invalid password")
}

// handleAdminLogin deliberately answers with one generic message so a caller
// cannot probe which admin usernames exist.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	s.login(w, r, model.RoleAdmin, "Error", "Error")
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, role, notFoundMsg, badPasswordMsg string) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, kindInvalid, "Invalid request body")
		return
	}

	account, err := s.store.GetAccount(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, kindInvalid, notFoundMsg)
			return
		}
		writeInternal(w, err)
		return
	}
	if account.Role != role {
		writeError(w, kindInvalid, notFoundMsg)
		return
	}
	if err := crypto.CheckPassword(account.PasswordHash, req.Password); err != nil {
		writeError(w, kindInvalid, badPasswordMsg)
		return
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.TokenTTL, account.Username)
	if err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}
