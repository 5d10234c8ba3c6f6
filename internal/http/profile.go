package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/tfia/ywt-server/internal/crypto"
	"github.com/tfia/ywt-server/internal/repository"
)

type profileResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	account, err := s.store.GetAccount(r.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, kindInvalid, "User not found")
			return
		}
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Username:  account.Username,
		Email:     account.Email,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	})
}

type modifyUsernameRequest struct {
	NewUsername string `json:"new_username"`
	Password    string `json:"password"`
}

func (s *Server) handleModifyUsername(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req modifyUsernameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, kindInvalid, "Invalid request body")
		return
	}
	if err := checkUsername(req.NewUsername); err != nil {
		writeError(w, kindInvalid, "Invalid username")
		return
	}

	account, err := s.store.GetAccount(r.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, kindInvalid, "User not found")
			return
		}
		writeInternal(w, err)
		return
	}
	if err := crypto.CheckPassword(account.PasswordHash, req.Password); err != nil {
		writeError(w, kindInvalid, "Invalid password")
		return
	}

	inUse, err := s.store.UsernameInUse(r.Context(), req.NewUsername)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if inUse {
		writeError(w, kindInvalid, "Username already exists")
		return
	}

	if err := s.store.UpdateUsername(r.Context(), claims.Username, req.NewUsername); err != nil {
		writeInternal(w, err)
		return
	}

	// The caller's token still carries the old username; a fresh login is
	// required to act under the new one.
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

type modifyPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleModifyPassword(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req modifyPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, kindInvalid, "Invalid request body")
		return
	}
	if err := checkPassword(req.NewPassword); err != nil {
		writeError(w, kindInvalid, "Invalid password")
		return
	}

	account, err := s.store.GetAccount(r.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, kindInvalid, "User not found")
			return
		}
		writeInternal(w, err)
		return
	}
	if err := crypto.CheckPassword(account.PasswordHash, req.CurrentPassword); err != nil {
		writeError(w, kindInvalid, "Invalid current password")
		return
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if err := s.store.UpdatePassword(r.Context(), claims.Username, hash); err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleDeleteAccount answers success whether or not the account still
// existed; a second delete with a lingering token is not an error.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	if _, err := s.store.DeleteAccount(r.Context(), claims.Username); err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
