package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/tfia/ywt-server/internal/model"
	"github.com/tfia/ywt-server/internal/repository"
)

type userListResponse struct {
	Usernames []string `json:"usernames"`
	Emails    []string `json:"emails"`
	CreatedAt []string `json:"created_at"`
}

type deleteUserRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.ListAccounts(r.Context(), model.RoleUser)
	if err != nil {
		writeInternal(w, err)
		return
	}

	resp := userListResponse{
		Usernames: make([]string, 0, len(accounts)),
		Emails:    make([]string, 0, len(accounts)),
		CreatedAt: make([]string, 0, len(accounts)),
	}
	for _, account := range accounts {
		resp.Usernames = append(resp.Usernames, account.Username)
		resp.Emails = append(resp.Emails, account.Email)
		resp.CreatedAt = append(resp.CreatedAt, account.CreatedAt.Format(time.RFC3339))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, kindInvalid, "Invalid request body")
		return
	}

	account, err := s.store.GetAccount(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, kindNotFound, "Resource not found")
			return
		}
		writeInternal(w, err)
		return
	}
	if account.Role != model.RoleUser {
		writeError(w, kindNotFound, "Resource not found")
		return
	}

	if _, err := s.store.DeleteAccount(r.Context(), req.Username); err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleGetUserStats takes the target as ?username= since GET requests carry
// no body.
func (s *Server) handleGetUserStats(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, kindInvalid, "Missing username")
		return
	}

	account, err := s.store.GetAccount(r.Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, kindNotFound, "Resource not found")
			return
		}
		writeInternal(w, err)
		return
	}
	if account.Role != model.RoleUser {
		writeError(w, kindNotFound, "Resource not found")
		return
	}

	stats, err := s.store.GetStats(r.Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, kindNotFound, "Resource not found")
			return
		}
		writeInternal(w, err)
		return
	}

	tags := stats.Tags
	if tags == nil {
		tags = []model.TagCount{}
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Conversation: stats.Conversation,
		Tags:         tags,
	})
}
