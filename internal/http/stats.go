package http

import (
	"errors"
	"net/http"

	"github.com/tfia/ywt-server/internal/model"
	"github.com/tfia/ywt-server/internal/repository"
)

type incrementTagsRequest struct {
	Tag []string `json:"tag"`
}

type statsResponse struct {
	Conversation int64            `json:"conversation"`
	Tags         []model.TagCount `json:"tags"`
}

func (s *Server) handleIncrementTags(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req incrementTagsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, kindInvalid, "Invalid request body")
		return
	}
	if len(req.Tag) == 0 {
		writeError(w, kindInvalid, "No tags provided")
		return
	}

	if err := s.store.IncrementTags(r.Context(), claims.Username, req.Tag); err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleIncrementConversation(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	if err := s.store.IncrementConversation(r.Context(), claims.Username); err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	s.writeStats(w, r, claims.Username)
}

func (s *Server) handleClearStats(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearAllStats(r.Context()); err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) writeStats(w http.ResponseWriter, r *http.Request, username string) {
	stats, err := s.store.GetStats(r.Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, kindInvalid, "User not found")
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
