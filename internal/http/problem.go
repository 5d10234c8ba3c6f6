package http

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tfia/ywt-server/internal/model"
	"github.com/tfia/ywt-server/internal/repository"
)

type problemResponse struct {
	Tags  []string `json:"tags"`
	Image string   `json:"image"`
}

func (s *Server) handleGetProblem(w http.ResponseWriter, r *http.Request) {
	problemID := chi.URLParam(r, "problemID")

	problem, err := s.store.GetProblem(r.Context(), problemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, kindNotFound, fmt.Sprintf("Problem with ID %s not found", problemID))
			return
		}
		writeInternal(w, err)
		return
	}
	if len(problem.Image) == 0 {
		writeError(w, kindInternal, "Failed to extract image data")
		return
	}

	writeJSON(w, http.StatusOK, problemResponse{
		Tags:  problem.Tags,
		Image: base64.StdEncoding.EncodeToString(problem.Image),
	})
}

// handleGetQBank serves the packaged index loaded at startup; no store access.
func (s *Server) handleGetQBank(w http.ResponseWriter, _ *http.Request) {
	entries := s.qbank
	if entries == nil {
		entries = []model.QBankEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
