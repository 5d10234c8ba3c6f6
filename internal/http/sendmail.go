package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/tfia/ywt-server/internal/model"
	"github.com/tfia/ywt-server/internal/repository"
)

type singleEmailRequest struct {
	Username string `json:"username"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

type broadcastResponse struct {
	Status string `json:"status"`
	Sent   int    `json:"sent"`
	Failed int    `json:"failed"`
}

// handleBroadcastEmail sends a usage summary to every user that has a stats
// record. Delivery is best-effort per recipient: one bad mailbox must not
// starve the rest of the batch.
func (s *Server) handleBroadcastEmail(w http.ResponseWriter, r *http.Request) {
	if s.mailer == nil {
		writeError(w, kindInternal, "Mailer is not configured")
		return
	}

	accounts, err := s.store.ListAccounts(r.Context(), model.RoleUser)
	if err != nil {
		writeInternal(w, err)
		return
	}

	sent, failed := 0, 0
	for _, account := range accounts {
		stats, err := s.store.GetStats(r.Context(), account.Username)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			writeInternal(w, err)
			return
		}

		names := make([]string, 0, len(stats.Tags))
		for _, tag := range stats.Tags {
			names = append(names, tag.Name)
		}
		body := fmt.Sprintf(
			"%s 同学你好！\n\n感谢使用 YWT。以下是你的答疑周报：\n\n在过去一周内，你一共与智能助手交谈 %d 轮次，主要围绕 %s 等知识点。\n\n祝好！\nYWT Team",
			account.Username, stats.Conversation, strings.Join(names, ", "),
		)
		to := fmt.Sprintf("%s <%s>", account.Username, account.Email)

		if err := s.mailer.Send(to, "YWT 答疑周报", body); err != nil {
			log.Printf("failed to send email to %s: %v", account.Username, err)
			failed++
			continue
		}
		log.Printf("email sent to %s", account.Username)
		sent++
	}

	writeJSON(w, http.StatusOK, broadcastResponse{Status: "success", Sent: sent, Failed: failed})
}

// handleSingleEmail relays an admin-authored message to one user. A missing
// target is not an error: the endpoint answers success either way.
func (s *Server) handleSingleEmail(w http.ResponseWriter, r *http.Request) {
	if s.mailer == nil {
		writeError(w, kindInternal, "Mailer is not configured")
		return
	}

	claims := claimsFromContext(r.Context())

	var req singleEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, kindInvalid, "Invalid request body")
		return
	}

	admin, err := s.store.GetAccount(r.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, kindNotFound, "Resource not found")
			return
		}
		writeInternal(w, err)
		return
	}

	target, err := s.store.GetAccount(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
			return
		}
		writeInternal(w, err)
		return
	}
	if target.Role != model.RoleUser {
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
		return
	}

	body := fmt.Sprintf(
		"%s\n\n此邮件由 %s <%s> 触发 YWT Bot 发送。若要回复，请直接回复发件人。",
		req.Content, admin.Username, admin.Email,
	)
	to := fmt.Sprintf("%s <%s>", target.Username, target.Email)

	if err := s.mailer.Send(to, req.Title, body); err != nil {
		log.Printf("failed to send email to %s: %v", target.Username, err)
		writeError(w, kindInternal, fmt.Sprintf("Failed to send email to %s", target.Username))
		return
	}
	log.Printf("email sent to %s", target.Username)

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
