package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tfia/ywt-server/internal/activation"
	"github.com/tfia/ywt-server/internal/crypto"
	"github.com/tfia/ywt-server/internal/model"
	"github.com/tfia/ywt-server/internal/repository"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	CreatedAt string `json:"created_at"`
}

func (s *Server) checkRegisterRequest(req registerRequest, restrictDomain bool) (errKind, string) {
	if err := checkUsername(req.Username); err != nil {
		return kindInvalid, "Invalid username"
	}
	var domains []string
	if restrictDomain {
		domains = s.cfg.AllowedEmailDomains
	}
	if err := checkEmail(req.Email, domains); err != nil {
		return kindInvalid, "Invalid email"
	}
	if err := checkPassword(req.Password); err != nil {
		return kindInvalid, "Invalid password"
	}
	return 0, ""
}

// identityAvailable probes username and email uniqueness across both roles
// and the pending set.
func (s *Server) identityAvailable(r *http.Request, username, email string) (bool, string, error) {
	inUse, err := s.store.UsernameInUse(r.Context(), username)
	if err != nil {
		return false, "", err
	}
	if inUse {
		return false, "Username already exists", nil
	}
	inUse, err = s.store.EmailInUse(r.Context(), email)
	if err != nil {
		return false, "", err
	}
	if inUse {
		return false, "Email already exists", nil
	}
	return true, "", nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, kindInvalid, "Invalid request body")
		return
	}
	if kind, msg := s.checkRegisterRequest(req, true); kind != 0 {
		writeError(w, kind, msg)
		return
	}

	available, msg, err := s.identityAvailable(r, req.Username, req.Email)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if !available {
		writeError(w, kindInvalid, msg)
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeInternal(w, err)
		return
	}

	createdAt := time.Now().UTC()
	pending := model.PendingAccount{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    createdAt,
	}
	if err := s.store.CreatePending(r.Context(), pending); err != nil {
		writeInternal(w, err)
		return
	}
	if err := s.store.CreateStats(r.Context(), req.Username); err != nil {
		writeInternal(w, err)
		return
	}

	code, err := activation.NewCode(req.Username, s.cfg.ActivationTTL)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if err := s.codes.Put(r.Context(), code); err != nil {
		writeInternal(w, err)
		return
	}

	// Delivery is best-effort: a failed activation mail never rolls back
	// the registration.
	if s.mailer != nil {
		to := fmt.Sprintf("%s <%s>", req.Username, req.Email)
		body := fmt.Sprintf(
			"Hello %s,\n\nYour activation code is %s\n\nThis code will expire in 3 days.\n\nBest regards,\nYWT Team",
			req.Username, code.Code,
		)
		if err := s.mailer.Send(to, "Activate your YWT account", body); err != nil {
			log.Printf("failed to send activation email to %s: %v", req.Username, err)
		} else {
			log.Printf("activation email sent to %s", req.Username)
		}
	}

	writeJSON(w, http.StatusOK, registerResponse{CreatedAt: createdAt.Format(time.RFC3339)})
}

func (s *Server) handleAdminRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, kindInvalid, "Invalid request body")
		return
	}
	if kind, msg := s.checkRegisterRequest(req, false); kind != 0 {
		writeError(w, kind, msg)
		return
	}

	available, msg, err := s.identityAvailable(r, req.Username, req.Email)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if !available {
		writeError(w, kindInvalid, msg)
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeInternal(w, err)
		return
	}

	createdAt := time.Now().UTC()
	account := model.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    createdAt,
	}
	if err := s.store.CreateAccount(r.Context(), account); err != nil {
		writeInternal(w, err)
		return
	}
	if err := s.store.CreateStats(r.Context(), req.Username); err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{CreatedAt: createdAt.Format(time.RFC3339)})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	providedCode := r.URL.Query().Get("code")
	if username == "" || providedCode == "" {
		writeError(w, kindInvalid, "Invalid activation code")
		return
	}

	code, err := s.codes.Get(r.Context(), username)
	if err != nil {
		if errors.Is(err, activation.ErrNotFound) {
			writeError(w, kindInvalid, "Invalid activation code")
			return
		}
		writeInternal(w, err)
		return
	}
	if code.Code != providedCode {
		writeError(w, kindInvalid, "Invalid activation code")
		return
	}
	if code.Expired(time.Now().UTC()) {
		writeError(w, kindInvalid, "Activation code has expired")
		return
	}

	if err := s.store.PromotePending(r.Context(), username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, kindInvalid, "User not found")
			return
		}
		writeInternal(w, err)
		return
	}
	if err := s.codes.Delete(r.Context(), username); err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
