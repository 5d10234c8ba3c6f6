package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tfia/ywt-server/internal/activation"
	"github.com/tfia/ywt-server/internal/auth"
	"github.com/tfia/ywt-server/internal/config"
	"github.com/tfia/ywt-server/internal/email"
	"github.com/tfia/ywt-server/internal/model"
	"github.com/tfia/ywt-server/internal/repository"
)

type Server struct {
	cfg    config.Config
	store  repository.Store
	codes  activation.Store
	mailer email.Mailer
	qbank  []model.QBankEntry
}

func NewServer(cfg config.Config, store repository.Store, codes activation.Store, mailer email.Mailer, qbankEntries []model.QBankEntry) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		codes:  codes,
		mailer: mailer,
		qbank:  qbankEntries,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         3600,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/register", func(r chi.Router) {
		r.Post("/", s.handleRegister)
		r.With(s.authMiddleware, s.requireAdmin).Post("/admin", s.handleAdminRegister)
	})
	r.Get("/verify_email/{username}", s.handleVerifyEmail)

	r.Route("/login", func(r chi.Router) {
		r.Post("/", s.handleLogin)
		r.Post("/admin", s.handleAdminLogin)
	})

	r.With(s.authMiddleware).Get("/profile", s.handleProfile)

	r.Route("/modify", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/username", s.handleModifyUsername)
		r.Post("/password", s.handleModifyPassword)
		r.Post("/delete", s.handleDeleteAccount)
	})

	// /count mirrors the /stats counters for older clients; only /stats
	// carries the admin clear.
	for _, scope := range []string{"/stats", "/count"} {
		r.Route(scope, func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/", s.handleIncrementTags)
			r.Post("/conv", s.handleIncrementConversation)
			r.Get("/", s.handleGetStats)
			if scope == "/stats" {
				r.With(s.requireAdmin).Post("/clear", s.handleClearStats)
			}
		})
	}

	r.Route("/problem", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/get/{problemID}", s.handleGetProblem)
		r.Get("/qbank", s.handleGetQBank)
	})

	r.Route("/send_email", func(r chi.Router) {
		r.Use(s.authMiddleware, s.requireAdmin)
		r.Get("/", s.handleBroadcastEmail)
		r.Post("/single", s.handleSingleEmail)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(s.authMiddleware, s.requireAdmin)
		r.Get("/list", s.handleListUsers)
		r.Post("/delete", s.handleDeleteUser)
		r.Get("/stats", s.handleGetUserStats)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, kindNotFound, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, kindNotFound, "Resource not found")
	})

	return r
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeErrorStatus(w, http.StatusUnauthorized, kindInvalid, "Missing token")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
		if err != nil {
			writeErrorStatus(w, http.StatusUnauthorized, kindInvalid, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin re-checks the acting account against the store: a token alone
// never grants admin access.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil {
			writeErrorStatus(w, http.StatusUnauthorized, kindInvalid, "Missing token")
			return
		}
		account, err := s.store.GetAccount(r.Context(), claims.Username)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			writeInternal(w, err)
			return
		}
		if err != nil || account.Role != model.RoleAdmin {
			writeError(w, kindInvalid, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
