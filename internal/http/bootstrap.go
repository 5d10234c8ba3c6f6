package http

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tfia/ywt-server/internal/config"
	"github.com/tfia/ywt-server/internal/crypto"
	"github.com/tfia/ywt-server/internal/model"
	"github.com/tfia/ywt-server/internal/repository"
)

// EnsureAdminAccount creates the configured initial admin when no admin
// exists yet. Safe to call on every startup.
func EnsureAdminAccount(ctx context.Context, store repository.Store, cfg config.Config) error {
	exists, err := store.HasAdmin(ctx)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return nil
	}
	if cfg.AdminPassword == "" {
		return fmt.Errorf("no admin account exists and ADMIN_PASSWORD is not set")
	}

	hash, err := crypto.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	account := model.Account{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.CreateAccount(ctx, account); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	if err := store.CreateStats(ctx, account.Username); err != nil {
		return fmt.Errorf("create admin stats: %w", err)
	}

	log.Printf("created initial admin account %q", account.Username)
	return nil
}
