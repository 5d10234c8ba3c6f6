package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tfia/ywt-server/internal/model"
)

// ErrNotFound is returned when a lookup matches no row. The Postgres
// implementation maps pgx.ErrNoRows onto it so handlers never see driver
// errors.
var ErrNotFound = errors.New("not found")

// Store is the durable state behind the API. Single-statement operations are
// atomic; multi-row workflows (promote, delete, rename) run in a transaction.
type Store interface {
	GetAccount(ctx context.Context, username string) (model.Account, error)
	CreateAccount(ctx context.Context, account model.Account) error
	UsernameInUse(ctx context.Context, username string) (bool, error)
	EmailInUse(ctx context.Context, email string) (bool, error)
	UpdateUsername(ctx context.Context, username, newUsername string) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	DeleteAccount(ctx context.Context, username string) (bool, error)
	ListAccounts(ctx context.Context, role string) ([]model.Account, error)
	HasAdmin(ctx context.Context) (bool, error)

	CreatePending(ctx context.Context, pending model.PendingAccount) error
	GetPending(ctx context.Context, username string) (model.PendingAccount, error)
	PromotePending(ctx context.Context, username string) error
	DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CreateStats creates the stats record for username, resetting it to
	// zero if a row already exists.
	CreateStats(ctx context.Context, username string) error
	GetStats(ctx context.Context, username string) (model.Stats, error)
	IncrementTags(ctx context.Context, username string, tags []string) error
	IncrementConversation(ctx context.Context, username string) error
	ClearAllStats(ctx context.Context) error

	GetProblem(ctx context.Context, id string) (model.Problem, error)
}
