package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tfia/ywt-server/internal/model"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) GetAccount(ctx context.Context, username string) (model.Account, error) {
	var account model.Account
	row := s.pool.QueryRow(ctx, `
		SELECT username, email, password_hash, role, created_at
		FROM accounts
		WHERE username = $1
	`, username)
	err := row.Scan(
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	return account, err
}

func (s *Postgres) CreateAccount(ctx context.Context, account model.Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, account.Username, account.Email, account.PasswordHash, account.Role, account.CreatedAt)
	return err
}

func (s *Postgres) UsernameInUse(ctx context.Context, username string) (bool, error) {
	var inUse bool
	row := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)
			OR EXISTS (SELECT 1 FROM pending_accounts WHERE username = $1)
	`, username)
	err := row.Scan(&inUse)
	return inUse, err
}

func (s *Postgres) EmailInUse(ctx context.Context, email string) (bool, error) {
	var inUse bool
	row := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)
			OR EXISTS (SELECT 1 FROM pending_accounts WHERE email = $1)
	`, email)
	err := row.Scan(&inUse)
	return inUse, err
}

// UpdateUsername renames the account and its stats record in one transaction.
// Tag counter rows follow via ON UPDATE CASCADE.
func (s *Postgres) UpdateUsername(ctx context.Context, username, newUsername string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE accounts SET username = $1 WHERE username = $2`, newUsername, username)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx, `UPDATE user_stats SET username = $1 WHERE username = $2`, newUsername, username)
		return err
	})
}

func (s *Postgres) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE accounts SET password_hash = $1 WHERE username = $2`, passwordHash, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAccount removes the account and cascades to its stats record.
func (s *Postgres) DeleteAccount(ctx context.Context, username string) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE username = $1`, username)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		_, err = tx.Exec(ctx, `DELETE FROM user_stats WHERE username = $1`, username)
		return err
	})
	return deleted, err
}

func (s *Postgres) ListAccounts(ctx context.Context, role string) ([]model.Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT username, email, password_hash, role, created_at
		FROM accounts
		WHERE role = $1
		ORDER BY created_at
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		if err := rows.Scan(&account.Username, &account.Email, &account.PasswordHash, &account.Role, &account.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (s *Postgres) HasAdmin(ctx context.Context) (bool, error) {
	var exists bool
	row := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE role = $1)`, model.RoleAdmin)
	err := row.Scan(&exists)
	return exists, err
}

func (s *Postgres) CreatePending(ctx context.Context, pending model.PendingAccount) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pending_accounts (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, pending.Username, pending.Email, pending.PasswordHash, pending.CreatedAt)
	return err
}

func (s *Postgres) GetPending(ctx context.Context, username string) (model.PendingAccount, error) {
	var pending model.PendingAccount
	row := s.pool.QueryRow(ctx, `
		SELECT username, email, password_hash, created_at
		FROM pending_accounts
		WHERE username = $1
	`, username)
	err := row.Scan(&pending.Username, &pending.Email, &pending.PasswordHash, &pending.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PendingAccount{}, ErrNotFound
	}
	return pending, err
}

// PromotePending copies the pending account into accounts with the user role
// and removes the pending row.
func (s *Postgres) PromotePending(ctx context.Context, username string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO accounts (username, email, password_hash, role, created_at)
			SELECT username, email, password_hash, $2, created_at
			FROM pending_accounts
			WHERE username = $1
		`, username, model.RoleUser)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx, `DELETE FROM pending_accounts WHERE username = $1`, username)
		return err
	})
}

func (s *Postgres) DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pending_accounts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CreateStats creates a fresh stats record, resetting any existing one. A
// stats row can outlive its registration when the pending cleanup prunes a
// lapsed activation, so re-registering the username must start from zero
// rather than fail on the leftover row.
func (s *Postgres) CreateStats(ctx context.Context, username string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO user_stats (username, conversation)
			VALUES ($1, 0)
			ON CONFLICT (username) DO UPDATE SET conversation = 0
		`, username)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM user_stat_tags WHERE username = $1`, username)
		return err
	})
}

func (s *Postgres) GetStats(ctx context.Context, username string) (model.Stats, error) {
	stats := model.Stats{Username: username}
	row := s.pool.QueryRow(ctx, `SELECT conversation FROM user_stats WHERE username = $1`, username)
	if err := row.Scan(&stats.Conversation); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Stats{}, ErrNotFound
		}
		return model.Stats{}, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT tag, count
		FROM user_stat_tags
		WHERE username = $1
		ORDER BY tag
	`, username)
	if err != nil {
		return model.Stats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var tag model.TagCount
		if err := rows.Scan(&tag.Name, &tag.Count); err != nil {
			return model.Stats{}, err
		}
		stats.Tags = append(stats.Tags, tag)
	}
	return stats, rows.Err()
}

// IncrementTags bumps each named tag by its number of occurrences in the
// input. A missing stats record makes this a no-op, matching the update
// semantics the clients rely on.
func (s *Postgres) IncrementTags(ctx context.Context, username string, tags []string) error {
	counts := make(map[string]int64, len(tags))
	for _, tag := range tags {
		counts[tag]++
	}
	return s.withTx(ctx, func(tx pgx.Tx) error {
		for tag, n := range counts {
			_, err := tx.Exec(ctx, `
				INSERT INTO user_stat_tags (username, tag, count)
				SELECT $1, $2, $3
				WHERE EXISTS (SELECT 1 FROM user_stats WHERE username = $1)
				ON CONFLICT (username, tag) DO UPDATE SET count = user_stat_tags.count + EXCLUDED.count
			`, username, tag, n)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Postgres) IncrementConversation(ctx context.Context, username string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE user_stats SET conversation = conversation + 1 WHERE username = $1
	`, username)
	return err
}

func (s *Postgres) ClearAllStats(ctx context.Context) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE user_stats SET conversation = 0`); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM user_stat_tags`)
		return err
	})
}

func (s *Postgres) GetProblem(ctx context.Context, id string) (model.Problem, error) {
	var problem model.Problem
	row := s.pool.QueryRow(ctx, `SELECT id, tags, image FROM problems WHERE id = $1`, id)
	err := row.Scan(&problem.ID, &problem.Tags, &problem.Image)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Problem{}, ErrNotFound
	}
	return problem, err
}

func (s *Postgres) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
