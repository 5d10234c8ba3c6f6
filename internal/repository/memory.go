package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tfia/ywt-server/internal/model"
)

// Memory is an in-process Store used by handler tests and local development.
// It applies the same uniqueness and cascade rules as the Postgres schema.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]model.Account
	pending  map[string]model.PendingAccount
	convs    map[string]int64
	tags     map[string]map[string]int64
	problems map[string]model.Problem
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]model.Account),
		pending:  make(map[string]model.PendingAccount),
		convs:    make(map[string]int64),
		tags:     make(map[string]map[string]int64),
		problems: make(map[string]model.Problem),
	}
}

func (m *Memory) GetAccount(_ context.Context, username string) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[username]
	if !ok {
		return model.Account{}, ErrNotFound
	}
	return account, nil
}

func (m *Memory) CreateAccount(_ context.Context, account model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.Username]; ok {
		return fmt.Errorf("duplicate username %q", account.Username)
	}
	m.accounts[account.Username] = account
	return nil
}

func (m *Memory) UsernameInUse(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[username]; ok {
		return true, nil
	}
	_, ok := m.pending[username]
	return ok, nil
}

func (m *Memory) EmailInUse(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Email == email {
			return true, nil
		}
	}
	for _, pending := range m.pending {
		if pending.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) UpdateUsername(_ context.Context, username, newUsername string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[username]
	if !ok {
		return ErrNotFound
	}
	account.Username = newUsername
	delete(m.accounts, username)
	m.accounts[newUsername] = account
	if conv, ok := m.convs[username]; ok {
		delete(m.convs, username)
		m.convs[newUsername] = conv
	}
	if tags, ok := m.tags[username]; ok {
		delete(m.tags, username)
		m.tags[newUsername] = tags
	}
	return nil
}

func (m *Memory) UpdatePassword(_ context.Context, username, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[username]
	if !ok {
		return ErrNotFound
	}
	account.PasswordHash = passwordHash
	m.accounts[username] = account
	return nil
}

func (m *Memory) DeleteAccount(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.accounts[username]
	delete(m.accounts, username)
	delete(m.convs, username)
	delete(m.tags, username)
	return ok, nil
}

func (m *Memory) ListAccounts(_ context.Context, role string) ([]model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var accounts []model.Account
	for _, account := range m.accounts {
		if account.Role == role {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (m *Memory) HasAdmin(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Role == model.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) CreatePending(_ context.Context, pending model.PendingAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pending[pending.Username]; ok {
		return fmt.Errorf("duplicate pending username %q", pending.Username)
	}
	m.pending[pending.Username] = pending
	return nil
}

func (m *Memory) GetPending(_ context.Context, username string) (model.PendingAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending, ok := m.pending[username]
	if !ok {
		return model.PendingAccount{}, ErrNotFound
	}
	return pending, nil
}

func (m *Memory) PromotePending(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending, ok := m.pending[username]
	if !ok {
		return ErrNotFound
	}
	m.accounts[username] = model.Account{
		Username:     pending.Username,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         model.RoleUser,
		CreatedAt:    pending.CreatedAt,
	}
	delete(m.pending, username)
	return nil
}

func (m *Memory) DeletePendingBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for username, pending := range m.pending {
		if pending.CreatedAt.Before(cutoff) {
			delete(m.pending, username)
			removed++
		}
	}
	return removed, nil
}

func (m *Memory) CreateStats(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convs[username] = 0
	m.tags[username] = make(map[string]int64)
	return nil
}

func (m *Memory) GetStats(_ context.Context, username string) (model.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.convs[username]
	if !ok {
		return model.Stats{}, ErrNotFound
	}
	stats := model.Stats{Username: username, Conversation: conv}
	for tag, count := range m.tags[username] {
		stats.Tags = append(stats.Tags, model.TagCount{Name: tag, Count: count})
	}
	sort.Slice(stats.Tags, func(i, j int) bool {
		return stats.Tags[i].Name < stats.Tags[j].Name
	})
	return stats, nil
}

func (m *Memory) IncrementTags(_ context.Context, username string, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[username]; !ok {
		return nil
	}
	if m.tags[username] == nil {
		m.tags[username] = make(map[string]int64)
	}
	for _, tag := range tags {
		m.tags[username][tag]++
	}
	return nil
}

func (m *Memory) IncrementConversation(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[username]; !ok {
		return nil
	}
	m.convs[username]++
	return nil
}

func (m *Memory) ClearAllStats(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for username := range m.convs {
		m.convs[username] = 0
		m.tags[username] = make(map[string]int64)
	}
	return nil
}

func (m *Memory) AddProblem(problem model.Problem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.problems[problem.ID] = problem
}

func (m *Memory) GetProblem(_ context.Context, id string) (model.Problem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	problem, ok := m.problems[id]
	if !ok {
		return model.Problem{}, ErrNotFound
	}
	return problem, nil
}
