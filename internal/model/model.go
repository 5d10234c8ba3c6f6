package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Account roles. A username is unique across both roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Account struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// PendingAccount has the same shape as an Account minus the role: it is
// always promoted into the user role on activation.
type PendingAccount struct {
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Stats struct {
	Username     string
	Conversation int64
	Tags         []TagCount
}

// TagCount serializes as a ["name", count] pair to keep the wire format the
// clients already consume.
type TagCount struct {
	Name  string
	Count int64
}

func (t TagCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{t.Name, t.Count})
}

func (t *TagCount) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &t.Name); err != nil {
		return fmt.Errorf("tag name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &t.Count); err != nil {
		return fmt.Errorf("tag count: %w", err)
	}
	return nil
}

// Problem is a stored question-bank document. Image holds the raw bytes; the
// API layer base64-encodes them.
type Problem struct {
	ID    string
	Tags  []string
	Image []byte
}

// QBankEntry is one row of the packaged question-bank index file.
type QBankEntry struct {
	ID   string   `json:"id"`
	Tags []string `json:"tags"`
	Path string   `json:"path"`
}
