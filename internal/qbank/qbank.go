// Package qbank loads the packaged question-bank index. The list is read
// once at startup and served verbatim; problem images live in the database.
package qbank

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tfia/ywt-server/internal/model"
)

func Load(path string) ([]model.QBankEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read qbank file: %w", err)
	}
	var entries []model.QBankEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse qbank file: %w", err)
	}
	return entries, nil
}
