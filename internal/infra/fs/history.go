package fs

// Mint history persistence under data_out. Each finished batch is appended
// to mint_history.json with its per-attempt signatures, so receipts outlive
// the process.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sonic-minter/internal/minter"

	json "github.com/goccy/go-json"
)

const (
	historyDir  = "data_out"
	historyFile = "mint_history.json"
)

// BatchRecord is one finished mint batch.
type BatchRecord struct {
	Timestamp time.Time       `json:"timestamp"`
	Network   string          `json:"network"`
	Wallet    string          `json:"wallet"`
	Requested int             `json:"requested"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Attempts  []AttemptRecord `json:"attempts"`
}

// AttemptRecord is one batch attempt in its file form.
type AttemptRecord struct {
	ID         string `json:"id"`
	Index      int    `json:"index"`
	Signature  string `json:"signature,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// NewBatchRecord converts a runner summary into its file form.
func NewBatchRecord(network, walletAddr string, s minter.Summary) BatchRecord {
	rec := BatchRecord{
		Timestamp: time.Now().UTC(),
		Network:   network,
		Wallet:    walletAddr,
		Requested: s.Requested,
		Succeeded: s.Succeeded,
		Failed:    s.Failed,
	}

	for _, a := range s.Attempts {
		attempt := AttemptRecord{
			ID:         a.ID,
			Index:      a.Index,
			Signature:  a.Signature,
			DurationMs: a.Duration.Milliseconds(),
		}
		if a.Err != nil {
			attempt.Error = a.Err.Error()
		}
		rec.Attempts = append(rec.Attempts, attempt)
	}

	return rec
}

// AppendBatchRecord adds the record to data_out/mint_history.json, creating
// the directory and file on first use.
func AppendBatchRecord(rec BatchRecord) error {
	if err := os.MkdirAll(historyDir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	records, err := LoadBatchRecords()
	if err != nil {
		return err
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mint history: %w", err)
	}

	fullPath := filepath.Join(historyDir, historyFile)
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to save mint history: %w", err)
	}
	return nil
}

// LoadBatchRecords reads the saved history; a missing file is an empty one.
func LoadBatchRecords() ([]BatchRecord, error) {
	data, err := os.ReadFile(filepath.Join(historyDir, historyFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mint history: %w", err)
	}

	var records []BatchRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mint history: %w", err)
	}
	return records, nil
}
