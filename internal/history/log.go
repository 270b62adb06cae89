// Package history keeps an append-only JSONL record of launcher runs.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record describes one launcher invocation.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	Args      []string  `json:"args"`
	ExitCode  int       `json:"exit_code"`
	Duration  string    `json:"duration"`
	Origin    string    `json:"origin"`
	Workdir   string    `json:"workdir,omitempty"`
	Error     string    `json:"error,omitempty"`
}

type Log struct {
	path string
}

// DefaultPath returns $XDG_STATE_HOME/appcompat/history.jsonl, falling back
// to ~/.local/state. It returns "" when neither can be determined.
func DefaultPath() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home == "" {
			return ""
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "appcompat", "history.jsonl")
}

func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Load returns all records, newest first. A missing log is empty.
func (l *Log) Load() ([]Record, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	var records []Record
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record Record
		if err := decoder.Decode(&record); err != nil {
			// a torn trailing line cannot be resynchronized
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Append writes one record, creating the log with owner-only permissions.
func (l *Log) Append(record Record) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if record.ID == "" {
		record.ID = fmt.Sprintf("run_%d", record.Timestamp.UnixNano())
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}

	// caller args may carry project paths
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write history record: %w", err)
	}
	return nil
}

// Delete removes the record at index, counted newest first like Load.
func (l *Log) Delete(index int) error {
	records, err := l.Load()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(records) {
		return fmt.Errorf("invalid index: %d", index)
	}
	records = append(records[:index], records[index+1:]...)

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to rewrite history: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to write history record: %w", err)
		}
	}
	return nil
}

// Clear removes the log file.
func (l *Log) Clear() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// NewRecord builds a Record for a finished run.
func NewRecord(args []string, exitCode int, duration time.Duration, origin string, runErr error) Record {
	wd, _ := os.Getwd()
	r := Record{
		Timestamp: time.Now(),
		Args:      append([]string{}, args...),
		ExitCode:  exitCode,
		Duration:  duration.String(),
		Origin:    origin,
		Workdir:   wd,
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	return r
}
