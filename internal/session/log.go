// Package session keeps an append-only audit trail per pipeline session:
// one growing JSONL file of {timestamp, action, result} records.
package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one audit record.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Result    string    `json:"result"`
}

// Logger appends audit entries for one session. Safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// New creates a logger writing to <dir>/<sessionID>.jsonl. The directory is
// created if needed.
func New(dir, sessionID string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session log directory: %w", err)
	}
	return &Logger{
		path: filepath.Join(dir, sessionID+".jsonl"),
		now:  time.Now,
	}, nil
}

// Append writes one entry to the end of the session log.
func (l *Logger) Append(action, result string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(Entry{
		Timestamp: l.now().UTC(),
		Action:    action,
		Result:    result,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session entry: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open session log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append session entry: %w", err)
	}
	return nil
}

// Entries reads the whole session log back, oldest first.
func (l *Logger) Entries() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("failed to parse session entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}
