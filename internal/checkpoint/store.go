// Package checkpoint persists pipeline run snapshots on local disk so an
// interrupted run can resume at the step where it stopped.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when no checkpoint exists for a run id.
var ErrNotFound = errors.New("checkpoint not found")

// CorruptError reports a checkpoint file that exists but cannot be decoded.
// It is distinct from ErrNotFound so callers can surface it instead of
// silently starting fresh.
type CorruptError struct {
	RunID string
	Err   error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("checkpoint for run %s is corrupt: %v", e.RunID, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Meta is the checkpoint metadata the lifecycle policy operates on.
type Meta struct {
	RunID     string    `json:"run_id"`
	Step      string    `json:"current_step"`
	Failed    bool      `json:"failed,omitempty"`
	WrittenAt time.Time `json:"written_at"`

	// Corrupt marks an entry whose file exists but cannot be decoded. Set by
	// List so enumeration never hides a corrupt checkpoint; never persisted.
	Corrupt bool `json:"-"`
}

// envelope is the on-disk checkpoint record: metadata plus the serialized
// run state.
type envelope struct {
	Meta
	State json.RawMessage `json:"state"`
}

// Store is a durable run-id → checkpoint mapping backed by one JSON file per
// run id under a single directory.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a store rooted at dir. The directory is created lazily on
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) path(runID string) string {
	return filepath.Join(s.dir, runID+".json")
}

// Write atomically persists state for runID, overwriting any prior
// checkpoint for that id. The write goes to a temp file first and is renamed
// into place so a crash mid-write never leaves a half-written checkpoint.
func (s *Store) Write(m Meta, state any) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal run state: %w", err)
	}

	m.WrittenAt = s.now()
	data, err := json.MarshalIndent(envelope{Meta: m, State: raw}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	path := s.path(m.RunID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return os.Rename(tmp, path)
}

// Read loads the checkpoint for runID and unmarshals its state into state
// (which may be nil to read metadata only). A missing file is ErrNotFound; a
// present but undecodable file is a *CorruptError.
func (s *Store) Read(runID string, state any) (Meta, error) {
	data, err := os.ReadFile(s.path(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return Meta{}, ErrNotFound
		}
		return Meta{}, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Meta{}, &CorruptError{RunID: runID, Err: err}
	}
	if state != nil {
		if err := json.Unmarshal(env.State, state); err != nil {
			return Meta{}, &CorruptError{RunID: runID, Err: err}
		}
	}
	return env.Meta, nil
}

// Delete removes the checkpoint for runID. Deleting a missing checkpoint
// returns ErrNotFound so callers can log it, but is otherwise harmless.
func (s *Store) Delete(runID string) error {
	err := os.Remove(s.path(runID))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// List enumerates all checkpoints in the store, most recently written first.
// Undecodable entries are included with Corrupt set, run id taken from the
// filename and written-at from the file modification time, so the operator
// can see and discard them and retention can expire them.
func (s *Store) List() ([]Meta, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var metas []Meta
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		runID := strings.TrimSuffix(name, ".json")
		m, err := s.Read(runID, nil)
		if err != nil {
			info, ierr := entry.Info()
			if ierr != nil {
				continue
			}
			m = Meta{RunID: runID, Corrupt: true, WrittenAt: info.ModTime()}
		}
		metas = append(metas, m)
	}

	sort.Slice(metas, func(i, j int) bool {
		if !metas[i].WrittenAt.Equal(metas[j].WrittenAt) {
			return metas[i].WrittenAt.After(metas[j].WrittenAt)
		}
		return metas[i].RunID < metas[j].RunID
	})
	return metas, nil
}

// AgeDays returns the whole days elapsed since the checkpoint for runID was
// written.
func (s *Store) AgeDays(runID string) (int, error) {
	m, err := s.Read(runID, nil)
	if err != nil {
		return 0, err
	}
	return ageDays(m.WrittenAt, s.now()), nil
}

func ageDays(writtenAt, now time.Time) int {
	age := now.Sub(writtenAt)
	if age < 0 {
		return 0
	}
	return int(age / (24 * time.Hour))
}
