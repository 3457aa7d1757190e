package checkpoint

import (
	"sort"
	"time"
)

// Policy holds the pure decision logic for checkpoint lifecycle: what is
// resumable and what must be cleaned up. It performs no I/O itself.
type Policy struct {
	// TerminalStep is the step name that marks a completed run. Completed
	// runs are never offered for resume.
	TerminalStep string
	// MaxResumableAge bounds how old a checkpoint may be and still be
	// offered for resume. Zero means resumable indefinitely; age is always
	// surfaced to the operator either way.
	MaxResumableAge time.Duration

	now func() time.Time
}

func (p Policy) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

// IsResumable reports whether the checkpoint represents an interrupted run
// worth offering to the operator. Corrupt entries are offered too: resuming
// one surfaces the corruption instead of silently starting a fresh run.
func (p Policy) IsResumable(m Meta) bool {
	if m.Step == p.TerminalStep {
		return false
	}
	if p.MaxResumableAge > 0 && p.clock().Sub(m.WrittenAt) > p.MaxResumableAge {
		return false
	}
	return true
}

// NeedsCleanup selects the run ids to remove: every checkpoint older than
// maxAgeDays, plus, when more than maxCount checkpoints exist, the oldest
// excess beyond maxCount. The two criteria are unioned and deduplicated.
// maxAgeDays < 0 disables the age criterion; maxCount <= 0 disables the
// count criterion. Equal ages evict in ascending run-id order.
func NeedsCleanup(metas []Meta, maxCount, maxAgeDays int, now time.Time) []string {
	selected := make(map[string]bool)

	if maxAgeDays >= 0 {
		for _, m := range metas {
			if ageDays(m.WrittenAt, now) > maxAgeDays {
				selected[m.RunID] = true
			}
		}
	}

	if maxCount > 0 && len(metas) > maxCount {
		oldest := make([]Meta, len(metas))
		copy(oldest, metas)
		sort.Slice(oldest, func(i, j int) bool {
			if !oldest[i].WrittenAt.Equal(oldest[j].WrittenAt) {
				return oldest[i].WrittenAt.Before(oldest[j].WrittenAt)
			}
			return oldest[i].RunID < oldest[j].RunID
		})
		for _, m := range oldest[:len(metas)-maxCount] {
			selected[m.RunID] = true
		}
	}

	ids := make([]string, 0, len(selected))
	for id := range selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CleanupReport summarizes a cleanup pass. Deletion errors are collected and
// returned rather than aborting the pass.
type CleanupReport struct {
	Removed []string
	Errors  []error
}

// CleanupByAge removes every checkpoint older than maxAgeDays.
func CleanupByAge(s *Store, maxAgeDays int) (CleanupReport, error) {
	return Cleanup(s, 0, maxAgeDays)
}

// CleanupAll removes every checkpoint in the store.
func CleanupAll(s *Store) (CleanupReport, error) {
	metas, err := s.List()
	if err != nil {
		return CleanupReport{}, err
	}
	ids := make([]string, 0, len(metas))
	for _, m := range metas {
		ids = append(ids, m.RunID)
	}
	sort.Strings(ids)
	return applyDeletes(s, ids), nil
}

// Cleanup removes checkpoints per the combined age and count criteria from
// NeedsCleanup.
func Cleanup(s *Store, maxCount, maxAgeDays int) (CleanupReport, error) {
	metas, err := s.List()
	if err != nil {
		return CleanupReport{}, err
	}
	return applyDeletes(s, NeedsCleanup(metas, maxCount, maxAgeDays, s.now())), nil
}

func applyDeletes(s *Store, ids []string) CleanupReport {
	var report CleanupReport
	for _, id := range ids {
		if err := s.Delete(id); err != nil {
			report.Errors = append(report.Errors, err)
			continue
		}
		report.Removed = append(report.Removed, id)
	}
	return report
}
