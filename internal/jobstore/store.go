// Package jobstore persists one durable record file per scrape job.
//
// Records are written by the job runner process and read by the status
// viewer and tests; only the runner that created a record mutates it. A
// reader may observe a half-written file, so malformed records are skipped
// on read rather than treated as errors.
package jobstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Status represents the current state of a job. Transitions are monotonic:
// once completed or failed, a record never returns to running.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is an absorbing state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Record is the durable state of one chapter-range job.
type Record struct {
	JobID   string `json:"job_id"`
	ChatID  string `json:"chat_id"`
	Novel   string `json:"novel"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Current int    `json:"current"` // last chapter attempted; start-1 before any work
	Status  Status `json:"status"`
	Error   string `json:"error,omitempty"` // set iff status is failed
}

// Progress returns completion as a percentage, clamped to [0, 100].
func (r *Record) Progress() int {
	total := r.End - r.Start + 1
	if total <= 0 {
		return 0
	}
	done := r.Current - r.Start + 1
	if done < 0 {
		done = 0
	}
	if done > total {
		done = total
	}
	return done * 100 / total
}

// Filter narrows ReadAll results. Zero values match everything.
type Filter struct {
	ChatID string
	JobID  string
}

// Store reads and writes job record files under one directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory must already exist.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// path returns the record file for a job id.
func (s *Store) path(jobID string) string {
	return filepath.Join(s.dir, jobID+".json")
}

// Write persists a record, overwriting any previous version.
func (s *Store) Write(rec *Record) error {
	if rec.JobID == "" {
		return fmt.Errorf("record has no job id")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := os.WriteFile(s.path(rec.JobID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// ReadAll returns records matching the filter, ordered by job id.
// Malformed or half-written files are silently skipped.
func (s *Store) ReadAll(filter Filter) ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list job records: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}

		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		// A record without an id or status is a partial write.
		if rec.JobID == "" || rec.Status == "" {
			continue
		}

		if filter.ChatID != "" && rec.ChatID != filter.ChatID {
			continue
		}
		if filter.JobID != "" && rec.JobID != filter.JobID {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].JobID < records[j].JobID
	})
	return records, nil
}

// Delete removes a job record. Callers must only delete records whose
// terminal status has been surfaced to the requester.
func (s *Store) Delete(jobID string) error {
	if err := os.Remove(s.path(jobID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}
