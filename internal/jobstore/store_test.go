package jobstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_WriteReadDelete(t *testing.T) {
	store := NewStore(t.TempDir())

	rec := &Record{
		JobID:   "job-1",
		ChatID:  "100",
		Novel:   "Test Novel",
		Start:   1,
		End:     10,
		Current: 0,
		Status:  StatusRunning,
	}

	if err := store.Write(rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := store.ReadAll(Filter{})
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Novel != "Test Novel" || records[0].Current != 0 {
		t.Errorf("unexpected record %+v", records[0])
	}

	// Overwrite is idempotent and replaces content.
	rec.Current = 5
	rec.Status = StatusCompleted
	if err := store.Write(rec); err != nil {
		t.Fatalf("Write() overwrite error = %v", err)
	}
	records, _ = store.ReadAll(Filter{})
	if len(records) != 1 || records[0].Current != 5 || records[0].Status != StatusCompleted {
		t.Errorf("overwrite not visible: %+v", records)
	}

	if err := store.Delete("job-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	records, _ = store.ReadAll(Filter{})
	if len(records) != 0 {
		t.Errorf("got %d records after delete, want 0", len(records))
	}

	// Deleting an absent record is not an error.
	if err := store.Delete("job-1"); err != nil {
		t.Errorf("Delete() of missing record error = %v", err)
	}
}

func TestStore_ReadAllSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	good := &Record{JobID: "good", ChatID: "1", Novel: "N", Start: 1, End: 2, Status: StatusRunning}
	if err := store.Write(good); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// Truncated JSON, as left by an interrupted writer.
	if err := os.WriteFile(filepath.Join(dir, "torn.json"), []byte(`{"job_id": "torn", "sta`), 0o644); err != nil {
		t.Fatal(err)
	}
	// Valid JSON but missing required fields.
	if err := os.WriteFile(filepath.Join(dir, "empty.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	// Unrelated file.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := store.ReadAll(Filter{})
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 1 || records[0].JobID != "good" {
		t.Errorf("got %+v, want only the well-formed record", records)
	}
}

func TestStore_ReadAllFilters(t *testing.T) {
	store := NewStore(t.TempDir())

	for _, rec := range []*Record{
		{JobID: "a", ChatID: "1", Status: StatusRunning, Start: 1, End: 1},
		{JobID: "b", ChatID: "2", Status: StatusRunning, Start: 1, End: 1},
		{JobID: "c", ChatID: "1", Status: StatusCompleted, Start: 1, End: 1},
	} {
		if err := store.Write(rec); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("by chat", func(t *testing.T) {
		records, _ := store.ReadAll(Filter{ChatID: "1"})
		if len(records) != 2 {
			t.Fatalf("got %d records, want 2", len(records))
		}
		// Ordered by job id.
		if records[0].JobID != "a" || records[1].JobID != "c" {
			t.Errorf("unexpected order: %s, %s", records[0].JobID, records[1].JobID)
		}
	})

	t.Run("by chat and job", func(t *testing.T) {
		records, _ := store.ReadAll(Filter{ChatID: "1", JobID: "c"})
		if len(records) != 1 || records[0].JobID != "c" {
			t.Errorf("got %+v", records)
		}
	})
}

func TestRecord_Progress(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want int
	}{
		{"not started", Record{Start: 1, End: 10, Current: 0}, 0},
		{"halfway", Record{Start: 1, End: 10, Current: 5}, 50},
		{"done", Record{Start: 1, End: 10, Current: 10}, 100},
		{"offset range", Record{Start: 1450, End: 1459, Current: 1454}, 50},
		{"clamped below", Record{Start: 5, End: 10, Current: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Progress(); got != tt.want {
				t.Errorf("Progress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	if StatusRunning.Terminal() {
		t.Error("running should not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("completed and failed should be terminal")
	}
}
