// Package runner executes one chapter-range scrape job to completion.
//
// A runner is designed to live in its own OS process, spawned by the chat
// interface: it has no caller to return results to, and every outcome is
// surfaced through the durable job record and the documents it writes.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/novelforge/novelforge/internal/jobstore"
	"github.com/novelforge/novelforge/internal/novel"
	"github.com/novelforge/novelforge/internal/pdf"
)

// Fetcher retrieves one chapter. Implemented by scrape.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, chapter int) (novel.Chapter, error)
	URL(chapter int) string
}

// Builder writes one batch of chapters as a document. Implemented by
// pdf.Builder.
type Builder interface {
	Build(chapters []novel.Chapter, chatID, safeTitle string, batchStart, batchEnd int) (string, error)
}

// RecordStore persists job records. Implemented by jobstore.Store.
type RecordStore interface {
	Write(rec *jobstore.Record) error
}

// Config assembles a Runner. Params are validated by ParamsFromEnv; the
// range itself was validated by the interface before the job was spawned and
// is not re-checked here.
type Config struct {
	Params           Params
	Store            RecordStore
	Fetcher          Fetcher
	Builder          Builder
	ChaptersPerBatch int
	ChapterDelay     time.Duration
	Logger           *slog.Logger
}

// Runner drives the fetch loop for a single job.
type Runner struct {
	params    Params
	store     RecordStore
	fetcher   Fetcher
	builder   Builder
	batchSize int
	delay     time.Duration
	log       *slog.Logger
}

// New creates a Runner.
func New(cfg Config) *Runner {
	if cfg.ChaptersPerBatch <= 0 {
		cfg.ChaptersPerBatch = 50
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{
		params:    cfg.Params,
		store:     cfg.Store,
		fetcher:   cfg.Fetcher,
		builder:   cfg.Builder,
		batchSize: cfg.ChaptersPerBatch,
		delay:     cfg.ChapterDelay,
		log:       cfg.Logger.With("job_id", cfg.Params.JobID),
	}
}

// Run executes the job: fetch each chapter in order, substitute a
// placeholder when the retry budget is exhausted, persist progress after
// every chapter, and flush a document every batch and at the end.
//
// The job record is finalized exactly once on every exit path, including
// panics; the record transitions running -> completed or running -> failed
// and never back. The returned error mirrors what was recorded.
func (r *Runner) Run(ctx context.Context) (err error) {
	p := r.params

	rec := &jobstore.Record{
		JobID:   p.JobID,
		ChatID:  p.ChatID,
		Novel:   p.NovelTitle,
		Start:   p.Start,
		End:     p.End,
		Current: p.Start - 1,
		Status:  jobstore.StatusRunning,
	}
	if werr := r.store.Write(rec); werr != nil {
		return fmt.Errorf("failed to create job record: %w", werr)
	}

	r.log.Info("job started", "novel", p.NovelTitle, "start", p.Start, "end", p.End)

	defer func() {
		if rv := recover(); rv != nil {
			err = fmt.Errorf("job panicked: %v", rv)
		}
		if err != nil {
			rec.Status = jobstore.StatusFailed
			rec.Error = err.Error()
		} else {
			rec.Status = jobstore.StatusCompleted
		}
		if werr := r.store.Write(rec); werr != nil {
			r.log.Error("failed to finalize job record", "error", werr)
		}
		r.log.Info("job finished", "status", rec.Status)
	}()

	safeTitle := pdf.SafeTitle(p.NovelTitle)
	batch := make([]novel.Chapter, 0, r.batchSize)
	batchStart := p.Start

	for ch := p.Start; ch <= p.End; ch++ {
		r.log.Info("fetching chapter", "chapter", ch)

		chapter, ferr := r.fetcher.Fetch(ctx, ch)
		if ferr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A single unfetchable chapter never aborts the job.
			r.log.Warn("chapter failed permanently, substituting placeholder",
				"chapter", ch, "error", ferr)
			chapter = r.placeholder(ch)
		}
		batch = append(batch, chapter)

		rec.Current = ch
		if werr := r.store.Write(rec); werr != nil {
			return fmt.Errorf("failed to persist progress: %w", werr)
		}

		if len(batch) >= r.batchSize {
			if _, berr := r.builder.Build(batch, p.ChatID, safeTitle, batchStart, ch); berr != nil {
				return berr
			}
			batch = batch[:0]
			batchStart = ch + 1
		}

		if ch < p.End && r.delay > 0 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if len(batch) > 0 {
		if _, berr := r.builder.Build(batch, p.ChatID, safeTitle, batchStart, p.End); berr != nil {
			return berr
		}
	}

	return nil
}

// placeholder builds the substitute chapter for a permanent fetch failure,
// pointing the reader at the source page directly.
func (r *Runner) placeholder(chapter int) novel.Chapter {
	return novel.Chapter{
		Title: fmt.Sprintf("Chapter %d - Failed", chapter),
		Paragraphs: []string{
			fmt.Sprintf("Could not fetch chapter %d. URL: %s", chapter, r.fetcher.URL(chapter)),
		},
	}
}
