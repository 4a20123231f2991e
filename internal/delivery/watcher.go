// Package delivery watches the outputs directory and uploads finished
// documents to their destination chats.
//
// The watcher keeps no durable state: the filesystem is the queue. A file is
// renamed to an in-flight marker before upload and deleted only after a
// confirmed success, so delivery is at-least-once — a crash between upload
// and delete re-sends the file on the next start.
package delivery

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/novelforge/novelforge/internal/pdf"
)

// sendingSuffix marks a file currently being uploaded. The rename is atomic,
// so no two poll passes can pick up the same document.
const sendingSuffix = ".sending"

// Uploader delivers one document to a chat. Implemented by telegram.Client.
type Uploader interface {
	SendDocument(ctx context.Context, chatID, filePath, caption string) error
}

// Config assembles a Watcher.
type Config struct {
	// Dir is the outputs directory to poll.
	Dir string
	// Uploader performs document uploads.
	Uploader Uploader
	// PollInterval is the pause between directory scans (default 5s).
	PollInterval time.Duration
	// Attempts is the upload tries per poll cycle (default 3).
	Attempts int
	// RetryDelay is the fixed pause between upload tries (default 8s).
	RetryDelay time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher polls the outputs directory and delivers matching documents.
type Watcher struct {
	dir      string
	uploader Uploader
	interval time.Duration
	attempts int
	delay    time.Duration
	log      *slog.Logger

	// skipped remembers unparsable names already logged this run.
	skipped map[string]bool
}

// New creates a Watcher.
func New(cfg Config) *Watcher {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 8 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Watcher{
		dir:      cfg.Dir,
		uploader: cfg.Uploader,
		interval: cfg.PollInterval,
		attempts: cfg.Attempts,
		delay:    cfg.RetryDelay,
		log:      cfg.Logger,
		skipped:  make(map[string]bool),
	}
}

// Run polls until the context is cancelled. On startup every present
// matching file — including in-flight markers left by a previous run — is
// treated as pending and delivered immediately, without waiting for the
// first tick.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("watching for documents", "dir", w.dir, "interval", w.interval)

	w.recoverInFlight(ctx)
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep processes every deliverable document currently in the directory.
func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.Error("failed to list outputs directory", "error", err)
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() || strings.HasSuffix(entry.Name(), sendingSuffix) {
			continue
		}
		w.process(ctx, entry.Name())
	}
}

// recoverInFlight re-sends documents a previous run renamed but never
// confirmed delivered. Re-sending after a crash between upload and delete is
// the accepted at-least-once cost.
func (w *Watcher) recoverInFlight(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sendingSuffix) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), sendingSuffix)
		chatID, rest, ok := pdf.ParseFilename(name)
		if !ok {
			continue
		}
		w.log.Info("recovering in-flight document", "file", name)
		w.deliver(ctx, chatID, filepath.Join(w.dir, entry.Name()), DisplayName(rest))
	}
}

// process handles one newly observed document: parse, mark in-flight,
// deliver.
func (w *Watcher) process(ctx context.Context, name string) {
	chatID, rest, ok := pdf.ParseFilename(name)
	if !ok {
		if !w.skipped[name] {
			w.skipped[name] = true
			w.log.Warn("skipping unrecognized file", "file", name)
		}
		return
	}

	path := filepath.Join(w.dir, name)
	sendingPath := path + sendingSuffix
	if err := os.Rename(path, sendingPath); err != nil {
		// Another pass claimed it, or it vanished.
		w.log.Warn("failed to mark document in-flight", "file", name, "error", err)
		return
	}

	w.log.Info("document detected", "file", name, "chat_id", chatID)
	w.deliver(ctx, chatID, sendingPath, DisplayName(rest))
}

// deliver uploads with the per-cycle retry budget. On success the file is
// deleted; on exhausted retries it is left in place, still marked, for the
// next cycle or manual intervention — never deleted on failure.
func (w *Watcher) deliver(ctx context.Context, chatID, path, displayName string) {
	err := retry.Do(
		func() error {
			return w.uploader.SendDocument(ctx, chatID, path, displayName)
		},
		retry.Context(ctx),
		retry.Attempts(uint(w.attempts)),
		retry.Delay(w.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			w.log.Warn("upload failed, retrying", "file", path, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		w.log.Error("failed to deliver document, leaving in place",
			"file", path, "chat_id", chatID, "error", err)
		return
	}

	if err := os.Remove(path); err != nil {
		// Upload succeeded; the file will be re-sent next start. Accepted.
		w.log.Error("delivered but failed to delete", "file", path, "error", err)
		return
	}
	w.log.Info("document delivered", "file", path, "chat_id", chatID)
}

// DisplayName derives the caption shown to the recipient from the filename
// remainder after the chat id: the leading title word is replaced with a
// generic prefix.
func DisplayName(rest string) string {
	if _, after, found := strings.Cut(rest, "_"); found {
		return "novel_" + after
	}
	return "novel_" + rest
}
