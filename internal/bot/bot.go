// Package bot implements the requester-facing chat interface: the novel
// menu, the chapter-range flow, job spawning, and the status viewer.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/novelforge/novelforge/internal/jobstore"
	"github.com/novelforge/novelforge/internal/novel"
	"github.com/novelforge/novelforge/internal/telegram"
)

// pollRetryDelay is the pause after a failed getUpdates call.
const pollRetryDelay = 3 * time.Second

// Chat is the Telegram surface the bot depends on; implemented by
// telegram.Client.
type Chat interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendMessageOptions) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// Catalog lists and resolves novels; implemented by novel.Registry.
type Catalog interface {
	All(ctx context.Context) ([]novel.Novel, error)
	Lookup(ctx context.Context, title string) (novel.Novel, bool)
}

// Config assembles a Bot.
type Config struct {
	Client   Chat
	Catalog  Catalog
	Store    *jobstore.Store
	Launcher JobLauncher
	Logger   *slog.Logger
}

// Bot drives the chat conversation loop.
type Bot struct {
	client   Chat
	catalog  Catalog
	store    *jobstore.Store
	launcher JobLauncher
	sessions *Sessions
	log      *slog.Logger
}

// New creates a Bot.
func New(cfg Config) *Bot {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Bot{
		client:   cfg.Client,
		catalog:  cfg.Catalog,
		store:    cfg.Store,
		launcher: cfg.Launcher,
		sessions: NewSessions(),
		log:      cfg.Logger,
	}
}

// Run long-polls for updates until the context is cancelled. Handler
// failures are logged and never stop the loop.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("bot running")

	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := b.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Error("failed to poll updates", "error", err)
			select {
			case <-time.After(pollRetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate dispatches one update to the right handler.
func (b *Bot) handleUpdate(ctx context.Context, update telegram.Update) {
	defer func() {
		if rv := recover(); rv != nil {
			b.log.Error("handler panicked", "panic", rv)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleNovelSelected(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		b.handleMessage(ctx, update.Message)
	}
}
