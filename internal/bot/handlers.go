package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/novelforge/novelforge/internal/jobstore"
	"github.com/novelforge/novelforge/internal/runner"
	"github.com/novelforge/novelforge/internal/scrape"
	"github.com/novelforge/novelforge/internal/telegram"
)

// handleMessage routes commands and flow input.
func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "/start":
		b.handleStart(ctx, msg)
	case text == "/cancel":
		b.handleCancel(ctx, msg)
	case strings.HasPrefix(text, "/status"):
		b.handleStatus(ctx, msg)
	default:
		b.handleText(ctx, msg, text)
	}
}

// handleStart shows the novel menu as an inline keyboard.
func (b *Bot) handleStart(ctx context.Context, msg *telegram.Message) {
	novels, err := b.catalog.All(ctx)
	if err != nil {
		b.log.Warn("novel listing degraded", "error", err)
	}
	if len(novels) == 0 {
		b.reply(ctx, msg.Chat.ID, "😔 No novels available right now, try again later.")
		return
	}

	keyboard := make([][]telegram.InlineKeyboardButton, 0, len(novels))
	for _, n := range novels {
		keyboard = append(keyboard, []telegram.InlineKeyboardButton{
			{Text: n.Title, CallbackData: n.Title},
		})
	}

	err = b.client.SendMessage(ctx, msg.Chat.ID, "📚 *Select a novel:*", &telegram.SendMessageOptions{
		ParseMode:   "Markdown",
		ReplyMarkup: &telegram.InlineKeyboardMarkup{InlineKeyboard: keyboard},
	})
	if err != nil {
		b.log.Error("failed to send menu", "error", err)
	}
}

// handleNovelSelected starts the range flow for the tapped novel.
func (b *Bot) handleNovelSelected(ctx context.Context, cb *telegram.CallbackQuery) {
	if err := b.client.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		b.log.Warn("failed to answer callback", "error", err)
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	n, ok := b.catalog.Lookup(ctx, cb.Data)
	if !ok {
		b.reply(ctx, chatID, "❗ That novel is no longer available, use /start again.")
		return
	}

	b.sessions.Put(cb.From.ID, &Session{Novel: n, Stage: StageStart})

	var sb strings.Builder
	fmt.Fprintf(&sb, "📖 %s\n", n.Title)
	if n.TotalChapters != nil {
		fmt.Fprintf(&sb, "Total chapters: %d\n", *n.TotalChapters)
	}
	sb.WriteString("Send start chapter")
	b.reply(ctx, chatID, sb.String())
}

// handleText consumes the numeric inputs of the range flow.
func (b *Bot) handleText(ctx context.Context, msg *telegram.Message, text string) {
	userID := msg.Chat.ID
	if msg.From != nil {
		userID = msg.From.ID
	}

	sess, ok := b.sessions.Get(userID)
	if !ok {
		b.reply(ctx, msg.Chat.ID, "❗ Use /start first")
		return
	}

	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		b.reply(ctx, msg.Chat.ID, "❌ Send a valid number")
		return
	}

	switch sess.Stage {
	case StageStart:
		sess.Start = n
		sess.Stage = StageEnd
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Start chapter set to %d. Send end chapter.", n))

	case StageEnd:
		if err := b.startJob(ctx, msg.Chat.ID, sess, n); err != nil {
			// Leave the session at the end stage so the user can retry.
			b.reply(ctx, msg.Chat.ID, fmt.Sprintf("❌ %v", err))
			return
		}
		b.sessions.Evict(userID)
		b.reply(ctx, msg.Chat.ID, "📦 PDF will be sent automatically.")
	}
}

// handleCancel abandons the current flow.
func (b *Bot) handleCancel(ctx context.Context, msg *telegram.Message) {
	userID := msg.Chat.ID
	if msg.From != nil {
		userID = msg.From.ID
	}
	b.sessions.Evict(userID)
	b.reply(ctx, msg.Chat.ID, "❌ Operation cancelled.")
}

// startJob validates the requested range and spawns a runner process.
// Validation happens here, before the spawn; the runner trusts its inputs.
func (b *Bot) startJob(ctx context.Context, chatID int64, sess *Session, end int) error {
	if err := scrape.ValidateRange(sess.Start, end, sess.Novel.TotalChapters); err != nil {
		return err
	}

	p := runner.Params{
		JobID:      uuid.New().String(),
		ChatID:     strconv.FormatInt(chatID, 10),
		NovelTitle: sess.Novel.Title,
		BaseURL:    sess.Novel.ChapterURL,
		Start:      sess.Start,
		End:        end,
	}

	if err := b.launcher.Launch(p); err != nil {
		return fmt.Errorf("could not start the job: %w", err)
	}

	b.log.Info("job spawned", "job_id", p.JobID, "novel", p.NovelTitle,
		"start", p.Start, "end", p.End)

	b.reply(ctx, chatID, fmt.Sprintf(
		"✅ Job `%s` started for *%s*\nChapters: %d → %d\nYou'll receive the PDF when it's ready.",
		p.JobID, p.NovelTitle, p.Start, p.End))
	return nil
}

// handleStatus renders progress for the chat's jobs. Terminal records are
// shown once and then removed.
func (b *Bot) handleStatus(ctx context.Context, msg *telegram.Message) {
	filter := jobstore.Filter{ChatID: strconv.FormatInt(msg.Chat.ID, 10)}
	if fields := strings.Fields(msg.Text); len(fields) > 1 {
		filter.JobID = fields[1]
	}

	records, err := b.store.ReadAll(filter)
	if err != nil {
		b.log.Error("failed to read job records", "error", err)
		b.reply(ctx, msg.Chat.ID, "❌ Could not read job status, try again.")
		return
	}
	if len(records) == 0 {
		b.reply(ctx, msg.Chat.ID, "📭 No active jobs found.")
		return
	}

	messages := make([]string, 0, len(records))
	for _, rec := range records {
		messages = append(messages, renderStatus(rec))

		if rec.Status.Terminal() {
			if err := b.store.Delete(rec.JobID); err != nil {
				b.log.Warn("failed to delete terminal record", "job_id", rec.JobID, "error", err)
			}
		}
	}

	err = b.client.SendMessage(ctx, msg.Chat.ID, strings.Join(messages, "\n\n"),
		&telegram.SendMessageOptions{ParseMode: "Markdown"})
	if err != nil {
		b.log.Error("failed to send status", "error", err)
	}
}

// renderStatus formats one record with a ten-cell progress bar.
func renderStatus(rec jobstore.Record) string {
	percent := rec.Progress()
	filled := percent / 10
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)

	var statusText string
	switch rec.Status {
	case jobstore.StatusRunning:
		statusText = "⏳ In Progress"
	case jobstore.StatusCompleted:
		statusText = "✅ Completed"
	case jobstore.StatusFailed:
		statusText = "❌ Failed. Please try again"
	}

	return fmt.Sprintf("📖 *%s*\nJob: `%s`\n[%s] %d%%\nChapter %d / %d\nStatus: %s",
		rec.Novel, rec.JobID, bar, percent, rec.Current, rec.End, statusText)
}

// reply sends a plain text message, logging failures.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.client.SendMessage(ctx, chatID, text, nil); err != nil {
		b.log.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}
