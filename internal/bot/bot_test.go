package bot

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/novelforge/novelforge/internal/jobstore"
	"github.com/novelforge/novelforge/internal/novel"
	"github.com/novelforge/novelforge/internal/runner"
	"github.com/novelforge/novelforge/internal/telegram"
)

// fakeChat records outgoing messages.
type fakeChat struct {
	mu       sync.Mutex
	messages []string
	chatIDs  []int64
	answered []string
}

func (c *fakeChat) GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error) {
	return nil, nil
}

func (c *fakeChat) SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendMessageOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, text)
	c.chatIDs = append(c.chatIDs, chatID)
	return nil
}

func (c *fakeChat) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answered = append(c.answered, callbackID)
	return nil
}

func (c *fakeChat) lastMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return ""
	}
	return c.messages[len(c.messages)-1]
}

// fakeCatalog serves a fixed novel list.
type fakeCatalog struct {
	novels []novel.Novel
}

func (c *fakeCatalog) All(ctx context.Context) ([]novel.Novel, error) {
	return c.novels, nil
}

func (c *fakeCatalog) Lookup(ctx context.Context, title string) (novel.Novel, bool) {
	for _, n := range c.novels {
		if n.Title == title {
			return n, true
		}
	}
	return novel.Novel{}, false
}

// fakeLauncher captures spawned job params.
type fakeLauncher struct {
	launched []runner.Params
}

func (l *fakeLauncher) Launch(p runner.Params) error {
	l.launched = append(l.launched, p)
	return nil
}

func newTestBot(t *testing.T) (*Bot, *fakeChat, *fakeLauncher, *jobstore.Store) {
	t.Helper()
	total := 100
	chat := &fakeChat{}
	launcher := &fakeLauncher{}
	store := jobstore.NewStore(t.TempDir())
	b := New(Config{
		Client: chat,
		Catalog: &fakeCatalog{novels: []novel.Novel{
			{Title: "Bounded Novel", ChapterURL: "https://example.com/b/chapter-", TotalChapters: &total},
			{Title: "Open Novel", ChapterURL: "https://example.com/o/chapter-"},
		}},
		Store:    store,
		Launcher: launcher,
	})
	return b, chat, launcher, store
}

func message(chatID, userID int64, text string) *telegram.Message {
	return &telegram.Message{
		Chat: telegram.Chat{ID: chatID},
		From: &telegram.User{ID: userID},
		Text: text,
	}
}

func TestBot_FullFlowSpawnsJob(t *testing.T) {
	b, chat, launcher, _ := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, message(100, 1, "/start"))
	if !strings.Contains(chat.lastMessage(), "Select a novel") {
		t.Fatalf("expected menu, got %q", chat.lastMessage())
	}

	b.handleNovelSelected(ctx, &telegram.CallbackQuery{
		ID:      "cb1",
		From:    telegram.User{ID: 1},
		Message: &telegram.Message{Chat: telegram.Chat{ID: 100}},
		Data:    "Bounded Novel",
	})
	if len(chat.answered) != 1 {
		t.Error("callback should be answered")
	}
	if !strings.Contains(chat.lastMessage(), "Send start chapter") {
		t.Fatalf("expected start prompt, got %q", chat.lastMessage())
	}

	b.handleMessage(ctx, message(100, 1, "5"))
	if !strings.Contains(chat.lastMessage(), "Send end chapter") {
		t.Fatalf("expected end prompt, got %q", chat.lastMessage())
	}

	b.handleMessage(ctx, message(100, 1, "9"))
	if len(launcher.launched) != 1 {
		t.Fatalf("launched %d jobs, want 1", len(launcher.launched))
	}

	p := launcher.launched[0]
	if p.ChatID != "100" || p.Start != 5 || p.End != 9 {
		t.Errorf("unexpected params %+v", p)
	}
	if p.BaseURL != "https://example.com/b/chapter-" {
		t.Errorf("BaseURL = %q", p.BaseURL)
	}
	if p.JobID == "" {
		t.Error("expected a job id")
	}

	// Session evicted after the flow.
	if b.sessions.Len() != 0 {
		t.Errorf("sessions not evicted: %d left", b.sessions.Len())
	}
}

func TestBot_RejectsInvalidInput(t *testing.T) {
	b, chat, launcher, _ := newTestBot(t)
	ctx := context.Background()

	t.Run("text before /start", func(t *testing.T) {
		b.handleMessage(ctx, message(100, 1, "5"))
		if !strings.Contains(chat.lastMessage(), "/start") {
			t.Errorf("expected /start hint, got %q", chat.lastMessage())
		}
	})

	b.handleNovelSelected(ctx, &telegram.CallbackQuery{
		ID:      "cb1",
		From:    telegram.User{ID: 1},
		Message: &telegram.Message{Chat: telegram.Chat{ID: 100}},
		Data:    "Bounded Novel",
	})

	t.Run("non-numeric start", func(t *testing.T) {
		b.handleMessage(ctx, message(100, 1, "five"))
		if !strings.Contains(chat.lastMessage(), "valid number") {
			t.Errorf("got %q", chat.lastMessage())
		}
	})

	b.handleMessage(ctx, message(100, 1, "10"))

	t.Run("end before start", func(t *testing.T) {
		b.handleMessage(ctx, message(100, 1, "3"))
		if !strings.Contains(chat.lastMessage(), "end chapter must be >= start") {
			t.Errorf("got %q", chat.lastMessage())
		}
		if len(launcher.launched) != 0 {
			t.Error("no job should be spawned")
		}
	})

	t.Run("end past known total", func(t *testing.T) {
		b.handleMessage(ctx, message(100, 1, "101"))
		if !strings.Contains(chat.lastMessage(), "exceeds total") {
			t.Errorf("got %q", chat.lastMessage())
		}
		if len(launcher.launched) != 0 {
			t.Error("no job should be spawned")
		}
	})

	t.Run("retry with valid end succeeds", func(t *testing.T) {
		b.handleMessage(ctx, message(100, 1, "20"))
		if len(launcher.launched) != 1 {
			t.Fatal("expected job after corrected input")
		}
	})
}

func TestBot_Cancel(t *testing.T) {
	b, chat, _, _ := newTestBot(t)
	ctx := context.Background()

	b.handleNovelSelected(ctx, &telegram.CallbackQuery{
		ID:      "cb1",
		From:    telegram.User{ID: 1},
		Message: &telegram.Message{Chat: telegram.Chat{ID: 100}},
		Data:    "Open Novel",
	})
	b.handleMessage(ctx, message(100, 1, "/cancel"))

	if b.sessions.Len() != 0 {
		t.Error("cancel should evict the session")
	}
	if !strings.Contains(chat.lastMessage(), "cancelled") {
		t.Errorf("got %q", chat.lastMessage())
	}
}

func TestBot_Status(t *testing.T) {
	b, chat, _, store := newTestBot(t)
	ctx := context.Background()

	t.Run("no jobs", func(t *testing.T) {
		b.handleMessage(ctx, message(100, 1, "/status"))
		if !strings.Contains(chat.lastMessage(), "No active jobs") {
			t.Errorf("got %q", chat.lastMessage())
		}
	})

	running := &jobstore.Record{
		JobID: "job-a", ChatID: "100", Novel: "Bounded Novel",
		Start: 1, End: 10, Current: 5, Status: jobstore.StatusRunning,
	}
	completed := &jobstore.Record{
		JobID: "job-b", ChatID: "100", Novel: "Bounded Novel",
		Start: 1, End: 10, Current: 10, Status: jobstore.StatusCompleted,
	}
	otherChat := &jobstore.Record{
		JobID: "job-c", ChatID: "200", Novel: "Other",
		Start: 1, End: 2, Current: 1, Status: jobstore.StatusRunning,
	}
	for _, rec := range []*jobstore.Record{running, completed, otherChat} {
		if err := store.Write(rec); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("renders progress and hides other chats", func(t *testing.T) {
		b.handleMessage(ctx, message(100, 1, "/status"))
		got := chat.lastMessage()
		if !strings.Contains(got, "50%") || !strings.Contains(got, "In Progress") {
			t.Errorf("missing running progress in %q", got)
		}
		if !strings.Contains(got, "Completed") {
			t.Errorf("missing completed job in %q", got)
		}
		if strings.Contains(got, "job-c") {
			t.Errorf("leaked another chat's job in %q", got)
		}
	})

	t.Run("terminal records are deleted after display", func(t *testing.T) {
		records, _ := store.ReadAll(jobstore.Filter{ChatID: "100"})
		ids := make([]string, 0, len(records))
		for _, r := range records {
			ids = append(ids, r.JobID)
		}
		if len(records) != 1 || records[0].JobID != "job-a" {
			t.Errorf("remaining records = %v, want only the running job", ids)
		}
	})

	t.Run("job id filter", func(t *testing.T) {
		b.handleMessage(ctx, message(100, 1, "/status job-a"))
		got := chat.lastMessage()
		if !strings.Contains(got, "job-a") {
			t.Errorf("got %q", got)
		}
	})
}
