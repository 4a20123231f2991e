package runner

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
)

// Environment variables carrying job parameters from the chat interface to
// the spawned runner process.
const (
	EnvJobID        = "JOB_ID"
	EnvChatID       = "CHAT_ID"
	EnvNovelTitle   = "NOVEL_TITLE"
	EnvBaseURL      = "BASE_URL"
	EnvStartChapter = "START_CHAPTER"
	EnvEndChapter   = "END_CHAPTER"
)

// Params identify one job: which novel, which range, and where the output
// must be delivered.
type Params struct {
	JobID      string
	ChatID     string
	NovelTitle string
	BaseURL    string
	Start      int
	End        int
}

// ParamsFromEnv reads job parameters from the process environment, the
// contract between the chat interface and the runner process. A missing
// JOB_ID is replaced with a fresh one so the runner can also be launched by
// hand.
func ParamsFromEnv() (Params, error) {
	p := Params{
		JobID:      os.Getenv(EnvJobID),
		ChatID:     os.Getenv(EnvChatID),
		NovelTitle: os.Getenv(EnvNovelTitle),
		BaseURL:    os.Getenv(EnvBaseURL),
	}

	if p.JobID == "" {
		p.JobID = uuid.New().String()
	}
	if p.ChatID == "" {
		return Params{}, fmt.Errorf("%s is required", EnvChatID)
	}
	if p.BaseURL == "" {
		return Params{}, fmt.Errorf("%s is required", EnvBaseURL)
	}
	if p.NovelTitle == "" {
		p.NovelTitle = "Unknown Novel"
	}

	var err error
	if p.Start, err = envInt(EnvStartChapter); err != nil {
		return Params{}, err
	}
	if p.End, err = envInt(EnvEndChapter); err != nil {
		return Params{}, err
	}

	return p, nil
}

// Env renders the parameters back into environment variable form for
// spawning a runner process.
func (p Params) Env() []string {
	return []string{
		EnvJobID + "=" + p.JobID,
		EnvChatID + "=" + p.ChatID,
		EnvNovelTitle + "=" + p.NovelTitle,
		EnvBaseURL + "=" + p.BaseURL,
		EnvStartChapter + "=" + strconv.Itoa(p.Start),
		EnvEndChapter + "=" + strconv.Itoa(p.End),
	}
}

func envInt(key string) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return n, nil
}
