package bot

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/novelforge/novelforge/internal/runner"
)

// JobLauncher starts a job runner for one request.
type JobLauncher interface {
	Launch(p runner.Params) error
}

// ProcessLauncher spawns `novelforge scrape` as a detached child process, so
// a crashing job can never take the chat interface down with it. All job
// outcomes flow back through the job record and the outputs directory.
type ProcessLauncher struct {
	execPath string
	logsDir  string
	log      *slog.Logger
}

// NewProcessLauncher resolves the current executable for respawning.
func NewProcessLauncher(logsDir string, logger *slog.Logger) (*ProcessLauncher, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessLauncher{execPath: exe, logsDir: logsDir, log: logger}, nil
}

// Launch starts the runner process with the job parameters in its
// environment and returns once it has started. The child's output is
// appended to the scraper log.
func (l *ProcessLauncher) Launch(p runner.Params) error {
	cmd := exec.Command(l.execPath, "scrape")
	cmd.Env = append(os.Environ(), p.Env()...)

	logPath := filepath.Join(l.logsDir, "scraper.log")
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open scraper log: %w", err)
	}
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return fmt.Errorf("failed to spawn scraper: %w", err)
	}

	l.log.Info("spawned scraper", "job_id", p.JobID, "pid", cmd.Process.Pid)

	// Reap the child to avoid leaving a zombie; its exit status is not
	// meaningful here, outcomes live in the job record.
	go func() {
		_ = cmd.Wait()
		logFile.Close()
	}()

	return nil
}
