// Package home manages the novelforge home directory layout.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the novelforge home directory.
	DefaultDirName = ".novelforge"

	// OutputsDirName is the subdirectory for finished documents awaiting delivery.
	OutputsDirName = "outputs"

	// JobsDirName is the subdirectory for durable job records.
	JobsDirName = "jobs"

	// BackupsDirName is the subdirectory for archival document copies.
	BackupsDirName = "backups"

	// LogsDirName is the subdirectory for child process logs.
	LogsDirName = "logs"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the novelforge home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.novelforge).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// OutputsPath returns the directory documents are written to and delivered from.
func (d *Dir) OutputsPath() string {
	return filepath.Join(d.path, OutputsDirName)
}

// JobsPath returns the directory holding one record file per job.
func (d *Dir) JobsPath() string {
	return filepath.Join(d.path, JobsDirName)
}

// BackupsPath returns the directory for archival copies of documents.
func (d *Dir) BackupsPath() string {
	return filepath.Join(d.path, BackupsDirName)
}

// LogsPath returns the directory for child process log files.
func (d *Dir) LogsPath() string {
	return filepath.Join(d.path, LogsDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{
		d.OutputsPath(),
		d.JobsPath(),
		d.BackupsPath(),
		d.LogsPath(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
