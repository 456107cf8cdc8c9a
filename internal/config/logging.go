package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SetupLogFile creates a timestamped log file under dir and prunes old
// ones, keeping the maxFiles most recent. The caller owns the handle.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("server-%s.log",
		time.Now().Format("2006-01-02T15-04-05")))

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := cleanupOldLogs(dir, maxFiles); err != nil {
		// Pruning failure should not take logging down with it.
		fmt.Fprintf(os.Stderr, "warning: failed to clean up old logs: %v\n", err)
	}

	return f, nil
}

func cleanupOldLogs(dir string, maxFiles int) error {
	files, err := filepath.Glob(filepath.Join(dir, "server-*.log"))
	if err != nil {
		return err
	}
	if len(files) <= maxFiles {
		return nil
	}

	// The timestamp in the name sorts chronologically.
	sort.Strings(files)

	for _, old := range files[:len(files)-maxFiles] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove %s: %w", old, err)
		}
	}

	return nil
}
