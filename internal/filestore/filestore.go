// Package filestore holds the small JSON-file-backed stores that sit next
// to the document tree: per-document view counters and comment lists. Both
// follow the same load-mutate-save discipline as the tree, serialized by a
// per-store mutex.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func loadJSON(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	return nil
}

func saveJSON(path string, src interface{}) error {
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}

	return nil
}
