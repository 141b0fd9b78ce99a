// Package history manages the rolling archive of processed runs: it prunes
// history subfolders older than the configured retention window and creates
// the subfolder for the current run.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// WarnFunc mirrors rewrite.WarnFunc so callers can route history warnings
// through the same message-catalog lookup as the rewriter's.
type WarnFunc func(code, detail string)

// Prune walks histDir and removes any subfolder whose name, parsed with
// folderLayout, is older than storageDays relative to now. A subfolder name
// that doesn't parse as a date is skipped with a logged warning rather than
// treated as an error — unrelated files sometimes end up in the history
// directory and should not abort the run.
func Prune(histDir string, storageDays int, folderLayout string, now time.Time, warn WarnFunc) error {
	entries, err := os.ReadDir(histDir)
	if err != nil {
		return fmt.Errorf("reading history directory %q: %w", histDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folderDate, err := time.Parse(folderLayout, entry.Name())
		if err != nil {
			warn("parse_date_from_folder_name_failed", entry.Name()+": "+err.Error())
			continue
		}
		age := now.Sub(folderDate)
		if age.Hours() <= float64(storageDays)*24 {
			continue
		}
		full := filepath.Join(histDir, entry.Name())
		if err := os.RemoveAll(full); err != nil {
			warn("history_clearing_failed", err.Error())
			continue
		}
		logrus.WithField("folder", full).Info("history folder pruned")
	}
	return nil
}

// CurrentRunDir creates and returns the history subfolder for this run,
// named by formatting now with folderLayout.
func CurrentRunDir(histDir string, folderLayout string, now time.Time) (string, error) {
	dir := filepath.Join(histDir, now.Format(folderLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating history folder %q: %w", dir, err)
	}
	return dir, nil
}

// Archive moves filePath into destDir, keeping its base name.
func Archive(filePath, destDir string) error {
	dest := filepath.Join(destDir, filepath.Base(filePath))
	if err := os.Rename(filePath, dest); err != nil {
		return fmt.Errorf("archiving %q to %q: %w", filePath, dest, err)
	}
	return nil
}
