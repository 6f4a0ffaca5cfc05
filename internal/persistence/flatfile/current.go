package flatfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcelomgarcia/oncall/internal/persistence"
)

// CurrentStateStore persists the singleton record of the last-published
// active assignment.
type CurrentStateStore struct {
	path string
}

// NewCurrentStateStore returns a store backed by the current-state file at
// path.
func NewCurrentStateStore(path string) *CurrentStateStore {
	return &CurrentStateStore{path: path}
}

// Current reads the persisted record. A missing or empty file means the
// state was never initialized (persistence.ErrNotInitialized); a malformed
// record means corruption and surfaces as a *persistence.RecordError.
func (s *CurrentStateStore) Current(ctx context.Context) (persistence.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return persistence.Assignment{}, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.Assignment{}, persistence.ErrNotInitialized
		}
		return persistence.Assignment{}, fmt.Errorf("flatfile: open current state %s: %w", s.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		assignment, parseErr := parseRecord(line)
		if parseErr != nil {
			return persistence.Assignment{}, &persistence.RecordError{Path: s.path, Line: 1, Err: parseErr}
		}
		return assignment, nil
	}
	if err := scanner.Err(); err != nil {
		return persistence.Assignment{}, fmt.Errorf("flatfile: read current state %s: %w", s.path, err)
	}
	return persistence.Assignment{}, persistence.ErrNotInitialized
}

// SetCurrent replaces the singleton record atomically: the new record is
// written to a temporary file in the same directory and renamed over the
// target, so a crash never leaves a truncated state file behind.
func (s *CurrentStateStore) SetCurrent(ctx context.Context, assignment persistence.Assignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("flatfile: create temp state file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.WriteString(formatRecord(assignment))
	if writeErr == nil {
		writeErr = tmp.Sync()
	}
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpName)
		if writeErr != nil {
			return fmt.Errorf("flatfile: write current state: %w", writeErr)
		}
		return fmt.Errorf("flatfile: close current state: %w", closeErr)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("flatfile: replace current state %s: %w", s.path, err)
	}
	return nil
}
