package flatfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/marcelomgarcia/oncall/internal/persistence"
)

// ScheduleStore is the append-only, line-oriented assignment log. File order
// is insertion order and decides the winner when windows overlap.
type ScheduleStore struct {
	path string
}

// NewScheduleStore returns a store backed by the schedule file at path.
func NewScheduleStore(path string) *ScheduleStore {
	return &ScheduleStore{path: path}
}

// Append writes one serialized assignment record to the end of the schedule
// file. The record is written in a single call so concurrent readers never
// observe a torn line.
func (s *ScheduleStore) Append(ctx context.Context, assignment persistence.Assignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("flatfile: open schedule %s: %w", s.path, err)
	}

	_, writeErr := f.WriteString(formatRecord(assignment))
	closeErr := f.Close()
	if writeErr != nil {
		return fmt.Errorf("flatfile: append to schedule %s: %w", s.path, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("flatfile: close schedule %s: %w", s.path, closeErr)
	}
	return nil
}

// List loads the full ordered assignment sequence. Blank lines are skipped;
// any other malformed line fails the whole load with a *persistence.RecordError.
func (s *ScheduleStore) List(ctx context.Context) ([]persistence.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("flatfile: open schedule %s: %w", s.path, err)
	}
	defer f.Close()

	var assignments []persistence.Assignment
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		assignment, parseErr := parseRecord(line)
		if parseErr != nil {
			return nil, &persistence.RecordError{Path: s.path, Line: lineNo, Err: parseErr}
		}
		assignments = append(assignments, assignment)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("flatfile: read schedule %s: %w", s.path, err)
	}
	return assignments, nil
}
