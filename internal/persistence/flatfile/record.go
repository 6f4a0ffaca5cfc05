// Package flatfile implements the line-oriented stores behind the on-call
// schedule and the current-state record.
//
// Both files share one external record format, one assignment per line:
//
//	<user_id> | <YYYY-MM-DD> | <YYYY-MM-DD>
//
// Fields are trimmed of surrounding whitespace and dates are parsed strictly.
// A line that fails to parse invalidates the whole load; partial results are
// never returned.
package flatfile

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcelomgarcia/oncall/internal/persistence"
)

const fieldSeparator = "|"

func parseRecord(line string) (persistence.Assignment, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) != 3 {
		return persistence.Assignment{}, fmt.Errorf("expected 3 fields separated by %q, got %d", fieldSeparator, len(fields))
	}

	userID := strings.TrimSpace(fields[0])
	if userID == "" {
		return persistence.Assignment{}, fmt.Errorf("empty user id")
	}

	start, err := parseDate(fields[1])
	if err != nil {
		return persistence.Assignment{}, fmt.Errorf("start date: %w", err)
	}
	end, err := parseDate(fields[2])
	if err != nil {
		return persistence.Assignment{}, fmt.Errorf("end date: %w", err)
	}

	return persistence.Assignment{UserID: userID, Start: start, End: end}, nil
}

func formatRecord(assignment persistence.Assignment) string {
	return fmt.Sprintf("%s | %s | %s\n",
		assignment.UserID,
		assignment.Start.Format(time.DateOnly),
		assignment.End.Format(time.DateOnly),
	)
}

func parseDate(field string) (time.Time, error) {
	parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(field))
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
