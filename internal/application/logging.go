package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/marcelomgarcia/oncall/internal/directory"
	"github.com/marcelomgarcia/oncall/internal/logging"
	"github.com/marcelomgarcia/oncall/internal/paging"
	"github.com/marcelomgarcia/oncall/internal/persistence"
	"github.com/marcelomgarcia/oncall/internal/resolution"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", "oncall", "operation", operation}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps the error taxonomy to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, resolution.ErrNoActiveAssignment):
		return "no_active_assignment"
	case errors.Is(err, persistence.ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, directory.ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, ErrPagingNotConfigured), errors.Is(err, ErrJournalNotConfigured):
		return "not_configured"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var recordErr *persistence.RecordError
	if errors.As(err, &recordErr) {
		return "schedule_parse"
	}
	var apiErr *paging.APIError
	if errors.As(err, &apiErr) {
		return "remote_api"
	}

	return "unexpected"
}
