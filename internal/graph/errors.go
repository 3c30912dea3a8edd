package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/newsmesh/newsgraph/internal/models"
)

// wrapQueryError inspects a SurrealDB error and maps it onto the engine's
// error taxonomy. Context deadline errors become ErrTimeout, connection
// failures become ErrStoreUnavailable; everything else passes through
// unchanged.
func wrapQueryError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, models.ErrTimeout)
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		if strings.Contains(msg, "connection") || strings.Contains(msg, "unavailable") {
			return fmt.Errorf("%s: %w: %s", op, models.ErrStoreUnavailable, msg)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
