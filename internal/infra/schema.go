package infra

import (
	"context"
	"fmt"

	"github.com/Shaharyar2310/silkif.y/internal/sqlinline"
)

// EnsureSchema creates the users, user_settings and images tables when they
// do not exist yet. Statements are idempotent.
func EnsureSchema(ctx context.Context, exec SQLExecutor) error {
	for i, stmt := range sqlinline.SchemaStatements {
		if _, err := exec.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
