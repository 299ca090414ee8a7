package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates the users and links tables if they do not exist.
// Cascading deletion of a user's links is enforced by the foreign key,
// not by application code.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*Link)(nil)).
		IfNotExists().
		ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create links table: %w", err)
	}

	return nil
}
