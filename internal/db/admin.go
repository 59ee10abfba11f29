package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = "admin"

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func EnsureAdmin(ctx context.Context, database DB, username, password string, logger *zap.Logger) error {
	if username == "" || password == "" {
		logger.Warn("Admin credentials not configured, skipping admin bootstrap")
		return nil
	}

	var count int
	err := database.ExecQueryRow(ctx, "SELECT COUNT(*) FROM users WHERE username = $1", username).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	if count > 0 {
		logger.Info("Admin user already exists", zap.String("username", username))
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	if _, err := database.Exec(ctx,
		"INSERT INTO users (username, password, role) VALUES ($1, $2, $3)",
		username, string(hashed), RoleAdmin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Admin user created", zap.String("username", username))
	return nil
}
