package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
)

const userColumns = `id, email, password_hash, full_name, role, created_at`

func (m *MySQLAdapter) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Role, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return m.userBy(ctx, `id = ?`, userID)
}

func (m *MySQLAdapter) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.userBy(ctx, `email = ?`, email)
}

func (m *MySQLAdapter) userBy(ctx context.Context, where string, arg any) (*domain.User, error) {
	var u domain.User
	err := m.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (m *MySQLAdapter) ListUsers(ctx context.Context) ([]domain.User, error) {
	return m.listUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
}

func (m *MySQLAdapter) ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return m.listUsers(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY created_at`, role)
}

func (m *MySQLAdapter) listUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
