package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, created_at`

func (s *SQLStore) CreateUser(ctx context.Context, u *core.User) error {
	u.CreatedAt = s.now().UTC()
	id, err := s.insert(ctx, s.db,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, s.dialect.timestamp(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	return nil
}

func (s *SQLStore) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (s *SQLStore) getUser(ctx context.Context, query string, arg any) (core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(query), arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		timeScanner{&u.CreatedAt},
	)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", mapError(err))
	}
	return u, nil
}

func (s *SQLStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	ok, err := s.exists(ctx, `SELECT 1 FROM users WHERE username = ?`, username)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return ok, nil
}

func (s *SQLStore) EmailExists(ctx context.Context, email string) (bool, error) {
	ok, err := s.exists(ctx, `SELECT 1 FROM users WHERE email = ?`, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return ok, nil
}
