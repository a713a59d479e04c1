package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/axdbertuol/carford/db"
)

var (
	// ErrUserNotFound is returned when no user has the requested username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when the username is already taken.
	ErrUserExists = errors.New("user already exists")
)

// Store persists users in PostgreSQL.
type Store struct {
	db db.DBTX
}

// NewStore creates a Store on top of conn.
func NewStore(conn db.DBTX) *Store {
	return &Store{db: conn}
}

// Create inserts a user with an already hashed password.
func (s *Store) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	const query = `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, created_at`

	var u User
	if err := s.db.GetContext(ctx, &u, query, username, passwordHash); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// GetByUsername looks a user up by its exact username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*User, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1`

	var u User
	if err := s.db.GetContext(ctx, &u, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}
