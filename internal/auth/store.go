package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/JonMunkholm/dsr/internal/database"
)

// pgUniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const pgUniqueViolation = "23505"

// UserStore persists accounts. Emails are compared case-insensitively.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, string, error)
}

// PostgresUserStore keeps accounts in the dsr_users table.
type PostgresUserStore struct {
	queries *db.Queries
}

// NewPostgresUserStore creates a store on conn.
func NewPostgresUserStore(conn db.DBTX) *PostgresUserStore {
	return &PostgresUserStore{queries: db.New(conn)}
}

func (s *PostgresUserStore) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	row, err := s.queries.CreateUser(ctx, db.CreateUserParams{
		ID:           pgtype.UUID{Bytes: uuid.New(), Valid: true},
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return userFromRow(row), nil
}

func (s *PostgresUserStore) UserByEmail(ctx context.Context, email string) (User, string, error) {
	row, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return User{}, "", fmt.Errorf("get user: %w", err)
	}
	return userFromRow(row), row.PasswordHash, nil
}

func userFromRow(row db.DsrUser) User {
	return User{
		ID:        uuid.UUID(row.ID.Bytes).String(),
		Email:     row.Email,
		CreatedAt: row.CreatedAt.Time,
	}
}

// MemoryUserStore keeps accounts in process memory.
type MemoryUserStore struct {
	mu     sync.Mutex
	users  map[string]User
	hashes map[string]string
}

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:  make(map[string]User),
		hashes: make(map[string]string),
	}
}

func (m *MemoryUserStore) CreateUser(_ context.Context, email, passwordHash string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := m.users[key]; ok {
		return User{}, ErrEmailTaken
	}
	u := User{ID: uuid.New().String(), Email: email, CreatedAt: time.Now()}
	m.users[key] = u
	m.hashes[key] = passwordHash
	return u, nil
}

func (m *MemoryUserStore) UserByEmail(_ context.Context, email string) (User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(email)
	u, ok := m.users[key]
	if !ok {
		return User{}, "", ErrInvalidCredentials
	}
	return u, m.hashes[key], nil
}

var (
	_ UserStore = (*PostgresUserStore)(nil)
	_ UserStore = (*MemoryUserStore)(nil)
)
