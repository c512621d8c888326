// Package store persists users and evaluation reports in SQLite. Each
// report is stored once, keyed by job_id, and retrieved by its owner.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pharmascout/internal/model"
)

// ErrNotFound indicates the requested row does not exist
var ErrNotFound = errors.New("not found")

// User is a registered account
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
}

// Store manages the SQLite database
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and bootstraps the schema
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			first_name TEXT,
			last_name TEXT,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			job_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			query TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_user ON reports(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_query ON reports(query)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new user
func (s *Store) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, password_hash) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByEmail fetches a user by email, returning ErrNotFound if absent
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, password_hash, created_at FROM users WHERE email = ?`, email)

	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// UserByID fetches a user by ID, returning ErrNotFound if absent
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, password_hash, created_at FROM users WHERE id = ?`, id)

	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// SaveReport stores one EvaluationResult for its owner, keyed by job_id
func (s *Store) SaveReport(ctx context.Context, userID string, result *model.EvaluationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (job_id, user_id, query, data) VALUES (?, ?, ?, ?)`,
		result.JobID, userID, result.Query, string(data))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// ReportsByUser returns the owner's stored reports, oldest first
func (s *Store) ReportsByUser(ctx context.Context, userID string) ([]*model.EvaluationResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM reports WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*model.EvaluationResult
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var result model.EvaluationResult
		if err := json.Unmarshal([]byte(data), &result); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}

// ReportByJobID fetches one report if it belongs to userID
func (s *Store) ReportByJobID(ctx context.Context, userID, jobID string) (*model.EvaluationResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data FROM reports WHERE job_id = ? AND user_id = ?`, jobID, userID)

	var data string
	err := row.Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}

	var result model.EvaluationResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &result, nil
}
