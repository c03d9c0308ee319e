// Package store holds the task and signature record stores. Every backend
// (in-memory, SQLite, PostgreSQL) satisfies the same interfaces and reports
// the same outcomes: a record, ErrNotFound, or for bulk deletes an empty
// slice.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"todo-api/models"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// TaskStore is the record store for tasks.
type TaskStore interface {
	CreateTask(ctx context.Context, in models.NewTask) (models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) (models.Task, error)
	// DeleteCompletedTasks removes every completed task and returns them
	// newest first. No match yields an empty slice and a nil error.
	DeleteCompletedTasks(ctx context.Context) ([]models.Task, error)
}

// SignatureStore is the record store for signatures.
type SignatureStore interface {
	CreateSignature(ctx context.Context, in models.NewSignature) (models.Signature, error)
	GetSignature(ctx context.Context, id int64) (models.Signature, error)
	ListSignatures(ctx context.Context) ([]models.Signature, error)
	UpdateSignature(ctx context.Context, id int64, patch models.SignaturePatch) (models.Signature, error)
	DeleteSignature(ctx context.Context, id int64) (models.Signature, error)
}

// Store is a complete backend.
type Store interface {
	TaskStore
	SignatureStore
	Ping(ctx context.Context) error
	Close() error
}

// BackendError wraps a failure reported by the persistence layer.
type BackendError struct {
	Op       string
	SQLState string
	Err      error
}

func (e *BackendError) Error() string {
	if e.SQLState != "" {
		return fmt.Sprintf("%s: %v (sqlstate %s)", e.Op, e.Err, e.SQLState)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func backendError(op string, err error) error {
	be := &BackendError{Op: op, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		be.SQLState = pgErr.Code
	}
	return be
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}
