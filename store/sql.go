package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"todo-api/models"
)

var _ Store = (*SQLStore)(nil)

const (
	tasksTable      = "todos"
	signaturesTable = "signatures"
)

var (
	taskColumns      = []string{"id", "task", "completed", "due_date"}
	signatureColumns = []string{"id", "name", "message"}
)

// SQLStore persists records in a relational database. Each operation is a
// single statement, so atomicity comes from the engine rather than from
// application locks.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// NewSQLStore wraps an open database whose schema already exists.
func NewSQLStore(db *sql.DB, dialect Dialect, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With("component", "store", "dialect", dialect.String()),
	}
}

// DB exposes the underlying handle for tests and health checks.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return backendError("ping", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// ph returns the n-th placeholder for the store's dialect.
func (s *SQLStore) ph(n int) string { return s.dialect.Placeholder(n) }

func (s *SQLStore) CreateTask(ctx context.Context, in models.NewTask) (models.Task, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (task, completed, due_date) VALUES (%s, %s, %s) RETURNING %s`,
		tasksTable, s.ph(1), s.ph(2), s.ph(3), strings.Join(taskColumns, ", "),
	)
	t, err := scanTask(s.db.QueryRowContext(ctx, query, in.Task, false, timeArg(in.DueDate)))
	if err != nil {
		return models.Task{}, backendError("insert task", err)
	}
	return t, nil
}

func (s *SQLStore) GetTask(ctx context.Context, id int64) (models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = %s`,
		strings.Join(taskColumns, ", "), tasksTable, s.ph(1))
	t, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, notFound("task", id)
	}
	if err != nil {
		return models.Task{}, backendError("select task", err)
	}
	return t, nil
}

func (s *SQLStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id DESC`,
		strings.Join(taskColumns, ", "), tasksTable)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, backendError("list tasks", err)
	}
	tasks, err := collectRows(rows, scanTask)
	if err != nil {
		return nil, backendError("list tasks", err)
	}
	return tasks, nil
}

// UpdateTask applies only the fields present in patch. An empty patch issues
// no write and returns the current record.
func (s *SQLStore) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (models.Task, error) {
	if patch.IsEmpty() {
		return s.GetTask(ctx, id)
	}
	query, args, err := compileUpdate(s.dialect, tasksTable, id, patch, taskColumns)
	if err != nil {
		return models.Task{}, fmt.Errorf("compile task update: %w", err)
	}
	s.logger.DebugContext(ctx, "update task", "id", id, "statement", query)

	t, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, notFound("task", id)
	}
	if err != nil {
		return models.Task{}, backendError("update task", err)
	}
	return t, nil
}

func (s *SQLStore) DeleteTask(ctx context.Context, id int64) (models.Task, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = %s RETURNING %s`,
		tasksTable, s.ph(1), strings.Join(taskColumns, ", "))
	t, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, notFound("task", id)
	}
	if err != nil {
		return models.Task{}, backendError("delete task", err)
	}
	return t, nil
}

func (s *SQLStore) DeleteCompletedTasks(ctx context.Context) ([]models.Task, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE completed = %s RETURNING %s`,
		tasksTable, s.ph(1), strings.Join(taskColumns, ", "))
	rows, err := s.db.QueryContext(ctx, query, true)
	if err != nil {
		return nil, backendError("delete completed tasks", err)
	}
	tasks, err := collectRows(rows, scanTask)
	if err != nil {
		return nil, backendError("delete completed tasks", err)
	}
	// RETURNING carries no ordering guarantee.
	slices.SortFunc(tasks, func(a, b models.Task) int { return compareDesc(a.ID, b.ID) })
	s.logger.InfoContext(ctx, "deleted completed tasks", "count", len(tasks))
	return tasks, nil
}

func (s *SQLStore) CreateSignature(ctx context.Context, in models.NewSignature) (models.Signature, error) {
	query := fmt.Sprintf(`INSERT INTO %s (name, message) VALUES (%s, %s) RETURNING %s`,
		signaturesTable, s.ph(1), s.ph(2), strings.Join(signatureColumns, ", "))
	sig, err := scanSignature(s.db.QueryRowContext(ctx, query, in.Name, stringArg(in.Message)))
	if err != nil {
		return models.Signature{}, backendError("insert signature", err)
	}
	return sig, nil
}

func (s *SQLStore) GetSignature(ctx context.Context, id int64) (models.Signature, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = %s`,
		strings.Join(signatureColumns, ", "), signaturesTable, s.ph(1))
	sig, err := scanSignature(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Signature{}, notFound("signature", id)
	}
	if err != nil {
		return models.Signature{}, backendError("select signature", err)
	}
	return sig, nil
}

func (s *SQLStore) ListSignatures(ctx context.Context) ([]models.Signature, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id DESC`,
		strings.Join(signatureColumns, ", "), signaturesTable)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, backendError("list signatures", err)
	}
	sigs, err := collectRows(rows, scanSignature)
	if err != nil {
		return nil, backendError("list signatures", err)
	}
	return sigs, nil
}

func (s *SQLStore) UpdateSignature(ctx context.Context, id int64, patch models.SignaturePatch) (models.Signature, error) {
	if patch.IsEmpty() {
		return s.GetSignature(ctx, id)
	}
	query, args, err := compileUpdate(s.dialect, signaturesTable, id, patch, signatureColumns)
	if err != nil {
		return models.Signature{}, fmt.Errorf("compile signature update: %w", err)
	}
	s.logger.DebugContext(ctx, "update signature", "id", id, "statement", query)

	sig, err := scanSignature(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Signature{}, notFound("signature", id)
	}
	if err != nil {
		return models.Signature{}, backendError("update signature", err)
	}
	return sig, nil
}

func (s *SQLStore) DeleteSignature(ctx context.Context, id int64) (models.Signature, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = %s RETURNING %s`,
		signaturesTable, s.ph(1), strings.Join(signatureColumns, ", "))
	sig, err := scanSignature(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Signature{}, notFound("signature", id)
	}
	if err != nil {
		return models.Signature{}, backendError("delete signature", err)
	}
	return sig, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(rs rowScanner) (models.Task, error) {
	var t models.Task
	var due nullTime
	if err := rs.Scan(&t.ID, &t.Task, &t.Completed, &due); err != nil {
		return models.Task{}, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return t, nil
}

// collectRows scans every row with scan and closes rows. The result is never
// nil, so an empty result set is distinguishable from a failure.
func collectRows[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanSignature(rs rowScanner) (models.Signature, error) {
	var sig models.Signature
	var msg sql.NullString
	if err := rs.Scan(&sig.ID, &sig.Name, &msg); err != nil {
		return models.Signature{}, err
	}
	if msg.Valid {
		m := msg.String
		sig.Message = &m
	}
	return sig, nil
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func stringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func compareDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

// nullTime scans timestamps from drivers that hand back either time.Time or
// their text encoding (SQLite does the latter for RETURNING columns).
type nullTime struct {
	Time  time.Time
	Valid bool
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (n *nullTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = v.UTC(), true
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (n *nullTime) parse(s string) error {
	// time.Time.String output may carry a monotonic clock suffix.
	if i := strings.Index(s, " m="); i >= 0 {
		s = s[:i]
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			n.Time, n.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("parse timestamp %q", s)
}
