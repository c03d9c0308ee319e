package store

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"todo-api/models"
)

// Dialect selects placeholder syntax for a SQL backend.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return "dialect(" + strconv.Itoa(int(d)) + ")"
	}
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Patch is implemented by every sparse update payload. Assignments must list
// only the fields present in the payload.
type Patch interface {
	Assignments() []models.Assignment
	IsEmpty() bool
}

var (
	errNoAssignments = errors.New("update has no assignments")
	errNoKey         = errors.New("update has no key column")
)

// UpdateBuilder compiles a parameterized UPDATE whose SET list holds exactly
// the assignments handed to it. Values never appear in the statement text.
type UpdateBuilder struct {
	dialect   Dialect
	table     string
	sets      []models.Assignment
	keyColumn string
	keyValue  any
	returning []string
}

func NewUpdate(d Dialect, table string) *UpdateBuilder {
	return &UpdateBuilder{dialect: d, table: table}
}

func (b *UpdateBuilder) Set(assignments ...models.Assignment) *UpdateBuilder {
	b.sets = append(b.sets, assignments...)
	return b
}

// Where restricts the update to the row whose column equals value.
func (b *UpdateBuilder) Where(column string, value any) *UpdateBuilder {
	b.keyColumn = column
	b.keyValue = value
	return b
}

func (b *UpdateBuilder) Returning(columns ...string) *UpdateBuilder {
	b.returning = append(b.returning, columns...)
	return b
}

// Build returns the statement text and its arguments. The key value is always
// the last argument.
func (b *UpdateBuilder) Build() (string, []any, error) {
	if len(b.sets) == 0 {
		return "", nil, errNoAssignments
	}
	if b.keyColumn == "" {
		return "", nil, errNoKey
	}

	var sb strings.Builder
	args := make([]any, 0, len(b.sets)+1)

	sb.WriteString("UPDATE ")
	sb.WriteString(quoteIdent(b.table))
	sb.WriteString(" SET ")
	for i, a := range b.sets {
		if i > 0 {
			sb.WriteString(", ")
		}
		args = append(args, a.Value)
		sb.WriteString(quoteIdent(a.Column))
		sb.WriteString(" = ")
		sb.WriteString(b.dialect.Placeholder(len(args)))
	}

	args = append(args, b.keyValue)
	sb.WriteString(" WHERE ")
	sb.WriteString(quoteIdent(b.keyColumn))
	sb.WriteString(" = ")
	sb.WriteString(b.dialect.Placeholder(len(args)))

	if len(b.returning) > 0 {
		sb.WriteString(" RETURNING ")
		sb.WriteString(quoteIdentList(b.returning))
	}
	return sb.String(), args, nil
}

// compileUpdate builds the statement that applies patch to the row with id.
func compileUpdate(d Dialect, table string, id int64, patch Patch, returning []string) (string, []any, error) {
	return NewUpdate(d, table).
		Set(patch.Assignments()...).
		Where("id", id).
		Returning(returning...).
		Build()
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteIdentList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}
