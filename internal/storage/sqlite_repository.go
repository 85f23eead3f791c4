package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	// foreign_keys is a per-connection setting.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database at path, creating its directory, and applies
// the embedded migrations.
func OpenSQLite(path string, log zerolog.Logger) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// UpsertDocument inserts in, or refreshes the counts of the document already
// stored under in.Path. The stored row is returned.
func (r *SQLiteRepository) UpsertDocument(ctx context.Context, in Document) (Document, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, path, checkbox_count, open_count, scanned_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checkbox_count = excluded.checkbox_count,
			open_count = excluded.open_count,
			scanned_at = excluded.scanned_at`,
		in.ID, in.Path, in.CheckboxCount, in.OpenCount, mustTime(in.ScannedAt),
	)
	if err != nil {
		return Document{}, err
	}
	return r.GetDocumentByPath(ctx, in.Path)
}

func (r *SQLiteRepository) GetDocument(ctx context.Context, id string) (Document, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, path, checkbox_count, open_count, scanned_at
		FROM documents WHERE id = ?`, id)
	item, err := scanDocument(row)
	if err != nil {
		return Document{}, notFound(err)
	}
	return item, nil
}

func (r *SQLiteRepository) GetDocumentByPath(ctx context.Context, path string) (Document, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, path, checkbox_count, open_count, scanned_at
		FROM documents WHERE path = ?`, path)
	item, err := scanDocument(row)
	if err != nil {
		return Document{}, notFound(err)
	}
	return item, nil
}

func (r *SQLiteRepository) DeleteDocument(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListDocuments(ctx context.Context, filter DocumentListFilter) ([]Document, error) {
	args := make([]any, 0, 2)
	query := `SELECT id, path, checkbox_count, open_count, scanned_at FROM documents ORDER BY path ASC` +
		applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		item, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCompletion(ctx context.Context, in Completion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (id, document_id, line, description, status_symbol, rule, done_at, next_due_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.DocumentID, in.Line, in.Description, in.StatusSymbol, in.Rule,
		mustTime(in.DoneAt), nullTime(in.NextDueAt), mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetCompletion(ctx context.Context, id string) (Completion, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, document_id, line, description, status_symbol, rule, done_at, next_due_at, created_at
		FROM completions WHERE id = ?`, id)
	item, err := scanCompletion(row)
	if err != nil {
		return Completion{}, notFound(err)
	}
	return item, nil
}

func (r *SQLiteRepository) DeleteCompletion(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM completions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListCompletions(ctx context.Context, filter CompletionListFilter) ([]Completion, error) {
	query := `SELECT id, document_id, line, description, status_symbol, rule, done_at, next_due_at, created_at FROM completions`
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if filter.DocumentID != "" {
		clauses = append(clauses, "document_id = ?")
		args = append(args, filter.DocumentID)
	}
	if filter.Since != nil {
		clauses = append(clauses, "done_at >= ?")
		args = append(args, mustTime(*filter.Since))
	}
	if filter.Recurring != nil {
		if *filter.Recurring {
			clauses = append(clauses, "rule <> ''")
		} else {
			clauses = append(clauses, "rule = ''")
		}
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY done_at DESC, line ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Completion, 0)
	for rows.Next() {
		item, scanErr := scanCompletion(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (Document, error) {
	var out Document
	var scanned string
	if err := s.Scan(&out.ID, &out.Path, &out.CheckboxCount, &out.OpenCount, &scanned); err != nil {
		return Document{}, err
	}
	scannedAt, err := parseRequiredTime(scanned)
	if err != nil {
		return Document{}, err
	}
	out.ScannedAt = scannedAt
	return out, nil
}

func scanCompletion(s scanner) (Completion, error) {
	var out Completion
	var done string
	var next sql.NullString
	var created string
	if err := s.Scan(&out.ID, &out.DocumentID, &out.Line, &out.Description, &out.StatusSymbol, &out.Rule, &done, &next, &created); err != nil {
		return Completion{}, err
	}
	doneAt, err := parseRequiredTime(done)
	if err != nil {
		return Completion{}, err
	}
	nextDue, err := parseNullableTime(next)
	if err != nil {
		return Completion{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Completion{}, err
	}
	out.DoneAt = doneAt
	out.NextDueAt = nextDue
	out.CreatedAt = createdAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
