package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/okian/langvote/internal/domain/model"
)

// Dialect names a SQL flavour. Values match the registered driver names.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

var schemas = map[Dialect][]string{
	DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS submissions (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    email_key TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    language TEXT NOT NULL,
    reason TEXT NOT NULL,
    time_submitted TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_language ON submissions(language)`,
	},
	DialectPostgres: {
		`CREATE TABLE IF NOT EXISTS submissions (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    email_key TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    language TEXT NOT NULL,
    reason TEXT NOT NULL,
    time_submitted TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_language ON submissions(language)`,
	},
}

// The conflict target keeps seq, so an updated record keeps its position.
const (
	upsertKeepID = `INSERT INTO submissions (id, email_key, name, email, language, reason, time_submitted)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (email_key) DO UPDATE SET
    name = excluded.name,
    email = excluded.email,
    language = excluded.language,
    reason = excluded.reason,
    time_submitted = excluded.time_submitted
RETURNING id`

	upsertReplaceID = `INSERT INTO submissions (id, email_key, name, email, language, reason, time_submitted)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (email_key) DO UPDATE SET
    id = excluded.id,
    name = excluded.name,
    email = excluded.email,
    language = excluded.language,
    reason = excluded.reason,
    time_submitted = excluded.time_submitted
RETURNING id`

	selectColumns = `SELECT id, name, email, language, reason, time_submitted FROM submissions`
)

// SQLStore keeps submissions in a SQL database.
type SQLStore struct {
	settings

	db      *sql.DB
	dialect Dialect
}

var _ Store = (*SQLStore)(nil)

// OpenSQL opens a database for dialect and prepares the schema.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*SQLStore, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// sqlite allows a single writer; one connection also keeps an
		// in-memory database alive for the life of the store.
		db.SetMaxOpenConns(1)
	}

	s, err := NewSQLStore(ctx, db, dialect, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database and creates the schema if needed.
// The store owns db and closes it on Close.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, opts ...Option) (*SQLStore, error) {
	stmts, ok := schemas[dialect]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, dialect)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &SQLStore{
		settings: newSettings(opts),
		db:       db,
		dialect:  dialect,
	}, nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(q string) string {
	if s.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AddOrUpdate implements Store.
func (s *SQLStore) AddOrUpdate(ctx context.Context, in model.SubmissionInput) (sub model.Submission, updated bool, err error) {
	defer observe(OpAddOrUpdate, time.Now(), &err)

	sub = newRecord(in, s.clock())
	candidate := s.newID()
	sub.ID, err = s.upsert(ctx, upsertKeepID, candidate, sub)
	if err != nil {
		return model.Submission{}, false, err
	}
	return sub, sub.ID != candidate, nil
}

// Put implements Store.
func (s *SQLStore) Put(ctx context.Context, sub model.Submission) (err error) {
	defer observe(OpPut, time.Now(), &err)
	if sub.ID == "" {
		return ErrMissingID
	}
	_, err = s.upsert(ctx, upsertReplaceID, sub.ID, sub)
	return err
}

func (s *SQLStore) upsert(ctx context.Context, query, id string, sub model.Submission) (string, error) {
	var stored string
	err := s.db.QueryRowContext(ctx, s.rebind(query),
		id, model.EmailKey(sub.Email), sub.Name, sub.Email, sub.Language, sub.Reason, sub.TimeSubmitted,
	).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("upsert submission: %w", err)
	}
	return stored, nil
}

// All implements Store.
func (s *SQLStore) All(ctx context.Context) (subs []model.Submission, err error) {
	defer observe(OpAll, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	subs = make([]model.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

// Count implements Store.
func (s *SQLStore) Count(ctx context.Context) (n int, err error) {
	defer observe(OpCount, time.Now(), &err)

	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

// CountsByLanguage implements Store.
func (s *SQLStore) CountsByLanguage(ctx context.Context) (counts map[string]int, err error) {
	defer observe(OpCountsByLanguage, time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `SELECT language, COUNT(*) FROM submissions GROUP BY language`)
	if err != nil {
		return nil, fmt.Errorf("count languages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts = make(map[string]int)
	for rows.Next() {
		var (
			lang string
			n    int
		)
		if err := rows.Scan(&lang, &n); err != nil {
			return nil, fmt.Errorf("scan language count: %w", err)
		}
		counts[lang] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate language counts: %w", err)
	}
	return counts, nil
}

// FindByEmail implements Store.
func (s *SQLStore) FindByEmail(ctx context.Context, email string) (sub model.Submission, err error) {
	defer observe(OpFindByEmail, time.Now(), &err)

	row := s.db.QueryRowContext(ctx, s.rebind(selectColumns+` WHERE email_key = ?`), model.EmailKey(email))
	sub, err = scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Submission{}, ErrNotFound
	}
	return sub, err
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (model.Submission, error) {
	var sub model.Submission
	err := row.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Language, &sub.Reason, &sub.TimeSubmitted)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Submission{}, err
	}
	if err != nil {
		return model.Submission{}, fmt.Errorf("scan submission: %w", err)
	}
	return sub, nil
}
