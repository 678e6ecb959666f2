package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"mercator-hq/templatewatch/pkg/history"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS templates (
	identifier   TEXT PRIMARY KEY,
	path         TEXT NOT NULL,
	category     TEXT NOT NULL,
	severity     TEXT NOT NULL,
	description  TEXT NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	authors      TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '',
	source_url   TEXT NOT NULL,
	created_at   TEXT,
	status       TEXT NOT NULL,
	committed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_templates_category ON templates(category);
CREATE INDEX IF NOT EXISTS idx_templates_severity ON templates(severity);
`

// SQLiteStore keeps one row per record in a SQLite database. The database
// is opened lazily, so a corrupt file surfaces on Load rather than here.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a store backed by the database file at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Load returns all rows ordered by identifier.
func (s *SQLiteStore) Load(ctx context.Context) ([]*Record, error) {
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT identifier, path, category, severity, description, name, authors, tags,
		       source_url, created_at, status, committed_at
		FROM templates
		ORDER BY identifier`)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			rec         Record
			authors     string
			tags        string
			createdAt   sql.NullString
			status      string
			committedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Path, &rec.Category, &rec.Severity,
			&rec.Description, &rec.Name, &authors, &tags, &rec.SourceURL,
			&createdAt, &status, &committedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template row: %w", err)
		}

		if rec.Authors, err = decodeList(authors); err != nil {
			return nil, fmt.Errorf("invalid authors for %s: %w", rec.ID, err)
		}
		if rec.Tags, err = decodeList(tags); err != nil {
			return nil, fmt.Errorf("invalid tags for %s: %w", rec.ID, err)
		}

		rec.Status = history.Status(status)
		if createdAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, createdAt.String)
			if err != nil {
				return nil, fmt.Errorf("invalid created_at for %s: %w", rec.ID, err)
			}
			rec.CreatedAt = &t
		}
		if rec.CommittedAt, err = time.Parse(time.RFC3339Nano, committedAt); err != nil {
			return nil, fmt.Errorf("invalid committed_at for %s: %w", rec.ID, err)
		}

		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}

	return records, nil
}

// Save replaces all rows with records in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, records []*Record) error {
	if err := s.initSchema(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM templates`); err != nil {
		return fmt.Errorf("failed to clear templates: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO templates (identifier, path, category, severity, description,
		                       name, authors, tags, source_url, created_at, status, committed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var createdAt sql.NullString
		if rec.CreatedAt != nil {
			createdAt = sql.NullString{String: rec.CreatedAt.UTC().Format(time.RFC3339Nano), Valid: true}
		}

		authors, err := encodeList(rec.Authors)
		if err != nil {
			return fmt.Errorf("failed to encode authors of %s: %w", rec.ID, err)
		}
		tags, err := encodeList(rec.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags of %s: %w", rec.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.Path, rec.Category, rec.Severity, rec.Description,
			rec.Name, authors, tags, rec.SourceURL,
			createdAt, string(rec.Status), rec.CommittedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("failed to insert %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// encodeList stores a string list as a JSON array, or "" when empty.
func encodeList(items []string) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList(value string) ([]string, error) {
	if value == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Backend returns "sqlite".
func (s *SQLiteStore) Backend() string {
	return BackendSQLite
}

// Location returns the database file path.
func (s *SQLiteStore) Location() string {
	return s.path
}
