package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no entry matches a lookup.
var ErrNotFound = errors.New("catalog entry not found")

const entryColumns = `id, filename, artist, name, url, size, created_at, updated_at`

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Service provides catalog data operations.
type Service struct {
	db *sql.DB
}

// NewService creates a catalog service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Upsert inserts an entry or replaces the existing one with the same
// filename. The original ID and CreatedAt are kept on replace. An empty URL
// does not overwrite a known one.
func (s *Service) Upsert(ctx context.Context, e *Entry) error {
	if e.Filename == "" {
		return fmt.Errorf("catalog entry filename is required")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata_entries (id, filename, artist, name, url, size, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			artist = excluded.artist,
			name = excluded.name,
			url = CASE WHEN excluded.url = '' THEN metadata_entries.url ELSE excluded.url END,
			size = excluded.size,
			updated_at = excluded.updated_at
	`,
		e.ID, e.Filename, e.Artist, e.Name, e.URL, e.Size,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting catalog entry: %w", err)
	}
	return nil
}

// GetByFilename retrieves the entry for a metadata file.
func (s *Service) GetByFilename(ctx context.Context, filename string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM metadata_entries WHERE filename = ?`, filename)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting catalog entry: %w", err)
	}
	return e, nil
}

// List returns all entries, most recently updated first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM metadata_entries ORDER BY updated_at DESC, filename`)
	if err != nil {
		return nil, fmt.Errorf("listing catalog entries: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning catalog entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Remove deletes the entry for filename. Removing an unknown filename is not
// an error.
func (s *Service) Remove(ctx context.Context, filename string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM metadata_entries WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("removing catalog entry: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var createdAt, updatedAt string
	if err := row.Scan(&e.ID, &e.Filename, &e.Artist, &e.Name, &e.URL, &e.Size, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
