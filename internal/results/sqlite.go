package results

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/hardsize/internal/constants"
)

// SQLiteStore reads the ComponentSizes table of an engine SQLite output file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open opens the engine output at path read-only and checks that it carries
// a ComponentSizes table.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat results store: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("results store %s is a directory", path)
	}

	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open results store: %w", err)
	}

	// The store is read by one goroutine at a time.
	db.SetMaxOpenConns(1)

	var name string
	err = db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`,
		constants.ComponentSizesTable,
	).Scan(&name)
	if err != nil {
		db.Close()
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("results store %s has no %s table", path, constants.ComponentSizesTable)
		}
		return nil, fmt.Errorf("failed to inspect results store: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// readOnlyDSN builds a file: URI for path. Characters such as '#', '?' and '%'
// are escaped so SQLite does not read them as URI syntax.
func readOnlyDSN(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		RawQuery: "mode=ro&_pragma=query_only(1)",
	}
	if !strings.HasPrefix(u.Path, "/") {
		// Windows drive paths: file:///C:/...
		u.Path = "/" + u.Path
	}
	return u.String()
}

// Path returns the file the store was opened from.
func (s *SQLiteStore) Path() string {
	return s.path
}

// ComponentClasses returns the distinct CompType values.
func (s *SQLiteStore) ComponentClasses(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx,
		`SELECT DISTINCT CompType FROM ComponentSizes ORDER BY CompType`)
}

// ComponentNames returns the distinct CompName values for class.
func (s *SQLiteStore) ComponentNames(ctx context.Context, class string) ([]string, error) {
	return s.queryStrings(ctx,
		`SELECT DISTINCT CompName FROM ComponentSizes WHERE CompType = ? ORDER BY CompName`,
		class)
}

// FieldDescriptions returns the distinct Description values for one instance.
func (s *SQLiteStore) FieldDescriptions(ctx context.Context, class, name string) ([]string, error) {
	return s.queryStrings(ctx,
		`SELECT DISTINCT Description FROM ComponentSizes WHERE CompType = ? AND CompName = ? ORDER BY Description`,
		class, name)
}

// Value returns the first matching Value. Duplicate rows are not an error;
// the lowest rowid wins.
func (s *SQLiteStore) Value(ctx context.Context, class, name, description string) (float64, error) {
	var v sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT Value FROM ComponentSizes WHERE CompType = ? AND CompName = ? AND Description = ? ORDER BY rowid LIMIT 1`,
		class, name, description,
	).Scan(&v)
	if err == sql.ErrNoRows || (err == nil && !v.Valid) {
		return 0, fmt.Errorf("%w: %s %q %q", ErrValueNotFound, class, name, description)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query sizing value: %w", err)
	}
	return v.Float64, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results store: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan results row: %w", err)
		}
		if v.Valid {
			out = append(out, v.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results rows: %w", err)
	}
	return out, nil
}
