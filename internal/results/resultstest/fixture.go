// Package resultstest builds engine-shaped SQLite output files for tests.
package resultstest

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/hardsize/internal/results"
)

// componentSizesSchema mirrors the table the engine writes.
const componentSizesSchema = `
CREATE TABLE ComponentSizes (
	ComponentSizesIndex INTEGER PRIMARY KEY,
	CompType TEXT,
	CompName TEXT,
	Description TEXT,
	Value REAL,
	Units TEXT
)`

// WriteSQLite creates a SQLite file at path with a ComponentSizes table
// holding rows. Names pass through results.EngineName as the engine does.
func WriteSQLite(ctx context.Context, path string, rows ...results.Row) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open fixture database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, componentSizesSchema); err != nil {
		return fmt.Errorf("failed to create ComponentSizes: %w", err)
	}

	for _, r := range rows {
		_, err := db.ExecContext(ctx,
			`INSERT INTO ComponentSizes (CompType, CompName, Description, Value, Units) VALUES (?, ?, ?, ?, ?)`,
			r.Class, results.EngineName(r.Name), r.Description, r.Value, "")
		if err != nil {
			return fmt.Errorf("failed to insert fixture row: %w", err)
		}
	}
	return nil
}

// WriteEmptySQLite creates a SQLite file without a ComponentSizes table, as
// left behind by a run that aborted before reporting.
func WriteEmptySQLite(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open fixture database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `CREATE TABLE Simulations (SimulationIndex INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("failed to create fixture table: %w", err)
	}
	return nil
}
