// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package sqlite

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// ModuleRow is one cached module record. Exports and Dependencies are
// stored comma-joined; the resolver treats the cache as best-effort
// metadata keyed by content hash, never as the authoritative AST.
type ModuleRow struct {
	Name         string
	Path         string
	ContentHash  string
	Exports      []string
	Dependencies []string
	Version      string
	Compiler     string
	RunID        string
	LoadedAt     time.Time
}

// SaveModule inserts or replaces the cache row for (name, hash).
func (db *DB) SaveModule(row ModuleRow) error {
	_, err := db.db.ExecContext(db.ctx, `
		INSERT OR REPLACE INTO modules (name, path, content_hash, exports, dependencies, version, compiler, run_id, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))`,
		row.Name, row.Path, row.ContentHash,
		strings.Join(row.Exports, ","), strings.Join(row.Dependencies, ","),
		row.Version, row.Compiler, row.RunID)
	return err
}

// GetModule returns the cached row for (name, hash), or nil when the cache
// has no matching entry.
func (db *DB) GetModule(name, contentHash string) (*ModuleRow, error) {
	row := db.db.QueryRowContext(db.ctx, `
		SELECT name, path, content_hash, exports, dependencies, version, compiler, run_id
		FROM modules WHERE name = ? AND content_hash = ?`, name, contentHash)
	var out ModuleRow
	var exports, deps string
	err := row.Scan(&out.Name, &out.Path, &out.ContentHash, &exports, &deps, &out.Version, &out.Compiler, &out.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	out.Exports = splitList(exports)
	out.Dependencies = splitList(deps)
	return &out, nil
}

// ListModules returns every cached row, newest first.
func (db *DB) ListModules() ([]ModuleRow, error) {
	rows, err := db.db.QueryContext(db.ctx, `
		SELECT name, path, content_hash, exports, dependencies, version, compiler, run_id
		FROM modules ORDER BY loaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []ModuleRow
	for rows.Next() {
		var r ModuleRow
		var exports, deps string
		if err := rows.Scan(&r.Name, &r.Path, &r.ContentHash, &exports, &deps, &r.Version, &r.Compiler, &r.RunID); err != nil {
			return nil, err
		}
		r.Exports = splitList(exports)
		r.Dependencies = splitList(deps)
		out = append(out, r)
	}
	return out, rows.Err()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
