// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package sqlite

// initialization functions

import (
	"errors"
	"log"

	"github.com/playbymail/lc/cerrs"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS modules (
    name          TEXT    NOT NULL,
    path          TEXT    NOT NULL,
    content_hash  TEXT    NOT NULL,
    exports       TEXT    NOT NULL DEFAULT '',
    dependencies  TEXT    NOT NULL DEFAULT '',
    version       TEXT    NOT NULL DEFAULT '',
    compiler      TEXT    NOT NULL DEFAULT '',
    run_id        TEXT    NOT NULL DEFAULT '',
    loaded_at     TEXT    NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (name, content_hash)
);
`

// CreateSchema creates the module cache schema.
// We have to assume that the database already exists.
func (db *DB) CreateSchema() error {
	// confirm that the database has foreign keys enabled
	checkPragma := "PRAGMA" + " foreign_keys = ON"
	if rslt, err := db.db.Exec(checkPragma); err != nil {
		log.Printf("[sqldb] error: foreign keys are disabled\n")
		return cerrs.ErrForeignKeysDisabled
	} else if rslt == nil {
		log.Printf("[sqldb] error: foreign keys pragma failed\n")
		return cerrs.ErrPragmaReturnedNil
	}

	// create the schema
	if _, err := db.db.Exec(schemaDDL); err != nil {
		log.Printf("[sqldb] failed to initialize schema\n")
		log.Printf("[sqldb] %v\n", err)
		return errors.Join(cerrs.ErrCreateSchema, err)
	}

	return nil
}
