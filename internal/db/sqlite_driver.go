package db

import (
	"database/sql"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"
)

const (
	// SQLiteDriverName is the project-specific SQLCipher driver name.
	// Registered once here so every open path (file, in-memory tests)
	// goes through the same driver.
	//
	// The schema depends on an fts5 virtual table, and go-sqlcipher only
	// compiles the FTS5 module under the fts5 build tag. Build and test
	// with `-tags fts5` (the Makefile targets do); without it Open fails
	// with "no such module: fts5".
	SQLiteDriverName = "sqlite3_inkpad"
)

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{})
}
