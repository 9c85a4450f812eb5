//go:build cgo

package storage

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

func init() {
	registerUniqueViolation("sqlite3", func(err error) bool {
		var sqliteErr sqlite3.Error
		return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	})
}
