package storage

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate creates the contacts table and its indexes if they do not exist yet. The statements
// are taken from the bundled schema file matching the driver of the database.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	name, err := schemaFile(db.DriverName())
	if err != nil {
		return err
	}
	file, err := schemaFS.Open(name)
	if err != nil {
		return fmt.Errorf("open schema %s: %w", name, err)
	}
	defer file.Close()
	return ExecStatements(ctx, db, file)
}

// schemaFile returns the path of the bundled schema for a driver.
func schemaFile(driverName string) (string, error) {
	switch driverName {
	case "mysql":
		return "schema/mysql.sql", nil
	case "sqlite", "sqlite3":
		return "schema/sqlite.sql", nil
	default:
		return "", fmt.Errorf("no schema for database driver %q", driverName)
	}
}

// ExecStatements executes the SQL statements read from r one after the other. A statement ends
// with the line that contains a ';'. Each statement is sent on its own because the MySQL driver
// does not accept several statements in one call.
func ExecStatements(ctx context.Context, db *sqlx.DB, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	builder := strings.Builder{}
	for scanner.Scan() {
		line := scanner.Text()
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			if err := execStatement(ctx, db, builder.String()); err != nil {
				return err
			}
			builder.Reset()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read statements: %w", err)
	}
	return execStatement(ctx, db, builder.String())
}

func execStatement(ctx context.Context, db *sqlx.DB, statement string) error {
	if strings.TrimSpace(statement) == "" {
		return nil
	}
	if _, err := db.ExecContext(ctx, statement); err != nil {
		return fmt.Errorf("execute %q: %w", strings.TrimSpace(statement), err)
	}
	return nil
}
