// Package schema provides database schema introspection: database listing,
// table metadata (columns and foreign keys), and a plain-text schema report.
// The report is embedded into the agent system prompt so the model writes SQL
// against real table and column names instead of guessing.
package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// ForeignKey describes a single referencing column.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Table holds the introspected metadata for one table.
type Table struct {
	Name        string
	Columns     []string
	ForeignKeys []ForeignKey
}

// Inspector reads catalog metadata for a given dialect.
type Inspector struct {
	db      *sql.DB
	dialect string
}

// NewInspector creates an Inspector. The dialect must match the driver behind
// db ("mysql", "postgres" or "sqlite").
func NewInspector(db *sql.DB, dialect string) *Inspector {
	return &Inspector{db: db, dialect: dialect}
}

// ListDatabases returns the database names visible on the server.
func (i *Inspector) ListDatabases(ctx context.Context) ([]string, error) {
	var q string
	switch i.dialect {
	case "mysql":
		q = "SHOW DATABASES"
	case "postgres":
		q = "SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY datname"
	case "sqlite":
		return i.listSQLiteDatabases(ctx)
	default:
		return nil, fmt.Errorf("schema: unsupported dialect %q", i.dialect)
	}

	rows, err := i.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("schema: list databases: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("schema: scan database name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// listSQLiteDatabases reads PRAGMA database_list (main + attached databases).
func (i *Inspector) listSQLiteDatabases(ctx context.Context) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return nil, fmt.Errorf("schema: list databases: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var (
			seq  int
			name string
			file sql.NullString
		)
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return nil, fmt.Errorf("schema: scan database_list: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Tables returns column and foreign-key metadata for every table in database.
// For sqlite the database argument is ignored (single attached database).
func (i *Inspector) Tables(ctx context.Context, database string) ([]Table, error) {
	switch i.dialect {
	case "mysql":
		return i.mysqlTables(ctx, database)
	case "postgres":
		return i.postgresTables(ctx)
	case "sqlite":
		return i.sqliteTables(ctx)
	default:
		return nil, fmt.Errorf("schema: unsupported dialect %q", i.dialect)
	}
}

func (i *Inspector) mysqlTables(ctx context.Context, database string) ([]Table, error) {
	const columnsQuery = `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = ?
		ORDER BY table_name, ordinal_position
	`
	const fkQuery = `
		SELECT table_name, column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND referenced_table_name IS NOT NULL
		ORDER BY table_name, column_name
	`
	return i.tablesFromCatalog(ctx, columnsQuery, fkQuery, database)
}

func (i *Inspector) postgresTables(ctx context.Context) ([]Table, error) {
	const columnsQuery = `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_catalog = current_database()
		ORDER BY table_name, ordinal_position
	`
	const fkQuery = `
		SELECT tc.table_name, kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
		WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = 'public'
		ORDER BY tc.table_name, kcu.column_name
	`
	return i.tablesFromCatalog(ctx, columnsQuery, fkQuery)
}

// tablesFromCatalog runs the two catalog queries and merges the results,
// preserving column order as reported by the catalog.
func (i *Inspector) tablesFromCatalog(ctx context.Context, columnsQuery, fkQuery string, args ...any) ([]Table, error) {
	rows, err := i.db.QueryContext(ctx, columnsQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("schema: query columns: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var (
		order  []string
		tables = map[string]*Table{}
	)
	for rows.Next() {
		var tableName, columnName string
		if err := rows.Scan(&tableName, &columnName); err != nil {
			return nil, fmt.Errorf("schema: scan column: %w", err)
		}
		t, ok := tables[tableName]
		if !ok {
			t = &Table{Name: tableName}
			tables[tableName] = t
			order = append(order, tableName)
		}
		t.Columns = append(t.Columns, columnName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fkRows, err := i.db.QueryContext(ctx, fkQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("schema: query foreign keys: %w", err)
	}
	defer fkRows.Close() //nolint:errcheck

	for fkRows.Next() {
		var tableName, columnName, refTable, refColumn string
		if err := fkRows.Scan(&tableName, &columnName, &refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("schema: scan foreign key: %w", err)
		}
		if t, ok := tables[tableName]; ok {
			t.ForeignKeys = append(t.ForeignKeys, ForeignKey{
				Column:    columnName,
				RefTable:  refTable,
				RefColumn: refColumn,
			})
		}
	}
	if err := fkRows.Err(); err != nil {
		return nil, err
	}

	out := make([]Table, 0, len(order))
	for _, name := range order {
		out = append(out, *tables[name])
	}
	return out, nil
}

func (i *Inspector) sqliteTables(ctx context.Context) ([]Table, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("schema: list tables: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("schema: scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Table, 0, len(names))
	for _, name := range names {
		t := Table{Name: name}

		if err := i.sqliteColumns(ctx, &t); err != nil {
			return nil, err
		}
		if err := i.sqliteForeignKeys(ctx, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (i *Inspector) sqliteColumns(ctx context.Context, t *Table) error {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", t.Name))
	if err != nil {
		return fmt.Errorf("schema: table_info %s: %w", t.Name, err)
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("schema: scan table_info %s: %w", t.Name, err)
		}
		t.Columns = append(t.Columns, name)
	}
	return rows.Err()
}

func (i *Inspector) sqliteForeignKeys(ctx context.Context, t *Table) error {
	rows, err := i.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", t.Name))
	if err != nil {
		return fmt.Errorf("schema: foreign_key_list %s: %w", t.Name, err)
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var (
			id, seq            int
			refTable, from, to string
			onUpdate, onDelete string
			match              string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return fmt.Errorf("schema: scan foreign_key_list %s: %w", t.Name, err)
		}
		t.ForeignKeys = append(t.ForeignKeys, ForeignKey{
			Column:    from,
			RefTable:  refTable,
			RefColumn: to,
		})
	}
	return rows.Err()
}
