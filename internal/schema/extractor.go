package schema

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/schemalint/schemalint/internal/database"
	"github.com/schemalint/schemalint/pkg/logger"
	"github.com/schemalint/schemalint/pkg/progress"
)

// Extractor reads schema metadata from a live PostgreSQL database through
// information_schema and the pg_catalog, producing the read-only Schema
// consumed by the lint engine.
type Extractor struct {
	conn   *database.Connection
	logger *logger.Logger
}

func NewExtractor(conn *database.Connection, logger *logger.Logger) *Extractor {
	return &Extractor{
		conn:   conn,
		logger: logger,
	}
}

// Extract enumerates all base tables in the given schema (all non-system
// schemas when schemaFilter is empty) and gathers the metadata the lint
// rules consult: columns, primary key, foreign keys, indexes and check
// constraints.
func (e *Extractor) Extract(schemaFilter string) (*Schema, error) {
	e.logger.Info("Extracting schema metadata...")

	query := `
		SELECT
			t.table_name,
			t.table_schema
		FROM information_schema.tables t
		WHERE t.table_type = 'BASE TABLE'
		AND t.table_schema NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
	`

	args := []interface{}{}
	if schemaFilter != "" {
		query += " AND t.table_schema = $1"
		args = append(args, schemaFilter)
	}

	query += " ORDER BY t.table_schema, t.table_name"

	rows, err := e.conn.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var table Table
		if err := rows.Scan(&table.Name, &table.Schema); err != nil {
			return nil, fmt.Errorf("failed to read table metadata: %w", err)
		}
		tables = append(tables, table)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to enumerate tables: %w", err)
	}

	bar := progress.NewBar(int64(len(tables)), "Extracting tables")
	for i := range tables {
		if err := e.extractTableDetails(&tables[i]); err != nil {
			return nil, fmt.Errorf("failed to gather table details for %s.%s: %w", tables[i].Schema, tables[i].Name, err)
		}
		bar.Increment()
	}
	bar.Finish()

	e.logger.Infof("%d tables extracted from %s", len(tables), e.conn.GetDatabaseName())
	return New(e.conn.GetDatabaseName(), tables), nil
}

func (e *Extractor) extractTableDetails(table *Table) error {
	if err := e.extractColumns(table); err != nil {
		return err
	}

	if err := e.extractPrimaryKey(table); err != nil {
		return err
	}

	if err := e.extractForeignKeys(table); err != nil {
		return err
	}

	if err := e.extractIndexes(table); err != nil {
		return err
	}

	return e.extractCheckConstraints(table)
}

func (e *Extractor) extractColumns(table *Table) error {
	query := `
		SELECT
			column_name,
			data_type,
			is_nullable,
			column_default,
			character_maximum_length,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := e.conn.DB.Query(query, table.Schema, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var col Column
		var isNullable string
		var defaultValue sql.NullString
		var maxLength sql.NullInt64

		err := rows.Scan(
			&col.Name,
			&col.DataType,
			&isNullable,
			&defaultValue,
			&maxLength,
			&col.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to read column metadata: %w", err)
		}

		col.IsNullable = isNullable == "YES"
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		if maxLength.Valid {
			length := int(maxLength.Int64)
			col.MaxLength = &length
		}

		table.Columns = append(table.Columns, col)
	}

	return rows.Err()
}

func (e *Extractor) extractPrimaryKey(table *Table) error {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = $1 AND table_name = $2
		AND constraint_name IN (
			SELECT constraint_name
			FROM information_schema.table_constraints
			WHERE table_schema = $1 AND table_name = $2
			AND constraint_type = 'PRIMARY KEY'
		)
		ORDER BY ordinal_position
	`

	rows, err := e.conn.DB.Query(query, table.Schema, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query primary key metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var columnName string
		if err := rows.Scan(&columnName); err != nil {
			return fmt.Errorf("failed to read primary key metadata: %w", err)
		}
		table.PrimaryKey = append(table.PrimaryKey, columnName)
	}

	return rows.Err()
}

// foreignKeyRow is one (local column, referenced column) pair of a foreign
// key constraint, already positionally matched by the query.
type foreignKeyRow struct {
	Constraint       string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	ReferencedSchema string
	OnDelete         string
	OnUpdate         string
}

// extractForeignKeys gathers foreign keys with their full column lists.
// The local side comes from key_column_usage; the referenced side is
// resolved through referential_constraints.unique_constraint_name and
// paired positionally via position_in_unique_constraint, so a composite
// foreign key yields exactly one row per column pair. Joining
// constraint_column_usage instead would cross local and referenced
// columns, N x N rows for an N-column key.
func (e *Extractor) extractForeignKeys(table *Table) error {
	query := `
		SELECT
			tc.constraint_name,
			kcu.column_name,
			rk.table_name AS foreign_table_name,
			rk.column_name AS foreign_column_name,
			rk.table_schema AS foreign_table_schema,
			rc.delete_rule,
			rc.update_rule
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.constraint_schema = tc.constraint_schema
		JOIN information_schema.referential_constraints AS rc
			ON rc.constraint_name = tc.constraint_name
			AND rc.constraint_schema = tc.constraint_schema
		JOIN information_schema.key_column_usage AS rk
			ON rk.constraint_name = rc.unique_constraint_name
			AND rk.constraint_schema = rc.unique_constraint_schema
			AND rk.ordinal_position = kcu.position_in_unique_constraint
		WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema = $1 AND tc.table_name = $2
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := e.conn.DB.Query(query, table.Schema, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query foreign key metadata: %w", err)
	}
	defer rows.Close()

	var pairs []foreignKeyRow
	for rows.Next() {
		var row foreignKeyRow
		err := rows.Scan(
			&row.Constraint,
			&row.Column,
			&row.ReferencedTable,
			&row.ReferencedColumn,
			&row.ReferencedSchema,
			&row.OnDelete,
			&row.OnUpdate,
		)
		if err != nil {
			return fmt.Errorf("failed to read foreign key metadata: %w", err)
		}
		pairs = append(pairs, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	table.ForeignKeys = foldForeignKeyRows(pairs)
	return nil
}

// foldForeignKeyRows collapses ordered column-pair rows into composite
// ForeignKeys, one per constraint name.
func foldForeignKeyRows(pairs []foreignKeyRow) []ForeignKey {
	var fks []ForeignKey
	var current *ForeignKey
	for _, row := range pairs {
		if current == nil || current.Name != row.Constraint {
			fks = append(fks, ForeignKey{
				Name:             row.Constraint,
				ReferencedTable:  row.ReferencedTable,
				ReferencedSchema: row.ReferencedSchema,
				OnDelete:         row.OnDelete,
				OnUpdate:         row.OnUpdate,
			})
			current = &fks[len(fks)-1]
		}
		current.Columns = append(current.Columns, row.Column)
		current.ReferencedColumns = append(current.ReferencedColumns, row.ReferencedColumn)
	}
	return fks
}

func (e *Extractor) extractIndexes(table *Table) error {
	query := `
		SELECT
			i.indexname,
			i.tablename,
			pg_get_indexdef(ix.indexrelid) as indexdef,
			ix.indisunique,
			ix.indisprimary
		FROM pg_indexes i
		JOIN pg_class c ON c.relname = i.tablename
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_index ix ON ix.indexrelid = (
			SELECT oid FROM pg_class WHERE relname = i.indexname
		)
		WHERE n.nspname = $1 AND i.tablename = $2
		ORDER BY i.indexname
	`

	rows, err := e.conn.DB.Query(query, table.Schema, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query index metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idx Index
		var indexDef string
		err := rows.Scan(
			&idx.Name,
			&idx.TableName,
			&indexDef,
			&idx.IsUnique,
			&idx.IsPrimary,
		)
		if err != nil {
			return fmt.Errorf("failed to read index metadata: %w", err)
		}

		idx.Columns = parseIndexColumns(indexDef)
		idx.IndexType = parseIndexType(indexDef)

		table.Indexes = append(table.Indexes, idx)
	}

	return rows.Err()
}

func (e *Extractor) extractCheckConstraints(table *Table) error {
	query := `
		SELECT
			cc.constraint_name,
			cc.check_clause
		FROM information_schema.check_constraints cc
		JOIN information_schema.table_constraints tc
			ON cc.constraint_schema = tc.constraint_schema
			AND cc.constraint_name = tc.constraint_name
		WHERE tc.table_schema = $1 AND tc.table_name = $2
		AND tc.constraint_type = 'CHECK'
		AND cc.check_clause NOT LIKE '%IS NOT NULL%'
		ORDER BY cc.constraint_name
	`

	rows, err := e.conn.DB.Query(query, table.Schema, table.Name)
	if err != nil {
		return fmt.Errorf("failed to query check constraint metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var check CheckConstraint
		if err := rows.Scan(&check.Name, &check.Expression); err != nil {
			return fmt.Errorf("failed to read check constraint metadata: %w", err)
		}
		table.Checks = append(table.Checks, check)
	}

	return rows.Err()
}

func parseIndexColumns(indexDef string) []string {
	start := strings.Index(indexDef, "(")
	end := strings.Index(indexDef, ")")
	if start == -1 || end == -1 {
		return []string{}
	}

	columnsPart := indexDef[start+1 : end]
	columns := strings.Split(columnsPart, ",")

	for i, col := range columns {
		columns[i] = strings.TrimSpace(col)
	}

	return columns
}

func parseIndexType(indexDef string) string {
	def := strings.ToUpper(indexDef)
	switch {
	case strings.Contains(def, "USING HASH"):
		return "HASH"
	case strings.Contains(def, "USING GIN"):
		return "GIN"
	case strings.Contains(def, "USING GIST"):
		return "GIST"
	default:
		return "BTREE"
	}
}
