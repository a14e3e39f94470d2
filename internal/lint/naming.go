package lint

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/schemalint/schemalint/internal/schema"
)

// Naming rules. Each one is a plain string predicate over an identifier;
// they share the snake_case / lowercase helpers at the bottom.

type LowercaseTableName struct{}

func (LowercaseTableName) Name() string { return "LowercaseTableName" }
func (LowercaseTableName) Doc() string  { return "Table names must be lowercase." }

func (LowercaseTableName) CheckTable(_ *Context, table *schema.Table) []Violation {
	if table.Name == strings.ToLower(table.Name) {
		return nil
	}
	return []Violation{{
		Rule:       "LowercaseTableName",
		Kind:       KindNaming,
		Table:      table.Name,
		Object:     table.Name,
		Message:    fmt.Sprintf("table name `%s` contains uppercase characters", table.Name),
		Resolution: fmt.Sprintf("Rename the table to `%s`", strings.ToLower(table.Name)),
	}}
}

type SnakeCaseTableName struct{}

func (SnakeCaseTableName) Name() string { return "SnakeCaseTableName" }
func (SnakeCaseTableName) Doc() string  { return "Table names must be snake_case." }

func (SnakeCaseTableName) CheckTable(_ *Context, table *schema.Table) []Violation {
	if isSnakeCase(table.Name) {
		return nil
	}
	return []Violation{{
		Rule:       "SnakeCaseTableName",
		Kind:       KindNaming,
		Table:      table.Name,
		Object:     table.Name,
		Message:    fmt.Sprintf("table name `%s` is not snake_case", table.Name),
		Resolution: "Use lowercase letters, digits and single underscores, starting with a letter",
	}}
}

// PluralTableName expects tables to be named after the plural of what one
// row represents (`user_accounts`, not `user_account`).
type PluralTableName struct{}

func (PluralTableName) Name() string { return "PluralTableName" }
func (PluralTableName) Doc() string  { return "Table names must be plural." }

func (PluralTableName) CheckTable(_ *Context, table *schema.Table) []Violation {
	last := lastWord(table.Name)
	if last == "" || inflection.Plural(last) == last {
		return nil
	}
	return []Violation{{
		Rule:       "PluralTableName",
		Kind:       KindNaming,
		Table:      table.Name,
		Object:     table.Name,
		Message:    fmt.Sprintf("table name `%s` is singular", table.Name),
		Resolution: fmt.Sprintf("Rename the table to `%s`", pluralizeName(table.Name)),
	}}
}

type LowercaseColumnName struct{}

func (LowercaseColumnName) Name() string { return "LowercaseColumnName" }
func (LowercaseColumnName) Doc() string  { return "Column names must be lowercase." }

func (LowercaseColumnName) CheckColumn(_ *Context, table *schema.Table, column *schema.Column) []Violation {
	if column.Name == strings.ToLower(column.Name) {
		return nil
	}
	return []Violation{{
		Rule:       "LowercaseColumnName",
		Kind:       KindNaming,
		Table:      table.Name,
		Object:     column.Name,
		Message:    fmt.Sprintf("column name `%s.%s` contains uppercase characters", table.Name, column.Name),
		Resolution: fmt.Sprintf("Rename the column to `%s`", strings.ToLower(column.Name)),
	}}
}

type SnakeCaseColumnName struct{}

func (SnakeCaseColumnName) Name() string { return "SnakeCaseColumnName" }
func (SnakeCaseColumnName) Doc() string  { return "Column names must be snake_case." }

func (SnakeCaseColumnName) CheckColumn(_ *Context, table *schema.Table, column *schema.Column) []Violation {
	if isSnakeCase(column.Name) {
		return nil
	}
	return []Violation{{
		Rule:       "SnakeCaseColumnName",
		Kind:       KindNaming,
		Table:      table.Name,
		Object:     column.Name,
		Message:    fmt.Sprintf("column name `%s.%s` is not snake_case", table.Name, column.Name),
		Resolution: "Use lowercase letters, digits and single underscores, starting with a letter",
	}}
}

// SingularColumnName expects each column to be named after the single
// value it holds (`created_at`, `parent_id`), not a plural.
type SingularColumnName struct{}

func (SingularColumnName) Name() string { return "SingularColumnName" }
func (SingularColumnName) Doc() string  { return "Column names must be singular." }

func (SingularColumnName) CheckColumn(_ *Context, table *schema.Table, column *schema.Column) []Violation {
	last := lastWord(column.Name)
	if last == "" || inflection.Singular(last) == last {
		return nil
	}
	return []Violation{{
		Rule:       "SingularColumnName",
		Kind:       KindNaming,
		Table:      table.Name,
		Object:     column.Name,
		Message:    fmt.Sprintf("column name `%s.%s` is plural", table.Name, column.Name),
		Resolution: fmt.Sprintf("Rename the column to `%s`", singularizeName(column.Name)),
	}}
}

// NonCompositePrimaryKeyNamedID expects a single-column primary key to be
// called `id`.
type NonCompositePrimaryKeyNamedID struct{}

func (NonCompositePrimaryKeyNamedID) Name() string { return "NonCompositePrimaryKeyNamedID" }
func (NonCompositePrimaryKeyNamedID) Doc() string {
	return "Single-column primary keys must be named `id`."
}

func (NonCompositePrimaryKeyNamedID) CheckColumn(_ *Context, table *schema.Table, column *schema.Column) []Violation {
	if len(table.PrimaryKey) != 1 || table.PrimaryKey[0] != column.Name || column.Name == "id" {
		return nil
	}
	return []Violation{{
		Rule:       "NonCompositePrimaryKeyNamedID",
		Kind:       KindNaming,
		Table:      table.Name,
		Object:     column.Name,
		Message:    fmt.Sprintf("primary key column `%s.%s` should be named `id`", table.Name, column.Name),
		Resolution: fmt.Sprintf("Rename `%s.%s` to `id`", table.Name, column.Name),
	}}
}

// isSnakeCase accepts lowercase identifiers made of letters and digits
// separated by single underscores, starting with a letter.
func isSnakeCase(name string) bool {
	if name == "" {
		return false
	}
	prevUnderscore := false
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			prevUnderscore = false
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
			prevUnderscore = false
		case r == '_':
			if i == 0 || prevUnderscore {
				return false
			}
			prevUnderscore = true
		default:
			return false
		}
	}
	return !prevUnderscore
}

// lastWord returns the final underscore-separated word of an identifier,
// which is the part inflection applies to (`user_accounts` -> `accounts`).
func lastWord(name string) string {
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func pluralizeName(name string) string {
	last := lastWord(name)
	return name[:len(name)-len(last)] + inflection.Plural(last)
}

func singularizeName(name string) string {
	last := lastWord(name)
	return name[:len(name)-len(last)] + inflection.Singular(last)
}
