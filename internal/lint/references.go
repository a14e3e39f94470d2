package lint

import (
	"fmt"
	"strings"

	"github.com/schemalint/schemalint/internal/schema"
)

// Foreign-key style rules.

// ExtensionForeignKeyOnDeleteCascade requires the foreign key backing an
// extension edge to declare ON DELETE CASCADE: deleting the parent row of
// a joined-table inheritance pair must delete the extending row, or the
// child is left referencing nothing that defines it.
type ExtensionForeignKeyOnDeleteCascade struct{}

func (ExtensionForeignKeyOnDeleteCascade) Name() string {
	return "ExtensionForeignKeyOnDeleteCascade"
}

func (ExtensionForeignKeyOnDeleteCascade) Doc() string {
	return "Foreign keys forming extension edges must declare ON DELETE CASCADE."
}

func (ExtensionForeignKeyOnDeleteCascade) CheckForeignKey(ctx *Context, table *schema.Table, fk *schema.ForeignKey) []Violation {
	// Same qualification the graph builder applies, restated over the
	// foreign key itself rather than its name: unnamed foreign keys must
	// classify correctly too.
	if len(table.PrimaryKey) == 0 || !sameOrderedColumns(fk.Columns, table.PrimaryKey) {
		return nil
	}
	if ctx.Schema.Table(fk.ReferencedTable) == nil {
		return nil
	}

	if strings.EqualFold(fk.OnDelete, "CASCADE") {
		return nil
	}

	action := fk.OnDelete
	if action == "" {
		action = "NO ACTION"
	}
	return []Violation{{
		Rule:   "ExtensionForeignKeyOnDeleteCascade",
		Kind:   KindConstraint,
		Table:  table.Name,
		Object: fk.Label(),
		Message: fmt.Sprintf(
			"extension foreign key from `%s` to `%s` declares ON DELETE %s instead of CASCADE",
			table.Name, fk.ReferencedTable, action,
		),
		Resolution: fmt.Sprintf(
			"Declare ON DELETE CASCADE so rows of `%s` disappear with their `%s` parent",
			table.Name, fk.ReferencedTable,
		),
	}}
}

// LowercaseForeignKeyName requires declared foreign key constraint names
// to be lowercase. Unnamed foreign keys are skipped.
type LowercaseForeignKeyName struct{}

func (LowercaseForeignKeyName) Name() string { return "LowercaseForeignKeyName" }
func (LowercaseForeignKeyName) Doc() string {
	return "Foreign key constraint names must be lowercase."
}

func (LowercaseForeignKeyName) CheckForeignKey(_ *Context, table *schema.Table, fk *schema.ForeignKey) []Violation {
	if fk.Name == "" || fk.Name == strings.ToLower(fk.Name) {
		return nil
	}
	return []Violation{{
		Rule:       "LowercaseForeignKeyName",
		Kind:       KindNaming,
		Table:      table.Name,
		Object:     fk.Name,
		Message:    fmt.Sprintf("foreign key name `%s` on `%s` contains uppercase characters", fk.Name, table.Name),
		Resolution: fmt.Sprintf("Rename the constraint to `%s`", strings.ToLower(fk.Name)),
	}}
}

// PrimaryKeyReferenceEndsWithID expects a single-column foreign key
// pointing at a primary key column named `id` to be called `<something>_id`
// (or plain `id` for extension edges).
type PrimaryKeyReferenceEndsWithID struct{}

func (PrimaryKeyReferenceEndsWithID) Name() string { return "PrimaryKeyReferenceEndsWithID" }
func (PrimaryKeyReferenceEndsWithID) Doc() string {
	return "Single-column foreign keys onto an `id` primary key must be named `id` or end with `_id`."
}

func (PrimaryKeyReferenceEndsWithID) CheckForeignKey(ctx *Context, table *schema.Table, fk *schema.ForeignKey) []Violation {
	if len(fk.Columns) != 1 || len(fk.ReferencedColumns) != 1 {
		return nil
	}

	referenced := ctx.Schema.Table(fk.ReferencedTable)
	if referenced == nil {
		return nil
	}
	if !referenced.IsPrimaryKeyColumn(fk.ReferencedColumns[0]) || fk.ReferencedColumns[0] != "id" {
		return nil
	}

	local := fk.Columns[0]
	if local == "id" || strings.HasSuffix(local, "_id") {
		return nil
	}

	return []Violation{{
		Rule:   "PrimaryKeyReferenceEndsWithID",
		Kind:   KindNaming,
		Table:  table.Name,
		Object: fk.Label(),
		Message: fmt.Sprintf(
			"foreign key column `%s.%s` references `%s.id` but is not named with an `_id` suffix",
			table.Name, local, referenced.Name,
		),
		Resolution: fmt.Sprintf("Rename `%s.%s` to `%s_id`", table.Name, local, local),
	}}
}
