package lint

import (
	"fmt"
	"strings"

	"github.com/schemalint/schemalint/internal/schema"
)

// ReferencesUniqueIndex verifies that the column set a foreign key
// references is backed by a uniqueness guarantee on the target table:
// either its primary key or one of its declared unique indexes. The
// comparison is set-wise; index column order affects neither existence
// nor uniqueness of the referenced tuple.
type ReferencesUniqueIndex struct{}

func (ReferencesUniqueIndex) Name() string {
	return "ReferencesUniqueIndex"
}

func (ReferencesUniqueIndex) Doc() string {
	return "Foreign keys must reference a column set covered by a primary key or unique index."
}

func (ReferencesUniqueIndex) CheckForeignKey(ctx *Context, table *schema.Table, fk *schema.ForeignKey) []Violation {
	referenced := ctx.Schema.Table(fk.ReferencedTable)
	if referenced == nil {
		return []Violation{{
			Rule:   "ReferencesUniqueIndex",
			Kind:   KindResolution,
			Table:  table.Name,
			Object: fk.Label(),
			Message: fmt.Sprintf(
				"foreign key references table `%s` which is not part of the schema",
				fk.ReferencedTable,
			),
			Resolution: fmt.Sprintf("Add table `%s` to the schema or fix the reference", fk.ReferencedTable),
		}}
	}

	want := columnSet(fk.ReferencedColumns)

	if len(referenced.PrimaryKey) > 0 && sameColumnSet(want, columnSet(referenced.PrimaryKey)) {
		return nil
	}
	for _, idx := range referenced.UniqueIndexes() {
		if sameColumnSet(want, columnSet(idx.Columns)) {
			return nil
		}
	}

	return []Violation{{
		Rule:   "ReferencesUniqueIndex",
		Kind:   KindResolution,
		Table:  table.Name,
		Object: fk.Label(),
		Message: fmt.Sprintf(
			"foreign key references columns (%s) of `%s`, which are not covered by a primary key or unique index",
			strings.Join(fk.ReferencedColumns, ", "), referenced.Name,
		),
		Resolution: fmt.Sprintf(
			"Add a primary key or unique constraint on (%s) in `%s`, or reference a column set that has one",
			strings.Join(fk.ReferencedColumns, ", "), referenced.Name,
		),
	}}
}

func columnSet(cols []string) map[string]bool {
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}

func sameColumnSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for c := range a {
		if !b[c] {
			return false
		}
	}
	return true
}
