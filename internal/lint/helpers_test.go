package lint

import (
	"github.com/schemalint/schemalint/internal/schema"
)

// Builders shared by the lint tests. Fixtures use conformant names
// (plural snake_case tables, singular columns, `id` primary keys) so that
// tests exercising one rule do not trip the others.

func col(name, typ string) schema.Column {
	return schema.Column{Name: name, DataType: typ}
}

func tbl(name string, pk []string, cols ...schema.Column) schema.Table {
	return schema.Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: pk,
	}
}

func fk(name string, cols []string, refTable string, refCols []string) schema.ForeignKey {
	return schema.ForeignKey{
		Name:              name,
		Columns:           cols,
		ReferencedTable:   refTable,
		ReferencedColumns: refCols,
		OnDelete:          "NO ACTION",
	}
}

func cascadeFk(name string, cols []string, refTable string, refCols []string) schema.ForeignKey {
	f := fk(name, cols, refTable, refCols)
	f.OnDelete = "CASCADE"
	return f
}

// extTable builds a table that extends parent via its integer `id`
// primary key, the canonical joined-table inheritance shape.
func extTable(name, parent string, extra ...schema.Column) schema.Table {
	cols := append([]schema.Column{col("id", "integer")}, extra...)
	t := tbl(name, []string{"id"}, cols...)
	t.ForeignKeys = []schema.ForeignKey{
		cascadeFk(name+"_id_fkey", []string{"id"}, parent, []string{"id"}),
	}
	return t
}

// rootTable builds a hierarchy root: integer `id` primary key plus the
// given extra columns.
func rootTable(name string, extra ...schema.Column) schema.Table {
	cols := append([]schema.Column{col("id", "integer")}, extra...)
	return tbl(name, []string{"id"}, cols...)
}

func newSchema(tables ...schema.Table) *schema.Schema {
	return schema.New("testdb", tables)
}

func ctxFor(tables ...schema.Table) *Context {
	s := newSchema(tables...)
	return &Context{Schema: s, Graph: BuildExtensionGraph(s)}
}

func byRule(violations []Violation, rule string) []Violation {
	var out []Violation
	for _, v := range violations {
		if v.Rule == rule {
			out = append(out, v)
		}
	}
	return out
}
