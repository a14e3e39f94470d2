package lint

import "github.com/schemalint/schemalint/internal/schema"

// Context carries the read-only inputs shared by every rule invocation in
// one validation run: the schema under inspection and the extension graph
// derived from it. It is built once per run and never mutated afterwards,
// so rules may be evaluated in any order.
type Context struct {
	Schema *schema.Schema
	Graph  *ExtensionGraph
}

// The rule contract is split over the three entity kinds a rule can
// inspect. Rules carry no per-run state; they receive the entity plus the
// run context and return their findings, which the constrainer merges.

// TableRule inspects one table at a time.
type TableRule interface {
	Name() string
	Doc() string
	CheckTable(ctx *Context, table *schema.Table) []Violation
}

// ColumnRule inspects one column at a time.
type ColumnRule interface {
	Name() string
	Doc() string
	CheckColumn(ctx *Context, table *schema.Table, column *schema.Column) []Violation
}

// ForeignKeyRule inspects one foreign key at a time.
type ForeignKeyRule interface {
	Name() string
	Doc() string
	CheckForeignKey(ctx *Context, table *schema.Table, fk *schema.ForeignKey) []Violation
}
