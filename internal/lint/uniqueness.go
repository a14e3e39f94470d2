package lint

import (
	"fmt"

	"github.com/schemalint/schemalint/internal/schema"
)

// UniqueColumnNamesInExtensionGraph verifies that along every chain from a
// table up to its extension roots, no non-key column name appears twice.
// The bridging primary-key columns are expected to be shared and are
// excluded. Each conflicting (descendant, ancestor, column) triple is
// reported exactly once, at the descendant, so overlapping walks from
// deeper tables do not duplicate findings.
type UniqueColumnNamesInExtensionGraph struct{}

func (UniqueColumnNamesInExtensionGraph) Name() string {
	return "UniqueColumnNamesInExtensionGraph"
}

func (UniqueColumnNamesInExtensionGraph) Doc() string {
	return "Non-key column names must be unique along every extension chain."
}

func (UniqueColumnNamesInExtensionGraph) CheckTable(ctx *Context, table *schema.Table) []Violation {
	node, ok := ctx.Graph.Node(table.Name)
	if !ok || len(ctx.Graph.Parents(node)) == 0 {
		return nil
	}

	// A cyclic table has no well-defined chain; the cycle itself is
	// already reported by NonRedundantExtensionDag.
	if ctx.Graph.OnCycle(node) {
		return nil
	}

	own := nonKeyColumnNames(table)
	if len(own) == 0 {
		return nil
	}

	var violations []Violation
	reported := make(map[string]bool)

	for _, chain := range ctx.Graph.Chains(node) {
		for _, ancestorNode := range chain {
			ancestor := ctx.Schema.Table(ctx.Graph.Name(ancestorNode))
			if ancestor == nil {
				continue
			}
			ancestorCols := nonKeyColumnSet(ancestor)
			for _, name := range own {
				if !ancestorCols[name] {
					continue
				}
				key := ancestor.Name + "\x00" + name
				if reported[key] {
					continue
				}
				reported[key] = true
				violations = append(violations, Violation{
					Rule:   "UniqueColumnNamesInExtensionGraph",
					Kind:   KindUniqueness,
					Table:  table.Name,
					Object: name,
					Message: fmt.Sprintf(
						"column `%s` is declared by both `%s` and its extension ancestor `%s`",
						name, table.Name, ancestor.Name,
					),
					Resolution: fmt.Sprintf(
						"Rename `%s.%s` or `%s.%s`; rows of the extension chain would otherwise carry two columns with the same name",
						table.Name, name, ancestor.Name, name,
					),
				})
			}
		}
	}
	return violations
}

// nonKeyColumnNames lists the table's column names minus the primary key
// columns, in declaration order.
func nonKeyColumnNames(t *schema.Table) []string {
	var names []string
	for i := range t.Columns {
		if !t.IsPrimaryKeyColumn(t.Columns[i].Name) {
			names = append(names, t.Columns[i].Name)
		}
	}
	return names
}

func nonKeyColumnSet(t *schema.Table) map[string]bool {
	set := make(map[string]bool, len(t.Columns))
	for i := range t.Columns {
		if !t.IsPrimaryKeyColumn(t.Columns[i].Name) {
			set[t.Columns[i].Name] = true
		}
	}
	return set
}
