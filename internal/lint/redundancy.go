package lint

import (
	"fmt"
	"strings"

	"github.com/schemalint/schemalint/internal/schema"
)

// NonRedundantExtensionDag flags tables whose extension relationships are
// not minimal: the extension graph must equal its own transitive
// reduction, so a direct edge that is also implied by a longer path is a
// defect. Cycles, including self-loops, are reported as a distinct
// structural violation instead, because a cyclic "extension" has no
// well-defined ancestor chain to reason about.
type NonRedundantExtensionDag struct{}

func (NonRedundantExtensionDag) Name() string {
	return "NonRedundantExtensionDag"
}

func (NonRedundantExtensionDag) Doc() string {
	return "Extension edges must form a transitively reduced DAG: no cycles, no edge implied by a longer path."
}

func (NonRedundantExtensionDag) CheckTable(ctx *Context, table *schema.Table) []Violation {
	node, ok := ctx.Graph.Node(table.Name)
	if !ok {
		return nil
	}
	edges := ctx.Graph.Parents(node)
	if len(edges) == 0 {
		return nil
	}

	if cycle := ctx.Graph.CyclePath(node); cycle != nil {
		return []Violation{{
			Rule:    "NonRedundantExtensionDag",
			Kind:    KindStructural,
			Table:   table.Name,
			Object:  table.Name,
			Message: fmt.Sprintf("extension cycle detected: %s", strings.Join(cycle, " -> ")),
			Resolution: fmt.Sprintf(
				"Break the cycle by removing one of the primary-key foreign keys along %s",
				strings.Join(cycle, " -> "),
			),
		}}
	}

	var violations []Violation
	for _, e := range edges {
		path, found := ctx.Graph.AlternatePath(node, e.To)
		if !found {
			continue
		}
		parent := ctx.Graph.Name(e.To)
		violations = append(violations, Violation{
			Rule:   "NonRedundantExtensionDag",
			Kind:   KindRedundancy,
			Table:  table.Name,
			Object: e.ForeignKey,
			Message: fmt.Sprintf(
				"extension edge %s -> %s is redundant: already implied by the path %s",
				table.Name, parent, strings.Join(path, " -> "),
			),
			Resolution: fmt.Sprintf(
				"Drop the foreign key from `%s` to `%s`; the relationship is inherited through `%s`",
				table.Name, parent, path[1],
			),
		})
	}
	return violations
}
