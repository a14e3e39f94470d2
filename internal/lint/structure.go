package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/schemalint/schemalint/internal/schema"
)

// Structural hygiene rules outside the extension graph: presence of a
// primary key and absence of duplicate constraint declarations.

type HasPrimaryKey struct{}

func (HasPrimaryKey) Name() string { return "HasPrimaryKey" }
func (HasPrimaryKey) Doc() string  { return "Every table must declare a primary key." }

func (HasPrimaryKey) CheckTable(_ *Context, table *schema.Table) []Violation {
	if len(table.PrimaryKey) > 0 {
		return nil
	}
	return []Violation{{
		Rule:       "HasPrimaryKey",
		Kind:       KindConstraint,
		Table:      table.Name,
		Object:     table.Name,
		Message:    fmt.Sprintf("table `%s` has no primary key", table.Name),
		Resolution: fmt.Sprintf("Declare a primary key on `%s`", table.Name),
	}}
}

// UniqueForeignKey flags foreign keys with identical signatures: same
// local columns, same referenced table and columns. Duplicates add
// constraint-maintenance cost without adding semantics.
type UniqueForeignKey struct{}

func (UniqueForeignKey) Name() string { return "UniqueForeignKey" }
func (UniqueForeignKey) Doc() string  { return "No two foreign keys on a table may have the same signature." }

func (UniqueForeignKey) CheckTable(_ *Context, table *schema.Table) []Violation {
	var violations []Violation
	seen := make(map[string]string, len(table.ForeignKeys))
	for i := range table.ForeignKeys {
		fk := &table.ForeignKeys[i]
		sig := strings.Join(fk.Columns, ",") + " -> " + fk.ReferencedTable + "(" + strings.Join(fk.ReferencedColumns, ",") + ")"
		if first, dup := seen[sig]; dup {
			violations = append(violations, Violation{
				Rule:   "UniqueForeignKey",
				Kind:   KindConstraint,
				Table:  table.Name,
				Object: fk.Label(),
				Message: fmt.Sprintf(
					"foreign key `%s` duplicates `%s`: both map (%s) onto `%s`",
					fk.Label(), first, strings.Join(fk.Columns, ", "), fk.ReferencedTable,
				),
				Resolution: fmt.Sprintf("Drop one of the duplicate foreign keys on `%s`", table.Name),
			})
			continue
		}
		seen[sig] = fk.Label()
	}
	return violations
}

// UniqueUniqueIndex flags unique indexes covering the same column set.
// The column sets are compared unordered: a second index over a permuted
// column list guarantees nothing new.
type UniqueUniqueIndex struct{}

func (UniqueUniqueIndex) Name() string { return "UniqueUniqueIndex" }
func (UniqueUniqueIndex) Doc() string  { return "No two unique indexes on a table may cover the same column set." }

func (UniqueUniqueIndex) CheckTable(_ *Context, table *schema.Table) []Violation {
	var violations []Violation
	seen := make(map[string]string)
	for _, idx := range table.UniqueIndexes() {
		cols := append([]string(nil), idx.Columns...)
		sort.Strings(cols)
		sig := strings.Join(cols, ",")
		if first, dup := seen[sig]; dup {
			violations = append(violations, Violation{
				Rule:   "UniqueUniqueIndex",
				Kind:   KindConstraint,
				Table:  table.Name,
				Object: idx.Name,
				Message: fmt.Sprintf(
					"unique index `%s` covers the same columns (%s) as `%s`",
					idx.Name, strings.Join(idx.Columns, ", "), first,
				),
				Resolution: fmt.Sprintf("Drop `%s` or `%s`; one uniqueness guarantee suffices", idx.Name, first),
			})
			continue
		}
		seen[sig] = idx.Name
	}
	return violations
}

// UniqueCheckConstraint flags check constraints that repeat an earlier
// constraint's name or expression on the same table.
type UniqueCheckConstraint struct{}

func (UniqueCheckConstraint) Name() string { return "UniqueCheckConstraint" }
func (UniqueCheckConstraint) Doc() string {
	return "Check constraint names and expressions must be unique per table."
}

func (UniqueCheckConstraint) CheckTable(_ *Context, table *schema.Table) []Violation {
	var violations []Violation
	names := make(map[string]bool, len(table.Checks))
	exprs := make(map[string]string, len(table.Checks))
	for _, check := range table.Checks {
		if names[check.Name] {
			violations = append(violations, Violation{
				Rule:       "UniqueCheckConstraint",
				Kind:       KindConstraint,
				Table:      table.Name,
				Object:     check.Name,
				Message:    fmt.Sprintf("check constraint name `%s` is declared more than once on `%s`", check.Name, table.Name),
				Resolution: "Give each check constraint a distinct name",
			})
		}
		names[check.Name] = true

		expr := strings.Join(strings.Fields(check.Expression), " ")
		if first, dup := exprs[expr]; dup {
			violations = append(violations, Violation{
				Rule:       "UniqueCheckConstraint",
				Kind:       KindConstraint,
				Table:      table.Name,
				Object:     check.Name,
				Message:    fmt.Sprintf("check constraint `%s` repeats the expression of `%s`", check.Name, first),
				Resolution: fmt.Sprintf("Drop `%s` or `%s`; the conditions are identical", check.Name, first),
			})
			continue
		}
		exprs[expr] = check.Name
	}
	return violations
}

// NoForbiddenColumnInExtension rejects configured column names on tables
// that take part in an extension hierarchy. The stock catalog forbids
// `most_concrete_table`, a bookkeeping column that belongs only on
// hierarchy roots generated by tooling.
type NoForbiddenColumnInExtension struct {
	Forbidden []string
}

// NewNoForbiddenColumnInExtension builds the rule with the stock
// forbidden-column list.
func NewNoForbiddenColumnInExtension(forbidden ...string) NoForbiddenColumnInExtension {
	if len(forbidden) == 0 {
		forbidden = []string{"most_concrete_table"}
	}
	return NoForbiddenColumnInExtension{Forbidden: forbidden}
}

func (NoForbiddenColumnInExtension) Name() string { return "NoForbiddenColumnInExtension" }
func (NoForbiddenColumnInExtension) Doc() string {
	return "Tables in an extension hierarchy must not declare the configured forbidden columns."
}

func (r NoForbiddenColumnInExtension) CheckTable(ctx *Context, table *schema.Table) []Violation {
	node, ok := ctx.Graph.Node(table.Name)
	if !ok || len(ctx.Graph.Parents(node)) == 0 {
		return nil
	}

	var violations []Violation
	for _, forbidden := range r.Forbidden {
		if table.Column(forbidden) == nil {
			continue
		}
		violations = append(violations, Violation{
			Rule:   "NoForbiddenColumnInExtension",
			Kind:   KindConstraint,
			Table:  table.Name,
			Object: forbidden,
			Message: fmt.Sprintf(
				"extending table `%s` declares column `%s`, which is reserved for hierarchy roots",
				table.Name, forbidden,
			),
			Resolution: fmt.Sprintf("Remove column `%s` from `%s`", forbidden, table.Name),
		})
	}
	return violations
}

// NoSurrogatePrimaryKeyInExtension rejects surrogate primary-key columns
// on tables that extend another table. An extending row inherits its
// identity from the parent row; a generated or defaulted key column would
// mint fresh values instead of reusing the inherited one.
type NoSurrogatePrimaryKeyInExtension struct{}

func (NoSurrogatePrimaryKeyInExtension) Name() string { return "NoSurrogatePrimaryKeyInExtension" }
func (NoSurrogatePrimaryKeyInExtension) Doc() string {
	return "Primary-key columns of extending tables must not be generated or carry a DEFAULT."
}

func (NoSurrogatePrimaryKeyInExtension) CheckColumn(ctx *Context, table *schema.Table, column *schema.Column) []Violation {
	if !table.IsPrimaryKeyColumn(column.Name) {
		return nil
	}
	node, ok := ctx.Graph.Node(table.Name)
	if !ok || len(ctx.Graph.Parents(node)) == 0 {
		return nil
	}

	generated := column.IsGenerated()
	defaulted := column.DefaultValue != nil
	var reason string
	switch {
	case generated && defaulted:
		reason = "is generated and defines a DEFAULT value"
	case generated:
		reason = "is generated (serial/auto-increment)"
	case defaulted:
		reason = "defines a DEFAULT value"
	default:
		return nil
	}

	return []Violation{{
		Rule:   "NoSurrogatePrimaryKeyInExtension",
		Kind:   KindConstraint,
		Table:  table.Name,
		Object: column.Name,
		Message: fmt.Sprintf(
			"primary-key column `%s.%s` belongs to an extending table and %s",
			table.Name, column.Name, reason,
		),
		Resolution: fmt.Sprintf(
			"Drop the serial/DEFAULT from `%s.%s`; the key value is inherited from the parent row",
			table.Name, column.Name,
		),
	}}
}
