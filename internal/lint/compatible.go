package lint

import (
	"fmt"
	"strings"

	"github.com/schemalint/schemalint/internal/schema"
)

// TypeEquivalence is the configurable equivalence relation used by
// CompatibleForeignKey. Two declared types are compatible when they
// normalize to the same canonical type, or when both normal forms belong
// to the same registered equivalence class. Classes are kept in a
// union-find forest, so a class sharing a member with an earlier one
// merges with it.
type TypeEquivalence struct {
	parent map[string]string
}

// DefaultTypeEquivalence returns the built-in relation: type synonyms plus
// the integer-width and textual families.
func DefaultTypeEquivalence() *TypeEquivalence {
	eq := StrictTypeEquivalence()
	eq.AddClass("smallint", "integer", "bigint")
	eq.AddClass("text", "character varying", "character")
	return eq
}

// StrictTypeEquivalence returns a relation with no equivalence classes:
// only identical normalized types are compatible.
func StrictTypeEquivalence() *TypeEquivalence {
	return &TypeEquivalence{parent: make(map[string]string)}
}

// AddClass registers the given types as mutually compatible. Types are
// normalized before registration, so synonyms may be used. A type that
// already belongs to a class pulls its whole class into the new one.
func (eq *TypeEquivalence) AddClass(types ...string) {
	if len(types) < 2 {
		return
	}
	root := eq.find(NormalizeType(types[0]))
	for _, t := range types[1:] {
		r := eq.find(NormalizeType(t))
		if r != root {
			eq.parent[r] = root
		}
	}
}

// Compatible reports whether two declared types may legally appear on the
// two sides of a foreign key column pair.
func (eq *TypeEquivalence) Compatible(a, b string) bool {
	na, nb := NormalizeType(a), NormalizeType(b)
	if na == nb {
		return true
	}
	return eq.find(na) == eq.find(nb)
}

// find walks up to the class representative; an unregistered type is its
// own representative.
func (eq *TypeEquivalence) find(t string) string {
	for {
		p, ok := eq.parent[t]
		if !ok {
			return t
		}
		t = p
	}
}

// NormalizeType lowercases a declared type, strips length/precision
// arguments, and folds engine-specific aliases onto their canonical
// names. Serial pseudo-types normalize to their backing integer type,
// since that is what the column stores.
func NormalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}

	switch t {
	case "int", "int4", "serial", "serial4":
		return "integer"
	case "int2", "smallserial", "serial2":
		return "smallint"
	case "int8", "bigserial", "serial8":
		return "bigint"
	case "bool":
		return "boolean"
	case "varchar", "character varying":
		return "character varying"
	case "char", "bpchar":
		return "character"
	case "float4", "real":
		return "real"
	case "float8", "double precision":
		return "double precision"
	case "numeric", "decimal":
		return "numeric"
	case "timestamptz", "timestamp with time zone":
		return "timestamp with time zone"
	case "timestamp", "timestamp without time zone":
		return "timestamp without time zone"
	default:
		return t
	}
}

// CompatibleForeignKey verifies that a foreign key's local columns are
// compatible, position by position, with the columns it references. A
// column-count mismatch is always a violation regardless of types. Two
// generated (serial/sequence-backed) columns on the two sides are also a
// violation: both sides drawing fresh values defeats the reference.
type CompatibleForeignKey struct {
	Equivalence *TypeEquivalence
}

// NewCompatibleForeignKey builds the rule with the default equivalence
// relation.
func NewCompatibleForeignKey() CompatibleForeignKey {
	return CompatibleForeignKey{Equivalence: DefaultTypeEquivalence()}
}

func (CompatibleForeignKey) Name() string {
	return "CompatibleForeignKey"
}

func (CompatibleForeignKey) Doc() string {
	return "Foreign key columns must match the referenced columns in count and, position by position, in type."
}

func (r CompatibleForeignKey) CheckForeignKey(ctx *Context, table *schema.Table, fk *schema.ForeignKey) []Violation {
	if len(fk.Columns) != len(fk.ReferencedColumns) {
		return []Violation{{
			Rule:   "CompatibleForeignKey",
			Kind:   KindCompatibility,
			Table:  table.Name,
			Object: fk.Label(),
			Message: fmt.Sprintf(
				"foreign key maps %d local columns onto %d referenced columns in `%s`",
				len(fk.Columns), len(fk.ReferencedColumns), fk.ReferencedTable,
			),
			Resolution: "Declare the same number of columns on both sides of the foreign key",
		}}
	}

	referenced := ctx.Schema.Table(fk.ReferencedTable)
	if referenced == nil {
		// ReferencesUniqueIndex reports unresolved referenced tables.
		return nil
	}

	eq := r.Equivalence
	if eq == nil {
		eq = DefaultTypeEquivalence()
	}

	var violations []Violation
	for i := range fk.Columns {
		local := table.Column(fk.Columns[i])
		remote := referenced.Column(fk.ReferencedColumns[i])
		if local == nil || remote == nil {
			continue
		}

		if local.IsGenerated() && remote.IsGenerated() {
			violations = append(violations, Violation{
				Rule:   "CompatibleForeignKey",
				Kind:   KindCompatibility,
				Table:  table.Name,
				Object: fk.Label(),
				Message: fmt.Sprintf(
					"foreign key column `%s.%s` and referenced column `%s.%s` are both generated (serial/auto-increment), so they should never hold the same value",
					table.Name, local.Name, referenced.Name, remote.Name,
				),
				Resolution: fmt.Sprintf(
					"Change `%s.%s` from a serial type to a plain %s",
					table.Name, local.Name, NormalizeType(remote.DataType),
				),
			})
			continue
		}

		if !eq.Compatible(local.DataType, remote.DataType) {
			violations = append(violations, Violation{
				Rule:   "CompatibleForeignKey",
				Kind:   KindCompatibility,
				Table:  table.Name,
				Object: fk.Label(),
				Message: fmt.Sprintf(
					"foreign key column `%s.%s` has type '%s' which is incompatible with referenced column `%s.%s` of type '%s'",
					table.Name, local.Name, local.DataType,
					referenced.Name, remote.Name, remote.DataType,
				),
				Resolution: fmt.Sprintf(
					"Change the type of `%s.%s` to '%s' to match the referenced column",
					table.Name, local.Name, remote.DataType,
				),
			})
		}
	}
	return violations
}
