package lint

import "github.com/schemalint/schemalint/internal/schema"

// Constrainer holds the registered rules and applies them to a schema.
// Registration order is preserved, which together with schema order makes
// validation output stable: running the same constrainer twice over an
// unmodified schema yields identical violation lists.
type Constrainer struct {
	tableRules      []TableRule
	columnRules     []ColumnRule
	foreignKeyRules []ForeignKeyRule
}

// New returns an empty constrainer for explicit, selective registration.
func New() *Constrainer {
	return &Constrainer{}
}

// Options tunes the default rule catalog.
type Options struct {
	// Disabled lists rule names to leave out of the catalog.
	Disabled []string
	// ForbiddenExtensionColumns overrides the stock forbidden-column list
	// of NoForbiddenColumnInExtension.
	ForbiddenExtensionColumns []string
	// TypeEquivalence overrides the compatibility relation of
	// CompatibleForeignKey.
	TypeEquivalence *TypeEquivalence
}

// NewDefault returns a constrainer pre-registered with the full rule
// catalog in its stock configuration.
func NewDefault() *Constrainer {
	return NewWithOptions(Options{})
}

// NewWithOptions returns the default catalog adjusted by opts.
func NewWithOptions(opts Options) *Constrainer {
	c := New()

	compatible := NewCompatibleForeignKey()
	if opts.TypeEquivalence != nil {
		compatible.Equivalence = opts.TypeEquivalence
	}

	c.RegisterTableRule(HasPrimaryKey{})
	c.RegisterTableRule(LowercaseTableName{})
	c.RegisterTableRule(SnakeCaseTableName{})
	c.RegisterTableRule(PluralTableName{})
	c.RegisterTableRule(NonRedundantExtensionDag{})
	c.RegisterTableRule(UniqueColumnNamesInExtensionGraph{})
	c.RegisterTableRule(NewNoForbiddenColumnInExtension(opts.ForbiddenExtensionColumns...))
	c.RegisterTableRule(UniqueForeignKey{})
	c.RegisterTableRule(UniqueUniqueIndex{})
	c.RegisterTableRule(UniqueCheckConstraint{})

	c.RegisterColumnRule(LowercaseColumnName{})
	c.RegisterColumnRule(SnakeCaseColumnName{})
	c.RegisterColumnRule(SingularColumnName{})
	c.RegisterColumnRule(NonCompositePrimaryKeyNamedID{})
	c.RegisterColumnRule(NoSurrogatePrimaryKeyInExtension{})

	c.RegisterForeignKeyRule(compatible)
	c.RegisterForeignKeyRule(LowercaseForeignKeyName{})
	c.RegisterForeignKeyRule(ReferencesUniqueIndex{})
	c.RegisterForeignKeyRule(ExtensionForeignKeyOnDeleteCascade{})
	c.RegisterForeignKeyRule(PrimaryKeyReferenceEndsWithID{})

	c.Disable(opts.Disabled...)
	return c
}

func (c *Constrainer) RegisterTableRule(rule TableRule) {
	c.tableRules = append(c.tableRules, rule)
}

func (c *Constrainer) RegisterColumnRule(rule ColumnRule) {
	c.columnRules = append(c.columnRules, rule)
}

func (c *Constrainer) RegisterForeignKeyRule(rule ForeignKeyRule) {
	c.foreignKeyRules = append(c.foreignKeyRules, rule)
}

// Disable removes the named rules from every registry.
func (c *Constrainer) Disable(names ...string) {
	if len(names) == 0 {
		return
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	var tables []TableRule
	for _, r := range c.tableRules {
		if !drop[r.Name()] {
			tables = append(tables, r)
		}
	}
	c.tableRules = tables

	var columns []ColumnRule
	for _, r := range c.columnRules {
		if !drop[r.Name()] {
			columns = append(columns, r)
		}
	}
	c.columnRules = columns

	var fks []ForeignKeyRule
	for _, r := range c.foreignKeyRules {
		if !drop[r.Name()] {
			fks = append(fks, r)
		}
	}
	c.foreignKeyRules = fks
}

// RuleInfo describes one registered rule for catalog listings.
type RuleInfo struct {
	Name string
	Kind string
	Doc  string
}

// Rules lists every registered rule grouped by the entity kind it
// inspects, in registration order.
func (c *Constrainer) Rules() []RuleInfo {
	var infos []RuleInfo
	for _, r := range c.tableRules {
		infos = append(infos, RuleInfo{Name: r.Name(), Kind: "table", Doc: r.Doc()})
	}
	for _, r := range c.columnRules {
		infos = append(infos, RuleInfo{Name: r.Name(), Kind: "column", Doc: r.Doc()})
	}
	for _, r := range c.foreignKeyRules {
		infos = append(infos, RuleInfo{Name: r.Name(), Kind: "foreign key", Doc: r.Doc()})
	}
	return infos
}

// ValidateSchema builds the extension graph once, applies every
// registered rule to every relevant entity, and returns the aggregated
// result. It never short-circuits: a linter's value is the full list.
func (c *Constrainer) ValidateSchema(s *schema.Schema) Result {
	ctx := &Context{
		Schema: s,
		Graph:  BuildExtensionGraph(s),
	}

	var violations []Violation
	for i := range s.Tables {
		table := &s.Tables[i]

		for _, rule := range c.tableRules {
			violations = append(violations, rule.CheckTable(ctx, table)...)
		}

		for j := range table.Columns {
			for _, rule := range c.columnRules {
				violations = append(violations, rule.CheckColumn(ctx, table, &table.Columns[j])...)
			}
		}

		for j := range table.ForeignKeys {
			for _, rule := range c.foreignKeyRules {
				violations = append(violations, rule.CheckForeignKey(ctx, table, &table.ForeignKeys[j])...)
			}
		}
	}

	return Result{Violations: violations}
}
