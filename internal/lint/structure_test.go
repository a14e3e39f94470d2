package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalint/schemalint/internal/schema"
)

func TestHasPrimaryKey(t *testing.T) {
	ctx := ctxFor(rootTable("users"))
	assert.Empty(t, HasPrimaryKey{}.CheckTable(ctx, ctx.Schema.Table("users")))

	ctx = ctxFor(tbl("logs", nil, col("message", "text")))
	violations := HasPrimaryKey{}.CheckTable(ctx, ctx.Schema.Table("logs"))
	require.Len(t, violations, 1)
	assert.Equal(t, KindConstraint, violations[0].Kind)
}

func TestUniqueForeignKey(t *testing.T) {
	orders := rootTable("orders", col("user_id", "integer"))
	orders.ForeignKeys = []schema.ForeignKey{
		fk("orders_user_id_fkey", []string{"user_id"}, "users", []string{"id"}),
		fk("orders_user_id_fkey1", []string{"user_id"}, "users", []string{"id"}),
	}
	ctx := ctxFor(rootTable("users"), orders)

	violations := UniqueForeignKey{}.CheckTable(ctx, ctx.Schema.Table("orders"))
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "orders_user_id_fkey")
}

func TestUniqueForeignKeyDistinctTargetsAllowed(t *testing.T) {
	orders := rootTable("orders", col("user_id", "integer"), col("shipper_id", "integer"))
	orders.ForeignKeys = []schema.ForeignKey{
		fk("orders_user_id_fkey", []string{"user_id"}, "users", []string{"id"}),
		fk("orders_shipper_id_fkey", []string{"shipper_id"}, "shippers", []string{"id"}),
	}
	ctx := ctxFor(rootTable("users"), rootTable("shippers"), orders)

	assert.Empty(t, UniqueForeignKey{}.CheckTable(ctx, ctx.Schema.Table("orders")))
}

func TestUniqueUniqueIndex(t *testing.T) {
	users := rootTable("users", col("email", "text"), col("tenant_id", "integer"))
	users.Indexes = []schema.Index{
		{Name: "users_email_key", Columns: []string{"tenant_id", "email"}, IsUnique: true},
		{Name: "users_email_key2", Columns: []string{"email", "tenant_id"}, IsUnique: true},
	}
	ctx := ctxFor(users)

	// Permuted column order still counts as the same guarantee.
	violations := UniqueUniqueIndex{}.CheckTable(ctx, ctx.Schema.Table("users"))
	require.Len(t, violations, 1)
	assert.Equal(t, "users_email_key2", violations[0].Object)
}

func TestUniqueUniqueIndexIgnoresNonUniqueAndPrimary(t *testing.T) {
	users := rootTable("users", col("email", "text"))
	users.Indexes = []schema.Index{
		{Name: "users_pkey", Columns: []string{"id"}, IsUnique: true, IsPrimary: true},
		{Name: "users_email_idx", Columns: []string{"email"}, IsUnique: false},
		{Name: "users_email_idx2", Columns: []string{"email"}, IsUnique: false},
	}
	ctx := ctxFor(users)

	assert.Empty(t, UniqueUniqueIndex{}.CheckTable(ctx, ctx.Schema.Table("users")))
}

func TestUniqueCheckConstraint(t *testing.T) {
	users := rootTable("users", col("age", "integer"))
	users.Checks = []schema.CheckConstraint{
		{Name: "users_age_check", Expression: "age >= 0"},
		{Name: "users_age_check", Expression: "age < 200"},
		{Name: "users_age_positive", Expression: "age  >=  0"},
	}
	ctx := ctxFor(users)

	violations := UniqueCheckConstraint{}.CheckTable(ctx, ctx.Schema.Table("users"))
	require.Len(t, violations, 2)

	// One duplicate name, one whitespace-equivalent duplicate expression.
	assert.Contains(t, violations[0].Message, "declared more than once")
	assert.Contains(t, violations[1].Message, "repeats the expression")
	assert.Equal(t, "users_age_positive", violations[1].Object)
}

func TestNoForbiddenColumnInExtension(t *testing.T) {
	rule := NewNoForbiddenColumnInExtension()

	// Roots may carry the bookkeeping column.
	ctx := ctxFor(
		rootTable("parties", col("most_concrete_table", "text")),
		extTable("organizations", "parties"),
	)
	assert.Empty(t, rule.CheckTable(ctx, ctx.Schema.Table("parties")))

	// Extending tables may not.
	ctx = ctxFor(
		rootTable("parties"),
		extTable("organizations", "parties", col("most_concrete_table", "text")),
	)
	violations := rule.CheckTable(ctx, ctx.Schema.Table("organizations"))
	require.Len(t, violations, 1)
	assert.Equal(t, "most_concrete_table", violations[0].Object)
}

func TestNoForbiddenColumnInExtensionConfiguredList(t *testing.T) {
	rule := NewNoForbiddenColumnInExtension("tenant_id")

	ctx := ctxFor(
		rootTable("parties"),
		extTable("organizations", "parties",
			col("most_concrete_table", "text"), col("tenant_id", "integer")),
	)
	violations := rule.CheckTable(ctx, ctx.Schema.Table("organizations"))
	require.Len(t, violations, 1)
	assert.Equal(t, "tenant_id", violations[0].Object)
}

func TestNoSurrogatePrimaryKeyInExtension(t *testing.T) {
	rule := NoSurrogatePrimaryKeyInExtension{}

	// Roots may generate their own keys.
	serialRoot := tbl("parties", []string{"id"}, col("id", "serial"))
	ctx := ctxFor(serialRoot, extTable("organizations", "parties"))
	table := ctx.Schema.Table("parties")
	assert.Empty(t, rule.CheckColumn(ctx, table, table.Column("id")))

	// An extending table with a plain inherited key passes.
	table = ctx.Schema.Table("organizations")
	assert.Empty(t, rule.CheckColumn(ctx, table, table.Column("id")))
}

func TestNoSurrogatePrimaryKeyInExtensionFlagsGeneratedKey(t *testing.T) {
	child := tbl("organizations", []string{"id"}, col("id", "serial"))
	child.ForeignKeys = []schema.ForeignKey{
		cascadeFk("organizations_id_fkey", []string{"id"}, "parties", []string{"id"}),
	}
	ctx := ctxFor(rootTable("parties"), child)
	table := ctx.Schema.Table("organizations")

	violations := NoSurrogatePrimaryKeyInExtension{}.CheckColumn(ctx, table, table.Column("id"))
	require.Len(t, violations, 1)
	assert.Equal(t, KindConstraint, violations[0].Kind)
	assert.Contains(t, violations[0].Message, "is generated")
}

func TestNoSurrogatePrimaryKeyInExtensionFlagsDefaultedKey(t *testing.T) {
	def := "42"
	keyCol := col("id", "integer")
	keyCol.DefaultValue = &def

	child := tbl("organizations", []string{"id"}, keyCol)
	child.ForeignKeys = []schema.ForeignKey{
		cascadeFk("organizations_id_fkey", []string{"id"}, "parties", []string{"id"}),
	}
	ctx := ctxFor(rootTable("parties"), child)
	table := ctx.Schema.Table("organizations")

	violations := NoSurrogatePrimaryKeyInExtension{}.CheckColumn(ctx, table, table.Column("id"))
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "defines a DEFAULT value")
}

func TestNoSurrogatePrimaryKeyInExtensionIgnoresNonKeyColumns(t *testing.T) {
	ctx := ctxFor(
		rootTable("parties"),
		extTable("organizations", "parties", col("counter", "serial")),
	)
	table := ctx.Schema.Table("organizations")

	assert.Empty(t, NoSurrogatePrimaryKeyInExtension{}.CheckColumn(ctx, table, table.Column("counter")))
}
