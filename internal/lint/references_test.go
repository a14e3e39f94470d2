package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalint/schemalint/internal/schema"
)

func TestExtensionForeignKeyOnDeleteCascadeAccepted(t *testing.T) {
	ctx := ctxFor(
		rootTable("parties"),
		extTable("organizations", "parties"),
	)
	table := ctx.Schema.Table("organizations")

	rule := ExtensionForeignKeyOnDeleteCascade{}
	assert.Empty(t, rule.CheckForeignKey(ctx, table, &table.ForeignKeys[0]))
}

func TestExtensionForeignKeyOnDeleteCascadeMissing(t *testing.T) {
	child := rootTable("organizations")
	child.ForeignKeys = []schema.ForeignKey{
		fk("organizations_id_fkey", []string{"id"}, "parties", []string{"id"}),
	}
	ctx := ctxFor(rootTable("parties"), child)
	table := ctx.Schema.Table("organizations")

	violations := ExtensionForeignKeyOnDeleteCascade{}.CheckForeignKey(ctx, table, &table.ForeignKeys[0])
	require.Len(t, violations, 1)
	assert.Equal(t, KindConstraint, violations[0].Kind)
	assert.Contains(t, violations[0].Message, "ON DELETE NO ACTION")
}

func TestExtensionForeignKeyOnDeleteCascadeIgnoresOrdinaryForeignKeys(t *testing.T) {
	orders := rootTable("orders", col("user_id", "integer"))
	orders.ForeignKeys = []schema.ForeignKey{
		fk("orders_user_id_fkey", []string{"user_id"}, "users", []string{"id"}),
	}
	ctx := ctxFor(rootTable("users"), orders)
	table := ctx.Schema.Table("orders")

	assert.Empty(t, ExtensionForeignKeyOnDeleteCascade{}.CheckForeignKey(ctx, table, &table.ForeignKeys[0]))
}

func TestExtensionForeignKeyOnDeleteCascadeCaseInsensitive(t *testing.T) {
	child := rootTable("organizations")
	f := fk("organizations_id_fkey", []string{"id"}, "parties", []string{"id"})
	f.OnDelete = "cascade"
	child.ForeignKeys = []schema.ForeignKey{f}
	ctx := ctxFor(rootTable("parties"), child)
	table := ctx.Schema.Table("organizations")

	assert.Empty(t, ExtensionForeignKeyOnDeleteCascade{}.CheckForeignKey(ctx, table, &table.ForeignKeys[0]))
}

func TestPrimaryKeyReferenceEndsWithID(t *testing.T) {
	rule := PrimaryKeyReferenceEndsWithID{}

	orders := rootTable("orders",
		col("user_id", "integer"), col("owner", "integer"))
	orders.ForeignKeys = []schema.ForeignKey{
		fk("orders_user_id_fkey", []string{"user_id"}, "users", []string{"id"}),
		fk("orders_owner_fkey", []string{"owner"}, "users", []string{"id"}),
	}
	ctx := ctxFor(rootTable("users"), orders)
	table := ctx.Schema.Table("orders")

	assert.Empty(t, rule.CheckForeignKey(ctx, table, &table.ForeignKeys[0]))

	violations := rule.CheckForeignKey(ctx, table, &table.ForeignKeys[1])
	require.Len(t, violations, 1)
	assert.Equal(t, KindNaming, violations[0].Kind)
	assert.Contains(t, violations[0].Resolution, "owner_id")
}

func TestPrimaryKeyReferenceEndsWithIDSkipsNonIDTargets(t *testing.T) {
	sessions := rootTable("sessions", col("user_email", "text"))
	sessions.ForeignKeys = []schema.ForeignKey{
		fk("sessions_user_email_fkey", []string{"user_email"}, "users", []string{"email"}),
	}
	users := rootTable("users", col("email", "text"))
	users.Indexes = []schema.Index{{Name: "users_email_key", Columns: []string{"email"}, IsUnique: true}}
	ctx := ctxFor(users, sessions)
	table := ctx.Schema.Table("sessions")

	assert.Empty(t, PrimaryKeyReferenceEndsWithID{}.CheckForeignKey(ctx, table, &table.ForeignKeys[0]))
}

func TestPrimaryKeyReferenceEndsWithIDExtensionEdgeAllowed(t *testing.T) {
	ctx := ctxFor(
		rootTable("parties"),
		extTable("organizations", "parties"),
	)
	table := ctx.Schema.Table("organizations")

	// The extension foreign key maps plain `id` onto the parent's `id`.
	assert.Empty(t, PrimaryKeyReferenceEndsWithID{}.CheckForeignKey(ctx, table, &table.ForeignKeys[0]))
}

func TestExtensionForeignKeyOnDeleteCascadeUnnamedForeignKeys(t *testing.T) {
	// Unnamed foreign keys must still classify by shape: the pk-over-pk
	// one is an extension edge, the ordinary one is not, even though both
	// point at the same parent.
	extension := schema.ForeignKey{
		Columns:           []string{"id"},
		ReferencedTable:   "parties",
		ReferencedColumns: []string{"id"},
		OnDelete:          "NO ACTION",
	}
	ordinary := schema.ForeignKey{
		Columns:           []string{"parent_id"},
		ReferencedTable:   "parties",
		ReferencedColumns: []string{"id"},
		OnDelete:          "NO ACTION",
	}

	child := rootTable("organizations", col("parent_id", "integer"))
	child.ForeignKeys = []schema.ForeignKey{extension, ordinary}
	ctx := ctxFor(rootTable("parties"), child)
	table := ctx.Schema.Table("organizations")

	rule := ExtensionForeignKeyOnDeleteCascade{}

	violations := rule.CheckForeignKey(ctx, table, &table.ForeignKeys[0])
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "ON DELETE NO ACTION")

	assert.Empty(t, rule.CheckForeignKey(ctx, table, &table.ForeignKeys[1]))
}

func TestLowercaseForeignKeyName(t *testing.T) {
	rule := LowercaseForeignKeyName{}

	orders := rootTable("orders", col("user_id", "integer"))
	orders.ForeignKeys = []schema.ForeignKey{
		fk("orders_user_id_fkey", []string{"user_id"}, "users", []string{"id"}),
		fk("Orders_User_FK", []string{"user_id"}, "users", []string{"id"}),
	}
	ctx := ctxFor(rootTable("users"), orders)
	table := ctx.Schema.Table("orders")

	assert.Empty(t, rule.CheckForeignKey(ctx, table, &table.ForeignKeys[0]))

	violations := rule.CheckForeignKey(ctx, table, &table.ForeignKeys[1])
	require.Len(t, violations, 1)
	assert.Equal(t, KindNaming, violations[0].Kind)
	assert.Contains(t, violations[0].Resolution, "orders_user_fk")
}

func TestLowercaseForeignKeyNameSkipsUnnamed(t *testing.T) {
	orders := rootTable("orders", col("user_id", "integer"))
	orders.ForeignKeys = []schema.ForeignKey{{
		Columns:           []string{"user_id"},
		ReferencedTable:   "users",
		ReferencedColumns: []string{"id"},
	}}
	ctx := ctxFor(rootTable("users"), orders)
	table := ctx.Schema.Table("orders")

	assert.Empty(t, LowercaseForeignKeyName{}.CheckForeignKey(ctx, table, &table.ForeignKeys[0]))
}
