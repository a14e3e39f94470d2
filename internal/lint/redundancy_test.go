package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalint/schemalint/internal/schema"
)

func TestNonRedundantExtensionDagNoExtensions(t *testing.T) {
	ctx := ctxFor(
		rootTable("users"),
		rootTable("orders", col("total", "numeric")),
	)
	rule := NonRedundantExtensionDag{}

	for i := range ctx.Schema.Tables {
		assert.Empty(t, rule.CheckTable(ctx, &ctx.Schema.Tables[i]))
	}
}

func TestNonRedundantExtensionDagReducedChainIsClean(t *testing.T) {
	ctx := ctxFor(
		rootTable("parties"),
		extTable("organizations", "parties"),
		extTable("companies", "organizations"),
	)
	rule := NonRedundantExtensionDag{}

	for i := range ctx.Schema.Tables {
		assert.Empty(t, rule.CheckTable(ctx, &ctx.Schema.Tables[i]))
	}
}

func TestNonRedundantExtensionDagFlagsImpliedEdge(t *testing.T) {
	leaf := extTable("companies", "organizations")
	leaf.ForeignKeys = append(leaf.ForeignKeys,
		cascadeFk("companies_parties_fkey", []string{"id"}, "parties", []string{"id"}))

	ctx := ctxFor(
		rootTable("parties"),
		extTable("organizations", "parties"),
		leaf,
	)

	violations := NonRedundantExtensionDag{}.CheckTable(ctx, ctx.Schema.Table("companies"))
	require.Len(t, violations, 1)

	v := violations[0]
	assert.Equal(t, KindRedundancy, v.Kind)
	assert.Equal(t, "companies", v.Table)
	assert.Equal(t, "companies_parties_fkey", v.Object)
	assert.Contains(t, v.Message, "companies -> organizations -> parties")
	assert.Contains(t, v.Resolution, "organizations")
}

func TestNonRedundantExtensionDagDiamondIsClean(t *testing.T) {
	concrete := rootTable("readable_writables")
	concrete.ForeignKeys = []schema.ForeignKey{
		cascadeFk("fk_readables", []string{"id"}, "readables", []string{"id"}),
		cascadeFk("fk_writables", []string{"id"}, "writables", []string{"id"}),
	}

	ctx := ctxFor(
		rootTable("resources"),
		extTable("readables", "resources"),
		extTable("writables", "resources"),
		concrete,
	)
	rule := NonRedundantExtensionDag{}

	// Neither diamond edge is implied by the other: the paths through
	// readables and writables end at resources, not at each other.
	for i := range ctx.Schema.Tables {
		assert.Empty(t, rule.CheckTable(ctx, &ctx.Schema.Tables[i]))
	}
}

func TestNonRedundantExtensionDagSelfLoopIsStructural(t *testing.T) {
	loop := rootTable("nodes")
	loop.ForeignKeys = []schema.ForeignKey{
		cascadeFk("nodes_id_fkey", []string{"id"}, "nodes", []string{"id"}),
	}
	ctx := ctxFor(loop)

	violations := NonRedundantExtensionDag{}.CheckTable(ctx, ctx.Schema.Table("nodes"))
	require.Len(t, violations, 1)
	assert.Equal(t, KindStructural, violations[0].Kind)
	assert.Contains(t, violations[0].Message, "nodes -> nodes")
}

func TestNonRedundantExtensionDagCycleSuppressesRedundancy(t *testing.T) {
	a := extTable("alphas", "betas")
	b := extTable("betas", "alphas")
	ctx := ctxFor(a, b)

	for _, name := range []string{"alphas", "betas"} {
		violations := NonRedundantExtensionDag{}.CheckTable(ctx, ctx.Schema.Table(name))
		require.Len(t, violations, 1, name)
		assert.Equal(t, KindStructural, violations[0].Kind, name)
	}
}
