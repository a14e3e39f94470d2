package lint

import "github.com/schemalint/schemalint/internal/schema"

// ExtensionGraph is the directed graph of table-extension relationships in
// a schema. An edge A -> B exists iff some foreign key of A maps A's entire
// primary key, column for column and in order, onto B: the structural
// signature of joined-table inheritance.
//
// Tables are addressed by dense integer indexes into an arena rather than
// by pointers, which keeps multi-parent (diamond) shapes and even cyclic
// inputs representable without ownership knots. The graph is derived fresh
// per validation run and never mutated.
type ExtensionGraph struct {
	names   []string
	index   map[string]int
	parents [][]ExtensionEdge
}

// ExtensionEdge records one extension relationship and the foreign key
// that produced it.
type ExtensionEdge struct {
	From       int
	To         int
	ForeignKey string
}

// BuildExtensionGraph derives the extension graph from a schema. The
// builder always succeeds; a schema without extensions yields an empty
// graph. Self-referencing edges are retained so the redundancy analyzer
// can flag them as degenerate cycles. Foreign keys referencing tables
// outside the schema never qualify.
func BuildExtensionGraph(s *schema.Schema) *ExtensionGraph {
	g := &ExtensionGraph{
		index: make(map[string]int, len(s.Tables)),
	}
	for i := range s.Tables {
		g.index[s.Tables[i].Name] = len(g.names)
		g.names = append(g.names, s.Tables[i].Name)
	}
	g.parents = make([][]ExtensionEdge, len(g.names))

	for i := range s.Tables {
		t := &s.Tables[i]
		if len(t.PrimaryKey) == 0 {
			continue
		}
		from := g.index[t.Name]
		for _, fk := range t.ForeignKeys {
			if !sameOrderedColumns(fk.Columns, t.PrimaryKey) {
				continue
			}
			to, ok := g.index[fk.ReferencedTable]
			if !ok {
				continue
			}
			g.parents[from] = append(g.parents[from], ExtensionEdge{
				From:       from,
				To:         to,
				ForeignKey: fk.Name,
			})
		}
	}

	return g
}

// Node returns the arena index for a table name.
func (g *ExtensionGraph) Node(table string) (int, bool) {
	i, ok := g.index[table]
	return i, ok
}

// Name returns the table name at an arena index.
func (g *ExtensionGraph) Name(i int) string {
	return g.names[i]
}

// Parents returns the outgoing extension edges of a node, in foreign key
// declaration order.
func (g *ExtensionGraph) Parents(i int) []ExtensionEdge {
	return g.parents[i]
}

// Empty reports whether the graph has no extension edges at all.
func (g *ExtensionGraph) Empty() bool {
	for _, edges := range g.parents {
		if len(edges) > 0 {
			return false
		}
	}
	return true
}

// EdgeCount returns the total number of extension edges.
func (g *ExtensionGraph) EdgeCount() int {
	n := 0
	for _, edges := range g.parents {
		n += len(edges)
	}
	return n
}

// Reachable returns every node reachable from start in one or more steps.
// Traversal is bounded by a visited set, so it terminates on cyclic input;
// start itself appears in the result iff it lies on a cycle.
func (g *ExtensionGraph) Reachable(start int) map[int]bool {
	reached := make(map[int]bool)
	var stack []int
	for _, e := range g.parents[start] {
		stack = append(stack, e.To)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[n] {
			continue
		}
		reached[n] = true
		for _, e := range g.parents[n] {
			if !reached[e.To] {
				stack = append(stack, e.To)
			}
		}
	}
	return reached
}

// OnCycle reports whether the node can reach itself, covering both
// self-loops and longer cycles.
func (g *ExtensionGraph) OnCycle(i int) bool {
	return g.Reachable(i)[i]
}

// CyclePath returns a path i -> ... -> i witnessing the cycle through
// node i, as table names, or nil when i is not on a cycle.
func (g *ExtensionGraph) CyclePath(i int) []string {
	path, ok := g.findPath(i, i)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(path)+1)
	names = append(names, g.names[i])
	for _, n := range path {
		names = append(names, g.names[n])
	}
	return names
}

// AlternatePath returns a path from 'from' to 'to' of length at least two,
// as table names, when one exists. The direct edge under test is excluded
// by construction: the search starts one step out and a first hop landing
// on the target is rejected.
func (g *ExtensionGraph) AlternatePath(from, to int) ([]string, bool) {
	for _, e := range g.parents[from] {
		if e.To == to {
			continue
		}
		rest, ok := g.findPath(e.To, to)
		if !ok {
			continue
		}
		names := []string{g.names[from], g.names[e.To]}
		for _, n := range rest {
			names = append(names, g.names[n])
		}
		return names, true
	}
	return nil, false
}

// findPath runs a BFS from start and, when target is reachable in one or
// more steps, returns the node sequence after start up to and including
// target. start == target asks for a cycle witness.
func (g *ExtensionGraph) findPath(start, target int) ([]int, bool) {
	prev := make(map[int]int)
	visited := make(map[int]bool)
	var queue []int

	for _, e := range g.parents[start] {
		if !visited[e.To] {
			visited[e.To] = true
			prev[e.To] = start
			queue = append(queue, e.To)
		}
	}

	found := false
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == target {
			found = true
			break
		}
		for _, e := range g.parents[n] {
			if !visited[e.To] {
				visited[e.To] = true
				prev[e.To] = n
				queue = append(queue, e.To)
			}
		}
	}
	if !found {
		return nil, false
	}

	var rev []int
	n := target
	for {
		rev = append(rev, n)
		p := prev[n]
		if p == start {
			break
		}
		n = p
	}
	path := make([]int, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path, true
}

// Chains enumerates every distinct path from the node up to a root (a
// table with no outgoing extension edge). Each chain lists ancestor
// indexes in walk order, excluding the starting node. The walk keeps a
// per-path visited set, so cyclic graphs terminate with the cyclic suffix
// truncated.
func (g *ExtensionGraph) Chains(i int) [][]int {
	var chains [][]int
	onPath := map[int]bool{i: true}

	var walk func(node int, chain []int)
	walk = func(node int, chain []int) {
		extended := false
		for _, e := range g.parents[node] {
			if onPath[e.To] {
				continue
			}
			onPath[e.To] = true
			walk(e.To, append(chain, e.To))
			onPath[e.To] = false
			extended = true
		}
		if !extended {
			chains = append(chains, append([]int(nil), chain...))
		}
	}

	walk(i, nil)
	return chains
}

func sameOrderedColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
