// Package digraph is a small arena-indexed directed graph.  Nodes are dense
// integer indices; callers map their own node identities onto indices.
package digraph

// Digraph is a directed graph.
type Digraph struct {
	nodes []graphNode
}

type graphNode struct {
	out []int
	in  []int
}

func New(numNodes int) *Digraph {
	return &Digraph{
		nodes: make([]graphNode, numNodes),
	}
}

// AddNode appends a new node and returns its index.
func (g *Digraph) AddNode() int {
	g.nodes = append(g.nodes, graphNode{})
	return len(g.nodes) - 1
}

func (g *Digraph) Len() int {
	return len(g.nodes)
}

// AddEdge adds a directed edge from node i to j.
func (g *Digraph) AddEdge(i int, j int) {
	g.nodes[i].out = append(g.nodes[i].out, j)
	g.nodes[j].in = append(g.nodes[j].in, i)
}

// Successors returns the nodes reachable from i via one edge, in insertion
// order.
func (g *Digraph) Successors(i int) []int {
	return g.nodes[i].out
}

// Predecessors returns the nodes with an edge into i, in insertion order.
func (g *Digraph) Predecessors(i int) []int {
	return g.nodes[i].in
}

// FirstSuccessor returns the target of i's earliest outgoing edge.
func (g *Digraph) FirstSuccessor(i int) (int, bool) {
	if len(g.nodes[i].out) == 0 {
		return 0, false
	}
	return g.nodes[i].out[0], true
}

// FirstPredecessor returns the source of i's earliest incoming edge.
func (g *Digraph) FirstPredecessor(i int) (int, bool) {
	if len(g.nodes[i].in) == 0 {
		return 0, false
	}
	return g.nodes[i].in[0], true
}

// SCCs computes the strongly connected components of the graph using
// Kosaraju's algorithm.  The result is deterministic for a given sequence of
// AddNode / AddEdge calls.
func (g *Digraph) SCCs() [][]int {
	visited := make([]bool, len(g.nodes))
	var postOrder []int
	for i := range g.nodes {
		postOrder = g.visit(i, visited, postOrder, false)
	}

	for i := range visited {
		visited[i] = false
	}

	var sccs [][]int
	for i := len(postOrder) - 1; i >= 0; i-- {
		if !visited[postOrder[i]] {
			sccs = append(sccs, g.visit(postOrder[i], visited, nil, true))
		}
	}
	return sccs
}

// PostOrder traverses the graph with depth first search and returns the
// post-order traversal numbers.
func (g *Digraph) PostOrder() []int {
	visited := make([]bool, len(g.nodes))
	var postOrder []int
	for i := range g.nodes {
		postOrder = g.visit(i, visited, postOrder, false)
	}
	return postOrder
}

func (g *Digraph) visit(
	node int,
	visited []bool,
	postOrder []int,
	reverse bool,
) []int {
	if visited[node] {
		return postOrder
	}
	visited[node] = true

	edges := g.nodes[node].out
	if reverse {
		edges = g.nodes[node].in
	}
	for _, edge := range edges {
		postOrder = g.visit(edge, visited, postOrder, reverse)
	}
	return append(postOrder, node)
}
