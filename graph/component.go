package graph

// Graph is an adjacency list over nodes 0..n-1. Edges added to an
// undirected graph are stored in both directions.
type Graph struct {
	adj      [][]int
	directed bool
}

func NewGraph(n int) *Graph {
	return &Graph{adj: make([][]int, n)}
}

func NewDigraph(n int) *Graph {
	return &Graph{adj: make([][]int, n), directed: true}
}

func (g *Graph) Len() int {
	return len(g.adj)
}

func (g *Graph) AddEdge(u, v int) {
	g.adj[u] = append(g.adj[u], v)
	if !g.directed && u != v {
		g.adj[v] = append(g.adj[v], u)
	}
}

// CountAndGetConnectedComponents numbers components from 1 in order of
// their lowest node.
func (g *Graph) CountAndGetConnectedComponents() (int, map[int][]int) {
	n := len(g.adj)
	visited := make([]bool, n)
	componentMap := make(map[int][]int)

	var dfs func(int, int)
	dfs = func(v, component int) {
		visited[v] = true
		componentMap[component] = append(componentMap[component], v)
		for _, w := range g.adj[v] {
			if !visited[w] {
				dfs(w, component)
			}
		}
	}

	count := 0
	for i := 0; i < n; i++ {
		if !visited[i] {
			count++
			dfs(i, count)
		}
	}

	return count, componentMap
}

// StronglyConnectedComponents returns the SCCs in reverse topological
// order (Tarjan).
func (g *Graph) StronglyConnectedComponents() [][]int {
	n := len(g.adj)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	var sccs [][]int
	counter := 0

	var visit func(int)
	visit = func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.adj[v] {
			if index[w] < 0 {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for v := 0; v < n; v++ {
		if index[v] < 0 {
			visit(v)
		}
	}
	return sccs
}

// Cyclic returns the nodes lying on some cycle, self-loops included.
func (g *Graph) Cyclic() []int {
	var nodes []int
	for _, scc := range g.StronglyConnectedComponents() {
		if len(scc) > 1 {
			nodes = append(nodes, scc...)
			continue
		}
		v := scc[0]
		for _, w := range g.adj[v] {
			if w == v {
				nodes = append(nodes, v)
				break
			}
		}
	}
	return nodes
}
