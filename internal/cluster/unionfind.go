package cluster

// disjointSet is a union-find forest over ids [0, n) with path compression
// and union by rank.
type disjointSet struct {
	parent []int
	rank   []uint8
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n), rank: make([]uint8, n)}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

// find returns the root of u, compressing the path on the way.
func (ds *disjointSet) find(u int) int {
	root := u
	for ds.parent[root] != root {
		root = ds.parent[root]
	}
	for ds.parent[u] != root {
		next := ds.parent[u]
		ds.parent[u] = root
		u = next
	}
	return root
}

func (ds *disjointSet) union(u, v int) {
	ru, rv := ds.find(u), ds.find(v)
	if ru == rv {
		return
	}
	switch {
	case ds.rank[ru] < ds.rank[rv]:
		ds.parent[ru] = rv
	case ds.rank[ru] > ds.rank[rv]:
		ds.parent[rv] = ru
	default:
		ds.parent[rv] = ru
		ds.rank[ru]++
	}
}
