// Package cluster finds connected components of the block sparsity pattern of
// rank-2 block-sparse tensors.
//
// Every stored block (r, c) is an edge between block row r and block column
// c. Components of that graph can be factorized independently: no stored
// block connects two different components.
package cluster

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/born-ml/bsparse/internal/bcoo"
	"github.com/born-ml/bsparse/internal/tensor"
)

// Bicluster is one connected component of the row/column graph. Rows and Cols
// hold sorted block indices; either may be empty for isolated rows or columns.
type Bicluster struct {
	Rows []int
	Cols []int
}

// Size returns the number of block rows plus block columns in the component.
func (b Bicluster) Size() int { return len(b.Rows) + len(b.Cols) }

func checkCoords(coords [][]int, outerShape tensor.Shape) error {
	if len(outerShape) != 2 {
		return fmt.Errorf("clusters: block grid %v is not rank 2: %w", []int(outerShape), bcoo.ErrShapeMismatch)
	}
	for _, c := range coords {
		if len(c) != 2 {
			return fmt.Errorf("clusters: coord %v is not rank 2: %w", c, bcoo.ErrShapeMismatch)
		}
		if c[0] < 0 || c[0] >= outerShape[0] || c[1] < 0 || c[1] >= outerShape[1] {
			return fmt.Errorf("clusters: coord %v outside block grid %v: %w", c, []int(outerShape), bcoo.ErrIndexRange)
		}
	}
	return nil
}

// components groups ids [0, n) by root. The result is ordered by the
// smallest member of each component.
func components(ds *disjointSet, n int) []*roaring.Bitmap {
	byRoot := make(map[int]int)
	var out []*roaring.Bitmap
	for id := range n {
		root := ds.find(id)
		pos, ok := byRoot[root]
		if !ok {
			pos = len(out)
			byRoot[root] = pos
			out = append(out, roaring.New())
		}
		out[pos].Add(uint32(id))
	}
	return out
}

func toInts(b *roaring.Bitmap, offset int) []int {
	ids := b.ToArray()
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id) - offset
	}
	return out
}

// GetClustersNoSym partitions block rows and block columns of a rank-2 block
// grid into connected components. Rows and columns are distinct nodes: row r
// is node r, column c is node rows+c.
//
// Every row and every column appears in exactly one Bicluster. Clusters are
// ordered by their smallest row, then by smallest column for row-less ones.
func GetClustersNoSym(coords [][]int, outerShape tensor.Shape) ([]Bicluster, error) {
	if err := checkCoords(coords, outerShape); err != nil {
		return nil, err
	}
	rows, cols := outerShape[0], outerShape[1]
	ds := newDisjointSet(rows + cols)
	for _, c := range coords {
		ds.union(c[0], rows+c[1])
	}

	out := make([]Bicluster, 0)
	for _, members := range components(ds, rows+cols) {
		rowSet := roaring.New()
		colSet := roaring.New()
		for _, id := range members.ToArray() {
			if int(id) < rows {
				rowSet.Add(id)
			} else {
				colSet.Add(id)
			}
		}
		out = append(out, Bicluster{Rows: toInts(rowSet, 0), Cols: toInts(colSet, rows)})
	}
	return out, nil
}

// GetClusters partitions the shared row/column index space of a square block
// grid into connected components. The block pattern is assumed symmetric;
// every stored (r, c) joins r and c regardless.
//
// Every index appears in exactly one cluster; isolated indices form
// singletons. Clusters are sorted and ordered by their smallest member.
func GetClusters(coords [][]int, outerShape tensor.Shape) ([][]int, error) {
	if err := checkCoords(coords, outerShape); err != nil {
		return nil, err
	}
	if outerShape[0] != outerShape[1] {
		return nil, fmt.Errorf("clusters: block grid %v is not square: %w", []int(outerShape), bcoo.ErrPrecondition)
	}
	n := outerShape[0]
	ds := newDisjointSet(n)
	for _, c := range coords {
		ds.union(c[0], c[1])
	}

	comps := components(ds, n)
	out := make([][]int, len(comps))
	for i, members := range comps {
		out[i] = toInts(members, 0)
	}
	return out, nil
}

// Of returns the symmetric clusters of a rank-2 tensor's block pattern.
func Of[T tensor.Numeric](x *bcoo.Tensor[T]) ([][]int, error) {
	return GetClusters(x.Coords(), x.OuterShape())
}

// OfNoSym returns the row/column components of a rank-2 tensor's block pattern.
func OfNoSym[T tensor.Numeric](x *bcoo.Tensor[T]) ([]Bicluster, error) {
	return GetClustersNoSym(x.Coords(), x.OuterShape())
}

// Membership maps every index to the position of its cluster in clusters.
func Membership(clusters [][]int, n int) []int {
	owner := make([]int, n)
	for i, c := range clusters {
		for _, idx := range c {
			owner[idx] = i
		}
	}
	return owner
}
