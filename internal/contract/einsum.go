package contract

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/born-ml/bsparse/internal/bcoo"
	"github.com/born-ml/bsparse/internal/options"
	"github.com/born-ml/bsparse/internal/parallel"
	"github.com/born-ml/bsparse/internal/tensor"
)

// operandIndex buckets the stored blocks of one operand by their block
// indices on the labels already bound by earlier operands.
type operandIndex struct {
	labels  []int // label position per axis
	bound   []int // axes whose label appears in an earlier operand
	strides []int // ravel strides over the bound axes
	buckets map[int][]int
}

// Einsum evaluates an Einstein summation over block-sparse operands.
//
// Labels are single letters; "ij,jk->ik" is a matrix product and "ij,jk"
// its implicit form. A label may repeat inside one operand (diagonal). Every
// label must have the same extent and block extent wherever it appears.
//
// Operands are joined one at a time on the labels they share with earlier
// operands. Each complete tuple of stored blocks is contracted by a dense
// einsum into the output block addressed by its output-label block indices.
//
// Example:
//
//	// reconstruct x from its SVD factors
//	x, err := contract.Einsum("ij,jk,kl->il", u, s, vt)
func Einsum[T tensor.Numeric](expr string, operands []*bcoo.Tensor[T], opts ...options.Option) (*bcoo.Tensor[T], error) {
	o := options.Apply(opts...)
	start := time.Now()

	s, err := tensor.ParseSubscripts(expr, len(operands))
	if err != nil {
		return nil, fmt.Errorf("einsum: %w", err)
	}
	shapes := make([]tensor.Shape, len(operands))
	blockShapes := make([]tensor.Shape, len(operands))
	outers := make([]tensor.Shape, len(operands))
	for i, op := range operands {
		if op.Ndim() != len(s.Inputs[i]) {
			return nil, fmt.Errorf("einsum: operand %d has rank %d but %d labels in %q: %w",
				i, op.Ndim(), len(s.Inputs[i]), expr, bcoo.ErrInvalidSubscripts)
		}
		shapes[i], blockShapes[i], outers[i] = op.Shape(), op.BlockShape(), op.OuterShape()
	}
	extents, err := s.Extents(shapes)
	if err != nil {
		return nil, preconditionErr(err)
	}
	blockExtents, err := s.Extents(blockShapes)
	if err != nil {
		return nil, preconditionErr(err)
	}
	outerExtents, err := s.Extents(outers)
	if err != nil {
		return nil, preconditionErr(err)
	}

	shape := s.OutputShape(extents)
	blockShape := s.OutputShape(blockExtents)
	outer := s.OutputShape(outerExtents)
	outStrides := outer.ComputeStrides()

	labels := s.Labels()
	pos := make(map[byte]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	outPos := make([]int, len(s.Output))
	for i, l := range s.Output {
		outPos[i] = pos[l]
	}

	indexes := buildIndexes(s, operands, pos, outerExtents)

	// Depth-first join. assign[p] is the block index bound to label p.
	groups := make(map[int][][]int)
	assign := make([]int, len(labels))
	for i := range assign {
		assign[i] = -1
	}
	chosen := make([]int, len(operands))
	outCoord := make([]int, len(outPos))
	matches := 0

	var join func(k int)
	join = func(k int) {
		if k == len(operands) {
			for i, p := range outPos {
				outCoord[i] = assign[p]
			}
			key := tensor.Ravel(outCoord, outStrides)
			groups[key] = append(groups[key], slices.Clone(chosen))
			matches++
			return
		}
		ix := indexes[k]
		bucket := 0
		for i, axis := range ix.bound {
			bucket += assign[ix.labels[axis]] * ix.strides[i]
		}
		for _, b := range ix.buckets[bucket] {
			coord := operands[k].Coord(b)
			var set []int
			ok := true
			for axis, p := range ix.labels {
				switch assign[p] {
				case -1:
					assign[p] = coord[axis]
					set = append(set, p)
				case coord[axis]:
				default:
					ok = false
				}
				if !ok {
					break
				}
			}
			if ok {
				chosen[k] = b
				join(k + 1)
			}
			for _, p := range set {
				assign[p] = -1
			}
		}
	}
	join(0)

	keys := make([]int, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	results := make([]*tensor.Dense[T], len(keys))
	parallel.For(len(keys), func(idx int) {
		out := tensor.Zeros[T](blockShape)
		blocks := make([]*tensor.Dense[T], len(operands))
		for _, tuple := range groups[keys[idx]] {
			for k, b := range tuple {
				blocks[k] = operands[k].RawBlock(b)
			}
			tensor.EinsumAccumulate(s, out, blocks...)
		}
		results[idx] = out
	}, o.Parallel)

	blocks := make(map[int]*tensor.Dense[T], len(keys))
	for idx, key := range keys {
		blocks[key] = results[idx]
	}
	o.Logger.WithOp("einsum").LogContraction(matches, len(blocks), time.Since(start))
	return bcoo.Assemble(shape, blockShape, blocks)
}

// buildIndexes prepares, per operand, the bucketing of its stored blocks by
// the block indices of labels bound by earlier operands.
func buildIndexes[T tensor.Numeric](s *tensor.Subscripts, operands []*bcoo.Tensor[T],
	pos map[byte]int, outerExtents map[byte]int,
) []operandIndex {
	seen := make(map[byte]bool)
	indexes := make([]operandIndex, len(operands))
	for k, in := range s.Inputs {
		ix := operandIndex{labels: make([]int, len(in)), buckets: make(map[int][]int)}
		var boundShape tensor.Shape
		for axis, l := range in {
			ix.labels[axis] = pos[l]
			if seen[l] {
				ix.bound = append(ix.bound, axis)
				boundShape = append(boundShape, outerExtents[l])
			}
		}
		ix.strides = boundShape.ComputeStrides()
		for b := range operands[k].BlockNNZ() {
			coord := operands[k].Coord(b)
			bucket := 0
			for i, axis := range ix.bound {
				bucket += coord[axis] * ix.strides[i]
			}
			ix.buckets[bucket] = append(ix.buckets[bucket], b)
		}
		for _, l := range in {
			seen[l] = true
		}
		indexes[k] = ix
	}
	return indexes
}

func preconditionErr(err error) error {
	if errors.Is(err, tensor.ErrShapeMismatch) {
		return fmt.Errorf("einsum: %w: %w", bcoo.ErrPrecondition, err)
	}
	return fmt.Errorf("einsum: %w", err)
}
