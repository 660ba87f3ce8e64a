package bcoo

import (
	"fmt"

	"github.com/born-ml/bsparse/internal/tensor"
)

type selectorKind int

const (
	selectAll selectorKind = iota
	selectIndex
	selectRange
	selectEllipsis
)

// Selector picks a range of block indices along one axis. See Index, Range,
// All and Ellipsis.
type Selector struct {
	kind   selectorKind
	lo, hi int
}

// Index selects the single block index i. Negative values count from the end.
// The axis is kept with a block-grid extent of 1.
func Index(i int) Selector { return Selector{kind: selectIndex, lo: i} }

// Range selects block indices in [lo, hi).
func Range(lo, hi int) Selector { return Selector{kind: selectRange, lo: lo, hi: hi} }

// All selects every block index along the axis.
func All() Selector { return Selector{kind: selectAll} }

// Ellipsis stands for as many All selectors as needed to cover the remaining
// axes. At most one Ellipsis may appear.
func Ellipsis() Selector { return Selector{kind: selectEllipsis} }

func (s Selector) String() string {
	switch s.kind {
	case selectIndex:
		return fmt.Sprintf("%d", s.lo)
	case selectRange:
		return fmt.Sprintf("%d:%d", s.lo, s.hi)
	case selectEllipsis:
		return "..."
	default:
		return ":"
	}
}

// expandSelectors returns one non-ellipsis selector per axis.
func expandSelectors(sel []Selector, ndim int) ([]Selector, error) {
	ellipsis := -1
	for i, s := range sel {
		if s.kind != selectEllipsis {
			continue
		}
		if ellipsis >= 0 {
			return nil, fmt.Errorf("getblock: more than one ellipsis: %w", ErrIndexRange)
		}
		ellipsis = i
	}

	explicit := len(sel)
	if ellipsis >= 0 {
		explicit--
	}
	if explicit > ndim {
		return nil, fmt.Errorf("getblock: %d selectors for a rank-%d tensor: %w", explicit, ndim, ErrIndexRange)
	}

	out := make([]Selector, 0, ndim)
	for i, s := range sel {
		if i == ellipsis {
			for range ndim - explicit {
				out = append(out, All())
			}
			continue
		}
		out = append(out, s)
	}
	for len(out) < ndim {
		out = append(out, All())
	}
	return out, nil
}

// GetBlock returns the sub-tensor holding the selected block-index ranges,
// renumbered to start at zero. The rank is preserved: Index keeps its axis
// with a single block.
//
// Example:
//
//	// shape [4 9 16] blocks [2 3 4]: one block of shape [2 3 4]
//	y, err := x.GetBlock(bcoo.Index(1), bcoo.Index(1), bcoo.Index(1), bcoo.Ellipsis())
func (t *Tensor[T]) GetBlock(sel ...Selector) (*Tensor[T], error) {
	ndim := t.Ndim()
	full, err := expandSelectors(sel, ndim)
	if err != nil {
		return nil, err
	}

	lo := make([]int, ndim)
	hi := make([]int, ndim)
	for axis, s := range full {
		n := t.outerShape[axis]
		switch s.kind {
		case selectAll:
			lo[axis], hi[axis] = 0, n
		case selectIndex:
			i, ok := tensor.NormalizeAxis(s.lo, n)
			if !ok {
				return nil, fmt.Errorf("getblock: index %d outside [0, %d) on axis %d: %w", s.lo, n, axis, ErrIndexRange)
			}
			lo[axis], hi[axis] = i, i+1
		case selectRange:
			if s.lo < 0 || s.hi < s.lo || s.hi > n {
				return nil, fmt.Errorf("getblock: range %v outside [0, %d] on axis %d: %w", s, n, axis, ErrIndexRange)
			}
			lo[axis], hi[axis] = s.lo, s.hi
		}
	}

	outer := make(tensor.Shape, ndim)
	shape := make(tensor.Shape, ndim)
	for axis := range outer {
		outer[axis] = hi[axis] - lo[axis]
		shape[axis] = outer[axis] * t.blockShape[axis]
	}
	strides := outer.ComputeStrides()

	var keys []int
	var blocks []*tensor.Dense[T]
	coord := make([]int, ndim)
	for i, k := range t.keys {
		tensor.Unravel(k, t.outerStrides, coord)
		inside := true
		for axis, c := range coord {
			if c < lo[axis] || c >= hi[axis] {
				inside = false
				break
			}
			coord[axis] = c - lo[axis]
		}
		if inside {
			keys = append(keys, tensor.Ravel(coord, strides))
			blocks = append(blocks, t.blocks[i].Clone())
		}
	}
	// Row-major order is kept by a sub-box, so keys stay ascending.
	return newSorted(shape, t.blockShape.Clone(), keys, blocks), nil
}
