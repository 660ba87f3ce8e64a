package tensor

import (
	"fmt"
	"slices"
	"strings"
)

// Subscripts is a parsed Einstein summation expression such as "ij,jk->ik".
//
// Labels are single ASCII letters. Inputs[i] labels the axes of operand i and
// Output labels the result axes. Labels missing from Output are summed over.
type Subscripts struct {
	Inputs [][]byte
	Output []byte
}

// ParseSubscripts parses an einsum expression for nops operands.
//
// Both the explicit form ("ij,jk->ik") and the implicit form ("ij,jk") are
// accepted. In the implicit form the output holds every label that appears
// exactly once, in alphabetical order. Spaces are ignored. A label may repeat
// inside one operand (diagonal) but not inside the output.
func ParseSubscripts(expr string, nops int) (*Subscripts, error) {
	expr = strings.ReplaceAll(expr, " ", "")
	lhs, rhs, explicit := strings.Cut(expr, "->")
	if explicit && strings.Contains(rhs, "->") {
		return nil, fmt.Errorf("%w: %q has more than one \"->\"", ErrInvalidSubscripts, expr)
	}

	parts := strings.Split(lhs, ",")
	if len(parts) != nops {
		return nil, fmt.Errorf("%w: %q describes %d operands, got %d",
			ErrInvalidSubscripts, expr, len(parts), nops)
	}

	s := &Subscripts{Inputs: make([][]byte, nops)}
	counts := make(map[byte]int)
	for i, p := range parts {
		labels, err := parseLabels(p)
		if err != nil {
			return nil, fmt.Errorf("%w: operand %d of %q: %w", ErrInvalidSubscripts, i, expr, err)
		}
		s.Inputs[i] = labels
		for _, l := range labels {
			counts[l]++
		}
	}

	if explicit {
		out, err := parseLabels(rhs)
		if err != nil {
			return nil, fmt.Errorf("%w: output of %q: %w", ErrInvalidSubscripts, expr, err)
		}
		for i, l := range out {
			if slices.Contains(out[:i], l) {
				return nil, fmt.Errorf("%w: output label %q repeated in %q", ErrInvalidSubscripts, l, expr)
			}
			if counts[l] == 0 {
				return nil, fmt.Errorf("%w: output label %q does not appear in any operand of %q",
					ErrInvalidSubscripts, l, expr)
			}
		}
		s.Output = out
		return s, nil
	}

	for l, n := range counts {
		if n == 1 {
			s.Output = append(s.Output, l)
		}
	}
	slices.Sort(s.Output)
	return s, nil
}

func parseLabels(p string) ([]byte, error) {
	labels := make([]byte, 0, len(p))
	for i := 0; i < len(p); i++ {
		c := p[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return nil, fmt.Errorf("invalid label %q", c)
		}
		labels = append(labels, c)
	}
	return labels, nil
}

// Labels returns every distinct label, output labels first, then summed
// labels in order of first appearance.
func (s *Subscripts) Labels() []byte {
	labels := slices.Clone(s.Output)
	for _, in := range s.Inputs {
		for _, l := range in {
			if !slices.Contains(labels, l) {
				labels = append(labels, l)
			}
		}
	}
	return labels
}

// Extents checks that every label has a single extent across the given
// operand shapes and returns the extent per label.
func (s *Subscripts) Extents(shapes []Shape) (map[byte]int, error) {
	if len(shapes) != len(s.Inputs) {
		return nil, fmt.Errorf("%w: %d shapes for %d operands", ErrShapeMismatch, len(shapes), len(s.Inputs))
	}
	extents := make(map[byte]int)
	for i, in := range s.Inputs {
		if len(in) != len(shapes[i]) {
			return nil, fmt.Errorf("%w: operand %d has %d axes but %d labels",
				ErrShapeMismatch, i, len(shapes[i]), len(in))
		}
		for axis, l := range in {
			dim := shapes[i][axis]
			if prev, ok := extents[l]; ok && prev != dim {
				return nil, fmt.Errorf("%w: label %q has extent %d and %d", ErrShapeMismatch, l, prev, dim)
			}
			extents[l] = dim
		}
	}
	return extents, nil
}

// OutputShape returns the result shape for the given label extents.
func (s *Subscripts) OutputShape(extents map[byte]int) Shape {
	out := make(Shape, len(s.Output))
	for i, l := range s.Output {
		out[i] = extents[l]
	}
	return out
}

// Einsum evaluates the expression on dense operands.
//
// Example:
//
//	c, err := tensor.Einsum("ij,jk->ik", a, b) // matrix product
func Einsum[T Numeric](expr string, operands ...*Dense[T]) (*Dense[T], error) {
	s, err := ParseSubscripts(expr, len(operands))
	if err != nil {
		return nil, err
	}
	shapes := make([]Shape, len(operands))
	for i, op := range operands {
		shapes[i] = op.shape
	}
	extents, err := s.Extents(shapes)
	if err != nil {
		return nil, err
	}
	out := Zeros[T](s.OutputShape(extents))
	EinsumAccumulate(s, out, operands...)
	return out, nil
}

// EinsumAccumulate adds the value of the expression into out.
// Shapes must already agree with the subscripts (see Extents); panics otherwise.
func EinsumAccumulate[T Numeric](s *Subscripts, out *Dense[T], operands ...*Dense[T]) {
	labels := s.Labels()
	pos := make(map[byte]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}

	extent := make(Shape, len(labels))
	for i, in := range s.Inputs {
		for axis, l := range in {
			extent[pos[l]] = operands[i].shape[axis]
		}
	}
	for i, l := range s.Output {
		if out.shape[i] != extent[pos[l]] {
			panic(fmt.Sprintf("einsum: output shape %v does not match label extents", out.shape))
		}
	}
	if extent.HasZero() {
		return
	}

	// Per-label stride contribution of each operand; repeated labels add up,
	// which walks the diagonal.
	opStrides := make([][]int, len(operands))
	for i, in := range s.Inputs {
		st := make([]int, len(labels))
		for axis, l := range in {
			st[pos[l]] += operands[i].strides[axis]
		}
		opStrides[i] = st
	}
	outStrides := make([]int, len(labels))
	for axis, l := range s.Output {
		outStrides[pos[l]] += out.strides[axis]
	}

	idx := make([]int, len(labels))
	for {
		var prod T = 1
		for i, op := range operands {
			prod *= op.data[Ravel(idx, opStrides[i])]
			if prod == 0 {
				break
			}
		}
		if prod != 0 {
			out.data[Ravel(idx, outStrides)] += prod
		}
		if !nextIndex(idx, extent) {
			return
		}
	}
}
