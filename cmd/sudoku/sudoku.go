// Package sudoku exercises the presolve core's integer-domain layer
// end to end: a 9x9 board of int variables (domain [1,9]) with one
// all-different unit per row, column, and 3x3 box, decomposed into
// pairwise negated model.Table constraints the way a classic
// all-different-via-table encoding always is. internal/core/rewrite's
// table rewriter leaves negated tables as they are, so every cell is
// handed to internal/core/encoder to become a Boolean literal per
// cell/value pair, and internal/core/satlayer.Solver finishes
// deciding it the same way it settles a raw DIMACS instance.
package sudoku

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/internal/core/encoder"
	"github.com/cp-hybrid/presolve/internal/core/fixpoint"
	"github.com/cp-hybrid/presolve/internal/core/satlayer"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

const (
	size    = 9
	boxSize = 3
)

func cellIndex(row, col int) int32 { return int32(row*size + col) }

// units returns every row, column, and 3x3 box as a slice of its
// size cell indices -- the one all-different grouping this command
// enforces, shared by the domain-level model build and the SAT-side
// clause synthesis below so both walk exactly the same cell groups.
func units() [][]int32 {
	var out [][]int32
	for row := 0; row < size; row++ {
		cells := make([]int32, size)
		for col := 0; col < size; col++ {
			cells[col] = cellIndex(row, col)
		}
		out = append(out, cells)
	}
	for col := 0; col < size; col++ {
		cells := make([]int32, size)
		for row := 0; row < size; row++ {
			cells[row] = cellIndex(row, col)
		}
		out = append(out, cells)
	}
	for boxRow := 0; boxRow < size; boxRow += boxSize {
		for boxCol := 0; boxCol < size; boxCol += boxSize {
			var cells []int32
			for dr := 0; dr < boxSize; dr++ {
				for dc := 0; dc < boxSize; dc++ {
					cells = append(cells, cellIndex(boxRow+dr, boxCol+dc))
				}
			}
			out = append(out, cells)
		}
	}
	return out
}

// buildModel returns the size*size cell model: one [1,size] variable
// per cell and a negated two-column table forbidding equal values for
// every pair of cells sharing a unit.
func buildModel() *model.Model {
	m := model.NewModel()
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			m.AddVariable(fmt.Sprintf("r%dc%d", row, col), intervaldomain.Range(1, size))
		}
	}

	for _, cells := range units() {
		for i := 0; i < len(cells); i++ {
			for j := i + 1; j < len(cells); j++ {
				m.AddConstraint(allDifferentPair(cells[i], cells[j]))
			}
		}
	}

	return m
}

// allDifferentPair forbids cells a and b from taking on the same
// value: one forbidden (v, v) tuple per board value.
func allDifferentPair(a, b int32) *model.Table {
	tuples := make([][]int64, size)
	for v := 1; v <= size; v++ {
		tuples[v-1] = []int64{int64(v), int64(v)}
	}
	return &model.Table{Cols: []int32{a, b}, Tuples: tuples, Negated: true}
}

// Solve runs the board model through the fixpoint driver, encodes
// every cell's remaining values as Booleans, and lets the SAT layer
// pick a full assignment.
func Solve() ([size][size]int64, error) {
	var board [size][size]int64

	m := buildModel()
	ctx := context.New(m)
	fixpoint.Run(ctx)
	if ctx.IsUnsat() {
		return board, fmt.Errorf("no solution found")
	}

	enc := encoder.New(ctx)
	numCells := ctx.NumVariables()
	for v := int32(0); v < numCells; v++ {
		enc.FullyEncodeVariable(v)
	}

	// The table rewriter leaves the negated forbidden-pair tables
	// untouched, and the SAT layer does not read tables, so every pair
	// of cells that are not both fixed gets one Boolean not-both-equal
	// clause per value both cells still allow. Randomizing the
	// clause order (rather than the board itself) is enough to make
	// gini settle on a different completion of the same partially
	// propagated board from one run to the next.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	pairs := allPairs()
	rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })

	for _, p := range pairs {
		da, db := ctx.DomainOf(p[0]), ctx.DomainOf(p[1])
		if da.IsFixed() && db.IsFixed() {
			continue
		}
		for v := int64(1); v <= size; v++ {
			if !da.Contains(v) || !db.Contains(v) {
				continue
			}
			eqA := enc.EqualityLiteral(p[0], v)
			eqB := enc.EqualityLiteral(p[1], v)
			ctx.AddWorkingConstraint(&model.BoolOr{Literals: []model.VarRef{model.Negate(eqA), model.Negate(eqB)}})
		}
	}

	s := satlayer.NewSolver()
	s.Teach(ctx.Working.Constraints)
	if !s.Solve(nil) {
		return board, fmt.Errorf("no solution found")
	}

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			v := cellIndex(row, col)
			board[row][col] = decodeValue(ctx.DomainOf(v), enc, s, v)
		}
	}
	return board, nil
}

// decodeValue reads back the value the SAT layer picked for cell v by
// finding the largest domain value whose ">= value" ge-literal came
// back true; since ge-literals are monotonic in a value's rank within
// the domain, that is exactly the assigned value.
func decodeValue(d intervaldomain.Domain, enc *encoder.Encoder, s *satlayer.Solver, v int32) int64 {
	val := d.Min()
	for _, iv := range d.Intervals() {
		for k := iv.Min; k <= iv.Max; k++ {
			if k == d.Min() {
				continue
			}
			if lit, ok := enc.AssociatedLiteral(v, k); ok && s.Value(lit) {
				val = k
			}
		}
	}
	return val
}

// allPairs enumerates every cell pair sharing a unit, deduplicated,
// for the SAT-side not-both-equal encoding above.
func allPairs() [][2]int32 {
	seen := make(map[[2]int32]struct{})
	var out [][2]int32
	for _, cells := range units() {
		for i := 0; i < len(cells); i++ {
			for j := i + 1; j < len(cells); j++ {
				key := [2]int32{cells[i], cells[j]}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, key)
			}
		}
	}
	return out
}
