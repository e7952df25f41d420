package rewrite

import (
	"github.com/cp-hybrid/presolve/internal/core/context"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
	"github.com/cp-hybrid/presolve/pkg/model"
)

// cartesianSizeCap bounds how large a current-domain Cartesian product
// this rewriter is willing to enumerate (for the full-coverage check
// and the negated-table switch); beyond it the corresponding
// optimization is simply skipped rather than attempted approximately.
const cartesianSizeCap = 4096

// cartesianSize returns the product of each column's domain
// cardinality, or (0, false) once it would exceed cartesianSizeCap.
func cartesianSize(ctx *context.Context, cols []int32) (int64, bool) {
	total := int64(1)
	for _, col := range cols {
		d := ctx.DomainOf(col)
		count := int64(0)
		for _, iv := range d.Intervals() {
			count += iv.Max - iv.Min + 1
		}
		total *= count
		if total > cartesianSizeCap {
			return 0, false
		}
	}
	return total, true
}

func enumerateCartesian(ctx *context.Context, cols []int32) [][]int64 {
	if len(cols) == 0 {
		return [][]int64{{}}
	}
	rest := enumerateCartesian(ctx, cols[1:])
	var out [][]int64
	for _, iv := range ctx.DomainOf(cols[0]).Intervals() {
		for v := iv.Min; v <= iv.Max; v++ {
			for _, tail := range rest {
				row := append([]int64{v}, tail...)
				out = append(out, row)
			}
		}
	}
	return out
}

func tupleSeen(tuples [][]int64, row []int64) bool {
	for _, t := range tuples {
		match := true
		for i := range row {
			if t[i] != row[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// rewriteTable implements spec §4.2's table rewriter: row filtering
// against current domains, column-wise domain intersection, deletion
// once redundant, and switching to the negated form when that is
// materially smaller. The negated-table machinery itself (this
// rewriter never re-filters an already-negated table row-wise, since a
// negated table's rows are the *forbidden* tuples and dropping one
// because it now lies outside the domain would silently widen what the
// constraint allows) is left untouched once switched.
func rewriteTable(ctx *context.Context, idx int32, c *model.Table) (changed, rerun bool) {
	if c.Negated {
		return false, false
	}

	kept := c.Tuples[:0:0]
	for _, row := range c.Tuples {
		ok := true
		for i, v := range row {
			if !ctx.DomainOf(c.Cols[i]).Contains(v) {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, row)
		} else {
			changed = true
		}
	}
	c.Tuples = kept

	if len(kept) == 0 {
		ctx.SetUnsat()
		ctx.IncrementStat("table: no surviving row (unsat)")
		return true, false
	}

	for i, col := range c.Cols {
		seen := make(map[int64]struct{})
		for _, row := range kept {
			seen[row[i]] = struct{}{}
		}
		vals := make([]int64, 0, len(seen))
		for v := range seen {
			vals = append(vals, v)
		}
		if ctx.IntersectDomain(col, intervaldomain.FromValues(vals)) {
			changed = true
		}
	}

	if len(c.Cols) <= 1 {
		ctx.ClearConstraint(idx)
		ctx.IncrementStat("table: single column, deleted")
		return true, false
	}

	if total, ok := cartesianSize(ctx, c.Cols); ok {
		if int64(len(kept)) >= total {
			ctx.ClearConstraint(idx)
			ctx.IncrementStat("table: covers full cartesian product, deleted")
			return true, false
		}
		complementSize := total - int64(len(kept))
		if !c.Negated && complementSize*10 < total*3 {
			var negRows [][]int64
			for _, row := range enumerateCartesian(ctx, c.Cols) {
				if !tupleSeen(kept, row) {
					negRows = append(negRows, row)
				}
			}
			c.Tuples = negRows
			c.Negated = true
			changed = true
			ctx.IncrementStat("table: switched to negated form")
		}
	}

	return changed, false
}
