// Package intervaldomain implements the sorted-disjoint-interval value
// sets used to represent the finite domain of an integer variable
// throughout the presolve core.
package intervaldomain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// MaxComplexity bounds the number of intervals a Domain may carry after
// an operation that can fragment it (addition, multiplication). Once a
// result would exceed this many intervals it is replaced by its hull.
const MaxComplexity = 100

// Interval is a closed integer range [Min, Max].
type Interval struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

func (iv Interval) size() int64 {
	return iv.Max - iv.Min + 1
}

// Domain is an ordered sequence of pairwise disjoint, non-adjacent
// closed intervals. The zero value is the empty domain.
type Domain struct {
	intervals []Interval
}

// New builds a Domain from arbitrary (possibly overlapping or
// unordered) intervals, normalizing them into canonical form.
func New(intervals ...Interval) Domain {
	return Domain{intervals: normalize(intervals)}
}

// Single returns the domain containing exactly one value.
func Single(v int64) Domain {
	return Domain{intervals: []Interval{{v, v}}}
}

// Range returns the domain [lo, hi].
func Range(lo, hi int64) Domain {
	if lo > hi {
		return Domain{}
	}
	return Domain{intervals: []Interval{{lo, hi}}}
}

// FromValues builds a domain from an explicit, possibly-unsorted list
// of values, matching spec's `from_values`.
func FromValues(values []int64) Domain {
	if len(values) == 0 {
		return Domain{}
	}
	ivs := make([]Interval, len(values))
	for i, v := range values {
		ivs[i] = Interval{v, v}
	}
	return New(ivs...)
}

func normalize(in []Interval) []Interval {
	ivs := make([]Interval, 0, len(in))
	for _, iv := range in {
		if iv.Min <= iv.Max {
			ivs = append(ivs, iv)
		}
	}
	if len(ivs) == 0 {
		return nil
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Min < ivs[j].Min })
	out := make([]Interval, 0, len(ivs))
	cur := ivs[0]
	for _, iv := range ivs[1:] {
		if iv.Min <= cur.Max+1 {
			if iv.Max > cur.Max {
				cur.Max = iv.Max
			}
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	out = append(out, cur)
	return out
}

// Intervals returns the canonical interval list; callers must not
// mutate the returned slice.
func (d Domain) Intervals() []Interval { return d.intervals }

// NumIntervals reports how many disjoint intervals the domain holds.
func (d Domain) NumIntervals() int { return len(d.intervals) }

// IsEmpty reports whether the domain contains no values.
func (d Domain) IsEmpty() bool { return len(d.intervals) == 0 }

// Min returns the domain's lower bound. Callers must not call Min on
// an empty domain.
func (d Domain) Min() int64 { return d.intervals[0].Min }

// Max returns the domain's upper bound. Callers must not call Max on
// an empty domain.
func (d Domain) Max() int64 { return d.intervals[len(d.intervals)-1].Max }

// IsFixed reports whether the domain contains exactly one value.
func (d Domain) IsFixed() bool {
	return len(d.intervals) == 1 && d.intervals[0].Min == d.intervals[0].Max
}

// FixedValue returns the domain's single value; only valid when
// IsFixed is true.
func (d Domain) FixedValue() int64 { return d.intervals[0].Min }

// Contains reports whether v belongs to the domain.
func (d Domain) Contains(v int64) bool {
	i := sort.Search(len(d.intervals), func(i int) bool { return d.intervals[i].Max >= v })
	return i < len(d.intervals) && d.intervals[i].Min <= v
}

// IsIncludedIn reports whether every value of d also belongs to other.
func (d Domain) IsIncludedIn(other Domain) bool {
	for _, iv := range d.intervals {
		lo, hi := iv.Min, iv.Max
		for lo <= hi {
			i := sort.Search(len(other.intervals), func(i int) bool { return other.intervals[i].Max >= lo })
			if i >= len(other.intervals) || other.intervals[i].Min > lo {
				return false
			}
			lo = other.intervals[i].Max + 1
		}
	}
	return true
}

// Equal reports whether d and other contain exactly the same values.
func (d Domain) Equal(other Domain) bool {
	if len(d.intervals) != len(other.intervals) {
		return false
	}
	for i := range d.intervals {
		if d.intervals[i] != other.intervals[i] {
			return false
		}
	}
	return true
}

// Hull returns the smallest single interval covering the domain.
func (d Domain) Hull() Domain {
	if d.IsEmpty() {
		return Domain{}
	}
	return Range(d.Min(), d.Max())
}

func hullIfComplex(ivs []Interval) []Interval {
	if len(ivs) <= MaxComplexity {
		return ivs
	}
	return []Interval{{ivs[0].Min, ivs[len(ivs)-1].Max}}
}

// Intersect returns the value-wise intersection of d and other.
func (d Domain) Intersect(other Domain) Domain {
	var out []Interval
	i, j := 0, 0
	for i < len(d.intervals) && j < len(other.intervals) {
		a, b := d.intervals[i], other.intervals[j]
		lo := a.Min
		if b.Min > lo {
			lo = b.Min
		}
		hi := a.Max
		if b.Max < hi {
			hi = b.Max
		}
		if lo <= hi {
			out = append(out, Interval{lo, hi})
		}
		if a.Max < b.Max {
			i++
		} else {
			j++
		}
	}
	return Domain{intervals: hullIfComplex(out)}
}

// Union returns the value-wise union of d and other.
func (d Domain) Union(other Domain) Domain {
	merged := append(append([]Interval{}, d.intervals...), other.intervals...)
	return Domain{intervals: hullIfComplex(normalize(merged))}
}

// Negate returns {-x : x in d}.
func (d Domain) Negate() Domain {
	out := make([]Interval, len(d.intervals))
	for i, iv := range d.intervals {
		out[len(d.intervals)-1-i] = Interval{-iv.Max, -iv.Min}
	}
	return Domain{intervals: out}
}

// AddElementwise returns {x + y : x in d, y in other}, hulled if the
// chained result would exceed MaxComplexity intervals.
func (d Domain) AddElementwise(other Domain) Domain {
	if d.IsEmpty() || other.IsEmpty() {
		return Domain{}
	}
	var out []Interval
	for _, a := range d.intervals {
		for _, b := range other.intervals {
			out = append(out, Interval{a.Min + b.Min, a.Max + b.Max})
			if len(out) > MaxComplexity*4 {
				return Range(d.Min()+other.Min(), d.Max()+other.Max())
			}
		}
	}
	return Domain{intervals: hullIfComplex(normalize(out))}
}

// AddConstant returns {x + k : x in d}.
func (d Domain) AddConstant(k int64) Domain {
	out := make([]Interval, len(d.intervals))
	for i, iv := range d.intervals {
		out[i] = Interval{iv.Min + k, iv.Max + k}
	}
	return Domain{intervals: out}
}

// ContinuousMultiply returns the hull of {x*k : x in d} when the
// domain is treated as a single continuous range, matching spec's
// `continuous_multiply` (used for quick, possibly loose, bound
// propagation when precise enumeration would be too costly).
func (d Domain) ContinuousMultiply(k int64) Domain {
	if d.IsEmpty() {
		return Domain{}
	}
	return multiplyHull(d.Min(), d.Max(), k)
}

func multiplyHull(lo, hi, k int64) Domain {
	a, b := lo*k, hi*k
	if a > b {
		a, b = b, a
	}
	return Range(a, b)
}

// PreciseMultiply multiplies each interval of d by k separately and
// keeps the hull of each product, so the result keeps d's gaps but
// also holds the non-multiples of k inside each product interval
// (Range(0,3) times -2 is [-6,0]). Past MaxComplexity intervals it
// falls back to ContinuousMultiply.
func (d Domain) PreciseMultiply(k int64) Domain {
	if k == 0 {
		if d.IsEmpty() {
			return Domain{}
		}
		return Single(0)
	}
	if d.IsEmpty() {
		return Domain{}
	}
	var out []Interval
	for _, iv := range d.intervals {
		out = append(out, multiplyHull(iv.Min, iv.Max, k).intervals...)
		if len(out) > MaxComplexity {
			return d.ContinuousMultiply(k)
		}
	}
	return Domain{intervals: normalize(out)}
}

// InverseMultiply returns the set of x such that coeff*x is in d,
// i.e. the domain that, once multiplied by coeff, reproduces exactly
// the subset of d reachable by an integer multiple of coeff.
func (d Domain) InverseMultiply(coeff int64) Domain {
	if coeff == 0 {
		if d.Contains(0) {
			return Domain{intervals: []Interval{{math.MinInt64 / 4, math.MaxInt64 / 4}}}
		}
		return Domain{}
	}
	var out []Interval
	for _, iv := range d.intervals {
		lo, hi := iv.Min, iv.Max
		if coeff < 0 {
			lo, hi = -hi, -lo
		}
		c := coeff
		if c < 0 {
			c = -c
		}
		xlo := ceilDiv(lo, c)
		xhi := floorDiv(hi, c)
		if xlo <= xhi {
			out = append(out, Interval{xlo, xhi})
		}
	}
	return Domain{intervals: normalize(out)}
}

// DivisionByConstant returns {x / d : x in dom} using truncating
// (toward-zero) integer division, matching spec's
// `division_by_constant`.
func (d Domain) DivisionByConstant(div int64) Domain {
	if div == 0 || d.IsEmpty() {
		return Domain{}
	}
	var out []Interval
	for _, iv := range d.intervals {
		a, b := truncDiv(iv.Min, div), truncDiv(iv.Max, div)
		if a > b {
			a, b = b, a
		}
		out = append(out, Interval{a, b})
	}
	return Domain{intervals: hullIfComplex(normalize(out))}
}

// ComplementWithinRange returns the values of [lo, hi] not in d.
func (d Domain) ComplementWithinRange(lo, hi int64) Domain {
	full := Range(lo, hi)
	if d.IsEmpty() {
		return full
	}
	var out []Interval
	cur := lo
	for _, iv := range d.intervals {
		a, b := iv.Min, iv.Max
		if b < lo || a > hi {
			continue
		}
		if a > cur {
			hiEnd := a - 1
			if hiEnd > hi {
				hiEnd = hi
			}
			if cur <= hiEnd {
				out = append(out, Interval{cur, hiEnd})
			}
		}
		if b+1 > cur {
			cur = b + 1
		}
	}
	if cur <= hi {
		out = append(out, Interval{cur, hi})
	}
	return Domain{intervals: out}
}

func ceilDiv(a, b int64) int64 {
	if b < 0 {
		a, b = -a, -b
	}
	if a >= 0 {
		return (a + b - 1) / b
	}
	return -((-a) / b)
}

func floorDiv(a, b int64) int64 {
	if b < 0 {
		a, b = -a, -b
	}
	if a >= 0 {
		return a / b
	}
	return -((-a + b - 1) / b)
}

func truncDiv(a, b int64) int64 {
	return a / b
}

// String renders the domain DIMACS-adjacent style, e.g. "[0,3][7]".
func (d Domain) String() string {
	if d.IsEmpty() {
		return "{}"
	}
	parts := make([]string, len(d.intervals))
	for i, iv := range d.intervals {
		if iv.Min == iv.Max {
			parts[i] = fmt.Sprintf("[%d]", iv.Min)
		} else {
			parts[i] = fmt.Sprintf("[%d,%d]", iv.Min, iv.Max)
		}
	}
	return strings.Join(parts, "")
}
