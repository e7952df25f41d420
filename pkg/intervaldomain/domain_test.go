package intervaldomain

import "testing"

import "github.com/stretchr/testify/assert"

func TestNormalizeMergesAdjacentAndOverlapping(t *testing.T) {
	assert := assert.New(t)

	d := New(Interval{5, 7}, Interval{1, 2}, Interval{3, 4}, Interval{10, 12})
	assert.Equal("[1,7][10,12]", d.String())
}

func TestContains(t *testing.T) {
	assert := assert.New(t)

	d := New(Interval{0, 3}, Interval{7, 9})
	assert.True(d.Contains(0))
	assert.True(d.Contains(3))
	assert.True(d.Contains(8))
	assert.False(d.Contains(4))
	assert.False(d.Contains(10))
}

func TestIntersectUnion(t *testing.T) {
	assert := assert.New(t)

	a := Range(0, 10)
	b := New(Interval{5, 7}, Interval{20, 30})

	assert.Equal("[5,7]", a.Intersect(b).String())
	assert.Equal("[0,10][20,30]", a.Union(b).String())
}

func TestIsIncludedIn(t *testing.T) {
	assert := assert.New(t)

	assert.True(Range(2, 4).IsIncludedIn(Range(0, 10)))
	assert.False(Range(2, 11).IsIncludedIn(Range(0, 10)))
}

func TestNegate(t *testing.T) {
	assert := assert.New(t)

	d := New(Interval{1, 3}, Interval{10, 10})
	assert.Equal("[-10][-3,-1]", d.Negate().String())
}

func TestAddElementwise(t *testing.T) {
	assert := assert.New(t)

	a := Range(0, 2)
	b := Range(10, 10)
	assert.Equal("[10,12]", a.AddElementwise(b).String())
}

func TestPreciseMultiplyByNegative(t *testing.T) {
	assert := assert.New(t)

	d := Range(0, 3)
	assert.Equal("[-6,0]", d.PreciseMultiply(-2).String())
}

func TestInverseMultiply(t *testing.T) {
	assert := assert.New(t)

	// x such that 2x in [0,6] is [0,3]
	d := Range(0, 6)
	assert.Equal("[0,3]", d.InverseMultiply(2).String())
}

func TestDivisionByConstant(t *testing.T) {
	assert := assert.New(t)

	d := Range(-5, 5)
	assert.Equal("[-2,2]", d.DivisionByConstant(2).String())
}

func TestComplementWithinRange(t *testing.T) {
	assert := assert.New(t)

	d := New(Interval{2, 4})
	assert.Equal("[0,1][5,10]", d.ComplementWithinRange(0, 10).String())
}

func TestMaxComplexityCollapsesToHull(t *testing.T) {
	assert := assert.New(t)

	var ivs []Interval
	for i := 0; i < MaxComplexity+5; i++ {
		ivs = append(ivs, Interval{int64(i * 3), int64(i * 3)})
	}
	d := Domain{intervals: ivs}
	sum := d.AddElementwise(Single(0))
	assert.LessOrEqual(sum.NumIntervals(), MaxComplexity)
}

func TestIsFixed(t *testing.T) {
	assert := assert.New(t)

	assert.True(Single(5).IsFixed())
	assert.Equal(int64(5), Single(5).FixedValue())
	assert.False(Range(1, 2).IsFixed())
}
