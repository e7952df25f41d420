package model

// Objective is the optional linear objective to minimize or maximize
// (spec §4.4's "Objective expansion" folds defining constraints into
// this once their target variable has no other use).
type Objective struct {
	Vars     []int32
	Coeffs   []int64
	Offset   int64
	Maximize bool
	// ScalingFactor lets the mapping model express the original
	// objective's value in terms of the presolved one after objective
	// expansion rescales it.
	ScalingFactor float64
}

// VarIndices reports the variables the objective references, for usage
// graph bookkeeping.
func (o *Objective) VarIndices() []int32 {
	if o == nil {
		return nil
	}
	return append([]int32{}, o.Vars...)
}
