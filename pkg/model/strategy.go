package model

// SearchHint orders a subset of variables with a preferred value each,
// surviving presolve substitution via the postsolve mapping (spec
// §4.3 step 9, "search-strategy rewriting").
type SearchHint struct {
	Vars          []int32
	PreferredVals []int64
}
