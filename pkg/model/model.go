// Package model is the structured in-memory stand-in for the
// protobuf/text model format spec.md declares out of scope. It gives
// the presolve core a Go-native "variables, constraints, optional
// objective, optional search strategy, optional solution hint" shape
// to operate on, mirroring the teacher's pkg/deppy variable/constraint
// surface generalized from Boolean-only to integer-domain constraints.
package model

import "github.com/cp-hybrid/presolve/pkg/intervaldomain"

// VarRef names a variable by index into Model.Variables. Negative
// values, following the affine package's convention, name the
// Boolean complement of the referenced variable (only meaningful for
// variables whose domain is {0,1}).
type VarRef int32

// Negate returns the arithmetic opposite reference.
func Negate(r VarRef) VarRef { return ^r }

// Var returns the underlying non-negated variable index.
func (r VarRef) Var() int32 {
	if r < 0 {
		return int32(^r)
	}
	return int32(r)
}

// IsNegated reports whether r refers to the complement form.
func (r VarRef) IsNegated() bool { return r < 0 }

// Variable is one decision variable of the model: a name (used only
// for diagnostics) and a finite domain.
type Variable struct {
	Name      string
	Domain    intervaldomain.Domain
	IsBoolean bool
}

// Model is the complete presolve input: variables, constraints, and
// optional objective/search/hint sections.
type Model struct {
	Variables    []Variable
	Constraints  []Constraint
	Objective    *Objective
	SearchHints  []SearchHint
	SolutionHint *SolutionHint
}

// NewModel returns an empty model ready for incremental construction.
func NewModel() *Model {
	return &Model{}
}

// AddVariable appends a variable and returns its index.
func (m *Model) AddVariable(name string, domain intervaldomain.Domain) int32 {
	idx := int32(len(m.Variables))
	m.Variables = append(m.Variables, Variable{
		Name:      name,
		Domain:    domain,
		IsBoolean: domain.IsIncludedIn(intervaldomain.Range(0, 1)),
	})
	return idx
}

// AddConstraint appends a constraint and returns its index.
func (m *Model) AddConstraint(c Constraint) int32 {
	idx := int32(len(m.Constraints))
	m.Constraints = append(m.Constraints, c)
	return idx
}
