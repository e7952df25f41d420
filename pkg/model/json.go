package model

import (
	"fmt"

	"github.com/cp-hybrid/presolve/internal/lib/util"
	"github.com/cp-hybrid/presolve/pkg/intervaldomain"
)

// wireModel is the JSON wire shape for Model. Constraint is an
// interface (a Go sum type dispatched by type switch everywhere else
// in this module) but JSON has no native sum types, so the wire
// format carries an explicit "kind" discriminator per constraint —
// used only at the marshal/unmarshal boundary, never for in-process
// dispatch.
type wireModel struct {
	Variables    []wireVariable    `json:"variables"`
	Constraints  []wireConstraint  `json:"constraints"`
	Objective    *wireObjective    `json:"objective,omitempty"`
	SearchHints  []SearchHint      `json:"search_hints,omitempty"`
	SolutionHint *SolutionHint     `json:"solution_hint,omitempty"`
}

type wireVariable struct {
	Name      string                  `json:"name"`
	Intervals []intervaldomain.Interval `json:"domain"`
}

type wireObjective struct {
	Vars          []int32 `json:"vars"`
	Coeffs        []int64 `json:"coeffs"`
	Offset        int64   `json:"offset"`
	Maximize      bool    `json:"maximize"`
	ScalingFactor float64 `json:"scaling_factor,omitempty"`
}

type wireConstraint struct {
	Kind string `json:"kind"`

	Literals []VarRef `json:"literals,omitempty"`
	Enforced []VarRef `json:"enforced,omitempty"`

	Target  int32   `json:"target,omitempty"`
	Exprs   []LinearExpr `json:"exprs,omitempty"`
	Factors []int32 `json:"factors,omitempty"`
	Num     int32   `json:"num,omitempty"`
	Denom   int32   `json:"denom,omitempty"`

	Vars     []int32      `json:"vars,omitempty"`
	Coeffs   []int64      `json:"coeffs,omitempty"`
	Domain   []Interval64 `json:"domain,omitempty"`
	Defining bool         `json:"defining,omitempty"`

	Start int32 `json:"start,omitempty"`
	Size  int32 `json:"size,omitempty"`
	End   int32 `json:"end,omitempty"`

	Index   int32   `json:"index,omitempty"`
	Options []int32 `json:"options,omitempty"`

	Cols    []int32   `json:"cols,omitempty"`
	Tuples  [][]int64 `json:"tuples,omitempty"`
	Negated bool      `json:"negated,omitempty"`

	Intervals []int32 `json:"intervals,omitempty"`
	Demands   []int32 `json:"demands,omitempty"`
	Capacity  int32   `json:"capacity,omitempty"`

	Arcs []CircuitArc `json:"arcs,omitempty"`
}

const (
	kindBoolOr     = "bool_or"
	kindBoolAnd    = "bool_and"
	kindAtMostOne  = "at_most_one"
	kindIntMax     = "int_max"
	kindIntMin     = "int_min"
	kindIntProd    = "int_prod"
	kindIntDiv     = "int_div"
	kindLinear     = "linear"
	kindInterval   = "interval"
	kindElement    = "element"
	kindTable      = "table"
	kindNoOverlap  = "no_overlap"
	kindCumulative = "cumulative"
	kindCircuit    = "circuit"
	kindAllDiff    = "all_diff"
)

func toWire(m *Model) (wireModel, error) {
	w := wireModel{}
	for _, v := range m.Variables {
		w.Variables = append(w.Variables, wireVariable{Name: v.Name, Intervals: v.Domain.Intervals()})
	}
	for _, c := range m.Constraints {
		wc, err := constraintToWire(c)
		if err != nil {
			return wireModel{}, err
		}
		w.Constraints = append(w.Constraints, wc)
	}
	if m.Objective != nil {
		w.Objective = &wireObjective{
			Vars:          m.Objective.Vars,
			Coeffs:        m.Objective.Coeffs,
			Offset:        m.Objective.Offset,
			Maximize:      m.Objective.Maximize,
			ScalingFactor: m.Objective.ScalingFactor,
		}
	}
	w.SearchHints = m.SearchHints
	w.SolutionHint = m.SolutionHint
	return w, nil
}

func constraintToWire(c Constraint) (wireConstraint, error) {
	switch v := c.(type) {
	case *BoolOr:
		return wireConstraint{Kind: kindBoolOr, Literals: v.Literals, Enforced: v.Enforced}, nil
	case *BoolAnd:
		return wireConstraint{Kind: kindBoolAnd, Literals: v.Literals, Enforced: v.Enforced}, nil
	case *AtMostOne:
		return wireConstraint{Kind: kindAtMostOne, Literals: v.Literals}, nil
	case *IntMax:
		return wireConstraint{Kind: kindIntMax, Target: v.Target, Exprs: v.Exprs, Enforced: v.Enforced}, nil
	case *IntMin:
		return wireConstraint{Kind: kindIntMin, Target: v.Target, Exprs: v.Exprs, Enforced: v.Enforced}, nil
	case *IntProd:
		return wireConstraint{Kind: kindIntProd, Target: v.Target, Factors: v.Factors}, nil
	case *IntDiv:
		return wireConstraint{Kind: kindIntDiv, Target: v.Target, Num: v.Num, Denom: v.Denom}, nil
	case *Linear:
		return wireConstraint{Kind: kindLinear, Vars: v.VarIndices, Coeffs: v.Coeffs, Domain: v.Domain, Defining: v.Defining, Enforced: v.Enforced}, nil
	case *IntervalConstraint:
		return wireConstraint{Kind: kindInterval, Start: v.Start, Size: v.Size, End: v.End}, nil
	case *Element:
		return wireConstraint{Kind: kindElement, Index: v.Index, Target: v.Target, Options: v.Options}, nil
	case *Table:
		return wireConstraint{Kind: kindTable, Cols: v.Cols, Tuples: v.Tuples, Negated: v.Negated}, nil
	case *NoOverlap:
		return wireConstraint{Kind: kindNoOverlap, Intervals: v.Intervals}, nil
	case *Cumulative:
		return wireConstraint{Kind: kindCumulative, Intervals: v.Intervals, Demands: v.Demands, Capacity: v.Capacity}, nil
	case *Circuit:
		return wireConstraint{Kind: kindCircuit, Arcs: v.Arcs}, nil
	case *AllDiff:
		return wireConstraint{Kind: kindAllDiff, Vars: v.VarIndices}, nil
	default:
		return wireConstraint{}, fmt.Errorf("model: unknown constraint type %T", c)
	}
}

func constraintFromWire(w wireConstraint) (Constraint, error) {
	switch w.Kind {
	case kindBoolOr:
		return &BoolOr{Literals: w.Literals, Enforced: w.Enforced}, nil
	case kindBoolAnd:
		return &BoolAnd{Literals: w.Literals, Enforced: w.Enforced}, nil
	case kindAtMostOne:
		return &AtMostOne{Literals: w.Literals}, nil
	case kindIntMax:
		return &IntMax{Target: w.Target, Exprs: w.Exprs, Enforced: w.Enforced}, nil
	case kindIntMin:
		return &IntMin{Target: w.Target, Exprs: w.Exprs, Enforced: w.Enforced}, nil
	case kindIntProd:
		return &IntProd{Target: w.Target, Factors: w.Factors}, nil
	case kindIntDiv:
		return &IntDiv{Target: w.Target, Num: w.Num, Denom: w.Denom}, nil
	case kindLinear:
		return &Linear{VarIndices: w.Vars, Coeffs: w.Coeffs, Domain: w.Domain, Defining: w.Defining, Enforced: w.Enforced}, nil
	case kindInterval:
		return &IntervalConstraint{Start: w.Start, Size: w.Size, End: w.End}, nil
	case kindElement:
		return &Element{Index: w.Index, Target: w.Target, Options: w.Options}, nil
	case kindTable:
		return &Table{Cols: w.Cols, Tuples: w.Tuples, Negated: w.Negated}, nil
	case kindNoOverlap:
		return &NoOverlap{Intervals: w.Intervals}, nil
	case kindCumulative:
		return &Cumulative{Intervals: w.Intervals, Demands: w.Demands, Capacity: w.Capacity}, nil
	case kindCircuit:
		return &Circuit{Arcs: w.Arcs}, nil
	case kindAllDiff:
		return &AllDiff{VarIndices: w.Vars}, nil
	default:
		return nil, fmt.Errorf("model: unknown constraint kind %q", w.Kind)
	}
}

func fromWire(w wireModel) (*Model, error) {
	m := &Model{}
	for _, wv := range w.Variables {
		m.Variables = append(m.Variables, Variable{
			Name:      wv.Name,
			Domain:    intervaldomain.New(wv.Intervals...),
			IsBoolean: intervaldomain.New(wv.Intervals...).IsIncludedIn(intervaldomain.Range(0, 1)),
		})
	}
	for _, wc := range w.Constraints {
		c, err := constraintFromWire(wc)
		if err != nil {
			return nil, err
		}
		m.Constraints = append(m.Constraints, c)
	}
	if w.Objective != nil {
		m.Objective = &Objective{
			Vars:          w.Objective.Vars,
			Coeffs:        w.Objective.Coeffs,
			Offset:        w.Objective.Offset,
			Maximize:      w.Objective.Maximize,
			ScalingFactor: w.Objective.ScalingFactor,
		}
	}
	m.SearchHints = w.SearchHints
	m.SolutionHint = w.SolutionHint
	return m, nil
}

// MarshalJSON renders the model to its JSON wire form.
func MarshalJSON(m *Model) ([]byte, error) {
	w, err := toWire(m)
	if err != nil {
		return nil, err
	}
	return util.JSONMarshal(w)
}

// UnmarshalJSON parses a model from its JSON wire form.
func UnmarshalJSON(data []byte) (*Model, error) {
	var w wireModel
	if err := util.JSONUnmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(w)
}
