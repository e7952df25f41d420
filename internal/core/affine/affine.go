// Package affine maintains the union-find repositories of affine
// relations (x = coeff*representative + offset) used by the presolve
// rewriters to collapse variables that are provably interchangeable.
//
// Two parallel stores are kept, mirroring spec §3's "Affine
// relation": a general Repository tolerating any integer coefficient,
// and a stricter Repository restricted by its caller to |coeff|=1,
// offset in {0,1} relations — Boolean reasoning needs literal-to-
// literal identity but integer reasoning tolerates scaling.
package affine

import "fmt"

// Ref is an opaque variable reference (spec §3's `ref`): a positive
// value names variable i, its bitwise negation names i's arithmetic
// opposite (negate(negate(r)) == r).
type Ref int32

// Negate returns the arithmetic opposite of r.
func Negate(r Ref) Ref { return ^r }

// Var returns the underlying variable index for a reference,
// regardless of sign.
func Var(r Ref) int32 {
	if r < 0 {
		return int32(^r)
	}
	return int32(r)
}

// IsNegated reports whether r names the negated form.
func IsNegated(r Ref) bool { return r < 0 }

// Relation describes how a variable relates to the representative of
// its affine class: variable = Coeff*Representative + Offset.
type Relation struct {
	Representative int32
	Coeff          int64
	Offset         int64
}

// IsTrivial reports whether the relation is the identity relation.
func (r Relation) IsTrivial(self int32) bool {
	return r.Representative == self && r.Coeff == 1 && r.Offset == 0
}

type class struct {
	// parent == own index means this variable is its own root.
	parent int32
	// rel expresses this variable in terms of parent: v = rel.Coeff*parent + rel.Offset.
	rel Relation
	// boolean marks variables whose domain is {0,1}; used to enforce
	// the representative-must-be-Boolean invariant.
	boolean bool
}

// Repository is a union-find over affine relations between variable
// indices.
type Repository struct {
	classes map[int32]*class
	// restrictCoeffOne, when set, rejects Add calls whose coefficient
	// is not +-1 with a 0/1 offset -- this is how the stricter
	// equivalence-only repository is built atop the same machinery.
	restrictCoeffOne bool
}

// NewRepository returns a general-purpose affine repository.
func NewRepository() *Repository {
	return &Repository{classes: make(map[int32]*class)}
}

// NewEquivalenceRepository returns a repository that only accepts
// |coeff| = 1 and offset in {0, 1} relations. This is the "stricter
// equivalence repository" of spec §3.
func NewEquivalenceRepository() *Repository {
	return &Repository{classes: make(map[int32]*class), restrictCoeffOne: true}
}

func (r *Repository) node(v int32) *class {
	c, ok := r.classes[v]
	if !ok {
		c = &class{parent: v, rel: Relation{Representative: v, Coeff: 1, Offset: 0}}
		r.classes[v] = c
	}
	return c
}

// MarkBoolean records that variable v has domain {0,1}. Affine
// resolution uses this to bias which member becomes the
// representative (spec's Boolean-representative invariant).
func (r *Repository) MarkBoolean(v int32) {
	r.node(v).boolean = true
}

// IsBoolean reports whether v has been marked Boolean.
func (r *Repository) IsBoolean(v int32) bool {
	c, ok := r.classes[v]
	return ok && c.boolean
}

// Find resolves v to its class representative, returning the affine
// relation v = coeff*representative + offset. Path compression folds
// the chain traversed along the way.
func (r *Repository) Find(v int32) Relation {
	c := r.node(v)
	if c.parent == v {
		return c.rel
	}
	parentRel := r.Find(c.parent)
	// v = c.rel.Coeff*parent + c.rel.Offset
	// parent = parentRel.Coeff*root + parentRel.Offset
	// v = c.rel.Coeff*(parentRel.Coeff*root + parentRel.Offset) + c.rel.Offset
	composed := Relation{
		Representative: parentRel.Representative,
		Coeff:          c.rel.Coeff * parentRel.Coeff,
		Offset:         c.rel.Coeff*parentRel.Offset + c.rel.Offset,
	}
	c.parent = composed.Representative
	c.rel = composed
	return composed
}

// Root returns the representative variable of v's class without
// the coefficient/offset composition.
func (r *Repository) Root(v int32) int32 {
	return r.Find(v).Representative
}

// ErrInvalidCoeff is returned by Add when the coefficient violates
// the repository's restrictions (e.g. the equivalence repository
// rejecting anything but +-1).
type ErrInvalidCoeff struct {
	Coeff int64
}

func (e ErrInvalidCoeff) Error() string {
	return fmt.Sprintf("affine: coefficient %d not permitted in this repository", e.Coeff)
}

// Add records x = coeff*y + offset, eliminating x in favor of y's
// class. Callers choose which variable is the redundant one (x) and
// which is kept (y); coeff need not be invertible in general, since
// only x's value is ever reconstructed from the representative, never
// the other way around. The one case that does require inverting the
// relation is the Boolean-representative invariant: "a Boolean
// variable's affine class representative must itself be Boolean
// whenever one member is Boolean" (spec §3) — and by construction
// every affine relation touching a Boolean variable has |coeff| = 1
// (a Boolean cannot equal coeff*v+offset for any other coefficient
// without forcing v's domain down to one or two values, at which
// point exploit_fixed_domain handles it instead), so that inversion
// is always exact.
func (r *Repository) Add(x, y int32, coeff, offset int64) error {
	if r.restrictCoeffOne {
		if coeff != 1 && coeff != -1 {
			return ErrInvalidCoeff{Coeff: coeff}
		}
		if offset != 0 && offset != 1 {
			return ErrInvalidCoeff{Coeff: coeff}
		}
	}

	rx := r.Find(x)
	ry := r.Find(y)
	if rx.Representative == ry.Representative {
		return nil
	}

	// x = coeff*y + offset, and
	// x = rx.Coeff*RX + rx.Offset, y = ry.Coeff*RY + ry.Offset
	// => RX = (coeff*ry.Coeff/rx.Coeff)*RY + (coeff*ry.Offset+offset-rx.Offset)/rx.Coeff
	newCoeff := coeff * ry.Coeff
	newOffset := coeff*ry.Offset + offset - rx.Offset
	if rx.Coeff != 1 {
		newCoeff /= rx.Coeff
		newOffset /= rx.Coeff
	}

	rootXBoolean := r.IsBoolean(rx.Representative)
	rootYBoolean := r.IsBoolean(ry.Representative)

	if rootXBoolean && !rootYBoolean {
		// RY must become the eliminated side instead, requiring the
		// inverse of RX = newCoeff*RY + newOffset, valid because
		// newCoeff is guaranteed +-1 whenever a Boolean root is
		// involved (see doc comment above).
		inv := Relation{Representative: rx.Representative, Coeff: newCoeff, Offset: -newOffset * newCoeff}
		r.classes[ry.Representative] = &class{parent: rx.Representative, rel: inv, boolean: rootYBoolean}
		r.classes[rx.Representative].boolean = true
		return nil
	}

	// Default: RX becomes a function of RY. This also covers the
	// "both or neither are Boolean" cases, keeping y's class as the
	// survivor exactly as the caller asked.
	r.classes[rx.Representative] = &class{
		parent:  ry.Representative,
		rel:     Relation{Representative: ry.Representative, Coeff: newCoeff, Offset: newOffset},
		boolean: rootXBoolean,
	}
	if rootXBoolean {
		r.classes[ry.Representative].boolean = true
	}
	return nil
}

// InSameClass reports whether x and y resolve to the same
// representative.
func (r *Repository) InSameClass(x, y int32) bool {
	return r.Find(x).Representative == r.Find(y).Representative
}
