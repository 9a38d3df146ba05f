// Package cfgexpr parses and evaluates cfg() target-conditional predicates
// against a compile-time configuration snapshot.
package cfgexpr

// Snapshot is the set of cfg facts for one target triple. Bare flags such as
// `unix` are keys with no value; keyed facts such as `target_os="linux"` may
// carry several values for one key.
type Snapshot interface {
	// Has reports whether the key is present, with or without a value.
	Has(key string) bool
	// HasValue reports whether the key is present with exactly this value.
	HasValue(key, value string) bool
}

// Expr is a node of the parsed predicate tree.
type Expr interface {
	// Eval evaluates the expression against one snapshot.
	Eval(s Snapshot) bool
	// atoms appends every Atom in the tree to out.
	atoms(out []Atom) []Atom
}

// All is true iff every child is true. all() with no children is true.
type All struct {
	Exprs []Expr
}

// Any is true iff at least one child is true. any() with no children is false.
type Any struct {
	Exprs []Expr
}

// Not inverts its child.
type Not struct {
	Expr Expr
}

// Atom is a key test, optionally against a value.
type Atom struct {
	Key      string
	Value    string
	HasValue bool
}

func (e All) Eval(s Snapshot) bool {
	for _, c := range e.Exprs {
		if !c.Eval(s) {
			return false
		}
	}
	return true
}

func (e Any) Eval(s Snapshot) bool {
	for _, c := range e.Exprs {
		if c.Eval(s) {
			return true
		}
	}
	return false
}

func (e Not) Eval(s Snapshot) bool { return !e.Expr.Eval(s) }

func (e Atom) Eval(s Snapshot) bool {
	if e.HasValue {
		return s.HasValue(e.Key, e.Value)
	}
	return s.Has(e.Key)
}

func (e All) atoms(out []Atom) []Atom {
	for _, c := range e.Exprs {
		out = c.atoms(out)
	}
	return out
}

func (e Any) atoms(out []Atom) []Atom {
	for _, c := range e.Exprs {
		out = c.atoms(out)
	}
	return out
}

func (e Not) atoms(out []Atom) []Atom { return e.Expr.atoms(out) }

func (e Atom) atoms(out []Atom) []Atom { return append(out, e) }

// Atoms returns every atomic test in the tree, in source order. The platform
// mapper uses this to detect predicates over keys no snapshot knows about.
func Atoms(e Expr) []Atom { return e.atoms(nil) }
