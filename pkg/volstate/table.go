package volstate

import (
	"cmp"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Transition is an ordered pair of base labels.
type Transition struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// T is shorthand for Transition{From: from, To: to}.
func T(from, to string) Transition {
	return Transition{From: from, To: to}
}

// Table holds one domain's known states and allowed transitions.
// A Table is never modified after construction and is safe for concurrent reads.
type Table struct {
	domain      Domain
	states      mapset.Set[string]
	transitions mapset.Set[Transition]
}

// newTable builds a table, failing if any transition references a state
// outside the known set.
func newTable(domain Domain, states []string, transitions []Transition) (*Table, error) {
	t := &Table{
		domain:      domain,
		states:      mapset.NewThreadUnsafeSet(states...),
		transitions: mapset.NewThreadUnsafeSet[Transition](),
	}
	for _, tr := range transitions {
		if !t.states.Contains(tr.From) {
			return nil, NewUnknownStateError(domain, "from", tr.From)
		}
		if !t.states.Contains(tr.To) {
			return nil, NewUnknownStateError(domain, "to", tr.To)
		}
		t.transitions.Add(tr)
	}
	return t, nil
}

// Domain returns the domain the table belongs to.
func (t *Table) Domain() Domain {
	return t.domain
}

// HasState reports whether base is a known label.
func (t *Table) HasState(base string) bool {
	return t.states.Contains(base)
}

// Resolve returns the base label of the raw value raw, or an
// *UnknownStateError naming role if the label is not known. The empty label
// is only accepted bare.
func (t *Table) Resolve(role, raw string) (string, error) {
	st := ParseState(raw)
	if st.Base == "" && st.HasMeta {
		return "", NewUnknownStateError(t.domain, role, raw)
	}
	if !t.states.Contains(st.Base) {
		return "", NewUnknownStateError(t.domain, role, st.Base)
	}
	return st.Base, nil
}

// Allows reports whether tr is an edge of the table.
func (t *Table) Allows(tr Transition) bool {
	return t.transitions.Contains(tr)
}

// States returns a sorted copy of the known labels.
func (t *Table) States() []string {
	states := t.states.ToSlice()
	slices.Sort(states)
	return states
}

// Transitions returns a sorted copy of the allowed edges.
func (t *Table) Transitions() []Transition {
	trs := t.transitions.ToSlice()
	slices.SortFunc(trs, compareTransitions)
	return trs
}

// TransitionsFrom returns the sorted targets reachable in one step from base.
func (t *Table) TransitionsFrom(base string) []string {
	var out []string
	t.transitions.Each(func(tr Transition) bool {
		if tr.From == base {
			out = append(out, tr.To)
		}
		return false
	})
	slices.Sort(out)
	return out
}

// rebuild returns a copy of t with remove subtracted and then add applied.
func (t *Table) rebuild(add, remove []Transition) (*Table, error) {
	trs := t.transitions.Clone()
	for _, tr := range remove {
		trs.Remove(tr)
	}
	return newTable(t.domain, t.states.ToSlice(), append(trs.ToSlice(), add...))
}

func compareTransitions(a, b Transition) int {
	if c := cmp.Compare(a.From, b.From); c != 0 {
		return c
	}
	return cmp.Compare(a.To, b.To)
}
