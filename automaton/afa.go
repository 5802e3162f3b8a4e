// Package automaton implements the abstract finite automaton (AFA)
// framework: a generic labeled digraph with per-state payloads, tag lookup,
// and the union/concatenation composition operators every higher-level
// automaton (the NFA) is built from. It knows nothing about what a payload
// means: composition copies payloads unchanged and does not merge them, so
// the other automaton's state-0 payload is not carried over.
package automaton

import (
	"github.com/astirlang/astir/symbol"
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// StateID indexes a state in an AFA. The initial state is always 0.
type StateID int

// Transition is one edge of the automaton: a condition guarding travel to
// Target, carrying a payload of the same type as state payloads (the
// "transition payload embedded in P" the framework is parameterized over),
// plus the opt-out flag that forbids later condition-closure merging of this
// transition with a sibling's.
type Transition[P any] struct {
	Target    StateID
	Condition symbol.Group
	Payload   P
	OptOut    bool
}

// State is one node: its own payload (fires on entry, for the NFA
// specialization) plus its outgoing transitions.
type State[P any] struct {
	Payload     P
	Transitions []Transition[P]
}

// AFA is a generic labeled digraph over payload type P.
type AFA[P any] struct {
	states []*State[P]
	finals map[StateID]bool

	// tags is a one-to-one mapping between a caller-supplied key and a
	// state id.
	tags     *linkedhashmap.Map // tag -> StateID
	stateTag map[StateID]any
}

// New returns an AFA with a single initial state (id 0), not final.
func New[P any]() *AFA[P] {
	a := &AFA[P]{
		finals:   map[StateID]bool{},
		tags:     linkedhashmap.New(),
		stateTag: map[StateID]any{},
	}
	a.states = append(a.states, &State[P]{})
	return a
}

// Len reports the number of states.
func (a *AFA[P]) Len() int { return len(a.states) }

// State returns the state object for id. Panics on an out-of-range id, as
// every id handed to a caller originates from AddState.
func (a *AFA[P]) State(id StateID) *State[P] { return a.states[id] }

// Initial is always state 0.
func (a *AFA[P]) Initial() StateID { return 0 }

// AddState appends a new state with a default payload and returns its id.
func (a *AFA[P]) AddState() StateID {
	a.states = append(a.states, &State[P]{})
	return StateID(len(a.states) - 1)
}

// AddTransition appends a transition leaving src.
func (a *AFA[P]) AddTransition(src StateID, t Transition[P]) {
	a.states[src].Transitions = append(a.states[src].Transitions, t)
}

// AddEmptyTransition adds an ε-transition from src to dst with a zero
// payload.
func (a *AFA[P]) AddEmptyTransition(src, dst StateID) {
	a.AddTransition(src, Transition[P]{Target: dst, Condition: symbol.Epsilon{}})
}

// SetFinal marks or unmarks id as a final state.
func (a *AFA[P]) SetFinal(id StateID, final bool) {
	if final {
		a.finals[id] = true
	} else {
		delete(a.finals, id)
	}
}

// IsFinal reports whether id is a final state.
func (a *AFA[P]) IsFinal(id StateID) bool { return a.finals[id] }

// Finals returns the final state ids in ascending order.
func (a *AFA[P]) Finals() []StateID {
	out := make([]StateID, 0, len(a.finals))
	for id := range a.finals {
		out = append(out, id)
	}
	sortStateIDs(out)
	return out
}

// TagState records a one-to-one mapping between tag and id, replacing any
// prior mapping for either side.
func (a *AFA[P]) TagState(id StateID, tag any) {
	if old, ok := a.stateTag[id]; ok {
		a.tags.Remove(old)
	}
	a.tags.Put(tag, id)
	a.stateTag[id] = tag
}

// HasTag reports whether tag is currently mapped to a state.
func (a *AFA[P]) HasTag(tag any) bool {
	_, found := a.tags.Get(tag)
	return found
}

// FindByTag returns the state mapped to tag, if any.
func (a *AFA[P]) FindByTag(tag any) (StateID, bool) {
	v, found := a.tags.Get(tag)
	if !found {
		return 0, false
	}
	return v.(StateID), true
}

// shiftTransition produces a copy of t with Target offset by delta and OptOut forced
// to true when force is set (the opt-out flag is monotone: composition only
// ever turns it on).
func shiftTransition[P any](t Transition[P], delta StateID, force bool) Transition[P] {
	t.Target += delta
	if force {
		t.OptOut = true
	}
	return t
}

// OrWith unions other into a, mutating a in place: a recognizes the
// language of a or other. other's state 0 is merged into a's state 0
// (transitions and finality preserved on both sides); every other state of
// other is appended and its transition targets shifted accordingly. Tags
// carry across with the shift applied. When preventClosureOptimization is
// set, every transition that left other's state 0 (now folded into a's
// state 0) is flagged opt-out so the subset construction never folds it
// together with a sibling transition — this is how repetition loop points
// stay visible after disjoining.
func (a *AFA[P]) OrWith(other *AFA[P], preventClosureOptimization bool) {
	delta := StateID(len(a.states) - 1)

	if other.IsFinal(0) {
		a.SetFinal(0, true)
	}
	for _, t := range other.states[0].Transitions {
		nt := shiftTransition(t, delta, preventClosureOptimization)
		a.states[0].Transitions = append(a.states[0].Transitions, nt)
	}

	for i := 1; i < len(other.states); i++ {
		src := other.states[i]
		ns := &State[P]{Payload: src.Payload}
		for _, t := range src.Transitions {
			ns.Transitions = append(ns.Transitions, shiftTransition(t, delta, false))
		}
		a.states = append(a.states, ns)
		id := StateID(len(a.states) - 1)
		if other.IsFinal(StateID(i)) {
			a.SetFinal(id, true)
		}
	}

	other.tags.Each(func(tag, idAny any) {
		id := idAny.(StateID)
		a.TagState(id+delta, tag)
	})
}

// AndWith concatenates other onto a, mutating a in place: a recognizes the
// language of a followed by other. other's state 0 is merged into every one
// of a's current final states (their outgoing transition sets are extended
// by other's state-0 transitions); the final set becomes the shifted copy of
// other's finals.
func (a *AFA[P]) AndWith(other *AFA[P], preventClosureOptimization bool) {
	delta := StateID(len(a.states) - 1)
	priorFinals := a.Finals()

	for i := 1; i < len(other.states); i++ {
		src := other.states[i]
		ns := &State[P]{Payload: src.Payload}
		for _, t := range src.Transitions {
			ns.Transitions = append(ns.Transitions, shiftTransition(t, delta, false))
		}
		a.states = append(a.states, ns)
	}

	otherZeroTransitions := make([]Transition[P], len(other.states[0].Transitions))
	for i, t := range other.states[0].Transitions {
		otherZeroTransitions[i] = shiftTransition(t, delta, preventClosureOptimization)
	}

	for _, f := range priorFinals {
		a.SetFinal(f, false)
		a.states[f].Transitions = append(a.states[f].Transitions, otherZeroTransitions...)
		if other.IsFinal(0) {
			a.SetFinal(f, true)
		}
	}

	for i := 1; i < len(other.states); i++ {
		if other.IsFinal(StateID(i)) {
			a.SetFinal(StateID(i)+delta, true)
		}
	}

	other.tags.Each(func(tag, idAny any) {
		id := idAny.(StateID)
		a.TagState(id+delta, tag)
	})
}

func sortStateIDs(ids []StateID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
