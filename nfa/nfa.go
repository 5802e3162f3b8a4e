// Package nfa specializes the generic automaton framework with an
// action-register payload on both states and transitions, and implements
// the operations that only make sense for that specialization: concentrating
// and extending final states, declaring tree-building contexts, and
// converting the NFA to a pseudo-DFA by ε-closure / subset construction.
package nfa

import (
	"sort"

	"github.com/astirlang/astir/automaton"
	"github.com/astirlang/astir/register"
	"github.com/astirlang/astir/symbol"
	"github.com/cnf/structhash"
)

// ContextPair is a declared (parent, child) tree-building context: entering
// the child statement while building the parent's tree.
type ContextPair struct {
	Parent string
	Child  string
}

// NFA is an AFA whose state payload fires on entry and whose transition
// payload fires when the transition is taken, plus the set of contexts
// declared while building it.
type NFA struct {
	*automaton.AFA[*register.Register]
	Contexts []ContextPair

	ctxSeen map[ContextPair]bool
}

// New returns an NFA with a single, non-final initial state and an empty
// entry register.
func New() *NFA {
	n := &NFA{
		AFA:     automaton.New[*register.Register](),
		ctxSeen: map[ContextPair]bool{},
	}
	n.State(0).Payload = register.New()
	return n
}

func emptyIfNil(r *register.Register) *register.Register {
	if r == nil {
		return register.New()
	}
	return r
}

// RegisterContext records a declarative (parent, child) context, deduplicated
// within this NFA.
func (n *NFA) RegisterContext(parent, child string) {
	p := ContextPair{Parent: parent, Child: child}
	if n.ctxSeen == nil {
		n.ctxSeen = map[ContextPair]bool{}
	}
	if n.ctxSeen[p] {
		return
	}
	n.ctxSeen[p] = true
	n.Contexts = append(n.Contexts, p)
}

// OrWith unions other into n, carrying contexts across.
func (n *NFA) OrWith(other *NFA, preventClosureOptimization bool) {
	n.AFA.OrWith(other.AFA, preventClosureOptimization)
	for _, c := range other.Contexts {
		n.RegisterContext(c.Parent, c.Child)
	}
}

// AndWith concatenates other onto n, carrying contexts across.
func (n *NFA) AndWith(other *NFA, preventClosureOptimization bool) {
	n.AFA.AndWith(other.AFA, preventClosureOptimization)
	for _, c := range other.Contexts {
		n.RegisterContext(c.Parent, c.Child)
	}
}

// ConcentrateFinalStates collapses every current final state into a single
// new final state, reached by ε-transitions carrying actions. If there is
// already exactly one final state and actions is empty, this is a no-op and
// that state's id is returned.
func (n *NFA) ConcentrateFinalStates(actions *register.Register) automaton.StateID {
	finals := n.Finals()
	actions = emptyIfNil(actions)

	if len(finals) == 1 && actions.Len() == 0 {
		return finals[0]
	}

	fresh := n.AddState()
	for _, f := range finals {
		n.AddTransition(f, automaton.Transition[*register.Register]{
			Target:    fresh,
			Condition: symbol.Epsilon{},
			Payload:   actions.Copy(),
		})
		n.SetFinal(f, false)
	}
	n.SetFinal(fresh, true)
	return fresh
}

// AddInitialActions prepends actions to the action register of every
// transition leaving the initial state, and, if the initial state is itself
// final, to its own entry register (so matching the empty string still
// fires them).
func (n *NFA) AddInitialActions(actions *register.Register) {
	actions = emptyIfNil(actions)
	if actions.Len() == 0 {
		return
	}
	init := n.Initial()
	s := n.State(init)
	for i, t := range s.Transitions {
		s.Transitions[i].Payload = register.Union(actions, emptyIfNil(t.Payload))
	}
	if n.IsFinal(init) {
		s.Payload = register.Union(actions, emptyIfNil(s.Payload))
	}
}

// AddFinalActions introduces, for each current final state, a fresh state
// reached by an ε-transition carrying actions, and replaces the final set
// with those fresh states.
func (n *NFA) AddFinalActions(actions *register.Register) {
	actions = emptyIfNil(actions)
	if actions.Len() == 0 {
		return
	}
	oldFinals := n.Finals()
	for _, f := range oldFinals {
		fresh := n.AddState()
		n.AddTransition(f, automaton.Transition[*register.Register]{
			Target:    fresh,
			Condition: symbol.Epsilon{},
			Payload:   actions.Copy(),
		})
		n.SetFinal(f, false)
		n.SetFinal(fresh, true)
	}
}

// stateSet is a deterministic, hashable set of NFA state ids: the key used
// to recognize an already-built DFA state during subset construction.
type stateSet struct {
	ids  []automaton.StateID
	hash string
}

func newStateSet(ids map[automaton.StateID]bool) *stateSet {
	sorted := make([]automaton.StateID, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	// Structural hashing per the spec's memoization note: the set must be
	// hashed deterministically, which requires hashing a sorted collection.
	h, err := structhash.Hash(sorted, 1)
	if err != nil {
		// structhash only fails on unhashable types; a []StateID (a slice of
		// a defined int type) is always hashable.
		panic(err)
	}
	return &stateSet{ids: sorted, hash: h}
}

func (s *stateSet) equals(o *stateSet) bool {
	if len(s.ids) != len(o.ids) {
		return false
	}
	for i := range s.ids {
		if s.ids[i] != o.ids[i] {
			return false
		}
	}
	return true
}

// closure computes the ε-closure of the given NFA states, accumulating an
// action register by a deterministic DFS over the ε-graph: each state
// visited contributes its entry register, each ε-transition followed
// contributes its transition register, both appended in visit order.
func (n *NFA) closure(start map[automaton.StateID]bool) (map[automaton.StateID]bool, *register.Register) {
	closed := map[automaton.StateID]bool{}
	acc := register.New()

	var startSorted []automaton.StateID
	for id := range start {
		startSorted = append(startSorted, id)
	}
	sort.Slice(startSorted, func(i, j int) bool { return startSorted[i] < startSorted[j] })

	var visit func(id automaton.StateID)
	visit = func(id automaton.StateID) {
		if closed[id] {
			return
		}
		closed[id] = true
		acc.AppendAll(emptyIfNil(n.State(id).Payload).Actions()...)
		for _, t := range n.State(id).Transitions {
			if _, isEps := t.Condition.(symbol.Epsilon); !isEps {
				continue
			}
			acc.AppendAll(emptyIfNil(t.Payload).Actions()...)
			visit(t.Target)
		}
	}
	for _, id := range startSorted {
		visit(id)
	}
	return closed, acc
}
