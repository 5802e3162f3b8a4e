// Package emit renders a compiled machine into target-language source. It
// implements the macro-substitution contract the core promises and nothing
// more: the recognizer runtime itself (how a Builder actually stores
// captured bytes, how a Token stream is read) is out of scope here, same as
// for the core — emit only produces source that plugs into that runtime's
// interface, plus the interface declaration itself as a generated contract.
package emit

import (
	"fmt"

	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/grammar/ll"
	"github.com/astirlang/astir/nfa"
)

// Unit is everything a backend needs to render one machine: its resolved
// statements, and whichever of the two compiled artifacts its kind
// produced.
type Unit struct {
	Machine    *grammar.Machine
	Automaton  *nfa.PseudoDFA // set when Machine.Kind == grammar.FiniteAutomatonMachine
	Decisions  *ll.Forest     // set when Machine.Kind == grammar.LLParserMachine
	TypeForms  []grammar.TypeForming
	Attributes map[string]grammar.Attributed // by statement name, for field lookups

	// Compact requests the row-displaced byte-indexed transition table
	// (StateMapCompact) over the plain per-state transition list
	// (StateMapEnumerated) for a finite-automaton unit. It has no effect
	// on an LL(k) parser unit.
	Compact bool
}

// BuildUnit gathers the compiled state of an already-initialized machine
// into the shape the backends render from. It does no compilation itself —
// m.Compiled must already hold the *nfa.PseudoDFA or *ll.Forest that
// grammar.Tree.Initialize produced.
func BuildUnit(m *grammar.Machine) (*Unit, error) {
	u := &Unit{Machine: m, Attributes: map[string]grammar.Attributed{}}

	for _, s := range m.Statements() {
		if tf, ok := s.(grammar.TypeForming); ok {
			u.TypeForms = append(u.TypeForms, tf)
		}
		if a, ok := s.(grammar.Attributed); ok {
			u.Attributes[s.Name()] = a
		}
	}

	switch m.Kind {
	case grammar.FiniteAutomatonMachine:
		dfa, ok := m.Compiled.(*nfa.PseudoDFA)
		if !ok {
			return nil, fmt.Errorf("machine %q has not been compiled to a pseudo-DFA", m.Name())
		}
		u.Automaton = dfa
	case grammar.LLParserMachine:
		forest, ok := m.Compiled.(*ll.Forest)
		if !ok {
			return nil, fmt.Errorf("machine %q has not been compiled to a decision forest", m.Name())
		}
		u.Decisions = forest
	}
	return u, nil
}
