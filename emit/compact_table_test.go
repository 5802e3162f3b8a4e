package emit_test

import (
	"strings"
	"testing"

	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/emit"
	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/nfa"
	"github.com/astirlang/astir/symbol"
)

func dfaMachine(name string, states []*nfa.DFAState) (*grammar.Machine, *nfa.PseudoDFA) {
	m := grammar.NewMachine(name, grammar.FiniteAutomatonMachine, verr.Position{})
	dfa := &nfa.PseudoDFA{States: states, Initial: 0}
	m.Compiled = dfa
	return m, dfa
}

// A two-state automaton whose transitions are all byte ranges renders a
// row-displaced table and a working lookupCompact.
func TestStateMapCompactRendersRowDisplacedTable(t *testing.T) {
	states := []*nfa.DFAState{
		{
			Final: false,
			Transitions: []nfa.DFATransition{
				{Target: 1, Condition: symbol.ByteRange{Lo: '0', Hi: '9'}},
			},
		},
		{Final: true},
	}
	m, dfa := dfaMachine("Lex", states)
	u := &emit.Unit{Machine: m, Automaton: dfa, Compact: true}

	out, err := u.StateMapCompact()
	if err != nil {
		t.Fatalf("StateMapCompact: %v", err)
	}
	for _, want := range []string{
		"var compactStates = []state{",
		"const initialState = 0",
		"var uniqueRowOf = []int{",
		"var rowBase = []int{",
		"var compactEntries = []int{",
		"var compactBounds = []int{",
		"func lookupCompact(state, b int) int {",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}
}

// A transition keyed on a reference to another machine's terminal set can't
// be indexed by byte; StateMapCompact reports an error rather than
// silently dropping the transition, so the caller can fall back to
// StateMapEnumerated.
func TestStateMapCompactRejectsNonByteRangeCondition(t *testing.T) {
	states := []*nfa.DFAState{
		{
			Transitions: []nfa.DFATransition{
				{Target: 1, Condition: symbol.NewStmtRef("Other", "A")},
			},
		},
		{Final: true},
	}
	m, dfa := dfaMachine("Lex", states)
	u := &emit.Unit{Machine: m, Automaton: dfa, Compact: true}

	_, err := u.StateMapCompact()
	if err == nil {
		t.Fatalf("expected an error for a non-byte-range condition")
	}
}
