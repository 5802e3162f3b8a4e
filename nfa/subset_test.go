package nfa

import (
	"testing"

	"github.com/astirlang/astir/automaton"
	"github.com/astirlang/astir/register"
	"github.com/astirlang/astir/symbol"
)

func literal(s string) *NFA {
	n := New()
	cur := n.Initial()
	for i := 0; i < len(s); i++ {
		next := n.AddState()
		n.AddTransition(cur, automaton.Transition[*register.Register]{
			Target:    next,
			Condition: symbol.ByteRange{Lo: s[i], Hi: s[i]},
		})
		cur = next
	}
	n.SetFinal(cur, true)
	return n
}

// S2: "ab" | "ac" — after subset construction, the initial state has one
// outgoing transition on 'a'; the resulting state has two outgoing
// transitions on 'b' and 'c'; both lead to accepting states; 4 states total.
func TestSubsetConstructionSharedPrefix(t *testing.T) {
	ab := literal("ab")
	ac := literal("ac")
	ab.OrWith(ac, false)

	dfa := ab.BuildPseudoDFA()

	if len(dfa.States) != 4 {
		t.Fatalf("expected 4 reachable states, got %d", len(dfa.States))
	}
	init := dfa.States[dfa.Initial]
	if len(init.Transitions) != 1 {
		t.Fatalf("expected 1 outgoing transition from initial state, got %d", len(init.Transitions))
	}
	br, ok := init.Transitions[0].Condition.(symbol.ByteRange)
	if !ok || br.Lo != 'a' || br.Hi != 'a' {
		t.Fatalf("expected initial transition on 'a', got %v", init.Transitions[0].Condition)
	}

	mid := dfa.States[init.Transitions[0].Target]
	if len(mid.Transitions) != 2 {
		t.Fatalf("expected 2 outgoing transitions from the post-'a' state, got %d", len(mid.Transitions))
	}
	seen := map[byte]bool{}
	for _, tr := range mid.Transitions {
		br := tr.Condition.(symbol.ByteRange)
		if br.Lo != br.Hi {
			t.Fatalf("expected single-byte condition, got %v", br)
		}
		seen[br.Lo] = true
		if !dfa.States[tr.Target].Final {
			t.Fatalf("expected target of %q to be final", string(br.Lo))
		}
	}
	if !seen['b'] || !seen['c'] {
		t.Fatalf("expected transitions on 'b' and 'c', got %v", seen)
	}
}

// S3: " "+ has exactly 2 reachable states, the second final with a self-loop
// on ' '.
func TestSubsetConstructionRepetitionSelfLoop(t *testing.T) {
	// Build: s0 --' '--> s1(final); s1 --' '--> s1 (back-edge), opt-out.
	n := New()
	s1 := n.AddState()
	n.AddTransition(0, automaton.Transition[*register.Register]{Target: s1, Condition: symbol.ByteRange{Lo: ' ', Hi: ' '}})
	n.AddTransition(s1, automaton.Transition[*register.Register]{Target: s1, Condition: symbol.ByteRange{Lo: ' ', Hi: ' '}, OptOut: true})
	n.SetFinal(s1, true)

	dfa := n.BuildPseudoDFA()
	if len(dfa.States) != 2 {
		t.Fatalf("expected 2 reachable states, got %d", len(dfa.States))
	}
	second := dfa.States[dfa.States[dfa.Initial].Transitions[0].Target]
	if !second.Final {
		t.Fatalf("expected second state to be final")
	}
	if len(second.Transitions) != 1 || second.Transitions[0].Target != dfa.States[dfa.Initial].Transitions[0].Target {
		t.Fatalf("expected a self-loop on the second state, got %v", second.Transitions)
	}
}

// P3: every DFA state has at most one outgoing transition per pairwise
// disjoint condition.
func TestSubsetConstructionDeterminism(t *testing.T) {
	ab := literal("ab")
	ac := literal("ac")
	ax := literal("a")
	ab.OrWith(ac, false)
	ab.OrWith(ax, false)

	dfa := ab.BuildPseudoDFA()
	for _, st := range dfa.States {
		for i := 0; i < len(st.Transitions); i++ {
			for j := i + 1; j < len(st.Transitions); j++ {
				ci, cj := st.Transitions[i].Condition, st.Transitions[j].Condition
				if !ci.Disjoint(cj) && !ci.Equals(cj) {
					t.Fatalf("non-disjoint, non-equal sibling transitions: %v vs %v", ci, cj)
				}
				if ci.Equals(cj) {
					t.Fatalf("duplicate transitions on condition %v", ci)
				}
			}
		}
	}
}

// S1-style: one terminal's final actions land on the final state's entry
// register as TerminalizeContext then ElevateContext (modeled directly at
// the NFA level; full machine wiring is exercised in the grammar package).
func TestConcentrateAndFinalActions(t *testing.T) {
	n := literal("a")
	n.ConcentrateFinalStates(register.New(register.Action{Kind: register.TerminalizeContext, Path: "m_token", Target: ""}))
	n.AddFinalActions(register.New(register.Action{Kind: register.ElevateContext, Path: "m_token", Target: ""}))

	dfa := n.BuildPseudoDFA()
	var finalEntryActions []register.Action
	for _, st := range dfa.States {
		if st.Final {
			finalEntryActions = st.Entry.Actions()
		}
	}
	if len(finalEntryActions) != 2 {
		t.Fatalf("expected 2 accumulated actions on the final state's entry register, got %v", finalEntryActions)
	}
	if finalEntryActions[0].Kind != register.TerminalizeContext || finalEntryActions[1].Kind != register.ElevateContext {
		t.Fatalf("expected TerminalizeContext then ElevateContext, got %v", finalEntryActions)
	}
}
