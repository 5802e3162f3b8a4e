package nfabuilder_test

import (
	"testing"

	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/grammar/nfabuilder"
	"github.com/astirlang/astir/nfa"
	"github.com/astirlang/astir/register"
)

func hooks() grammar.BuildHooks {
	return grammar.BuildHooks{BuildAutomaton: nfabuilder.Build}
}

func literal(s string) grammar.RegexNode {
	return &grammar.LiteralNode{Bytes: []byte(s)}
}

// S1-style scenario: two root terminal productions compile to a pseudo-DFA
// whose accepting paths both carry TerminalizeContext and ElevateContext.
func TestBuildTwoLiteralTerminals(t *testing.T) {
	tree := grammar.NewTree()
	m := grammar.NewMachine("Lex", grammar.FiniteAutomatonMachine, verr.Position{Row: 1})
	a := &grammar.Production{NameVal: "A", Machine: m, RootnessVal: grammar.RootAccept, TerminalityVal: grammar.Terminal, RuleNode: literal("a")}
	bprod := &grammar.Production{NameVal: "B", Machine: m, RootnessVal: grammar.RootAccept, TerminalityVal: grammar.Terminal, RuleNode: literal("b")}
	if err := m.AddStatement(a); err != nil {
		t.Fatal(err)
	}
	if err := m.AddStatement(bprod); err != nil {
		t.Fatal(err)
	}
	if err := tree.AddMachine(m); err != nil {
		t.Fatal(err)
	}

	if err := tree.Initialize(hooks()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dfa, ok := m.Compiled.(*nfa.PseudoDFA)
	if !ok {
		t.Fatalf("expected *nfa.PseudoDFA, got %T", m.Compiled)
	}

	initial := dfa.States[dfa.Initial]
	if len(initial.Transitions) != 2 {
		t.Fatalf("expected 2 transitions out of the initial state, got %d", len(initial.Transitions))
	}

	for _, tr := range initial.Transitions {
		target := dfa.States[tr.Target]
		if !target.Final {
			t.Fatalf("transition target should be final")
		}
		var acts []register.Action
		acts = append(acts, target.Entry.Actions()...)
		for _, finalTr := range target.Transitions {
			acts = append(acts, finalTr.Actions.Actions()...)
		}
		foundTerminalize, foundElevate := false, false
		for _, a := range acts {
			if a.Kind == register.TerminalizeContext {
				foundTerminalize = true
			}
			if a.Kind == register.ElevateContext {
				foundElevate = true
			}
		}
		if !foundTerminalize || !foundElevate {
			t.Fatalf("expected TerminalizeContext and ElevateContext on accepting path, got %v", acts)
		}
	}
}

// A root production under a category is reached through the category's
// CreateContext, union of members, wrapping construction.
func TestBuildCategoryMembersUnioned(t *testing.T) {
	tree := grammar.NewTree()
	m := grammar.NewMachine("Lex", grammar.FiniteAutomatonMachine, verr.Position{})

	cat := &grammar.Category{NameVal: "Digit", Machine: m}
	zero := &grammar.Production{NameVal: "Zero", Machine: m, TerminalityVal: grammar.Terminal, CategoryParentNames_: []string{"Digit"}, RuleNode: literal("0")}
	one := &grammar.Production{NameVal: "One", Machine: m, TerminalityVal: grammar.Terminal, CategoryParentNames_: []string{"Digit"}, RuleNode: literal("1")}
	top := &grammar.Production{
		NameVal: "Num", Machine: m, RootnessVal: grammar.RootAccept, TerminalityVal: grammar.Terminal,
		RuleNode: &grammar.ReferenceNode{Name: "Digit"},
	}

	for _, s := range []grammar.Statement{cat, zero, one, top} {
		if err := m.AddStatement(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := tree.AddMachine(m); err != nil {
		t.Fatal(err)
	}

	if err := tree.Initialize(hooks()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dfa, ok := m.Compiled.(*nfa.PseudoDFA)
	if !ok {
		t.Fatalf("expected *nfa.PseudoDFA, got %T", m.Compiled)
	}
	if len(dfa.States) == 0 {
		t.Fatalf("expected a non-empty pseudo-DFA")
	}
	initial := dfa.States[dfa.Initial]
	if len(initial.Transitions) != 2 {
		t.Fatalf("expected 2 disjoint byte transitions ('0' and '1'), got %d", len(initial.Transitions))
	}
}

// An unbounded repetition (min=0) must accept zero occurrences: the initial
// state of its standalone NFA is final.
func TestBuildUnboundedRepetitionAcceptsZero(t *testing.T) {
	tree := grammar.NewTree()
	m := grammar.NewMachine("Lex", grammar.FiniteAutomatonMachine, verr.Position{})
	star := &grammar.Production{
		NameVal: "Digits", Machine: m, RootnessVal: grammar.RootAccept, TerminalityVal: grammar.Terminal,
		RuleNode: &grammar.Repetitive{Min: 0, Max: grammar.Infinite, Atom: &grammar.ByteRangeNode{Lo: '0', Hi: '9'}},
	}
	if err := m.AddStatement(star); err != nil {
		t.Fatal(err)
	}
	if err := tree.AddMachine(m); err != nil {
		t.Fatal(err)
	}

	if err := tree.Initialize(hooks()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dfa, ok := m.Compiled.(*nfa.PseudoDFA)
	if !ok {
		t.Fatalf("expected *nfa.PseudoDFA, got %T", m.Compiled)
	}
	if !dfa.States[dfa.Initial].Final {
		t.Fatalf("a min=0 repetition must accept the empty match at the initial state")
	}
	if len(dfa.States[dfa.Initial].Transitions) != 1 {
		t.Fatalf("expected exactly one disjoint digit transition looping back, got %d", len(dfa.States[dfa.Initial].Transitions))
	}
}
