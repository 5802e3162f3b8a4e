package emit_test

import (
	"strings"
	"testing"

	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/emit"
	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/grammar/ll"
	"github.com/astirlang/astir/grammar/nfabuilder"
	"github.com/astirlang/astir/nfa"
)

func literal(s string) grammar.RegexNode {
	return &grammar.LiteralNode{Bytes: []byte(s)}
}

// A finite-automaton machine renders a state table plus a struct per
// terminal production; it carries no decision forest.
func TestRenderGoFiniteAutomaton(t *testing.T) {
	tree := grammar.NewTree()
	m := grammar.NewMachine("Lex", grammar.FiniteAutomatonMachine, verr.Position{})
	a := &grammar.Production{NameVal: "A", Machine: m, RootnessVal: grammar.RootAccept, TerminalityVal: grammar.Terminal, RuleNode: literal("a")}
	b := &grammar.Production{NameVal: "B", Machine: m, RootnessVal: grammar.RootAccept, TerminalityVal: grammar.Terminal, RuleNode: literal("b")}
	if err := m.AddStatement(a); err != nil {
		t.Fatal(err)
	}
	if err := m.AddStatement(b); err != nil {
		t.Fatal(err)
	}
	if err := tree.AddMachine(m); err != nil {
		t.Fatal(err)
	}
	if err := tree.Initialize(grammar.BuildHooks{BuildAutomaton: nfabuilder.Build}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.Compiled.(*nfa.PseudoDFA); !ok {
		t.Fatalf("expected *nfa.PseudoDFA, got %T", m.Compiled)
	}

	u, err := emit.BuildUnit(m)
	if err != nil {
		t.Fatalf("BuildUnit: %v", err)
	}
	if u.Automaton == nil {
		t.Fatalf("expected a non-nil automaton on the unit")
	}

	src, err := emit.RenderGo(u, "lex")
	if err != nil {
		t.Fatalf("RenderGo: %v", err)
	}
	out := string(src)

	for _, want := range []string{
		"package lex",
		"var states = []state{",
		"const initialState = 0",
		"type A struct",
		"type B struct",
		"type Builder interface {",
		"func Dispatch(",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered source missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "decide") {
		t.Errorf("a finite-automaton unit should not render any decision functions, got:\n%s", out)
	}
}

// An LL parser machine with a multi-member category renders a decision
// function plus the category interface and its members' marker methods.
func TestRenderGoLLParser(t *testing.T) {
	tree := grammar.NewTree()
	m := grammar.NewMachine("Parse", grammar.LLParserMachine, verr.Position{})
	m.K = 1
	cat := &grammar.Category{NameVal: "Digit", Machine: m}
	zero := &grammar.Production{NameVal: "Zero", Machine: m, TerminalityVal: grammar.Nonterminal, CategoryParentNames_: []string{"Digit"}, RuleNode: literal("0")}
	one := &grammar.Production{NameVal: "One", Machine: m, TerminalityVal: grammar.Nonterminal, CategoryParentNames_: []string{"Digit"}, RuleNode: literal("1")}
	top := &grammar.Production{
		NameVal: "Start", Machine: m, TerminalityVal: grammar.Nonterminal,
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
	if err := tree.Initialize(grammar.BuildHooks{BuildParser: ll.Build}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.Compiled.(*ll.Forest); !ok {
		t.Fatalf("expected *ll.Forest, got %T", m.Compiled)
	}

	u, err := emit.BuildUnit(m)
	if err != nil {
		t.Fatalf("BuildUnit: %v", err)
	}
	if u.Decisions == nil {
		t.Fatalf("expected a non-nil decision forest on the unit")
	}

	src, err := emit.RenderGo(u, "parse")
	if err != nil {
		t.Fatalf("RenderGo: %v", err)
	}
	out := string(src)

	for _, want := range []string{
		"package parse",
		"type Digit interface {",
		"isDigit()",
		"type Zero struct",
		"type One struct",
		"func (*Zero) isDigit() {}",
		"func (*One) isDigit() {}",
		"func decideDigit(",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered source missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "var states = []state{") {
		t.Errorf("an LL parser unit should not render a state table, got:\n%s", out)
	}
}

// Expand substitutes every macro token and re-indents multi-line values to
// the column the token occupied.
func TestExpandReindentsMultilineValues(t *testing.T) {
	tmpl := "func f() {\n\t${{Body}}\n}\n"
	got := emit.Expand(tmpl, map[string]string{"Body": "a := 1\nb := 2"})
	want := "func f() {\n\ta := 1\n\tb := 2\n}\n"
	if got != want {
		t.Fatalf("Expand mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}
