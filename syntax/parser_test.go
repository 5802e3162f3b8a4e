package syntax_test

import (
	"testing"

	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/grammar/nfabuilder"
	"github.com/astirlang/astir/nfa"
	"github.com/astirlang/astir/syntax"
)

const lexSource = `
finite automaton Lex {
	root terminal Digits { raw text; } = [0-9]+ @capture:text;
	ignored terminal Space = " "+;
}
`

func TestParseFiniteAutomatonAndInitialize(t *testing.T) {
	tree, err := syntax.Parse(lexSource, "<test>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m, ok := tree.Machine("Lex")
	if !ok {
		t.Fatalf("expected a machine named Lex")
	}
	if m.Kind != grammar.FiniteAutomatonMachine {
		t.Fatalf("expected a finite-automaton machine")
	}
	digits, ok := m.Statement("Digits")
	if !ok {
		t.Fatalf("expected a Digits production")
	}
	prod, ok := digits.(*grammar.Production)
	if !ok {
		t.Fatalf("expected Digits to be a *grammar.Production, got %T", digits)
	}
	if prod.RootnessVal != grammar.RootAccept || prod.TerminalityVal != grammar.Terminal {
		t.Fatalf("expected Digits to be root+terminal, got rootness=%v terminality=%v", prod.RootnessVal, prod.TerminalityVal)
	}

	if err := tree.Initialize(grammar.BuildHooks{BuildAutomaton: nfabuilder.Build}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, ok := m.Compiled.(*nfa.PseudoDFA); !ok {
		t.Fatalf("expected the machine to compile to a pseudo-DFA, got %T", m.Compiled)
	}
}

const parserSource = `
LL(1) parser P {
	category Digit;
	nonterminal production Zero: Digit = "0";
	nonterminal production One: Digit = "1";
	nonterminal production Start = Digit;
}
`

func TestParseLLParserMachine(t *testing.T) {
	tree, err := syntax.Parse(parserSource, "<test>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m, ok := tree.Machine("P")
	if !ok {
		t.Fatalf("expected a machine named P")
	}
	if m.Kind != grammar.LLParserMachine || m.K != 1 {
		t.Fatalf("expected an LL(1) parser machine, got kind=%v k=%d", m.Kind, m.K)
	}
	zero, ok := m.Statement("Zero")
	if !ok {
		t.Fatalf("expected a Zero production")
	}
	prod, ok := zero.(*grammar.Production)
	if !ok {
		t.Fatalf("expected Zero to be a *grammar.Production, got %T", zero)
	}
	if len(prod.CategoryParentNames_) != 1 || prod.CategoryParentNames_[0] != "Digit" {
		t.Fatalf("expected Zero to name Digit as its category parent, got %v", prod.CategoryParentNames_)
	}
}

func TestParseWithFlagsOnAndUses(t *testing.T) {
	src := `
	finite automaton Lex with productions_root_by_default, ambiguity_resolved_by_precedence {
		terminal A = "a";
	}
	LL(2) parser P on Lex uses Lex {
		nonterminal production Start = A;
	}
	`
	tree, err := syntax.Parse(src, "<test>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	lex, ok := tree.Machine("Lex")
	if !ok {
		t.Fatalf("expected a machine named Lex")
	}
	if !lex.Flags.ProductionsRootByDefault || !lex.Flags.AmbiguityResolvedByPrecedence {
		t.Fatalf("expected both flags set, got %+v", lex.Flags)
	}
	p, ok := tree.Machine("P")
	if !ok {
		t.Fatalf("expected a machine named P")
	}
	if p.OnName != "Lex" {
		t.Fatalf("expected on=Lex, got %q", p.OnName)
	}
	if len(p.UsesNames) != 1 || p.UsesNames[0] != "Lex" {
		t.Fatalf("expected uses=[Lex], got %v", p.UsesNames)
	}
}

func TestParseRejectsBadSyntax(t *testing.T) {
	if _, err := syntax.Parse("finite automaton { }", "<test>"); err == nil {
		t.Fatalf("expected a parse error for a missing machine name")
	}
}
