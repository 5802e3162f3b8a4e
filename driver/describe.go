package driver

import (
	"fmt"
	"io"

	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/grammar/ll"
	"github.com/astirlang/astir/nfa"
)

// Describe writes a human-readable summary of every machine in tree:
// resolved rootness/terminality for productions, and either the pseudo-DFA
// state count (finite-automaton machines) or the decision-forest size
// (LL(k) parser machines). It emits no target code; it exists purely for
// standalone grammar introspection, the way the original project's own
// tokenizer dumps did.
func Describe(w io.Writer, tree *grammar.Tree) error {
	for _, m := range tree.Machines() {
		fmt.Fprintf(w, "machine %s\n", m.Name())
		switch m.Kind {
		case grammar.FiniteAutomatonMachine:
			fmt.Fprintf(w, "  kind: finite automaton\n")
		case grammar.LLParserMachine:
			fmt.Fprintf(w, "  kind: LL(%d) parser\n", m.K)
		}
		if m.OnName != "" {
			fmt.Fprintf(w, "  on: %s\n", m.OnName)
		}
		if len(m.UsesNames) > 0 {
			fmt.Fprintf(w, "  uses: %v\n", m.UsesNames)
		}

		for _, name := range m.StatementNames() {
			s, _ := m.Statement(name)
			describeStatement(w, s)
		}

		switch c := m.Compiled.(type) {
		case *nfa.PseudoDFA:
			fmt.Fprintf(w, "  states: %d (initial %d)\n", len(c.States), c.Initial)
		case *ll.Forest:
			fmt.Fprintf(w, "  decision points: %d\n", len(c.Decisions))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func describeStatement(w io.Writer, s grammar.Statement) {
	switch v := s.(type) {
	case *grammar.Production:
		fmt.Fprintf(w, "  production %s%s%s\n", v.Name(), rootnessSuffix(v.RootnessVal), terminalitySuffix(v.TerminalityVal))
	case *grammar.Pattern:
		fmt.Fprintf(w, "  pattern %s\n", v.Name())
	case *grammar.Category:
		fmt.Fprintf(w, "  category %s\n", v.Name())
	case *grammar.RegexStmt:
		fmt.Fprintf(w, "  regex %s\n", v.Name())
	}
}

func rootnessSuffix(r grammar.Rootness) string {
	switch r {
	case grammar.RootAccept:
		return " [root]"
	case grammar.RootIgnore:
		return " [ignored]"
	}
	return ""
}

func terminalitySuffix(t grammar.Terminality) string {
	switch t {
	case grammar.Terminal:
		return " (terminal)"
	case grammar.Nonterminal:
		return " (nonterminal)"
	}
	return ""
}
