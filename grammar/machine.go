package grammar

import (
	"fmt"

	verr "github.com/astirlang/astir/error"
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// MachineKind distinguishes a finite-automaton machine (tokenizer) from an
// LL(k) parser machine (tree builder).
type MachineKind int

const (
	FiniteAutomatonMachine MachineKind = iota
	LLParserMachine
)

// Flags are the machine-level defaults that the `with` clause toggles.
type Flags struct {
	ProductionsTerminalByDefault  bool
	ProductionsRootByDefault      bool
	CategoriesRootByDefault       bool
	AmbiguityResolvedByPrecedence bool
}

// ApplyFlagName toggles the field named by a grammar-source flag keyword; it
// reports false for an unrecognized name (a semantic error at the call
// site).
func (f *Flags) ApplyFlagName(name string) bool {
	switch name {
	case "productions_terminal_by_default":
		f.ProductionsTerminalByDefault = true
	case "productions_nonterminal_by_default":
		f.ProductionsTerminalByDefault = false
	case "productions_root_by_default":
		f.ProductionsRootByDefault = true
	case "productions_nonroot_by_default":
		f.ProductionsRootByDefault = false
	case "categories_root_by_default":
		f.CategoriesRootByDefault = true
	case "categories_nonroot_by_default":
		f.CategoriesRootByDefault = false
	case "ambiguity_resolved_by_precedence":
		f.AmbiguityResolvedByPrecedence = true
	case "ambiguity_disallowed":
		f.AmbiguityResolvedByPrecedence = false
	default:
		return false
	}
	return true
}

// Machine is a named recognizer: either a finite automaton or an LL(k)
// parser, composed with other machines through `on` (the single input
// machine) and `uses` (auxiliary references).
type Machine struct {
	NameVal string
	Pos     verr.Position
	Kind    MachineKind
	K       int // lookahead bound, meaningful only for LLParserMachine

	OnName string
	On     *Machine

	UsesNames []string
	Uses      []*Machine

	Flags Flags

	statements    *linkedhashmap.Map // name -> Statement, insertion-ordered
	terminalCount int

	Initialized  bool
	initializing bool

	// Compiled carries the finite-automaton or LL(k) build result, filled
	// in by the respective builder during initialization.
	Compiled any
}

func NewMachine(name string, kind MachineKind, pos verr.Position) *Machine {
	return &Machine{
		NameVal:    name,
		Kind:       kind,
		Pos:        pos,
		statements: linkedhashmap.New(),
	}
}

func (m *Machine) Name() string { return m.NameVal }

// AddStatement registers stmt under its name, erroring on redeclaration
// within the machine (invariant 1).
func (m *Machine) AddStatement(s Statement) error {
	if _, found := m.statements.Get(s.Name()); found {
		return fmt.Errorf("statement %q is declared more than once in machine %q", s.Name(), m.NameVal)
	}
	m.statements.Put(s.Name(), s)
	return nil
}

// Statement looks up a statement by name.
func (m *Machine) Statement(name string) (Statement, bool) {
	v, found := m.statements.Get(name)
	if !found {
		return nil, false
	}
	return v.(Statement), true
}

// StatementNames returns every declared statement name in declaration order.
func (m *Machine) StatementNames() []string {
	keys := m.statements.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.(string)
	}
	return out
}

// Statements returns every statement in declaration order.
func (m *Machine) Statements() []Statement {
	names := m.StatementNames()
	out := make([]Statement, len(names))
	for i, n := range names {
		s, _ := m.Statement(n)
		out[i] = s
	}
	return out
}

// NextTerminalIndex assigns the next machine-scoped terminal-type index,
// starting at 1, so 0 never names a terminal type. Actions are not numbered
// from this counter; a register identifies them by kind, path and target.
func (m *Machine) NextTerminalIndex() int {
	m.terminalCount++
	return m.terminalCount
}

// TerminalCount returns how many terminal-type indices have been assigned.
func (m *Machine) TerminalCount() int { return m.terminalCount }

// IsPurelyTerminalRooted reports whether every root statement of m is a
// terminal production — the precondition a finite-automaton machine's `on`
// target must satisfy (invariant 6).
func (m *Machine) IsPurelyTerminalRooted() bool {
	for _, s := range m.Statements() {
		tf, ok := s.(TypeForming)
		if !ok || tf.Rootness() != RootAccept {
			continue
		}
		prod, ok := s.(*Production)
		if !ok || !prod.IsTerminal() {
			return false
		}
	}
	return true
}

// RootTerminalNames returns the names of every root terminal production, in
// declaration order — the statement-reference alphabet a dependent machine
// consumes via `on`.
func (m *Machine) RootTerminalNames() []string {
	var out []string
	for _, s := range m.Statements() {
		prod, ok := s.(*Production)
		if !ok || prod.RootnessVal != RootAccept || !prod.IsTerminal() {
			continue
		}
		out = append(out, prod.Name())
	}
	return out
}
