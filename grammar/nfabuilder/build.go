// Package nfabuilder walks a semantic tree's statements and regex trees and
// produces the NFA each describes, following the translation rules for every
// regex case (disjunction, conjunction, repetition, literals, references,
// and so on) plus the action-register translation that injects
// InitiateCapture ahead of Capture/Append/Prepend. Build is the entry point
// wired into grammar.BuildHooks.BuildAutomaton.
package nfabuilder

import (
	"fmt"

	"github.com/astirlang/astir/automaton"
	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/nfa"
	"github.com/astirlang/astir/register"
	"github.com/astirlang/astir/symbol"
)

// Build compiles every root statement of m into NFAs, unions them, and
// stores the resulting pseudo-DFA on m.Compiled.
func Build(m *grammar.Machine) error {
	b := &builder{m: m}
	roots := rootStatements(m)
	if len(roots) == 0 {
		return &verr.SpecError{Kind: verr.KindGeneration, Cause: fmt.Errorf("machine %q has no root statement", m.Name()), Pos: m.Pos}
	}

	var result *nfa.NFA
	for _, s := range roots {
		sub, err := b.buildRootedMember("", s)
		if err != nil {
			return &verr.SpecError{Kind: verr.KindGeneration, Cause: err, Pos: s.Pos()}
		}
		if result == nil {
			result = sub
		} else {
			result.OrWith(sub, false)
		}
	}

	m.Compiled = result.BuildPseudoDFA()
	return nil
}

func rootStatements(m *grammar.Machine) []grammar.Statement {
	var out []grammar.Statement
	for _, s := range m.Statements() {
		tf, ok := s.(grammar.TypeForming)
		if !ok {
			continue
		}
		if tf.Rootness() == grammar.RootAccept || tf.Rootness() == grammar.RootIgnore {
			out = append(out, s)
		}
	}
	return out
}

type builder struct {
	m *grammar.Machine
}

func extendPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "__" + name
}

func fieldOf(f *grammar.Field) register.Field {
	if f == nil {
		return nil
	}
	return f
}

// translateActions splits a node's suffixed actions into the register fired
// on entry (initial) and the one fired on match (final): Capture/Append/
// Prepend also inject an InitiateCapture into the initial register, per the
// action-translation rule. Every other kind maps 1:1 into the final
// register.
func translateActions(path string, actions []grammar.RegexAction) (initial, final *register.Register) {
	initial, final = register.New(), register.New()
	for _, a := range actions {
		switch a.Kind {
		case register.Capture, register.Append, register.Prepend:
			initial.Append(register.Action{Kind: register.InitiateCapture, Path: path, Target: a.FieldName})
			final.Append(register.Action{Kind: a.Kind, Path: path, Target: a.FieldName, Field: fieldOf(a.Field)})
		default:
			final.Append(register.Action{Kind: a.Kind, Path: path, Target: a.FieldName, Field: fieldOf(a.Field)})
		}
	}
	return initial, final
}

func (b *builder) buildRule(path string, n grammar.RegexNode) (*nfa.NFA, error) {
	switch v := n.(type) {
	case *grammar.Disjunctive:
		return b.buildDisjunction(path, v)
	case *grammar.Conjunctive:
		return b.buildConjunction(path, v)
	case *grammar.Repetitive:
		return b.buildRepetition(path, v)
	case *grammar.EmptyNode:
		return buildEmpty(path, v.Actions)
	case *grammar.ByteRangeNode:
		return buildSingleCondition(path, symbol.ByteRange{Lo: v.Lo, Hi: v.Hi}, v.Actions)
	case *grammar.LiteralNode:
		return b.buildLiteral(path, v)
	case *grammar.AnyOfNode:
		return buildAnyOf(path, v)
	case *grammar.AnyExceptNode:
		return buildAnyExcept(path, v)
	case *grammar.ArbitraryNode:
		return b.buildArbitrary(path, v)
	case *grammar.ReferenceNode:
		return b.buildReference(path, v)
	default:
		return nil, fmt.Errorf("nfabuilder: unsupported regex node %T", n)
	}
}

func (b *builder) buildDisjunction(path string, v *grammar.Disjunctive) (*nfa.NFA, error) {
	if len(v.Children) == 0 {
		return buildEmpty(path, v.Actions)
	}
	result, err := b.buildRule(path, v.Children[0])
	if err != nil {
		return nil, err
	}
	for _, c := range v.Children[1:] {
		sub, err := b.buildRule(path, c)
		if err != nil {
			return nil, err
		}
		result.OrWith(sub, false)
	}
	initial, final := translateActions(path, v.Actions)
	result.AddInitialActions(initial)
	result.AddFinalActions(final)
	return result, nil
}

func (b *builder) buildConjunction(path string, v *grammar.Conjunctive) (*nfa.NFA, error) {
	result := nfa.New()
	result.SetFinal(result.Initial(), true)
	for _, c := range v.Children {
		sub, err := b.buildRule(path, c)
		if err != nil {
			return nil, err
		}
		result.AndWith(sub, false)
	}
	initial, final := translateActions(path, v.Actions)
	result.AddInitialActions(initial)
	result.AddFinalActions(final)
	return result, nil
}

// buildRepetition realizes a ⟨min,max⟩ repetition as a chain of atom copies:
// the first min copies are mandatory, the remainder (up to max, or two
// copies when max is unbounded, the last wired with opt-out ε back-edges to
// the states that preceded it) are each
// individually bypassable by re-marking the state that preceded them as
// final. This produces the same language and the same "loop points survive
// disjoining" invariant as the spec's long/short-branch description, via a
// simpler uniform construction.
func (b *builder) buildRepetition(path string, v *grammar.Repetitive) (*nfa.NFA, error) {
	if v.Max == 0 {
		na := nfa.New()
		na.SetFinal(na.Initial(), true)
		initial, final := translateActions(path, v.Actions)
		combined := register.Union(initial, final)
		na.State(na.Initial()).Payload = register.Union(na.State(na.Initial()).Payload, combined)
		return na, nil
	}

	infinite := v.Max == grammar.Infinite
	totalUnits := v.Max
	if infinite {
		totalUnits = v.Min + 2
	}
	mandatoryCount := v.Min

	result := nfa.New()
	result.SetFinal(result.Initial(), true)

	for i := 0; i < totalUnits; i++ {
		atomNFA, err := b.buildRule(path, v.Atom)
		if err != nil {
			return nil, err
		}
		isOptional := i >= mandatoryCount
		preFinals := append([]automaton.StateID{}, result.Finals()...)
		result.AndWith(atomNFA, isOptional)
		if isOptional {
			for _, f := range preFinals {
				result.SetFinal(f, true)
			}
		}
		if infinite && i == totalUnits-1 {
			preSet := map[automaton.StateID]bool{}
			for _, f := range preFinals {
				preSet[f] = true
			}
			for _, nf := range result.Finals() {
				if preSet[nf] {
					continue
				}
				for _, pf := range preFinals {
					result.AddTransition(nf, automaton.Transition[*register.Register]{
						Target: pf, Condition: symbol.Epsilon{}, Payload: register.New(), OptOut: true,
					})
				}
			}
		}
	}

	initial, final := translateActions(path, v.Actions)
	result.AddInitialActions(initial)
	result.AddFinalActions(final)
	return result, nil
}

func buildEmpty(path string, actions []grammar.RegexAction) (*nfa.NFA, error) {
	na := nfa.New()
	final := na.AddState()
	initial, finalReg := translateActions(path, actions)
	combined := register.Union(initial, finalReg)
	na.AddTransition(na.Initial(), automaton.Transition[*register.Register]{Target: final, Condition: symbol.Epsilon{}, Payload: combined})
	na.SetFinal(final, true)
	return na, nil
}

func buildSingleCondition(path string, cond symbol.Group, actions []grammar.RegexAction) (*nfa.NFA, error) {
	na := nfa.New()
	final := na.AddState()
	initial, finalReg := translateActions(path, actions)
	na.AddTransition(na.Initial(), automaton.Transition[*register.Register]{Target: final, Condition: cond, Payload: initial})
	na.SetFinal(final, true)
	na.AddFinalActions(finalReg)
	return na, nil
}

func (b *builder) buildLiteral(path string, v *grammar.LiteralNode) (*nfa.NFA, error) {
	raw := b.m.On == nil
	if raw && len(v.Bytes) > 1 {
		na := nfa.New()
		cur := na.Initial()
		for _, byteVal := range v.Bytes {
			next := na.AddState()
			na.AddTransition(cur, automaton.Transition[*register.Register]{
				Target: next, Condition: symbol.ByteRange{Lo: byteVal, Hi: byteVal}, Payload: register.New(),
			})
			cur = next
		}
		na.SetFinal(cur, true)
		initial, final := translateActions(path, v.Actions)
		na.AddInitialActions(initial)
		na.AddFinalActions(final)
		return na, nil
	}
	return buildSingleCondition(path, symbol.Literal{Bytes: v.Bytes}, v.Actions)
}

func buildAnyOf(path string, v *grammar.AnyOfNode) (*nfa.NFA, error) {
	na := nfa.New()
	final := na.AddState()
	initial, finalReg := translateActions(path, v.Actions)
	for _, r := range v.Ranges {
		na.AddTransition(na.Initial(), automaton.Transition[*register.Register]{
			Target: final, Condition: symbol.ByteRange{Lo: r.Lo, Hi: r.Hi}, Payload: initial.Copy(),
		})
	}
	na.SetFinal(final, true)
	na.AddFinalActions(finalReg)
	return na, nil
}

func buildAnyExcept(path string, v *grammar.AnyExceptNode) (*nfa.NFA, error) {
	na := nfa.New()
	final := na.AddState()
	initial, finalReg := translateActions(path, v.Actions)
	for _, p := range complementRanges(v.Ranges) {
		na.AddTransition(na.Initial(), automaton.Transition[*register.Register]{
			Target: final, Condition: p, Payload: initial.Copy(),
		})
	}
	na.SetFinal(final, true)
	na.AddFinalActions(finalReg)
	return na, nil
}

// complementRanges computes [0,255] minus the union of ranges, by repeatedly
// disjoining the surviving pieces away from each excluded range and keeping
// only the part owned solely by the surviving side.
func complementRanges(ranges []grammar.ByteRangeNode) []symbol.ByteRange {
	pieces := []symbol.ByteRange{{Lo: 0, Hi: 0xff}}
	for _, ex := range ranges {
		var next []symbol.ByteRange
		exGroup := symbol.ByteRange{Lo: ex.Lo, Hi: ex.Hi}
		for _, p := range pieces {
			for _, d := range p.DisjoinFrom(exGroup) {
				if d.Owner == symbol.OwnerSelf {
					next = append(next, d.Group.(symbol.ByteRange))
				}
			}
		}
		pieces = next
	}
	return pieces
}

func (b *builder) buildArbitrary(path string, v *grammar.ArbitraryNode) (*nfa.NFA, error) {
	var cond symbol.Group
	if b.m.On == nil {
		cond = symbol.ByteRange{Lo: 0, Hi: 0xff}
	} else {
		cond = symbol.NewStmtRef(b.m.On.Name(), b.m.On.RootTerminalNames()...)
	}
	return buildSingleCondition(path, cond, v.Actions)
}

func (b *builder) buildReference(path string, ref *grammar.ReferenceNode) (*nfa.NFA, error) {
	target := ref.Resolved
	if target == nil {
		return nil, fmt.Errorf("nfabuilder: unresolved reference %q", ref.Name)
	}

	if ref.DefiningMachine != b.m {
		na := nfa.New()
		final := na.AddState()
		na.AddTransition(na.Initial(), automaton.Transition[*register.Register]{
			Target: final, Condition: symbol.NewStmtRef(ref.DefiningMachine.Name(), target.Name()), Payload: register.New(),
		})
		na.SetFinal(final, true)
		initial, finalReg := translateActions("", ref.Actions)
		na.AddInitialActions(initial)
		na.AddFinalActions(finalReg)
		return na, nil
	}

	sub, err := b.buildStatementBody(path, target)
	if err != nil {
		return nil, err
	}
	actionPath := ""
	if _, ok := target.(grammar.TypeForming); ok {
		actionPath = extendPath(path, target.Name())
	}
	initial, finalReg := translateActions(actionPath, ref.Actions)
	sub.AddInitialActions(initial)
	sub.AddFinalActions(finalReg)
	return sub, nil
}

func (b *builder) buildStatementBody(path string, s grammar.Statement) (*nfa.NFA, error) {
	switch v := s.(type) {
	case *grammar.RegexStmt:
		return b.buildRule(path, v.Rule())
	case *grammar.Production:
		extended := extendPath(path, v.Name())
		sub, err := b.buildRule(extended, v.Rule())
		if err != nil {
			return nil, err
		}
		sub.AddInitialActions(register.New(register.Action{Kind: register.CreateContext, Path: path, Target: v.Name()}))
		sub.RegisterContext(path, v.Name())
		return sub, nil
	case *grammar.Pattern:
		extended := extendPath(path, v.Name())
		return b.buildRule(extended, v.Rule())
	case *grammar.Category:
		return b.buildCategoryReference(path, v)
	default:
		return nil, fmt.Errorf("nfabuilder: unsupported statement type %T", s)
	}
}

// buildCategoryReference implements the "category reference as statement
// body" case: union every statement that names cat as a category parent,
// each concentrated and tagged with TerminalizeContext (if a terminal
// production) then Elevate/IgnoreContext by rootness, prefixed by a
// CreateContext for the category itself.
func (b *builder) buildCategoryReference(path string, cat *grammar.Category) (*nfa.NFA, error) {
	members := b.categoryMembers(cat)
	if len(members) == 0 {
		return nil, fmt.Errorf("nfabuilder: category %q has no members", cat.Name())
	}
	var result *nfa.NFA
	for _, member := range members {
		sub, err := b.buildRootedMember(path, member)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = sub
		} else {
			result.OrWith(sub, false)
		}
	}
	result.AddInitialActions(register.New(register.Action{Kind: register.CreateContext, Path: path, Target: cat.Name()}))
	result.RegisterContext(path, cat.Name())
	return result, nil
}

func (b *builder) categoryMembers(cat *grammar.Category) []grammar.Statement {
	var out []grammar.Statement
	for _, s := range b.m.Statements() {
		att, ok := s.(grammar.Attributed)
		if !ok {
			continue
		}
		for _, p := range att.CategoryParents() {
			if p == cat {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// buildRootedMember builds a type-forming statement's NFA the same way
// whether it is reached as a category member or as a machine root:
// concentrate its finals, then fire TerminalizeContext (if a terminal
// production) and Elevate/IgnoreContext by rootness.
func (b *builder) buildRootedMember(path string, s grammar.Statement) (*nfa.NFA, error) {
	sub, err := b.buildStatementBody(path, s)
	if err != nil {
		return nil, err
	}
	tf, ok := s.(grammar.TypeForming)
	if !ok {
		return sub, nil
	}
	sub.ConcentrateFinalStates(register.New())

	act := register.New()
	memberPath := extendPath(path, s.Name())
	if prod, ok := s.(*grammar.Production); ok && prod.IsTerminal() {
		act.Append(register.Action{Kind: register.TerminalizeContext, Path: memberPath})
	}
	if tf.Rootness() == grammar.RootIgnore {
		act.Append(register.Action{Kind: register.IgnoreContext, Path: memberPath})
	} else {
		act.Append(register.Action{Kind: register.ElevateContext, Path: memberPath})
	}
	sub.AddFinalActions(act)
	return sub, nil
}
