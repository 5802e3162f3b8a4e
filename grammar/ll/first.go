// Package ll computes LL(k) first-sets and builds the decision trees an
// LL(k) parser machine dispatches on, per statement and per disjunction.
// Build is the entry point wired into grammar.BuildHooks.BuildParser.
package ll

import (
	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/symbol"
)

// empty is the sentinel meaning "this path has already been fully derived
// at the requested depth" — the lookahead equivalent of an ε-transition.
// Reusing symbol.Epsilon keeps one "nothing consumed here" vocabulary
// across the NFA and the LL(k) builder instead of inventing a second one.
var empty symbol.Group = symbol.Epsilon{}

func isEmpty(g symbol.Group) bool { return g.Equals(empty) }

// dedupGroups removes structurally-equal duplicates, preserving first-seen
// order.
func dedupGroups(in []symbol.Group) []symbol.Group {
	var out []symbol.Group
	for _, g := range in {
		found := false
		for _, o := range out {
			if o.Equals(g) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, g)
		}
	}
	return out
}

// Firster computes, for a regex tree or statement body belonging to
// machine m, the set of symbols that can appear at lookahead position
// len(prefix) given that the preceding len(prefix) symbols of input have
// already matched prefix exactly. A result containing empty means the
// subject can be fully derived in exactly len(prefix) symbols along some
// path — i.e. there is nothing more to say at this depth along that path.
type Firster struct {
	m *grammar.Machine
}

func NewFirster(m *grammar.Machine) *Firster { return &Firster{m: m} }

// First dispatches over every grammar.RegexNode case named in the NFA
// builder's sibling visitor, adapted to prefix-conditioned lookahead.
func (f *Firster) First(n grammar.RegexNode, prefix []symbol.Group) []symbol.Group {
	switch v := n.(type) {
	case *grammar.Disjunctive:
		var out []symbol.Group
		for _, c := range v.Children {
			out = append(out, f.First(c, prefix)...)
		}
		return dedupGroups(out)
	case *grammar.Conjunctive:
		return dedupGroups(f.firstSequence(v.Children, prefix))
	case *grammar.Repetitive:
		return dedupGroups(f.firstRepetitive(v, prefix))
	case *grammar.EmptyNode:
		if len(prefix) == 0 {
			return []symbol.Group{empty}
		}
		return nil
	case *grammar.ByteRangeNode:
		return f.firstAtomic(prefix, symbol.ByteRange{Lo: v.Lo, Hi: v.Hi})
	case *grammar.LiteralNode:
		return f.firstAtomic(prefix, symbol.Literal{Bytes: v.Bytes})
	case *grammar.AnyOfNode:
		var groups []symbol.Group
		for _, r := range v.Ranges {
			groups = append(groups, symbol.ByteRange{Lo: r.Lo, Hi: r.Hi})
		}
		return f.firstAtomicSet(prefix, groups)
	case *grammar.AnyExceptNode:
		var groups []symbol.Group
		for _, r := range complementRanges(v.Ranges) {
			groups = append(groups, r)
		}
		return f.firstAtomicSet(prefix, groups)
	case *grammar.ArbitraryNode:
		return f.firstAtomicSet(prefix, f.arbitraryAlphabet())
	case *grammar.ReferenceNode:
		return f.firstReference(v, prefix)
	default:
		return nil
	}
}

// FirstOfStatement is First's entry point for a named statement body: a
// category unions its members' first-sets, an attributed/regex statement
// defers to its rule.
func (f *Firster) FirstOfStatement(s grammar.Statement, prefix []symbol.Group) []symbol.Group {
	switch v := s.(type) {
	case *grammar.Category:
		var out []symbol.Group
		for _, member := range categoryMembers(f.m, v) {
			out = append(out, f.FirstOfStatement(member, prefix)...)
		}
		return dedupGroups(out)
	case grammar.RuleCarrying:
		return f.First(v.Rule(), prefix)
	default:
		return nil
	}
}

func categoryMembers(m *grammar.Machine, cat *grammar.Category) []grammar.Statement {
	var out []grammar.Statement
	for _, s := range m.Statements() {
		a, ok := s.(grammar.Attributed)
		if !ok {
			continue
		}
		for _, p := range a.CategoryParents() {
			if p == cat {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// firstAtomic handles any single-symbol atomic node that always occupies
// exactly one lookahead position regardless of its own internal width (a
// multi-byte literal still consumes one logical "symbol").
func (f *Firster) firstAtomic(prefix []symbol.Group, g symbol.Group) []symbol.Group {
	switch len(prefix) {
	case 0:
		return []symbol.Group{g}
	case 1:
		return []symbol.Group{empty}
	default:
		return nil
	}
}

func (f *Firster) firstAtomicSet(prefix []symbol.Group, groups []symbol.Group) []symbol.Group {
	switch len(prefix) {
	case 0:
		return groups
	case 1:
		return []symbol.Group{empty}
	default:
		return nil
	}
}

func (f *Firster) arbitraryAlphabet() []symbol.Group {
	if f.m.On == nil {
		return []symbol.Group{symbol.ByteRange{Lo: 0, Hi: 0xff}}
	}
	return []symbol.Group{symbol.NewStmtRef(f.m.On.Name(), f.m.On.RootTerminalNames()...)}
}

func (f *Firster) firstReference(ref *grammar.ReferenceNode, prefix []symbol.Group) []symbol.Group {
	if ref.DefiningMachine == f.m {
		return f.FirstOfStatement(ref.Resolved, prefix)
	}
	// A reference into another machine names one of that machine's root
	// terminals: from here it is opaque, a single symbol in this machine's
	// own alphabet.
	switch len(prefix) {
	case 0:
		return []symbol.Group{symbol.NewStmtRef(ref.DefiningMachine.Name(), ref.Resolved.Name())}
	case 1:
		return []symbol.Group{empty}
	default:
		return nil
	}
}

// complementRanges computes [0,255] minus the given ranges, the same way
// nfabuilder does for AnyExceptNode, so the firster and the NFA builder
// agree on what "except" means.
func complementRanges(excluded []grammar.ByteRangeNode) []symbol.ByteRange {
	pieces := []symbol.Piece{{Group: symbol.ByteRange{Lo: 0, Hi: 0xff}, Owner: symbol.OwnerSelf}}
	for _, r := range excluded {
		ex := symbol.ByteRange{Lo: r.Lo, Hi: r.Hi}
		var next []symbol.Piece
		for _, p := range pieces {
			if p.Owner != symbol.OwnerSelf {
				next = append(next, p)
				continue
			}
			for _, np := range p.Group.DisjoinFrom(ex) {
				if np.Owner == symbol.OwnerSelf {
					next = append(next, np)
				}
			}
		}
		pieces = next
	}
	var out []symbol.ByteRange
	for _, p := range pieces {
		if br, ok := p.Group.(symbol.ByteRange); ok {
			out = append(out, br)
		}
	}
	return out
}

// firstSequence computes the first-set at lookahead position len(prefix)
// for the concatenation children[idx:], given that prefix must be derived
// exactly (in order) by some split across children[idx:]. It tries every
// way the next child can absorb a leading window of prefix and, for each
// split where that child is nullable at that window width, continues into
// the remaining children with the remaining window. This is a finite,
// non-incremental reformulation of the original per-symbol BFS walk
// (_examples/original_source/astir/LLkFirster.cpp's ConjunctiveRegex case):
// equivalent because each window width is evaluated independently rather
// than grown one symbol at a time, which only matters for efficiency, not
// for the resulting set, at the small k this compiler supports.
func (f *Firster) firstSequence(children []grammar.RegexNode, prefix []symbol.Group) []symbol.Group {
	return f.firstSequenceFrom(children, 0, prefix)
}

func (f *Firster) firstSequenceFrom(children []grammar.RegexNode, idx int, prefix []symbol.Group) []symbol.Group {
	if idx >= len(children) {
		if len(prefix) == 0 {
			return []symbol.Group{empty}
		}
		return nil
	}

	var out []symbol.Group
	for w := 0; w <= len(prefix); w++ {
		window := prefix[:w]
		childFirst := f.First(children[idx], window)
		nullableAtW := false
		for _, g := range childFirst {
			if isEmpty(g) {
				nullableAtW = true
				break
			}
		}
		if nullableAtW {
			out = append(out, f.firstSequenceFrom(children, idx+1, prefix[w:])...)
		}
		if w == len(prefix) {
			for _, g := range childFirst {
				if !isEmpty(g) {
					out = append(out, g)
				}
			}
		}
	}
	return out
}

// firstRepetitive treats a ⟨min,max⟩ repetition as a bounded unrolled
// sequence of atom copies. Repetition count only constrains how many times
// the atom must be matched, not how many symbols each match consumes, so
// for first-set purposes (which only cares about symbol positions up to
// len(prefix)+1) copies beyond that bound can never be observed; they are
// unrolled only when v.Min exceeds the bound, so every mandatory copy is
// present — see DESIGN.md.
func (f *Firster) firstRepetitive(v *grammar.Repetitive, prefix []symbol.Group) []symbol.Group {
	need := len(prefix) + 1
	copies := need
	if v.Max != grammar.Infinite && v.Max < copies {
		copies = v.Max
	}
	if copies < v.Min {
		copies = v.Min
		if v.Max != grammar.Infinite && copies > v.Max {
			copies = v.Max
		}
	}
	return dedupGroups(f.firstRepetitiveFrom(v, 0, copies, prefix))
}

// firstRepetitiveFrom computes the first-set at lookahead position
// len(prefix) for the occurrences of v.Atom from the idx'th up to copies.
// Occurrences before v.Min are mandatory, same as firstSequenceFrom's
// children; occurrences at or past v.Min may also be skipped entirely,
// which is what makes a ⟨0,M⟩ repetition (and any repetition once its
// minimum is met) nullable. A skipped occurrence consumes no symbols, so
// that option only ever applies at window width 0.
func (f *Firster) firstRepetitiveFrom(v *grammar.Repetitive, idx, copies int, prefix []symbol.Group) []symbol.Group {
	if idx >= copies {
		if len(prefix) == 0 {
			return []symbol.Group{empty}
		}
		return nil
	}

	var out []symbol.Group
	for w := 0; w <= len(prefix); w++ {
		window := prefix[:w]
		childFirst := f.First(v.Atom, window)
		nullableAtW := false
		for _, g := range childFirst {
			if isEmpty(g) {
				nullableAtW = true
				break
			}
		}
		if w == 0 && idx >= v.Min {
			nullableAtW = true
		}
		if nullableAtW {
			out = append(out, f.firstRepetitiveFrom(v, idx+1, copies, prefix[w:])...)
		}
		if w == len(prefix) {
			for _, g := range childFirst {
				if !isEmpty(g) {
					out = append(out, g)
				}
			}
		}
	}
	return out
}
