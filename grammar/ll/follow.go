package ll

import (
	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/symbol"
)

// followEdge is one appearance of a nonterminal inside another statement's
// regex tree: tail is whatever regex nodes must still be matched after this
// appearance, in source order; owner is the top-level statement whose rule
// tree the appearance was found in, consulted once tail itself runs dry.
// This is the adaptation of
// _examples/original_source/astir/LLkBuilder.h's LLkNonterminalContext
// (parent, followedBy) to a name-keyed map instead of pointer identity.
type followEdge struct {
	tail  []grammar.RegexNode
	owner string
}

// registerFollowContexts walks every rule-carrying statement's regex tree
// and every category's member list, recording a followEdge for each
// appearance of a same-machine nonterminal: the (parent, sequential-tail)
// contexts named by spec §4.6. followFirst later walks these to extend a
// decision past the point where a tied alternative's own content runs out;
// see disambiguate's isEmpty(e.group) case.
func (b *builder) registerFollowContexts() {
	for _, s := range b.m.Statements() {
		switch v := s.(type) {
		case grammar.RuleCarrying:
			b.registerNode(v.Rule(), nil, v.Name())
		case *grammar.Category:
			for _, mem := range categoryMembers(b.m, v) {
				b.followEdges[mem.Name()] = append(b.followEdges[mem.Name()], followEdge{owner: v.Name()})
			}
		}
	}
}

// registerNode threads tail through n the same way firstSequenceFrom and
// firstRepetitiveFrom thread prefix: a Conjunctive child's tail is its
// later siblings followed by the inherited tail; a Repetitive's atom sees
// the repetition node itself prepended to the inherited tail, since another
// occurrence of the atom (or the repetition's own continuation) may follow
// a given match.
func (b *builder) registerNode(n grammar.RegexNode, tail []grammar.RegexNode, owner string) {
	switch v := n.(type) {
	case *grammar.Disjunctive:
		for _, c := range v.Children {
			b.registerNode(c, tail, owner)
		}
	case *grammar.Conjunctive:
		for i, c := range v.Children {
			childTail := append(append([]grammar.RegexNode{}, v.Children[i+1:]...), tail...)
			b.registerNode(c, childTail, owner)
		}
	case *grammar.Repetitive:
		repTail := append([]grammar.RegexNode{v}, tail...)
		b.registerNode(v.Atom, repTail, owner)
	case *grammar.ReferenceNode:
		if v.DefiningMachine == b.m {
			name := v.Resolved.Name()
			b.followEdges[name] = append(b.followEdges[name], followEdge{tail: tail, owner: owner})
		}
	}
}

// followFirst computes the symbols that may legally appear once a complete
// derivation of the nonterminal named name has been fully matched: the
// union, over every registered appearance of name, of the first-set of that
// appearance's tail, bubbling into the tail's owner once the tail itself is
// exhausted. visited guards the bubbling against cycles in mutually
// recursive grammars, mirroring disambiguate/disambiguatePair's recursive
// lookahead in _examples/original_source/astir/LLkBuilder.cpp.
func (b *builder) followFirst(name string, visited map[string]bool) []symbol.Group {
	if name == "" || visited[name] {
		return nil
	}
	visited[name] = true

	var out []symbol.Group
	for _, e := range b.followEdges[name] {
		for _, g := range b.firster.firstSequenceFrom(e.tail, 0, nil) {
			if isEmpty(g) {
				out = append(out, b.followFirst(e.owner, visited)...)
			} else {
				out = append(out, g)
			}
		}
	}
	return dedupGroups(out)
}

// extendByFollow attempts to break a tie among winners (all sharing group
// == empty at the current depth) by consulting one extra level of
// follow-derived lookahead per winner. It only reports success if every
// resulting group resolves to exactly one winner; a residual tie means
// follow-sensitivity genuinely can't help here, and the caller falls back
// to resolveTie with the original, un-extended winners.
func (b *builder) extendByFollow(winners []int, altNames []string) (*DecisionPoint, bool) {
	var work []entry
	for _, w := range winners {
		for _, g := range b.followFirst(altNames[w], map[string]bool{}) {
			work = append(work, entry{group: g, alts: map[int]bool{w: true}})
		}
	}
	if len(work) == 0 {
		return nil, false
	}
	work = mergeEntries(work)

	dp := &DecisionPoint{}
	for _, e := range work {
		ws := sortedAlts(e.alts)
		if len(ws) != 1 {
			return nil, false
		}
		dp.Edges = append(dp.Edges, &DecisionEdge{Condition: e.group, Resolved: ws[0]})
	}
	return dp, true
}
