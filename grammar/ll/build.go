package ll

import (
	"fmt"
	"strings"

	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/symbol"
)

// DecisionPoint is one node of a decision tree: given the alternative set
// still in contention, look at the next input symbol and follow the edge
// whose Condition matches it.
type DecisionPoint struct {
	Edges []*DecisionEdge
}

// DecisionEdge is a single partitioned, pairwise-disjoint condition leaving
// a DecisionPoint. Exactly one of Resolved/Next is meaningful: Resolved
// names the winning alternative once the edge's condition narrows the
// contention to one; Next is a deeper DecisionPoint when more than one
// alternative still shares this edge's condition and lookahead budget
// remains.
type DecisionEdge struct {
	Condition symbol.Group
	Resolved  int
	Next      *DecisionPoint
}

// Forest is the per-machine collection of decision trees an LL(k) parser
// dispatches on: one per multi-alternative Disjunctive node and one per
// multi-member Category, keyed by the path convention shared with
// nfabuilder (parent_path ++ "__" ++ name).
type Forest struct {
	Decisions map[string]*DecisionPoint
}

// Build walks every rule-carrying statement's regex tree and every
// category's member list in m, building a DecisionPoint wherever the
// parser must choose among more than one alternative. It is the entry
// point wired into grammar.BuildHooks.BuildParser.
func Build(m *grammar.Machine) error {
	b := &builder{
		m:           m,
		firster:     NewFirster(m),
		forest:      &Forest{Decisions: map[string]*DecisionPoint{}},
		followEdges: map[string][]followEdge{},
	}
	b.registerFollowContexts()

	for _, s := range m.Statements() {
		switch v := s.(type) {
		case *grammar.Category:
			members := categoryMembers(m, v)
			if len(members) > 1 {
				alts := make([]grammar.RegexNode, len(members))
				altNames := make([]string, len(members))
				for i, mem := range members {
					alts[i] = memberAsNode(mem)
					altNames[i] = mem.Name()
				}
				dp, err := b.disambiguate(alts, altNames, nil, 0)
				if err != nil {
					return wrapLLErr(err, v.Pos())
				}
				b.forest.Decisions[extendPath("", v.Name())] = dp
			}
		case grammar.RuleCarrying:
			if err := b.walk(extendPath("", v.Name()), v.Rule()); err != nil {
				return wrapLLErr(err, v.Pos())
			}
		}
	}

	m.Compiled = b.forest
	return nil
}

func wrapLLErr(err error, pos verr.Position) error {
	if se, ok := err.(*verr.SpecError); ok {
		return se
	}
	return &verr.SpecError{Kind: verr.KindLL, Cause: err, Pos: pos}
}

type builder struct {
	m       *grammar.Machine
	firster *Firster
	forest  *Forest
	// followEdges holds every registered (parent, sequential-tail) context
	// a same-machine nonterminal appears under, keyed by its statement
	// name; see follow.go.
	followEdges map[string][]followEdge
}

func extendPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "__" + name
}

// memberAsNode lets a category member (itself a full statement, not a
// regex node) participate as one alternative of a disjunction: parsing it
// means parsing its own rule.
func memberAsNode(s grammar.Statement) grammar.RegexNode {
	if rc, ok := s.(grammar.RuleCarrying); ok {
		return rc.Rule()
	}
	return &grammar.EmptyNode{}
}

// altName gives alt a name suitable both for error reporting and for
// keying into followEdges: a reference carries the name of whatever it
// refers to, since that's the identity its appearances were registered
// under; an anonymous construct (a literal, a nested sequence, ...) has no
// such identity, so it gets a synthetic name scoped to the decision it
// belongs to, which simply never matches a followEdges entry.
func altName(n grammar.RegexNode, path string, i int) string {
	if ref, ok := n.(*grammar.ReferenceNode); ok {
		return ref.Resolved.Name()
	}
	return fmt.Sprintf("%s#%d", path, i)
}

// walk recurses through n looking for Disjunctive nodes with more than one
// child, building and registering a DecisionPoint for each.
func (b *builder) walk(path string, n grammar.RegexNode) error {
	switch v := n.(type) {
	case *grammar.Disjunctive:
		if len(v.Children) > 1 {
			altNames := make([]string, len(v.Children))
			for i, c := range v.Children {
				altNames[i] = altName(c, path, i)
			}
			dp, err := b.disambiguate(v.Children, altNames, nil, 0)
			if err != nil {
				return err
			}
			b.forest.Decisions[path] = dp
		}
		for i, c := range v.Children {
			if err := b.walk(fmt.Sprintf("%s__alt%d", path, i), c); err != nil {
				return err
			}
		}
	case *grammar.Conjunctive:
		for i, c := range v.Children {
			if err := b.walk(fmt.Sprintf("%s__seq%d", path, i), c); err != nil {
				return err
			}
		}
	case *grammar.Repetitive:
		return b.walk(path+"__rep", v.Atom)
	case *grammar.ReferenceNode:
		// Cross-statement references are resolved independently when
		// their own defining statement is walked; nothing nested here.
		return nil
	}
	return nil
}

type entry struct {
	group symbol.Group
	alts  map[int]bool
}

// mergeEntries repeatedly merges equal-group entries and splits
// overlapping ones via DisjoinFrom until every remaining entry's group is
// pairwise disjoint from every other's. Shared by disambiguate's own
// first-derived work set and extendByFollow's follow-derived one.
func mergeEntries(work []entry) []entry {
	for {
		mi, mj := -1, -1
		for i := 0; i < len(work) && mi < 0; i++ {
			for j := i + 1; j < len(work); j++ {
				if work[i].group.Equals(work[j].group) || !work[i].group.Disjoint(work[j].group) {
					mi, mj = i, j
					break
				}
			}
		}
		if mi < 0 {
			break
		}
		a, c := work[mi], work[mj]
		rest := make([]entry, 0, len(work))
		for k, e := range work {
			if k != mi && k != mj {
				rest = append(rest, e)
			}
		}
		work = rest

		if a.group.Equals(c.group) {
			work = append(work, entry{group: a.group, alts: unionAlts(a.alts, c.alts)})
			continue
		}
		for _, piece := range a.group.DisjoinFrom(c.group) {
			switch piece.Owner {
			case symbol.OwnerSelf:
				work = append(work, entry{group: piece.Group, alts: a.alts})
			case symbol.OwnerOther:
				work = append(work, entry{group: piece.Group, alts: c.alts})
			case symbol.OwnerBoth:
				work = append(work, entry{group: piece.Group, alts: unionAlts(a.alts, c.alts)})
			}
		}
	}
	return work
}

// disambiguate builds the DecisionPoint that distinguishes every
// alternative in alts, given that prefix symbols have already been
// committed to at shallower depth. It mirrors
// _examples/original_source/astir/LLkBuilder.cpp's disambiguate/
// disambiguatePair pair, generalized from pairwise to N-ary partitioning
// (the same generalization nfa/subset.go applies to NFA transitions) since
// a runtime decision table is naturally keyed by a single partitioned
// condition set rather than a cascade of binary comparisons. altNames
// parallels alts, naming each alternative for error reporting and for the
// follow-sensitive lookahead extension in extendByFollow.
func (b *builder) disambiguate(alts []grammar.RegexNode, altNames []string, prefix []symbol.Group, depth int) (*DecisionPoint, error) {
	var work []entry
	for i, alt := range alts {
		for _, g := range b.firster.First(alt, prefix) {
			work = append(work, entry{group: g, alts: map[int]bool{i: true}})
		}
	}
	work = mergeEntries(work)

	dp := &DecisionPoint{}
	for _, e := range work {
		winners := sortedAlts(e.alts)
		switch {
		case len(winners) == 1:
			dp.Edges = append(dp.Edges, &DecisionEdge{Condition: e.group, Resolved: winners[0]})
		case isEmpty(e.group):
			// Every remaining alternative reduces at exactly this depth
			// as far as its own content goes. Before giving up, see
			// whether what legally follows each alternative elsewhere in
			// the grammar still tells them apart (§4.6's follow
			// contexts) rather than declaring an ambiguity outright.
			if depth+1 < b.m.K {
				if next, ok := b.extendByFollow(winners, altNames); ok {
					dp.Edges = append(dp.Edges, &DecisionEdge{Condition: e.group, Next: next})
					continue
				}
			}
			resolved, err := b.resolveTie(winners, altNames, prefix, depth)
			if err != nil {
				return nil, err
			}
			dp.Edges = append(dp.Edges, &DecisionEdge{Condition: e.group, Resolved: resolved})
		default:
			witness := append(append([]symbol.Group{}, prefix...), e.group)
			if depth+1 >= b.m.K {
				resolved, err := b.resolveTie(winners, altNames, witness, depth)
				if err != nil {
					return nil, err
				}
				dp.Edges = append(dp.Edges, &DecisionEdge{Condition: e.group, Resolved: resolved})
				continue
			}
			subAlts := make([]grammar.RegexNode, len(winners))
			subNames := make([]string, len(winners))
			for i, w := range winners {
				subAlts[i] = alts[w]
				subNames[i] = altNames[w]
			}
			next, err := b.disambiguate(subAlts, subNames, witness, depth+1)
			if err != nil {
				return nil, err
			}
			// Re-key the nested decision's Resolved indices back into the
			// outer alternative numbering.
			rekey(next, winners)
			dp.Edges = append(dp.Edges, &DecisionEdge{Condition: e.group, Next: next})
		}
	}
	return dp, nil
}

func rekey(dp *DecisionPoint, winners []int) {
	for _, e := range dp.Edges {
		if e.Next != nil {
			rekey(e.Next, winners)
		} else {
			e.Resolved = winners[e.Resolved]
		}
	}
}

// resolveTie settles a set of alternatives that remain indistinguishable
// after exhausting both their own content and, where applicable,
// follow-derived lookahead. With ambiguity_resolved_by_precedence the
// first-declared alternative wins; otherwise it reports a structured LL(k)
// error naming every conflicting alternative and the witness prefix that
// led to the tie, per §7 and scenario S5 (witness prefix "a").
func (b *builder) resolveTie(winners []int, altNames []string, witness []symbol.Group, depth int) (int, error) {
	if b.m.Flags.AmbiguityResolvedByPrecedence {
		return winners[0], nil
	}
	names := make([]string, len(winners))
	for i, w := range winners {
		names[i] = altNames[w]
	}
	return 0, fmt.Errorf("alternatives %s cannot be distinguished within %d symbol(s) of lookahead, witness prefix %s",
		strings.Join(names, ", "), depth+1, renderWitness(witness))
}

func renderWitness(witness []symbol.Group) string {
	if len(witness) == 0 {
		return "ε"
	}
	parts := make([]string, len(witness))
	for i, g := range witness {
		parts[i] = g.String()
	}
	return strings.Join(parts, " ")
}

func unionAlts(a, b map[int]bool) map[int]bool {
	out := map[int]bool{}
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func sortedAlts(m map[int]bool) []int {
	var out []int
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
