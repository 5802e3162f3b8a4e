package nfa

import (
	"sort"

	"github.com/astirlang/astir/automaton"
	"github.com/astirlang/astir/register"
	"github.com/astirlang/astir/symbol"
)

// PseudoDFA is the deterministic machine produced by subset construction. It
// is "pseudo" because, unlike a textbook DFA, states and transitions still
// carry action registers.
type PseudoDFA struct {
	States   []*DFAState
	Initial  int
	Contexts []ContextPair
}

type DFAState struct {
	// Entry is the action register accumulated while computing the
	// ε-closure that produced this state.
	Entry       *register.Register
	Final       bool
	Transitions []DFATransition
}

type DFATransition struct {
	Target    int
	Condition symbol.Group
	Actions   *register.Register
}

// rawEntry is one not-yet-disjoint transition gathered from every member NFA
// state of a DFA state being expanded, before disjoining.
type rawEntry struct {
	condition symbol.Group
	targets   map[automaton.StateID]bool
	actions   *register.Register
	optOut    bool
}

func unionTargets(a, b map[automaton.StateID]bool) map[automaton.StateID]bool {
	out := map[automaton.StateID]bool{}
	for id := range a {
		out[id] = true
	}
	for id := range b {
		out[id] = true
	}
	return out
}

// disjointTransitions implements §4.4's "disjoint-transition computation":
// it pairwise-disjoins the gathered raw conditions until every pair is
// either equal or disjoint, unioning action registers and target sets as
// conditions merge or split. Opt-out entries never participate and are
// appended back verbatim.
func disjointTransitions(entries []rawEntry) []rawEntry {
	var optOut []rawEntry
	var work []rawEntry
	for _, e := range entries {
		if e.optOut {
			optOut = append(optOut, e)
		} else {
			work = append(work, e)
		}
	}

	for {
		mergedIndex := -1
		splitIndex := -1
		for i := 0; i < len(work) && mergedIndex < 0 && splitIndex < 0; i++ {
			for j := i + 1; j < len(work); j++ {
				a, b := work[i], work[j]
				if a.condition.Equals(b.condition) {
					mergedIndex, splitIndex = i, j
					break
				}
				if !a.condition.Disjoint(b.condition) {
					mergedIndex, splitIndex = i, j
					break
				}
			}
		}
		if mergedIndex < 0 {
			break
		}

		a, b := work[mergedIndex], work[splitIndex]
		rest := make([]rawEntry, 0, len(work))
		for k, e := range work {
			if k != mergedIndex && k != splitIndex {
				rest = append(rest, e)
			}
		}
		work = rest

		if a.condition.Equals(b.condition) {
			work = append(work, rawEntry{
				condition: a.condition,
				targets:   unionTargets(a.targets, b.targets),
				actions:   register.Union(a.actions, b.actions),
			})
			continue
		}

		for _, piece := range a.condition.DisjoinFrom(b.condition) {
			switch piece.Owner {
			case symbol.OwnerSelf:
				work = append(work, rawEntry{condition: piece.Group, targets: a.targets, actions: a.actions})
			case symbol.OwnerOther:
				work = append(work, rawEntry{condition: piece.Group, targets: b.targets, actions: b.actions})
			case symbol.OwnerBoth:
				work = append(work, rawEntry{
					condition: piece.Group,
					targets:   unionTargets(a.targets, b.targets),
					actions:   register.Union(a.actions, b.actions),
				})
			}
		}
	}

	return append(work, optOut...)
}

// BuildPseudoDFA performs ε-closure / subset construction per §4.4.
func (n *NFA) BuildPseudoDFA() *PseudoDFA {
	initClosed, initActions := n.closure(map[automaton.StateID]bool{n.Initial(): true})
	initSet := newStateSet(initClosed)

	type pending struct {
		set    *stateSet
		nfaIDs map[automaton.StateID]bool
	}

	byHash := map[string]int{} // hash -> DFA state index
	var dfaStates []*DFAState
	var queue []pending

	dfaStates = append(dfaStates, &DFAState{Entry: initActions, Final: n.isFinalSet(initClosed)})
	byHash[initSet.hash] = 0
	queue = append(queue, pending{set: initSet, nfaIDs: initClosed})

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curIdx := byHash[cur.set.hash]

		var sortedIDs []automaton.StateID
		for id := range cur.nfaIDs {
			sortedIDs = append(sortedIDs, id)
		}
		sort.Slice(sortedIDs, func(i, j int) bool { return sortedIDs[i] < sortedIDs[j] })

		var raw []rawEntry
		for _, id := range sortedIDs {
			for _, t := range n.State(id).Transitions {
				if _, isEps := t.Condition.(symbol.Epsilon); isEps {
					continue
				}
				raw = append(raw, rawEntry{
					condition: t.Condition,
					targets:   map[automaton.StateID]bool{t.Target: true},
					actions:   emptyIfNil(t.Payload),
					optOut:    t.OptOut,
				})
			}
		}

		disjoint := disjointTransitions(raw)

		// Group by equal condition (a final pass: disjoining can still
		// leave distinct entries whose pieces happen to coincide).
		type group struct {
			condition symbol.Group
			targets   map[automaton.StateID]bool
			actions   *register.Register
		}
		var groups []*group
		for _, e := range disjoint {
			var found *group
			for _, g := range groups {
				if g.condition.Equals(e.condition) {
					found = g
					break
				}
			}
			if found == nil {
				groups = append(groups, &group{condition: e.condition, targets: e.targets, actions: e.actions})
				continue
			}
			found.targets = unionTargets(found.targets, e.targets)
			found.actions = register.Union(found.actions, e.actions)
		}

		for _, g := range groups {
			closed, acc := n.closure(g.targets)
			cs := newStateSet(closed)

			idx, seen := byHash[cs.hash]
			if !seen {
				idx = len(dfaStates)
				byHash[cs.hash] = idx
				dfaStates = append(dfaStates, &DFAState{Entry: acc, Final: n.isFinalSet(closed)})
				queue = append(queue, pending{set: cs, nfaIDs: closed})
			}

			dfaStates[curIdx].Transitions = append(dfaStates[curIdx].Transitions, DFATransition{
				Target:    idx,
				Condition: g.condition,
				Actions:   g.actions,
			})
		}
	}

	return &PseudoDFA{States: dfaStates, Initial: 0, Contexts: append([]ContextPair(nil), n.Contexts...)}
}

func (n *NFA) isFinalSet(ids map[automaton.StateID]bool) bool {
	for id := range ids {
		if n.IsFinal(id) {
			return true
		}
	}
	return false
}
