package driver

import (
	"github.com/dekarrin/rezi"

	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/grammar/ll"
	"github.com/astirlang/astir/nfa"
	"github.com/astirlang/astir/register"
)

// IRTransition is one pseudo-DFA transition, flattened for serialization:
// the condition is rendered to its string form rather than carried as a
// symbol.Group, since the dump is for offline inspection, not re-loading.
type IRTransition struct {
	Target    int
	Condition string
	Actions   []string
}

// IRState is one pseudo-DFA state.
type IRState struct {
	Final       bool
	Transitions []IRTransition
}

// IRAutomaton is one finite-automaton machine's compiled pseudo-DFA.
type IRAutomaton struct {
	MachineName string
	Initial     int
	States      []IRState
}

// IRDecisionPoint mirrors ll.DecisionPoint, flattened the same way.
type IRDecisionPoint struct {
	Edges []IRDecisionEdge
}

// IRDecisionEdge mirrors ll.DecisionEdge.
type IRDecisionEdge struct {
	Condition string
	Resolved  int
	Next      *IRDecisionPoint
}

// IRForest is one LL(k) parser machine's compiled decision forest.
type IRForest struct {
	MachineName string
	Decisions   map[string]IRDecisionPoint
}

// IRDump is the whole --dump-ir artifact for one build: every compiled
// machine's automaton or decision forest, independent of the target
// language the emitter would otherwise produce.
type IRDump struct {
	BuildID  string
	Automata []IRAutomaton
	Forests  []IRForest
}

// BuildIRDump flattens a Result's tree into a dump, skipping machines that
// haven't been compiled (there are none once Build has succeeded, but a
// caller building this by hand against a partially initialized tree should
// not panic).
func BuildIRDump(r *Result) *IRDump {
	dump := &IRDump{BuildID: r.BuildID}
	for _, m := range r.Tree.Machines() {
		switch c := m.Compiled.(type) {
		case *nfa.PseudoDFA:
			dump.Automata = append(dump.Automata, flattenAutomaton(m, c))
		case *ll.Forest:
			dump.Forests = append(dump.Forests, flattenForest(m, c))
		}
	}
	return dump
}

func flattenAutomaton(m *grammar.Machine, dfa *nfa.PseudoDFA) IRAutomaton {
	out := IRAutomaton{MachineName: m.Name(), Initial: dfa.Initial}
	for _, st := range dfa.States {
		istate := IRState{Final: st.Final}
		for _, tr := range st.Transitions {
			istate.Transitions = append(istate.Transitions, IRTransition{
				Target:    tr.Target,
				Condition: tr.Condition.String(),
				Actions:   actionStrings(tr.Actions),
			})
		}
		out.States = append(out.States, istate)
	}
	return out
}

func flattenForest(m *grammar.Machine, forest *ll.Forest) IRForest {
	out := IRForest{MachineName: m.Name(), Decisions: map[string]IRDecisionPoint{}}
	for path, dp := range forest.Decisions {
		out.Decisions[path] = flattenDecisionPoint(dp)
	}
	return out
}

func flattenDecisionPoint(dp *ll.DecisionPoint) IRDecisionPoint {
	if dp == nil {
		return IRDecisionPoint{}
	}
	out := IRDecisionPoint{}
	for _, e := range dp.Edges {
		ie := IRDecisionEdge{Condition: e.Condition.String(), Resolved: e.Resolved}
		if e.Next != nil {
			next := flattenDecisionPoint(e.Next)
			ie.Next = &next
		}
		out.Edges = append(out.Edges, ie)
	}
	return out
}

func actionStrings(reg *register.Register) []string {
	acts := reg.Actions()
	out := make([]string, len(acts))
	for i, a := range acts {
		out[i] = a.String()
	}
	return out
}

// EncodeIRDump binary-encodes a dump via rezi, the same encoding the pack
// uses for its own persisted binary state.
func EncodeIRDump(dump *IRDump) []byte {
	return rezi.EncBinary(dump)
}

// DecodeIRDump decodes a dump previously written by EncodeIRDump.
func DecodeIRDump(data []byte) (*IRDump, error) {
	var dump IRDump
	if _, err := rezi.DecBinary(data, &dump); err != nil {
		return nil, err
	}
	return &dump, nil
}
