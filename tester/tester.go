// Package tester runs golden-fixture compile checks: it compiles a grammar
// fixture the way `astir compile` does and diffs the resulting machine
// structure against a fixture's expectations, without ever executing a
// generated recognizer.
package tester

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/grammar/ll"
	"github.com/astirlang/astir/grammar/nfabuilder"
	"github.com/astirlang/astir/nfa"
	"github.com/astirlang/astir/syntax"
)

// ListFixtures finds every *.yaml file under dir, recursing into
// subdirectories, matching the teacher's directory-walking test-discovery
// shape.
func ListFixtures(dir string) ([]string, error) {
	var paths []string
	es, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range es {
		p := filepath.Join(dir, e.Name())
		if e.IsDir() {
			sub, err := ListFixtures(p)
			if err != nil {
				return nil, err
			}
			paths = append(paths, sub...)
			continue
		}
		if filepath.Ext(e.Name()) == ".yaml" || filepath.Ext(e.Name()) == ".yml" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// Tester runs a batch of fixtures loaded from a directory.
type Tester struct {
	Fixtures []*Fixture
}

// Load collects every fixture under dir.
func Load(dir string) (*Tester, error) {
	paths, err := ListFixtures(dir)
	if err != nil {
		return nil, err
	}
	t := &Tester{}
	for _, p := range paths {
		f, err := LoadFixture(p)
		if err != nil {
			return nil, err
		}
		t.Fixtures = append(t.Fixtures, f)
	}
	return t, nil
}

// Run compiles and checks every loaded fixture, returning one result per
// fixture in the order they were loaded.
func (t *Tester) Run() []*TestResult {
	rs := make([]*TestResult, len(t.Fixtures))
	for i, f := range t.Fixtures {
		rs[i] = runFixture(f)
	}
	return rs
}

func runFixture(f *Fixture) *TestResult {
	grmPath := f.Grammar
	if !filepath.IsAbs(grmPath) {
		grmPath = filepath.Join(filepath.Dir(f.Path), grmPath)
	}

	src, err := os.ReadFile(grmPath)
	if err != nil {
		return &TestResult{FixturePath: f.Path, Error: err}
	}

	tree, err := syntax.Parse(string(src), grmPath)
	if err != nil {
		return &TestResult{FixturePath: f.Path, Error: err}
	}
	if err := tree.Initialize(grammar.BuildHooks{
		BuildAutomaton: nfabuilder.Build,
		BuildParser:    ll.Build,
	}); err != nil {
		return &TestResult{FixturePath: f.Path, Error: err}
	}

	actual := summarize(tree)
	diffs := diffSummaries(f.Machines, actual)
	if len(diffs) > 0 {
		return &TestResult{
			FixturePath: f.Path,
			Error:       fmt.Errorf("machine structure mismatch"),
			Diffs:       diffs,
		}
	}
	return &TestResult{FixturePath: f.Path}
}

func summarize(tree *grammar.Tree) []MachineSummary {
	var out []MachineSummary
	for _, m := range tree.Machines() {
		s := MachineSummary{
			Name:          m.Name(),
			TerminalCount: m.TerminalCount(),
		}
		switch m.Kind {
		case grammar.FiniteAutomatonMachine:
			s.Kind = "finite_automaton"
			if dfa, ok := m.Compiled.(*nfa.PseudoDFA); ok {
				s.StateCount = len(dfa.States)
			}
		case grammar.LLParserMachine:
			s.Kind = "ll_parser"
			s.K = m.K
			if forest, ok := m.Compiled.(*ll.Forest); ok {
				s.DecisionCount = len(forest.Decisions)
			}
		}
		out = append(out, s)
	}
	return out
}

func diffSummaries(expected, actual []MachineSummary) []string {
	byName := map[string]MachineSummary{}
	for _, a := range actual {
		byName[a.Name] = a
	}

	var diffs []string
	seen := map[string]bool{}
	for _, exp := range expected {
		seen[exp.Name] = true
		act, ok := byName[exp.Name]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("machine %q: expected but not produced", exp.Name))
			continue
		}
		if exp.Kind != act.Kind {
			diffs = append(diffs, fmt.Sprintf("machine %q: kind: expected %s, got %s", exp.Name, exp.Kind, act.Kind))
		}
		if exp.K != 0 && exp.K != act.K {
			diffs = append(diffs, fmt.Sprintf("machine %q: k: expected %d, got %d", exp.Name, exp.K, act.K))
		}
		if exp.TerminalCount != act.TerminalCount {
			diffs = append(diffs, fmt.Sprintf("machine %q: terminal_count: expected %d, got %d", exp.Name, exp.TerminalCount, act.TerminalCount))
		}
		if exp.StateCount != 0 && exp.StateCount != act.StateCount {
			diffs = append(diffs, fmt.Sprintf("machine %q: state_count: expected %d, got %d", exp.Name, exp.StateCount, act.StateCount))
		}
		if exp.DecisionCount != 0 && exp.DecisionCount != act.DecisionCount {
			diffs = append(diffs, fmt.Sprintf("machine %q: decision_count: expected %d, got %d", exp.Name, exp.DecisionCount, act.DecisionCount))
		}
	}
	for _, act := range actual {
		if !seen[act.Name] {
			diffs = append(diffs, fmt.Sprintf("machine %q: produced but not expected", act.Name))
		}
	}
	return diffs
}
