package tester

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const digitsGrammar = `
finite automaton Lex {
	root terminal Digits { raw text; } = [0-9]+ @capture:text;
	ignored terminal Space = " "+;
}
`

const digitsFixture = `
grammar: digits.astir
machines:
  - name: Lex
    kind: finite_automaton
    terminal_count: 2
`

func writeFixtureDir(t *testing.T, grammarSrc, fixtureSrc string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "digits.astir"), []byte(grammarSrc), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "digits.yaml"), []byte(fixtureSrc), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRunPassesOnMatchingFixture(t *testing.T) {
	dir := writeFixtureDir(t, digitsGrammar, digitsFixture)

	tt, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(tt.Fixtures) != 1 {
		t.Fatalf("expected 1 fixture, got %d", len(tt.Fixtures))
	}

	rs := tt.Run()
	if rs[0].Error != nil {
		t.Fatalf("unexpected error: %v (%v)", rs[0].Error, rs[0].Diffs)
	}
}

func TestRunFailsOnMismatchedFixture(t *testing.T) {
	badFixture := `
grammar: digits.astir
machines:
  - name: Lex
    kind: finite_automaton
    terminal_count: 99
`
	dir := writeFixtureDir(t, digitsGrammar, badFixture)

	tt, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	rs := tt.Run()
	if rs[0].Error == nil {
		t.Fatal("expected a mismatch error, got none")
	}
	if len(rs[0].Diffs) == 0 {
		t.Fatal("expected diff detail")
	}
}

func TestRunReportsParseErrors(t *testing.T) {
	dir := writeFixtureDir(t, `finite automaton { }`, digitsFixture)

	tt, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	rs := tt.Run()
	if rs[0].Error == nil {
		t.Fatal("expected a parse error")
	}
}

func TestResultStringFormatsPassAndFail(t *testing.T) {
	pass := &TestResult{FixturePath: "a.yaml"}
	if got := pass.String(); got != "Passed a.yaml" {
		t.Fatalf("unexpected pass string: %q", got)
	}

	fail := &TestResult{FixturePath: "b.yaml", Error: errors.New("machine structure mismatch"), Diffs: []string{`machine "Lex": terminal_count: expected 1, got 2`}}
	if got := fail.String(); got == "" {
		t.Fatal("expected non-empty fail string")
	}
}
