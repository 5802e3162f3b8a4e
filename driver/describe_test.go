package driver_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/driver"
	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/grammar/nfabuilder"
)

func literal(s string) grammar.RegexNode { return &grammar.LiteralNode{Bytes: []byte(s)} }

func TestDescribeFiniteAutomaton(t *testing.T) {
	tree := grammar.NewTree()
	m := grammar.NewMachine("Lex", grammar.FiniteAutomatonMachine, verr.Position{})
	a := &grammar.Production{NameVal: "A", Machine: m, RootnessVal: grammar.RootAccept, TerminalityVal: grammar.Terminal, RuleNode: literal("a")}
	require.NoError(t, m.AddStatement(a))
	require.NoError(t, tree.AddMachine(m))
	require.NoError(t, tree.Initialize(grammar.BuildHooks{BuildAutomaton: nfabuilder.Build}))

	var buf bytes.Buffer
	require.NoError(t, driver.Describe(&buf, tree))

	out := buf.String()
	assert.Contains(t, out, "machine Lex")
	assert.Contains(t, out, "finite automaton")
	assert.Contains(t, out, "production A [root] (terminal)")
	assert.Contains(t, out, "states:")
}
