package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astirlang/astir/driver"
)

const digitsGrammar = `
finite automaton Lex {
	root terminal Digits { raw text; } = [0-9]+ @capture:text;
	ignored terminal Space = " "+;
}
`

func TestBuildEmitsOneArtifactPerMachine(t *testing.T) {
	dir := t.TempDir()
	grmPath := filepath.Join(dir, "digits.astir")
	require.NoError(t, os.WriteFile(grmPath, []byte(digitsGrammar), 0644))

	log := driver.NewLogger(false)
	result, err := driver.Build(log, grmPath, "lex")
	require.NoError(t, err)
	require.NotEmpty(t, result.BuildID)
	require.Len(t, result.Artifacts, 1)

	a := result.Artifacts[0]
	assert.Equal(t, "Lex", a.MachineName)
	assert.Equal(t, "lex.go", a.FileName)
	assert.Contains(t, string(a.Source), "package lex")
	assert.Contains(t, string(a.Source), "type Digits struct")
}

func TestBuildWritesArtifactsToDisk(t *testing.T) {
	dir := t.TempDir()
	grmPath := filepath.Join(dir, "digits.astir")
	require.NoError(t, os.WriteFile(grmPath, []byte(digitsGrammar), 0644))

	log := driver.NewLogger(false)
	result, err := driver.Build(log, grmPath, "lex")
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out")
	require.NoError(t, result.Write(outDir))

	data, err := os.ReadFile(filepath.Join(outDir, "lex.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package lex")
}

func TestBuildWithOptionsRendersCompactTable(t *testing.T) {
	dir := t.TempDir()
	grmPath := filepath.Join(dir, "digits.astir")
	require.NoError(t, os.WriteFile(grmPath, []byte(digitsGrammar), 0644))

	log := driver.NewLogger(false)
	result, err := driver.BuildWithOptions(log, grmPath, "lex", driver.BuildOptions{Compact: true})
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 1)
	assert.Contains(t, string(result.Artifacts[0].Source), "lookupCompact")
}

const parserGrammar = `
LL(1) parser P {
	category Digit;
	nonterminal production Zero: Digit = "0";
	nonterminal production One: Digit = "1";
	nonterminal production Start = Digit;
}
`

func TestBuildWithOptionsAppliesConfiguredLookaheadOverride(t *testing.T) {
	dir := t.TempDir()
	grmPath := filepath.Join(dir, "p.astir")
	require.NoError(t, os.WriteFile(grmPath, []byte(parserGrammar), 0644))

	log := driver.NewLogger(false)
	cfg := driver.DefaultConfig()
	cfg.Machines = map[string]driver.MachineOverride{"P": {K: intPtr(2)}}

	result, err := driver.BuildWithOptions(log, grmPath, "parse", driver.BuildOptions{Config: cfg})
	require.NoError(t, err)

	m, ok := result.Tree.Machine("P")
	require.True(t, ok)
	assert.Equal(t, 2, m.K)
}

func intPtr(n int) *int { return &n }

func TestBuildReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	grmPath := filepath.Join(dir, "bad.astir")
	require.NoError(t, os.WriteFile(grmPath, []byte("finite automaton { }"), 0644))

	log := driver.NewLogger(false)
	_, err := driver.Build(log, grmPath, "lex")
	assert.Error(t, err)
}
