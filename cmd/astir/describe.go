package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/driver"
	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/grammar/ll"
	"github.com/astirlang/astir/grammar/nfabuilder"
	"github.com/astirlang/astir/syntax"
)

func init() {
	cmd := &cobra.Command{
		Use:     "describe",
		Short:   "Print a grammar's resolved structure without emitting code",
		Example: `  astir describe grammar.astir`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDescribe,
	}
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	grmPath := args[0]
	src, err := os.ReadFile(grmPath)
	if err != nil {
		return err
	}

	tree, err := syntax.Parse(string(src), grmPath)
	if err != nil {
		return reportDescribeError(string(src), err)
	}
	if err := tree.Initialize(grammar.BuildHooks{
		BuildAutomaton: nfabuilder.Build,
		BuildParser:    ll.Build,
	}); err != nil {
		return reportDescribeError(string(src), err)
	}

	return driver.Describe(os.Stdout, tree)
}

func reportDescribeError(src string, err error) error {
	switch e := err.(type) {
	case *verr.SpecError:
		driver.RenderDiagnostic(os.Stderr, src, e)
	case verr.SpecErrors:
		driver.RenderDiagnostics(os.Stderr, src, e)
	default:
		return err
	}
	return fmt.Errorf("describe failed")
}
