package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astirlang/astir/tester"
)

func init() {
	cmd := &cobra.Command{
		Use:     "test <fixture directory path>",
		Short:   "Check compiled machine structure against golden fixtures",
		Example: `  astir test fixtures`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTest,
	}
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	t, err := tester.Load(args[0])
	if err != nil {
		return fmt.Errorf("cannot read fixtures: %w", err)
	}

	rs := t.Run()
	for _, r := range rs {
		fmt.Fprintln(os.Stdout, r)
	}
	passed, failed := tester.Summary(rs)
	fmt.Fprintf(os.Stdout, "%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		return errors.New("test failed")
	}
	return nil
}
