package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/astirlang/astir/driver"
)

var rootFlags = struct {
	verbose *bool
	config  *string
}{}

var rootCmd = &cobra.Command{
	Use:   "astir",
	Short: "Compile a declarative grammar into generated Go",
	Long: `astir compiles a declarative grammar into Go source:
- Finite-automaton machines become a tokenizer's state table.
- LL(k) parser machines become a decision-tree-driven parser.
It never runs the generated recognizer itself; that is the target program's
job.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootFlags.verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootFlags.config = rootCmd.PersistentFlags().StringP("config", "c", "astir.toml", "project config file")
}

func loadConfig() (*driver.Config, error) {
	return driver.LoadConfig(*rootFlags.config)
}

// Execute runs the command tree, printing any returned error to stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
