package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/astirlang/astir/driver"
)

func init() {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive grammar-exploration session",
		Args:  cobra.NoArgs,
		RunE:  runREPL,
	}
	rootCmd.AddCommand(cmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	log := driver.NewLogger(*rootFlags.verbose)
	r, err := driver.NewREPL(log)
	if err != nil {
		return err
	}
	defer r.Close()
	r.Run(os.Stdout)
	return nil
}
