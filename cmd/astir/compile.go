package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/driver"
)

var compileFlags = struct {
	output  *string
	pkg     *string
	dumpIR  *string
	compact *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile a grammar into a generated Go package",
		Example: `  astir compile grammar.astir -o gen -p lex`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output directory (default project config's output_dir)")
	compileFlags.pkg = cmd.Flags().StringP("package", "p", "", "generated package name (default project config's package_name)")
	compileFlags.dumpIR = cmd.Flags().String("dump-ir", "", "also write a binary IR dump to this path")
	compileFlags.compact = cmd.Flags().Bool("compact", false, "render finite-automaton transition tables row-displaced")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := driver.NewLogger(*rootFlags.verbose)

	grmPath := args[0]
	outDir := *compileFlags.output
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	pkgName := *compileFlags.pkg
	if pkgName == "" {
		pkgName = cfg.PackageName
	}

	result, err := driver.BuildWithOptions(log, grmPath, pkgName, driver.BuildOptions{
		Compact: *compileFlags.compact,
		Config:  cfg,
	})
	if err != nil {
		return reportCompileError(grmPath, err)
	}

	if err := result.Write(outDir); err != nil {
		return err
	}
	log.WithField("build_id", result.BuildID).Infof("wrote %d file(s) to %s", len(result.Artifacts), outDir)

	if *compileFlags.dumpIR != "" {
		dump := driver.BuildIRDump(result)
		if err := os.WriteFile(*compileFlags.dumpIR, driver.EncodeIRDump(dump), 0644); err != nil {
			return fmt.Errorf("write IR dump: %w", err)
		}
	}

	return nil
}

func reportCompileError(grmPath string, err error) error {
	src, readErr := os.ReadFile(grmPath)
	if readErr != nil {
		return err
	}
	switch e := err.(type) {
	case *verr.SpecError:
		driver.RenderDiagnostic(os.Stderr, string(src), e)
	case verr.SpecErrors:
		driver.RenderDiagnostics(os.Stderr, string(src), e)
	default:
		return err
	}
	return fmt.Errorf("compilation failed")
}
