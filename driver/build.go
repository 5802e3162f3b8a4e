package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/emit"
	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/grammar/ll"
	"github.com/astirlang/astir/grammar/nfabuilder"
	"github.com/astirlang/astir/syntax"
)

// Artifact is one machine's generated output: the source file name it will
// be written under and the formatted Go it contains.
type Artifact struct {
	MachineName string
	FileName    string
	Source      []byte
}

// Result is everything a Build run produces: the run's correlation id, the
// initialized tree (for describe/repl to introspect), and one Artifact per
// machine the tree declares.
type Result struct {
	BuildID   string
	Tree      *grammar.Tree
	Artifacts []*Artifact
}

// BuildOptions controls a Build run beyond the grammar source and package
// name every run needs.
type BuildOptions struct {
	// Compact renders finite-automaton transition tables as a row-displaced
	// byte-indexed lookup (emit.Unit.Compact) instead of the plain
	// per-state transition list.
	Compact bool
	// Config supplies per-machine lookahead overrides (Config.KFor); nil
	// means no project file was loaded, so every machine keeps the K its
	// own `LL(k) parser` header declares.
	Config *Config
}

// Build reads the grammar source at grmPath, parses it, runs the full
// initialization pipeline, and emits one Go source artifact per machine
// under pkgName. It is BuildWithOptions with zero BuildOptions; cmd/astir's
// compile subcommand calls BuildWithOptions directly.
func Build(log *logrus.Logger, grmPath string, pkgName string) (*Result, error) {
	return BuildWithOptions(log, grmPath, pkgName, BuildOptions{})
}

// BuildWithOptions is Build with BuildOptions, for callers that need
// control over compact table rendering or a project config's overrides.
func BuildWithOptions(log *logrus.Logger, grmPath string, pkgName string, opts BuildOptions) (*Result, error) {
	buildID := uuid.NewString()
	log = log.WithField("build_id", buildID).Logger

	src, err := os.ReadFile(grmPath)
	if err != nil {
		return nil, fmt.Errorf("read grammar file %s: %w", grmPath, err)
	}

	log.WithField("path", grmPath).Debug("parsing grammar source")
	tree, err := syntax.Parse(string(src), grmPath)
	if err != nil {
		return nil, err
	}

	for _, m := range tree.Machines() {
		if m.Kind != grammar.LLParserMachine {
			continue
		}
		if k := opts.Config.KFor(m.Name()); k > 0 {
			log.WithField("machine", m.Name()).WithField("k", k).Debug("applying configured lookahead override")
			m.K = k
		}
	}

	log.Debug("initializing grammar tree")
	if err := tree.Initialize(grammar.BuildHooks{
		BuildAutomaton: nfabuilder.Build,
		BuildParser:    ll.Build,
	}); err != nil {
		return nil, err
	}

	var artifacts []*Artifact
	for _, m := range tree.Machines() {
		log.WithField("machine", m.Name()).Debug("emitting machine")
		unit, err := emit.BuildUnit(m)
		if err != nil {
			return nil, &verr.SpecError{Kind: verr.KindGeneration, Cause: err, Pos: m.Pos, SourceName: grmPath}
		}
		unit.Compact = opts.Compact
		out, err := emit.RenderGo(unit, pkgName)
		if err != nil {
			return nil, &verr.SpecError{Kind: verr.KindGeneration, Cause: err, Pos: m.Pos, SourceName: grmPath}
		}
		artifacts = append(artifacts, &Artifact{
			MachineName: m.Name(),
			FileName:    machineFileName(m.Name()),
			Source:      out,
		})
	}

	return &Result{BuildID: buildID, Tree: tree, Artifacts: artifacts}, nil
}

func machineFileName(machineName string) string {
	return lowerFirst(machineName) + ".go"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

// Write writes every artifact in r to dir, creating it if necessary.
func (r *Result) Write(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, a := range r.Artifacts {
		path := filepath.Join(dir, a.FileName)
		if err := os.WriteFile(path, a.Source, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
