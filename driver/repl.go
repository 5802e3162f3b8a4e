package driver

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"

	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/grammar/ll"
	"github.com/astirlang/astir/grammar/nfabuilder"
	"github.com/astirlang/astir/syntax"
)

// REPL is an interactive grammar-exploration session: load a grammar file,
// then query its machines' structure and first-sets without going through
// the CLI's compile/describe one-shot subcommands. Grounded on the pack's
// own readline-driven interpreter loops; unlike them, a REPL session here
// holds no evaluation environment, only the last-loaded *grammar.Tree.
type REPL struct {
	log       *logrus.Logger
	rl        *readline.Instance
	sessionID string
	src       string
	srcPath   string
	tree      *grammar.Tree
}

// NewREPL constructs a REPL reading from the terminal with a line editor.
func NewREPL(log *logrus.Logger) (*REPL, error) {
	rl, err := readline.NewEx(&readline.Config{Prompt: "astir> "})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}
	return &REPL{log: log, rl: rl, sessionID: uuid.NewString()}, nil
}

// Close releases the line editor's terminal resources.
func (r *REPL) Close() error { return r.rl.Close() }

// Run drives the read-eval-print loop until EOF (typically ctrl-D) or a
// ":quit" command.
func (r *REPL) Run(w io.Writer) {
	r.log.WithField("session_id", r.sessionID).Info("repl session started")
	pterm.Info.Println("astir repl — :load <file>, :machines, :describe, :first <machine> <statement>, :quit")
	for {
		line, err := r.rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if quit := r.eval(w, line); quit {
			break
		}
	}
	pterm.Info.Println("goodbye")
}

func (r *REPL) eval(w io.Writer, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case ":quit", ":q":
		return true
	case ":load":
		if len(args) != 1 {
			pterm.Error.Println("usage: :load <grammar-file>")
			return false
		}
		r.load(w, args[0])
	case ":machines":
		r.requireTree(w, func(tree *grammar.Tree) {
			for _, m := range tree.Machines() {
				fmt.Fprintln(w, m.Name())
			}
		})
	case ":describe":
		r.requireTree(w, func(tree *grammar.Tree) {
			Describe(w, tree)
		})
	case ":first":
		if len(args) != 2 {
			pterm.Error.Println("usage: :first <machine> <statement>")
			return false
		}
		r.first(w, args[0], args[1])
	default:
		pterm.Error.Printfln("unknown command %q", cmd)
	}
	return false
}

func (r *REPL) load(w io.Writer, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	tree, err := syntax.Parse(string(data), path)
	if err != nil {
		r.reportErr(w, string(data), err)
		return
	}
	if err := tree.Initialize(grammar.BuildHooks{
		BuildAutomaton: nfabuilder.Build,
		BuildParser:    ll.Build,
	}); err != nil {
		r.reportErr(w, string(data), err)
		return
	}
	r.src, r.srcPath, r.tree = string(data), path, tree
	pterm.Success.Printfln("loaded %s (%d machines)", path, len(tree.Machines()))
}

func (r *REPL) requireTree(w io.Writer, f func(*grammar.Tree)) {
	if r.tree == nil {
		pterm.Error.Println("no grammar loaded; use :load <file>")
		return
	}
	f(r.tree)
}

func (r *REPL) first(w io.Writer, machineName, stmtName string) {
	r.requireTree(w, func(tree *grammar.Tree) {
		m, ok := tree.Machine(machineName)
		if !ok {
			pterm.Error.Printfln("no such machine %q", machineName)
			return
		}
		s, ok := m.Statement(stmtName)
		if !ok {
			pterm.Error.Printfln("no such statement %q in machine %q", stmtName, machineName)
			return
		}
		firster := ll.NewFirster(m)
		for _, g := range firster.FirstOfStatement(s, nil) {
			fmt.Fprintln(w, g.String())
		}
	})
}

func (r *REPL) reportErr(w io.Writer, src string, err error) {
	switch e := err.(type) {
	case *verr.SpecError:
		RenderDiagnostic(w, src, e)
	case verr.SpecErrors:
		RenderDiagnostics(w, src, e)
	default:
		pterm.Error.Println(err.Error())
	}
}
