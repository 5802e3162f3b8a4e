package emit

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
)

//go:embed resources/runtime_core.go
var runtimeCoreSrc string

// RenderGo assembles the runtime contract and the unit's rendered macro
// sections into one formatted Go source file, following the same
// parse-reformat-rename-package assembly the teacher's own code generator
// uses for its lexer/parser output: build each section as text, concatenate
// under a template, then run the whole thing through go/parser + go/format
// so the result is canonical regardless of how the section renderers
// indented their own output.
func RenderGo(u *Unit, pkgName string) ([]byte, error) {
	typeDecls, err := u.TypeDeclarations()
	if err != nil {
		return nil, fmt.Errorf("rendering type declarations: %w", err)
	}

	var stateMap, parsingDefs string
	switch {
	case u.Automaton != nil && u.Compact:
		stateMap, err = u.StateMapCompact()
		if err != nil {
			// Not every automaton is byte-indexable (a machine reading
			// another machine's terminal set carries stmtRef conditions);
			// fall back to the always-applicable enumerated rendering
			// rather than failing the whole build over a --compact request.
			stateMap, err = u.StateMapEnumerated()
			if err != nil {
				return nil, fmt.Errorf("rendering state map: %w", err)
			}
		}
	case u.Automaton != nil:
		stateMap, err = u.StateMapEnumerated()
		if err != nil {
			return nil, fmt.Errorf("rendering state map: %w", err)
		}
	case u.Decisions != nil:
		parsingDefs, err = u.ParsingDefinitions()
		if err != nil {
			return nil, fmt.Errorf("rendering parsing definitions: %w", err)
		}
	}

	const assembly = `// Code generated by astir. DO NOT EDIT.
${{RuntimeCore}}

${{StateMapEnumerated}}

${{ParsingDefinitions}}

${{TypeDeclarations}}
`
	src := Expand(assembly, map[string]string{
		"RuntimeCore":        runtimeCoreSrc,
		"StateMapEnumerated": stateMap,
		"ParsingDefinitions": parsingDefs,
		"TypeDeclarations":   typeDecls,
	})

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, u.Machine.Name()+".go", src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("generated source for machine %q does not parse: %w", u.Machine.Name(), err)
	}
	f.Name = ast.NewIdent(pkgName)

	var out bytes.Buffer
	if err := format.Node(&out, fset, f); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
