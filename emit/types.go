package emit

import (
	"fmt"
	"strings"

	"github.com/astirlang/astir/grammar"
)

// goFieldType maps a Field's kind to the Go type its generated struct field
// holds. Item/list fields reference the named statement's own generated
// type, so a forward declaration is always available — every type-forming
// statement gets a declaration in the same unit.
func goFieldType(f *grammar.Field) string {
	switch f.Kind {
	case grammar.FieldFlag:
		return "bool"
	case grammar.FieldRaw:
		return "[]byte"
	case grammar.FieldItem:
		return "*" + exportedName(f.TypeName)
	case grammar.FieldList:
		return "[]" + exportedName(f.TypeName)
	default:
		return "any"
	}
}

func exportedName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// TypeDeclarations renders the ${{TypeDeclarations}} macro: one Go type per
// type-forming statement in the unit's machine. Every Category becomes an
// interface, whether or not it has members, implemented by every member's struct (the
// member's own category-marker method); a Production or Pattern becomes a
// struct with its flattened fields, each implementing every ancestor
// category's marker method.
func (u *Unit) TypeDeclarations() (string, error) {
	var b strings.Builder

	for _, s := range u.Machine.Statements() {
		switch v := s.(type) {
		case *grammar.Category:
			name := exportedName(v.Name())
			fmt.Fprintf(&b, "type %s interface {\n\tis%s()\n}\n\n", name, name)
		case *grammar.Production:
			if err := renderAttributedStruct(&b, v.Name(), v); err != nil {
				return "", err
			}
		case *grammar.Pattern:
			if err := renderAttributedStruct(&b, v.Name(), v); err != nil {
				return "", err
			}
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func renderAttributedStruct(b *strings.Builder, name string, a grammar.Attributed) error {
	fields, err := a.FlattenedFields()
	if err != nil {
		return err
	}

	exported := exportedName(name)
	fmt.Fprintf(b, "type %s struct {\n", exported)
	for _, f := range fields {
		fmt.Fprintf(b, "\t%s %s\n", exportedName(f.Name), goFieldType(f))
	}
	fmt.Fprintf(b, "}\n\n")

	seen := map[*grammar.Category]bool{}
	parents := append([]*grammar.Category(nil), a.CategoryParents()...)
	for len(parents) > 0 {
		p := parents[0]
		parents = parents[1:]
		if seen[p] {
			continue
		}
		seen[p] = true
		fmt.Fprintf(b, "func (*%s) is%s() {}\n\n", exported, exportedName(p.Name()))
		parents = append(parents, p.CategoryParents()...)
	}
	return nil
}
