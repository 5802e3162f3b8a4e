package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/astirlang/astir/grammar/ll"
)

// ParsingDefinitions renders the ${{ParsingDefinitions}} macro: one decision
// function per entry in the unit's decision forest, each a switch over the
// next input symbol that either names the winning alternative or recurses
// into a nested decision function for deeper lookahead — the direct
// structural image of an ll.DecisionPoint tree.
func (u *Unit) ParsingDefinitions() (string, error) {
	if u.Decisions == nil {
		return "", fmt.Errorf("machine %q has no compiled decision forest to render", u.Machine.Name())
	}

	paths := make([]string, 0, len(u.Decisions.Decisions))
	for p := range u.Decisions.Decisions {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, path := range paths {
		renderDecisionFunc(&b, funcName(path), u.Decisions.Decisions[path])
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func funcName(path string) string {
	return "decide" + exportedName(path)
}

func renderDecisionFunc(b *strings.Builder, name string, dp *ll.DecisionPoint) {
	fmt.Fprintf(b, "func %s(next func() symbolCondition) int {\n", name)
	fmt.Fprintf(b, "\tswitch sym := next(); {\n")
	for _, e := range dp.Edges {
		fmt.Fprintf(b, "\tcase matches(sym, %s):\n", renderCondition(e.Condition))
		if e.Next != nil {
			nested := name + "_" + conditionSlug(e.Condition)
			fmt.Fprintf(b, "\t\treturn %s(next)\n", nested)
		} else {
			fmt.Fprintf(b, "\t\treturn %d\n", e.Resolved)
		}
	}
	fmt.Fprintf(b, "\tdefault:\n\t\treturn -1\n")
	fmt.Fprintf(b, "\t}\n}\n\n")

	for _, e := range dp.Edges {
		if e.Next != nil {
			renderDecisionFunc(b, name+"_"+conditionSlug(e.Condition), e.Next)
		}
	}
}

func conditionSlug(g fmt.Stringer) string {
	s := g.String()
	var out strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out.WriteRune(r)
		default:
			out.WriteRune('_')
		}
	}
	return out.String()
}
