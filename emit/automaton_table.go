package emit

import (
	"fmt"
	"strings"

	"github.com/astirlang/astir/register"
	"github.com/astirlang/astir/symbol"
)

// StateMapEnumerated renders the ${{StateMapEnumerated}} macro: the
// pseudo-DFA as a Go table of states, each a list of (condition, target,
// actions) transitions, plus which states are final. The condition and
// action encoding stays close to the in-memory symbol.Group/register.Action
// shapes rather than compiling them down further — actually executing a
// transition (matching a condition against live input, dispatching an
// action by name) is the runtime's job, per the out-of-scope boundary on
// the recognizer library; this table is the contract the runtime walks.
func (u *Unit) StateMapEnumerated() (string, error) {
	if u.Automaton == nil {
		return "", fmt.Errorf("machine %q has no compiled automaton to render", u.Machine.Name())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "var states = []state{\n")
	for i, st := range u.Automaton.States {
		fmt.Fprintf(&b, "\t{ // state %d\n", i)
		fmt.Fprintf(&b, "\t\tfinal: %v,\n", st.Final)
		fmt.Fprintf(&b, "\t\tentry: %s,\n", renderActions(st.Entry))
		fmt.Fprintf(&b, "\t\ttransitions: []transition{\n")
		for _, tr := range st.Transitions {
			fmt.Fprintf(&b, "\t\t\t{condition: %s, target: %d, actions: %s},\n",
				renderCondition(tr.Condition), tr.Target, renderActions(tr.Actions))
		}
		fmt.Fprintf(&b, "\t\t},\n")
		fmt.Fprintf(&b, "\t},\n")
	}
	fmt.Fprintf(&b, "}\n\n")
	fmt.Fprintf(&b, "const initialState = %d\n", u.Automaton.Initial)

	return b.String(), nil
}

func renderCondition(g symbol.Group) string {
	switch v := g.(type) {
	case symbol.ByteRange:
		return fmt.Sprintf("byteRange{lo: 0x%02x, hi: 0x%02x}", v.Lo, v.Hi)
	case symbol.Literal:
		return fmt.Sprintf("literal{bytes: []byte(%q)}", string(v.Bytes))
	case symbol.StmtRef:
		names := make([]string, len(v.Names))
		for i, n := range v.Names {
			names[i] = fmt.Sprintf("%q", n)
		}
		return fmt.Sprintf("stmtRef{machine: %q, names: []string{%s}}", v.Machine, strings.Join(names, ", "))
	case symbol.Epsilon:
		return "epsilon{}"
	default:
		return "nil"
	}
}

func renderActions(r *register.Register) string {
	if r == nil || r.Len() == 0 {
		return "nil"
	}
	var parts []string
	for _, a := range r.Actions() {
		parts = append(parts, fmt.Sprintf("{kind: %q, path: %q, target: %q, payload: %q}", a.Kind, a.Path, a.Target, a.Payload))
	}
	return "[]action{" + strings.Join(parts, ", ") + "}"
}
