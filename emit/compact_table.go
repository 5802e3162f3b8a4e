package emit

import (
	"fmt"
	"strings"

	"github.com/astirlang/astir/compressor"
	"github.com/astirlang/astir/symbol"
)

// noTarget marks an absent transition in the dense byte-indexed table below;
// state index 0 is a legitimate target, so the table can't use it as a
// sentinel.
const noTarget = -1

// transitionActions carries the rare (state, byte) transition that captures
// or otherwise runs actions; bulk transitions (the overwhelming majority on
// any real tokenizer) carry none, so these are rendered as a short sparse
// list rather than repeated once per table cell.
type transitionActions struct {
	state  int
	byte   int
	render string
}

// StateMapCompact renders the ${{StateMapEnumerated}} macro as a
// byte-indexed dense transition table, compacted with the same two-stage
// scheme the teacher's lexical compiler applies to its own DFA tables:
// first collapse duplicate rows (UniqueEntriesTable), then pack the
// remaining distinct rows into overlapping row-displacement storage
// (RowDisplacementTable). It falls back to reporting an error the caller
// should treat as "use StateMapEnumerated instead" when the automaton has
// any non-byte-range condition (a reference to another machine's terminal
// set, which this table shape cannot index by byte).
func (u *Unit) StateMapCompact() (string, error) {
	if u.Automaton == nil {
		return "", fmt.Errorf("machine %q has no compiled automaton to render", u.Machine.Name())
	}

	rowCount := len(u.Automaton.States)
	entries := make([]int, rowCount*256)
	for i := range entries {
		entries[i] = noTarget
	}
	var actions []transitionActions

	for i, st := range u.Automaton.States {
		for _, tr := range st.Transitions {
			br, ok := tr.Condition.(symbol.ByteRange)
			if !ok {
				return "", fmt.Errorf("machine %q: condition %s is not byte-indexable, use the enumerated table", u.Machine.Name(), tr.Condition)
			}
			for b := int(br.Lo); b <= int(br.Hi); b++ {
				entries[i*256+b] = tr.Target
			}
			if tr.Actions != nil && tr.Actions.Len() > 0 {
				for b := int(br.Lo); b <= int(br.Hi); b++ {
					actions = append(actions, transitionActions{state: i, byte: b, render: renderActions(tr.Actions)})
				}
			}
		}
	}

	orig, err := compressor.NewOriginalTable(entries, 256)
	if err != nil {
		return "", fmt.Errorf("building original transition table: %w", err)
	}
	ueTab := compressor.NewUniqueEntriesTable()
	if err := ueTab.Compress(orig); err != nil {
		return "", fmt.Errorf("deduplicating transition rows: %w", err)
	}
	ueOrig, err := compressor.NewOriginalTable(ueTab.UniqueEntries, ueTab.OriginalColCount)
	if err != nil {
		return "", fmt.Errorf("building unique-entries table: %w", err)
	}
	rdTab := compressor.NewRowDisplacementTable(noTarget)
	if err := rdTab.Compress(ueOrig); err != nil {
		return "", fmt.Errorf("row-displacing transition table: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// compactStates carries per-state finality and entry actions; outgoing\n")
	fmt.Fprintf(&b, "// transitions live in the row-displaced tables below instead of state.\n")
	fmt.Fprintf(&b, "// transitions, since every transition here is a single byte.\n")
	fmt.Fprintf(&b, "var compactStates = []state{\n")
	for i, st := range u.Automaton.States {
		fmt.Fprintf(&b, "\t{final: %v, entry: %s}, // state %d\n", st.Final, renderActions(st.Entry), i)
	}
	fmt.Fprintf(&b, "}\n\n")

	fmt.Fprintf(&b, "const initialState = %d\n\n", u.Automaton.Initial)

	fmt.Fprintf(&b, "// uniqueRowOf maps a state to the row number it shares with every other\n")
	fmt.Fprintf(&b, "// state whose 256-byte transition row is identical.\n")
	fmt.Fprintf(&b, "var uniqueRowOf = %s\n\n", renderIntSlice(ueTab.RowNums))
	fmt.Fprintf(&b, "// rowBase is the row-displacement table's storage offset per unique row.\n")
	fmt.Fprintf(&b, "var rowBase = %s\n\n", renderIntSlice(rdTab.RowDisplacement))
	fmt.Fprintf(&b, "var compactEntries = %s\n\n", renderIntSlice(rdTab.Entries))
	fmt.Fprintf(&b, "var compactBounds = %s\n\n", renderIntSlice(rdTab.Bounds))

	fmt.Fprintf(&b, "var compactActionOverrides = map[[2]int][]action{\n")
	for _, a := range actions {
		fmt.Fprintf(&b, "\t{%d, %d}: %s,\n", a.state, a.byte, a.render)
	}
	fmt.Fprintf(&b, "}\n\n")

	fmt.Fprintf(&b, "// lookupCompact resolves a (state, byte) pair through the row-displaced\n")
	fmt.Fprintf(&b, "// transition table: state's unique row is looked up, then the bounds table\n")
	fmt.Fprintf(&b, "// confirms the displaced column at that row's base really belongs to it\n")
	fmt.Fprintf(&b, "// (two unique rows can overlap in storage wherever their non-empty columns\n")
	fmt.Fprintf(&b, "// don't collide).\n")
	fmt.Fprintf(&b, "func lookupCompact(state, b int) int {\n")
	fmt.Fprintf(&b, "\trow := uniqueRowOf[state]\n")
	fmt.Fprintf(&b, "\td := rowBase[row]\n")
	fmt.Fprintf(&b, "\tif compactBounds[d+b] != row {\n")
	fmt.Fprintf(&b, "\t\treturn %d\n", noTarget)
	fmt.Fprintf(&b, "\t}\n")
	fmt.Fprintf(&b, "\treturn compactEntries[d+b]\n")
	fmt.Fprintf(&b, "}\n")

	return b.String(), nil
}

func renderIntSlice(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%d", x)
	}
	return "[]int{" + strings.Join(parts, ", ") + "}"
}
