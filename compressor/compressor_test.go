package compressor

import (
	"testing"
)

// byteTable builds a 256-column transition row for each state, filling
// noTarget everywhere except the given byte ranges, the same shape
// emit/compact_table.go builds from a *nfa.PseudoDFA before compressing it.
func byteTable(rows ...map[int]int) []int {
	const noTarget = -1
	const width = 256
	entries := make([]int, len(rows)*width)
	for i := range entries {
		entries[i] = noTarget
	}
	for r, row := range rows {
		for b, target := range row {
			entries[r*width+b] = target
		}
	}
	return entries
}

// TestCompressDigitLexerTable runs the exact two-stage pipeline
// emit/compact_table.go applies to a tokenizer's dense transition table: a
// three-state digit-run lexer (a start state and an accepting state that
// both loop "0"-"9" back into the accepting state, plus a dead-end state
// with no transitions) has two states sharing an identical row, which
// UniqueEntriesTable should collapse before RowDisplacementTable packs the
// remaining distinct rows.
func TestCompressDigitLexerTable(t *testing.T) {
	const noTarget = -1
	entries := byteTable(
		map[int]int{'0': 1, '1': 1, '2': 1, '3': 1, '4': 1, '5': 1, '6': 1, '7': 1, '8': 1, '9': 1}, // start: digit -> accept
		map[int]int{'0': 1, '1': 1, '2': 1, '3': 1, '4': 1, '5': 1, '6': 1, '7': 1, '8': 1, '9': 1}, // accept: digit -> accept (self-loop row, identical to start's)
		map[int]int{},                                                                              // dead end, e.g. an error state
	)
	orig, err := NewOriginalTable(entries, 256)
	if err != nil {
		t.Fatalf("NewOriginalTable: %v", err)
	}

	ueTab := NewUniqueEntriesTable()
	if err := ueTab.Compress(orig); err != nil {
		t.Fatalf("UniqueEntriesTable.Compress: %v", err)
	}
	if ueTab.RowNums[0] != ueTab.RowNums[1] {
		t.Fatalf("expected states 0 and 1 to share a unique row, got rows %v and %v", ueTab.RowNums[0], ueTab.RowNums[1])
	}
	if ueTab.RowNums[2] == ueTab.RowNums[0] {
		t.Fatalf("expected the dead-end state to occupy its own row")
	}
	uniqueRowCount := len(ueTab.UniqueEntries) / 256
	if uniqueRowCount != 2 {
		t.Fatalf("expected 2 unique rows, got %d", uniqueRowCount)
	}

	ueOrig, err := NewOriginalTable(ueTab.UniqueEntries, ueTab.OriginalColCount)
	if err != nil {
		t.Fatalf("NewOriginalTable on unique entries: %v", err)
	}
	rdTab := NewRowDisplacementTable(noTarget)
	if err := rdTab.Compress(ueOrig); err != nil {
		t.Fatalf("RowDisplacementTable.Compress: %v", err)
	}

	// Every (state, byte) pair round-trips through uniqueRowOf + the
	// row-displaced table exactly as lookupCompact resolves it in
	// generated code.
	for state := 0; state < 3; state++ {
		urow := ueTab.RowNums[state]
		for _, b := range []int{'0', '5', '9', 'a', ' '} {
			want := entries[state*256+b]
			got, err := rdTab.Lookup(urow, b)
			if err != nil {
				t.Fatalf("Lookup(%d,%d): %v", urow, b, err)
			}
			if got != want {
				t.Fatalf("state %d byte %q: want %d, got %d", state, rune(b), want, got)
			}
		}
	}
}

// TestRowDisplacementTablePacksOverlappingRows exercises the general
// row-displacement compressor directly on a small synthetic table, the way
// the teacher's own unit tests did, but keeps the fixture symbolic rather
// than returning to the original all-integer grid: each of the three rows
// below has four entries and one empty column, so their entry columns
// overlap and the compressor must move each row to a fresh displacement
// before lookups through the bounds table can tell them apart.
func TestRowDisplacementTablePacksOverlappingRows(t *testing.T) {
	const empty = -1
	entries := []int{
		1, empty, 1, 1, 1,
		1, 1, empty, 1, 1,
		1, 1, 1, empty, 1,
	}
	orig, err := NewOriginalTable(entries, 5)
	if err != nil {
		t.Fatalf("NewOriginalTable: %v", err)
	}

	tab := NewRowDisplacementTable(empty)
	if err := tab.Compress(orig); err != nil {
		t.Fatalf("Compress: %v", err)
	}

	rowCount, colCount := tab.OriginalTableSize()
	if rowCount != 3 || colCount != 5 {
		t.Fatalf("unexpected table size; want 3x5, got %dx%d", rowCount, colCount)
	}
	for row := 0; row < rowCount; row++ {
		for col := 0; col < colCount; col++ {
			v, err := tab.Lookup(row, col)
			if err != nil {
				t.Fatalf("Lookup(%d,%d): %v", row, col, err)
			}
			if want := entries[row*colCount+col]; v != want {
				t.Fatalf("entry (%d,%d): want %d, got %d", row, col, want, v)
			}
		}
	}

	if _, err := tab.Lookup(0, -1); err == nil {
		t.Fatalf("expected an error for a negative column")
	}
	if _, err := tab.Lookup(rowCount, 0); err == nil {
		t.Fatalf("expected an error for an out-of-range row")
	}
}
