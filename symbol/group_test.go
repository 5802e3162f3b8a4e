package symbol

import (
	"math/rand"
	"testing"
)

func setOf(lo, hi byte) map[byte]bool {
	m := map[byte]bool{}
	for v := int(lo); v <= int(hi); v++ {
		m[byte(v)] = true
	}
	return m
}

func unionOfPieces(t *testing.T, pieces []Piece) map[byte]bool {
	t.Helper()
	m := map[byte]bool{}
	for _, p := range pieces {
		br, ok := p.Group.(ByteRange)
		if !ok {
			t.Fatalf("expected ByteRange piece, got %T", p.Group)
		}
		for b := range setOf(br.Lo, br.Hi) {
			m[b] = true
		}
	}
	return m
}

func assertPairwiseDisjoint(t *testing.T, pieces []Piece) {
	t.Helper()
	for i := 0; i < len(pieces); i++ {
		for j := i + 1; j < len(pieces); j++ {
			if !pieces[i].Group.Disjoint(pieces[j].Group) {
				t.Fatalf("pieces %v and %v are not disjoint", pieces[i].Group, pieces[j].Group)
			}
		}
	}
}

// P1: for any two byte ranges, disjoining preserves the union and yields
// pairwise-disjoint pieces.
func TestByteRangeDisjoinFromProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		a1 := byte(rng.Intn(256))
		b1 := byte(rng.Intn(256))
		if a1 > b1 {
			a1, b1 = b1, a1
		}
		a2 := byte(rng.Intn(256))
		b2 := byte(rng.Intn(256))
		if a2 > b2 {
			a2, b2 = b2, a2
		}
		r1 := ByteRange{a1, b1}
		r2 := ByteRange{a2, b2}

		pieces := r1.DisjoinFrom(r2)
		assertPairwiseDisjoint(t, pieces)

		want := setOf(a1, b1)
		for b := range setOf(a2, b2) {
			want[b] = true
		}
		got := unionOfPieces(t, pieces)
		if len(got) != len(want) {
			t.Fatalf("union mismatch for [%d,%d] vs [%d,%d]: got %d bytes want %d", a1, b1, a2, b2, len(got), len(want))
		}
		for b := range want {
			if !got[b] {
				t.Fatalf("missing byte %d in disjoined union of [%d,%d] vs [%d,%d]", b, a1, b1, a2, b2)
			}
		}
	}
}

func TestByteRangeDisjoinFromExact(t *testing.T) {
	r1 := ByteRange{'a', 'z'}
	r2 := ByteRange{'k', 'p'}
	pieces := r1.DisjoinFrom(r2)
	if len(pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d: %v", len(pieces), pieces)
	}
	if pieces[0].Group.(ByteRange) != (ByteRange{'a', 'j'}) || pieces[0].Owner != OwnerSelf {
		t.Fatalf("unexpected bottom piece: %v", pieces[0])
	}
	if pieces[1].Group.(ByteRange) != (ByteRange{'k', 'p'}) || pieces[1].Owner != OwnerBoth {
		t.Fatalf("unexpected overlap piece: %v", pieces[1])
	}
	if pieces[2].Group.(ByteRange) != (ByteRange{'q', 'z'}) || pieces[2].Owner != OwnerSelf {
		t.Fatalf("unexpected top piece: %v", pieces[2])
	}
}

func TestLiteralSingleByteTreatedAsRange(t *testing.T) {
	lit := Literal{Bytes: []byte{'b'}}
	rng := ByteRange{'a', 'c'}
	if lit.Disjoint(rng) {
		t.Fatalf("expected overlap between literal 'b' and range [a,c]")
	}
	pieces := rng.DisjoinFrom(lit)
	assertPairwiseDisjoint(t, pieces)
}

func TestLiteralMultiByteDisjointFromRange(t *testing.T) {
	lit := Literal{Bytes: []byte("ab")}
	rng := ByteRange{'a', 'z'}
	if !lit.Disjoint(rng) {
		t.Fatalf("multi-byte literal must be disjoint from any byte range")
	}
}

func TestEpsilonDisjointFromEverything(t *testing.T) {
	e := Epsilon{}
	if !e.Equals(Epsilon{}) {
		t.Fatalf("epsilon must equal itself")
	}
	if e.Equals(ByteRange{0, 1}) {
		t.Fatalf("epsilon must not equal a non-epsilon group")
	}
	if !e.Disjoint(ByteRange{0, 1}) {
		t.Fatalf("epsilon must be disjoint from a byte range")
	}
}

func TestStmtRefDisjoinFromPartitionsByName(t *testing.T) {
	a := NewStmtRef("M", "A", "B", "C")
	b := NewStmtRef("M", "B", "C", "D")

	pieces := a.DisjoinFrom(b)
	assertPairwiseDisjoint(t, pieces)

	var gotLeft, gotShared, gotRight StmtRef
	for _, p := range pieces {
		sr := p.Group.(StmtRef)
		switch p.Owner {
		case OwnerSelf:
			gotLeft = sr
		case OwnerBoth:
			gotShared = sr
		case OwnerOther:
			gotRight = sr
		}
	}
	if len(gotLeft.Names) != 1 || gotLeft.Names[0] != "A" {
		t.Fatalf("unexpected left-only piece: %v", gotLeft)
	}
	if len(gotShared.Names) != 2 {
		t.Fatalf("unexpected shared piece: %v", gotShared)
	}
	if len(gotRight.Names) != 1 || gotRight.Names[0] != "D" {
		t.Fatalf("unexpected right-only piece: %v", gotRight)
	}
}

func TestStmtRefDifferentMachinesAreDisjoint(t *testing.T) {
	a := NewStmtRef("M1", "A")
	b := NewStmtRef("M2", "A")
	if !a.Disjoint(b) {
		t.Fatalf("statement references in different machines must be disjoint")
	}
}
