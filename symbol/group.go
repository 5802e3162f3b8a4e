// Package symbol implements the condition sets ("symbol groups") that label
// automaton transitions: the empty condition (ε), byte ranges, literal byte
// strings, and references to the terminal-type set of a statement in another
// machine. Every group supports equality, disjointness, and disjoining —
// splitting the union of two groups into pairwise-disjoint pieces while
// preserving which original group each piece came from.
package symbol

import (
	"fmt"
	"sort"
	"strings"
)

// Group is a condition attached to an automaton transition.
type Group interface {
	fmt.Stringer

	// Equals reports structural equality. Reflexive and symmetric.
	Equals(other Group) bool

	// Disjoint reports whether the two groups share no member. Two groups
	// that are Equal are never Disjoint unless both are empty sets other
	// than ε (which cannot occur for the concrete kinds defined here).
	Disjoint(other Group) bool

	// DisjoinFrom splits the union of g and other into pairwise-disjoint
	// pieces, each tagged with which side(s) of the original union it was
	// drawn from. The returned pieces' union equals g ∪ other.
	DisjoinFrom(other Group) []Piece
}

// Owner marks which original input(s) a disjoined Piece descended from.
type Owner uint8

const (
	// OwnerSelf means the piece came only from the receiver of DisjoinFrom.
	OwnerSelf Owner = iota
	// OwnerOther means the piece came only from the argument of DisjoinFrom.
	OwnerOther
	// OwnerBoth means the piece is the overlap of both inputs.
	OwnerBoth
)

// Piece is one fragment of a disjoining result.
type Piece struct {
	Group Group
	Owner Owner
}

// Epsilon is the empty condition (ε). It is disjoint from every non-ε group
// and equal only to itself.
type Epsilon struct{}

func (Epsilon) String() string { return "ε" }

func (Epsilon) Equals(other Group) bool {
	_, ok := other.(Epsilon)
	return ok
}

func (e Epsilon) Disjoint(other Group) bool {
	return !e.Equals(other)
}

func (e Epsilon) DisjoinFrom(other Group) []Piece {
	if e.Equals(other) {
		return []Piece{{Group: e, Owner: OwnerBoth}}
	}
	return []Piece{
		{Group: e, Owner: OwnerSelf},
		{Group: other, Owner: OwnerOther},
	}
}

// ByteRange is an inclusive range [Lo, Hi] over raw input bytes.
type ByteRange struct {
	Lo, Hi byte
}

func (r ByteRange) String() string {
	if r.Lo == r.Hi {
		return fmt.Sprintf("[%#02x]", r.Lo)
	}
	return fmt.Sprintf("[%#02x-%#02x]", r.Lo, r.Hi)
}

func (r ByteRange) Equals(other Group) bool {
	switch o := other.(type) {
	case ByteRange:
		return r.Lo == o.Lo && r.Hi == o.Hi
	case Literal:
		return len(o.Bytes) == 1 && r.Lo == o.Bytes[0] && r.Hi == o.Bytes[0]
	default:
		return false
	}
}

func (r ByteRange) overlapsRange(o ByteRange) bool {
	return r.Lo <= o.Hi && o.Lo <= r.Hi
}

func (r ByteRange) Disjoint(other Group) bool {
	switch o := other.(type) {
	case Epsilon:
		return true
	case ByteRange:
		return !r.overlapsRange(o)
	case Literal:
		if len(o.Bytes) == 1 {
			return !r.overlapsRange(ByteRange{o.Bytes[0], o.Bytes[0]})
		}
		return true
	case StmtRef:
		return true
	default:
		return true
	}
}

// DisjoinFrom splits two overlapping byte ranges into up to three pieces: a
// bottom piece owned by whichever range starts earlier, the shared overlap,
// and a top piece owned by whichever range ends later.
func (r ByteRange) DisjoinFrom(other Group) []Piece {
	switch o := other.(type) {
	case Literal:
		if len(o.Bytes) == 1 {
			return r.DisjoinFrom(ByteRange{o.Bytes[0], o.Bytes[0]})
		}
		return []Piece{
			{Group: r, Owner: OwnerSelf},
			{Group: o, Owner: OwnerOther},
		}
	case ByteRange:
		if r.Disjoint(o) {
			return []Piece{
				{Group: r, Owner: OwnerSelf},
				{Group: o, Owner: OwnerOther},
			}
		}
		if r.Lo == o.Lo && r.Hi == o.Hi {
			return []Piece{{Group: r, Owner: OwnerBoth}}
		}

		lo := maxByte(r.Lo, o.Lo)
		hi := minByte(r.Hi, o.Hi)

		var pieces []Piece
		if lo > 0 && lo-1 >= minByte(r.Lo, o.Lo) {
			var bottomOwner Owner
			if r.Lo < o.Lo {
				bottomOwner = OwnerSelf
			} else {
				bottomOwner = OwnerOther
			}
			if r.Lo != o.Lo {
				pieces = append(pieces, Piece{Group: ByteRange{minByte(r.Lo, o.Lo), lo - 1}, Owner: bottomOwner})
			}
		}
		pieces = append(pieces, Piece{Group: ByteRange{lo, hi}, Owner: OwnerBoth})
		if hi < 0xff {
			var topOwner Owner
			if r.Hi > o.Hi {
				topOwner = OwnerSelf
			} else {
				topOwner = OwnerOther
			}
			if r.Hi != o.Hi {
				pieces = append(pieces, Piece{Group: ByteRange{hi + 1, maxByte(r.Hi, o.Hi)}, Owner: topOwner})
			}
		}
		return pieces
	default:
		return []Piece{
			{Group: r, Owner: OwnerSelf},
			{Group: other, Owner: OwnerOther},
		}
	}
}

func maxByte(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}

func minByte(a, b byte) byte {
	if a < b {
		return a
	}
	return b
}

// Literal is a multi-byte literal string. It is only a legal transition
// condition on automata whose input alphabet is raw bytes; single machines
// consuming a statement-reference alphabet never see one of length > 1.
type Literal struct {
	Bytes []byte
}

func (l Literal) String() string { return fmt.Sprintf("%q", string(l.Bytes)) }

func (l Literal) Equals(other Group) bool {
	switch o := other.(type) {
	case Literal:
		return string(l.Bytes) == string(o.Bytes)
	case ByteRange:
		return o.Equals(l)
	default:
		return false
	}
}

func (l Literal) Disjoint(other Group) bool {
	switch o := other.(type) {
	case Epsilon:
		return true
	case Literal:
		return string(l.Bytes) != string(o.Bytes)
	case ByteRange:
		return o.Disjoint(l)
	default:
		return true
	}
}

func (l Literal) DisjoinFrom(other Group) []Piece {
	switch o := other.(type) {
	case ByteRange:
		if len(l.Bytes) == 1 {
			return ByteRange{l.Bytes[0], l.Bytes[0]}.DisjoinFrom(o)
		}
		return []Piece{
			{Group: l, Owner: OwnerSelf},
			{Group: o, Owner: OwnerOther},
		}
	case Literal:
		if l.Equals(o) {
			return []Piece{{Group: l, Owner: OwnerBoth}}
		}
		return []Piece{
			{Group: l, Owner: OwnerSelf},
			{Group: o, Owner: OwnerOther},
		}
	default:
		return []Piece{
			{Group: l, Owner: OwnerSelf},
			{Group: other, Owner: OwnerOther},
		}
	}
}

// StmtRef denotes "any instance of one of these statements belonging to
// Machine" — the condition an automaton places on its input stream when that
// stream is itself the output of another machine (a terminal-type alphabet).
type StmtRef struct {
	Machine string
	// Names is kept insertion-ordered and deduplicated; two StmtRef groups
	// are equal iff their Machine and name sets match regardless of order.
	Names []string
}

func NewStmtRef(machine string, names ...string) StmtRef {
	seen := map[string]bool{}
	var ordered []string
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		ordered = append(ordered, n)
	}
	return StmtRef{Machine: machine, Names: ordered}
}

func (r StmtRef) String() string {
	return fmt.Sprintf("%s{%s}", r.Machine, strings.Join(r.Names, ","))
}

func (r StmtRef) nameSet() map[string]bool {
	m := make(map[string]bool, len(r.Names))
	for _, n := range r.Names {
		m[n] = true
	}
	return m
}

func (r StmtRef) Equals(other Group) bool {
	o, ok := other.(StmtRef)
	if !ok || o.Machine != r.Machine || len(o.Names) != len(r.Names) {
		return false
	}
	os := o.nameSet()
	for _, n := range r.Names {
		if !os[n] {
			return false
		}
	}
	return true
}

func (r StmtRef) Disjoint(other Group) bool {
	o, ok := other.(StmtRef)
	if !ok {
		return true
	}
	if o.Machine != r.Machine {
		return true
	}
	os := o.nameSet()
	for _, n := range r.Names {
		if os[n] {
			return false
		}
	}
	return true
}

// DisjoinFrom partitions the statement-reference sets by name into shared,
// left-only, and right-only pieces, exactly as required for disjoining two
// alternative reference conditions over the same machine.
func (r StmtRef) DisjoinFrom(other Group) []Piece {
	o, ok := other.(StmtRef)
	if !ok || o.Machine != r.Machine {
		return []Piece{
			{Group: r, Owner: OwnerSelf},
			{Group: other, Owner: OwnerOther},
		}
	}

	os := o.nameSet()
	rs := r.nameSet()

	var shared, leftOnly, rightOnly []string
	for _, n := range r.Names {
		if os[n] {
			shared = append(shared, n)
		} else {
			leftOnly = append(leftOnly, n)
		}
	}
	for _, n := range o.Names {
		if !rs[n] {
			rightOnly = append(rightOnly, n)
		}
	}

	sort.Strings(shared)
	sort.Strings(leftOnly)
	sort.Strings(rightOnly)

	var pieces []Piece
	if len(leftOnly) > 0 {
		pieces = append(pieces, Piece{Group: NewStmtRef(r.Machine, leftOnly...), Owner: OwnerSelf})
	}
	if len(shared) > 0 {
		pieces = append(pieces, Piece{Group: NewStmtRef(r.Machine, shared...), Owner: OwnerBoth})
	}
	if len(rightOnly) > 0 {
		pieces = append(pieces, Piece{Group: NewStmtRef(r.Machine, rightOnly...), Owner: OwnerOther})
	}
	return pieces
}
