package grammar

import (
	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/register"
)

// RegexAction is one @ACTION:FIELDNAME suffix attached to a regex root node.
type RegexAction struct {
	Kind      register.Kind
	FieldName string
	Field     *Field
	Pos       verr.Position
}

// RegexNode is the sum type of the regex AST: Disjunctive, Conjunctive,
// Repetitive, and the primitives (Empty, byte range/string literal, any-of,
// any-except, arbitrary symbol, and reference-by-name). Every node carries
// the list of actions suffixed onto it in source.
type RegexNode interface {
	ActionList() []RegexAction
}

// Infinite is the sentinel Repetitive.Max value meaning "no upper bound".
const Infinite = -1

type Disjunctive struct {
	Children []RegexNode
	Actions  []RegexAction
}

func (n *Disjunctive) ActionList() []RegexAction { return n.Actions }

type Conjunctive struct {
	Children []RegexNode
	Actions  []RegexAction
}

func (n *Conjunctive) ActionList() []RegexAction { return n.Actions }

// Repetitive wraps an atomic node with a ⟨min,max⟩ repeat count. Max ==
// Infinite means unbounded; Min == Infinite is forbidden by the compiler.
type Repetitive struct {
	Min, Max int
	Atom     RegexNode
	Actions  []RegexAction
}

func (n *Repetitive) ActionList() []RegexAction { return n.Actions }

type EmptyNode struct {
	Actions []RegexAction
}

func (n *EmptyNode) ActionList() []RegexAction { return n.Actions }

// ByteRangeNode matches a single byte in [Lo, Hi].
type ByteRangeNode struct {
	Lo, Hi  byte
	Actions []RegexAction
}

func (n *ByteRangeNode) ActionList() []RegexAction { return n.Actions }

// LiteralNode matches an exact byte string; legal with length > 1 only on a
// raw-alphabet automaton.
type LiteralNode struct {
	Bytes   []byte
	Actions []RegexAction
}

func (n *LiteralNode) ActionList() []RegexAction { return n.Actions }

// AnyOfNode matches one byte from the union of Ranges.
type AnyOfNode struct {
	Ranges  []ByteRangeNode
	Actions []RegexAction
}

func (n *AnyOfNode) ActionList() []RegexAction { return n.Actions }

// AnyExceptNode matches one byte not in the union of Ranges.
type AnyExceptNode struct {
	Ranges  []ByteRangeNode
	Actions []RegexAction
}

func (n *AnyExceptNode) ActionList() []RegexAction { return n.Actions }

// ArbitraryNode ('.') matches any single symbol of the enclosing machine's
// alphabet: byte [0,255] for a raw automaton, or the terminal set of every
// root production of the `on` machine otherwise.
type ArbitraryNode struct {
	Actions []RegexAction
}

func (n *ArbitraryNode) ActionList() []RegexAction { return n.Actions }

// ReferenceNode names another statement, resolved during initialization.
// SourceMachine is the machine the reference was written in (for
// disambiguating same-named statements across composed machines); Resolved
// and DefiningMachine are filled in by reference completion.
type ReferenceNode struct {
	Name            string
	Resolved        Statement
	DefiningMachine *Machine
	Pos             verr.Position
	Actions         []RegexAction
}

func (n *ReferenceNode) ActionList() []RegexAction { return n.Actions }
