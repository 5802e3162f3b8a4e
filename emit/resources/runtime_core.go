package runtimecore

// This file is the recognizer runtime contract every generated machine
// plugs into. It declares the interface; it does not implement a lexer or
// parser loop — that is out of scope for the compiler, same as for the
// core semantic model. A concrete runtime package provides real Builder,
// symbolCondition and matches() implementations; what's emitted alongside
// this is only the per-machine state/type/decision tables.

// byteRange, literal, stmtRef, and epsilon are the four condition shapes a
// transition can carry, mirroring symbol.Group's concrete kinds.
type byteRange struct {
	lo, hi byte
}

type literal struct {
	bytes []byte
}

type stmtRef struct {
	machine string
	names   []string
}

type epsilon struct{}

// action mirrors one register.Action: a side effect to dispatch by kind
// name against a Builder when a transition fires.
type action struct {
	kind    string
	path    string
	target  string
	payload string
}

// transition is one disjoint edge out of a state.
type transition struct {
	condition any
	target    int
	actions   []action
}

// state is one pseudo-DFA state: whether it accepts, the actions
// accumulated on entry, and its outgoing transitions.
type state struct {
	final       bool
	entry       []action
	transitions []transition
}

// symbolCondition is whatever the runtime's input stream yields per step:
// a raw byte for a raw-alphabet machine, or a terminal-type identifier for
// a machine reading another machine's output.
type symbolCondition any

// Builder receives every action dispatched while a machine runs, named
// after register.Kind. A generated machine never calls these by switching
// on table data at runtime itself — it looks the kind up in the actions
// slice and calls through this interface, so the same generated tables
// work against any Builder implementation.
type Builder interface {
	Flag(path, target string)
	Unflag(path, target string)
	InitiateCapture(path string)
	Capture(path, target string)
	Empty(path, target string)
	Append(path, target string)
	Prepend(path, target string)
	Set(path, target, payload string)
	Unset(path, target string)
	Push(path, target, payload string)
	Pop(path, target string)
	Clear(path, target string)
	CreateContext(path, target string)
	TerminalizeContext(path string)
	ElevateContext(path string)
	IgnoreContext(path string)
}

// Dispatch calls the Builder method named by a.kind. It is the one place
// that translates the table-driven action encoding back into a typed call.
func Dispatch(b Builder, a action) {
	switch a.kind {
	case "Flag":
		b.Flag(a.path, a.target)
	case "Unflag":
		b.Unflag(a.path, a.target)
	case "InitiateCapture":
		b.InitiateCapture(a.path)
	case "Capture":
		b.Capture(a.path, a.target)
	case "Empty":
		b.Empty(a.path, a.target)
	case "Append":
		b.Append(a.path, a.target)
	case "Prepend":
		b.Prepend(a.path, a.target)
	case "Set":
		b.Set(a.path, a.target, a.payload)
	case "Unset":
		b.Unset(a.path, a.target)
	case "Push":
		b.Push(a.path, a.target, a.payload)
	case "Pop":
		b.Pop(a.path, a.target)
	case "Clear":
		b.Clear(a.path, a.target)
	case "CreateContext":
		b.CreateContext(a.path, a.target)
	case "TerminalizeContext":
		b.TerminalizeContext(a.path)
	case "ElevateContext":
		b.ElevateContext(a.path)
	case "IgnoreContext":
		b.IgnoreContext(a.path)
	}
}

// matches reports whether a condition accepts the given input symbol. The
// raw-byte cases compare directly; a stmtRef condition compares against a
// terminal-type name carried by the symbol (a string, by convention, when
// the input stream is itself another machine's output).
func matches(sym symbolCondition, cond any) bool {
	switch c := cond.(type) {
	case byteRange:
		bb, ok := sym.(byte)
		return ok && bb >= c.lo && bb <= c.hi
	case literal:
		bs, ok := sym.([]byte)
		return ok && string(bs) == string(c.bytes)
	case stmtRef:
		name, ok := sym.(string)
		if !ok {
			return false
		}
		for _, n := range c.names {
			if n == name {
				return true
			}
		}
		return false
	default:
		return false
	}
}
