// Package register implements the action register: an ordered, set-like
// collection of side-effect descriptors attached to automaton states and
// transitions. Actions create tree-building context, capture input into
// fields, and manage typed/list-valued fields as a machine runs.
package register

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Kind enumerates the side effects an Action can carry.
type Kind string

const (
	Flag               = Kind("Flag")
	Unflag             = Kind("Unflag")
	InitiateCapture    = Kind("InitiateCapture")
	Capture            = Kind("Capture")
	Empty              = Kind("Empty")
	Append             = Kind("Append")
	Prepend            = Kind("Prepend")
	Set                = Kind("Set")
	Unset              = Kind("Unset")
	Push               = Kind("Push")
	Pop                = Kind("Pop")
	Clear              = Kind("Clear")
	CreateContext      = Kind("CreateContext")
	TerminalizeContext = Kind("TerminalizeContext")
	ElevateContext     = Kind("ElevateContext")
	IgnoreContext      = Kind("IgnoreContext")
)

// Field is the minimal view of a resolved field pointer an action needs: a
// stable identity distinct from its declared name (fields are renamed by
// flattening the category chain, but identity survives that).
type Field interface {
	FieldIdentity() string
}

// Action is one side-effect descriptor. Two actions are the same identity
// (and therefore deduplicated by a register) iff Kind, Path and Target match;
// Payload and Field are data, not identity.
type Action struct {
	Kind   Kind
	Path   string // context path the action applies within, e.g. "parent__child"
	Target string // target field name, or context child name for context actions

	Payload string // e.g. the named type stored by Set/Push
	Field   Field  // resolved field pointer, filled in during initialization
}

func (a Action) identity() string {
	return strings.Join([]string{string(a.Kind), a.Path, a.Target}, "\x00")
}

func (a Action) String() string {
	if a.Target == "" {
		return fmt.Sprintf("%s@%s", a.Kind, a.Path)
	}
	return fmt.Sprintf("%s@%s:%s", a.Kind, a.Path, a.Target)
}

// Register is an ordered set of actions: membership is by identity (kind +
// path + target), and iteration order is first-occurrence order.
type Register struct {
	entries *linkedhashmap.Map // identity string -> Action
}

// New returns an empty register.
func New(actions ...Action) *Register {
	r := &Register{entries: linkedhashmap.New()}
	r.AppendAll(actions...)
	return r
}

// Len reports the number of distinct actions held.
func (r *Register) Len() int {
	if r == nil || r.entries == nil {
		return 0
	}
	return r.entries.Size()
}

// Actions returns the actions in first-occurrence order.
func (r *Register) Actions() []Action {
	if r == nil || r.entries == nil {
		return nil
	}
	vals := r.entries.Values()
	out := make([]Action, len(vals))
	for i, v := range vals {
		out[i] = v.(Action)
	}
	return out
}

// Has reports whether an action with the same identity is already present.
func (r *Register) Has(a Action) bool {
	if r == nil || r.entries == nil {
		return false
	}
	_, found := r.entries.Get(a.identity())
	return found
}

// Append adds a single action if its identity is not already present,
// preserving the order of first occurrence.
func (r *Register) Append(a Action) {
	if r.entries == nil {
		r.entries = linkedhashmap.New()
	}
	if _, found := r.entries.Get(a.identity()); found {
		return
	}
	r.entries.Put(a.identity(), a)
}

// AppendAll appends each action in order, skipping duplicates.
func (r *Register) AppendAll(actions ...Action) {
	for _, a := range actions {
		r.Append(a)
	}
}

// Prepend returns a new register with actions prepended before r's existing
// content, preserving relative order within each side. Where an action from
// actions has the same identity as one already in r, the prepended copy is
// kept and r's occurrence is dropped.
func (r *Register) Prepend(actions ...Action) *Register {
	out := New(actions...)
	out.AppendAll(r.Actions()...)
	return out
}

// Union returns the register r + other: a new register containing r's
// actions followed by any of other's actions not already present in r,
// matching the spec's "surviving-transition then newcomer" merge order.
func Union(r, other *Register) *Register {
	out := New(r.Actions()...)
	out.AppendAll(other.Actions()...)
	return out
}

// Equals reports structural, order-sensitive equality: same actions (by
// identity) in the same first-occurrence order. Payload/Field differences on
// an otherwise-identical action are ignored, matching the spec's definition
// of action identity.
func (r *Register) Equals(other *Register) bool {
	a, b := r.Actions(), other.Actions()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].identity() != b[i].identity() {
			return false
		}
	}
	return true
}

// Copy returns a shallow, independent copy.
func (r *Register) Copy() *Register {
	return New(r.Actions()...)
}

func (r *Register) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, a := range r.Actions() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteString("}")
	return sb.String()
}
