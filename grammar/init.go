package grammar

import (
	"fmt"

	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/register"
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Tree is the semantic tree: every machine declared in one compilation,
// keyed by name in declaration order.
type Tree struct {
	machines *linkedhashmap.Map // name -> *Machine
}

func NewTree() *Tree {
	return &Tree{machines: linkedhashmap.New()}
}

func (t *Tree) AddMachine(m *Machine) error {
	if _, found := t.machines.Get(m.NameVal); found {
		return fmt.Errorf("%w: %s", semErrDuplicateMachine, m.NameVal)
	}
	t.machines.Put(m.NameVal, m)
	return nil
}

func (t *Tree) Machine(name string) (*Machine, bool) {
	v, found := t.machines.Get(name)
	if !found {
		return nil, false
	}
	return v.(*Machine), true
}

func (t *Tree) Machines() []*Machine {
	vals := t.machines.Values()
	out := make([]*Machine, len(vals))
	for i, v := range vals {
		out[i] = v.(*Machine)
	}
	return out
}

// BuildHooks lets the driver plug in the per-machine-kind construction step
// (NFA→pseudo-DFA for finite automata, LL(k) decision forest for parsers)
// without grammar importing those packages — they import grammar instead.
type BuildHooks struct {
	BuildAutomaton func(*Machine) error
	BuildParser    func(*Machine) error
}

// Initialize performs the full initialization pipeline described in §3's
// Lifecycle and §5's ordering guarantees: resolve the `on`/`uses` DAG into a
// leaves-first order, then for each machine resolve cross-references,
// validate fields and actions, detect illegal cycles, and finally invoke the
// matching build hook. Initialization is idempotent and safe to call more
// than once.
func (t *Tree) Initialize(hooks BuildHooks) error {
	order, err := t.topoSort()
	if err != nil {
		return err
	}

	var errs verr.SpecErrors
	for _, m := range order {
		if err := t.initMachine(m, hooks); err != nil {
			if se, ok := err.(verr.SpecErrors); ok {
				errs = append(errs, se...)
			} else if se, ok := err.(*verr.SpecError); ok {
				errs = append(errs, se)
			} else {
				errs = append(errs, &verr.SpecError{Kind: verr.KindSemantic, Cause: err, Pos: m.Pos})
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// topoSort resolves On/Uses names to pointers and returns machines in
// leaves-first order, erring on an unknown machine name or a dependency
// cycle.
func (t *Tree) topoSort() ([]*Machine, error) {
	for _, m := range t.Machines() {
		if m.OnName != "" {
			on, found := t.Machine(m.OnName)
			if !found {
				return nil, verr.SpecErrors{{Kind: verr.KindSemantic, Cause: semErrUnknownMachine, Detail: m.OnName, Pos: m.Pos}}
			}
			m.On = on
		}
		m.Uses = m.Uses[:0]
		for _, un := range m.UsesNames {
			u, found := t.Machine(un)
			if !found {
				return nil, verr.SpecErrors{{Kind: verr.KindSemantic, Cause: semErrUnknownMachine, Detail: un, Pos: m.Pos}}
			}
			m.Uses = append(m.Uses, u)
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var order []*Machine

	var visit func(m *Machine) error
	visit = func(m *Machine) error {
		switch color[m.NameVal] {
		case black:
			return nil
		case gray:
			return verr.SpecErrors{{Kind: verr.KindSemantic, Cause: semErrMachineCycle, Detail: m.NameVal, Pos: m.Pos}}
		}
		color[m.NameVal] = gray
		deps := append([]*Machine{}, m.Uses...)
		if m.On != nil {
			deps = append(deps, m.On)
		}
		for _, d := range deps {
			if err := visit(d); err != nil {
				return err
			}
		}
		color[m.NameVal] = black
		order = append(order, m)
		return nil
	}

	for _, m := range t.Machines() {
		if err := visit(m); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (t *Tree) initMachine(m *Machine, hooks BuildHooks) error {
	if m.Initialized || m.initializing {
		return nil
	}
	m.initializing = true
	defer func() {
		m.initializing = false
		m.Initialized = true
	}()

	var errs verr.SpecErrors
	collect := func(err error) {
		if err == nil {
			return
		}
		if se, ok := err.(verr.SpecErrors); ok {
			errs = append(errs, se...)
		} else if se, ok := err.(*verr.SpecError); ok {
			errs = append(errs, se)
		} else {
			errs = append(errs, &verr.SpecError{Kind: verr.KindSemantic, Cause: err, Pos: m.Pos})
		}
	}

	if m.Kind == FiniteAutomatonMachine && m.On != nil && !m.On.IsPurelyTerminalRooted() {
		collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: semErrNonTerminalRootedOn, Detail: m.On.NameVal, Pos: m.Pos})
	}

	resolveCategoryParents(m, collect)
	resolveFieldTypes(m, collect)
	resolveTerminalityAndRootness(m)
	resolveRegexReferences(m, collect)
	validateLiteralAlphabet(m, collect)
	validateRepetitions(m, collect)
	validateActions(m, collect)
	if m.Kind == FiniteAutomatonMachine {
		detectRuleCycles(m, collect)
	}

	if len(errs) > 0 {
		return errs
	}

	switch m.Kind {
	case FiniteAutomatonMachine:
		if hooks.BuildAutomaton != nil {
			if err := hooks.BuildAutomaton(m); err != nil {
				return err
			}
		}
	case LLParserMachine:
		if hooks.BuildParser != nil {
			if err := hooks.BuildParser(m); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveCategoryParents(m *Machine, collect func(error)) {
	for _, s := range m.Statements() {
		att, ok := s.(Attributed)
		if !ok {
			continue
		}
		names := att.CategoryParentNames()
		if len(names) == 0 {
			continue
		}
		var resolved []*Category
		for _, n := range names {
			target, found := m.Statement(n)
			if !found {
				collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: semErrUnknownCategory, Detail: n, Pos: s.Pos()})
				continue
			}
			cat, ok := target.(*Category)
			if !ok {
				collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: semErrUnknownCategory, Detail: n, Pos: s.Pos()})
				continue
			}
			resolved = append(resolved, cat)
			cat.ReferencedBy = append(cat.ReferencedBy, s.Name())
		}
		switch v := s.(type) {
		case *Category:
			v.CategoryParents_ = resolved
		case *Production:
			v.CategoryParents_ = resolved
		case *Pattern:
			v.CategoryParents_ = resolved
		}
	}

	// Category-parent-chain cycle detection.
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var visit func(c *Category) error
	visit = func(c *Category) error {
		switch color[c.Name()] {
		case black:
			return nil
		case gray:
			return &verr.SpecError{Kind: verr.KindSemantic, Cause: semErrCategoryCycle, Detail: c.Name(), Pos: c.Pos()}
		}
		color[c.Name()] = gray
		for _, p := range c.CategoryParents_ {
			if err := visit(p); err != nil {
				return err
			}
		}
		color[c.Name()] = black
		return nil
	}
	for _, s := range m.Statements() {
		if c, ok := s.(*Category); ok {
			collect(visit(c))
		}
	}
}

func resolveFieldTypes(m *Machine, collect func(error)) {
	for _, s := range m.Statements() {
		att, ok := s.(Attributed)
		if !ok {
			continue
		}
		for _, f := range att.Fields() {
			if f.OwnerName == "" {
				f.OwnerName = s.Name()
			}
			if f.Kind != FieldItem && f.Kind != FieldList {
				continue
			}
			target, found := m.Statement(f.TypeName)
			if !found {
				collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: semErrUnknownFieldType, Detail: f.TypeName, Pos: f.Pos})
				continue
			}
			f.ResolvedType = target
		}
	}
}

func resolveTerminalityAndRootness(m *Machine) {
	for _, s := range m.Statements() {
		switch v := s.(type) {
		case *Production:
			if v.TerminalityVal == TerminalityUnspecified {
				if m.Flags.ProductionsTerminalByDefault {
					v.TerminalityVal = Terminal
				} else {
					v.TerminalityVal = Nonterminal
				}
			}
			if v.IsTerminal() && v.TerminalIndex == 0 {
				v.TerminalIndex = m.NextTerminalIndex()
			}
			if v.RootnessVal == RootUnspecified && m.Flags.ProductionsRootByDefault {
				v.RootnessVal = RootAccept
			}
		case *Category:
			if v.RootnessVal == RootUnspecified && m.Flags.CategoriesRootByDefault {
				v.RootnessVal = RootAccept
			}
		}
	}
}

// WalkRegex visits every node of a regex tree in pre-order.
func WalkRegex(n RegexNode, visit func(RegexNode)) {
	if n == nil {
		return
	}
	visit(n)
	switch v := n.(type) {
	case *Disjunctive:
		for _, c := range v.Children {
			WalkRegex(c, visit)
		}
	case *Conjunctive:
		for _, c := range v.Children {
			WalkRegex(c, visit)
		}
	case *Repetitive:
		WalkRegex(v.Atom, visit)
	}
}

func ruleOf(s Statement) RegexNode {
	rc, ok := s.(RuleCarrying)
	if !ok {
		return nil
	}
	return rc.Rule()
}

func resolveRegexReferences(m *Machine, collect func(error)) {
	for _, s := range m.Statements() {
		rule := ruleOf(s)
		if rule == nil {
			continue
		}
		WalkRegex(rule, func(n RegexNode) {
			ref, ok := n.(*ReferenceNode)
			if !ok {
				return
			}
			if target, found := m.Statement(ref.Name); found {
				ref.Resolved = target
				ref.DefiningMachine = m
				return
			}
			if m.On != nil {
				if target, found := m.On.Statement(ref.Name); found {
					ref.Resolved = target
					ref.DefiningMachine = m.On
					return
				}
			}
			for _, u := range m.Uses {
				if target, found := u.Statement(ref.Name); found {
					ref.Resolved = target
					ref.DefiningMachine = u
					return
				}
			}
			collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: semErrUnknownStatement, Detail: ref.Name, Pos: ref.Pos})
		})
	}
}

func validateLiteralAlphabet(m *Machine, collect func(error)) {
	raw := m.On == nil
	for _, s := range m.Statements() {
		rule := ruleOf(s)
		if rule == nil {
			continue
		}
		WalkRegex(rule, func(n RegexNode) {
			lit, ok := n.(*LiteralNode)
			if !ok || len(lit.Bytes) <= 1 {
				return
			}
			if !raw {
				collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: semErrMultibyteLiteralOnNonRaw, Detail: s.Name(), Pos: s.Pos()})
			}
		})
	}
}

func validateRepetitions(m *Machine, collect func(error)) {
	for _, s := range m.Statements() {
		rule := ruleOf(s)
		if rule == nil {
			continue
		}
		WalkRegex(rule, func(n RegexNode) {
			rep, ok := n.(*Repetitive)
			if !ok {
				return
			}
			if rep.Min == Infinite {
				collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: semErrInfiniteMinRepetition, Detail: s.Name(), Pos: s.Pos()})
				return
			}
			if atomCanMatchEmpty(rep.Atom) && rep.Max == Infinite {
				collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: semErrEpsilonRepetitionLoop, Detail: s.Name(), Pos: s.Pos()})
			}
		})
	}
}

// atomCanMatchEmpty is a syntactic, conservative approximation good enough
// to catch the textbook ε-loop (e.g. (x*)* ): it does not chase references.
func atomCanMatchEmpty(n RegexNode) bool {
	switch v := n.(type) {
	case *EmptyNode:
		return true
	case *Repetitive:
		return v.Min == 0
	case *Disjunctive:
		for _, c := range v.Children {
			if atomCanMatchEmpty(c) {
				return true
			}
		}
		return false
	case *Conjunctive:
		for _, c := range v.Children {
			if !atomCanMatchEmpty(c) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func fieldKindForAction(k register.Kind) (FieldKind, bool) {
	switch k {
	case register.Flag, register.Unflag:
		return FieldFlag, true
	case register.Capture, register.Append, register.Prepend, register.Empty:
		return FieldRaw, true
	case register.Set, register.Unset:
		return FieldItem, true
	case register.Push, register.Pop, register.Clear:
		return FieldList, true
	default:
		return "", false
	}
}

// inferredProducedType makes a best-effort guess at the type name a Set/Push
// action attached to node would store, used only to check a typed action's
// payload against the field's declared item type when that guess is
// possible. See DESIGN.md for the policy this implements.
func inferredProducedType(n RegexNode) string {
	switch v := n.(type) {
	case *ReferenceNode:
		if v.Resolved != nil {
			return v.Resolved.Name()
		}
	}
	return ""
}

func validateActions(m *Machine, collect func(error)) {
	for _, s := range m.Statements() {
		att, isAttr := s.(Attributed)
		rule := ruleOf(s)
		if rule == nil {
			continue
		}
		if _, isRegexStmt := s.(*RegexStmt); isRegexStmt {
			WalkRegex(rule, func(n RegexNode) {
				if len(n.ActionList()) > 0 {
					collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: fmt.Errorf("actions are not allowed in a regex statement's rule"), Detail: s.Name(), Pos: s.Pos()})
				}
			})
			continue
		}
		if !isAttr {
			continue
		}
		fields, err := att.FlattenedFields()
		if err != nil {
			collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: semErrDuplicateField, Detail: err.Error(), Pos: s.Pos()})
			continue
		}
		byName := map[string]*Field{}
		for _, f := range fields {
			byName[f.Name] = f
		}

		WalkRegex(rule, func(n RegexNode) {
			for i, a := range n.ActionList() {
				wantKind, known := fieldKindForAction(a.Kind)
				if !known {
					continue // context actions etc. carry no field
				}
				f, found := byName[a.FieldName]
				if !found {
					collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: semErrUnknownFieldType, Detail: a.FieldName, Pos: a.Pos})
					continue
				}
				if f.Kind != wantKind {
					collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: semErrActionFieldMismatch, Detail: fmt.Sprintf("%s needs a %s field, %q is %s", a.Kind, wantKind, a.FieldName, f.Kind), Pos: a.Pos})
					continue
				}
				n.ActionList()[i].Field = f
				if (a.Kind == register.Set || a.Kind == register.Push) && f.TypeName != "" {
					if produced := inferredProducedType(n); produced != "" && produced != f.TypeName {
						collect(&verr.SpecError{Kind: verr.KindSemantic, Cause: semErrActionTypeMismatch, Detail: fmt.Sprintf("%s produces %q, field %q wants %q", a.Kind, produced, a.FieldName, f.TypeName), Pos: a.Pos})
					}
				}
			}
		})
	}
}

func detectRuleCycles(m *Machine, collect func(error)) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}

	var visit func(name string, sincePos *verr.Position) error
	visit = func(name string, sincePos *verr.Position) error {
		s, found := m.Statement(name)
		if !found {
			return nil
		}
		switch color[name] {
		case black:
			return nil
		case gray:
			e := &verr.SpecError{Kind: verr.KindSemantic, Cause: semErrRuleCycle, Detail: name, Pos: s.Pos()}
			if sincePos != nil {
				e.SincePos = sincePos
				e.SinceDetail = name
			}
			return e
		}
		color[name] = gray
		rule := ruleOf(s)
		var refErr error
		if rule != nil {
			WalkRegex(rule, func(n RegexNode) {
				if refErr != nil {
					return
				}
				ref, ok := n.(*ReferenceNode)
				if !ok || ref.Resolved == nil || ref.DefiningMachine != m {
					return
				}
				pos := s.Pos()
				refErr = visit(ref.Resolved.Name(), &pos)
			})
		}
		if refErr != nil {
			return refErr
		}
		color[name] = black
		return nil
	}

	for _, name := range m.StatementNames() {
		collect(visit(name, nil))
	}
}
