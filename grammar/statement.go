package grammar

import (
	"fmt"

	verr "github.com/astirlang/astir/error"
)

// Rootness is the accept/ignore/unspecified status of a type-forming
// statement.
type Rootness int

const (
	RootUnspecified Rootness = iota
	RootAccept
	RootIgnore
)

// Terminality is whether a production's match is a leaf token or a
// composite, resolved from an explicit keyword or the machine's default
// flag.
type Terminality int

const (
	TerminalityUnspecified Terminality = iota
	Terminal
	Nonterminal
)

// Statement is the common surface of every grammar declaration: category,
// production, pattern, and regex statement.
type Statement interface {
	Name() string
	Pos() verr.Position
	OwnerMachine() *Machine
}

// Attributed is a statement that carries fields and category parents:
// categories, productions, and patterns.
type Attributed interface {
	Statement
	Fields() []*Field
	CategoryParentNames() []string
	CategoryParents() []*Category
	// FlattenedFields returns the fields declared directly on this
	// statement followed by those inherited up the category chain, erring
	// if any name reoccurs anywhere in that chain.
	FlattenedFields() ([]*Field, error)
}

// TypeForming is a statement whose successful match produces a structured
// value: categories and productions.
type TypeForming interface {
	Statement
	Rootness() Rootness
	SetRootness(Rootness)
}

// RuleCarrying is a statement with a regex body: productions, patterns, and
// regex statements.
type RuleCarrying interface {
	Statement
	Rule() RegexNode
	SetRule(RegexNode)
}

func flattenFields(direct []*Field, parents []*Category) ([]*Field, error) {
	seen := map[string]bool{}
	var out []*Field
	for _, f := range direct {
		if seen[f.Name] {
			return nil, fmt.Errorf("field %q declared more than once", f.Name)
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	for _, p := range parents {
		pf, err := p.FlattenedFields()
		if err != nil {
			return nil, err
		}
		for _, f := range pf {
			if seen[f.Name] {
				return nil, fmt.Errorf("field %q from category %q collides with an already-visible field", f.Name, p.Name())
			}
			seen[f.Name] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Category is a named union of statements acting as a supertype. It is
// type-forming but not rule-carrying.
type Category struct {
	NameVal              string
	PosVal               verr.Position
	Machine              *Machine
	FieldList            []*Field
	CategoryParentNames_ []string
	CategoryParents_     []*Category
	RootnessVal          Rootness

	// ReferencedBy is the back-map of statement names that list this
	// category as a parent.
	ReferencedBy []string

	flattenedCache    []*Field
	flattenedErr      error
	flattenedComputed bool

	Initialized bool
}

func (c *Category) Name() string             { return c.NameVal }
func (c *Category) Pos() verr.Position       { return c.PosVal }
func (c *Category) OwnerMachine() *Machine   { return c.Machine }
func (c *Category) Fields() []*Field         { return c.FieldList }
func (c *Category) CategoryParentNames() []string { return c.CategoryParentNames_ }
func (c *Category) CategoryParents() []*Category  { return c.CategoryParents_ }
func (c *Category) Rootness() Rootness       { return c.RootnessVal }
func (c *Category) SetRootness(r Rootness)   { c.RootnessVal = r }

func (c *Category) FlattenedFields() ([]*Field, error) {
	if c.flattenedComputed {
		return c.flattenedCache, c.flattenedErr
	}
	// Reentrant-safe: a cycle in the category chain is caught earlier by
	// initialization's dedicated cycle check, but guard anyway so a
	// mid-computation re-entry terminates instead of looping forever.
	c.flattenedComputed = true
	c.flattenedCache, c.flattenedErr = flattenFields(c.FieldList, c.CategoryParents_)
	return c.flattenedCache, c.flattenedErr
}

// Production is both type-forming and rule-carrying: it has terminality and
// rootness, and, when terminal, a machine-scoped terminal-type index.
type Production struct {
	NameVal              string
	PosVal               verr.Position
	Machine              *Machine
	FieldList            []*Field
	CategoryParentNames_ []string
	CategoryParents_     []*Category
	RootnessVal          Rootness
	TerminalityVal       Terminality
	// TerminalIndex is positive and unique within Machine once resolved
	// terminal; zero otherwise.
	TerminalIndex int
	RuleNode      RegexNode

	flattenedCache    []*Field
	flattenedErr      error
	flattenedComputed bool

	Initialized bool
}

func (p *Production) Name() string             { return p.NameVal }
func (p *Production) Pos() verr.Position       { return p.PosVal }
func (p *Production) OwnerMachine() *Machine   { return p.Machine }
func (p *Production) Fields() []*Field         { return p.FieldList }
func (p *Production) CategoryParentNames() []string { return p.CategoryParentNames_ }
func (p *Production) CategoryParents() []*Category  { return p.CategoryParents_ }
func (p *Production) Rootness() Rootness       { return p.RootnessVal }
func (p *Production) SetRootness(r Rootness)   { p.RootnessVal = r }
func (p *Production) Rule() RegexNode          { return p.RuleNode }
func (p *Production) SetRule(n RegexNode)      { p.RuleNode = n }
func (p *Production) IsTerminal() bool         { return p.TerminalityVal == Terminal }

func (p *Production) FlattenedFields() ([]*Field, error) {
	if p.flattenedComputed {
		return p.flattenedCache, p.flattenedErr
	}
	p.flattenedComputed = true
	p.flattenedCache, p.flattenedErr = flattenFields(p.FieldList, p.CategoryParents_)
	return p.flattenedCache, p.flattenedErr
}

// Pattern is rule-carrying and attribute-carrying but not type-forming;
// actions are allowed in its rule.
type Pattern struct {
	NameVal              string
	PosVal               verr.Position
	Machine              *Machine
	FieldList            []*Field
	CategoryParentNames_ []string
	CategoryParents_     []*Category
	RuleNode             RegexNode

	flattenedCache    []*Field
	flattenedErr      error
	flattenedComputed bool

	Initialized bool
}

func (p *Pattern) Name() string             { return p.NameVal }
func (p *Pattern) Pos() verr.Position       { return p.PosVal }
func (p *Pattern) OwnerMachine() *Machine   { return p.Machine }
func (p *Pattern) Fields() []*Field         { return p.FieldList }
func (p *Pattern) CategoryParentNames() []string { return p.CategoryParentNames_ }
func (p *Pattern) CategoryParents() []*Category  { return p.CategoryParents_ }
func (p *Pattern) Rule() RegexNode          { return p.RuleNode }
func (p *Pattern) SetRule(n RegexNode)      { p.RuleNode = n }

func (p *Pattern) FlattenedFields() ([]*Field, error) {
	if p.flattenedComputed {
		return p.flattenedCache, p.flattenedErr
	}
	p.flattenedComputed = true
	p.flattenedCache, p.flattenedErr = flattenFields(p.FieldList, p.CategoryParents_)
	return p.flattenedCache, p.flattenedErr
}

// RegexStmt is rule-carrying only; actions are disallowed in its rule and
// it is neither type-forming nor attribute-carrying.
type RegexStmt struct {
	NameVal  string
	PosVal   verr.Position
	Machine  *Machine
	RuleNode RegexNode

	Initialized bool
}

func (r *RegexStmt) Name() string           { return r.NameVal }
func (r *RegexStmt) Pos() verr.Position     { return r.PosVal }
func (r *RegexStmt) OwnerMachine() *Machine { return r.Machine }
func (r *RegexStmt) Rule() RegexNode        { return r.RuleNode }
func (r *RegexStmt) SetRule(n RegexNode)    { r.RuleNode = n }

var (
	_ Attributed  = (*Category)(nil)
	_ TypeForming = (*Category)(nil)
	_ Attributed  = (*Production)(nil)
	_ TypeForming = (*Production)(nil)
	_ RuleCarrying = (*Production)(nil)
	_ Attributed  = (*Pattern)(nil)
	_ RuleCarrying = (*Pattern)(nil)
	_ RuleCarrying = (*RegexStmt)(nil)
)
