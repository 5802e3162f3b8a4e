package syntax

import (
	"fmt"

	verr "github.com/astirlang/astir/error"
	"github.com/astirlang/astir/grammar"
	"github.com/astirlang/astir/register"
)

// Parser is a recursive-descent parser over a Lexer's token stream,
// building a *grammar.Tree directly rather than an intermediate AST — the
// grammar-source surface maps onto the core's statement model closely
// enough that a separate tree stage would only shuffle the same data.
type Parser struct {
	lex        *Lexer
	sourceName string
	tok        Token
	primed     bool
}

// NewParser returns a Parser reading src, reporting errors under
// sourceName.
func NewParser(src, sourceName string) *Parser {
	return &Parser{lex: NewLexer(src, sourceName), sourceName: sourceName}
}

// Parse consumes the whole source and returns the machines it declares as
// a *grammar.Tree, ready for grammar.Tree.Initialize.
func Parse(src, sourceName string) (*grammar.Tree, error) {
	p := NewParser(src, sourceName)
	return p.parseTree()
}

func (p *Parser) errAt(pos verr.Position, detail string) error {
	return &verr.SpecError{Kind: verr.KindParse, Cause: fmt.Errorf("unexpected input"), Detail: detail, Pos: pos, SourceName: p.sourceName}
}

func (p *Parser) peek() (Token, error) {
	if !p.primed {
		t, err := p.lex.Next()
		if err != nil {
			return Token{}, err
		}
		p.tok = t
		p.primed = true
	}
	return p.tok, nil
}

func (p *Parser) advance() (Token, error) {
	t, err := p.peek()
	if err != nil {
		return Token{}, err
	}
	p.primed = false
	return t, nil
}

func (p *Parser) expect(k Kind) (Token, error) {
	t, err := p.peek()
	if err != nil {
		return Token{}, err
	}
	if t.Kind != k {
		return Token{}, p.errAt(t.Pos, fmt.Sprintf("expected %s, found %s", k, t.Kind))
	}
	return p.advance()
}

func (p *Parser) at(k Kind) bool {
	t, err := p.peek()
	return err == nil && t.Kind == k
}

func (p *Parser) parseTree() (*grammar.Tree, error) {
	tree := grammar.NewTree()
	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		if t.Kind == KindEOF {
			return tree, nil
		}
		m, err := p.parseMachine()
		if err != nil {
			return nil, err
		}
		if err := tree.AddMachine(m); err != nil {
			return nil, &verr.SpecError{Kind: verr.KindSemantic, Cause: err, Pos: m.Pos, SourceName: p.sourceName}
		}
	}
}

func (p *Parser) parseMachine() (*grammar.Machine, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	pos := verr.Position{Row: t.Pos.Row, Col: t.Pos.Col}

	var kind grammar.MachineKind
	k := 0
	switch t.Kind {
	case KindKWFinite:
		p.advance()
		if _, err := p.expect(KindKWAutomaton); err != nil {
			return nil, err
		}
		kind = grammar.FiniteAutomatonMachine
	case KindKWLL:
		p.advance()
		if _, err := p.expect(KindLParen); err != nil {
			return nil, err
		}
		kt, err := p.expect(KindNumber)
		if err != nil {
			return nil, err
		}
		k = atoiOrZero(kt.Text)
		if _, err := p.expect(KindRParen); err != nil {
			return nil, err
		}
		if _, err := p.expect(KindKWParser); err != nil {
			return nil, err
		}
		kind = grammar.LLParserMachine
	default:
		return nil, p.errAt(t.Pos, fmt.Sprintf("expected 'finite automaton' or 'LL(k) parser', found %s", t.Kind))
	}

	name, err := p.expect(KindIdent)
	if err != nil {
		return nil, err
	}
	m := grammar.NewMachine(name.Text, kind, pos)
	m.K = k

	if p.at(KindKWWith) {
		p.advance()
		for {
			ft, err := p.peek()
			if err != nil {
				return nil, err
			}
			name, ok := flagKeywords[ft.Kind]
			if !ok {
				return nil, p.errAt(ft.Pos, fmt.Sprintf("expected a machine flag, found %s", ft.Kind))
			}
			p.advance()
			if !m.Flags.ApplyFlagName(name) {
				return nil, p.errAt(ft.Pos, fmt.Sprintf("unrecognized flag %q", name))
			}
			if !p.at(KindComma) {
				break
			}
			p.advance()
		}
	}

	if p.at(KindKWOn) {
		p.advance()
		on, err := p.expect(KindIdent)
		if err != nil {
			return nil, err
		}
		m.OnName = on.Text
	}

	if p.at(KindKWUses) {
		p.advance()
		for {
			u, err := p.expect(KindIdent)
			if err != nil {
				return nil, err
			}
			m.UsesNames = append(m.UsesNames, u.Text)
			if !p.at(KindComma) {
				break
			}
			p.advance()
		}
	}

	if _, err := p.expect(KindLCurly); err != nil {
		return nil, err
	}
	for !p.at(KindRCurly) {
		s, err := p.parseStatement(m)
		if err != nil {
			return nil, err
		}
		if err := m.AddStatement(s); err != nil {
			return nil, &verr.SpecError{Kind: verr.KindSemantic, Cause: err, Pos: s.Pos(), SourceName: p.sourceName}
		}
	}
	if _, err := p.expect(KindRCurly); err != nil {
		return nil, err
	}
	return m, nil
}

func atoiOrZero(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// parseStatement dispatches on the statement's leading keyword set:
// category, or [ignored|root] [terminal|nonterminal] [production] NAME …,
// or pattern NAME …, or regex NAME = REGEX ;
func (p *Parser) parseStatement(m *grammar.Machine) (grammar.Statement, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case KindKWCategory:
		return p.parseCategory(m)
	case KindKWPattern:
		return p.parsePattern(m)
	case KindKWRegex:
		return p.parseRegexStmt(m)
	default:
		return p.parseProduction(m)
	}
}

func (p *Parser) parseCategoryParents() ([]string, error) {
	var names []string
	if !p.at(KindColon) {
		return nil, nil
	}
	p.advance()
	for {
		id, err := p.expect(KindIdent)
		if err != nil {
			return nil, err
		}
		names = append(names, id.Text)
		if !p.at(KindComma) {
			break
		}
		p.advance()
	}
	return names, nil
}

func (p *Parser) parseFieldList() ([]*grammar.Field, error) {
	if !p.at(KindLCurly) {
		return nil, nil
	}
	p.advance()
	var fields []*grammar.Field
	for !p.at(KindRCurly) {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	p.advance()
	return fields, nil
}

func (p *Parser) parseField() (*grammar.Field, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	pos := verr.Position{Row: t.Pos.Row, Col: t.Pos.Col}

	switch t.Kind {
	case KindKWFlag:
		p.advance()
		name, err := p.expect(KindIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(KindSemicolon); err != nil {
			return nil, err
		}
		return &grammar.Field{Name: name.Text, Kind: grammar.FieldFlag, Pos: pos}, nil
	case KindKWRaw:
		p.advance()
		name, err := p.expect(KindIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(KindSemicolon); err != nil {
			return nil, err
		}
		return &grammar.Field{Name: name.Text, Kind: grammar.FieldRaw, Pos: pos}, nil
	case KindIdent:
		typeName := t.Text
		p.advance()
		fkind := grammar.FieldItem
		if p.at(KindKWItem) {
			p.advance()
		} else if p.at(KindKWList) {
			p.advance()
			fkind = grammar.FieldList
		}
		name, err := p.expect(KindIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(KindSemicolon); err != nil {
			return nil, err
		}
		return &grammar.Field{Name: name.Text, Kind: fkind, TypeName: typeName, Pos: pos}, nil
	default:
		return nil, p.errAt(t.Pos, fmt.Sprintf("expected a field declaration, found %s", t.Kind))
	}
}

func (p *Parser) parseCategory(m *grammar.Machine) (grammar.Statement, error) {
	start, _ := p.advance() // 'category'
	name, err := p.expect(KindIdent)
	if err != nil {
		return nil, err
	}
	parents, err := p.parseCategoryParents()
	if err != nil {
		return nil, err
	}
	fields, err := p.parseFieldList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindSemicolon); err != nil {
		return nil, err
	}
	return &grammar.Category{
		NameVal:              name.Text,
		PosVal:               verr.Position{Row: start.Pos.Row, Col: start.Pos.Col},
		Machine:              m,
		FieldList:            fields,
		CategoryParentNames_: parents,
	}, nil
}

func (p *Parser) parseProduction(m *grammar.Machine) (grammar.Statement, error) {
	startTok, err := p.peek()
	if err != nil {
		return nil, err
	}
	start := verr.Position{Row: startTok.Pos.Row, Col: startTok.Pos.Col}

	rootness := grammar.RootUnspecified
	if p.at(KindKWIgnored) {
		p.advance()
		rootness = grammar.RootIgnore
	} else if p.at(KindKWRoot) {
		p.advance()
		rootness = grammar.RootAccept
	}

	terminality := grammar.TerminalityUnspecified
	if p.at(KindKWTerminal) {
		p.advance()
		terminality = grammar.Terminal
	} else if p.at(KindKWNonterminal) {
		p.advance()
		terminality = grammar.Nonterminal
	}

	if p.at(KindKWProduction) {
		p.advance()
	}

	name, err := p.expect(KindIdent)
	if err != nil {
		return nil, err
	}
	parents, err := p.parseCategoryParents()
	if err != nil {
		return nil, err
	}
	fields, err := p.parseFieldList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindEquals); err != nil {
		return nil, err
	}
	rule, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindSemicolon); err != nil {
		return nil, err
	}

	return &grammar.Production{
		NameVal:              name.Text,
		PosVal:               start,
		Machine:              m,
		FieldList:            fields,
		CategoryParentNames_: parents,
		RootnessVal:          rootness,
		TerminalityVal:       terminality,
		RuleNode:             rule,
	}, nil
}

func (p *Parser) parsePattern(m *grammar.Machine) (grammar.Statement, error) {
	start, _ := p.advance() // 'pattern'
	name, err := p.expect(KindIdent)
	if err != nil {
		return nil, err
	}
	parents, err := p.parseCategoryParents()
	if err != nil {
		return nil, err
	}
	fields, err := p.parseFieldList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindEquals); err != nil {
		return nil, err
	}
	rule, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindSemicolon); err != nil {
		return nil, err
	}
	return &grammar.Pattern{
		NameVal:              name.Text,
		PosVal:               verr.Position{Row: start.Pos.Row, Col: start.Pos.Col},
		Machine:              m,
		FieldList:            fields,
		CategoryParentNames_: parents,
		RuleNode:             rule,
	}, nil
}

func (p *Parser) parseRegexStmt(m *grammar.Machine) (grammar.Statement, error) {
	start, _ := p.advance() // 'regex'
	name, err := p.expect(KindIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindEquals); err != nil {
		return nil, err
	}
	rule, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindSemicolon); err != nil {
		return nil, err
	}
	return &grammar.RegexStmt{
		NameVal:  name.Text,
		PosVal:   verr.Position{Row: start.Pos.Row, Col: start.Pos.Col},
		Machine:  m,
		RuleNode: rule,
	}, nil
}

// --- Regex grammar: disjunction > concatenation > suffixed atom > primary ---

func (p *Parser) parseDisjunction() (grammar.RegexNode, error) {
	first, err := p.parseConjunction()
	if err != nil {
		return nil, err
	}
	children := []grammar.RegexNode{first}
	for p.at(KindPipe) {
		p.advance()
		next, err := p.parseConjunction()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &grammar.Disjunctive{Children: children}, nil
}

func atomStarts(k Kind) bool {
	switch k {
	case KindString, KindTypedString, KindDot, KindIdent, KindLSquare, KindLParen:
		return true
	}
	return false
}

func (p *Parser) parseConjunction() (grammar.RegexNode, error) {
	var children []grammar.RegexNode
	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		if !atomStarts(t.Kind) {
			break
		}
		a, err := p.parseSuffixedAtom()
		if err != nil {
			return nil, err
		}
		children = append(children, a)
	}
	if len(children) == 0 {
		return &grammar.EmptyNode{}, nil
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &grammar.Conjunctive{Children: children}, nil
}

func (p *Parser) parseSuffixedAtom() (grammar.RegexNode, error) {
	atom, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	t, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case KindStar:
		p.advance()
		atom = &grammar.Repetitive{Min: 0, Max: grammar.Infinite, Atom: atom}
	case KindPlus:
		p.advance()
		atom = &grammar.Repetitive{Min: 1, Max: grammar.Infinite, Atom: atom}
	case KindQuestion:
		p.advance()
		atom = &grammar.Repetitive{Min: 0, Max: 1, Atom: atom}
	case KindLCurly:
		p.advance()
		minTok, err := p.expect(KindNumber)
		if err != nil {
			return nil, err
		}
		min := atoiOrZero(minTok.Text)
		max := min
		if p.at(KindComma) {
			p.advance()
			maxTok, err := p.expect(KindNumber)
			if err != nil {
				return nil, err
			}
			max = atoiOrZero(maxTok.Text)
		}
		if _, err := p.expect(KindRCurly); err != nil {
			return nil, err
		}
		atom = &grammar.Repetitive{Min: min, Max: max, Atom: atom}
	}

	actions, err := p.parseActionSuffixes()
	if err != nil {
		return nil, err
	}
	if len(actions) > 0 {
		attachActions(atom, actions)
	}
	return atom, nil
}

// attachActions appends actions to whichever RegexNode concrete type atom
// is — every case in the sum type carries its own Actions slice, so this
// is a small type switch rather than a shared setter on the interface.
func attachActions(n grammar.RegexNode, actions []grammar.RegexAction) {
	switch v := n.(type) {
	case *grammar.Disjunctive:
		v.Actions = append(v.Actions, actions...)
	case *grammar.Conjunctive:
		v.Actions = append(v.Actions, actions...)
	case *grammar.Repetitive:
		v.Actions = append(v.Actions, actions...)
	case *grammar.EmptyNode:
		v.Actions = append(v.Actions, actions...)
	case *grammar.ByteRangeNode:
		v.Actions = append(v.Actions, actions...)
	case *grammar.LiteralNode:
		v.Actions = append(v.Actions, actions...)
	case *grammar.AnyOfNode:
		v.Actions = append(v.Actions, actions...)
	case *grammar.AnyExceptNode:
		v.Actions = append(v.Actions, actions...)
	case *grammar.ArbitraryNode:
		v.Actions = append(v.Actions, actions...)
	case *grammar.ReferenceNode:
		v.Actions = append(v.Actions, actions...)
	}
}

var actionKeywords = map[Kind]register.Kind{
	KindKWFlag:    register.Flag,
	KindKWUnflag:  register.Unflag,
	KindKWCapture: register.Capture,
	KindKWEmpty:   register.Empty,
	KindKWAppend:  register.Append,
	KindKWPrepend: register.Prepend,
	KindKWSet:     register.Set,
	KindKWUnset:   register.Unset,
	KindKWPush:    register.Push,
	KindKWPop:     register.Pop,
	KindKWClear:   register.Clear,
}

func (p *Parser) parseActionSuffixes() ([]grammar.RegexAction, error) {
	var actions []grammar.RegexAction
	for p.at(KindAt) {
		at, _ := p.advance()
		kt, err := p.peek()
		if err != nil {
			return nil, err
		}
		kind, ok := actionKeywords[kt.Kind]
		if !ok {
			return nil, p.errAt(kt.Pos, fmt.Sprintf("expected an action keyword, found %s", kt.Kind))
		}
		p.advance()
		if _, err := p.expect(KindColon); err != nil {
			return nil, err
		}
		field, err := p.expect(KindIdent)
		if err != nil {
			return nil, err
		}
		actions = append(actions, grammar.RegexAction{
			Kind:      kind,
			FieldName: field.Text,
			Pos:       verr.Position{Row: at.Pos.Row, Col: at.Pos.Col},
		})
	}
	return actions, nil
}

func (p *Parser) parsePrimary() (grammar.RegexNode, error) {
	t, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case KindString:
		p.advance()
		return &grammar.LiteralNode{Bytes: []byte(t.Text)}, nil
	case KindTypedString:
		p.advance()
		return &grammar.LiteralNode{Bytes: []byte(t.Text)}, nil
	case KindDot:
		p.advance()
		return &grammar.ArbitraryNode{}, nil
	case KindIdent:
		p.advance()
		return &grammar.ReferenceNode{Name: t.Text, Pos: verr.Position{Row: t.Pos.Row, Col: t.Pos.Col}}, nil
	case KindLSquare:
		p.advance()
		negate, ranges, err := p.lex.ScanCharClassBody()
		if err != nil {
			return nil, err
		}
		nodes := make([]grammar.ByteRangeNode, len(ranges))
		for i, r := range ranges {
			nodes[i] = grammar.ByteRangeNode{Lo: r.lo, Hi: r.hi}
		}
		if negate {
			return &grammar.AnyExceptNode{Ranges: nodes}, nil
		}
		return &grammar.AnyOfNode{Ranges: nodes}, nil
	case KindLParen:
		p.advance()
		inner, err := p.parseDisjunction()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(KindRParen); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, p.errAt(t.Pos, fmt.Sprintf("expected a regex primitive, found %s", t.Kind))
	}
}
