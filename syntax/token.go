// Package syntax is the grammar-source lexer and parser: the thin,
// out-of-scope-per-design collaborator that turns a `.astir` source file
// into the `grammar.Tree` the core compiles. It owns no semantics beyond
// recognizing the surface language described by the token and keyword set
// below and shaping it into statements; every invariant check is left to the
// grammar package: redeclared names are rejected by Tree.AddMachine and
// Machine.AddStatement as the parser adds them, and illegal cycles and
// unresolved references by grammar.Tree.Initialize.
package syntax

import verr "github.com/astirlang/astir/error"

// Kind enumerates every token the lexer can produce.
type Kind int

const (
	KindInvalid Kind = iota
	KindEOF

	KindIdent
	KindNumber
	KindString // single-quoted, untyped
	KindTypedString // double-quoted, typed

	// Punctuation.
	KindLParen
	KindRParen
	KindLSquare
	KindRSquare
	KindLCurly
	KindRCurly
	KindEquals
	KindColon
	KindSemicolon
	KindDot
	KindCaret
	KindDollar
	KindStar
	KindPlus
	KindQuestion
	KindPipe
	KindSlash
	KindComma
	KindAmp
	KindDash
	KindAt
	KindLeftArrow // <-

	// Keywords.
	KindKWUses
	KindKWOn
	KindKWWith
	KindKWFinite
	KindKWAutomaton
	KindKWLL
	KindKWParser
	KindKWProductionsTerminalByDefault
	KindKWProductionsNonterminalByDefault
	KindKWProductionsRootByDefault
	KindKWProductionsNonrootByDefault
	KindKWCategoriesRootByDefault
	KindKWCategoriesNonrootByDefault
	KindKWAmbiguityDisallowed
	KindKWAmbiguityResolvedByPrecedence
	KindKWIgnored
	KindKWRoot
	KindKWTerminal
	KindKWNonterminal
	KindKWCategory
	KindKWProduction
	KindKWPattern
	KindKWRegex
	KindKWItem
	KindKWList
	KindKWRaw
	KindKWFlag
	KindKWUnflag
	KindKWCapture
	KindKWEmpty
	KindKWAppend
	KindKWPrepend
	KindKWSet
	KindKWUnset
	KindKWPush
	KindKWPop
	KindKWClear
)

// keywords is the exhaustive keyword table named in the grammar-source
// external-interface contract, grounded on the original lexer's own
// m_keywordMap.
var keywords = map[string]Kind{
	"uses":                              KindKWUses,
	"on":                                KindKWOn,
	"with":                              KindKWWith,
	"finite":                            KindKWFinite,
	"automaton":                         KindKWAutomaton,
	"LL":                                KindKWLL,
	"parser":                            KindKWParser,
	"productions_terminal_by_default":    KindKWProductionsTerminalByDefault,
	"productions_nonterminal_by_default": KindKWProductionsNonterminalByDefault,
	"productions_root_by_default":        KindKWProductionsRootByDefault,
	"productions_nonroot_by_default":     KindKWProductionsNonrootByDefault,
	"categories_root_by_default":         KindKWCategoriesRootByDefault,
	"categories_nonroot_by_default":      KindKWCategoriesNonrootByDefault,
	"ambiguity_disallowed":               KindKWAmbiguityDisallowed,
	"ambiguity_resolved_by_precedence":    KindKWAmbiguityResolvedByPrecedence,
	"ignored":                           KindKWIgnored,
	"root":                              KindKWRoot,
	"terminal":                          KindKWTerminal,
	"nonterminal":                       KindKWNonterminal,
	"category":                          KindKWCategory,
	"production":                        KindKWProduction,
	"pattern":                           KindKWPattern,
	"regex":                             KindKWRegex,
	"item":                              KindKWItem,
	"list":                              KindKWList,
	"raw":                               KindKWRaw,
	"flag":                              KindKWFlag,
	"unflag":                            KindKWUnflag,
	"capture":                           KindKWCapture,
	"empty":                             KindKWEmpty,
	"append":                            KindKWAppend,
	"prepend":                           KindKWPrepend,
	"set":                               KindKWSet,
	"unset":                             KindKWUnset,
	"push":                              KindKWPush,
	"pop":                               KindKWPop,
	"clear":                             KindKWClear,
}

// flagKeywords names the `with FLAG {, FLAG}` clause's own keyword subset,
// matching grammar.Flags.ApplyFlagName's recognized names.
var flagKeywords = map[Kind]string{
	KindKWProductionsTerminalByDefault:    "productions_terminal_by_default",
	KindKWProductionsNonterminalByDefault: "productions_nonterminal_by_default",
	KindKWProductionsRootByDefault:        "productions_root_by_default",
	KindKWProductionsNonrootByDefault:     "productions_nonroot_by_default",
	KindKWCategoriesRootByDefault:         "categories_root_by_default",
	KindKWCategoriesNonrootByDefault:      "categories_nonroot_by_default",
	KindKWAmbiguityDisallowed:             "ambiguity_disallowed",
	KindKWAmbiguityResolvedByPrecedence:   "ambiguity_resolved_by_precedence",
}

// Token is one lexical unit: its kind, literal text (identifiers, strings,
// numbers), and source position.
type Token struct {
	Kind Kind
	Text string
	Pos  verr.Position
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

var kindNames = map[Kind]string{
	KindInvalid:     "invalid",
	KindEOF:         "end of file",
	KindIdent:       "identifier",
	KindNumber:      "number",
	KindString:      "string",
	KindTypedString: "typed string",
	KindLParen:      "(",
	KindRParen:      ")",
	KindLSquare:     "[",
	KindRSquare:     "]",
	KindLCurly:      "{",
	KindRCurly:      "}",
	KindEquals:      "=",
	KindColon:       ":",
	KindSemicolon:   ";",
	KindDot:         ".",
	KindCaret:       "^",
	KindDollar:      "$",
	KindStar:        "*",
	KindPlus:        "+",
	KindQuestion:    "?",
	KindPipe:        "|",
	KindSlash:       "/",
	KindComma:       ",",
	KindAmp:         "&",
	KindDash:        "-",
	KindAt:          "@",
	KindLeftArrow:   "<-",
}
