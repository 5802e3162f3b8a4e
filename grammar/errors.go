package grammar

import "errors"

// Semantic error causes, matching the taxonomy in the error handling design
// (§7.3): redeclaration, unknown reference, illegal cycle, invalid field
// usage, and the alphabet/terminality constraints.
var (
	semErrDuplicateMachine      = errors.New("a machine with this name is already declared")
	semErrDuplicateStatement    = errors.New("a statement with this name is already declared in this machine")
	semErrUnknownMachine        = errors.New("reference to an undeclared machine")
	semErrUnknownStatement      = errors.New("reference to an undeclared statement")
	semErrUnknownCategory       = errors.New("reference to an undeclared category")
	semErrUnknownFieldType      = errors.New("field type does not resolve to a statement in this machine")
	semErrMachineCycle          = errors.New("cycle in the `on`/`uses` dependency graph")
	semErrCategoryCycle         = errors.New("cycle in the category parent chain")
	semErrRuleCycle             = errors.New("cycle in rule references within a finite-automaton machine")
	semErrDuplicateField        = errors.New("field name reoccurs in the flattened category chain")
	semErrActionFieldMismatch   = errors.New("action kind does not match the target field's kind")
	semErrActionTypeMismatch    = errors.New("typed action's payload type does not match the field's declared item type")
	semErrMultibyteLiteralOnNonRaw = errors.New("a literal longer than one byte is only allowed on a raw-byte automaton")
	semErrInfiniteMinRepetition = errors.New("a repetition's minimum count cannot be infinite")
	semErrEpsilonRepetitionLoop = errors.New("a repeated atom that can match the empty string never terminates")
	semErrNonTerminalRootedOn   = errors.New("a finite-automaton machine's `on` target must have only terminal productions at its roots")
	semErrTerminalityUnresolved = errors.New("a production's terminality could not be resolved from a keyword or machine flag")
)
