package grammar

import (
	"errors"

	verr "github.com/nihei9/lrtab/error"
)

// ErrMalformedGrammar and ErrAugmentation are the categories of load errors. Test them with errors.Is.
var (
	ErrMalformedGrammar = verr.ErrMalformedGrammar
	ErrAugmentation     = verr.ErrAugmentation
)

// ErrStateExplosion reports that an automaton grew beyond the configured number of states.
var ErrStateExplosion = errors.New("state explosion")

type SemanticError struct {
	message  string
	category error
}

func newSemanticError(category error, message string) *SemanticError {
	return &SemanticError{
		message:  message,
		category: category,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

func (e *SemanticError) Is(target error) bool {
	return target == e.category
}

var (
	semErrNoProduction        = newSemanticError(verr.ErrMalformedGrammar, "a grammar needs at least one production")
	semErrUndefinedSym        = newSemanticError(verr.ErrMalformedGrammar, "undefined non-terminal symbol")
	semErrDuplicateProduction = newSemanticError(verr.ErrMalformedGrammar, "duplicate production")
	semErrCyclicDerivation    = newSemanticError(verr.ErrMalformedGrammar, "a non-terminal derives itself")
	semErrReservedSymbol      = newSemanticError(verr.ErrMalformedGrammar, "the END symbol `#` cannot appear in a production")
	semErrStartSymCollision   = newSemanticError(verr.ErrAugmentation, "a symbol collides with the augmented start symbol")
)
