package spec

import (
	"fmt"

	verr "github.com/nihei9/lrtab/error"
)

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

func (e *SyntaxError) Is(target error) bool {
	return target == verr.ErrMalformedGrammar
}

var (
	// lexical errors
	synErrArrowNotDelimited = newSyntaxError("an arrow must be delimited by white spaces")

	// syntax errors
	synErrInvalidToken     = newSyntaxError("invalid token")
	synErrNoProduction     = newSyntaxError("a grammar must have at least one production")
	synErrNoProductionName = newSyntaxError("a production name is missing")
	synErrInvalidHead      = newSyntaxError("a production name must match [A-Z][A-Za-z0-9]*")
	synErrNoArrow          = newSyntaxError("an arrow must follow a production name")
	synErrEpsilonMixed     = newSyntaxError("ε must be the only element of an alternative")
	synErrNoNewline        = newSyntaxError("a production must be followed by a newline")
)
