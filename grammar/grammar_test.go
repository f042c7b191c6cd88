package grammar

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/lrtab/error"
)

func TestGrammarBuilder(t *testing.T) {
	gram := loadTestGrammar(t, `
E -> E + T | T
T -> id

E -> ( E )
`)

	if gram.StartSymbol() != "E" {
		t.Errorf("unexpected start symbol: %v", gram.StartSymbol())
	}
	if got := strings.Join(gram.Terminals(), " "); got != "( ) + id" {
		t.Errorf("unexpected terminals: %v", got)
	}
	if got := strings.Join(gram.NonTerminals(), " "); got != "E T" {
		t.Errorf("unexpected non-terminals: %v", got)
	}
	if gram.ProductionCount() != 5 {
		t.Fatalf("unexpected production count: %v", gram.ProductionCount())
	}

	// Alternatives of a repeated head follow those of the earlier lines.
	expectedProds := []string{
		"E' → E",
		"E → E + T",
		"E → T",
		"T → id",
		"E → ( E )",
	}
	for num, want := range expectedProds {
		got, ok := gram.ProductionString(num)
		if !ok {
			t.Fatalf("production %v was not found", num)
		}
		if got != want {
			t.Errorf("unexpected production %v; want: %v, got: %v", num, want, got)
		}
	}
	if _, ok := gram.ProductionString(len(expectedProds)); ok {
		t.Error("a production number out of range must not be found")
	}
}

func TestGrammarBuilder_EmptyProduction(t *testing.T) {
	gram := loadTestGrammar(t, `
S -> A
A -> a A | ε
`)
	got, ok := gram.ProductionString(3)
	if !ok || got != "A → ε" {
		t.Errorf("unexpected production: %v", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		caption  string
		src      string
		category error
		causes   []error
	}{
		{
			caption:  "an undefined non-terminal",
			src:      "S -> A b\n",
			category: ErrMalformedGrammar,
			causes:   []error{semErrUndefinedSym},
		},
		{
			caption:  "END in a body",
			src:      "S -> a #\n",
			category: ErrMalformedGrammar,
			causes:   []error{semErrReservedSymbol},
		},
		{
			caption:  "a duplicate production",
			src:      "S -> a | b\nS -> a\n",
			category: ErrMalformedGrammar,
			causes:   []error{semErrDuplicateProduction},
		},
		{
			caption:  "a symbol colliding with the augmented start symbol",
			src:      "S -> S' a\n",
			category: ErrAugmentation,
			causes:   []error{semErrStartSymCollision},
		},
		{
			caption:  "every symbol error is reported",
			src:      "S -> A #\nS -> b | b\n",
			category: ErrMalformedGrammar,
			causes:   []error{semErrUndefinedSym, semErrReservedSymbol},
		},
		{
			caption:  "a non-terminal deriving itself directly",
			src:      "S -> S | a\n",
			category: ErrMalformedGrammar,
			causes:   []error{semErrCyclicDerivation},
		},
		{
			caption:  "non-terminals deriving each other",
			src:      "S -> A | a\nA -> S\n",
			category: ErrMalformedGrammar,
			causes:   []error{semErrCyclicDerivation, semErrCyclicDerivation},
		},
		{
			caption:  "a cycle through nullable neighbors",
			src:      "S -> A S B | a\nA -> ε\nB -> ε\n",
			category: ErrMalformedGrammar,
			causes:   []error{semErrCyclicDerivation},
		},
		{
			caption:  "a syntax error",
			src:      "s -> a\n",
			category: ErrMalformedGrammar,
		},
		{
			caption:  "an empty grammar",
			src:      "\n\n",
			category: ErrMalformedGrammar,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			gram, err := Load(strings.NewReader(tt.src), "test", "test.grm")
			if err == nil {
				t.Fatalf("an error must occur; grammar: %+v", gram)
			}
			if !errors.Is(err, tt.category) {
				t.Fatalf("unexpected error category; want: %v, got: %v", tt.category, err)
			}

			var specErrs verr.SpecErrors
			if !errors.As(err, &specErrs) {
				t.Fatalf("errors must be SpecErrors: %T", err)
			}
			for _, e := range specErrs {
				if e.SourceName != "test" || e.FilePath != "test.grm" {
					t.Errorf("an error lacks its source: %+v", e)
				}
			}
			if tt.causes == nil {
				return
			}
			if len(specErrs) != len(tt.causes) {
				t.Fatalf("unexpected error count; want: %v, got: %v", len(tt.causes), err)
			}
			for i, cause := range tt.causes {
				if specErrs[i].Cause != cause {
					t.Errorf("unexpected cause; want: %v, got: %v", cause, specErrs[i].Cause)
				}
			}
		})
	}
}
