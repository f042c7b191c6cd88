package driver

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

// Token is an input symbol. Row and Col are 1-based, and both are 0 when the position is unknown.
type Token struct {
	Symbol string
	Row    int
	Col    int
	EOF    bool
}

func (t *Token) String() string {
	if t.EOF {
		return "<EOF>"
	}
	return t.Symbol
}

// TokenStream supplies the parser with input symbols. Next returns a token whose EOF is true once the
// input is exhausted.
type TokenStream interface {
	Next() (*Token, error)
}

const (
	inputKindWhiteSpace = "white_space"
	inputKindNewline    = "newline"
	inputKindSymbol     = "symbol"
)

var inputLexEntries = []*mlspec.LexEntry{
	{
		Kind:    mlspec.LexKindName(inputKindWhiteSpace),
		Pattern: mlspec.LexPattern(`[\u{0009}\u{000D}\u{0020}]+`),
	},
	{
		Kind:    mlspec.LexKindName(inputKindNewline),
		Pattern: mlspec.LexPattern(`\u{000A}|\u{000D}\u{000A}`),
	},
	{
		Kind:    mlspec.LexKindName(inputKindSymbol),
		Pattern: mlspec.LexPattern(`[^\u{0009}\u{000A}\u{000D}\u{0020}]+`),
	},
}

var (
	inputLexSpec     *mlspec.CompiledLexSpec
	inputLexSpecErr  error
	inputLexSpecOnce sync.Once
)

func compileInputLexSpec() (*mlspec.CompiledLexSpec, error) {
	inputLexSpecOnce.Do(func() {
		cspec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
			Name:    "input",
			Entries: inputLexEntries,
		}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				var b strings.Builder
				fmt.Fprintf(&b, "%v: %v", cErrs[0].Kind, cErrs[0].Cause)
				for _, cErr := range cErrs[1:] {
					fmt.Fprintf(&b, "\n%v: %v", cErr.Kind, cErr.Cause)
				}
				inputLexSpecErr = fmt.Errorf("failed to compile the input lexer: %v", b.String())
				return
			}
			inputLexSpecErr = err
			return
		}
		inputLexSpec = cspec
	})
	return inputLexSpec, inputLexSpecErr
}

type textTokenStream struct {
	lex *mldriver.Lexer
}

// NewTokenStream returns a token stream splitting text at white spaces. Every resulting word is a terminal name.
func NewTokenStream(src io.Reader) (TokenStream, error) {
	cspec, err := compileInputLexSpec()
	if err != nil {
		return nil, err
	}
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(cspec), src)
	if err != nil {
		return nil, err
	}
	return &textTokenStream{
		lex: lex,
	}, nil
}

func (s *textTokenStream) Next() (*Token, error) {
	for {
		tok, err := s.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return &Token{
				Row: tok.Row + 1,
				Col: tok.Col + 1,
				EOF: true,
			}, nil
		}
		if tok.Invalid {
			return nil, fmt.Errorf("invalid input at %v:%v: %q", tok.Row+1, tok.Col+1, string(tok.Lexeme))
		}
		if inputLexSpec.KindNames[tok.KindID].String() == inputKindWhiteSpace || inputLexSpec.KindNames[tok.KindID].String() == inputKindNewline {
			continue
		}
		return &Token{
			Symbol: string(tok.Lexeme),
			Row:    tok.Row + 1,
			Col:    tok.Col + 1,
		}, nil
	}
}

type symbolStream struct {
	syms []string
	pos  int
}

// NewSymbolStream returns a token stream over an already split symbol sequence.
func NewSymbolStream(syms []string) TokenStream {
	return &symbolStream{
		syms: syms,
	}
}

func (s *symbolStream) Next() (*Token, error) {
	if s.pos >= len(s.syms) {
		return &Token{
			EOF: true,
		}, nil
	}
	sym := s.syms[s.pos]
	s.pos++
	return &Token{
		Symbol: sym,
	}, nil
}
