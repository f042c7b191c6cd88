package spec

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
	verr "github.com/nihei9/lrtab/error"
)

type tokenKind string

const (
	tokenKindSymbol  = tokenKind("symbol")
	tokenKindArrow   = tokenKind("->")
	tokenKindOr      = tokenKind("|")
	tokenKindEpsilon = tokenKind("ε")
	tokenKindNewline = tokenKind("newline")
	tokenKindEOF     = tokenKind("eof")
	tokenKindInvalid = tokenKind("invalid")
)

const (
	// SymbolNameEpsilon is the spelling of an empty alternative.
	SymbolNameEpsilon = "ε"

	symbolNameArrow = "->"
	symbolNameOr    = "|"
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newSymbolToken(kind tokenKind, pos Position) *token {
	return &token{
		kind: kind,
		pos:  pos,
	}
}

func newIDToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindSymbol,
		text: text,
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

func newInvalidToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindInvalid,
		text: text,
		pos:  pos,
	}
}

// The kinds are listed in priority order. When two kinds match a lexeme of the same length,
// the earlier one wins, so `->`, `|`, and `ε` are never lexed as symbols.
var lexEntries = []*mlspec.LexEntry{
	{
		Kind:    mlspec.LexKindName("white_space"),
		Pattern: mlspec.LexPattern(`[\u{0009}\u{0020}]+`),
	},
	{
		Kind:    mlspec.LexKindName("newline"),
		Pattern: mlspec.LexPattern(`\u{000A}|\u{000D}\u{000A}`),
	},
	{
		Kind:    mlspec.LexKindName("arrow"),
		Pattern: mlspec.LexPattern(mlspec.EscapePattern(symbolNameArrow)),
	},
	{
		Kind:    mlspec.LexKindName("or"),
		Pattern: mlspec.LexPattern(mlspec.EscapePattern(symbolNameOr)),
	},
	{
		Kind:    mlspec.LexKindName("epsilon"),
		Pattern: mlspec.LexPattern(mlspec.EscapePattern(SymbolNameEpsilon)),
	},
	{
		Kind:    mlspec.LexKindName("symbol"),
		Pattern: mlspec.LexPattern(`[^\u{0009}\u{000A}\u{000D}\u{0020}\u{007C}]+`),
	},
}

var (
	compiledLexSpec    *mlspec.CompiledLexSpec
	compiledLexSpecErr error
	compileLexSpecOnce sync.Once
)

func compileLexSpec() (*mlspec.CompiledLexSpec, error) {
	compileLexSpecOnce.Do(func() {
		cspec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
			Name:    "grammar",
			Entries: lexEntries,
		}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				var b strings.Builder
				fmt.Fprintf(&b, "%v: %v", cErrs[0].Kind, cErrs[0].Cause)
				for _, cErr := range cErrs[1:] {
					fmt.Fprintf(&b, "\n%v: %v", cErr.Kind, cErr.Cause)
				}
				compiledLexSpecErr = fmt.Errorf("failed to compile the grammar lexer: %v", b.String())
				return
			}
			compiledLexSpecErr = err
			return
		}
		compiledLexSpec = cspec
	})
	return compiledLexSpec, compiledLexSpecErr
}

type lexer struct {
	d       *mldriver.Lexer
	buf     *token
	lastPos Position
}

func newLexer(src io.Reader) (*lexer, error) {
	s, err := compileLexSpec()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		d: d,
	}, nil
}

// next returns the next token. Consecutive newlines are combined into one token.
func (l *lexer) next() (*token, error) {
	if l.buf != nil {
		tok := l.buf
		l.buf = nil
		return tok, nil
	}

	var newline *token
	for {
		tok, err := l.lexAndSkipWSs()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindNewline {
			newline = tok
			continue
		}

		if newline != nil {
			l.buf = tok
			return newline, nil
		}
		return tok, nil
	}
}

func (l *lexer) lexAndSkipWSs() (*token, error) {
	var tok *mldriver.Token
	for {
		var err error
		tok, err = l.d.Next()
		if err != nil {
			return nil, err
		}
		if tok.Invalid {
			return newInvalidToken(string(tok.Lexeme), newPosition(tok.Row+1, tok.Col+1)), nil
		}
		if tok.EOF {
			return newEOFToken(newPosition(tok.Row+1, tok.Col+1)), nil
		}
		if compiledLexSpec.KindNames[tok.KindID].String() == "white_space" {
			continue
		}

		break
	}

	pos := newPosition(tok.Row+1, tok.Col+1)
	switch compiledLexSpec.KindNames[tok.KindID].String() {
	case "newline":
		return newSymbolToken(tokenKindNewline, pos), nil
	case "arrow":
		return newSymbolToken(tokenKindArrow, pos), nil
	case "or":
		return newSymbolToken(tokenKindOr, pos), nil
	case "epsilon":
		return newSymbolToken(tokenKindEpsilon, pos), nil
	case "symbol":
		text := string(tok.Lexeme)
		if strings.Contains(text, symbolNameArrow) {
			return nil, &verr.SpecError{
				Cause:  synErrArrowNotDelimited,
				Detail: text,
				Row:    pos.Row,
				Col:    pos.Col,
			}
		}
		return newIDToken(text, pos), nil
	default:
		return newInvalidToken(string(tok.Lexeme), pos), nil
	}
}
