package spec

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/lrtab/error"
)

func TestLexer_Run(t *testing.T) {
	idTok := func(text string) *token {
		return newIDToken(text, newPosition(1, 1))
	}

	symTok := func(kind tokenKind) *token {
		return newSymbolToken(kind, newPosition(1, 1))
	}

	tests := []struct {
		caption string
		src     string
		tokens  []*token
		err     error
	}{
		{
			caption: "the lexer can recognize all kinds of tokens",
			src:     "E -> E + T | ε\n",
			tokens: []*token{
				idTok("E"),
				symTok(tokenKindArrow),
				idTok("E"),
				idTok("+"),
				idTok("T"),
				symTok(tokenKindOr),
				symTok(tokenKindEpsilon),
				symTok(tokenKindNewline),
				newEOFToken(newPosition(1, 1)),
			},
		},
		{
			caption: "the lexer can recognize `|` even if it isn't delimited by white spaces",
			src:     "S -> a|b",
			tokens: []*token{
				idTok("S"),
				symTok(tokenKindArrow),
				idTok("a"),
				symTok(tokenKindOr),
				idTok("b"),
				newEOFToken(newPosition(1, 1)),
			},
		},
		{
			caption: "the lexer combines consecutive newlines into one",
			src:     "A -> a\n\r\n\nB -> b",
			tokens: []*token{
				idTok("A"),
				symTok(tokenKindArrow),
				idTok("a"),
				symTok(tokenKindNewline),
				idTok("B"),
				symTok(tokenKindArrow),
				idTok("b"),
				newEOFToken(newPosition(1, 1)),
			},
		},
		{
			caption: "symbols may contain any character except white spaces and `|`",
			src:     "( ) id' + * ->x",
			tokens: []*token{
				idTok("("),
				idTok(")"),
				idTok("id'"),
				idTok("+"),
				idTok("*"),
			},
			err: synErrArrowNotDelimited,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			l, err := newLexer(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			n := 0
			for {
				var tok *token
				tok, err = l.next()
				if err != nil {
					break
				}
				if n >= len(tt.tokens) {
					t.Fatalf("too many tokens; unexpected: %+v", tok)
				}
				testToken(t, tok, tt.tokens[n])
				n++
				if tok.kind == tokenKindEOF {
					break
				}
			}
			if tt.err != nil {
				var specErr *verr.SpecError
				if !errors.As(err, &specErr) {
					t.Fatalf("unexpected error; want: %v, got: %v", tt.err, err)
				}
				if specErr.Cause != tt.err {
					t.Fatalf("unexpected error; want: %v, got: %v", tt.err, specErr.Cause)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != len(tt.tokens) {
				t.Fatalf("unexpected token count; want: %v, got: %v", len(tt.tokens), n)
			}
		})
	}
}

func TestLexer_Position(t *testing.T) {
	l, err := newLexer(strings.NewReader("A -> a\nBc ->  b"))
	if err != nil {
		t.Fatal(err)
	}
	expected := []Position{
		newPosition(1, 1),
		newPosition(1, 3),
		newPosition(1, 6),
		newPosition(1, 7),
		newPosition(2, 1),
		newPosition(2, 4),
		newPosition(2, 8),
	}
	for _, pos := range expected {
		tok, err := l.next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.pos != pos {
			t.Fatalf("unexpected position; want: %+v, got: %+v (%v)", pos, tok.pos, tok.kind)
		}
	}
}

func testToken(t *testing.T, tok, expected *token) {
	t.Helper()

	if tok.kind != expected.kind || tok.text != expected.text {
		t.Fatalf("unexpected token; want: %+v, got: %+v", expected, tok)
	}
}
