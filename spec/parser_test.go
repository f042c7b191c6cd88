package spec

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/lrtab/error"
)

func TestParse(t *testing.T) {
	production := func(lhs string, alts ...*AlternativeNode) *ProductionNode {
		return &ProductionNode{
			LHS: lhs,
			RHS: alts,
		}
	}
	alternative := func(ids ...string) *AlternativeNode {
		var elems []*ElementNode
		for _, id := range ids {
			elems = append(elems, &ElementNode{
				ID: id,
			})
		}
		return &AlternativeNode{
			Elements: elems,
		}
	}

	tests := []struct {
		caption string
		src     string
		ast     *RootNode
		synErrs []*SyntaxError
	}{
		{
			caption: "single production is a valid grammar",
			src:     `S -> a`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("S", alternative("a")),
				},
			},
		},
		{
			caption: "multiple productions are a valid grammar",
			src: `
E -> E + T | T
T -> T * F | F
F -> ( E ) | id
`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("E",
						alternative("E", "+", "T"),
						alternative("T"),
					),
					production("T",
						alternative("T", "*", "F"),
						alternative("F"),
					),
					production("F",
						alternative("(", "E", ")"),
						alternative("id"),
					),
				},
			},
		},
		{
			caption: "ε and an empty alternative denote the empty production",
			src: `
S -> A
A -> a A | ε
B -> b |
`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("S", alternative("A")),
					production("A",
						alternative("a", "A"),
						alternative(),
					),
					production("B",
						alternative("b"),
						alternative(),
					),
				},
			},
		},
		{
			caption: "the same head can appear in several lines",
			src: `
S -> a
S -> b
`,
			ast: &RootNode{
				Productions: []*ProductionNode{
					production("S", alternative("a")),
					production("S", alternative("b")),
				},
			},
		},
		{
			caption: "a grammar must have at least one production",
			src:     "\n\n",
			synErrs: []*SyntaxError{synErrNoProduction},
		},
		{
			caption: "a production name must start with an upper case letter",
			src:     `expr -> id`,
			synErrs: []*SyntaxError{synErrInvalidHead},
		},
		{
			caption: "a production name must not contain symbols",
			src:     `E' -> id`,
			synErrs: []*SyntaxError{synErrInvalidHead},
		},
		{
			caption: "an arrow must follow a production name",
			src:     `E id`,
			synErrs: []*SyntaxError{synErrNoArrow},
		},
		{
			caption: "a production name is missing",
			src:     `-> id`,
			synErrs: []*SyntaxError{synErrNoProductionName},
		},
		{
			caption: "ε must be the only element of an alternative",
			src:     `S -> a ε`,
			synErrs: []*SyntaxError{synErrEpsilonMixed},
		},
		{
			caption: "the parser reports errors of every line",
			src: `
S -> a
b -> b
S c
S -> ε a
`,
			synErrs: []*SyntaxError{
				synErrInvalidHead,
				synErrNoArrow,
				synErrEpsilonMixed,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := Parse(strings.NewReader(tt.src))
			if len(tt.synErrs) > 0 {
				var specErrs verr.SpecErrors
				if !errors.As(err, &specErrs) {
					t.Fatalf("unexpected error; want: %v, got: %v", tt.synErrs, err)
				}
				if len(specErrs) != len(tt.synErrs) {
					t.Fatalf("unexpected error count; want: %v, got: %v (%v)", len(tt.synErrs), len(specErrs), specErrs)
				}
				for i, synErr := range tt.synErrs {
					if specErrs[i].Cause != synErr {
						t.Fatalf("unexpected error; want: %v, got: %v", synErr, specErrs[i].Cause)
					}
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			testRootNode(t, ast, tt.ast)
		})
	}
}

func TestParse_Position(t *testing.T) {
	ast, err := Parse(strings.NewReader("\nS -> A\n\nA -> a"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ast.Productions) != 2 {
		t.Fatalf("unexpected production count: %v", len(ast.Productions))
	}
	if ast.Productions[0].Pos.Row != 2 || ast.Productions[1].Pos.Row != 4 {
		t.Fatalf("unexpected rows: %v, %v", ast.Productions[0].Pos.Row, ast.Productions[1].Pos.Row)
	}
	if elem := ast.Productions[1].RHS[0].Elements[0]; elem.Pos.Row != 4 || elem.Pos.Col != 6 {
		t.Fatalf("unexpected position: %+v", elem.Pos)
	}
}

func testRootNode(t *testing.T, root, expected *RootNode) {
	t.Helper()

	if len(root.Productions) != len(expected.Productions) {
		t.Fatalf("unexpected length of productions; want: %v, got: %v", len(expected.Productions), len(root.Productions))
	}
	for i, prod := range root.Productions {
		testProductionNode(t, prod, expected.Productions[i])
	}
}

func testProductionNode(t *testing.T, prod, expected *ProductionNode) {
	t.Helper()

	if prod.LHS != expected.LHS {
		t.Fatalf("unexpected LHS; want: %v, got: %v", expected.LHS, prod.LHS)
	}
	if len(prod.RHS) != len(expected.RHS) {
		t.Fatalf("unexpected length of an RHS; want: %v, got: %v", len(expected.RHS), len(prod.RHS))
	}
	for i, alt := range prod.RHS {
		expectedAlt := expected.RHS[i]
		if len(alt.Elements) != len(expectedAlt.Elements) {
			t.Fatalf("unexpected length of elements; want: %v, got: %v", len(expectedAlt.Elements), len(alt.Elements))
		}
		for j, elem := range alt.Elements {
			if elem.ID != expectedAlt.Elements[j].ID {
				t.Fatalf("unexpected ID; want: %v, got: %v", expectedAlt.Elements[j].ID, elem.ID)
			}
		}
	}
}
