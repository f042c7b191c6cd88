package driver

import (
	"errors"
	"fmt"
	"io"
	"strings"

	spec "github.com/nihei9/lrtab/spec/grammar"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("lrtab.driver")
}

// ErrMissingGoTo means that a reduction found no GOTO entry. A table built from a grammar never causes it, so
// the parser stops instead of reporting a syntax error.
var ErrMissingGoTo = errors.New("missing GOTO entry")

// ErrReduceCycle means that reductions brought the stack back to a configuration it had already had since the
// last shift. The parser would never consume input again.
var ErrReduceCycle = errors.New("reduce cycle")

type Node struct {
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
}

func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Text != "" {
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// SyntaxError reports an input symbol having no ACTION entry. Position is the index of the symbol in the input,
// so the position of END equals the input length.
type SyntaxError struct {
	Position          int
	Row               int
	Col               int
	State             int
	Token             *Token
	ExpectedTerminals []string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	if e.Row > 0 {
		fmt.Fprintf(&b, "%v:%v: ", e.Row, e.Col)
	}
	if e.Token.EOF {
		fmt.Fprintf(&b, "unexpected end of input")
	} else {
		fmt.Fprintf(&b, "unexpected symbol %#v", e.Token.Symbol)
	}
	fmt.Fprintf(&b, " at position %v (state %v)", e.Position, e.State)
	if len(e.ExpectedTerminals) > 0 {
		fmt.Fprintf(&b, "; expected: %v", strings.Join(e.ExpectedTerminals, ", "))
	}
	return b.String()
}

// Result is the outcome of a parse. SyntaxError is nil when the input is accepted.
type Result struct {
	Accepted    bool
	SyntaxError *SyntaxError
	Tree        *Node
}

// Step is a snapshot taken before the parser takes an action.
type Step struct {
	Number      int
	StateStack  []int
	SymbolStack []string
	Input       []string
	Action      string
}

type ParserOption func(p *Parser) error

// Trace makes the parser pass every step to f.
func Trace(f func(*Step)) ParserOption {
	return func(p *Parser) error {
		if f == nil {
			return fmt.Errorf("a trace function must not be nil")
		}
		p.trace = f
		return nil
	}
}

// MakeCST makes the parser build a concrete syntax tree of an accepted input.
func MakeCST() ParserOption {
	return func(p *Parser) error {
		p.makeCST = true
		return nil
	}
}

type Parser struct {
	gram        *spec.CompiledGrammar
	termNums    map[string]int
	tokens      []*Token
	pos         int
	stateStack  []int
	symbolStack []string
	semStack    []*Node
	trace       func(*Step)
	makeCST     bool
}

// NewParser reads the whole token stream and returns a parser for it.
func NewParser(gram *spec.CompiledGrammar, ts TokenStream, opts ...ParserOption) (*Parser, error) {
	if gram == nil || gram.ParsingTable == nil {
		return nil, fmt.Errorf("a compiled grammar must have a parsing table")
	}
	tab := gram.ParsingTable
	err := tab.Validate()
	if err != nil {
		return nil, err
	}

	termNums := map[string]int{}
	for num, text := range tab.Terminals {
		if num == 0 || num == tab.EOFSymbol {
			continue
		}
		termNums[text] = num
	}

	p := &Parser{
		gram:     gram,
		termNums: termNums,
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	for {
		tok, err := ts.Next()
		if err != nil {
			return nil, err
		}
		p.tokens = append(p.tokens, tok)
		if tok.EOF {
			break
		}
	}

	return p, nil
}

// Parse runs the parser from the beginning of the input. Calling it again parses the same input again.
func (p *Parser) Parse() (*Result, error) {
	tab := p.gram.ParsingTable
	p.pos = 0
	p.stateStack = []int{tab.InitialState}
	p.symbolStack = []string{tab.Terminals[tab.EOFSymbol]}
	p.semStack = nil

	// Stacks seen since the last shift.
	seen := map[string]struct{}{}

	stepNum := 0
ACTION_LOOP:
	for {
		stepNum++
		tok := p.tokens[p.pos]
		act := p.lookupAction(tok)
		switch {
		case act < 0: // Shift
			nextState := act * -1
			p.traceStep(stepNum, fmt.Sprintf("shift %v", nextState))
			tracer().Debugf("state %v: shift %v and go to state %v", p.top(), tok, nextState)

			p.shift(nextState, tok)
			clear(seen)
		case act == tab.StartProduction+1: // Accept
			p.traceStep(stepNum, "accept")
			tracer().Debugf("state %v: accept", p.top())

			break ACTION_LOOP
		case act > 0: // Reduce
			prodNum := act - 1
			if prodNum >= len(tab.Productions) {
				return nil, fmt.Errorf("invalid production number: %v", prodNum)
			}
			p.traceStep(stepNum, fmt.Sprintf("reduce %v", tab.Productions[prodNum]))
			tracer().Debugf("state %v: reduce %v", p.top(), tab.Productions[prodNum])

			err := p.reduce(prodNum)
			if err != nil {
				return nil, err
			}
			key := fmt.Sprint(p.stateStack)
			if _, ok := seen[key]; ok {
				return nil, fmt.Errorf("%w: state %v, production %v", ErrReduceCycle, p.top(), tab.Productions[prodNum])
			}
			seen[key] = struct{}{}
		default: // Error
			p.traceStep(stepNum, "error")
			synErr := &SyntaxError{
				Position:          p.pos,
				Row:               tok.Row,
				Col:               tok.Col,
				State:             p.top(),
				Token:             tok,
				ExpectedTerminals: p.searchLookahead(p.top()),
			}
			tracer().Debugf("syntax error: %v", synErr)

			return &Result{
				SyntaxError: synErr,
			}, nil
		}
	}

	var tree *Node
	if p.makeCST && len(p.semStack) > 0 {
		tree = p.semStack[len(p.semStack)-1]
	}
	return &Result{
		Accepted: true,
		Tree:     tree,
	}, nil
}

// lookupAction returns 0 for a symbol unknown to the grammar.
func (p *Parser) lookupAction(tok *Token) int {
	tab := p.gram.ParsingTable
	term := tab.EOFSymbol
	if !tok.EOF {
		num, ok := p.termNums[tok.Symbol]
		if !ok {
			return 0
		}
		term = num
	}
	return tab.Action[p.top()*tab.TerminalCount+term]
}

func (p *Parser) shift(nextState int, tok *Token) {
	p.push(nextState, tok.Symbol)
	if p.makeCST {
		p.semStack = append(p.semStack, &Node{
			KindName: tok.Symbol,
			Text:     tok.Symbol,
			Row:      tok.Row,
			Col:      tok.Col,
		})
	}
	p.pos++
}

func (p *Parser) reduce(prodNum int) error {
	tab := p.gram.ParsingTable
	lhs := tab.LHSSymbols[prodNum]
	n := tab.AlternativeSymbolCounts[prodNum]
	if n > len(p.stateStack)-1 {
		return fmt.Errorf("the stack is too short to reduce %v", tab.Productions[prodNum])
	}
	p.pop(n)

	nextState := tab.GoTo[p.top()*tab.NonTerminalCount+lhs]
	if nextState == 0 {
		return fmt.Errorf("%w: state %v, non-terminal %v", ErrMissingGoTo, p.top(), tab.NonTerminals[lhs])
	}
	p.push(nextState, tab.NonTerminals[lhs])

	if p.makeCST {
		// When an alternative is empty, `n` will be 0, and `handle` will be empty slice.
		handle := p.semStack[len(p.semStack)-n:]
		children := make([]*Node, n)
		copy(children, handle)
		p.semStack = p.semStack[:len(p.semStack)-n]
		p.semStack = append(p.semStack, &Node{
			KindName: tab.NonTerminals[lhs],
			Children: children,
		})
	}

	return nil
}

// searchLookahead returns the terminals having an ACTION entry in a state.
func (p *Parser) searchLookahead(state int) []string {
	tab := p.gram.ParsingTable
	kinds := []string{}
	for term := 1; term < tab.TerminalCount; term++ {
		if tab.Action[state*tab.TerminalCount+term] == 0 {
			continue
		}
		kinds = append(kinds, tab.Terminals[term])
	}
	return kinds
}

func (p *Parser) traceStep(num int, action string) {
	if p.trace == nil {
		return
	}

	input := make([]string, 0, len(p.tokens)-p.pos)
	for _, tok := range p.tokens[p.pos:] {
		if tok.EOF {
			input = append(input, p.gram.ParsingTable.Terminals[p.gram.ParsingTable.EOFSymbol])
			continue
		}
		input = append(input, tok.Symbol)
	}
	p.trace(&Step{
		Number:      num,
		StateStack:  append([]int{}, p.stateStack...),
		SymbolStack: append([]string{}, p.symbolStack...),
		Input:       input,
		Action:      action,
	})
}

func (p *Parser) top() int {
	return p.stateStack[len(p.stateStack)-1]
}

func (p *Parser) push(state int, sym string) {
	p.stateStack = append(p.stateStack, state)
	p.symbolStack = append(p.symbolStack, sym)
}

func (p *Parser) pop(n int) {
	p.stateStack = p.stateStack[:len(p.stateStack)-n]
	p.symbolStack = p.symbolStack[:len(p.symbolStack)-n]
}
