package spec

import (
	"io"

	verr "github.com/nihei9/lrtab/error"
)

type RootNode struct {
	Productions []*ProductionNode
}

type ProductionNode struct {
	LHS string
	RHS []*AlternativeNode
	Pos Position
}

// AlternativeNode is one body of a production. An empty Elements means the empty production.
type AlternativeNode struct {
	Elements []*ElementNode
	Pos      Position
}

type ElementNode struct {
	ID  string
	Pos Position
}

func raiseSyntaxError(row int, synErr *SyntaxError) {
	panic(&verr.SpecError{
		Cause: synErr,
		Row:   row,
	})
}

func raiseSyntaxErrorWithDetail(row int, synErr *SyntaxError, detail string) {
	panic(&verr.SpecError{
		Cause:  synErr,
		Detail: detail,
		Row:    row,
	})
}

// Parse reads grammar text of the form `Head -> body1 | body2 | ...`, one production group per line.
// A syntax error in one line doesn't stop the parser; all errors found are returned as verr.SpecErrors.
func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	return p.parse()
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
	errs      verr.SpecErrors
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		specErr, ok := err.(*verr.SpecError)
		if !ok {
			e, ok := err.(error)
			if !ok {
				panic(err)
			}
			specErr = &verr.SpecError{
				Cause: e,
			}
		}
		root = nil
		retErr = append(p.errs, specErr)
	}()

	root = p.parseRoot()
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return root, nil
}

func (p *parser) parseRoot() *RootNode {
	root := &RootNode{}
	for {
		if p.peek(tokenKindNewline) {
			p.nextToken()
		}
		if p.peek(tokenKindEOF) {
			break
		}

		prod, err := p.parseLine()
		if err != nil {
			specErr, ok := err.(*verr.SpecError)
			if !ok {
				// Errors other than a syntax error, such as an I/O error, are not recoverable.
				p.errs = append(p.errs, &verr.SpecError{
					Cause: err,
				})
				return nil
			}
			p.errs = append(p.errs, specErr)
			if !p.skipLine() {
				break
			}
			continue
		}
		root.Productions = append(root.Productions, prod)
	}
	if len(root.Productions) == 0 && len(p.errs) == 0 {
		p.errs = append(p.errs, &verr.SpecError{
			Cause: synErrNoProduction,
		})
	}
	return root
}

func (p *parser) parseLine() (prod *ProductionNode, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			e, ok := err.(error)
			if !ok {
				panic(err)
			}
			retErr = e
		}
	}()
	return p.parseProduction(), nil
}

// skipLine discards tokens up to and including the next newline. It returns false when the source is exhausted.
func (p *parser) skipLine() bool {
	if tok := p.peekedTok; tok != nil {
		p.peekedTok = nil
		switch tok.kind {
		case tokenKindNewline:
			return true
		case tokenKindEOF:
			return false
		}
	}
	for {
		tok, err := p.lex.next()
		if err != nil {
			specErr, ok := err.(*verr.SpecError)
			if !ok {
				panic(err)
			}
			p.errs = append(p.errs, specErr)
			continue
		}
		switch tok.kind {
		case tokenKindNewline:
			return true
		case tokenKindEOF:
			return false
		}
	}
}

func (p *parser) parseProduction() *ProductionNode {
	if !p.consume(tokenKindSymbol) {
		raiseSyntaxError(p.peekRow(), synErrNoProductionName)
	}
	lhs := p.lastTok.text
	pos := p.lastTok.pos
	if !IsNonTerminalName(lhs) {
		raiseSyntaxErrorWithDetail(pos.Row, synErrInvalidHead, lhs)
	}
	if !p.consume(tokenKindArrow) {
		raiseSyntaxError(pos.Row, synErrNoArrow)
	}
	alt := p.parseAlternative()
	rhs := []*AlternativeNode{alt}
	for {
		if !p.consume(tokenKindOr) {
			break
		}
		alt := p.parseAlternative()
		rhs = append(rhs, alt)
	}
	if !p.consume(tokenKindNewline) && !p.peek(tokenKindEOF) {
		raiseSyntaxError(pos.Row, synErrNoNewline)
	}
	return &ProductionNode{
		LHS: lhs,
		RHS: rhs,
		Pos: pos,
	}
}

func (p *parser) parseAlternative() *AlternativeNode {
	pos := p.peekPos()
	if p.consume(tokenKindEpsilon) {
		if p.peek(tokenKindSymbol) || p.peek(tokenKindEpsilon) {
			raiseSyntaxError(pos.Row, synErrEpsilonMixed)
		}
		return &AlternativeNode{
			Pos: pos,
		}
	}

	var elems []*ElementNode
	for {
		if p.peek(tokenKindEpsilon) {
			raiseSyntaxError(pos.Row, synErrEpsilonMixed)
		}
		if !p.consume(tokenKindSymbol) {
			break
		}
		elems = append(elems, &ElementNode{
			ID:  p.lastTok.text,
			Pos: p.lastTok.pos,
		})
	}
	return &AlternativeNode{
		Elements: elems,
		Pos:      pos,
	}
}

func (p *parser) nextToken() *token {
	if p.peekedTok != nil {
		tok := p.peekedTok
		p.peekedTok = nil
		return tok
	}
	tok, err := p.lex.next()
	if err != nil {
		panic(err)
	}
	return tok
}

func (p *parser) consume(expected tokenKind) bool {
	tok := p.nextToken()
	p.lastTok = tok
	if tok.kind == tokenKindInvalid {
		raiseSyntaxErrorWithDetail(tok.pos.Row, synErrInvalidToken, tok.text)
	}
	if tok.kind == expected {
		return true
	}
	p.peekedTok = tok
	p.lastTok = nil

	return false
}

func (p *parser) peek(expected tokenKind) bool {
	tok := p.nextToken()
	p.peekedTok = tok
	return tok.kind == expected
}

func (p *parser) peekPos() Position {
	tok := p.nextToken()
	p.peekedTok = tok
	return tok.pos
}

func (p *parser) peekRow() int {
	return p.peekPos().Row
}

// IsNonTerminalName reports whether name matches [A-Z][A-Za-z0-9]*, the spelling of production names.
func IsNonTerminalName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c >= 'A' && c <= 'Z':
		case i > 0 && c >= 'a' && c <= 'z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
