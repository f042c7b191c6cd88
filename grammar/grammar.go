package grammar

import (
	"fmt"
	"io"

	verr "github.com/nihei9/lrtab/error"
	"github.com/nihei9/lrtab/grammar/symbol"
	"github.com/nihei9/lrtab/spec"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/exp/slices"
)

func tracer() tracing.Trace {
	return tracing.Select("lrtab.grammar")
}

// augmentedStartSuffix is appended to the start symbol to name the augmented start symbol.
const augmentedStartSuffix = "'"

type Grammar struct {
	name                 string
	productionSet        *productionSet
	augmentedStartSymbol symbol.Symbol
	startSymbol          symbol.Symbol
	symbolTable          *symbol.SymbolTable
}

// Name returns the name given to the builder.
func (g *Grammar) Name() string {
	return g.name
}

// StartSymbol returns the name of the start symbol, i.e., the head of the first production.
func (g *Grammar) StartSymbol() string {
	text, _ := g.symbolTable.Reader().ToText(g.startSymbol)
	return text
}

// ProductionCount returns the number of productions, the augmented production included.
func (g *Grammar) ProductionCount() int {
	return g.productionSet.count()
}

// Terminals returns the names of the terminal symbols sorted by name. END is excluded.
func (g *Grammar) Terminals() []string {
	r := g.symbolTable.Reader()
	var texts []string
	for _, sym := range r.TerminalSymbols() {
		text, _ := r.ToText(sym)
		texts = append(texts, text)
	}
	return texts
}

// NonTerminals returns the names of the non-terminal symbols sorted by name. The augmented start
// symbol is excluded.
func (g *Grammar) NonTerminals() []string {
	r := g.symbolTable.Reader()
	var texts []string
	for _, sym := range r.NonTerminalSymbols() {
		if sym.IsStart() {
			continue
		}
		text, _ := r.ToText(sym)
		texts = append(texts, text)
	}
	return texts
}

// ProductionString returns the text representation of a production, such as `E → E + T`.
func (g *Grammar) ProductionString(num int) (string, bool) {
	prod, ok := g.productionSet.findByNum(productionNum(num))
	if !ok {
		return "", false
	}
	return g.productionText(prod), true
}

func (g *Grammar) productionText(prod *production) string {
	r := g.symbolTable.Reader()
	lhs, _ := r.ToText(prod.lhs)
	text := fmt.Sprintf("%v →", lhs)
	if prod.isEmpty() {
		return text + " ε"
	}
	for _, sym := range prod.rhs {
		t, _ := r.ToText(sym)
		text += " " + t
	}
	return text
}

func (g *Grammar) symbolText(sym symbol.Symbol) string {
	text, ok := g.symbolTable.Reader().ToText(sym)
	if !ok {
		return sym.String()
	}
	return text
}

// Load reads grammar text and builds a grammar. filePath is used only to decorate error messages.
func Load(src io.Reader, name string, filePath string) (*Grammar, error) {
	ast, err := spec.Parse(src)
	if err != nil {
		decorateSpecErrors(err, name, filePath)
		return nil, err
	}
	b := GrammarBuilder{
		AST:  ast,
		Name: name,
	}
	gram, err := b.Build()
	if err != nil {
		decorateSpecErrors(err, name, filePath)
		return nil, err
	}
	return gram, nil
}

func decorateSpecErrors(err error, name string, filePath string) {
	specErrs, ok := err.(verr.SpecErrors)
	if !ok {
		return
	}
	for _, e := range specErrs {
		e.SourceName = name
		e.FilePath = filePath
	}
}

type GrammarBuilder struct {
	AST  *spec.RootNode
	Name string

	errs verr.SpecErrors
}

// Build validates the AST, registers symbols, and numbers productions. The first head becomes the
// start symbol, and the augmented production `S' → S` is added as production 0.
func (b *GrammarBuilder) Build() (*Grammar, error) {
	if b.AST == nil || len(b.AST.Productions) == 0 {
		return nil, verr.SpecErrors{
			{
				Cause: semErrNoProduction,
			},
		}
	}

	heads := map[string]struct{}{}
	var headTexts []string
	for _, prod := range b.AST.Productions {
		if _, ok := heads[prod.LHS]; ok {
			continue
		}
		heads[prod.LHS] = struct{}{}
		headTexts = append(headTexts, prod.LHS)
	}
	startText := b.AST.Productions[0].LHS
	augStartText := startText + augmentedStartSuffix

	termTexts := b.collectTerminals(heads, augStartText)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	symTab, err := genSymbolTable(augStartText, headTexts, termTexts)
	if err != nil {
		return nil, err
	}

	prods, err := b.genProductionSet(symTab)
	if err != nil {
		return nil, err
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	b.checkCyclicDerivations(heads, headTexts)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	r := symTab.Reader()
	startSym, _ := r.ToSymbol(startText)

	tracer().Debugf("grammar %v: %v productions, %v terminals, %v non-terminals",
		b.Name, prods.count(), len(termTexts), len(headTexts))

	return &Grammar{
		name:                 b.Name,
		productionSet:        prods,
		augmentedStartSymbol: symbol.SymbolStart,
		startSymbol:          startSym,
		symbolTable:          symTab,
	}, nil
}

// collectTerminals classifies every body symbol. A symbol that is not a head but is spelled like
// one is an undefined non-terminal rather than a terminal.
func (b *GrammarBuilder) collectTerminals(heads map[string]struct{}, augStartText string) []string {
	if _, ok := heads[augStartText]; ok {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrStartSymCollision,
			Detail: augStartText,
			Row:    b.AST.Productions[0].Pos.Row,
		})
	}

	known := map[string]struct{}{}
	var terms []string
	for _, prod := range b.AST.Productions {
		for _, alt := range prod.RHS {
			for _, elem := range alt.Elements {
				switch {
				case elem.ID == symbol.SymbolNameEOF:
					b.errs = append(b.errs, &verr.SpecError{
						Cause: semErrReservedSymbol,
						Row:   elem.Pos.Row,
						Col:   elem.Pos.Col,
					})
					continue
				case elem.ID == augStartText:
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrStartSymCollision,
						Detail: elem.ID,
						Row:    elem.Pos.Row,
						Col:    elem.Pos.Col,
					})
					continue
				}
				if _, ok := heads[elem.ID]; ok {
					continue
				}
				if spec.IsNonTerminalName(elem.ID) {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrUndefinedSym,
						Detail: elem.ID,
						Row:    elem.Pos.Row,
						Col:    elem.Pos.Col,
					})
					continue
				}
				if _, ok := known[elem.ID]; ok {
					continue
				}
				known[elem.ID] = struct{}{}
				terms = append(terms, elem.ID)
			}
		}
	}
	return terms
}

// genSymbolTable registers symbols in sorted name order so that symbol numbers follow the order
// in which the automaton builder visits them.
func genSymbolTable(augStartText string, headTexts []string, termTexts []string) (*symbol.SymbolTable, error) {
	symTab := symbol.NewSymbolTable()
	w := symTab.Writer()

	_, err := w.RegisterStartSymbol(augStartText)
	if err != nil {
		return nil, err
	}

	nonTerms := slices.Clone(headTexts)
	slices.Sort(nonTerms)
	for _, text := range nonTerms {
		_, err := w.RegisterNonTerminalSymbol(text)
		if err != nil {
			return nil, err
		}
	}

	terms := slices.Clone(termTexts)
	slices.Sort(terms)
	for _, text := range terms {
		_, err := w.RegisterTerminalSymbol(text)
		if err != nil {
			return nil, err
		}
	}

	return symTab, nil
}

func (b *GrammarBuilder) genProductionSet(symTab *symbol.SymbolTable) (*productionSet, error) {
	r := symTab.Reader()
	prods := newProductionSet()

	startSym, _ := r.ToSymbol(b.AST.Productions[0].LHS)
	augProd, err := newProduction(symbol.SymbolStart, []symbol.Symbol{startSym})
	if err != nil {
		return nil, err
	}
	prods.append(augProd)

	for _, prod := range b.AST.Productions {
		lhsSym, ok := r.ToSymbol(prod.LHS)
		if !ok {
			return nil, fmt.Errorf("symbol '%v' is undefined", prod.LHS)
		}

		for _, alt := range prod.RHS {
			altSyms := make([]symbol.Symbol, len(alt.Elements))
			for i, elem := range alt.Elements {
				sym, ok := r.ToSymbol(elem.ID)
				if !ok {
					return nil, fmt.Errorf("symbol '%v' is undefined", elem.ID)
				}
				altSyms[i] = sym
			}

			p, err := newProduction(lhsSym, altSyms)
			if err != nil {
				return nil, err
			}
			if !prods.append(p) {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateProduction,
					Detail: prod.LHS,
					Row:    alt.Pos.Row,
					Col:    alt.Pos.Col,
				})
			}
		}
	}

	return prods, nil
}
