package grammar

import (
	"strings"
	"testing"

	"github.com/nihei9/lrtab/grammar/symbol"
)

func loadTestGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	gram, err := Load(strings.NewReader(src), "test", "")
	if err != nil {
		t.Fatalf("failed to load a grammar: %v", err)
	}
	return gram
}

type testSymbolGenerator func(text string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, symTab *symbol.SymbolTableReader) testSymbolGenerator {
	return func(text string) symbol.Symbol {
		t.Helper()

		sym, ok := symTab.ToSymbol(text)
		if !ok {
			t.Fatalf("symbol was not found: %v", text)
		}
		return sym
	}
}

// testProductionFinder finds a production of a grammar by its symbols.
type testProductionFinder func(lhs string, rhs ...string) *production

func newTestProductionFinder(t *testing.T, gram *Grammar) testProductionFinder {
	genSym := newTestSymbolGenerator(t, gram.symbolTable.Reader())
	return func(lhs string, rhs ...string) *production {
		t.Helper()

		rhsSym := []symbol.Symbol{}
		for _, text := range rhs {
			rhsSym = append(rhsSym, genSym(text))
		}
		id := genProductionID(genSym(lhs), rhsSym)
		prod, ok := gram.productionSet.id2Prod[id]
		if !ok {
			t.Fatalf("a production was not found: %v → %v", lhs, rhs)
		}
		return prod
	}
}

type testItemGenerator func(lookAhead string, lhs string, dot int, rhs ...string) lrItem

// newTestItemGenerator returns a generator of items. An empty lookAhead means an item without a lookahead.
func newTestItemGenerator(t *testing.T, gram *Grammar) testItemGenerator {
	genSym := newTestSymbolGenerator(t, gram.symbolTable.Reader())
	findProd := newTestProductionFinder(t, gram)
	return func(lookAhead string, lhs string, dot int, rhs ...string) lrItem {
		t.Helper()

		a := symbol.SymbolNil
		if lookAhead != "" {
			a = genSym(lookAhead)
		}
		item, err := newLRItem(findProd(lhs, rhs...), dot, a)
		if err != nil {
			t.Fatalf("failed to create an item: %v", err)
		}
		return item
	}
}

// findStateByKernel returns the state whose kernel items are exactly kernel.
func findStateByKernel(t *testing.T, automaton *Automaton, kernel ...lrItem) *lrState {
	t.Helper()

	want := canonicalizeItems(kernel)
	for _, s := range automaton.states {
		got := s.kernelItems()
		if len(got) != len(want) {
			continue
		}
		match := true
		for i := range got {
			if compareLRItems(got[i], want[i]) != 0 {
				match = false
				break
			}
		}
		if match {
			return s
		}
	}
	t.Fatalf("a state was not found; kernel: %+v", kernel)
	return nil
}

const exprGrammar = `
E -> E + T | T
T -> T * F | F
F -> ( E ) | id
`

func symbolsOf(genSym testSymbolGenerator, texts ...string) []symbol.Symbol {
	syms := make([]symbol.Symbol, len(texts))
	for i, text := range texts {
		syms[i] = genSym(text)
	}
	return syms
}
