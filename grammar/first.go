package grammar

import (
	"fmt"

	"github.com/nihei9/lrtab/grammar/symbol"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type firstEntry struct {
	symbols map[symbol.Symbol]struct{}
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: map[symbol.Symbol]struct{}{},
		empty:   false,
	}
}

func (e *firstEntry) add(sym symbol.Symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *firstEntry) addEmpty() bool {
	if !e.empty {
		e.empty = true
		return true
	}
	return false
}

func (e *firstEntry) mergeExceptEmpty(target *firstEntry) bool {
	if target == nil {
		return false
	}
	changed := false
	for sym := range target.symbols {
		added := e.add(sym)
		if added {
			changed = true
		}
	}
	return changed
}

// sortedSymbols returns the terminals of the entry in the order the automaton visits symbols.
func (e *firstEntry) sortedSymbols() []symbol.Symbol {
	syms := maps.Keys(e.symbols)
	slices.SortFunc(syms, symbol.Compare)
	return syms
}

type firstSet struct {
	set map[symbol.Symbol]*firstEntry
}

func newFirstSet(prods *productionSet) *firstSet {
	fst := &firstSet{
		set: map[symbol.Symbol]*firstEntry{},
	}
	for _, prod := range prods.getAllProductions() {
		if _, ok := fst.set[prod.lhs]; ok {
			continue
		}
		fst.set[prod.lhs] = newFirstEntry()
	}

	return fst
}

// find returns FIRST of the RHS of prod from the head position.
func (fst *firstSet) find(prod *production, head int) (*firstEntry, error) {
	if prod.rhsLen <= head {
		return fst.findBySequence(nil)
	}
	return fst.findBySequence(prod.rhs[head:])
}

// findBySequence returns FIRST of a symbol sequence. The entry contains ε only when every symbol
// of the sequence can derive ε, so FIRST of the empty sequence is {ε}.
func (fst *firstSet) findBySequence(seq []symbol.Symbol) (*firstEntry, error) {
	entry := newFirstEntry()
	for _, sym := range seq {
		if sym.IsTerminal() {
			entry.add(sym)
			return entry, nil
		}

		e := fst.findBySymbol(sym)
		if e == nil {
			return nil, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		for s := range e.symbols {
			entry.add(s)
		}
		if !e.empty {
			return entry, nil
		}
	}
	entry.addEmpty()
	return entry, nil
}

func (fst *firstSet) findBySymbol(sym symbol.Symbol) *firstEntry {
	return fst.set[sym]
}

type firstComContext struct {
	first *firstSet
}

func newFirstComContext(prods *productionSet) *firstComContext {
	return &firstComContext{
		first: newFirstSet(prods),
	}
}

// fixpointPassLimit bounds the passes of a fixpoint computation over the sets of the non-terminals.
// Each pass except the last adds at least one terminal (or ε/END) to some set, so a computation
// needing more passes than the number of possible elements never converges.
func fixpointPassLimit(symTab *symbol.SymbolTable) int {
	r := symTab.Reader()
	return r.NonTerminalCount()*(r.TerminalCount()+1) + 1
}

func genFirstSet(prods *productionSet, symTab *symbol.SymbolTable) (*firstSet, error) {
	cc := newFirstComContext(prods)
	limit := fixpointPassLimit(symTab)
	for pass := 1; ; pass++ {
		if pass > limit {
			return nil, fmt.Errorf("FIRST computation did not converge within %v passes", limit)
		}

		more := false
		for _, prod := range prods.getAllProductions() {
			e := cc.first.findBySymbol(prod.lhs)
			changed, err := genProdFirstEntry(cc, e, prod)
			if err != nil {
				return nil, err
			}
			if changed {
				more = true
			}
		}
		if !more {
			tracer().Debugf("FIRST converged after %v passes", pass)
			break
		}
	}
	return cc.first, nil
}

func genProdFirstEntry(cc *firstComContext, acc *firstEntry, prod *production) (bool, error) {
	if prod.isEmpty() {
		return acc.addEmpty(), nil
	}

	changed := false
	for _, sym := range prod.rhs {
		if sym.IsTerminal() {
			return acc.add(sym) || changed, nil
		}

		e := cc.first.findBySymbol(sym)
		if e == nil {
			return false, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
		}
		if acc.mergeExceptEmpty(e) {
			changed = true
		}
		if !e.empty {
			return changed, nil
		}
	}
	return acc.addEmpty() || changed, nil
}
