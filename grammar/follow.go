package grammar

import (
	"fmt"

	"github.com/nihei9/lrtab/grammar/symbol"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type followEntry struct {
	symbols map[symbol.Symbol]struct{}
	eof     bool
}

func newFollowEntry() *followEntry {
	return &followEntry{
		symbols: map[symbol.Symbol]struct{}{},
		eof:     false,
	}
}

func (e *followEntry) add(sym symbol.Symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *followEntry) addEOF() bool {
	if !e.eof {
		e.eof = true
		return true
	}
	return false
}

func (e *followEntry) merge(fst *firstEntry, flw *followEntry) bool {
	changed := false

	if fst != nil {
		for sym := range fst.symbols {
			added := e.add(sym)
			if added {
				changed = true
			}
		}
	}

	if flw != nil {
		for sym := range flw.symbols {
			added := e.add(sym)
			if added {
				changed = true
			}
		}
		if flw.eof {
			added := e.addEOF()
			if added {
				changed = true
			}
		}
	}

	return changed
}

// lookAheads returns the terminals of the entry, END included, in symbol order.
func (e *followEntry) lookAheads() []symbol.Symbol {
	syms := maps.Keys(e.symbols)
	if e.eof {
		syms = append(syms, symbol.SymbolEOF)
	}
	slices.SortFunc(syms, symbol.Compare)
	return syms
}

type followSet struct {
	set map[symbol.Symbol]*followEntry
}

func newFollow(prods *productionSet) *followSet {
	flw := &followSet{
		set: map[symbol.Symbol]*followEntry{},
	}
	for _, prod := range prods.getAllProductions() {
		if _, ok := flw.set[prod.lhs]; ok {
			continue
		}
		flw.set[prod.lhs] = newFollowEntry()
	}
	return flw
}

func (flw *followSet) find(sym symbol.Symbol) (*followEntry, error) {
	e, ok := flw.set[sym]
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %s", sym)
	}
	return e, nil
}

type followComContext struct {
	prods  *productionSet
	first  *firstSet
	follow *followSet
}

func newFollowComContext(prods *productionSet, first *firstSet) *followComContext {
	return &followComContext{
		prods:  prods,
		first:  first,
		follow: newFollow(prods),
	}
}

func genFollowSet(prods *productionSet, first *firstSet, symTab *symbol.SymbolTable) (*followSet, error) {
	ntsyms := symTab.Reader().NonTerminalSymbols()

	cc := newFollowComContext(prods, first)
	limit := fixpointPassLimit(symTab)
	for pass := 1; ; pass++ {
		if pass > limit {
			return nil, fmt.Errorf("FOLLOW computation did not converge within %v passes", limit)
		}

		more := false
		for _, ntsym := range ntsyms {
			e, err := cc.follow.find(ntsym)
			if err != nil {
				return nil, err
			}
			changed, err := genFollowEntry(cc, e, ntsym)
			if err != nil {
				return nil, err
			}
			if changed {
				more = true
			}
		}
		if !more {
			tracer().Debugf("FOLLOW converged after %v passes", pass)
			break
		}
	}

	return cc.follow, nil
}

// genFollowEntry adds to acc, for every occurrence `A → α ntsym β`, FIRST(β) minus ε and, when β
// can derive ε (β may be empty or a sequence of nullable symbols), FOLLOW(A).
func genFollowEntry(cc *followComContext, acc *followEntry, ntsym symbol.Symbol) (bool, error) {
	changed := false

	if ntsym.IsStart() {
		added := acc.addEOF()
		if added {
			changed = true
		}
	}
	for _, prod := range cc.prods.getAllProductions() {
		for i, sym := range prod.rhs {
			if sym != ntsym {
				continue
			}
			fst, err := cc.first.find(prod, i+1)
			if err != nil {
				return false, err
			}
			added := acc.merge(fst, nil)
			if added {
				changed = true
			}
			if fst.empty {
				flw, err := cc.follow.find(prod.lhs)
				if err != nil {
					return false, err
				}
				added := acc.merge(nil, flw)
				if added {
					changed = true
				}
			}
		}
	}

	return changed, nil
}
