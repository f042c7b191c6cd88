package grammar

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/nihei9/lrtab/grammar/symbol"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// LookaheadMode selects whether items carry a lookahead terminal.
type LookaheadMode int

const (
	// LookaheadModeNone builds LR(0) items. LR(0) and SLR(1) tables use this automaton.
	LookaheadModeNone LookaheadMode = iota

	// LookaheadModeCanonical builds canonical LR(1) items, one item per lookahead terminal.
	LookaheadModeCanonical
)

func (m LookaheadMode) String() string {
	switch m {
	case LookaheadModeNone:
		return "none"
	case LookaheadModeCanonical:
		return "canonical"
	}
	return fmt.Sprintf("<unknown lookahead mode %d>", int(m))
}

// Automaton is a deterministic automaton over item sets. State 0 is the initial state, and the other
// states are numbered in breadth-first discovery order.
type Automaton struct {
	mode   LookaheadMode
	states []*lrState
	merged bool
}

func (a *Automaton) StateCount() int {
	return len(a.states)
}

func (a *Automaton) Mode() LookaheadMode {
	return a.mode
}

// Merged reports whether the automaton is the result of merging canonical LR(1) states by core.
func (a *Automaton) Merged() bool {
	return a.merged
}

// transitionCount returns the number of (state, symbol) pairs having a transition.
func (a *Automaton) transitionCount() int {
	n := 0
	for _, s := range a.states {
		n += len(s.next)
	}
	return n
}

type automatonBuilder struct {
	prods     *productionSet
	first     *firstSet
	mode      LookaheadMode
	maxStates int
}

func genAutomaton(prods *productionSet, first *firstSet, mode LookaheadMode, maxStates int) (*Automaton, error) {
	b := &automatonBuilder{
		prods:     prods,
		first:     first,
		mode:      mode,
		maxStates: maxStates,
	}
	return b.build()
}

func (b *automatonBuilder) build() (*Automaton, error) {
	augProd, ok := b.prods.findByNum(productionNumStart)
	if !ok {
		return nil, fmt.Errorf("the augmented production was not found")
	}
	lookAhead := symbol.SymbolNil
	if b.mode == LookaheadModeCanonical {
		lookAhead = symbol.SymbolEOF
	}
	iniItem, err := newLRItem(augProd, 0, lookAhead)
	if err != nil {
		return nil, err
	}
	iniItems, err := b.closure([]lrItem{iniItem})
	if err != nil {
		return nil, err
	}

	states := []*lrState{newLRState(stateNumInitial, iniItems)}
	id2Num := map[stateID]stateNum{
		states[0].id: stateNumInitial,
	}

	// states grows while it is scanned, so the scan is a breadth-first traversal.
	for i := 0; i < len(states); i++ {
		state := states[i]
		for _, sym := range state.dottedSymbols() {
			items, err := b.goTo(state, sym)
			if err != nil {
				return nil, err
			}
			items = canonicalizeItems(items)
			id := genStateID(items)
			num, ok := id2Num[id]
			if !ok {
				if b.maxStates > 0 && len(states) >= b.maxStates {
					return nil, fmt.Errorf("%w: the automaton needs more than %v states", ErrStateExplosion, b.maxStates)
				}
				num = stateNum(len(states))
				next := newLRState(num, items)
				states = append(states, next)
				id2Num[id] = num
			}
			state.next[sym] = num
		}
	}

	a := &Automaton{
		mode:   b.mode,
		states: states,
	}
	tracer().Debugf("%v automaton: %v states, %v transitions", b.mode, a.StateCount(), a.transitionCount())
	return a, nil
}

// closure expands kernel items until every non-terminal at a dot has its productions as items.
func (b *automatonBuilder) closure(kernel []lrItem) ([]lrItem, error) {
	items := make([]lrItem, 0, len(kernel))
	known := map[lrItem]struct{}{}
	var unchecked []lrItem
	for _, item := range kernel {
		if _, ok := known[item]; ok {
			continue
		}
		known[item] = struct{}{}
		items = append(items, item)
		unchecked = append(unchecked, item)
	}

	for len(unchecked) > 0 {
		var nextUnchecked []lrItem
		for _, item := range unchecked {
			if !item.dottedSymbol.IsNonTerminal() {
				continue
			}

			lookAheads, err := b.closureLookAheads(item)
			if err != nil {
				return nil, err
			}

			ps, ok := b.prods.findByLHS(item.dottedSymbol)
			if !ok {
				return nil, fmt.Errorf("productions were not found; LHS: %v", item.dottedSymbol)
			}
			for _, prod := range ps {
				for _, a := range lookAheads {
					newItem, err := newLRItem(prod, 0, a)
					if err != nil {
						return nil, err
					}
					if _, ok := known[newItem]; ok {
						continue
					}
					known[newItem] = struct{}{}
					items = append(items, newItem)
					nextUnchecked = append(nextUnchecked, newItem)
				}
			}
		}
		unchecked = nextUnchecked
	}

	return items, nil
}

// closureLookAheads returns the lookaheads of the items that the dotted non-terminal of item adds.
// For an item [A → α・B β, a], they are FIRST(β a). ε never becomes a lookahead.
func (b *automatonBuilder) closureLookAheads(item lrItem) ([]symbol.Symbol, error) {
	if b.mode == LookaheadModeNone {
		return []symbol.Symbol{symbol.SymbolNil}, nil
	}

	prod, ok := b.prods.findByNum(item.prod)
	if !ok {
		return nil, fmt.Errorf("production not found: %v", item.prod)
	}
	fst, err := b.first.find(prod, item.dot+1)
	if err != nil {
		return nil, err
	}
	lookAheads := fst.sortedSymbols()
	if fst.empty {
		lookAheads = append(lookAheads, item.lookAhead)
	}
	return lookAheads, nil
}

// goTo returns the items reached from state by moving the dot over sym. The result is empty when no
// item of state has sym at its dot.
func (b *automatonBuilder) goTo(state *lrState, sym symbol.Symbol) ([]lrItem, error) {
	var kernel []lrItem
	for _, item := range state.items {
		if item.dottedSymbol != sym {
			continue
		}
		prod, ok := b.prods.findByNum(item.prod)
		if !ok {
			return nil, fmt.Errorf("production not found: %v", item.prod)
		}
		next, err := newLRItem(prod, item.dot+1, item.lookAhead)
		if err != nil {
			return nil, err
		}
		kernel = append(kernel, next)
	}
	if len(kernel) == 0 {
		return nil, nil
	}
	return b.closure(kernel)
}

// dottedSymbols returns the symbols having a transition from the state, terminals first.
func (s *lrState) dottedSymbols() []symbol.Symbol {
	set := treeset.NewWith(symbol.Comparator)
	for _, item := range s.items {
		if item.dottedSymbol.IsNil() {
			continue
		}
		set.Add(item.dottedSymbol)
	}
	syms := make([]symbol.Symbol, 0, set.Size())
	for _, v := range set.Values() {
		syms = append(syms, v.(symbol.Symbol))
	}
	return syms
}

// nextSymbols returns the symbols of the recorded transitions in symbol order.
func (s *lrState) nextSymbols() []symbol.Symbol {
	syms := maps.Keys(s.next)
	slices.SortFunc(syms, symbol.Compare)
	return syms
}
