package grammar

import (
	"fmt"

	"github.com/nihei9/lrtab/grammar/symbol"
	spec "github.com/nihei9/lrtab/spec/grammar"
	"golang.org/x/exp/slices"
)

func genReport(gram *Grammar, variant Variant, automaton *Automaton, tab *ParsingTable) (*spec.Report, error) {
	symTab := gram.symbolTable.Reader()

	var terms []*spec.Terminal
	{
		termSyms := append([]symbol.Symbol{symbol.SymbolEOF}, symTab.TerminalSymbols()...)
		terms = make([]*spec.Terminal, symTab.TerminalCount())
		for _, sym := range termSyms {
			name, ok := symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate terminals: symbol not found: %v", sym)
			}
			terms[sym.Num()] = &spec.Terminal{
				Number: sym.Num().Int(),
				Name:   name,
			}
		}
	}

	var nonTerms []*spec.NonTerminal
	{
		nonTermSyms := symTab.NonTerminalSymbols()
		nonTerms = make([]*spec.NonTerminal, symTab.NonTerminalCount())
		for _, sym := range nonTermSyms {
			name, ok := symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate non-terminals: symbol not found: %v", sym)
			}
			nonTerms[sym.Num()] = &spec.NonTerminal{
				Number: sym.Num().Int(),
				Name:   name,
			}
		}
	}

	var prods []*spec.Production
	{
		ps := gram.productionSet.getAllProductions()
		prods = make([]*spec.Production, len(ps))
		for _, p := range ps {
			rhs := make([]int, len(p.rhs))
			for i, e := range p.rhs {
				if e.IsTerminal() {
					rhs[i] = e.Num().Int()
				} else {
					rhs[i] = e.Num().Int() * -1
				}
			}
			prods[p.num.Int()] = &spec.Production{
				Number: p.num.Int(),
				LHS:    p.lhs.Num().Int(),
				RHS:    rhs,
			}
		}
	}

	srConflicts := map[stateNum][]*shiftReduceConflict{}
	rrConflicts := map[stateNum][]*reduceReduceConflict{}
	for _, con := range tab.conflicts {
		switch c := con.(type) {
		case *shiftReduceConflict:
			srConflicts[c.state] = append(srConflicts[c.state], c)
		case *reduceReduceConflict:
			rrConflicts[c.state] = append(rrConflicts[c.state], c)
		}
	}

	states := make([]*spec.State, len(automaton.states))
	for _, s := range automaton.states {
		state := &spec.State{
			Number: s.num.Int(),
			Items:  reportItems(s),
		}

	TERMINALS_LOOP:
		for _, t := range append([]symbol.Symbol{symbol.SymbolEOF}, symTab.TerminalSymbols()...) {
			act, next, prod := tab.getAction(s.num, t.Num())
			switch act {
			case ActionTypeShift:
				state.Shift = append(state.Shift, &spec.Transition{
					Symbol: t.Num().Int(),
					State:  next.Int(),
				})
			case ActionTypeAccept:
				state.Accept = true
			case ActionTypeReduce:
				for _, r := range state.Reduce {
					if r.Production == prod.Int() {
						r.LookAhead = append(r.LookAhead, t.Num().Int())
						continue TERMINALS_LOOP
					}
				}
				state.Reduce = append(state.Reduce, &spec.Reduce{
					LookAhead:  []int{t.Num().Int()},
					Production: prod.Int(),
				})
			}
		}
		slices.SortFunc(state.Reduce, func(a, b *spec.Reduce) int {
			return a.Production - b.Production
		})

		for _, n := range symTab.NonTerminalSymbols() {
			ty, next := tab.getGoTo(s.num, n.Num())
			if ty == GoToTypeRegistered {
				state.GoTo = append(state.GoTo, &spec.Transition{
					Symbol: n.Num().Int(),
					State:  next.Int(),
				})
			}
		}

		for _, c := range srConflicts[s.num] {
			state.SRConflict = append(state.SRConflict, &spec.SRConflict{
				Symbol:     c.sym.Num().Int(),
				State:      c.nextState.Int(),
				Production: c.prodNum.Int(),
				ResolvedBy: c.resolvedBy.Int(),
			})
		}
		for _, c := range rrConflicts[s.num] {
			_, _, p := tab.getAction(s.num, c.sym.Num())
			state.RRConflict = append(state.RRConflict, &spec.RRConflict{
				Symbol:            c.sym.Num().Int(),
				Production1:       c.prodNum1.Int(),
				Production2:       c.prodNum2.Int(),
				AdoptedProduction: p.Int(),
				ResolvedBy:        c.resolvedBy.Int(),
			})
		}

		states[s.num.Int()] = state
	}

	return &spec.Report{
		Name:         gram.name,
		Variant:      variant.String(),
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
	}, nil
}

// reportItems folds the items of a state having the same core into one item with a list of lookaheads.
func reportItems(s *lrState) []*spec.Item {
	var items []*spec.Item
	for _, item := range s.items {
		var last *spec.Item
		if len(items) > 0 {
			last = items[len(items)-1]
		}
		if last == nil || last.Production != item.prod.Int() || last.Dot != item.dot {
			last = &spec.Item{
				Production: item.prod.Int(),
				Dot:        item.dot,
				Kernel:     item.kernel,
			}
			items = append(items, last)
		}
		if item.hasLookAhead() {
			last.LookAhead = append(last.LookAhead, item.lookAhead.Num().Int())
		}
	}
	return items
}
