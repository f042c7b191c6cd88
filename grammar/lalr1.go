package grammar

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// genLALR1Automaton merges the states of a canonical LR(1) automaton having the same core. A merged
// state holds the items of all its members, so the lookaheads of an item are the union of the
// lookaheads the members have. Merged states are numbered in the order their first member was found.
func genLALR1Automaton(lr1 *Automaton) (*Automaton, error) {
	if lr1.mode != LookaheadModeCanonical {
		return nil, fmt.Errorf("LALR(1) states can be merged only from a canonical LR(1) automaton; mode: %v", lr1.mode)
	}
	if lr1.merged {
		return nil, fmt.Errorf("the automaton is already merged")
	}

	groups := linkedhashmap.New()
	for _, state := range lr1.states {
		key, err := structhash.Hash(state.core(), 1)
		if err != nil {
			return nil, fmt.Errorf("failed to hash the core of state %v: %w", state.num, err)
		}
		var members []*lrState
		if v, ok := groups.Get(key); ok {
			members = v.([]*lrState)
		}
		groups.Put(key, append(members, state))
	}

	rep := make([]stateNum, len(lr1.states))
	states := make([]*lrState, 0, groups.Size())
	for i, v := range groups.Values() {
		num := stateNum(i)
		members := v.([]*lrState)
		var items []lrItem
		for _, m := range members {
			rep[m.num] = num
			items = append(items, m.items...)
		}
		states = append(states, newLRState(num, items))
	}

	for _, state := range lr1.states {
		merged := states[rep[state.num]]
		for _, sym := range state.nextSymbols() {
			to := rep[state.next[sym]]
			if prev, ok := merged.next[sym]; ok && prev != to {
				return nil, fmt.Errorf("merged state %v has two transitions on %v: %v and %v", merged.num, sym, prev, to)
			}
			merged.next[sym] = to
		}
	}

	tracer().Debugf("LALR(1) merge: %v canonical states into %v states", len(lr1.states), len(states))

	return &Automaton{
		mode:   LookaheadModeCanonical,
		states: states,
		merged: true,
	}, nil
}
