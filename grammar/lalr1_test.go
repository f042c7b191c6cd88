package grammar

import (
	"fmt"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestGenLALR1Automaton(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrtab.grammar")
	defer teardown()

	gram := loadTestGrammar(t, ccGrammar)
	lr1 := genTestAutomaton(t, gram, LookaheadModeCanonical)
	lalr1, err := genLALR1Automaton(lr1)
	if err != nil {
		t.Fatal(err)
	}
	genItem := newTestItemGenerator(t, gram)

	if !lalr1.Merged() {
		t.Fatal("a merged automaton must be marked")
	}
	if lalr1.StateCount() != 7 {
		t.Fatalf("unexpected state count; want: 7, got: %v", lalr1.StateCount())
	}

	// C → d・ appears with lookaheads c and d in one state and # in another. The merged state has all of them.
	s := findStateByKernel(t, lalr1,
		genItem("#", "C", 1, "d"),
		genItem("c", "C", 1, "d"),
		genItem("d", "C", 1, "d"),
	)
	testItems(t, s.items, canonicalizeItems([]lrItem{
		genItem("#", "C", 1, "d"),
		genItem("c", "C", 1, "d"),
		genItem("d", "C", 1, "d"),
	}))

	if lalr1.states[stateNumInitial].id != lr1.states[stateNumInitial].id {
		t.Fatal("the initial state must not be merged with other states")
	}
}

// TestGenLALR1Automaton_CorePreserved checks that each canonical state maps to a merged state with the same
// core and that the transitions of merged states agree with those of their members.
func TestGenLALR1Automaton_CorePreserved(t *testing.T) {
	srcs := []string{
		ccGrammar,
		exprGrammar,
		`
S -> L = R | R
L -> * R | id
R -> L
`,
		`
S -> a A d | b B d | a B e | b A e
A -> c
B -> c
`,
	}
	for _, src := range srcs {
		gram := loadTestGrammar(t, src)
		lr1 := genTestAutomaton(t, gram, LookaheadModeCanonical)
		lalr1, err := genLALR1Automaton(lr1)
		if err != nil {
			t.Fatal(err)
		}

		coreKey := func(s *lrState) string {
			var key string
			for _, c := range s.core() {
				key += fmt.Sprintf("%v.%v;", c.Prod, c.Dot)
			}
			return key
		}
		merged := map[string]*lrState{}
		for _, s := range lalr1.states {
			k := coreKey(s)
			if _, ok := merged[k]; ok {
				t.Fatalf("two merged states have the same core: %v", k)
			}
			merged[k] = s
		}

		for _, s := range lr1.states {
			m, ok := merged[coreKey(s)]
			if !ok {
				t.Fatalf("no merged state has the core of state %v", s.num)
			}
			for sym, to := range s.next {
				target, ok := merged[coreKey(lr1.states[to])]
				if !ok {
					t.Fatalf("no merged state has the core of state %v", to)
				}
				if m.next[sym] != target.num {
					t.Fatalf("merged state %v goes to %v on %v; want: %v", m.num, m.next[sym], sym, target.num)
				}
			}
			for _, item := range s.items {
				found := false
				for _, mItem := range m.items {
					if mItem == item {
						found = true
						break
					}
				}
				if !found {
					t.Fatalf("merged state %v lacks an item of state %v: %+v", m.num, s.num, item)
				}
			}
		}

		lr0 := genTestAutomaton(t, gram, LookaheadModeNone)
		if lalr1.StateCount() != lr0.StateCount() {
			t.Errorf("an LALR(1) automaton must have as many states as the LR(0) automaton; LALR(1): %v, LR(0): %v", lalr1.StateCount(), lr0.StateCount())
		}
	}
}

func TestGenLALR1Automaton_RejectsLR0(t *testing.T) {
	gram := loadTestGrammar(t, ccGrammar)
	lr0 := genTestAutomaton(t, gram, LookaheadModeNone)
	_, err := genLALR1Automaton(lr0)
	if err == nil {
		t.Fatal("merging an LR(0) automaton must fail")
	}
}
