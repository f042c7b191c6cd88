package grammar

import (
	"reflect"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const lrButNotLALRGrammar = `
S -> a A d | b B d | a B e | b A e
A -> c
B -> c
`

const assignmentGrammar = `
S -> L = R | R
L -> * R | id
R -> L
`

func TestParsingTable_ConflictFree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrtab.grammar")
	defer teardown()

	tests := []struct {
		caption      string
		src          string
		conflictFree map[Variant]bool
	}{
		{
			caption: "the expression grammar is SLR(1) but not LR(0)",
			src:     exprGrammar,
			conflictFree: map[Variant]bool{
				VariantLR0:   false,
				VariantSLR1:  true,
				VariantLALR1: true,
				VariantLR1:   true,
			},
		},
		{
			caption: "the assignment grammar is LALR(1) but not SLR(1)",
			src:     assignmentGrammar,
			conflictFree: map[Variant]bool{
				VariantLR0:   false,
				VariantSLR1:  false,
				VariantLALR1: true,
				VariantLR1:   true,
			},
		},
		{
			caption: "a grammar that is LR(1) but not LALR(1)",
			src:     lrButNotLALRGrammar,
			conflictFree: map[Variant]bool{
				VariantLR0:   false,
				VariantSLR1:  false,
				VariantLALR1: false,
				VariantLR1:   true,
			},
		},
		{
			caption: "an ambiguous grammar",
			src: `
E -> E + E | id
`,
			conflictFree: map[Variant]bool{
				VariantLR0:   false,
				VariantSLR1:  false,
				VariantLALR1: false,
				VariantLR1:   false,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			gram := loadTestGrammar(t, tt.src)
			for variant, want := range tt.conflictFree {
				_, tab, err := Build(gram, variant)
				if err != nil {
					t.Fatal(err)
				}
				if tab.ConflictFree() != want {
					t.Errorf("%v: unexpected result; want: %v, got: %v, conflicts: %v", variant, want, tab.ConflictFree(), tab.Conflicts())
				}
			}
		})
	}
}

func TestParsingTable_ShiftWins(t *testing.T) {
	gram := loadTestGrammar(t, `
E -> E + E | id
`)
	_, tab, err := Build(gram, VariantSLR1)
	if err != nil {
		t.Fatal(err)
	}

	cs := tab.Conflicts()
	if len(cs) == 0 {
		t.Fatal("an ambiguous grammar must cause conflicts")
	}
	for _, c := range cs {
		if c.ResolvedBy != ResolvedByShift {
			t.Errorf("unexpected resolution: %v", c)
		}
		if c.Symbol != "+" {
			t.Errorf("unexpected conflict symbol: %v", c)
		}
		if c.Chosen.Type != ActionTypeShift || c.Discarded.Type != ActionTypeReduce || c.Discarded.Production != 1 {
			t.Errorf("unexpected conflict: %v", c)
		}
		act, err := tab.Action(c.State, c.Symbol)
		if err != nil {
			t.Fatal(err)
		}
		if act != c.Chosen {
			t.Errorf("the table must hold the chosen action; want: %v, got: %v", c.Chosen, act)
		}
	}
}

func TestParsingTable_LowerProductionWins(t *testing.T) {
	gram := loadTestGrammar(t, lrButNotLALRGrammar)
	_, tab, err := Build(gram, VariantSLR1)
	if err != nil {
		t.Fatal(err)
	}

	cs := tab.Conflicts()
	if len(cs) == 0 {
		t.Fatal("SLR(1) cannot tell A → c from B → c")
	}
	for _, c := range cs {
		if c.ResolvedBy != ResolvedByProdOrder {
			t.Errorf("unexpected resolution: %v", c)
		}
		// A → c is production 5, and B → c is production 6.
		if c.Chosen.Type != ActionTypeReduce || c.Chosen.Production != 5 || c.Discarded.Production != 6 {
			t.Errorf("unexpected conflict: %v", c)
		}
	}

	_, tab, err = Build(gram, VariantLR1)
	if err != nil {
		t.Fatal(err)
	}
	if !tab.ConflictFree() {
		t.Fatalf("canonical LR(1) must separate the lookaheads: %v", tab.Conflicts())
	}
}

func TestParsingTable_Accept(t *testing.T) {
	for _, variant := range Variants {
		gram := loadTestGrammar(t, exprGrammar)
		automaton, tab, err := Build(gram, variant)
		if err != nil {
			t.Fatal(err)
		}
		genItem := newTestItemGenerator(t, gram)

		kernel := []lrItem{
			genItem("", "E'", 1, "E"),
			genItem("", "E", 1, "E", "+", "T"),
		}
		if variant.lookaheadMode() == LookaheadModeCanonical {
			kernel = []lrItem{
				genItem("#", "E'", 1, "E"),
				genItem("#", "E", 1, "E", "+", "T"),
				genItem("+", "E", 1, "E", "+", "T"),
			}
		}
		s := findStateByKernel(t, automaton, kernel...)
		act, err := tab.Action(s.num.Int(), "#")
		if err != nil {
			t.Fatal(err)
		}
		if act.Type != ActionTypeAccept {
			t.Errorf("%v: the state %v must accept on END; got: %v", variant, s.num, act)
		}
		act, err = tab.Action(s.num.Int(), "+")
		if err != nil {
			t.Fatal(err)
		}
		if act.Type != ActionTypeShift {
			t.Errorf("%v: the state %v must shift +; got: %v", variant, s.num, act)
		}
	}
}

func TestParsingTable_Entries(t *testing.T) {
	gram := loadTestGrammar(t, exprGrammar)
	_, tab, err := Build(gram, VariantLALR1)
	if err != nil {
		t.Fatal(err)
	}

	act, err := tab.Action(0, "id")
	if err != nil {
		t.Fatal(err)
	}
	if act.Type != ActionTypeShift {
		t.Errorf("state 0 must shift id; got: %v", act)
	}
	act, err = tab.Action(0, "+")
	if err != nil {
		t.Fatal(err)
	}
	if act.Type != ActionTypeError {
		t.Errorf("state 0 must not have an action on +; got: %v", act)
	}
	_, ok, err := tab.GoTo(0, "E")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("state 0 must have GOTO on E")
	}
	_, ok, err = tab.GoTo(0, "E'")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("no state has GOTO on the augmented start symbol")
	}

	_, err = tab.Action(0, "E")
	if err == nil {
		t.Error("an ACTION lookup by a non-terminal must fail")
	}
	_, err = tab.Action(tab.StateCount(), "id")
	if err == nil {
		t.Error("an ACTION lookup by an unknown state must fail")
	}
}

func TestParsingTable_ReduceGates(t *testing.T) {
	gram := loadTestGrammar(t, `
S -> A
A -> a A | ε
`)
	genItem := newTestItemGenerator(t, gram)

	tests := []struct {
		variant   Variant
		lookAhead string
		reduceOn  map[string]bool
	}{
		{
			variant:  VariantLR0,
			reduceOn: map[string]bool{"#": true, "a": false},
		},
		{
			variant:  VariantSLR1,
			reduceOn: map[string]bool{"#": true, "a": false},
		},
		{
			variant:   VariantLR1,
			lookAhead: "#",
			reduceOn:  map[string]bool{"#": true, "a": false},
		},
	}
	for _, tt := range tests {
		automaton, tab, err := Build(gram, tt.variant)
		if err != nil {
			t.Fatal(err)
		}
		s := findStateByKernel(t, automaton, genItem(tt.lookAhead, "S'", 0, "S"))
		for term, reduce := range tt.reduceOn {
			act, err := tab.Action(s.num.Int(), term)
			if err != nil {
				t.Fatal(err)
			}
			if reduce && (act.Type != ActionTypeReduce || act.Production != 3) {
				t.Errorf("%v: state %v must reduce A → ε on %v; got: %v", tt.variant, s.num, term, act)
			}
			if !reduce && act.Type != ActionTypeShift {
				t.Errorf("%v: state %v must shift %v; got: %v", tt.variant, s.num, term, act)
			}
		}
	}

	// LR(0) reduces A → ε on a too, so the shift on a conflicts with it.
	_, tab, err := Build(gram, VariantLR0)
	if err != nil {
		t.Fatal(err)
	}
	if tab.ConflictFree() {
		t.Fatal("LR(0) must report a shift/reduce conflict")
	}
}

func TestParsingTable_Idempotent(t *testing.T) {
	for _, variant := range Variants {
		gram := loadTestGrammar(t, assignmentGrammar)
		automaton, tab1, err := Build(gram, variant)
		if err != nil {
			t.Fatal(err)
		}

		var follow *followSet
		if variant.reduceGate() == ReduceGateFollowSet {
			fst, err := genFirstSet(gram.productionSet, gram.symbolTable)
			if err != nil {
				t.Fatal(err)
			}
			follow, err = genFollowSet(gram.productionSet, fst, gram.symbolTable)
			if err != nil {
				t.Fatal(err)
			}
		}
		tab2, err := buildTable(gram, automaton, follow, variant.reduceGate())
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(tab1.actionTable, tab2.actionTable) {
			t.Errorf("%v: ACTION tables differ", variant)
		}
		if !reflect.DeepEqual(tab1.goToTable, tab2.goToTable) {
			t.Errorf("%v: GOTO tables differ", variant)
		}
		if !reflect.DeepEqual(tab1.Conflicts(), tab2.Conflicts()) {
			t.Errorf("%v: conflicts differ", variant)
		}
	}
}

func TestActionEntry(t *testing.T) {
	tests := []struct {
		entry actionEntry
		ty    ActionType
		state stateNum
		prod  productionNum
	}{
		{entry: actionEntryEmpty, ty: ActionTypeError},
		{entry: newShiftActionEntry(3), ty: ActionTypeShift, state: 3},
		{entry: newReduceActionEntry(productionNumStart), ty: ActionTypeAccept},
		{entry: newReduceActionEntry(2), ty: ActionTypeReduce, prod: 2},
	}
	for _, tt := range tests {
		ty, state, prod := tt.entry.describe()
		if ty != tt.ty || (ty == ActionTypeShift && state != tt.state) || (ty == ActionTypeReduce && prod != tt.prod) {
			t.Errorf("unexpected action; entry: %v, got: %v %v %v", tt.entry, ty, state, prod)
		}
	}
}
