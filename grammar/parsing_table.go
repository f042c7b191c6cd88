package grammar

import (
	"fmt"

	"github.com/nihei9/lrtab/grammar/symbol"
)

// ReduceGate selects the terminals on which a reduce item reduces.
type ReduceGate int

const (
	// ReduceGateUnconditional reduces on every terminal and END (LR(0)).
	ReduceGateUnconditional ReduceGate = iota

	// ReduceGateFollowSet reduces on FOLLOW of the production head (SLR(1)).
	ReduceGateFollowSet

	// ReduceGateLookahead reduces on the lookahead of the item (LR(1) and LALR(1)).
	ReduceGateLookahead
)

func (g ReduceGate) String() string {
	switch g {
	case ReduceGateUnconditional:
		return "unconditional"
	case ReduceGateFollowSet:
		return "follow-set"
	case ReduceGateLookahead:
		return "lookahead"
	}
	return fmt.Sprintf("<unknown reduce gate %d>", int(g))
}

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeAccept = ActionType("accept")
	ActionTypeError  = ActionType("error")
)

// actionEntry encodes an action in a single integer.
//
// Value    | Action
// ---------+---------------------------------
// 0        | error (no entry)
// -s       | shift to state s (s >= 1)
// 1        | accept (reduce by production 0)
// p + 1    | reduce by production p (p >= 1)
type actionEntry int

const actionEntryEmpty = actionEntry(0)

func newShiftActionEntry(state stateNum) actionEntry {
	return actionEntry(state * -1)
}

func newReduceActionEntry(prod productionNum) actionEntry {
	return actionEntry(prod) + 1
}

func (e actionEntry) isEmpty() bool {
	return e == actionEntryEmpty
}

func (e actionEntry) describe() (ActionType, stateNum, productionNum) {
	switch {
	case e == actionEntryEmpty:
		return ActionTypeError, stateNumInitial, productionNumStart
	case e < 0:
		return ActionTypeShift, stateNum(e * -1), productionNumStart
	case e == newReduceActionEntry(productionNumStart):
		return ActionTypeAccept, stateNumInitial, productionNumStart
	}
	return ActionTypeReduce, stateNumInitial, productionNum(e - 1)
}

type GoToType string

const (
	GoToTypeRegistered = GoToType("registered")
	GoToTypeError      = GoToType("error")
)

// goToEntry is a target state. 0 means no entry because no transition reaches the initial state.
type goToEntry uint

const goToEntryEmpty = goToEntry(0)

func newGoToEntry(state stateNum) goToEntry {
	return goToEntry(state)
}

func (e goToEntry) describe() (GoToType, stateNum) {
	if e == goToEntryEmpty {
		return GoToTypeError, stateNumInitial
	}
	return GoToTypeRegistered, stateNum(e)
}

type ConflictResolutionMethod int

const (
	ResolvedByShift     ConflictResolutionMethod = 1
	ResolvedByProdOrder ConflictResolutionMethod = 2
)

func (m ConflictResolutionMethod) Int() int {
	return int(m)
}

func (m ConflictResolutionMethod) String() string {
	switch m {
	case ResolvedByShift:
		return "shift"
	case ResolvedByProdOrder:
		return "production order"
	}
	return fmt.Sprintf("<unknown resolution %d>", int(m))
}

type conflict interface {
	conflict()
}

type shiftReduceConflict struct {
	state      stateNum
	sym        symbol.Symbol
	nextState  stateNum
	prodNum    productionNum
	resolvedBy ConflictResolutionMethod
}

func (c *shiftReduceConflict) conflict() {
}

type reduceReduceConflict struct {
	state      stateNum
	sym        symbol.Symbol
	prodNum1   productionNum
	prodNum2   productionNum
	resolvedBy ConflictResolutionMethod
}

func (c *reduceReduceConflict) conflict() {
}

var (
	_ conflict = &shiftReduceConflict{}
	_ conflict = &reduceReduceConflict{}
)

// Action is a decoded ACTION table entry. State is valid for a shift and Production for a reduce.
type Action struct {
	Type       ActionType
	State      int
	Production int
}

func (a Action) String() string {
	switch a.Type {
	case ActionTypeShift:
		return fmt.Sprintf("shift %v", a.State)
	case ActionTypeReduce:
		return fmt.Sprintf("reduce %v", a.Production)
	}
	return string(a.Type)
}

func newAction(ty ActionType, state stateNum, prod productionNum) Action {
	a := Action{
		Type: ty,
	}
	switch ty {
	case ActionTypeShift:
		a.State = state.Int()
	case ActionTypeReduce:
		a.Production = prod.Int()
	}
	return a
}

// Conflict is a table cell that more than one action competed for. Chosen is the action in the table.
type Conflict struct {
	State      int
	Symbol     string
	Chosen     Action
	Discarded  Action
	ResolvedBy ConflictResolutionMethod
}

func (c *Conflict) String() string {
	return fmt.Sprintf("state %v, symbol %v: %v chosen over %v (resolved by %v)", c.State, c.Symbol, c.Chosen, c.Discarded, c.ResolvedBy)
}

type ParsingTable struct {
	actionTable      []actionEntry
	goToTable        []goToEntry
	stateCount       int
	terminalCount    int
	nonTerminalCount int
	conflicts        []conflict
	symTab           *symbol.SymbolTableReader

	InitialState stateNum
}

func (t *ParsingTable) StateCount() int {
	return t.stateCount
}

func (t *ParsingTable) getAction(state stateNum, sym symbol.SymbolNum) (ActionType, stateNum, productionNum) {
	pos := state.Int()*t.terminalCount + sym.Int()
	return t.actionTable[pos].describe()
}

func (t *ParsingTable) getGoTo(state stateNum, sym symbol.SymbolNum) (GoToType, stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Int()
	return t.goToTable[pos].describe()
}

func (t *ParsingTable) readAction(row int, col int) actionEntry {
	return t.actionTable[row*t.terminalCount+col]
}

func (t *ParsingTable) writeAction(row int, col int, act actionEntry) {
	t.actionTable[row*t.terminalCount+col] = act
}

func (t *ParsingTable) writeGoTo(state stateNum, sym symbol.Symbol, nextState stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Num().Int()
	t.goToTable[pos] = newGoToEntry(nextState)
}

// Action returns the action of a state on a terminal name. `#` is END.
func (t *ParsingTable) Action(state int, terminal string) (Action, error) {
	if state < 0 || state >= t.stateCount {
		return Action{}, fmt.Errorf("state out of range: %v", state)
	}
	sym, ok := t.symTab.ToSymbol(terminal)
	if !ok || !sym.IsTerminal() {
		return Action{}, fmt.Errorf("unknown terminal: %v", terminal)
	}
	return newAction(t.getAction(stateNum(state), sym.Num())), nil
}

// GoTo returns the target of a state on a non-terminal name. The second value is false when there is
// no entry.
func (t *ParsingTable) GoTo(state int, nonTerminal string) (int, bool, error) {
	if state < 0 || state >= t.stateCount {
		return 0, false, fmt.Errorf("state out of range: %v", state)
	}
	sym, ok := t.symTab.ToSymbol(nonTerminal)
	if !ok || !sym.IsNonTerminal() {
		return 0, false, fmt.Errorf("unknown non-terminal: %v", nonTerminal)
	}
	ty, next := t.getGoTo(stateNum(state), sym.Num())
	return next.Int(), ty == GoToTypeRegistered, nil
}

// Conflicts returns the conflicts resolved while the table was built, in the order they occurred.
func (t *ParsingTable) Conflicts() []*Conflict {
	cs := make([]*Conflict, 0, len(t.conflicts))
	for _, con := range t.conflicts {
		switch c := con.(type) {
		case *shiftReduceConflict:
			cs = append(cs, &Conflict{
				State:      c.state.Int(),
				Symbol:     t.symbolText(c.sym),
				Chosen:     newAction(ActionTypeShift, c.nextState, productionNumStart),
				Discarded:  newReduceAction(c.prodNum),
				ResolvedBy: c.resolvedBy,
			})
		case *reduceReduceConflict:
			chosen, discarded := c.prodNum1, c.prodNum2
			if discarded < chosen {
				chosen, discarded = discarded, chosen
			}
			cs = append(cs, &Conflict{
				State:      c.state.Int(),
				Symbol:     t.symbolText(c.sym),
				Chosen:     newReduceAction(chosen),
				Discarded:  newReduceAction(discarded),
				ResolvedBy: c.resolvedBy,
			})
		}
	}
	return cs
}

// ConflictFree reports whether the grammar is deterministic for the variant the table was built for.
func (t *ParsingTable) ConflictFree() bool {
	return len(t.conflicts) == 0
}

func (t *ParsingTable) symbolText(sym symbol.Symbol) string {
	text, ok := t.symTab.ToText(sym)
	if !ok {
		return sym.String()
	}
	return text
}

func newReduceAction(prod productionNum) Action {
	return newAction(newReduceActionEntry(prod).describe())
}

type lrTableBuilder struct {
	automaton *Automaton
	prods     *productionSet
	follow    *followSet
	gate      ReduceGate
	symTab    *symbol.SymbolTableReader

	conflicts []conflict
}

func (b *lrTableBuilder) build() (*ParsingTable, error) {
	if b.gate == ReduceGateLookahead && b.automaton.mode != LookaheadModeCanonical {
		return nil, fmt.Errorf("the lookahead gate needs a canonical automaton")
	}
	if b.gate == ReduceGateFollowSet && b.follow == nil {
		return nil, fmt.Errorf("the follow-set gate needs FOLLOW sets")
	}

	termCount := b.symTab.TerminalCount()
	nonTermCount := b.symTab.NonTerminalCount()
	stateCount := len(b.automaton.states)
	ptab := &ParsingTable{
		actionTable:      make([]actionEntry, stateCount*termCount),
		goToTable:        make([]goToEntry, stateCount*nonTermCount),
		stateCount:       stateCount,
		terminalCount:    termCount,
		nonTerminalCount: nonTermCount,
		symTab:           b.symTab,
		InitialState:     stateNumInitial,
	}

	for _, state := range b.automaton.states {
		// All shifts of a state precede its reductions, so a shift/reduce conflict is always found
		// when the reduction is written.
		for _, sym := range state.nextSymbols() {
			nextState := state.next[sym]
			if sym.IsTerminal() {
				ptab.writeAction(state.num.Int(), sym.Num().Int(), newShiftActionEntry(nextState))
			} else {
				ptab.writeGoTo(state.num, sym, nextState)
			}
		}

		for _, item := range state.items {
			if !item.reducible {
				continue
			}
			prod, ok := b.prods.findByNum(item.prod)
			if !ok {
				return nil, fmt.Errorf("reducible production not found: %v", item.prod)
			}
			lookAheads, err := b.reduceLookAheads(prod, item)
			if err != nil {
				return nil, err
			}
			for _, a := range lookAheads {
				b.writeReduceAction(ptab, state.num, a, prod.num)
			}
		}
	}

	ptab.conflicts = b.conflicts

	if len(b.conflicts) > 0 {
		tracer().Infof("%v conflicts were resolved", len(b.conflicts))
	}

	return ptab, nil
}

// reduceLookAheads returns the terminals a reduce item reduces on, in symbol order. The augmented
// production reduces (accepts) only on END.
func (b *lrTableBuilder) reduceLookAheads(prod *production, item lrItem) ([]symbol.Symbol, error) {
	var lookAheads []symbol.Symbol
	switch b.gate {
	case ReduceGateLookahead:
		if !item.hasLookAhead() {
			return nil, fmt.Errorf("an item has no lookahead; production: %v, dot: %v", item.prod, item.dot)
		}
		lookAheads = []symbol.Symbol{item.lookAhead}
	case ReduceGateFollowSet:
		flw, err := b.follow.find(prod.lhs)
		if err != nil {
			return nil, err
		}
		lookAheads = flw.lookAheads()
	default:
		lookAheads = append([]symbol.Symbol{symbol.SymbolEOF}, b.symTab.TerminalSymbols()...)
	}

	if !prod.lhs.IsStart() {
		return lookAheads, nil
	}
	for _, a := range lookAheads {
		if a.IsEOF() {
			return []symbol.Symbol{symbol.SymbolEOF}, nil
		}
	}
	return nil, nil
}

// writeReduceAction writes a reduce action to the parsing table. When a shift/reduce conflict occurred,
// we prioritize the shift action, and when a reduce/reduce conflict we prioritize the action that reduces
// the production with higher priority. Productions defined earlier in the grammar file have a higher priority.
// Accepting is reducing the production 0, so no other action replaces it.
func (b *lrTableBuilder) writeReduceAction(tab *ParsingTable, state stateNum, sym symbol.Symbol, prod productionNum) {
	act := tab.readAction(state.Int(), sym.Num().Int())
	if act.isEmpty() {
		tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(prod))
		return
	}

	ty, s, p := act.describe()
	switch ty {
	case ActionTypeReduce, ActionTypeAccept:
		if p == prod {
			return
		}

		b.conflicts = append(b.conflicts, &reduceReduceConflict{
			state:      state,
			sym:        sym,
			prodNum1:   p,
			prodNum2:   prod,
			resolvedBy: ResolvedByProdOrder,
		})
		if prod < p {
			tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(prod))
		}
		tracer().Debugf("reduce/reduce conflict; state: %v, symbol: %v, productions: %v and %v", state, tab.symbolText(sym), p, prod)
	case ActionTypeShift:
		b.conflicts = append(b.conflicts, &shiftReduceConflict{
			state:      state,
			sym:        sym,
			nextState:  s,
			prodNum:    prod,
			resolvedBy: ResolvedByShift,
		})
		tracer().Debugf("shift/reduce conflict; state: %v, symbol: %v, shift: %v, production: %v", state, tab.symbolText(sym), s, prod)
	}
}
