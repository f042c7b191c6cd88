package grammar

import (
	"fmt"
	"strings"

	"github.com/nihei9/lrtab/grammar/symbol"
	spec "github.com/nihei9/lrtab/spec/grammar"
	"golang.org/x/exp/slices"
)

// Variant is a kind of parsing table.
type Variant string

const (
	VariantLR0   = Variant("lr0")
	VariantSLR1  = Variant("slr1")
	VariantLR1   = Variant("lr1")
	VariantLALR1 = Variant("lalr1")
)

// Variants lists the supported variants from the smallest grammar class to the largest one.
var Variants = []Variant{
	VariantLR0,
	VariantSLR1,
	VariantLALR1,
	VariantLR1,
}

// ParseVariant reads a variant name case-insensitively. `clr1` is another name of `lr1`.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(s))); v {
	case VariantLR0, VariantSLR1, VariantLR1, VariantLALR1:
		return v, nil
	case "clr1":
		return VariantLR1, nil
	}
	return "", fmt.Errorf("unknown variant: %v", s)
}

func (v Variant) String() string {
	return string(v)
}

func (v Variant) lookaheadMode() LookaheadMode {
	switch v {
	case VariantLR1, VariantLALR1:
		return LookaheadModeCanonical
	}
	return LookaheadModeNone
}

func (v Variant) reduceGate() ReduceGate {
	switch v {
	case VariantSLR1:
		return ReduceGateFollowSet
	case VariantLR1, VariantLALR1:
		return ReduceGateLookahead
	}
	return ReduceGateUnconditional
}

const DefaultMaxStates = 10000

type buildConfig struct {
	maxStates int
	report    bool
}

type BuildOption func(config *buildConfig) error

// MaxStates bounds the number of states of an automaton. Building an automaton needing more states
// fails with ErrStateExplosion.
func MaxStates(n int) BuildOption {
	return func(config *buildConfig) error {
		if n <= 0 {
			return fmt.Errorf("the maximum number of states must be positive: %v", n)
		}
		config.maxStates = n
		return nil
	}
}

// EnableReporting makes Compile generate a report.
func EnableReporting() BuildOption {
	return func(config *buildConfig) error {
		config.report = true
		return nil
	}
}

func newBuildConfig(opts []BuildOption) (*buildConfig, error) {
	config := &buildConfig{
		maxStates: DefaultMaxStates,
	}
	for _, opt := range opts {
		err := opt(config)
		if err != nil {
			return nil, err
		}
	}
	return config, nil
}

// Build constructs the automaton and the parsing table of a variant. Building is a pure function of
// the grammar and the variant.
func Build(gram *Grammar, variant Variant, opts ...BuildOption) (*Automaton, *ParsingTable, error) {
	variant, err := ParseVariant(variant.String())
	if err != nil {
		return nil, nil, err
	}
	config, err := newBuildConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	return build(gram, variant, config)
}

// build expects `variant` to be a canonical name returned by ParseVariant.
func build(gram *Grammar, variant Variant, config *buildConfig) (*Automaton, *ParsingTable, error) {
	first, err := genFirstSet(gram.productionSet, gram.symbolTable)
	if err != nil {
		return nil, nil, err
	}

	var follow *followSet
	if variant.reduceGate() == ReduceGateFollowSet {
		follow, err = genFollowSet(gram.productionSet, first, gram.symbolTable)
		if err != nil {
			return nil, nil, err
		}
	}

	automaton, err := genAutomaton(gram.productionSet, first, variant.lookaheadMode(), config.maxStates)
	if err != nil {
		return nil, nil, err
	}
	if variant == VariantLALR1 {
		automaton, err = genLALR1Automaton(automaton)
		if err != nil {
			return nil, nil, err
		}
	}

	tab, err := buildTable(gram, automaton, follow, variant.reduceGate())
	if err != nil {
		return nil, nil, err
	}

	tracer().Infof("%v %v: %v states, %v conflicts", gram.name, variant, automaton.StateCount(), len(tab.conflicts))

	return automaton, tab, nil
}

func buildTable(gram *Grammar, automaton *Automaton, follow *followSet, gate ReduceGate) (*ParsingTable, error) {
	b := &lrTableBuilder{
		automaton: automaton,
		prods:     gram.productionSet,
		follow:    follow,
		gate:      gate,
		symTab:    gram.symbolTable.Reader(),
	}
	return b.build()
}

// Compile builds a parsing table and converts it into the serializable form. The report is nil
// unless EnableReporting is passed.
func Compile(gram *Grammar, variant Variant, opts ...BuildOption) (*spec.CompiledGrammar, *spec.Report, error) {
	variant, err := ParseVariant(variant.String())
	if err != nil {
		return nil, nil, err
	}
	config, err := newBuildConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	automaton, tab, err := build(gram, variant, config)
	if err != nil {
		return nil, nil, err
	}

	var report *spec.Report
	if config.report {
		report, err = genReport(gram, variant, automaton, tab)
		if err != nil {
			return nil, nil, err
		}
	}

	return &spec.CompiledGrammar{
		Name:         gram.name,
		Variant:      variant.String(),
		ParsingTable: genCompiledTable(gram, tab),
	}, report, nil
}

func genCompiledTable(gram *Grammar, tab *ParsingTable) *spec.ParsingTable {
	action := make([]int, len(tab.actionTable))
	for i, e := range tab.actionTable {
		action[i] = int(e)
	}
	goTo := make([]int, len(tab.goToTable))
	for i, e := range tab.goToTable {
		goTo[i] = int(e)
	}

	ps := gram.productionSet.getAllProductions()
	lhsSyms := make([]int, len(ps))
	altSymCounts := make([]int, len(ps))
	prodTexts := make([]string, len(ps))
	for _, p := range ps {
		lhsSyms[p.num] = p.lhs.Num().Int()
		altSymCounts[p.num] = p.rhsLen
		prodTexts[p.num] = gram.productionText(p)
	}

	r := gram.symbolTable.Reader()
	return &spec.ParsingTable{
		Action:                  action,
		GoTo:                    goTo,
		StateCount:              tab.stateCount,
		InitialState:            tab.InitialState.Int(),
		StartProduction:         productionNumStart.Int(),
		LHSSymbols:              lhsSyms,
		AlternativeSymbolCounts: altSymCounts,
		Productions:             prodTexts,
		Terminals:               slices.Clone(r.TerminalTexts()),
		TerminalCount:           tab.terminalCount,
		NonTerminals:            slices.Clone(r.NonTerminalTexts()),
		NonTerminalCount:        tab.nonTerminalCount,
		EOFSymbol:               symbol.SymbolEOF.Num().Int(),
	}
}
