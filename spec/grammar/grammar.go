package grammar

import (
	"encoding/json"
	"fmt"
	"io"
)

// CompiledGrammar is the serialized form of a parsing table. The driver needs nothing else to parse.
type CompiledGrammar struct {
	Name         string        `json:"name"`
	Variant      string        `json:"variant"`
	ParsingTable *ParsingTable `json:"parsing_table"`
}

// ParsingTable holds the ACTION and GOTO tables in row-major order.
//
// An ACTION entry is one of the following values.
//
//   - 0: no entry (syntax error)
//   - -s: shift and go to state s
//   - 1: accept
//   - p + 1: reduce by production p
//
// A GOTO entry is a state number, and 0 means no entry.
type ParsingTable struct {
	Action                  []int    `json:"action"`
	GoTo                    []int    `json:"goto"`
	StateCount              int      `json:"state_count"`
	InitialState            int      `json:"initial_state"`
	StartProduction         int      `json:"start_production"`
	LHSSymbols              []int    `json:"lhs_symbols"`
	AlternativeSymbolCounts []int    `json:"alternative_symbol_counts"`
	Productions             []string `json:"productions"`
	Terminals               []string `json:"terminals"`
	TerminalCount           int      `json:"terminal_count"`
	NonTerminals            []string `json:"non_terminals"`
	NonTerminalCount        int      `json:"non_terminal_count"`
	EOFSymbol               int      `json:"eof_symbol"`
}

// Validate checks that the table dimensions agree with each other and that every entry refers to an existing
// state, production, or symbol. A parser trusts a table passing it.
func (t *ParsingTable) Validate() error {
	if t.StateCount <= 0 {
		return fmt.Errorf("a parsing table needs at least one state")
	}
	if len(t.Action) != t.StateCount*t.TerminalCount {
		return fmt.Errorf("the ACTION table has %v entries; want: %v", len(t.Action), t.StateCount*t.TerminalCount)
	}
	if len(t.GoTo) != t.StateCount*t.NonTerminalCount {
		return fmt.Errorf("the GOTO table has %v entries; want: %v", len(t.GoTo), t.StateCount*t.NonTerminalCount)
	}
	if len(t.Terminals) != t.TerminalCount {
		return fmt.Errorf("%v terminal names for %v terminals", len(t.Terminals), t.TerminalCount)
	}
	if len(t.NonTerminals) != t.NonTerminalCount {
		return fmt.Errorf("%v non-terminal names for %v non-terminals", len(t.NonTerminals), t.NonTerminalCount)
	}
	if len(t.LHSSymbols) != len(t.AlternativeSymbolCounts) {
		return fmt.Errorf("%v LHS symbols for %v productions", len(t.LHSSymbols), len(t.AlternativeSymbolCounts))
	}
	if len(t.Productions) != len(t.LHSSymbols) {
		return fmt.Errorf("%v production texts for %v productions", len(t.Productions), len(t.LHSSymbols))
	}
	if t.EOFSymbol <= 0 || t.EOFSymbol >= t.TerminalCount {
		return fmt.Errorf("invalid EOF symbol: %v", t.EOFSymbol)
	}
	if t.InitialState < 0 || t.InitialState >= t.StateCount {
		return fmt.Errorf("invalid initial state: %v", t.InitialState)
	}
	if t.StartProduction < 0 || t.StartProduction >= len(t.LHSSymbols) {
		return fmt.Errorf("invalid start production: %v", t.StartProduction)
	}
	for prod, lhs := range t.LHSSymbols {
		if lhs <= 0 || lhs >= t.NonTerminalCount {
			return fmt.Errorf("production %v: invalid LHS symbol: %v", prod, lhs)
		}
		if t.AlternativeSymbolCounts[prod] < 0 {
			return fmt.Errorf("production %v: invalid alternative symbol count: %v", prod, t.AlternativeSymbolCounts[prod])
		}
	}
	for i, act := range t.Action {
		switch {
		case act < 0 && -act >= t.StateCount:
			return fmt.Errorf("ACTION[%v, %v]: shift to an unknown state: %v", i/t.TerminalCount, i%t.TerminalCount, -act)
		case act > 0 && act-1 >= len(t.LHSSymbols):
			return fmt.Errorf("ACTION[%v, %v]: reduce by an unknown production: %v", i/t.TerminalCount, i%t.TerminalCount, act-1)
		}
	}
	for i, next := range t.GoTo {
		if next < 0 || next >= t.StateCount {
			return fmt.Errorf("GOTO[%v, %v]: unknown state: %v", i/t.NonTerminalCount, i%t.NonTerminalCount, next)
		}
	}
	return nil
}

func ReadCompiledGrammar(r io.Reader) (*CompiledGrammar, error) {
	var cg CompiledGrammar
	err := json.NewDecoder(r).Decode(&cg)
	if err != nil {
		return nil, err
	}
	if cg.ParsingTable == nil {
		return nil, fmt.Errorf("the compiled grammar has no parsing table")
	}
	err = cg.ParsingTable.Validate()
	if err != nil {
		return nil, err
	}
	return &cg, nil
}
