package grammar

import (
	"encoding/json"
	"io"
)

type Terminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type NonTerminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Production's RHS holds terminal numbers as positive values and non-terminal numbers as negative values.
type Production struct {
	Number int   `json:"number"`
	LHS    int   `json:"lhs"`
	RHS    []int `json:"rhs"`
}

// Item is an item with its lookaheads (terminal numbers). LookAhead is empty for LR(0) items.
type Item struct {
	Production int   `json:"production"`
	Dot        int   `json:"dot"`
	LookAhead  []int `json:"look_ahead"`
	Kernel     bool  `json:"kernel"`
}

type Transition struct {
	Symbol int `json:"symbol"`
	State  int `json:"state"`
}

type Reduce struct {
	LookAhead  []int `json:"look_ahead"`
	Production int   `json:"production"`
}

type SRConflict struct {
	Symbol     int `json:"symbol"`
	State      int `json:"state"`
	Production int `json:"production"`
	ResolvedBy int `json:"resolved_by"`
}

type RRConflict struct {
	Symbol            int `json:"symbol"`
	Production1       int `json:"production_1"`
	Production2       int `json:"production_2"`
	AdoptedProduction int `json:"adopted_production"`
	ResolvedBy        int `json:"resolved_by"`
}

type State struct {
	Number     int           `json:"number"`
	Items      []*Item       `json:"items"`
	Shift      []*Transition `json:"shift"`
	Reduce     []*Reduce     `json:"reduce"`
	Accept     bool          `json:"accept"`
	GoTo       []*Transition `json:"goto"`
	SRConflict []*SRConflict `json:"sr_conflict"`
	RRConflict []*RRConflict `json:"rr_conflict"`
}

// Report describes a grammar and the states of its automaton. Terminals and NonTerminals are indexed
// by symbol number, and index 0 is nil.
type Report struct {
	Name         string         `json:"name"`
	Variant      string         `json:"variant"`
	Terminals    []*Terminal    `json:"terminals"`
	NonTerminals []*NonTerminal `json:"non_terminals"`
	Productions  []*Production  `json:"productions"`
	States       []*State       `json:"states"`
}

func (r *Report) ConflictCount() (sr int, rr int) {
	for _, s := range r.States {
		sr += len(s.SRConflict)
		rr += len(s.RRConflict)
	}
	return sr, rr
}

func ReadReport(r io.Reader) (*Report, error) {
	var report Report
	err := json.NewDecoder(r).Decode(&report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
