// Package symbol numbers the symbols of a grammar. Terminals and non-terminals are numbered separately from 1,
// and the numbers double as the column indexes of the ACTION and GOTO tables.
package symbol

import (
	"fmt"

	"github.com/emirpasic/gods/utils"
)

// SymbolNum is the number of a symbol within its kind.
type SymbolNum uint16

func (n SymbolNum) Int() int {
	return int(n)
}

// Symbol packs a kind flag and a number. The most significant bit is set for terminals, and the number 0 is
// reserved for SymbolNil.
type Symbol uint16

const (
	terminalFlag = uint16(0x8000)
	numberBits   = uint16(0x7fff)

	// The number 1 of each kind is taken by the augmented start symbol and END.
	startNum = SymbolNum(1)
	eofNum   = SymbolNum(1)

	symbolNumMax = SymbolNum(numberBits)
)

const (
	SymbolNil   = Symbol(0)
	SymbolStart = Symbol(startNum)
	SymbolEOF   = Symbol(terminalFlag | uint16(eofNum))

	// SymbolNameEOF is the spelling of END. It never appears in a production body.
	SymbolNameEOF = "#"
)

func (s Symbol) String() string {
	switch {
	case s.IsNil():
		return "nil"
	case s == SymbolStart:
		return "S'"
	case s == SymbolEOF:
		return SymbolNameEOF
	case s.IsTerminal():
		return fmt.Sprintf("t%v", s.Num())
	}
	return fmt.Sprintf("n%v", s.Num())
}

func (s Symbol) Num() SymbolNum {
	return SymbolNum(uint16(s) & numberBits)
}

// Byte returns the big-endian form of a symbol. Production and item IDs are hashes over it.
func (s Symbol) Byte() []byte {
	return []byte{byte(uint16(s) >> 8), byte(s)}
}

func (s Symbol) IsNil() bool {
	return s.Num() == 0
}

func (s Symbol) IsStart() bool {
	return s == SymbolStart
}

func (s Symbol) IsEOF() bool {
	return s == SymbolEOF
}

func (s Symbol) IsTerminal() bool {
	return !s.IsNil() && uint16(s)&terminalFlag != 0
}

func (s Symbol) IsNonTerminal() bool {
	return !s.IsNil() && uint16(s)&terminalFlag == 0
}

// Compare orders symbols the way the automaton visits them: terminals first, then non-terminals,
// each in ascending number order. Because the builder registers names in sorted order, this is
// also the sorted name order within each kind.
func Compare(a, b Symbol) int {
	if a.IsTerminal() != b.IsTerminal() {
		if a.IsTerminal() {
			return -1
		}
		return 1
	}
	return utils.IntComparator(a.Num().Int(), b.Num().Int())
}

// Comparator adapts Compare to the containers of gods.
func Comparator(a, b interface{}) int {
	return Compare(a.(Symbol), b.(Symbol))
}

// SymbolTable maps names to symbols. Index i of termTexts and nonTermTexts holds the name of the symbol
// numbered i, so index 0 is always empty.
type SymbolTable struct {
	text2Sym     map[string]Symbol
	termTexts    []string
	nonTermTexts []string
}

// SymbolTableWriter registers symbols. Registering a name twice as the same kind returns the first symbol.
type SymbolTableWriter struct {
	*SymbolTable
}

type SymbolTableReader struct {
	*SymbolTable
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		text2Sym: map[string]Symbol{
			SymbolNameEOF: SymbolEOF,
		},
		termTexts:    []string{"", SymbolNameEOF},
		nonTermTexts: []string{"", ""},
	}
}

func (t *SymbolTable) Writer() *SymbolTableWriter {
	return &SymbolTableWriter{
		SymbolTable: t,
	}
}

func (t *SymbolTable) Reader() *SymbolTableReader {
	return &SymbolTableReader{
		SymbolTable: t,
	}
}

func (w *SymbolTableWriter) RegisterStartSymbol(text string) (Symbol, error) {
	if sym, ok := w.text2Sym[text]; ok && sym != SymbolStart {
		return SymbolNil, fmt.Errorf("the start symbol collides with a registered symbol: %v", text)
	}
	if old := w.nonTermTexts[startNum]; old != "" && old != text {
		delete(w.text2Sym, old)
	}
	w.text2Sym[text] = SymbolStart
	w.nonTermTexts[startNum] = text
	return SymbolStart, nil
}

func (w *SymbolTableWriter) RegisterNonTerminalSymbol(text string) (Symbol, error) {
	return w.register(text, false)
}

func (w *SymbolTableWriter) RegisterTerminalSymbol(text string) (Symbol, error) {
	return w.register(text, true)
}

func (w *SymbolTableWriter) register(text string, terminal bool) (Symbol, error) {
	if sym, ok := w.text2Sym[text]; ok {
		if sym.IsTerminal() != terminal {
			return SymbolNil, fmt.Errorf("%v is already registered as a symbol of another kind", text)
		}
		return sym, nil
	}

	texts := &w.nonTermTexts
	var flag uint16
	if terminal {
		texts = &w.termTexts
		flag = terminalFlag
	}
	num := SymbolNum(len(*texts))
	if num > symbolNumMax {
		return SymbolNil, fmt.Errorf("too many symbols; limit: %v", symbolNumMax)
	}
	sym := Symbol(flag | uint16(num))
	*texts = append(*texts, text)
	w.text2Sym[text] = sym
	return sym, nil
}

func (r *SymbolTableReader) ToSymbol(text string) (Symbol, bool) {
	sym, ok := r.text2Sym[text]
	if !ok {
		return SymbolNil, false
	}
	return sym, true
}

func (r *SymbolTableReader) ToText(sym Symbol) (string, bool) {
	texts := r.nonTermTexts
	if sym.IsTerminal() {
		texts = r.termTexts
	}
	num := sym.Num().Int()
	if num == 0 || num >= len(texts) || texts[num] == "" {
		return "", false
	}
	return texts[num], true
}

// TerminalSymbols returns the terminals, END excluded, in number order.
func (r *SymbolTableReader) TerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, len(r.termTexts)-2)
	for num := eofNum.Int() + 1; num < len(r.termTexts); num++ {
		syms = append(syms, Symbol(terminalFlag|uint16(num)))
	}
	return syms
}

// TerminalTexts returns the names of the terminals indexed by symbol number.
func (r *SymbolTableReader) TerminalTexts() []string {
	return r.termTexts
}

// TerminalCount returns the width of a terminal indexed table row, the unused index 0 and END included.
func (r *SymbolTableReader) TerminalCount() int {
	return len(r.termTexts)
}

// NonTerminalSymbols returns the non-terminals, the augmented start symbol included, in number order.
func (r *SymbolTableReader) NonTerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, len(r.nonTermTexts)-1)
	for num := startNum.Int(); num < len(r.nonTermTexts); num++ {
		syms = append(syms, Symbol(num))
	}
	return syms
}

// NonTerminalTexts returns the names of the non-terminals indexed by symbol number.
func (r *SymbolTableReader) NonTerminalTexts() []string {
	return r.nonTermTexts
}

// NonTerminalCount returns the width of a non-terminal indexed table row, the unused index 0 included.
func (r *SymbolTableReader) NonTerminalCount() int {
	return len(r.nonTermTexts)
}
