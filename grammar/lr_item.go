package grammar

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/nihei9/lrtab/grammar/symbol"
	"golang.org/x/exp/slices"
)

type lrItem struct {
	prod productionNum

	// E → E + T
	//
	// Dot | Dotted Symbol | Item
	// ----+---------------+------------
	// 0   | E             | E →・E + T
	// 1   | +             | E → E・+ T
	// 2   | T             | E → E +・T
	// 3   | Nil           | E → E + T・
	dot          int
	dottedSymbol symbol.Symbol

	// lookAhead is symbol.SymbolNil for an item without a lookahead (LR(0) and SLR(1)).
	// Otherwise, it is a terminal symbol or END.
	lookAhead symbol.Symbol

	// When reducible is true, the item looks like E → E + T・.
	reducible bool

	// When kernel is true, the item is a kernel item. The initial item S' →・S is also a kernel item.
	kernel bool
}

func newLRItem(prod *production, dot int, lookAhead symbol.Symbol) (lrItem, error) {
	if prod == nil {
		return lrItem{}, fmt.Errorf("production must be non-nil")
	}

	if dot < 0 || dot > prod.rhsLen {
		return lrItem{}, fmt.Errorf("dot must be between 0 and %v", prod.rhsLen)
	}

	if !lookAhead.IsNil() && !lookAhead.IsTerminal() {
		return lrItem{}, fmt.Errorf("a lookahead must be a terminal symbol: %v", lookAhead)
	}

	dottedSymbol := symbol.SymbolNil
	if dot < prod.rhsLen {
		dottedSymbol = prod.rhs[dot]
	}

	return lrItem{
		prod:         prod.num,
		dot:          dot,
		dottedSymbol: dottedSymbol,
		lookAhead:    lookAhead,
		reducible:    dot == prod.rhsLen,
		kernel:       dot > 0 || prod.lhs.IsStart(),
	}, nil
}

func (i lrItem) hasLookAhead() bool {
	return !i.lookAhead.IsNil()
}

// compareLRItems orders items by production, dot, and then lookahead.
func compareLRItems(a, b lrItem) int {
	switch {
	case a.prod != b.prod:
		if a.prod < b.prod {
			return -1
		}
		return 1
	case a.dot != b.dot:
		if a.dot < b.dot {
			return -1
		}
		return 1
	case a.lookAhead == b.lookAhead:
		return 0
	case a.lookAhead.IsNil():
		return -1
	case b.lookAhead.IsNil():
		return 1
	}
	return symbol.Compare(a.lookAhead, b.lookAhead)
}

// canonicalizeItems sorts items and removes duplicates.
func canonicalizeItems(items []lrItem) []lrItem {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, compareLRItems)
	return slices.CompactFunc(sorted, func(a, b lrItem) bool {
		return compareLRItems(a, b) == 0
	})
}

type stateID [32]byte

func (id stateID) String() string {
	return fmt.Sprintf("%x", binary.LittleEndian.Uint32(id[:]))
}

// genStateID hashes canonicalized items. Two states have the same ID iff they have the same items.
func genStateID(items []lrItem) stateID {
	b := make([]byte, 0, len(items)*8)
	for _, item := range items {
		b = binary.LittleEndian.AppendUint16(b, uint16(item.prod))
		b = binary.LittleEndian.AppendUint32(b, uint32(item.dot))
		b = append(b, item.lookAhead.Byte()...)
	}
	return sha256.Sum256(b)
}

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return strconv.Itoa(int(n))
}

func (n stateNum) next() stateNum {
	return stateNum(n + 1)
}

type lrState struct {
	id    stateID
	num   stateNum
	items []lrItem
	next  map[symbol.Symbol]stateNum
}

func newLRState(num stateNum, items []lrItem) *lrState {
	items = canonicalizeItems(items)
	return &lrState{
		id:    genStateID(items),
		num:   num,
		items: items,
		next:  map[symbol.Symbol]stateNum{},
	}
}

func (s *lrState) kernelItems() []lrItem {
	var items []lrItem
	for _, item := range s.items {
		if item.kernel {
			items = append(items, item)
		}
	}
	return items
}

// coreItem is an item without its lookahead. The fields are exported to be visible to structhash.
type coreItem struct {
	Prod int
	Dot  int
}

// core returns the distinct (production, dot) pairs of the state in item order.
func (s *lrState) core() []coreItem {
	var core []coreItem
	for _, item := range s.items {
		c := coreItem{
			Prod: item.prod.Int(),
			Dot:  item.dot,
		}
		if len(core) > 0 && core[len(core)-1] == c {
			continue
		}
		core = append(core, c)
	}
	return core
}
