package grammar

import (
	verr "github.com/nihei9/lrtab/error"
	"github.com/nihei9/lrtab/spec"
)

// checkCyclicDerivations reports every non-terminal A such that A ⇒+ A. A parser for such a grammar can reduce
// forever without consuming input, so the grammar is rejected.
//
// A derives B in one step without producing input when it has an alternative `α B β` whose α and β derive the
// empty string. A cycle in that relation is a cyclic derivation.
func (b *GrammarBuilder) checkCyclicDerivations(heads map[string]struct{}, headTexts []string) {
	nullable := map[string]bool{}
	for {
		changed := false
		for _, prod := range b.AST.Productions {
			if nullable[prod.LHS] {
				continue
			}
			for _, alt := range prod.RHS {
				if allNullable(alt.Elements, nullable) {
					nullable[prod.LHS] = true
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}

	units := map[string][]string{}
	for _, prod := range b.AST.Productions {
		for _, alt := range prod.RHS {
			for i, elem := range alt.Elements {
				if _, ok := heads[elem.ID]; !ok {
					continue
				}
				if !allNullable(alt.Elements[:i], nullable) || !allNullable(alt.Elements[i+1:], nullable) {
					continue
				}
				units[prod.LHS] = append(units[prod.LHS], elem.ID)
			}
		}
	}

	rows := map[string]int{}
	for _, prod := range b.AST.Productions {
		if _, ok := rows[prod.LHS]; !ok {
			rows[prod.LHS] = prod.Pos.Row
		}
	}
	for _, head := range headTexts {
		if !reaches(units, head, head) {
			continue
		}
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrCyclicDerivation,
			Detail: head,
			Row:    rows[head],
		})
	}
}

func allNullable(elems []*spec.ElementNode, nullable map[string]bool) bool {
	for _, elem := range elems {
		if !nullable[elem.ID] {
			return false
		}
	}
	return true
}

// reaches reports whether `to` is reachable from `from` through at least one edge.
func reaches(edges map[string][]string, from, to string) bool {
	visited := map[string]struct{}{}
	stack := append([]string{}, edges[from]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if _, ok := visited[n]; ok {
			continue
		}
		visited[n] = struct{}{}
		stack = append(stack, edges[n]...)
	}
	return false
}
