package driver

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// TraceTable collects the steps of a parse. Pass its Record method to Trace.
type TraceTable struct {
	steps []*Step
}

func (t *TraceTable) Record(step *Step) {
	t.steps = append(t.steps, step)
}

func (t *TraceTable) Steps() []*Step {
	return t.steps
}

// Render lays the steps out in a table fitting `width` columns.
func (t *TraceTable) Render(width int) string {
	data := [][]string{
		{"Step", "State Stack", "Symbol Stack", "Input", "Action"},
	}
	for _, s := range t.steps {
		states := make([]string, len(s.StateStack))
		for i, state := range s.StateStack {
			states[i] = fmt.Sprint(state)
		}
		data = append(data, []string{
			fmt.Sprint(s.Number),
			strings.Join(states, " "),
			strings.Join(s.SymbolStack, " "),
			strings.Join(s.Input, " "),
			s.Action,
		})
	}
	return rosed.Edit("").InsertTableOpts(0, data, width, rosed.Options{
		TableBorders:             true,
		NoTrailingLineSeparators: true,
	}).String()
}
