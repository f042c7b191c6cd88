package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/dekarrin/rosed"
	"github.com/nihei9/lrtab/grammar"
	spec "github.com/nihei9/lrtab/spec/grammar"
	"github.com/spf13/cobra"
)

var showFlags = struct {
	report *string
	width  *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "show <compiled grammar file path>",
		Short:   "Print a parsing table and a report in a readable format",
		Example: `  lrtab show expr.json --report expr-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	showFlags.report = cmd.Flags().StringP("report", "r", "", "report file path")
	showFlags.width = cmd.Flags().Int("width", 120, "width of the table")
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverPanic(&retErr)

	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	fmt.Fprintf(os.Stdout, "# %v (%v)\n\n", cgram.Name, cgram.Variant)
	fmt.Fprintln(os.Stdout, renderParsingTable(cgram.ParsingTable, *showFlags.width))

	if *showFlags.report == "" {
		return nil
	}
	report, err := readReport(*showFlags.report)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout)
	return writeReport(os.Stdout, report)
}

// renderParsingTable lays out the ACTION table followed by the GOTO table. The columns of the ACTION table
// are the terminals in number order and then END.
func renderParsingTable(tab *spec.ParsingTable, width int) string {
	header := []string{"State"}
	var terms []int
	for term := 1; term < tab.TerminalCount; term++ {
		if term == tab.EOFSymbol {
			continue
		}
		terms = append(terms, term)
	}
	terms = append(terms, tab.EOFSymbol)
	for _, term := range terms {
		header = append(header, tab.Terminals[term])
	}
	// Non-terminal 1 is the augmented start symbol, and no state goes to it.
	var nonTerms []int
	for nonTerm := 2; nonTerm < tab.NonTerminalCount; nonTerm++ {
		nonTerms = append(nonTerms, nonTerm)
		header = append(header, tab.NonTerminals[nonTerm])
	}

	data := [][]string{header}
	for state := 0; state < tab.StateCount; state++ {
		row := []string{fmt.Sprint(state)}
		for _, term := range terms {
			row = append(row, actionText(tab, tab.Action[state*tab.TerminalCount+term]))
		}
		for _, nonTerm := range nonTerms {
			next := tab.GoTo[state*tab.NonTerminalCount+nonTerm]
			if next == 0 {
				row = append(row, "")
				continue
			}
			row = append(row, fmt.Sprint(next))
		}
		data = append(data, row)
	}

	return rosed.Edit("").InsertTableOpts(0, data, width, rosed.Options{
		TableBorders:             true,
		NoTrailingLineSeparators: true,
	}).String()
}

func actionText(tab *spec.ParsingTable, act int) string {
	switch {
	case act < 0:
		return fmt.Sprintf("s%v", act*-1)
	case act == tab.StartProduction+1:
		return "acc"
	case act > 0:
		return fmt.Sprintf("r%v", act-1)
	}
	return ""
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	return spec.ReadReport(f)
}

const reportTemplate = `# Conflicts

{{ printConflictSummary . }}

# Terminals

{{ range slice .Terminals 1 -}}
{{ printTerminal . }}
{{ end }}
# Productions

{{ range .Productions -}}
{{ printProduction . }}
{{ end }}
# States
{{ range .States }}
## State {{ .Number }}

{{ range .Items -}}
{{ printItem . }}
{{ end }}
{{ range .Shift -}}
{{ printShift . }}
{{ end -}}
{{ range .Reduce -}}
{{ printReduce . }}
{{ end -}}
{{ if .Accept -}}
accept      on #
{{ end -}}
{{ range .GoTo -}}
{{ printGoTo . }}
{{ end }}
{{ range .SRConflict -}}
{{ printSRConflict . }}
{{ end -}}
{{ range .RRConflict -}}
{{ printRRConflict . }}
{{ end -}}
{{ end }}`

func writeReport(w io.Writer, report *spec.Report) error {
	termName := func(sym int) string {
		return report.Terminals[sym].Name
	}

	nonTermName := func(sym int) string {
		return report.NonTerminals[sym].Name
	}

	symName := func(sym int) string {
		if sym > 0 {
			return termName(sym)
		}
		return nonTermName(sym * -1)
	}

	fns := template.FuncMap{
		"printConflictSummary": func(report *spec.Report) string {
			sr, rr := report.ConflictCount()
			count := sr + rr

			var b strings.Builder
			switch {
			case count == 1:
				fmt.Fprintf(&b, "%v conflict occurred and resolved implicitly.", count)
			case count > 1:
				fmt.Fprintf(&b, "%v conflicts occurred and resolved implicitly.", count)
			default:
				fmt.Fprintf(&b, "No conflict")
			}
			return b.String()
		},
		"printTerminal": func(term *spec.Terminal) string {
			return fmt.Sprintf("%4v %v", term.Number, term.Name)
		},
		"printProduction": func(prod *spec.Production) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			if len(prod.RHS) > 0 {
				for _, e := range prod.RHS {
					fmt.Fprintf(&b, " %v", symName(e))
				}
			} else {
				fmt.Fprintf(&b, " ε")
			}

			return fmt.Sprintf("%4v %v", prod.Number, b.String())
		},
		"printItem": func(item *spec.Item) string {
			prod := report.Productions[item.Production]

			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			for i, e := range prod.RHS {
				if i == item.Dot {
					fmt.Fprintf(&b, " ・")
				}
				fmt.Fprintf(&b, " %v", symName(e))
			}
			if item.Dot >= len(prod.RHS) {
				fmt.Fprintf(&b, " ・")
			}
			if len(item.LookAhead) > 0 {
				las := make([]string, len(item.LookAhead))
				for i, a := range item.LookAhead {
					las[i] = termName(a)
				}
				fmt.Fprintf(&b, ", %v", strings.Join(las, " "))
			}

			mark := " "
			if item.Kernel {
				mark = "*"
			}
			return fmt.Sprintf("%v%4v %v", mark, prod.Number, b.String())
		},
		"printShift": func(tran *spec.Transition) string {
			return fmt.Sprintf("shift  %4v on %v", tran.State, termName(tran.Symbol))
		},
		"printReduce": func(reduce *spec.Reduce) string {
			las := make([]string, len(reduce.LookAhead))
			for i, a := range reduce.LookAhead {
				las[i] = termName(a)
			}
			return fmt.Sprintf("reduce %4v on %v", reduce.Production, strings.Join(las, ", "))
		},
		"printGoTo": func(tran *spec.Transition) string {
			return fmt.Sprintf("goto   %4v on %v", tran.State, nonTermName(tran.Symbol))
		},
		"printSRConflict": func(sr *spec.SRConflict) string {
			var resolvedBy string
			switch sr.ResolvedBy {
			case grammar.ResolvedByShift.Int():
				resolvedBy = "shift wins over reduce (default rule)"
			default:
				resolvedBy = "?" // This is a bug.
			}
			return fmt.Sprintf("shift/reduce conflict (shift %v, reduce %v) on %v: shift %v adopted because %v", sr.State, sr.Production, termName(sr.Symbol), sr.State, resolvedBy)
		},
		"printRRConflict": func(rr *spec.RRConflict) string {
			var resolvedBy string
			switch rr.ResolvedBy {
			case grammar.ResolvedByProdOrder.Int():
				resolvedBy = "the lower production number wins (default rule)"
			default:
				resolvedBy = "?" // This is a bug.
			}
			return fmt.Sprintf("reduce/reduce conflict (%v, %v) on %v: reduce %v adopted because %v", rr.Production1, rr.Production2, termName(rr.Symbol), rr.AdoptedProduction, resolvedBy)
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, report)
}
