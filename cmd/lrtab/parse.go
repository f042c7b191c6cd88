package main

import (
	"fmt"
	"os"

	"github.com/nihei9/lrtab/driver"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source *string
	trace  *bool
	cst    *bool
	width  *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <compiled grammar file path>",
		Short:   "Parse a sequence of terminals separated by white spaces",
		Example: `  echo "id + id" | lrtab parse expr.json --trace`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.trace = cmd.Flags().Bool("trace", false, "print every step of the parser")
	parseFlags.cst = cmd.Flags().Bool("cst", false, "print a concrete syntax tree of an accepted input")
	parseFlags.width = cmd.Flags().Int("width", 120, "width of the trace table")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverPanic(&retErr)

	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	var p *driver.Parser
	traceTab := &driver.TraceTable{}
	{
		src := os.Stdin
		if *parseFlags.source != "" {
			f, err := os.Open(*parseFlags.source)
			if err != nil {
				return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
			}
			defer f.Close()
			src = f
		}

		var opts []driver.ParserOption
		if *parseFlags.trace {
			opts = append(opts, driver.Trace(traceTab.Record))
		}
		if *parseFlags.cst {
			opts = append(opts, driver.MakeCST())
		}

		ts, err := driver.NewTokenStream(src)
		if err != nil {
			return err
		}
		p, err = driver.NewParser(cgram, ts, opts...)
		if err != nil {
			return err
		}
	}

	res, err := p.Parse()
	if err != nil {
		return err
	}

	if *parseFlags.trace {
		fmt.Fprintln(os.Stdout, traceTab.Render(*parseFlags.width))
	}
	if !res.Accepted {
		return res.SyntaxError
	}
	if res.Tree != nil {
		driver.PrintTree(os.Stdout, res.Tree)
	}
	pterm.Success.Println("accepted")
	return nil
}
