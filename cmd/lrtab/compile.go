package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/lrtab/grammar"
	spec "github.com/nihei9/lrtab/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output    *string
	variant   *string
	maxStates *int
	report    *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile [<grammar file path>]",
		Short:   "Compile a grammar into a parsing table",
		Example: `  lrtab compile expr.grm --variant slr1 -o expr.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.variant = cmd.Flags().String("variant", "", "table variant [lr0|slr1|lalr1|lr1] (default from the configuration)")
	compileFlags.maxStates = cmd.Flags().Int("max-states", 0, "upper bound of the state count (default from the configuration)")
	compileFlags.report = cmd.Flags().Bool("report", false, "write a report of the states and the conflicts")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverPanic(&retErr)

	if *compileFlags.variant != "" {
		conf.Variant = *compileFlags.variant
	}
	if cmd.Flags().Changed("max-states") {
		conf.MaxStates = *compileFlags.maxStates
	}
	if *compileFlags.report {
		conf.Report = true
	}
	err := conf.Validate()
	if err != nil {
		return err
	}
	variant, err := conf.BuildVariant()
	if err != nil {
		return err
	}

	var gram *grammar.Grammar
	if len(args) > 0 {
		gram, err = readGrammar(args[0])
	} else {
		gram, err = grammar.Load(os.Stdin, "stdin", "")
	}
	if err != nil {
		return err
	}

	// The report is always generated to count conflicts. It is written only when requested.
	cgram, report, err := grammar.Compile(gram, variant, append(conf.BuildOptions(), grammar.EnableReporting())...)
	if err != nil {
		return err
	}

	outReport := report
	if !conf.Report {
		outReport = nil
	}
	err = writeCompiledGrammarAndReport(cgram, outReport, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output files: %w", err)
	}

	sr, rr := report.ConflictCount()
	if sr+rr > 0 {
		msg := fmt.Sprintf("%v: %v shift/reduce and %v reduce/reduce conflicts were resolved implicitly", variant, sr, rr)
		// The compiled grammar occupies the stdout.
		if *compileFlags.output == "" {
			fmt.Fprintln(os.Stderr, msg)
		} else {
			pterm.Warning.Println(msg)
		}
	}

	return nil
}

func readGrammar(path string) (*grammar.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return grammar.Load(f, name, path)
}

// writeCompiledGrammarAndReport writes a compiled grammar and a report to files located at a specified path.
// This function selects one of the following output methods depending on how the path is specified.
//
//  1. When the path is a directory path, this function writes the compiled grammar and the report to
//     <path>/<grammar-name>.json and <path>/<grammar-name>-report.json files, respectively.
//  2. When the path is a file path or a non-existent path, this function assumes that the path represents a file
//     path for the compiled grammar. Then it also writes the report in the same directory as the compiled grammar.
//  3. When the path is an empty string, this function writes the compiled grammar to the stdout and writes
//     the report to a file named <current-directory>/<grammar-name>-report.json.
//
// A nil report is not written.
func writeCompiledGrammarAndReport(cgram *spec.CompiledGrammar, report *spec.Report, path string) error {
	cgramPath, reportPath, err := makeOutputFilePaths(cgram.Name, path)
	if err != nil {
		return err
	}

	{
		var cgramW io.Writer
		if cgramPath != "" {
			cgramFile, err := os.OpenFile(cgramPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			defer cgramFile.Close()
			cgramW = cgramFile
		} else {
			cgramW = os.Stdout
		}

		b, err := json.Marshal(cgram)
		if err != nil {
			return err
		}
		fmt.Fprintf(cgramW, "%v\n", string(b))
	}

	if report != nil {
		reportFile, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer reportFile.Close()

		b, err := json.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Fprintf(reportFile, "%v\n", string(b))
	}

	return nil
}

func makeOutputFilePaths(gramName string, path string) (string, string, error) {
	reportFileName := gramName + "-report.json"

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return "", filepath.Join(wd, reportFileName), nil
	}

	fi, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", err
	}
	if os.IsNotExist(err) || !fi.IsDir() {
		dir, _ := filepath.Split(path)
		return path, filepath.Join(dir, reportFileName), nil
	}

	return filepath.Join(path, gramName+".json"), filepath.Join(path, reportFileName), nil
}

func readCompiledGrammar(path string) (*spec.CompiledGrammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return spec.ReadCompiledGrammar(f)
}
