package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nihei9/lrtab/tester"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "test <compiled grammar file path> <test file path>|<test directory path>",
		Short:   "Test a parsing table against inputs it must accept or reject",
		Example: `  lrtab test expr.json cases.toml`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverPanic(&retErr)

	cg, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	var cs []*tester.TestCaseWithMetadata
	{
		cs = tester.ListTestCases(args[1])
		errOccurred := false
		for _, c := range cs {
			if c.Error != nil {
				fmt.Fprintf(os.Stderr, "Failed to read a test case or a directory: %v\n%v\n", c.FilePath, c.Error)
				errOccurred = true
			}
		}
		if errOccurred {
			return errors.New("Cannot run test")
		}
	}

	t := &tester.Tester{
		Grammar: cg,
		Cases:   cs,
	}
	rs := t.Run()
	failed := 0
	for _, r := range rs {
		if r.Error != nil {
			pterm.Error.Println(r)
			failed++
			continue
		}
		pterm.Success.Println(r)
	}
	if failed > 0 {
		return fmt.Errorf("%v of %v tests failed", failed, len(rs))
	}
	return nil
}
