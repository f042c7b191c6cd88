package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/nihei9/lrtab/config"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// traceKeys are the tracers of the library packages.
var traceKeys = []string{
	"lrtab.grammar",
	"lrtab.driver",
}

var rootFlags = struct {
	config     *string
	traceLevel *string
}{}

// conf is the configuration of the running command. Flags of each command override it.
var conf = config.Default()

var rootCmd = &cobra.Command{
	Use:   "lrtab",
	Short: "Build LR parsing tables from a grammar and parse with them",
	Long: `lrtab provides the following features:
- Builds LR(0), SLR(1), LALR(1), and canonical LR(1) parsing tables from a grammar.
- Reports the states and the conflicts of the tables.
- Parses symbol sequences with a table, optionally printing every step.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootFlags.config = rootCmd.PersistentFlags().StringP("config", "c", "", "configuration file path (TOML)")
	rootFlags.traceLevel = rootCmd.PersistentFlags().String("trace-level", "", "trace level [Debug|Info|Error] (default from the configuration)")
}

func setup(cmd *cobra.Command, args []string) error {
	if *rootFlags.config != "" {
		c, err := config.ReadFile(*rootFlags.config)
		if err != nil {
			return fmt.Errorf("Cannot read the configuration: %w", err)
		}
		conf = c
	}
	if *rootFlags.traceLevel != "" {
		conf.TraceLevel = *rootFlags.traceLevel
		err := conf.Validate()
		if err != nil {
			return err
		}
	}

	gtrace.SyntaxTracer = gologadapter.New()
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(conf.Level())
	}
	return nil
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		pterm.Error.Println(err)
		return err
	}
	return nil
}

// recoverPanic turns a panic into an error and prints a stack trace. Call it in a deferred function.
func recoverPanic(retErr *error) {
	v := recover()
	if v == nil {
		return
	}
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("an unexpected error occurred: %v", v)
	}
	fmt.Fprintf(os.Stderr, "%v:\n%v", err, string(debug.Stack()))
	*retErr = err
}
