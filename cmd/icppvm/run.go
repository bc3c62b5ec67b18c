package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stephengoldbaum/icppgo/eval"
	"github.com/stephengoldbaum/icppgo/gc"
	"github.com/stephengoldbaum/icppgo/program"
	"github.com/stephengoldbaum/icppgo/types"
	"github.com/stephengoldbaum/icppgo/values"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <program.json>",
		Short: "Run a program blob's primary entry invocation",
		Long: `The run command loads a program blob, builds an evaluator and
collector for it, and invokes the blob's primaryEntry invocation to
completion, printing its result (spec §4.4 "Evaluator", spec §6
"primaryEntry").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(args[0])
		},
	}
}

func runProgram(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading program blob: %w", err)
	}
	blob, err := program.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding program blob: %w", err)
	}
	prog, err := program.Load(blob)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	threshold, debug, logCycles := gcConfigFromEnv()
	printVerbose("gc threshold: %d bytes, debug: %v\n", threshold, debug.Enabled)
	collector := gc.NewCollector(prog.Registry, threshold, debug)
	_ = logCycles // unused: neither eval.Machine.Alloc nor gc.Collector.MinorGC prints per-cycle traces

	m := eval.NewMachine(prog, collector)

	entry := prog.Invokes[prog.PrimaryEntry]
	if entry == nil {
		return fmt.Errorf("program has no invocation for primaryEntry id %d", prog.PrimaryEntry)
	}

	var result []byte
	var resDesc *types.Type
	if entry.ResultType != 0 {
		resDesc = prog.Registry.MustLookup(entry.ResultType)
		result = make([]byte, resDesc.Size.AssignSize)
	}

	printVerbose("invoking %q (id %d)\n", entry.Name, entry.ID)
	if err := m.Invoke(entry.ID, nil, result); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}

	if resDesc != nil {
		printInfo("%s\n", values.Display(resDesc, prog.Registry, result, types.DisplayStandard))
	}
	return nil
}
