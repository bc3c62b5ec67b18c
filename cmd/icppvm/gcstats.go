package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stephengoldbaum/icppgo/eval"
	"github.com/stephengoldbaum/icppgo/gc"
	"github.com/stephengoldbaum/icppgo/program"
)

func init() {
	rootCmd.AddCommand(newGCStatsCmd())
}

func newGCStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gcstats <program.json>",
		Short: "Run a program and report collector page/generation stats",
		Long: `The gcstats command runs a program blob's primary entry the same
way "run" does, then prints the resulting collector's young/old page
occupancy and decrement-queue depth (spec §4.1 "Page", spec §4.2
"Scheduling model").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGCStats(args[0])
		},
	}
}

func runGCStats(path string) error {
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

	threshold, debug, _ := gcConfigFromEnv()
	collector := gc.NewCollector(prog.Registry, threshold, debug)
	m := eval.NewMachine(prog, collector)

	entry := prog.Invokes[prog.PrimaryEntry]
	if entry == nil {
		return fmt.Errorf("program has no invocation for primaryEntry id %d", prog.PrimaryEntry)
	}
	var result []byte
	if entry.ResultType != 0 {
		result = make([]byte, prog.Registry.MustLookup(entry.ResultType).Size.AssignSize)
	}
	if err := m.Invoke(entry.ID, nil, result); err != nil {
		printError("%v\n", err)
	}

	stats := collector.Stats()
	young, old := 0, 0
	for _, s := range stats {
		if s.Young {
			young++
		} else {
			old++
		}
	}
	printInfo("pages: %d young, %d old (%d total)\n", young, old, len(stats))
	printInfo("decrement queue: %d pending\n", collector.DecQueueLen())
	for _, s := range stats {
		gen := "old"
		if s.Young {
			gen = "young"
		}
		printInfo("  type %d: %s page, capacity %d, entry size %d\n", s.TypeID, gen, s.Capacity, s.EntrySize)
	}
	return nil
}
