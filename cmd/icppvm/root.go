package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stephengoldbaum/icppgo/gc"
	"github.com/stephengoldbaum/icppgo/layout"
)

var (
	// Global flags
	verbose bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "icppvm",
	Short: "Load and run compiled bytecode programs",
	Long: `icppvm loads a serialized program blob (spec §6's JSON wire format)
and either runs it to completion, disassembles one of its invocations, or
reports the collector's page/generation statistics after a run.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Accepted but unused: every command prints plain text")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printInfo prints an info message to stdout.
func printInfo(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}

// printVerbose prints a verbose-only message to stdout.
func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// gcConfigFromEnv reads the three ICPP_GC_* environment variables
// SPEC_FULL.md's ambient-stack section documents: ICPP_GC_DEBUG (canary
// fill-marker instrumentation), ICPP_GC_THRESHOLD_MB (collection
// threshold, clamped to layout's configured bounds), and ICPP_GC_LOG
// (returned as logCycles; no caller traces collection cycles with it,
// and the collector itself has no logger hook).
func gcConfigFromEnv() (threshold uint64, debug gc.DebugPolicy, logCycles bool) {
	threshold = layout.DefaultCollectionThresholdBytes
	if raw := os.Getenv("ICPP_GC_THRESHOLD_MB"); raw != "" {
		if mb, err := strconv.ParseUint(raw, 10, 64); err == nil {
			bytes := mb * 1024 * 1024
			switch {
			case bytes < layout.MinCollectionThresholdBytes:
				bytes = layout.MinCollectionThresholdBytes
			case bytes > layout.MaxCollectionThresholdBytes:
				bytes = layout.MaxCollectionThresholdBytes
			}
			threshold = bytes
		} else {
			printError("invalid ICPP_GC_THRESHOLD_MB %q, using default: %v\n", raw, err)
		}
	}
	debug = gc.DebugPolicy{Enabled: os.Getenv("ICPP_GC_DEBUG") != ""}
	logCycles = os.Getenv("ICPP_GC_LOG") != ""
	return threshold, debug, logCycles
}
