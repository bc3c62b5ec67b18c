package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stephengoldbaum/icppgo/program"
)

func init() {
	rootCmd.AddCommand(newDisasmCmd())
}

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <program.json> <invoke-id-or-name>",
		Short: "Print the opcode body of one loaded invocation",
		Long: `The disasm command loads a program blob and prints the flat
opcode list of one invocation (spec §4.4's opcode families, spec §6's
"body: InterpOp[]"), identified by numeric id or by name.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disasmInvoke(args[0], args[1])
		},
	}
}

func disasmInvoke(path, which string) error {
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

	inv := lookupInvoke(prog, which)
	if inv == nil {
		return fmt.Errorf("no invocation matching %q", which)
	}

	if inv.IsPrimitive {
		printInfo("%s (id %d) is a primitive: implkey=%s binds=%v pcodes=%v\n",
			inv.Name, inv.ID, inv.ImplKey, inv.Binds, inv.PCodes)
		return nil
	}

	printInfo("%s (id %d): %d bytes of stack, %d mask slots, %d ops\n",
		inv.Name, inv.ID, inv.StackBytes, inv.MaskSlots, len(inv.Body))
	for i, op := range inv.Body {
		line := op.SInfo.Line
		printInfo("%4d  [line %4d]  %s", i, line, op.Tag)
		if op.Target != nil {
			printInfo("  -> var@%d", op.Target.Offset)
		}
		if op.Arg != nil {
			printInfo("  arg=%s", describeArg(*op.Arg))
		}
		if op.Msg != "" {
			printInfo("  msg=%q", op.Msg)
		}
		printInfo("\n")
	}
	return nil
}

func describeArg(a program.ArgRef) string {
	return fmt.Sprintf("%+v", a)
}

func lookupInvoke(prog *program.Program, which string) *program.Invoke {
	if id, err := strconv.ParseUint(which, 10, 32); err == nil {
		if inv, ok := prog.Invokes[uint32(id)]; ok {
			return inv
		}
	}
	return prog.InvokesByName[which]
}
