// Command icppvm loads and runs a serialized program blob against the
// bytecode evaluator (spec §6/§4.4), modeled on cmd/hivectl's Cobra
// command-tree structure generalized from registry-hive verbs to
// program-loading/running verbs.
package main

func main() {
	execute()
}
