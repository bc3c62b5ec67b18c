// Package layout centralizes the numeric constants shared by the types,
// gc, and eval packages, the way internal/format centralized REGF/HBIN
// constants in the teacher codebase: one place to look, no mask or
// offset literals scattered through the collector or evaluator.
package layout
