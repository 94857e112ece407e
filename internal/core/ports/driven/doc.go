// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). Core services depend on these interfaces,
// never on concrete adapters, so the generation pipeline is testable
// with deterministic stubs.
package driven
