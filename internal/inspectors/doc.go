// Package inspectors provides deterministic, rule-based inspection of
// evidence chunks: pattern rules that raise security flags, and the
// mapping from flags to candidate security controls. Inspection is a
// pure function of text plus declared language and performs no I/O.
package inspectors
