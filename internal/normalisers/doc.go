// Package normalisers turns raw repository content into analysable
// input. The source subpackage walks a repository tree and selects the
// files worth indexing.
package normalisers
