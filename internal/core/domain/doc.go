// Package domain contains the core business entities for oscalgen:
// evidence chunks, resolved controls, generated implemented requirements,
// and the validation vocabulary shared by the generation pipeline.
//
// Domain types have no dependencies on adapters or infrastructure.
package domain
