// Package domain defines the core business entities for the vaultrag engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentRef: A document listed from the vault
//   - Chunk: The unit of embedding and retrieval
//   - QueryResult: A ranked similarity hit
//   - IndexStats / IndexProgress: Results and progress of an index run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
