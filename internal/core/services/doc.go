// Package services contains the core application logic, wired to the
// outside world only through the driven ports.
//
// The Engine is the single driving-port implementation: it owns the
// incremental index pipeline (diff, chunk, cache, embed, store) and
// the retrieval path over the vector store.
package services
