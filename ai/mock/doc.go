// Package mock provides test doubles for the ai interfaces. The mock
// embedder produces deterministic unit vectors from a text hash, so tests
// get stable similarity scores without an external embedding service.
package mock
