// Package memory provides an in-process index.Store backed by a map. It is
// used by tests and small corpora; scoring is exact brute force.
package memory
