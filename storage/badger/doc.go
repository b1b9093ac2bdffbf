// Package badger implements the storage repositories on BadgerDB. Chunks
// are stored under content-addressed keys with a secondary index by
// document ID for bulk retrieval and deletion.
package badger
