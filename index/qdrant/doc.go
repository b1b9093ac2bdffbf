// Package qdrant implements index.Store over the Qdrant REST API. The
// collection holds one named dense vector space per granularity plus one
// sparse vector space, so every retrieval leg is a single query with a
// "using" selector.
package qdrant
