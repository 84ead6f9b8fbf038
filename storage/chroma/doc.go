// Package chroma implements storage.VectorStore on a remote Chroma server.
//
// Each index location maps to one collection named after the location's
// base name. Chunks are added in batches with their text, embedding and
// metadata; Clear deletes the collection. The store is write-oriented:
// readers can count chunks but cannot iterate them.
package chroma
