// Package index rebuilds a vector index from a corpus directory.
//
// A Builder loads documents, splits them into chunks, embeds the chunks and
// writes them to a storage.VectorStore. Every rebuild is a full
// replacement: chunks are written to a fresh generation inside the index
// location, and only after the generation is committed does the CURRENT
// manifest switch to it. Earlier generations are then cleared. A failed or
// cancelled rebuild removes its own generation and leaves the previous
// one active.
//
// Layout of an index location:
//
//	<location>/LOCK        exclusive writer lock
//	<location>/CURRENT     name of the active generation
//	<location>/gen-<uuid>/ one directory per generation
//
// Readers resolve the manifest through Open or Active and never observe a
// generation that is still being written.
package index
