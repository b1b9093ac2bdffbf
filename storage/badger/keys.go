package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/caselight/retrieval/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix   = "chkrec"
	chunkDocumentPrefix = "chkdoc"
	vocabularyKey       = "vocsnap"
)

// makeChunkKey generates a key for a chunk record by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkDocumentKey generates a composite key for the document index.
// Format: prefix:documentID:id
func makeChunkDocumentKey(documentID string, id core.ID) []byte {
	prefix := []byte(chunkDocumentPrefix + ":" + documentID + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// BigEndian so lexicographic iteration order matches numeric order
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialChunkDocumentKey generates the iteration prefix for all chunks
// of a document.
func makePartialChunkDocumentKey(documentID string) []byte {
	return []byte(chunkDocumentPrefix + ":" + documentID + ":")
}

// makeVocabularyKey generates the key for the vocabulary snapshot.
func makeVocabularyKey() []byte {
	return []byte(vocabularyKey)
}
