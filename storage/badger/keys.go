package badger

import "encoding/binary"

const (
	chunkPrefix = "chunk:"
	infoKey     = "meta:info"
)

// makeChunkKey encodes seq in BigEndian order so lexicographic key order
// matches write order.
func makeChunkKey(seq uint64) []byte {
	buf := make([]byte, len(chunkPrefix)+8)
	offset := copy(buf, chunkPrefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}
