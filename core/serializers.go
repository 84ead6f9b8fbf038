package core

import (
	"fmt"
	"slices"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// storedChunkVersion prefixes every encoded StoredChunk.
const storedChunkVersion uint64 = 1

// Metadata value kinds.
const (
	kindString uint64 = iota + 1
	kindInt
	kindFloat
	kindBool
)

var (
	// StoredChunkMUS serializes a StoredChunk:
	// version | seq | id | start offset | text | metadata | vector.
	StoredChunkMUS = storedChunkMUS{}

	// MetadataMUS serializes chunk metadata with keys in sorted order.
	// Values that are not strings, integers, floats or booleans are
	// encoded as their fmt.Sprint form.
	MetadataMUS = metadataMUS{}

	// MetaValueMUS serializes a single metadata value as a kind tag
	// followed by the value.
	MetaValueMUS = metaValueMUS{}

	// VectorMUS serializes an embedding vector.
	VectorMUS = vectorMUS{}
)

var (
	_ mus.Serializer[StoredChunk]    = storedChunkMUS{}
	_ mus.Serializer[map[string]any] = metadataMUS{}
	_ mus.Serializer[any]            = metaValueMUS{}
	_ mus.Serializer[[]float32]      = vectorMUS{}
)

type storedChunkMUS struct{}

func (s storedChunkMUS) Marshal(v StoredChunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(storedChunkVersion, bs)
	n += varint.Uint64.Marshal(v.Seq, bs[n:])
	n += raw.Uint64.Marshal(uint64(v.Chunk.ID), bs[n:])
	n += varint.Int.Marshal(v.Chunk.StartOffset, bs[n:])
	n += ord.String.Marshal(v.Chunk.Text, bs[n:])
	n += MetadataMUS.Marshal(v.Chunk.Metadata, bs[n:])
	return n + VectorMUS.Marshal(v.Vector, bs[n:])
}

func (s storedChunkMUS) Unmarshal(bs []byte) (v StoredChunk, n int, err error) {
	version, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	if version != storedChunkVersion {
		err = fmt.Errorf("%w: %d", ErrUnknownVersion, version)
		return
	}
	var (
		m  int
		id uint64
	)
	v.Seq, m, err = varint.Uint64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	id, m, err = raw.Uint64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Chunk.ID = ID(id)
	v.Chunk.StartOffset, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Chunk.Text, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Chunk.Metadata, m, err = MetadataMUS.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Vector, m, err = VectorMUS.Unmarshal(bs[n:])
	n += m
	return
}

func (s storedChunkMUS) Size(v StoredChunk) (size int) {
	size = varint.Uint64.Size(storedChunkVersion)
	size += varint.Uint64.Size(v.Seq)
	size += raw.Uint64.Size(uint64(v.Chunk.ID))
	size += varint.Int.Size(v.Chunk.StartOffset)
	size += ord.String.Size(v.Chunk.Text)
	size += MetadataMUS.Size(v.Chunk.Metadata)
	return size + VectorMUS.Size(v.Vector)
}

func (s storedChunkMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type metadataMUS struct{}

func (s metadataMUS) Marshal(v map[string]any, bs []byte) (n int) {
	keys := sortedKeys(v)
	n = varint.Int.Marshal(len(keys), bs)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += MetaValueMUS.Marshal(v[k], bs[n:])
	}
	return
}

func (s metadataMUS) Unmarshal(bs []byte) (v map[string]any, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	// Every entry takes at least two bytes: a key length and a kind tag.
	if count < 0 || count > (len(bs)-n)/2 {
		err = fmt.Errorf("%w: %d metadata entries", ErrLengthOutOfRange, count)
		return
	}
	v = make(map[string]any, count)
	var (
		m   int
		key string
	)
	for range count {
		key, m, err = ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return
		}
		v[key], m, err = MetaValueMUS.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return
		}
	}
	return
}

func (s metadataMUS) Size(v map[string]any) (size int) {
	size = varint.Int.Size(len(v))
	for k, val := range v {
		size += ord.String.Size(k)
		size += MetaValueMUS.Size(val)
	}
	return
}

func (s metadataMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

type metaValueMUS struct{}

// normalize maps a metadata value onto its kind and canonical Go type.
func (s metaValueMUS) normalize(v any) (uint64, any) {
	switch x := v.(type) {
	case string:
		return kindString, x
	case int:
		return kindInt, int64(x)
	case int32:
		return kindInt, int64(x)
	case int64:
		return kindInt, x
	case float32:
		return kindFloat, float64(x)
	case float64:
		return kindFloat, x
	case bool:
		return kindBool, x
	default:
		return kindString, fmt.Sprint(x)
	}
}

func (s metaValueMUS) Marshal(v any, bs []byte) (n int) {
	kind, val := s.normalize(v)
	n = varint.Uint64.Marshal(kind, bs)
	switch kind {
	case kindString:
		n += ord.String.Marshal(val.(string), bs[n:])
	case kindInt:
		n += varint.Int64.Marshal(val.(int64), bs[n:])
	case kindFloat:
		n += raw.Float64.Marshal(val.(float64), bs[n:])
	case kindBool:
		n += ord.Bool.Marshal(val.(bool), bs[n:])
	}
	return
}

// Unmarshal decodes integers as int and floats as float64.
func (s metaValueMUS) Unmarshal(bs []byte) (v any, n int, err error) {
	kind, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	var m int
	switch kind {
	case kindString:
		v, m, err = ord.String.Unmarshal(bs[n:])
	case kindInt:
		var i int64
		i, m, err = varint.Int64.Unmarshal(bs[n:])
		v = int(i)
	case kindFloat:
		v, m, err = raw.Float64.Unmarshal(bs[n:])
	case kindBool:
		v, m, err = ord.Bool.Unmarshal(bs[n:])
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownValueKind, kind)
	}
	n += m
	return
}

func (s metaValueMUS) Size(v any) (size int) {
	kind, val := s.normalize(v)
	size = varint.Uint64.Size(kind)
	switch kind {
	case kindString:
		size += ord.String.Size(val.(string))
	case kindInt:
		size += varint.Int64.Size(val.(int64))
	case kindFloat:
		size += raw.Float64.Size(val.(float64))
	case kindBool:
		size += ord.Bool.Size(val.(bool))
	}
	return
}

func (s metaValueMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type vectorMUS struct{}

func (s vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

// Unmarshal returns a nil vector for length zero.
func (s vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 || length > (len(bs)-n)/4 {
		err = fmt.Errorf("%w: %d vector elements", ErrLengthOutOfRange, length)
		return
	}
	if length == 0 {
		return
	}
	v = make([]float32, length)
	var m int
	for i := range v {
		v[i], m, err = raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return
		}
	}
	return
}

func (s vectorMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return
}

func (s vectorMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
