// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/docindex/core"
)

// IndexInfoMUS serializes IndexInfo: chunks | dimension | commit time in
// Unix microseconds.
var IndexInfoMUS = indexInfoMUS{}

var _ mus.Serializer[IndexInfo] = indexInfoMUS{}

// MarshalStoredChunk serializes a StoredChunk to bytes.
func MarshalStoredChunk(sc *core.StoredChunk) []byte {
	buf := make([]byte, core.StoredChunkMUS.Size(*sc))
	core.StoredChunkMUS.Marshal(*sc, buf)
	return buf
}

// UnmarshalStoredChunk deserializes a StoredChunk from bytes.
func UnmarshalStoredChunk(data []byte) (*core.StoredChunk, error) {
	sc, _, err := core.StoredChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeError(err)
	}
	return &sc, nil
}

// MarshalIndexInfo serializes IndexInfo to bytes.
func MarshalIndexInfo(info *IndexInfo) []byte {
	buf := make([]byte, IndexInfoMUS.Size(*info))
	IndexInfoMUS.Marshal(*info, buf)
	return buf
}

// UnmarshalIndexInfo deserializes IndexInfo from bytes.
func UnmarshalIndexInfo(data []byte) (*IndexInfo, error) {
	info, _, err := IndexInfoMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeError(err)
	}
	return &info, nil
}

// decodeError classifies a decoding failure. Short input and lengths that
// run past the end of the input are reported as ErrTruncatedData.
func decodeError(err error) error {
	if errors.Is(err, mus.ErrTooSmallByteSlice) || errors.Is(err, core.ErrLengthOutOfRange) {
		return fmt.Errorf("%w: %w: %w", ErrSerializationFailed, ErrTruncatedData, err)
	}
	return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
}

type indexInfoMUS struct{}

func (s indexInfoMUS) Marshal(v IndexInfo, bs []byte) (n int) {
	n = varint.Int.Marshal(v.Chunks, bs)
	n += varint.Int.Marshal(v.Dimension, bs[n:])
	return n + varint.Int64.Marshal(v.CommittedAt.UnixMicro(), bs[n:])
}

func (s indexInfoMUS) Unmarshal(bs []byte) (v IndexInfo, n int, err error) {
	v.Chunks, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var m int
	v.Dimension, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	var micros int64
	micros, m, err = varint.Int64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.CommittedAt = time.UnixMicro(micros).UTC()
	return
}

func (s indexInfoMUS) Size(v IndexInfo) (size int) {
	size = varint.Int.Size(v.Chunks)
	size += varint.Int.Size(v.Dimension)
	return size + varint.Int64.Size(v.CommittedAt.UnixMicro())
}

func (s indexInfoMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
