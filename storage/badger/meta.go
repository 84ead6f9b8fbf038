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


package badger

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docindex/storage"
)

func saveIndexInfo(backend *Backend, info *storage.IndexInfo) error {
	return backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(infoKey), storage.MarshalIndexInfo(info)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// loadIndexInfo returns storage.ErrNotFound when the index was never committed.
func loadIndexInfo(backend *Backend) (*storage.IndexInfo, error) {
	var info *storage.IndexInfo
	err := backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(infoKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			info, unmarshalErr = storage.UnmarshalIndexInfo(val)
			return unmarshalErr
		})
	}, false)

	return info, err
}
