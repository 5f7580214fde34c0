// Package leveldb implements the index engine on top of goleveldb, one
// ordered keyspace per logical table separated by a one-byte tag.
package leveldb

import (
	"github.com/syndtr/goleveldb/leveldb"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const (
	tagOrderStatic byte = iota + 1
	tagOrderValue
	tagOrderList
	tagOrderLockList
	tagBuyLock
	tagSellLock
)

// Open opens or creates the store at path.
func Open(path string) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	return db, errors.Wrap(err, "failed to open leveldb storage")
}

func tagged(tag byte, key []byte) []byte {
	buf := make([]byte, 0, len(key)+1)
	buf = append(buf, tag)
	return append(buf, key...)
}
