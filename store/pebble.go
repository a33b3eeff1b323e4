package store

import (
	"bytes"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/registry/storage"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

type PebbleStore struct {
	db *pebble.DB
}

func OpenPebble(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	logger.Printf("Pebble opened at %s\n", path)
	return &PebbleStore{db: db}, nil
}

func OpenPebbleInMemory() (*PebbleStore, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

func (ps *PebbleStore) Close() error {
	return ps.db.Close()
}

// Transition stages fn's writes in an indexed batch, which serves reads of
// its own writes, and commits the batch only when fn returns nil.
func (ps *PebbleStore) Transition(fn func(txn storage.Txn) error) error {
	b := ps.db.NewIndexedBatch()
	defer b.Close()

	err := fn(&pebbleTxn{r: b, w: b})
	if err != nil {
		return err
	}
	return b.Commit(pebble.Sync)
}

func (ps *PebbleStore) View(fn func(txn storage.Txn) error) error {
	snap := ps.db.NewSnapshot()
	defer snap.Close()

	return fn(&pebbleTxn{r: snap})
}

func (ps *PebbleStore) WriteProperty(key, val []byte) error {
	return ps.db.Set(key, val, pebble.Sync)
}

func (ps *PebbleStore) ReadProperty(key []byte) ([]byte, error) {
	return pebbleGet(ps.db, key)
}

type pebbleTxn struct {
	r pebble.Reader
	w pebble.Writer
}

func (pt *pebbleTxn) Get(key []byte) ([]byte, error) {
	return pebbleGet(pt.r, key)
}

func (pt *pebbleTxn) Set(key, val []byte) error {
	if pt.w == nil {
		return pebble.ErrReadOnly
	}
	return pt.w.Set(key, val, nil)
}

func (pt *pebbleTxn) Delete(key []byte) error {
	if pt.w == nil {
		return pebble.ErrReadOnly
	}
	return pt.w.Delete(key, nil)
}

func (pt *pebbleTxn) Iterate(prefix, start []byte, fn func(key, val []byte) (bool, error)) error {
	lower := prefix
	if bytes.Compare(start, prefix) > 0 {
		lower = start
	}
	it, err := pt.r.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer it.Close()

	for it.First(); it.Valid(); it.Next() {
		key := append([]byte{}, it.Key()...)
		val := append([]byte{}, it.Value()...)
		next, err := fn(key, val)
		if err != nil || !next {
			return err
		}
	}
	return it.Error()
}

func pebbleGet(r pebble.Reader, key []byte) ([]byte, error) {
	val, closer, err := r.Get(key)
	if err == pebble.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte{}, val...), nil
}

func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
