package storage

import (
	"errors"
	"iter"
)

type Record[V any] struct {
	ID    string
	Value V
}

// IndexedMap stores values by a string id and keeps every registered index
// in lockstep with the records.
type IndexedMap[V any] struct {
	namespace string
	indexes   []IndexSpec[V]
}

func NewIndexedMap[V any](namespace string, indexes ...IndexSpec[V]) *IndexedMap[V] {
	checkNamespace(namespace)
	m := &IndexedMap[V]{namespace: namespace, indexes: indexes}
	for _, idx := range indexes {
		if idx.Namespace() == namespace {
			panic(namespace)
		}
		if mi, ok := idx.(*MultiIndex[V]); ok {
			mi.primary = m
		}
	}
	return m
}

func (m *IndexedMap[V]) Namespace() string {
	return m.namespace
}

// Namespaces returns the namespaces of the map and all its indexes.
func (m *IndexedMap[V]) Namespaces() []string {
	nss := []string{m.namespace}
	for _, idx := range m.indexes {
		nss = append(nss, idx.Namespace())
	}
	return nss
}

func (m *IndexedMap[V]) Load(txn Txn, id string) (V, error) {
	v, ok, err := m.MayLoad(txn, id)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, notFound(m.namespace, id)
	}
	return v, nil
}

func (m *IndexedMap[V]) MayLoad(txn Txn, id string) (V, bool, error) {
	var v V
	val, err := txn.Get(primaryKey(m.namespace, id))
	if err != nil || val == nil {
		return v, false, err
	}
	v, err = decode[V](val)
	return v, err == nil, err
}

func (m *IndexedMap[V]) Has(txn Txn, id string) (bool, error) {
	val, err := txn.Get(primaryKey(m.namespace, id))
	return val != nil, err
}

func (m *IndexedMap[V]) Insert(txn Txn, id string, v V) error {
	if id == "" {
		return errors.New("empty record id")
	}
	_, found, err := m.MayLoad(txn, id)
	if err != nil {
		return err
	} else if found {
		return alreadyExists(m.namespace, id)
	}
	return m.replace(txn, id, nil, &v)
}

// Save writes v under id whether or not the id is present.
func (m *IndexedMap[V]) Save(txn Txn, id string, v V) error {
	if id == "" {
		return errors.New("empty record id")
	}
	old, found, err := m.MayLoad(txn, id)
	if err != nil {
		return err
	}
	if !found {
		return m.replace(txn, id, nil, &v)
	}
	return m.replace(txn, id, &old, &v)
}

// Update applies fn to the present value of id and stores the result,
// moving the index entries whose extracted keys changed.
func (m *IndexedMap[V]) Update(txn Txn, id string, fn func(V) (V, error)) (V, error) {
	old, err := m.Load(txn, id)
	if err != nil {
		return old, err
	}
	v, err := fn(old)
	if err != nil {
		return v, err
	}
	// fn may mutate shared slices of old, so the old index keys are taken
	// from a fresh copy of the stored record.
	prev, err := m.Load(txn, id)
	if err != nil {
		return v, err
	}
	return v, m.replace(txn, id, &prev, &v)
}

func (m *IndexedMap[V]) Remove(txn Txn, id string) error {
	old, err := m.Load(txn, id)
	if err != nil {
		return err
	}
	return m.replace(txn, id, &old, nil)
}

// Range lists all records ordered by id, starting after the id startAfter.
// A non positive limit lists them all.
func (m *IndexedMap[V]) Range(txn Txn, startAfter string, limit int) iter.Seq2[Record[V], error] {
	prefix := primaryPrefix(m.namespace)
	return func(yield func(Record[V], error) bool) {
		count := 0
		err := txn.Iterate(prefix, startKey(prefix, startAfter), func(key, val []byte) (bool, error) {
			v, err := decode[V](val)
			if err != nil {
				return false, err
			}
			if !yield(Record[V]{ID: string(key[len(prefix):]), Value: v}, nil) {
				return false, nil
			}
			count++
			return limit <= 0 || count < limit, nil
		})
		if err != nil {
			yield(Record[V]{}, err)
		}
	}
}

func (m *IndexedMap[V]) replace(txn Txn, id string, old, v *V) error {
	j := &journal{}
	if old != nil {
		for _, idx := range m.indexes {
			for _, k := range idx.Keys(id, *old) {
				j.delete(k)
			}
		}
	}
	key := primaryKey(m.namespace, id)
	if v == nil {
		j.delete(key)
	} else {
		j.set(key, encode(*v))
		for _, idx := range m.indexes {
			for _, k := range idx.Keys(id, *v) {
				j.set(k, []byte(id))
			}
		}
	}
	return j.apply(txn)
}

// Collect drains a sequence, stopping at the first error.
func Collect[V any](seq iter.Seq2[Record[V], error]) ([]Record[V], error) {
	var records []Record[V]
	for r, err := range seq {
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
