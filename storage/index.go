package storage

import (
	"fmt"
	"iter"
)

// IndexSpec derives secondary entries from a value. An IndexedMap calls its
// specs on every mutation so the entries always match the stored records.
// Each entry stores the record id as its value.
type IndexSpec[V any] interface {
	Namespace() string
	// Keys returns the index entries for the record id with value v.
	Keys(id string, v V) [][]byte
}

// MultiIndex is a non-unique index from an extracted string, e.g. an owner,
// to the ids of all records carrying it. Entries of one value are ordered by
// the optional sort key, then by id.
type MultiIndex[V any] struct {
	namespace string
	extract   func(V) string
	sort      func(V) []byte
	primary   *IndexedMap[V]
}

func NewMultiIndex[V any](namespace string, extract func(V) string) *MultiIndex[V] {
	checkNamespace(namespace)
	return &MultiIndex[V]{namespace: namespace, extract: extract}
}

func NewSortedMultiIndex[V any](namespace string, extract func(V) string, sort func(V) []byte) *MultiIndex[V] {
	mi := NewMultiIndex(namespace, extract)
	mi.sort = sort
	return mi
}

func (mi *MultiIndex[V]) Namespace() string {
	return mi.namespace
}

func (mi *MultiIndex[V]) Keys(id string, v V) [][]byte {
	key := indexPrefix(mi.namespace, mi.extract(v))
	if mi.sort != nil {
		key = append(key, mi.sort(v)...)
	}
	return [][]byte{append(key, id...)}
}

// Range lists the records whose extracted value equals val in index order.
// Without a sort key the order is by id and startAfter is an exclusive id
// cursor. Sorted indexes take no cursor. A non positive limit lists them all.
func (mi *MultiIndex[V]) Range(txn Txn, val, startAfter string, limit int) iter.Seq2[Record[V], error] {
	if mi.primary == nil {
		panic(mi.namespace)
	}
	prefix := indexPrefix(mi.namespace, val)
	return func(yield func(Record[V], error) bool) {
		if mi.sort != nil && startAfter != "" {
			yield(Record[V]{}, fmt.Errorf("index %s is sorted and takes no id cursor", mi.namespace))
			return
		}
		count := 0
		err := txn.Iterate(prefix, startKey(prefix, startAfter), func(_, pk []byte) (bool, error) {
			id := string(pk)
			v, err := mi.primary.Load(txn, id)
			if err != nil {
				return false, err
			}
			if !yield(Record[V]{ID: id, Value: v}, nil) {
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

// Count returns the number of records whose extracted value equals val.
func (mi *MultiIndex[V]) Count(txn Txn, val string) (int, error) {
	prefix := indexPrefix(mi.namespace, val)
	count := 0
	err := txn.Iterate(prefix, prefix, func(_, _ []byte) (bool, error) {
		count++
		return true, nil
	})
	return count, err
}
