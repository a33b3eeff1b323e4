package storage

// Txn is the view of the key-value store inside one transition. Writes must be
// visible to later reads of the same Txn.
type Txn interface {
	// Get returns nil, nil when the key is absent.
	Get(key []byte) ([]byte, error)
	Set(key, val []byte) error
	Delete(key []byte) error

	// Iterate visits keys with the prefix in ascending order, starting at the
	// first key >= start. The key and value are only valid during the call.
	Iterate(prefix, start []byte, fn func(key, val []byte) (bool, error)) error
}

// Store runs transitions against a durable engine. A Transition commits all
// of fn's writes when fn returns nil and none of them otherwise.
type Store interface {
	Transition(fn func(txn Txn) error) error
	View(fn func(txn Txn) error) error
}
