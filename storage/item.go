package storage

// Item is a single value persisted under one fixed key.
type Item[T any] struct {
	namespace string
}

func NewItem[T any](namespace string) *Item[T] {
	checkNamespace(namespace)
	return &Item[T]{namespace: namespace}
}

func (i *Item[T]) Namespace() string {
	return i.namespace
}

func (i *Item[T]) Load(txn Txn) (T, error) {
	v, ok, err := i.MayLoad(txn)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, notFound("item", i.namespace)
	}
	return v, nil
}

func (i *Item[T]) MayLoad(txn Txn) (T, bool, error) {
	var v T
	val, err := txn.Get([]byte(i.namespace))
	if err != nil || val == nil {
		return v, false, err
	}
	v, err = decode[T](val)
	return v, err == nil, err
}

func (i *Item[T]) Save(txn Txn, v T) error {
	return txn.Set([]byte(i.namespace), encode(v))
}

func (i *Item[T]) Remove(txn Txn) error {
	return txn.Delete([]byte(i.namespace))
}

// Update loads the value, which must exist, and saves what fn returns.
func (i *Item[T]) Update(txn Txn, fn func(T) (T, error)) (T, error) {
	v, err := i.Load(txn)
	if err != nil {
		return v, err
	}
	v, err = fn(v)
	if err != nil {
		return v, err
	}
	return v, i.Save(txn, v)
}
