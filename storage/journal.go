package storage

// journal stages the writes of one collection mutation. The record write and
// its index writes are applied together; a failed write reverts the writes
// already applied so no half-indexed record is left in the transition.
type journal struct {
	entries []journalEntry
}

type journalEntry struct {
	key []byte
	val []byte // nil for a delete
}

func (j *journal) set(key, val []byte) {
	j.entries = append(j.entries, journalEntry{key: key, val: val})
}

func (j *journal) delete(key []byte) {
	j.entries = append(j.entries, journalEntry{key: key})
}

func (j *journal) apply(txn Txn) error {
	undo := make([]journalEntry, 0, len(j.entries))
	for _, e := range j.entries {
		old, err := txn.Get(e.key)
		if err != nil {
			return j.revert(txn, undo, err)
		}
		if e.val == nil {
			err = txn.Delete(e.key)
		} else {
			err = txn.Set(e.key, e.val)
		}
		if err != nil {
			return j.revert(txn, undo, err)
		}
		undo = append(undo, journalEntry{key: e.key, val: old})
	}
	return nil
}

func (j *journal) revert(txn Txn, undo []journalEntry, cause error) error {
	for i := len(undo) - 1; i >= 0; i-- {
		e := undo[i]
		if e.val == nil {
			err := txn.Delete(e.key)
			if err != nil {
				return err
			}
		} else {
			err := txn.Set(e.key, e.val)
			if err != nil {
				return err
			}
		}
	}
	return cause
}
