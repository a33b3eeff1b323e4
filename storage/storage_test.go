package storage

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"sort"
	"testing"
)

// memTxn is a sorted in-memory Txn. Writes to keys with failPrefix fail.
type memTxn struct {
	kv         map[string][]byte
	failPrefix []byte
}

func newMemTxn() *memTxn {
	return &memTxn{kv: make(map[string][]byte)}
}

var errInjected = errors.New("injected write failure")

func (m *memTxn) Get(key []byte) ([]byte, error) {
	v, ok := m.kv[string(key)]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

func (m *memTxn) Set(key, val []byte) error {
	if m.failPrefix != nil && bytes.HasPrefix(key, m.failPrefix) {
		return errInjected
	}
	m.kv[string(key)] = append([]byte{}, val...)
	return nil
}

func (m *memTxn) Delete(key []byte) error {
	if m.failPrefix != nil && bytes.HasPrefix(key, m.failPrefix) {
		return errInjected
	}
	delete(m.kv, string(key))
	return nil
}

func (m *memTxn) Iterate(prefix, start []byte, fn func(key, val []byte) (bool, error)) error {
	var keys []string
	for k := range m.kv {
		if bytes.HasPrefix([]byte(k), prefix) && k >= string(start) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		next, err := fn([]byte(k), m.kv[k])
		if err != nil || !next {
			return err
		}
	}
	return nil
}

type testToken struct {
	Owner string
	URI   string
}

func newTestTokens() (*IndexedMap[testToken], *MultiIndex[testToken]) {
	owners := NewMultiIndex("tokens__owner", func(t testToken) string { return t.Owner })
	return NewIndexedMap[testToken]("tokens", owners), owners
}

func ids(t *testing.T, seq iter.Seq2[Record[testToken], error]) []string {
	t.Helper()
	records, err := Collect(seq)
	if err != nil {
		t.Fatal(err)
	}
	var res []string
	for _, r := range records {
		res = append(res, r.ID)
	}
	return res
}

func equalIds(a, b []string) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func TestItem(t *testing.T) {
	txn := newMemTxn()
	count := NewItem[uint64]("num_tokens")

	_, err := count.Load(txn)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty item => %v", err)
	}
	v, found, err := count.MayLoad(txn)
	if err != nil || found || v != 0 {
		t.Fatalf("MayLoad on empty item => %d %v %v", v, found, err)
	}

	err = count.Save(txn, 7)
	if err != nil {
		t.Fatal(err)
	}
	v, err = count.Load(txn)
	if err != nil || v != 7 {
		t.Fatalf("Load => %d %v", v, err)
	}

	v, err = count.Update(txn, func(n uint64) (uint64, error) { return n + 1, nil })
	if err != nil || v != 8 {
		t.Fatalf("Update => %d %v", v, err)
	}
	_, err = count.Update(txn, func(n uint64) (uint64, error) { return 0, errInjected })
	if err != errInjected {
		t.Fatalf("Update with failing fn => %v", err)
	}
	v, _ = count.Load(txn)
	if v != 8 {
		t.Fatalf("failed Update changed the value to %d", v)
	}

	err = count.Remove(txn)
	if err != nil {
		t.Fatal(err)
	}
	_, found, _ = count.MayLoad(txn)
	if found {
		t.Fatal("item still present after Remove")
	}
}

func TestNamespaceValidation(t *testing.T) {
	for _, ns := range []string{"", "a:b"} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("NewItem(%q) did not panic", ns)
				}
			}()
			NewItem[string](ns)
		}()
	}
}

func TestIndexedMapInsert(t *testing.T) {
	txn := newMemTxn()
	tokens, owners := newTestTokens()

	err := tokens.Insert(txn, "1", testToken{Owner: "alice", URI: "ipfs://1"})
	if err != nil {
		t.Fatal(err)
	}
	err = tokens.Insert(txn, "1", testToken{Owner: "bob"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicated Insert => %v", err)
	}
	tk, err := tokens.Load(txn, "1")
	if err != nil || tk.Owner != "alice" || tk.URI != "ipfs://1" {
		t.Fatalf("Load => %v %v", tk, err)
	}
	got := ids(t, owners.Range(txn, "bob", "", 0))
	if len(got) != 0 {
		t.Fatalf("rejected Insert indexed %v", got)
	}
	err = tokens.Insert(txn, "", testToken{Owner: "alice"})
	if err == nil {
		t.Fatal("Insert with an empty id succeeded")
	}

	_, err = tokens.Load(txn, "2")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load of absent id => %v", err)
	}
	found, err := tokens.Has(txn, "1")
	if err != nil || !found {
		t.Fatalf("Has => %v %v", found, err)
	}
}

func TestListByOwnerRoundTrip(t *testing.T) {
	txn := newMemTxn()
	tokens, owners := newTestTokens()

	want := []string{"a", "b", "c", "d", "e"}
	for _, id := range []string{"d", "b", "e", "a", "c"} {
		err := tokens.Insert(txn, id, testToken{Owner: "alice"})
		if err != nil {
			t.Fatal(err)
		}
	}
	for _, id := range []string{"f", "g"} {
		err := tokens.Insert(txn, id, testToken{Owner: "alicea"})
		if err != nil {
			t.Fatal(err)
		}
	}

	got := ids(t, owners.Range(txn, "alice", "", 0))
	if !equalIds(got, want) {
		t.Fatalf("Range(alice) => %v", got)
	}
	got = ids(t, owners.Range(txn, "alicea", "", 0))
	if !equalIds(got, []string{"f", "g"}) {
		t.Fatalf("Range(alicea) => %v", got)
	}
	n, err := owners.Count(txn, "alice")
	if err != nil || n != 5 {
		t.Fatalf("Count(alice) => %d %v", n, err)
	}

	// the sequence is restartable
	got = ids(t, owners.Range(txn, "alice", "", 0))
	if !equalIds(got, want) {
		t.Fatalf("second Range(alice) => %v", got)
	}
}

func TestListByOwnerPagination(t *testing.T) {
	txn := newMemTxn()
	tokens, owners := newTestTokens()

	var all []string
	for i := 0; i < 11; i++ {
		id := fmt.Sprintf("%03d", i)
		all = append(all, id)
		err := tokens.Insert(txn, id, testToken{Owner: "alice"})
		if err != nil {
			t.Fatal(err)
		}
	}

	var pages []string
	cursor := ""
	for round := 0; ; round++ {
		page := ids(t, owners.Range(txn, "alice", cursor, 4))
		if len(page) > 4 {
			t.Fatalf("page of %d entries", len(page))
		}
		if len(page) == 0 {
			break
		}
		if round > 3 {
			t.Fatal("pagination does not terminate")
		}
		pages = append(pages, page...)
		cursor = page[len(page)-1]
	}
	if !equalIds(pages, all) {
		t.Fatalf("paginated listing => %v", pages)
	}
}

func TestRangeEarlyBreak(t *testing.T) {
	txn := newMemTxn()
	tokens, owners := newTestTokens()
	for _, id := range []string{"1", "2", "3"} {
		err := tokens.Insert(txn, id, testToken{Owner: "alice"})
		if err != nil {
			t.Fatal(err)
		}
	}
	var seen []string
	for r, err := range owners.Range(txn, "alice", "", 0) {
		if err != nil {
			t.Fatal(err)
		}
		seen = append(seen, r.ID)
		if len(seen) == 2 {
			break
		}
	}
	if !equalIds(seen, []string{"1", "2"}) {
		t.Fatalf("early break => %v", seen)
	}
}

func TestUpdateReindexesOwner(t *testing.T) {
	txn := newMemTxn()
	tokens, owners := newTestTokens()
	for _, id := range []string{"1", "2"} {
		err := tokens.Insert(txn, id, testToken{Owner: "alice"})
		if err != nil {
			t.Fatal(err)
		}
	}

	tk, err := tokens.Update(txn, "1", func(tk testToken) (testToken, error) {
		tk.Owner = "bob"
		return tk, nil
	})
	if err != nil || tk.Owner != "bob" {
		t.Fatalf("Update => %v %v", tk, err)
	}
	got := ids(t, owners.Range(txn, "alice", "", 0))
	if !equalIds(got, []string{"2"}) {
		t.Fatalf("Range(alice) after reindex => %v", got)
	}
	got = ids(t, owners.Range(txn, "bob", "", 0))
	if !equalIds(got, []string{"1"}) {
		t.Fatalf("Range(bob) after reindex => %v", got)
	}

	// a partial update keeps exactly one index entry
	_, err = tokens.Update(txn, "1", func(tk testToken) (testToken, error) {
		tk.URI = "ipfs://new"
		return tk, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	got = ids(t, owners.Range(txn, "bob", "", 0))
	if !equalIds(got, []string{"1"}) {
		t.Fatalf("Range(bob) after partial update => %v", got)
	}

	_, err = tokens.Update(txn, "9", func(tk testToken) (testToken, error) { return tk, nil })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update of absent id => %v", err)
	}
}

func TestSaveUpserts(t *testing.T) {
	txn := newMemTxn()
	tokens, owners := newTestTokens()

	err := tokens.Save(txn, "1", testToken{Owner: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	err = tokens.Save(txn, "1", testToken{Owner: "carol"})
	if err != nil {
		t.Fatal(err)
	}
	got := ids(t, owners.Range(txn, "alice", "", 0))
	if len(got) != 0 {
		t.Fatalf("stale index entries %v", got)
	}
	got = ids(t, owners.Range(txn, "carol", "", 0))
	if !equalIds(got, []string{"1"}) {
		t.Fatalf("Range(carol) => %v", got)
	}
}

func TestRemove(t *testing.T) {
	txn := newMemTxn()
	tokens, owners := newTestTokens()
	err := tokens.Insert(txn, "1", testToken{Owner: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	err = tokens.Remove(txn, "1")
	if err != nil {
		t.Fatal(err)
	}
	err = tokens.Remove(txn, "1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Remove => %v", err)
	}
	got := ids(t, owners.Range(txn, "alice", "", 0))
	if len(got) != 0 {
		t.Fatalf("orphaned index entries %v", got)
	}
	if len(txn.kv) != 0 {
		t.Fatalf("keys left after Remove: %d", len(txn.kv))
	}
}

func TestRangeAll(t *testing.T) {
	txn := newMemTxn()
	tokens, _ := newTestTokens()
	for i, id := range []string{"c", "a", "b"} {
		err := tokens.Insert(txn, id, testToken{Owner: fmt.Sprint(i)})
		if err != nil {
			t.Fatal(err)
		}
	}
	got := ids(t, tokens.Range(txn, "", 0))
	if !equalIds(got, []string{"a", "b", "c"}) {
		t.Fatalf("Range => %v", got)
	}
	got = ids(t, tokens.Range(txn, "a", 1))
	if !equalIds(got, []string{"b"}) {
		t.Fatalf("Range after a => %v", got)
	}
}

func TestIndexWriteFailureLeavesNoRecord(t *testing.T) {
	txn := newMemTxn()
	tokens, owners := newTestTokens()
	err := tokens.Insert(txn, "1", testToken{Owner: "alice"})
	if err != nil {
		t.Fatal(err)
	}

	txn.failPrefix = []byte("tokens__owner:")
	err = tokens.Insert(txn, "2", testToken{Owner: "alice"})
	if err != errInjected {
		t.Fatalf("Insert with failing index => %v", err)
	}
	_, err = tokens.Update(txn, "1", func(tk testToken) (testToken, error) {
		tk.Owner = "bob"
		return tk, nil
	})
	if err != errInjected {
		t.Fatalf("Update with failing index => %v", err)
	}
	txn.failPrefix = nil

	found, _ := tokens.Has(txn, "2")
	if found {
		t.Fatal("record written without its index entry")
	}
	tk, _ := tokens.Load(txn, "1")
	if tk.Owner != "alice" {
		t.Fatalf("failed Update changed the owner to %s", tk.Owner)
	}
	got := ids(t, owners.Range(txn, "alice", "", 0))
	if !equalIds(got, []string{"1"}) {
		t.Fatalf("Range(alice) => %v", got)
	}
}

func TestSortedMultiIndex(t *testing.T) {
	txn := newMemTxn()
	type job struct {
		State string
		Seq   byte
	}
	states := NewSortedMultiIndex("jobs__state", func(j job) string { return j.State }, func(j job) []byte { return []byte{j.Seq} })
	jobs := NewIndexedMap[job]("jobs", states)

	for id, seq := range map[string]byte{"z": 1, "y": 2, "x": 3} {
		err := jobs.Insert(txn, id, job{State: "queued", Seq: seq})
		if err != nil {
			t.Fatal(err)
		}
	}
	var got []string
	for r, err := range states.Range(txn, "queued", "", 2) {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, r.ID)
	}
	if !equalIds(got, []string{"z", "y"}) {
		t.Fatalf("sorted Range => %v", got)
	}

	_, err := Collect(states.Range(txn, "queued", "z", 0))
	if err == nil {
		t.Fatal("sorted Range accepted an id cursor")
	}
}
