package storage

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const namespaceSeparator = ":"

func checkNamespace(ns string) {
	if ns == "" || strings.Contains(ns, namespaceSeparator) {
		panic(fmt.Errorf("invalid namespace %q", ns))
	}
}

func primaryPrefix(ns string) []byte {
	return []byte(ns + namespaceSeparator)
}

func primaryKey(ns, id string) []byte {
	return append(primaryPrefix(ns), id...)
}

// indexPrefix length-prefixes the index value so that one value is never a
// prefix of another value's entries.
func indexPrefix(ns, val string) []byte {
	if len(val) > 0xffff {
		panic(len(val))
	}
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(len(val)))
	key := append(primaryPrefix(ns), buf...)
	return append(key, val...)
}

func indexKey(ns, val, id string) []byte {
	return append(indexPrefix(ns, val), id...)
}

// startKey returns the first key strictly after prefix+after, or the prefix
// itself when after is empty.
func startKey(prefix []byte, after string) []byte {
	if after == "" {
		return prefix
	}
	key := append(append([]byte{}, prefix...), after...)
	return append(key, 0)
}
