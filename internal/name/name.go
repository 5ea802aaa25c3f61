// Package name implements interned identifiers: a string plus a
// precomputed 32-bit FNV-1a hash, used as the lookup key in every symbol
// table (spec.md §3 "Name").
package name

import "hash/fnv"

// Name is a byte-identical string paired with its hash. Two Names compare
// equal iff their Bytes are byte-equal; the Hash field is never compared
// on its own, and symbols.Scope keys its maps by Bytes, not by Hash.
type Name struct {
	Bytes string
	Hash  uint32
}

// New interns s, computing its hash.
func New(s string) Name {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return Name{Bytes: s, Hash: h.Sum32()}
}

// Equal reports whether two Names denote the same identifier.
func (n Name) Equal(o Name) bool { return n.Bytes == o.Bytes }

// Empty is the zero Name, used as a not-present sentinel.
var Empty = Name{}

// IsEmpty reports whether n is the zero Name.
func (n Name) IsEmpty() bool { return n.Bytes == "" }

func (n Name) String() string { return n.Bytes }
