package bench

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// digest is an order-independent fingerprint of a multiset of values:
// the wrapping sum of each value's xxh3 hash.
type digest uint64

func (d *digest) add(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	*d += digest(xxh3.Hash(b[:]))
}

func (d *digest) merge(o digest) {
	*d += o
}
