// Package vlq implements decoding of [Variable-length quantities] as used in
// BER tag numbers and object identifier arcs. A VLQ is essentially a base-128
// representation of an unsigned integer with the eighth bit of each byte
// marking continuation.
//
// [Variable-length quantities]: https://en.wikipedia.org/wiki/Variable-length_quantity
package vlq

import (
	"errors"
	"math/bits"
	"unsafe"
)

var (
	ErrTruncated  = errors.New("vlq is truncated")
	ErrNotMinimal = errors.New("vlq is not minimally encoded")
	ErrOverflow   = errors.New("vlq too large for target type")
)

// Parse decodes an unsigned VLQ from the start of b and returns its value
// together with the number of bytes it occupies. The maximum allowed value is
// limited by the size of T.
//
// Parse ignores an arbitrary amount of leading zeros (encoded as 0x80 bytes).
// Use [ParseMinimal] to parse a minimally-encoded VLQ. If b ends before the
// final byte of the VLQ, ErrTruncated is returned.
func Parse[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](b []byte) (T, int, error) {
	return parse[T](b, false)
}

// ParseMinimal works like [Parse] but returns an error if the VLQ is not
// minimally encoded (i.e. if it starts with a 0x80 byte).
func ParseMinimal[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](b []byte) (T, int, error) {
	return parse[T](b, true)
}

// parse implements [Parse] and [ParseMinimal]. If minimal is true, the encoded
// VLQ must be minimally encoded.
func parse[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](b []byte, minimal bool) (ret T, n int, err error) {
	if len(b) == 0 {
		return 0, 0, ErrTruncated
	}
	if b[0] == 0x80 && minimal {
		return 0, 0, ErrNotMinimal
	}

	numBits := 0
	for n < len(b) {
		c := b[n]
		n++
		if numBits == 0 {
			numBits = bits.Len8(c & 0x7f)
		} else {
			numBits += 7
		}
		if numBits > int(unsafe.Sizeof(ret)*8) {
			return 0, n, ErrOverflow
		}
		ret <<= 7
		ret |= T(c & 0x7f)
		if c&0x80 == 0 {
			return ret, n, nil
		}
	}
	return 0, n, ErrTruncated
}

// Length returns the number of bytes needed to encode n as a VLQ.
func Length[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](n T) int {
	if n == 0 {
		return 1
	}
	l := 0
	for i := n; i > 0; i >>= 7 {
		l++
	}
	return l
}
