// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"bytes"
	"strconv"
)

// Buffer is an immutable window into a byte slice. The zero value is an empty
// window.
//
// Methods that derive a new window from an existing one panic if the requested
// bounds lie outside the window. Parsing code in this module checks bounds
// against [Buffer.Len] before deriving windows, so such a panic indicates a
// programming error, not malformed input.
type Buffer struct {
	b          []byte
	start, end int
}

// NewBuffer returns a window spanning all of b. The buffer does not copy b, so
// b must not be modified while the window or any window derived from it is in
// use.
func NewBuffer(b []byte) Buffer {
	return Buffer{b: b, end: len(b)}
}

// Len returns the number of bytes in the window.
func (b Buffer) Len() int {
	return b.end - b.start
}

// Offset returns the position of the start of the window within the byte
// slice passed to [NewBuffer].
func (b Buffer) Offset() int {
	return b.start
}

// Bytes returns the bytes of the window. The returned slice aliases the
// underlying storage. Its capacity is limited to the window so that appending
// to it never overwrites bytes beyond the window.
func (b Buffer) Bytes() []byte {
	return b.b[b.start:b.end:b.end]
}

// Clone returns a copy of the bytes in the window that may be retained by the
// caller. The result is never nil.
func (b Buffer) Clone() []byte {
	ret := bytes.Clone(b.Bytes())
	if ret == nil {
		ret = []byte{}
	}
	return ret
}

// Byte returns the byte at index i of the window.
func (b Buffer) Byte(i int) byte {
	if i < 0 || i >= b.Len() {
		panic("tlv: index " + strconv.Itoa(i) + " out of range for window of length " + strconv.Itoa(b.Len()))
	}
	return b.b[b.start+i]
}

// Advance returns the window that remains after dropping the first n bytes.
func (b Buffer) Advance(n int) Buffer {
	if n < 0 || n > b.Len() {
		panic("tlv: cannot advance window of length " + strconv.Itoa(b.Len()) + " by " + strconv.Itoa(n))
	}
	b.start += n
	return b
}

// Prefix returns the window of the first n bytes.
func (b Buffer) Prefix(n int) Buffer {
	if n < 0 || n > b.Len() {
		panic("tlv: prefix " + strconv.Itoa(n) + " out of range for window of length " + strconv.Itoa(b.Len()))
	}
	b.end = b.start + n
	return b
}

// Slice returns the window of the bytes in the range [i, j).
func (b Buffer) Slice(i, j int) Buffer {
	return b.Advance(i).Prefix(j - i)
}

// HasEndOfContents reports whether the window starts with an end-of-contents
// marker.
func (b Buffer) HasEndOfContents() bool {
	return b.Len() >= 2 && b.b[b.start] == 0 && b.b[b.start+1] == 0
}

// String returns a short description of the window bounds.
func (b Buffer) String() string {
	return "tlv.Buffer[" + strconv.Itoa(b.start) + ":" + strconv.Itoa(b.end) + "]"
}
