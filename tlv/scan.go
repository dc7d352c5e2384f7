// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"errors"
	"math"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/internal/vlq"
)

// maxLengthOctets is the maximum number of significant long-form length octets.
// Longer lengths cannot be represented by an int. Leading zero octets are not
// counted.
const maxLengthOctets = 8

// ParseIdentifier parses the identifier octets at the start of b. It returns
// the tag, whether the constructed bit is set, and the number of bytes
// consumed.
//
// Tag numbers of 31 and above use the high-tag-number form: the low five bits
// of the first byte are all set and the number follows in base-128 with the
// eighth bit of each byte marking continuation. The first byte of the number
// must not be 0x80. The high-tag-number form is accepted for small numbers as
// well.
func ParseIdentifier(b Buffer) (tag asn1.Tag, constructed bool, n int, err error) {
	if b.Len() == 0 {
		return tag, false, 0, syntaxError(b, Header{}, ErrTruncated)
	}
	c := b.Byte(0)
	tag.Class = asn1.Class(c >> 6)
	constructed = c&0x20 == 0x20
	if c&0x1f != 0x1f {
		tag.Number = uint(c & 0x1f)
		return tag, constructed, 1, nil
	}
	num, k, err := vlq.ParseMinimal[uint](b.Advance(1).Bytes())
	if err != nil {
		return tag, constructed, 0, syntaxError(b, Header{}, ErrMalformedTag)
	}
	tag.Number = num
	return tag, constructed, 1 + k, nil
}

// ParseLength parses the length octets at the start of b. The constructed flag
// of the associated identifier decides whether the indefinite form is legal.
// ParseLength returns the content length, or [LengthIndefinite], and the number
// of bytes consumed.
func ParseLength(b Buffer, constructed bool) (length int, n int, err error) {
	if b.Len() == 0 {
		return 0, 0, syntaxError(b, Header{}, ErrTruncated)
	}
	c := b.Byte(0)
	switch {
	case c&0x80 == 0:
		return int(c), 1, nil
	case c == 0x80 && constructed:
		return LengthIndefinite, 1, nil
	case c == 0x80:
		return 0, 0, syntaxError(b, Header{}, ErrMalformedLength)
	case c == 0xff:
		return 0, 0, syntaxError(b, Header{}, ErrReservedLength)
	}

	numBytes := int(c & 0x7f)
	if b.Len() < 1+numBytes {
		return 0, 0, syntaxError(b, Header{}, ErrTruncated)
	}
	i := 1
	for i <= numBytes && b.Byte(i) == 0 {
		i++
	}
	if numBytes-i+1 > maxLengthOctets {
		return 0, 0, syntaxError(b, Header{}, ErrMalformedLength)
	}
	var l uint64
	for ; i <= numBytes; i++ {
		l = l<<8 | uint64(b.Byte(i))
	}
	if l > math.MaxInt {
		return 0, 0, syntaxError(b, Header{}, ErrMalformedLength)
	}
	return int(l), 1 + numBytes, nil
}

// ParseHeader parses the identifier and length octets at the start of b.
func ParseHeader(b Buffer) (Header, error) {
	tag, constructed, n, err := ParseIdentifier(b)
	if err != nil {
		return Header{}, err
	}
	length, m, err := ParseLength(b.Advance(n), constructed)
	if err != nil {
		var serr *SyntaxError
		if errors.As(err, &serr) {
			// report the location of the whole header
			serr.ByteOffset = b.Offset()
		}
		return Header{}, err
	}
	return Header{Tag: tag, Constructed: constructed, Length: length, Size: n + m}, nil
}

// Split parses the TLV at the start of b. It returns the header, the window of
// the content octets, and the total size of the TLV. For indefinite-length
// values the content window excludes the end-of-contents marker while size
// includes it. maxDepth limits the nesting of indefinite-length values as
// described for [ResolveIndefinite].
func Split(b Buffer, maxDepth int) (h Header, content Buffer, size int, err error) {
	if h, err = ParseHeader(b); err != nil {
		return h, content, 0, err
	}
	if h.Tag == asn1.Universal(TagEndOfContents) {
		return h, content, 0, syntaxError(b, h, errInvalidEOC)
	}
	rest := b.Advance(h.Size)
	if h.Length == LengthIndefinite {
		span, err := ResolveIndefinite(rest, maxDepth)
		if err != nil {
			return h, content, 0, err
		}
		return h, rest.Prefix(span - 2), h.Size + span, nil
	}
	if h.Length > rest.Len() {
		return h, content, 0, syntaxError(b, h, ErrTruncated)
	}
	return h, rest.Prefix(h.Length), h.Size + h.Length, nil
}
