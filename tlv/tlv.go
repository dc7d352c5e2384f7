// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tlv implements scanning of the tag-length-value (TLV) format used by
// the Basic Encoding Rules (BER) and related encoding rules as specified in
// [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// This package deals with the syntactic layer of TLV-encoding while other
// packages such as [codello.dev/asn1-template/template] and
// [codello.dev/asn1-template/ber] deal with the semantic layer of BER.
//
// # Windows
//
// All scanning operates on a [Buffer]: an immutable window into a byte slice.
// Windows are never mutated. Advancing produces a new window so that a parent
// can hand out sub-windows of its content without risking that a child reads
// bytes outside its parent's boundary.
//
// # Headers and Lengths
//
// The identifier and length octets of a TLV (we call them a header) are
// represented by the [Header] type. Values can use the primitive or constructed
// encoding. Constructed values can end implicitly (when using definite-length
// encoding) or explicitly with an end-of-contents marker (indefinite length).
// [ResolveIndefinite] computes the extent of an indefinite-length value.
//
// Input is treated as untrusted. Every function in this package validates
// bounds before reading and reports malformed input through a [*SyntaxError]
// wrapping one of the sentinel errors of this package. Nesting of
// indefinite-length values is bounded by a caller supplied depth.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package tlv

import (
	"math/bits"
	"strconv"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/internal/vlq"
)

// TagEndOfContents is the tag number of the end-of-contents marker that
// terminates an indefinite-length value.
const TagEndOfContents = asn1.TagReserved

// EndOfContents is the header of the end-of-contents marker. Its encoding
// consists of two zero bytes.
var EndOfContents = Header{Tag: asn1.Universal(TagEndOfContents), Size: 2}

// LengthIndefinite when used as a magic number for the length of a [Header]
// indicates that the data value is encoded using the constructed
// indefinite-length format.
const LengthIndefinite = -1

// DefaultMaxDepth is the nesting depth used when a caller does not provide
// its own limit.
const DefaultMaxDepth = 256

// Header represents a TLV header. The [Header.Length] may be [LengthIndefinite]
// if an indefinite-length encoding is used. It is invalid to use the
// indefinite-length encoding when [Header.Constructed] = false.
//
// Size is the number of bytes occupied by the identifier and length octets.
// The content of the TLV starts Size bytes after the start of the header.
type Header struct {
	Tag         asn1.Tag
	Constructed bool
	Length      int
	Size        int
}

// IsEndOfContents reports whether h is an end-of-contents marker.
func (h Header) IsEndOfContents() bool {
	return h.Tag == asn1.Universal(TagEndOfContents) && !h.Constructed && h.Length == 0
}

// MinimalSize returns the number of identifier and length octets of the
// shortest encoding of h. A Size larger than the minimal size indicates a
// redundant high-tag-number form or a padded long-form length, both of which
// are allowed by BER but not by DER.
func (h Header) MinimalSize() int {
	n := 1
	if h.Tag.Number >= 31 {
		n += vlq.Length(h.Tag.Number)
	}
	if h.Length == LengthIndefinite || h.Length < 0x80 {
		return n + 1
	}
	return n + 1 + (bits.Len(uint(h.Length))+7)/8
}

// String returns a string representation of h.
func (h Header) String() string {
	if h.IsEndOfContents() {
		return "EndOfContents"
	}
	s := h.Tag.String()
	if h.Constructed {
		s += "/c"
	} else {
		s += "/p"
	}
	if h.Length == LengthIndefinite {
		return s + ":indefinite"
	}
	return s + ":" + strconv.Itoa(h.Length)
}

// requireKeyedLiterals can be embedded in a struct to require keyed literals.
type requireKeyedLiterals struct{}

// nonComparable can be embedded in a struct to prevent comparability.
type nonComparable [0]func()
