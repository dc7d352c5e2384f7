// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ber decodes values encoded with the ASN.1 Basic Encoding Rules (BER)
// into Go values, driven by templates. The Basic Encoding Rules are defined in
// [Rec. ITU-T X.690]. Because DER is a subset of BER, DER-encoded input is
// accepted as well.
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// Every value is located through a [template.Template] describing the chain of
// tags wrapping it. The template of a Go type is determined as follows:
//
//   - Types implementing [Schema] provide their own template.
//   - Structs decode from a SEQUENCE, or a SET if the `asn1:"set"` tag is used.
//   - Slices other than []byte decode from a SEQUENCE OF (or SET OF). Each
//     element is located using the template of the element type.
//   - All other supported types use the universal tag of the corresponding ASN.1
//     type. See package asn1 for the mapping.
//
// Structured types decode either from an explicit list of field descriptors
// (see [Record]) or, for plain structs, from their fields in declaration order.
// The `asn1` struct tag modifies the template of a struct field:
//
//	tag:x       the field uses the context-specific tag x (IMPLICIT)
//	application the tag class is APPLICATION instead of context-specific
//	private     the tag class is PRIVATE instead of context-specific
//	universal   the tag class is UNIVERSAL instead of context-specific
//	explicit    the tag wraps the value (EXPLICIT) instead of replacing its tag
//	optional    the field may be absent, see [Field.Optional]
//	set         a SET is expected instead of a SEQUENCE
//	utf8, ascii, latin1, utf16, utf32
//	            the text encoding of a string field
//	-           the field is ignored
//
// The following limitations apply:
//
//   - When decoding an ASN.1 INTEGER type into a Go integer the size of the
//     integer is limited by the size of the Go type. This limitation does not apply
//     to [*math/big.Int].
//   - INTEGER content octets are interpreted as an unsigned magnitude unless
//     [Decoder.SignedIntegers] is set. This matches the behavior of many
//     receipt and envelope parsers but differs from the two's-complement
//     semantics of X.690 for negative values.
//   - When decoding into a byte array, the number of bytes in the value must
//     match the length of the array exactly.
//   - Decoding into an interface{} stores the value as [RawValue].
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package ber

import (
	"fmt"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/template"
)

// A RawValue represents an un-decoded ASN.1 object. Tag and Constructed
// describe the innermost layer of the matched template, Bytes holds its content
// octets. FullBytes holds the complete outermost TLV including all wrapping
// layers. Both slices are copies that may be retained.
type RawValue struct {
	Tag         asn1.Tag
	Constructed bool
	Bytes       []byte
	FullBytes   []byte
}

// rawValue returns a RawValue holding copies of the bytes of obj.
func rawValue(obj template.Object) RawValue {
	return RawValue{
		Tag:         obj.Header.Tag,
		Constructed: obj.Header.Constructed,
		Bytes:       obj.Content.Clone(),
		FullBytes:   obj.Raw.Clone(),
	}
}

// String returns a string representation of rv. The byte contents of rv are
// only included if they are short enough.
func (rv RawValue) String() string {
	constructed := "primitive"
	if rv.Constructed {
		constructed = "constructed"
	}
	if len(rv.Bytes) > 24 {
		return fmt.Sprintf("RawValue{%s (%s) {%d bytes}}", rv.Tag.String(), constructed, len(rv.Bytes))
	}
	return fmt.Sprintf("RawValue{%s (%s) {% X}}", rv.Tag.String(), constructed, rv.Bytes)
}

// Encoding identifies the text encoding of the content octets of a character
// string.
//
//go:generate stringer -type=Encoding -trimprefix=Encoding
type Encoding uint8

// Supported text encodings. EncodingAuto selects the encoding from the tag of
// the value and defaults to UTF-8.
const (
	EncodingAuto   Encoding = iota
	EncodingUTF8            // UTF8String
	EncodingASCII           // IA5String, PrintableString, NumericString, VisibleString
	EncodingLatin1          // TeletexString (T61String), decoded as ISO 8859-1
	EncodingUTF16           // BMPString, big endian
	EncodingUTF32           // UniversalString, big endian
)

// parseEncoding returns the Encoding named by a struct tag option.
func parseEncoding(s string) Encoding {
	switch s {
	case "utf8":
		return EncodingUTF8
	case "ascii":
		return EncodingASCII
	case "latin1":
		return EncodingLatin1
	case "utf16":
		return EncodingUTF16
	case "utf32":
		return EncodingUTF32
	}
	return EncodingAuto
}
