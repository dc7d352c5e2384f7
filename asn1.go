// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asn1 defines the ASN.1 vocabulary shared by the template-driven
// decoder in this module: tags and their classes, the universal tag numbers
// defined in [Rec. ITU-T X.680], and Go types for some of the ASN.1 types that
// have no natural Go counterpart.
//
// Decoding itself is split across subpackages. Package tlv scans the
// tag-length-value layer of BER, package template describes and matches the
// chain of tags leading to a value, and package ber applies templates to Go
// values.
//
// # Mapping of ASN.1 Types to Go Types
//
// The decoder in package ber translates the following ASN.1 types:
//
//   - BOOLEAN decodes into a Go bool.
//   - INTEGER and ENUMERATED decode into all Go integer types and
//     [math/big.Int]. The supported size is limited by the Go type.
//   - OCTET STRING decodes into a byte slice.
//   - OBJECT IDENTIFIER decodes into [ObjectIdentifier] or into a Go string
//     holding its dotted notation.
//   - The character string types decode into a Go string or into one of the
//     string types defined in this package. The text encoding is chosen by the
//     universal tag of the value.
//   - BIT STRING decodes into [BitString] and NULL into [Null].
//   - SEQUENCE and SET decode into Go structs (a fixed list of fields) or Go
//     slices (a repeated element).
//
// # Templates
//
// A value in a BER encoding is often wrapped in one or more tags: an EXPLICIT
// tag adds a constructed layer around the value, an IMPLICIT tag replaces the
// tag of the value itself. The template package describes such a chain as an
// ordered list of expected tags. The following ASN.1 definition
//
//	Payload ::= [0] EXPLICIT SEQUENCE {
//		Num  INTEGER,
//		Name [1] IMPLICIT UTF8String
//	}
//
// is described by the templates
//
//	template.ContextSpecific(0).Constructed().Explicit(asn1.TagSequence).Constructed()
//	template.Universal(asn1.TagInteger)
//	template.Universal(asn1.TagUTF8String).Implicit(1)
//
// [Rec. ITU-T X.680]: https://www.itu.int/rec/T-REC-X.680
package asn1

import (
	"strconv"
	"strings"
)

// Tag is an ASN.1 tag: a number within a class. Templates are built from
// tags, and every TLV header carries one.
type Tag struct {
	Class  Class
	Number uint
}

// Class is the namespace of a tag number. Only the two low bits carry
// meaning, larger values are invalid.
//
//go:generate stringer -type=Class -trimprefix=Class
type Class uint8

// IsValid reports whether c fits into two bits.
func (c Class) IsValid() bool {
	return c <= 3
}

// The four tag classes of X.680.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// Universal returns the universal tag with the given number.
func Universal(n uint) Tag {
	return Tag{Class: ClassUniversal, Number: n}
}

// ContextSpecific returns the context-specific tag with the given number.
func ContextSpecific(n uint) Tag {
	return Tag{Class: ClassContextSpecific, Number: n}
}

// String formats t the way tags are written in ASN.1 modules, for example
// "[APPLICATION 3]" or "[0]". Universal tags are written as "[UNIVERSAL n]",
// which ASN.1 itself does not allow.
func (t Tag) String() string {
	if t.Class == ClassContextSpecific {
		return "[" + strconv.FormatUint(uint64(t.Number), 10) + "]"
	}
	return "[" + strings.ToUpper(t.Class.String()) + " " + strconv.FormatUint(uint64(t.Number), 10) + "]"
}

// Packed returns the compact single-integer representation of t, with the tag
// number shifted above the two class bits. Some tag tables store tags this way.
// Numbers that do not fit after shifting are truncated.
func (t Tag) Packed() uint {
	return t.Number<<2 | uint(t.Class&0b11)
}

// TagReserved is the universal tag number set aside for encoding rules. BER
// marks the end of indefinite-length contents with it.
const TagReserved = 0

// Universal tag numbers (Rec. ITU-T X.680, Table 1).
const (
	TagBoolean          uint = 1
	TagInteger          uint = 2
	TagBitString        uint = 3
	TagOctetString      uint = 4
	TagNull             uint = 5
	TagOID              uint = 6
	TagObjectDescriptor uint = 7
	TagExternal         uint = 8
	TagReal             uint = 9
	TagEnumerated       uint = 10
	TagEmbeddedPDV      uint = 11
	TagUTF8String       uint = 12
	TagRelativeOID      uint = 13
	TagTime             uint = 14
	TagSequence         uint = 16
	TagSet              uint = 17
	TagNumericString    uint = 18
	TagPrintableString  uint = 19
	TagTeletexString    uint = 20
	TagT61String             = TagTeletexString
	TagVideotexString   uint = 21
	TagIA5String        uint = 22
	TagUTCTime          uint = 23
	TagGeneralizedTime  uint = 24
	TagGraphicString    uint = 25
	TagVisibleString    uint = 26
	TagISO646String          = TagVisibleString
	TagGeneralString    uint = 27
	TagUniversalString  uint = 28
	TagCharacterString  uint = 29
	TagBMPString        uint = 30
	TagDate             uint = 31
	TagTimeOfDay        uint = 32
	TagDateTime         uint = 33
	TagDuration         uint = 34
)
