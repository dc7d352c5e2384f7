// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asn1

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

//region [UNIVERSAL 3] BIT STRING

// BitString is the ASN.1 BIT STRING type. Bits are stored most significant
// first. The unused bits of the last byte are always zero after decoding.
type BitString struct {
	Bytes     []byte
	BitLength int
}

// IsValid reports whether Bytes holds at least BitLength bits.
func (s BitString) IsValid() bool {
	return s.BitLength >= 0 && 8*len(s.Bytes) >= s.BitLength
}

// Len returns the number of bits in s.
func (s BitString) Len() int {
	return s.BitLength
}

// At returns bit i of s. It panics if i is out of range.
func (s BitString) At(i int) int {
	if i < 0 || i >= s.BitLength {
		panic("asn1: bit index out of range")
	}
	return int(s.Bytes[i/8]>>(7-i%8)) & 1
}

// String formats s as a sequence of binary digits. Bits are grouped into
// bytes, the last group may have fewer than 8 digits.
func (s BitString) String() string {
	var sb strings.Builder
	sb.Grow(s.BitLength + s.BitLength/8)
	for i := range s.BitLength {
		if i > 0 && i%8 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('0' + byte(s.At(i)))
	}
	return sb.String()
}

//endregion

//region [UNIVERSAL 5] NULL

// Null is the ASN.1 NULL type. A Null field marks a NULL element of a
// structure whose presence is fixed.
type Null struct{}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// An ObjectIdentifier represents an ASN.1 OBJECT IDENTIFIER. The semantics of
// an object identifier are specified in [Rec. ITU-T X.660].
//
// See also section 32 of Rec. ITU-T X.680.
//
// [Rec. ITU-T X.660]: https://www.itu.int/rec/T-REC-X.660
type ObjectIdentifier []uint

// ParseObjectIdentifier parses the dot-separated notation of an object
// identifier, such as "1.2.840.113549.1.7.1". The empty string is parsed as an
// empty identifier.
func ParseObjectIdentifier(s string) (ObjectIdentifier, error) {
	if s == "" {
		return ObjectIdentifier{}, nil
	}
	oid := make(ObjectIdentifier, 0, strings.Count(s, ".")+1)
	for part := range strings.SplitSeq(s, ".") {
		v, err := strconv.ParseUint(part, 10, strconv.IntSize)
		if err != nil {
			return nil, errors.New("asn1: invalid object identifier " + strconv.Quote(s))
		}
		oid = append(oid, uint(v))
	}
	return oid, nil
}

// Equal reports whether oid and other represent the same identifier.
func (oid ObjectIdentifier) Equal(other ObjectIdentifier) bool {
	return slices.Equal(oid, other)
}

// String returns the dot-separated notation of oid.
func (oid ObjectIdentifier) String() string {
	var s strings.Builder
	s.Grow(32)

	buf := make([]byte, 0, 19)
	for i, v := range oid {
		if i > 0 {
			s.WriteByte('.')
		}
		s.Write(strconv.AppendUint(buf, uint64(v), 10))
	}

	return s.String()
}

// MarshalText implements [encoding.TextMarshaler] using the dot-separated
// notation of oid.
func (oid ObjectIdentifier) MarshalText() ([]byte, error) {
	return []byte(oid.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (oid *ObjectIdentifier) UnmarshalText(text []byte) error {
	v, err := ParseObjectIdentifier(string(text))
	if err != nil {
		return err
	}
	*oid = v
	return nil
}

//endregion

//region [UNIVERSAL 12] UTF8String

// UTF8String is the ASN.1 UTF8String type. Plain Go strings decode from
// UTF8String values unless a field option selects another encoding.
type UTF8String string

// IsValid reports whether s holds valid UTF-8.
func (s UTF8String) IsValid() bool {
	return utf8.ValidString(string(s))
}

//endregion

//region [UNIVERSAL 18] NumericString

// NumericString is the ASN.1 NumericString type. Its alphabet consists of the
// decimal digits and the space character.
type NumericString string

// IsValid reports whether every byte of s belongs to the NumericString
// alphabet.
func (s NumericString) IsValid() bool {
	for i := range len(s) {
		if !isNumeric(s[i]) {
			return false
		}
	}
	return true
}

func isNumeric(b byte) bool {
	return b == ' ' || '0' <= b && b <= '9'
}

//endregion

//region [UNIVERSAL 19] PrintableString

// PrintableString is the ASN.1 PrintableString type. Its alphabet consists of
// the ASCII letters and digits, the space and the characters ' ( ) + , - . / :
// = ?.
type PrintableString string

// IsValid reports whether every byte of s belongs to the PrintableString
// alphabet. The asterisk and the ampersand are tolerated because certificates
// in the wild use them.
func (s PrintableString) IsValid() bool {
	for i := range len(s) {
		if !isPrintable(s[i]) {
			return false
		}
	}
	return true
}

func isPrintable(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	case '\'' <= b && b <= ')', '+' <= b && b <= '/':
		return true
	}
	switch b {
	case ' ', ':', '=', '?', '*', '&':
		return true
	}
	return false
}

//endregion

//region [UNIVERSAL 20] TeletexString (T61String)

// T61String is the ASN.1 TeletexString type. Content octets are read as
// ISO 8859-1, which covers the T.61 characters seen in practice.
type T61String string

// IsValid reports whether s holds valid UTF-8.
func (s T61String) IsValid() bool {
	return utf8.ValidString(string(s))
}

//endregion

//region [UNIVERSAL 22] IA5String

// IA5String is the ASN.1 IA5String type, restricted to 7-bit ASCII.
type IA5String string

// IsValid reports whether s is pure ASCII.
func (s IA5String) IsValid() bool {
	for i := range len(s) {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

//endregion

//region [UNIVERSAL 26] VisibleString

// VisibleString is the ASN.1 VisibleString type: printing ASCII characters
// without control codes.
type VisibleString string

// IsValid reports whether s contains only printing ASCII characters.
func (s VisibleString) IsValid() bool {
	for i := range len(s) {
		if c := s[i]; c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

//endregion

//region [UNIVERSAL 28] UniversalString

// UniversalString is the ASN.1 UniversalString type. The content octets are
// big-endian UTF-32, the Go value holds the same text as UTF-8.
type UniversalString string

// IsValid reports whether s holds valid UTF-8.
func (s UniversalString) IsValid() bool {
	return utf8.ValidString(string(s))
}

//endregion

//region [UNIVERSAL 30] BMPString

// BMPString is the ASN.1 BMPString type. The content octets are big-endian
// UTF-16 without surrogates, so only characters of the Basic Multilingual
// Plane can be represented.
type BMPString string

// IsValid reports whether s is valid UTF-8 without characters outside the
// Basic Multilingual Plane.
func (s BMPString) IsValid() bool {
	return utf8.ValidString(string(s)) && !strings.ContainsFunc(string(s), func(r rune) bool {
		return r > 0xFFFF
	})
}

//endregion
