// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"encoding/binary"
	"errors"
	"reflect"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/tlv"
)

var errInvalidCharacters = errors.New("invalid characters in string")

// Named Go string types and their text encodings.
var stringTypes = map[reflect.Type]struct {
	tag uint
	enc Encoding
}{
	reflect.TypeFor[asn1.UTF8String]():      {asn1.TagUTF8String, EncodingUTF8},
	reflect.TypeFor[asn1.NumericString]():   {asn1.TagNumericString, EncodingASCII},
	reflect.TypeFor[asn1.PrintableString](): {asn1.TagPrintableString, EncodingASCII},
	reflect.TypeFor[asn1.T61String]():       {asn1.TagT61String, EncodingLatin1},
	reflect.TypeFor[asn1.IA5String]():       {asn1.TagIA5String, EncodingASCII},
	reflect.TypeFor[asn1.VisibleString]():   {asn1.TagVisibleString, EncodingASCII},
	reflect.TypeFor[asn1.UniversalString](): {asn1.TagUniversalString, EncodingUTF32},
	reflect.TypeFor[asn1.BMPString]():       {asn1.TagBMPString, EncodingUTF16},
}

// TagEncoding returns the text encoding implied by a universal string tag. For
// all other tags EncodingAuto is returned.
func TagEncoding(tag asn1.Tag) Encoding {
	if tag.Class != asn1.ClassUniversal {
		return EncodingAuto
	}
	switch tag.Number {
	case asn1.TagUTF8String:
		return EncodingUTF8
	case asn1.TagNumericString, asn1.TagPrintableString, asn1.TagIA5String, asn1.TagVisibleString:
		return EncodingASCII
	case asn1.TagTeletexString, asn1.TagVideotexString:
		return EncodingLatin1
	case asn1.TagBMPString:
		return EncodingUTF16
	case asn1.TagUniversalString:
		return EncodingUTF32
	}
	return EncodingAuto
}

// stringTemplateTag returns the universal tag used by string fields with the
// given encoding option.
func stringTemplateTag(enc Encoding) uint {
	switch enc {
	case EncodingASCII:
		return asn1.TagIA5String
	case EncodingLatin1:
		return asn1.TagT61String
	case EncodingUTF16:
		return asn1.TagBMPString
	case EncodingUTF32:
		return asn1.TagUniversalString
	}
	return asn1.TagUTF8String
}

// ParseString decodes the content octets b of a character string using the
// encoding enc. EncodingAuto is treated like EncodingUTF8.
func ParseString(b []byte, enc Encoding) (string, error) {
	switch enc {
	case EncodingASCII:
		for _, c := range b {
			if c >= utf8.RuneSelf {
				return "", errInvalidCharacters
			}
		}
		return string(b), nil
	case EncodingLatin1:
		s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
		return string(s), err
	case EncodingUTF16:
		if len(b)%2 != 0 {
			return "", errors.New("odd length BMPString")
		}
		s, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
		return string(s), err
	case EncodingUTF32:
		if len(b)%4 != 0 {
			return "", errors.New("invalid length UniversalString")
		}
		for i := 0; i < len(b); i += 4 {
			if !utf8.ValidRune(rune(binary.BigEndian.Uint32(b[i:]))) {
				return "", errInvalidCharacters
			}
		}
		s, err := utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM).NewDecoder().Bytes(b)
		return string(s), err
	default:
		if !utf8.Valid(b) {
			return "", errInvalidCharacters
		}
		return string(b), nil
	}
}

// validString reports whether s only uses characters of the alphabet of the
// universal string type identified by tag.
func validString(tag asn1.Tag, s string) bool {
	if tag.Class != asn1.ClassUniversal {
		return true
	}
	switch tag.Number {
	case asn1.TagNumericString:
		return asn1.NumericString(s).IsValid()
	case asn1.TagPrintableString:
		return asn1.PrintableString(s).IsValid()
	case asn1.TagVisibleString:
		return asn1.VisibleString(s).IsValid()
	case asn1.TagBMPString:
		return asn1.BMPString(s).IsValid()
	}
	return true
}

// segments calls fn with the content of every primitive segment of the string
// encoding whose innermost layer has header h and content b. For a primitive
// encoding fn is called exactly once.
//
// In a constructed encoding every segment must use the universal tag of the
// string type. If h has a universal tag, that tag is expected. Otherwise the tag
// of the first segment is used and must be universal.
func segments(h tlv.Header, b tlv.Buffer, maxDepth int, fn func(seg tlv.Buffer) error) error {
	if !h.Constructed {
		return fn(b)
	}
	tag := h.Tag
	if tag.Class != asn1.ClassUniversal && b.Len() > 0 {
		first, err := tlv.ParseHeader(b)
		if err != nil {
			return err
		}
		if first.Tag.Class != asn1.ClassUniversal {
			return &tlv.SyntaxError{Err: errors.New("non-universal segment " + first.Tag.String() + " in constructed string"), ByteOffset: b.Offset(), Header: first}
		}
		tag = first.Tag
	}
	return walkSegments(b, tag, maxDepth, fn)
}

// walkSegments walks the nested segments in b. Every segment must carry tag.
func walkSegments(b tlv.Buffer, tag asn1.Tag, depth int, fn func(seg tlv.Buffer) error) error {
	if depth <= 0 {
		return &tlv.SyntaxError{Err: tlv.ErrNestingTooDeep, ByteOffset: b.Offset()}
	}
	for b.Len() > 0 {
		h, content, size, err := tlv.Split(b, depth)
		if err != nil {
			return err
		}
		if h.Tag != tag {
			return &tlv.SyntaxError{Err: errors.New("non-matching encoding " + h.Tag.String() + " in constructed string"), ByteOffset: b.Offset(), Header: h}
		}
		if h.Constructed {
			err = walkSegments(content, tag, depth-1, fn)
		} else {
			err = fn(content)
		}
		if err != nil {
			return err
		}
		b = b.Advance(size)
	}
	return nil
}

// concat returns a copy of the concatenated segments of a string encoding. See
// segments for the parameters.
func concat(h tlv.Header, b tlv.Buffer, maxDepth int) ([]byte, error) {
	if !h.Constructed {
		return b.Clone(), nil
	}
	ret := make([]byte, 0, b.Len())
	err := segments(h, b, maxDepth, func(seg tlv.Buffer) error {
		ret = append(ret, seg.Bytes()...)
		return nil
	})
	return ret, err
}
