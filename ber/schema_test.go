// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"errors"
	"testing"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/template"
)

// record exercises the field descriptor constructors.
type record struct {
	Version int
	Content []byte
	Name    string
	Count   int
}

func (r *record) ASN1Fields() []Field {
	return []Field{
		Value("version", template.Universal(asn1.TagInteger), &r.Version),
		Skip("digestAlgorithms", template.Universal(asn1.TagSet).Constructed()),
		Optional(Value("content", template.ContextSpecific(0).Constructed().Explicit(asn1.TagOctetString), &r.Content)),
		Text("name", template.Universal(asn1.TagIA5String), &r.Name, EncodingASCII),
		Optional(Func("items", template.Universal(asn1.TagSequence).Constructed(), func(f *Frame, obj template.Object) error {
			for f.More() {
				if _, err := f.Next(template.Template{}); err != nil {
					return err
				}
				r.Count++
			}
			return nil
		})),
	}
}

func TestRecord(t *testing.T) {
	testDecode(t, &Decoder{}, map[string]testCase[record]{
		"Complete": {data: []byte{0x30, 0x15,
			0x02, 0x01, 0x01,
			0x31, 0x00,
			0xA0, 0x04, 0x04, 0x02, 0xAB, 0xCD,
			0x16, 0x02, 'h', 'i',
			0x30, 0x04, 0x05, 0x00, 0x05, 0x00}, want: record{1, []byte{0xAB, 0xCD}, "hi", 2}},
		"OptionalAbsent": {data: []byte{0x30, 0x09,
			0x02, 0x01, 0x01,
			0x31, 0x00,
			0x16, 0x02, 'h', 'i'}, want: record{Version: 1, Name: "hi"}},
		"MissingSkipped": {data: []byte{0x30, 0x03, 0x02, 0x01, 0x01}, wantErr: errMissingValue},
		"WrongContent": {data: []byte{0x30, 0x0C,
			0x02, 0x01, 0x01,
			0x31, 0x00,
			0xA0, 0x03, 0x02, 0x01, 0x01,
			0x16, 0x00}, wantErr: template.ErrUnexpectedTag},
	})
}

func TestRecord_errorPath(t *testing.T) {
	data := []byte{0x30, 0x0C,
		0x02, 0x01, 0x01,
		0x31, 0x00,
		0xA0, 0x03, 0x02, 0x01, 0x01,
		0x16, 0x00}
	var r record
	err := Unmarshal(data, &r)
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("Unmarshal() error = %v, want *SyntaxError", err)
	}
	if serr.Path != "content" {
		t.Errorf("SyntaxError.Path = %q, want %q", serr.Path, "content")
	}
	if serr.Offset != 9 {
		t.Errorf("SyntaxError.Offset = %d, want %d", serr.Offset, 9)
	}
}

// version is an INTEGER wrapped in an explicit [0] tag.
type version int

func (version) ASN1Template() template.Template {
	return template.ContextSpecific(0).Constructed().Explicit(asn1.TagInteger)
}

// octets is an OCTET STRING in an explicit [1] tag that may use the primitive
// or the constructed encoding.
type octets []byte

func (octets) ASN1Template() template.Template {
	return template.ContextSpecific(1).Constructed()
}

func (o *octets) BerDecode(f *Frame, _ template.Object) error {
	t := template.Universal(asn1.TagOctetString)
	if !f.Peek(t) {
		t = t.Constructed()
	}
	inner, err := f.Next(t)
	if err != nil {
		return err
	}
	return f.Decode(inner, (*[]byte)(o))
}

func TestSchema(t *testing.T) {
	type schema struct {
		V version `asn1:"optional"`
		N int
		O octets `asn1:"optional"`
	}
	testDecode(t, &Decoder{}, map[string]testCase[schema]{
		"Version": {data: []byte{0x30, 0x08,
			0xA0, 0x03, 0x02, 0x01, 0x02,
			0x02, 0x01, 0x05}, want: schema{V: 2, N: 5}},
		"NoVersion": {data: []byte{0x30, 0x03, 0x02, 0x01, 0x05}, want: schema{N: 5}},
		"Primitive": {data: []byte{0x30, 0x09,
			0x02, 0x01, 0x05,
			0xA1, 0x04, 0x04, 0x02, 0x01, 0x02}, want: schema{N: 5, O: octets{0x01, 0x02}}},
		"Constructed": {data: []byte{0x30, 0x0D,
			0x02, 0x01, 0x05,
			0xA1, 0x08, 0x24, 0x06, 0x04, 0x01, 0x01, 0x04, 0x01, 0x02}, want: schema{N: 5, O: octets{0x01, 0x02}}},
	})
}

func TestSchema_implicit(t *testing.T) {
	type implicit struct {
		V version `asn1:"tag:3"`
	}
	testDecode(t, &Decoder{}, map[string]testCase[implicit]{
		"Retagged": {data: []byte{0x30, 0x05, 0xA3, 0x03, 0x02, 0x01, 0x07}, want: implicit{7}},
		"Original": {data: []byte{0x30, 0x05, 0xA0, 0x03, 0x02, 0x01, 0x07}, wantErr: template.ErrUnexpectedTag},
	})
}

// badRecord binds a field to a non-pointer value.
type badRecord struct{ A int }

func (r *badRecord) ASN1Fields() []Field {
	return []Field{Value("a", template.Universal(asn1.TagInteger), r.A)}
}

func TestValue_invalid(t *testing.T) {
	var r badRecord
	err := Unmarshal([]byte{0x30, 0x03, 0x02, 0x01, 0x01}, &r)
	if !errors.As(err, new(*InvalidDecodeError)) {
		t.Errorf("Unmarshal() error = %v, want *InvalidDecodeError", err)
	}
}
