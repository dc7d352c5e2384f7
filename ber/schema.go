// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"codello.dev/asn1-template/template"
)

// Schema is implemented by types that know the template locating their values.
// The template returned by ASN1Template replaces the intrinsic template of the
// type, for example the universal SEQUENCE tag of a struct.
//
// ASN1Template may be called on the zero value of the type.
type Schema interface {
	ASN1Template() template.Template
}

// Record is implemented by structured types that describe their components
// through an explicit list of field descriptors instead of their struct fields.
//
// The fields are decoded in order from the content of the value. ASN1Fields is
// called on the value being decoded, so the descriptors usually bind pointers
// to the fields of the receiver:
//
//	func (s *SignedData) ASN1Fields() []ber.Field {
//		return []ber.Field{
//			ber.Value("version", template.Universal(asn1.TagInteger), &s.Version),
//			ber.Skip("digestAlgorithms", template.Universal(asn1.TagSet).Constructed()),
//		}
//	}
type Record interface {
	ASN1Fields() []Field
}

// BerDecoder is implemented by types that decode themselves. BerDecode is
// called with the frame of the value and the object located by the template of
// the type. The content of obj can be decoded further using f.
type BerDecoder interface {
	BerDecode(f *Frame, obj template.Object) error
}

// DecodeFunc decodes the object obj located for a field. f is the frame of
// the field.
type DecodeFunc func(f *Frame, obj template.Object) error

// Field describes a component of a [Record].
type Field struct {
	// Name identifies the field in error messages and log output.
	Name string

	// Template locates the field within the content of the record.
	Template template.Template

	// Optional fields are skipped if the content of the record is exhausted or
	// if the next TLV does not match the first entry of Template. A required
	// field that is missing or does not match is an error.
	Optional bool

	// Decode is called with the located object. If Decode is nil, the object is
	// skipped.
	Decode DecodeFunc
}

// Value returns a field that decodes into v. v must be a non-nil pointer.
func Value(name string, t template.Template, v any) Field {
	return Field{Name: name, Template: t, Decode: func(f *Frame, obj template.Object) error {
		return f.Decode(obj, v)
	}}
}

// Text returns a field that decodes a character string into s using the text
// encoding enc. The encoding takes precedence over the tag of the value.
func Text(name string, t template.Template, s *string, enc Encoding) Field {
	return Field{Name: name, Template: t, Decode: func(f *Frame, obj template.Object) error {
		f.enc = enc
		return f.Decode(obj, s)
	}}
}

// Func returns a field that is decoded by fn.
func Func(name string, t template.Template, fn DecodeFunc) Field {
	return Field{Name: name, Template: t, Decode: fn}
}

// Skip returns a field that must be present but whose content is ignored.
func Skip(name string, t template.Template) Field {
	return Field{Name: name, Template: t}
}

// Optional returns a copy of f that is marked as optional.
func Optional(f Field) Field {
	f.Optional = true
	return f
}
