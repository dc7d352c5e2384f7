// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/internal"
	"codello.dev/asn1-template/template"
	"codello.dev/asn1-template/tlv"
)

var (
	// ErrUnsupportedType indicates that a Go type cannot be decoded.
	ErrUnsupportedType = errors.New("unsupported Go type")
	// ErrTrailingData indicates bytes following the top-level value. It is only
	// reported if [Decoder.DisallowTrailingData] is set.
	ErrTrailingData = errors.New("trailing data after top-level value")

	errConstructed = errors.New("constructed encoding of primitive type")
)

var (
	schemaType     = reflect.TypeFor[Schema]()
	recordType     = reflect.TypeFor[Record]()
	berDecoderType = reflect.TypeFor[BerDecoder]()
)

//region error types

// InvalidDecodeError indicates that an invalid value was passed to a Decode or
// Unmarshal function.
type InvalidDecodeError struct {
	Value reflect.Value
}

func (e *InvalidDecodeError) Error() string {
	if !e.Value.IsValid() {
		return "cannot decode into nil value"
	}
	if e.Value.Kind() == reflect.Pointer && e.Value.IsNil() {
		return "cannot decode into nil pointer of type " + e.Value.Type().String()
	}
	return "cannot decode into non-pointer type " + e.Value.Type().String()
}

// A SyntaxError suggests that the BER data is invalid. This can either
// indicate a malformed TLV structure, a tag that does not match the expected
// template, or content octets that cannot be converted into a valid value.
//
// For errors that are not directly related to the syntax of the input,
// [StructuralError] is a better fit.
type SyntaxError struct {
	Path   string // location of the value, see [Frame.Path]
	Offset int    // input offset of the error
	Err    error
}

func (e *SyntaxError) Error() string {
	var s strings.Builder
	s.WriteString("syntax error")
	if e.Path != "" {
		s.WriteString(" decoding ")
		s.WriteString(e.Path)
	}
	s.WriteString(" at offset ")
	s.WriteString(strconv.Itoa(e.Offset))
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// A StructuralError suggests that the BER data is valid, but the Go type
// which is receiving it doesn't match or can't fit the data.
//
// See also [SyntaxError].
type StructuralError struct {
	Path string
	Type reflect.Type
	Err  error
}

func (e *StructuralError) Error() string {
	var s strings.Builder
	s.WriteString("structural error")
	if e.Path != "" || e.Type != nil {
		s.WriteString(" decoding")
		if e.Path != "" {
			s.WriteByte(' ')
			s.WriteString(e.Path)
		}
		if e.Type != nil {
			s.WriteString(" into ")
			s.WriteString(e.Type.String())
		}
	}
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

//endregion

//region templates of Go types

// templateFor returns the template of a value of type t decoded with the given
// struct tag parameters.
func templateFor(t reflect.Type, params internal.FieldParameters) (template.Template, error) {
	base, err := intrinsicTemplate(t, params)
	if err != nil || !params.HasTag {
		return base, err
	}
	switch {
	case params.Explicit:
		return template.Of(template.Entry{Tag: params.Tag, Constructed: true}).Append(base), nil
	case base.IsZero():
		return template.Of(template.Entry{Tag: params.Tag}), nil
	}
	// IMPLICIT tagging replaces the outermost tag.
	entries := make([]template.Entry, base.Len())
	for i := range entries {
		entries[i] = base.At(i)
	}
	entries[0].Tag = params.Tag
	return template.Of(entries...), nil
}

// intrinsicTemplate returns the template of type t without any tagging.
func intrinsicTemplate(t reflect.Type, params internal.FieldParameters) (template.Template, error) {
	if reflect.PointerTo(t).Implements(schemaType) {
		return reflect.New(t).Interface().(Schema).ASN1Template(), nil
	}
	if t.Kind() == reflect.Pointer {
		return intrinsicTemplate(t.Elem(), params)
	}
	if st, ok := stringTypes[t]; ok {
		return template.Universal(st.tag), nil
	}
	switch t {
	case bigIntType:
		return template.Universal(asn1.TagInteger), nil
	case oidType:
		return template.Universal(asn1.TagOID), nil
	case bitStringType:
		return template.Universal(asn1.TagBitString), nil
	case nullType:
		return template.Universal(asn1.TagNull), nil
	case rawValueType:
		return template.Template{}, nil
	case timeType:
		return template.Template{}, ErrUnsupportedType
	}
	if reflect.PointerTo(t).Implements(berDecoderType) && !reflect.PointerTo(t).Implements(recordType) {
		return template.Template{}, nil
	}
	constructed := template.Universal(asn1.TagSequence).Constructed()
	if params.Set {
		constructed = template.Universal(asn1.TagSet).Constructed()
	}
	switch t.Kind() {
	case reflect.Bool:
		return template.Universal(asn1.TagBoolean), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return template.Universal(asn1.TagInteger), nil
	case reflect.String:
		return template.Universal(stringTemplateTag(parseEncoding(params.Encoding))), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return template.Universal(asn1.TagOctetString), nil
		}
		return constructed, nil
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return template.Universal(asn1.TagOctetString), nil
		}
	case reflect.Struct:
		return constructed, nil
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return template.Template{}, nil
		}
	}
	return template.Template{}, ErrUnsupportedType
}

//endregion

//region decoding of Go values

// decodeValue decodes the object of f into v. Nil pointers are allocated as
// needed.
func (f *Frame) decodeValue(v reflect.Value) error {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	if v.CanAddr() {
		switch d := v.Addr().Interface().(type) {
		case BerDecoder:
			return d.BerDecode(f, f.obj)
		case Record:
			return f.decodeFields(d.ASN1Fields())
		}
	}

	switch v.Type() {
	case bigIntType:
		b, err := f.primitive()
		if err != nil {
			return err
		}
		n, err := ParseInteger(b, f.d.SignedIntegers)
		if err != nil {
			return f.valueError(v.Type(), err)
		}
		v.Set(reflect.ValueOf(n).Elem())
		return nil
	case oidType:
		b, err := f.primitive()
		if err != nil {
			return err
		}
		oid, err := ParseObjectIdentifier(b)
		if err != nil {
			return f.valueError(v.Type(), err)
		}
		v.Set(reflect.ValueOf(oid))
		return nil
	case bitStringType:
		bs, err := f.bitString()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(bs))
		return nil
	case nullType:
		b, err := f.primitive()
		if err != nil {
			return err
		}
		return f.valueError(v.Type(), ParseNull(b))
	case rawValueType:
		v.Set(reflect.ValueOf(rawValue(f.obj)))
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		b, err := f.primitive()
		if err != nil {
			return err
		}
		x, err := ParseBool(b)
		if err != nil {
			return f.valueError(v.Type(), err)
		}
		v.SetBool(x)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b, err := f.primitive()
		if err != nil {
			return err
		}
		x, err := ParseInt64(b, f.d.SignedIntegers)
		if err == nil && v.OverflowInt(x) {
			err = errIntegerTooLarge
		}
		if err != nil {
			return f.valueError(v.Type(), err)
		}
		v.SetInt(x)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		b, err := f.primitive()
		if err != nil {
			return err
		}
		x, err := ParseUint64(b, f.d.SignedIntegers)
		if err == nil && v.OverflowUint(x) {
			err = errIntegerTooLarge
		}
		if err != nil {
			return f.valueError(v.Type(), err)
		}
		v.SetUint(x)
		return nil
	case reflect.String:
		s, err := f.text(v.Type())
		if err != nil {
			return err
		}
		v.SetString(s)
		return nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b, err := concat(f.obj.Header, f.obj.Content, f.d.maxDepth()-f.depth)
			if err != nil {
				return syntaxError(f.Path(), f.obj.Content.Offset(), err)
			}
			v.SetBytes(b)
			return nil
		}
		return f.decodeElements(v)
	case reflect.Array:
		if v.Type().Elem().Kind() != reflect.Uint8 {
			break
		}
		b, err := concat(f.obj.Header, f.obj.Content, f.d.maxDepth()-f.depth)
		if err != nil {
			return syntaxError(f.Path(), f.obj.Content.Offset(), err)
		}
		if len(b) != v.Len() {
			return &StructuralError{Path: f.Path(), Type: v.Type(), Err: errors.New("length mismatch: got " + strconv.Itoa(len(b)) + " bytes")}
		}
		reflect.Copy(v, reflect.ValueOf(b))
		return nil
	case reflect.Struct:
		if v.Type() == timeType {
			break
		}
		fields, err := f.structFields(v)
		if err != nil {
			return err
		}
		return f.decodeFields(fields)
	case reflect.Interface:
		if v.NumMethod() == 0 {
			v.Set(reflect.ValueOf(rawValue(f.obj)))
			return nil
		}
	}
	return &StructuralError{Path: f.Path(), Type: v.Type(), Err: ErrUnsupportedType}
}

// structFields returns the field descriptors of the plain struct v.
func (f *Frame) structFields(v reflect.Value) ([]Field, error) {
	var fields []Field
	for sf := range internal.StructFields(v) {
		t, err := templateFor(sf.Value.Type(), sf.Params)
		if err != nil {
			return nil, &StructuralError{Path: f.pathTo(sf.Name), Type: sf.Value.Type(), Err: err}
		}
		enc := parseEncoding(sf.Params.Encoding)
		fv := sf.Value
		fields = append(fields, Field{
			Name:     sf.Name,
			Template: t,
			Optional: sf.Params.Optional,
			Decode: func(c *Frame, _ template.Object) error {
				c.enc = enc
				return c.decodeValue(fv)
			},
		})
	}
	return fields, nil
}

// primitive returns the content octets of a value that requires the primitive
// encoding.
func (f *Frame) primitive() ([]byte, error) {
	if f.obj.Header.Constructed {
		return nil, &SyntaxError{Path: f.Path(), Offset: f.obj.Raw.Offset(), Err: errConstructed}
	}
	return f.obj.Content.Bytes(), nil
}

// valueError classifies an error returned by one of the Parse functions. Values
// that do not fit the Go type result in a [*StructuralError], all other errors
// are syntax errors.
func (f *Frame) valueError(t reflect.Type, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errIntegerTooLarge), errors.Is(err, errNegativeInteger):
		return &StructuralError{Path: f.Path(), Type: t, Err: err}
	default:
		return &SyntaxError{Path: f.Path(), Offset: f.obj.Content.Offset(), Err: err}
	}
}

// text decodes the value of f as a character string for the Go type t. The text
// encoding is chosen from the encoding override of f, the tag of the value, and
// the Go type, in that order. Values with an OBJECT IDENTIFIER tag decode into
// their dotted notation.
func (f *Frame) text(t reflect.Type) (string, error) {
	tag := f.obj.Header.Tag
	if tag == asn1.Universal(asn1.TagOID) {
		b, err := f.primitive()
		if err != nil {
			return "", err
		}
		oid, err := ParseObjectIdentifier(b)
		if err != nil {
			return "", f.valueError(t, err)
		}
		return oid.String(), nil
	}
	b, err := concat(f.obj.Header, f.obj.Content, f.d.maxDepth()-f.depth)
	if err != nil {
		return "", syntaxError(f.Path(), f.obj.Content.Offset(), err)
	}
	enc := f.enc
	if enc == EncodingAuto {
		enc = TagEncoding(tag)
	}
	if enc == EncodingAuto {
		enc = stringTypes[t].enc
	}
	s, err := ParseString(b, enc)
	if err == nil && !validString(tag, s) {
		err = errInvalidCharacters
	}
	if err != nil {
		return "", f.valueError(t, err)
	}
	if v, ok := reflect.ValueOf(s).Convert(t).Interface().(interface{ IsValid() bool }); ok && !v.IsValid() {
		return "", &StructuralError{Path: f.Path(), Type: t, Err: errInvalidCharacters}
	}
	return s, nil
}

// bitString decodes the value of f as a BIT STRING. In a constructed encoding
// only the last segment may contain padding bits.
func (f *Frame) bitString() (asn1.BitString, error) {
	if !f.obj.Header.Constructed {
		bs, err := ParseBitString(f.obj.Content.Bytes())
		return bs, f.valueError(bitStringType, err)
	}
	var ret asn1.BitString
	err := segments(f.obj.Header, f.obj.Content, f.d.maxDepth()-f.depth, func(seg tlv.Buffer) error {
		if ret.BitLength%8 != 0 {
			return &tlv.SyntaxError{Err: errors.New("padding bits in non-final BIT STRING segment"), ByteOffset: seg.Offset()}
		}
		bs, err := ParseBitString(seg.Bytes())
		if err != nil {
			return &tlv.SyntaxError{Err: err, ByteOffset: seg.Offset()}
		}
		ret.Bytes = append(ret.Bytes, bs.Bytes...)
		ret.BitLength += bs.BitLength
		return nil
	})
	if err != nil {
		return asn1.BitString{}, syntaxError(f.Path(), f.obj.Content.Offset(), err)
	}
	return ret, nil
}

//endregion

//region type Decoder

var nopLogger = zerolog.Nop()

// A Decoder decodes BER-encoded values into Go values. The zero value decodes
// with default options. A Decoder holds no state between calls and may be used
// concurrently.
type Decoder struct {
	// MaxDepth limits the nesting of values, both of frames created while
	// decoding and of indefinite-length encodings. A value of zero or less
	// selects tlv.DefaultMaxDepth.
	MaxDepth int

	// SignedIntegers makes the decoder interpret INTEGER content octets as
	// two's-complement values. By default they are decoded as unsigned
	// magnitudes.
	SignedIntegers bool

	// CheckWrapperLengths makes the decoder verify that nested template layers
	// fill the content of the layer wrapping them.
	CheckWrapperLengths bool

	// DisallowTrailingData makes the decoder report an error if bytes follow the
	// top-level value.
	DisallowTrailingData bool

	// Logger receives debug events for every matched template and skipped
	// optional field. If Logger is nil, nothing is logged.
	Logger *zerolog.Logger
}

func (d *Decoder) logger() *zerolog.Logger {
	if d.Logger == nil {
		return &nopLogger
	}
	return d.Logger
}

func (d *Decoder) maxDepth() int {
	if d.MaxDepth <= 0 {
		return tlv.DefaultMaxDepth
	}
	return d.MaxDepth
}

func (d *Decoder) matcher() *template.Matcher {
	return &template.Matcher{MaxDepth: d.maxDepth(), CheckWrapperLengths: d.CheckWrapperLengths}
}

// Decode decodes the top-level value in b into v. The value is located using
// the template of the type of v. v must be a non-nil pointer.
func (d *Decoder) Decode(b []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &InvalidDecodeError{Value: rv}
	}
	t, err := templateFor(rv.Type().Elem(), internal.FieldParameters{})
	if err != nil {
		return &StructuralError{Type: rv.Type().Elem(), Err: err}
	}
	return d.decode(b, rv, t)
}

// DecodeWithTemplate works like [Decoder.Decode] but locates the top-level
// value using t instead of the template of the type of v.
func (d *Decoder) DecodeWithTemplate(b []byte, v any, t template.Template) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &InvalidDecodeError{Value: rv}
	}
	return d.decode(b, rv, t)
}

func (d *Decoder) decode(b []byte, rv reflect.Value, t template.Template) error {
	root := &Frame{d: d, rest: tlv.NewBuffer(b)}
	obj, err := root.next("", t)
	if err == nil {
		var f *Frame
		if f, err = root.child("", obj); err == nil {
			err = f.decodeValue(rv.Elem())
		}
	}
	if err == nil && d.DisallowTrailingData && root.rest.Len() > 0 {
		err = &SyntaxError{Offset: root.rest.Offset(), Err: ErrTrailingData}
	}
	if err != nil {
		d.logger().Debug().Err(err).Msg("decode failed")
	}
	return err
}

//endregion

// Unmarshal decodes the BER-encoded value in b into v using a zero [Decoder].
// Bytes following the value are ignored.
func Unmarshal(b []byte, v any) error {
	var d Decoder
	return d.Decode(b, v)
}

// UnmarshalWithTemplate decodes the value located by t in b into v using a
// zero [Decoder].
func UnmarshalWithTemplate(b []byte, v any, t template.Template) error {
	var d Decoder
	return d.DecodeWithTemplate(b, v, t)
}
