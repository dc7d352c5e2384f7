// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"codello.dev/asn1-template/internal"
	"codello.dev/asn1-template/template"
	"codello.dev/asn1-template/tlv"
)

var errMissingValue = fmt.Errorf("%w: value missing", tlv.ErrTruncated)

// Frame is the decoding state of a single value. A frame holds the object
// located for the value and a cursor into its content. Frames form a chain from
// the value currently being decoded up to the root value, which is used to
// report the path of errors.
//
// Frames are created by a [Decoder] and passed to [BerDecoder] and
// [DecodeFunc] implementations. A frame must not be retained after the call
// returns.
type Frame struct {
	d      *Decoder
	parent *Frame
	name   string
	depth  int

	obj  template.Object
	rest tlv.Buffer // unread content of obj
	enc  Encoding   // text encoding override
}

// child returns a frame for the value obj nested in f.
func (f *Frame) child(name string, obj template.Object) (*Frame, error) {
	if f.depth >= f.d.maxDepth() {
		return nil, &SyntaxError{Path: f.pathTo(name), Offset: obj.Raw.Offset(), Err: tlv.ErrNestingTooDeep}
	}
	return &Frame{d: f.d, parent: f, name: name, depth: f.depth + 1, obj: obj, rest: obj.Content}, nil
}

// Object returns the object of the value decoded by f.
func (f *Frame) Object() template.Object {
	return f.obj
}

// Depth returns the nesting depth of f. The top-level value has depth 1.
func (f *Frame) Depth() int {
	return f.depth
}

// Path returns the location of the value of f as a dotted list of field names.
// Elements of SEQUENCE OF and SET OF values are denoted by their index, such as
// "receipt.inApp[2].productId". The path of the top-level value is empty.
func (f *Frame) Path() string {
	var names []string
	for g := f; g != nil; g = g.parent {
		if g.name != "" {
			names = append(names, g.name)
		}
	}
	slices.Reverse(names)
	var sb strings.Builder
	for i, name := range names {
		if i > 0 && !strings.HasPrefix(name, "[") {
			sb.WriteByte('.')
		}
		sb.WriteString(name)
	}
	return sb.String()
}

// pathTo returns the path of a value called name nested in f.
func (f *Frame) pathTo(name string) string {
	p := f.Path()
	switch {
	case name == "":
		return p
	case p == "" || strings.HasPrefix(name, "["):
		return p + name
	default:
		return p + "." + name
	}
}

// More reports whether unread values remain in the content of f.
func (f *Frame) More() bool {
	return f.rest.Len() > 0
}

// Peek reports whether the next unread value in the content of f may match t.
// Only the outermost entry of t is compared. If the next header cannot be
// parsed, Peek returns true so that a subsequent call to [Frame.Next] reports
// the error.
func (f *Frame) Peek(t template.Template) bool {
	if !f.More() {
		return false
	}
	h, err := tlv.ParseHeader(f.rest)
	if err != nil {
		return true
	}
	return t.Accepts(h)
}

// Next matches t against the next unread value in the content of f and moves
// the cursor past it.
func (f *Frame) Next(t template.Template) (template.Object, error) {
	return f.next("", t)
}

// next is like [Frame.Next] but reports errors for the value called name. The
// path of the value is only computed for errors and debug logs.
func (f *Frame) next(name string, t template.Template) (template.Object, error) {
	if e := f.d.logger().Debug(); e.Enabled() {
		e.Str("path", f.pathTo(name)).
			Int("offset", f.rest.Offset()).
			Stringer("template", t).
			Msg("match")
	}
	if !f.More() {
		return template.Object{}, &SyntaxError{Path: f.pathTo(name), Offset: f.rest.Offset(), Err: errMissingValue}
	}
	obj, err := f.d.matcher().Match(f.rest, t)
	if err != nil {
		return template.Object{}, syntaxError(f.pathTo(name), f.rest.Offset(), err)
	}
	f.rest = f.rest.Advance(obj.Consumed())
	return obj, nil
}

// Decode decodes the object obj into v, which must be a non-nil pointer. If
// obj is the object of f, the value of f is decoded. Otherwise obj must be a
// value nested in f, usually obtained from [Frame.Next].
func (f *Frame) Decode(obj template.Object, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &InvalidDecodeError{Value: rv}
	}
	g := f
	if !f.owns(obj) {
		var err error
		if g, err = f.child("", obj); err != nil {
			return err
		}
	}
	return g.decodeValue(rv.Elem())
}

// owns reports whether obj is the object of f.
func (f *Frame) owns(obj template.Object) bool {
	return obj.Raw.Offset() == f.obj.Raw.Offset() && obj.Raw.Len() == f.obj.Raw.Len() &&
		obj.Content.Offset() == f.obj.Content.Offset()
}

// decodeFields decodes the components of a record from the content of f.
// Fields are processed in order. Bytes following the last field are ignored.
func (f *Frame) decodeFields(fields []Field) error {
	for _, field := range fields {
		if field.Optional && !f.Peek(field.Template) {
			if e := f.d.logger().Debug(); e.Enabled() {
				e.Str("path", f.pathTo(field.Name)).
					Int("offset", f.rest.Offset()).
					Msg("skip optional field")
			}
			continue
		}
		obj, err := f.next(field.Name, field.Template)
		if err != nil {
			return err
		}
		if field.Decode == nil {
			continue
		}
		c, err := f.child(field.Name, obj)
		if err != nil {
			return err
		}
		if err = field.Decode(c, obj); err != nil {
			return err
		}
	}
	return nil
}

// decodeElements decodes the elements of a SEQUENCE OF or SET OF from the
// content of f into the slice v. Each element is located with the template of
// the element type. Decoding stops at the end of the content.
func (f *Frame) decodeElements(v reflect.Value) error {
	elemType := v.Type().Elem()
	t, err := templateFor(elemType, internal.FieldParameters{})
	if err != nil {
		return &StructuralError{Path: f.Path(), Type: v.Type(), Err: err}
	}
	slice := reflect.MakeSlice(v.Type(), 0, 4)
	for i := 0; f.More(); i++ {
		name := "[" + strconv.Itoa(i) + "]"
		obj, err := f.next(name, t)
		if err != nil {
			return err
		}
		c, err := f.child(name, obj)
		if err != nil {
			return err
		}
		elem := reflect.New(elemType).Elem()
		if err = c.decodeValue(elem); err != nil {
			return err
		}
		slice = reflect.Append(slice, elem)
	}
	v.Set(slice)
	return nil
}

// syntaxError wraps err in a [*SyntaxError] for the value at path. The offset
// of err is used if it carries one.
func syntaxError(path string, offset int, err error) error {
	var serr *SyntaxError
	if errors.As(err, &serr) {
		return err
	}
	var terr *tlv.SyntaxError
	var merr *template.MismatchError
	var werr *template.WrapperError
	switch {
	case errors.As(err, &terr):
		offset = terr.ByteOffset
	case errors.As(err, &merr):
		offset = merr.Offset
	case errors.As(err, &werr):
		offset = werr.Offset
	}
	return &SyntaxError{Path: path, Offset: offset, Err: err}
}
