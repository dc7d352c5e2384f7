// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"iter"
	"math/bits"
	"reflect"
	"strconv"
	"strings"

	asn1 "codello.dev/asn1-template"
)

// FieldParameters is the parsed representation of tag string from a struct
// field.
type FieldParameters struct {
	Ignore   bool     // true iff this field should be ignored
	Tag      asn1.Tag // the EXPLICIT or IMPLICIT class and tag number
	HasTag   bool     // true iff Tag is set
	Optional bool     // true iff the field is OPTIONAL
	Explicit bool     // true iff an EXPLICIT tag is in use.
	Set      bool     // true iff a SET is expected instead of a SEQUENCE
	Encoding string   // text encoding of string fields, empty if unspecified
}

// ParseFieldParameters will parse a given tag string into a FieldParameters
// structure, ignoring unknown parts of the string.
func ParseFieldParameters(str string) (ret FieldParameters) {
	for part := range strings.SplitSeq(str, ",") {
		switch part = strings.TrimSpace(part); {
		case part == "-":
			ret.Ignore = true
		case part == "optional":
			ret.Optional = true
		case part == "explicit":
			ret.Explicit = true
		case part == "set":
			ret.Set = true
		case strings.HasPrefix(part, "tag:"):
			i, err := strconv.ParseUint(part[4:], 10, bits.UintSize)
			if err == nil {
				if !ret.HasTag {
					ret.Tag.Class = asn1.ClassContextSpecific
				}
				ret.Tag.Number = uint(i)
				ret.HasTag = true
			}
		case part == "application":
			ret.Tag.Class = asn1.ClassApplication
			ret.HasTag = true
		case part == "private":
			ret.Tag.Class = asn1.ClassPrivate
			ret.HasTag = true
		case part == "universal":
			ret.Tag.Class = asn1.ClassUniversal
			ret.HasTag = true
		case part == "utf8", part == "ascii", part == "latin1", part == "utf16", part == "utf32":
			ret.Encoding = part
		}
	}
	return ret
}

// StructField is an exported field of a struct value together with its parsed
// struct tag.
type StructField struct {
	Name   string
	Value  reflect.Value
	Params FieldParameters
}

// StructFields returns a sequence that iterates over the fields of the struct
// identified by v. Struct fields with a `asn1:"-"` tag are ignored, as are
// non-exported struct fields. Fields of embedded structs without a struct tag
// are returned as if they were fields of the containing struct.
func StructFields(v reflect.Value) iter.Seq[StructField] {
	return func(yield func(StructField) bool) {
		t := v.Type()
		for i := range t.NumField() {
			field := t.Field(i)
			params := ParseFieldParameters(field.Tag.Get("asn1"))
			if params.Ignore || !field.IsExported() {
				continue
			}
			if field.Anonymous && !params.HasTag && field.Type.Kind() == reflect.Struct {
				for f := range StructFields(v.Field(i)) {
					if !yield(f) {
						return
					}
				}
				continue
			}
			if !yield(StructField{Name: field.Name, Value: v.Field(i), Params: params}) {
				return
			}
		}
	}
}
