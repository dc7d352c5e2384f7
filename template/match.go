// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package template

import (
	"errors"
	"strconv"

	"codello.dev/asn1-template/tlv"
)

var (
	// ErrUnexpectedTag indicates that a TLV does not carry the tag or the
	// constructed bit expected by a template entry.
	ErrUnexpectedTag = errors.New("unexpected tag")
	// ErrWrapperLength indicates that a nested layer does not fill the content of
	// the layer wrapping it.
	ErrWrapperLength = errors.New("inner value does not fill its wrapper")
)

// MismatchError reports the template entry that did not match the input. It
// wraps [ErrUnexpectedTag].
type MismatchError struct {
	Layer  int        // index of the template entry
	Want   Entry      // expected entry
	Got    tlv.Header // header found in the input
	Offset int        // input offset of Got
}

func (e *MismatchError) Unwrap() error { return ErrUnexpectedTag }
func (e *MismatchError) Error() string {
	b := []byte("template: ")
	b = append(b, ErrUnexpectedTag.Error()...)
	b = append(b, " at layer "...)
	b = strconv.AppendInt(b, int64(e.Layer), 10)
	b = append(b, ": expected "...)
	b = append(b, e.Want.String()...)
	b = append(b, ", got "...)
	b = append(b, e.Got.String()...)
	b = append(b, " at offset "...)
	b = strconv.AppendInt(b, int64(e.Offset), 10)
	return string(b)
}

// WrapperError reports a layer whose TLV does not fill the content of its
// wrapper. It wraps [ErrWrapperLength].
type WrapperError struct {
	Layer   int // index of the inner template entry
	Wrapper int // content length of the wrapping layer
	Size    int // total size of the inner TLV
	Offset  int // input offset of the inner TLV
}

func (e *WrapperError) Unwrap() error { return ErrWrapperLength }
func (e *WrapperError) Error() string {
	return "template: layer " + strconv.Itoa(e.Layer) + " at offset " + strconv.Itoa(e.Offset) +
		" occupies " + strconv.Itoa(e.Size) + " of " + strconv.Itoa(e.Wrapper) + " bytes: " + ErrWrapperLength.Error()
}

// Object is the result of matching a [Template] against an input window.
type Object struct {
	// Header is the header of the innermost layer.
	Header tlv.Header
	// Raw is the complete outermost TLV including any end-of-contents marker.
	Raw tlv.Buffer
	// Content holds the content octets of the innermost layer. For
	// indefinite-length values the end-of-contents marker is excluded.
	Content tlv.Buffer
}

// Consumed returns the number of input bytes covered by o.
func (o Object) Consumed() int {
	return o.Raw.Len()
}

// Matcher applies templates to input windows. The zero value is ready to use.
type Matcher struct {
	// MaxDepth limits the nesting of indefinite-length values that are resolved
	// while matching. A value of zero or less selects tlv.DefaultMaxDepth.
	MaxDepth int

	// CheckWrapperLengths makes the matcher verify that every nested layer
	// occupies the whole content of the layer wrapping it. If the check fails,
	// a [*WrapperError] is returned. Without the check any bytes following the
	// inner layer are ignored.
	CheckWrapperLengths bool
}

// maxDepth returns the effective nesting limit of m.
func (m *Matcher) maxDepth() int {
	if m.MaxDepth <= 0 {
		return tlv.DefaultMaxDepth
	}
	return m.MaxDepth
}

// Match matches t against the TLV at the start of b. Each entry of t is
// matched in order, the first entry against b and every following entry
// against the content of the previous layer. The tag number, class, and
// constructed bit of each layer must equal the entry, otherwise a
// [*MismatchError] is returned.
//
// The bytes consumed by the match always equal the size of the outermost TLV.
// This is never more than b.Len().
func (m *Matcher) Match(b tlv.Buffer, t Template) (Object, error) {
	if t.IsZero() {
		h, content, size, err := tlv.Split(b, m.maxDepth())
		if err != nil {
			return Object{}, err
		}
		return Object{Header: h, Raw: b.Prefix(size), Content: content}, nil
	}

	var obj Object
	window := b
	for i, e := range t.entries {
		h, err := tlv.ParseHeader(window)
		if err != nil {
			return Object{}, err
		}
		if h.Tag != e.Tag || h.Constructed != e.Constructed {
			return Object{}, &MismatchError{Layer: i, Want: e, Got: h, Offset: window.Offset()}
		}
		_, content, size, err := tlv.Split(window, m.maxDepth())
		if err != nil {
			return Object{}, err
		}
		if i == 0 {
			obj.Raw = window.Prefix(size)
		} else if m.CheckWrapperLengths && size != window.Len() {
			return Object{}, &WrapperError{Layer: i, Wrapper: window.Len(), Size: size, Offset: window.Offset()}
		}
		obj.Header = h
		window = content
	}
	obj.Content = window
	return obj, nil
}

// Headers walks the headers of the layers described by t without resolving
// their content. It returns the number of identifier and length octets of all
// layers together and the header of the innermost layer. The declared content
// of the layers does not need to be present in b, which makes Headers suitable
// to inspect the prefix of a value.
func (m *Matcher) Headers(b tlv.Buffer, t Template) (n int, last tlv.Header, err error) {
	window := b
	for i, e := range t.entries {
		h, err := tlv.ParseHeader(window)
		if err != nil {
			return 0, tlv.Header{}, err
		}
		if h.Tag != e.Tag || h.Constructed != e.Constructed {
			return 0, tlv.Header{}, &MismatchError{Layer: i, Want: e, Got: h, Offset: window.Offset()}
		}
		n += h.Size
		last = h
		window = window.Advance(h.Size)
	}
	return n, last, nil
}

// Match matches t against the TLV at the start of b using a zero [Matcher].
// It returns the content window of the innermost layer and the number of bytes
// consumed from b.
func (t Template) Match(b tlv.Buffer) (content tlv.Buffer, consumed int, err error) {
	var m Matcher
	obj, err := m.Match(b, t)
	if err != nil {
		return tlv.Buffer{}, 0, err
	}
	return obj.Content, obj.Consumed(), nil
}
