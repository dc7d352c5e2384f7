// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"errors"
	"fmt"
	"io"

	asn1 "codello.dev/asn1-template"
)

var (
	errUnexpectedEOC = fmt.Errorf("%w: unexpected end of contents", ErrMalformedTag)
	errInvalidEOC    = fmt.Errorf("%w: invalid end of contents", ErrMalformedTag)
)

// Decoder walks the TLVs of an input depth-first, one header at a time. The
// input may contain any number of consecutive top-level TLVs.
//
// The end of every constructed TLV is signalled by an [EndOfContents] header,
// regardless of whether the TLV uses the definite or indefinite-length format.
// For definite-length TLVs the returned end-of-contents header has a Size of
// zero because no marker is present in the input.
//
// If an error occurs, the Decoder is left in the state before the failing call.
type Decoder struct {
	state
	buf Buffer

	// MaxDepth limits the number of nested constructed TLVs. A value of zero or
	// less selects DefaultMaxDepth.
	MaxDepth int
}

// NewDecoder creates a new Decoder reading from b.
func NewDecoder(b []byte) *Decoder {
	d := new(Decoder)
	d.Reset(b)
	return d
}

// Reset resets the state of d to read from b. The internal stack of d is
// reused.
func (d *Decoder) Reset(b []byte) {
	d.buf = NewBuffer(b)
	d.state.reset(len(b))
}

// ReadHeader reads the next TLV header from the input. At the end of
// constructed TLVs a Header with [TagEndOfContents] is returned. At the end of
// the input io.EOF is returned.
//
// If the header indicates the primitive encoding, the second return value is
// the window of the content octets and the decoder advances past them.
// Otherwise, the decoder advances to the first nested TLV.
func (d *Decoder) ReadHeader() (Header, Buffer, error) {
	h, err := d.PeekHeader()
	if err != nil {
		return h, Buffer{}, err
	}
	switch {
	case h.IsEndOfContents():
		d.state.pop(h.Size)
		return h, Buffer{}, nil
	case h.Constructed:
		if d.StackDepth() >= d.maxDepth() {
			return h, Buffer{}, syntaxError(d.buf.Advance(d.offset), h, ErrNestingTooDeep)
		}
		d.state.push(h)
		return h, Buffer{}, nil
	}
	content := d.buf.Slice(d.offset+h.Size, d.offset+h.Size+h.Length)
	d.offset += h.Size + h.Length
	return h, content, nil
}

// PeekHeader reads the next TLV header from the input without advancing d. You
// can consume the peeked header using the ReadHeader method.
func (d *Decoder) PeekHeader() (Header, error) {
	if d.curr.End != LengthIndefinite && d.offset == d.curr.End {
		return Header{}, nil
	}
	if d.root() && d.offset == d.curr.Limit {
		return Header{}, io.EOF
	}
	window := d.buf.Slice(d.offset, d.curr.Limit)
	if window.HasEndOfContents() {
		switch {
		case d.root():
			return Header{}, syntaxError(window, d.curr.Header, errUnexpectedEOC)
		case d.curr.End != LengthIndefinite:
			return Header{}, syntaxError(window, d.curr.Header, errInvalidEOC)
		}
		return EndOfContents, nil
	}
	if window.Len() == 0 {
		// only indefinite-length TLVs end up here
		return Header{}, syntaxError(window, d.curr.Header, ErrUnterminated)
	}

	h, err := ParseHeader(window)
	if err != nil {
		var serr *SyntaxError
		if errors.As(err, &serr) && !d.root() {
			serr.Header = d.curr.Header
		}
		return h, err
	}
	if h.Tag == asn1.Universal(TagEndOfContents) {
		return h, syntaxError(window, d.curr.Header, errInvalidEOC)
	}
	if h.Length != LengthIndefinite && h.Length > window.Len()-h.Size {
		return h, syntaxError(window, d.curr.Header, ErrTruncated)
	}
	return h, nil
}

// Skip discards the remainder of the current constructed TLV including its
// end-of-contents. Nested TLVs of indefinite-length TLVs are scanned to find
// the end.
func (d *Decoder) Skip() (err error) {
	if d.root() {
		return errors.New("tlv: cannot skip root data value")
	}
	if d.curr.End != LengthIndefinite {
		d.offset = d.curr.End
		d.state.pop(0)
		return nil
	}
	depth := d.StackDepth()
	for d.StackDepth() >= depth && err == nil {
		_, _, err = d.ReadHeader()
	}
	return err
}

// maxDepth returns the effective nesting limit of d.
func (d *Decoder) maxDepth() int {
	if d.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return d.MaxDepth
}

// InputOffset returns the input offset of the next header to be read.
func (d *Decoder) InputOffset() int {
	return d.offset
}

// StackDepth returns the number of nested constructed TLVs of the current
// location of d. It is incremented whenever a constructed TLV is encountered
// and decremented whenever a constructed TLV ends. Zero represents the
// (virtual) top-level TLV.
func (d *Decoder) StackDepth() int { return len(d.stack) }
