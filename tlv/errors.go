// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"errors"
	"strconv"
)

// These errors classify malformed TLV input. They are never returned directly
// but wrapped in a [*SyntaxError] that records where the error occurred. Use
// [errors.Is] to test for them.
var (
	// ErrTruncated indicates that fewer bytes are available than a tag, length, or
	// the declared content requires.
	ErrTruncated = errors.New("truncated data value")
	// ErrMalformedTag indicates that a multi-byte tag runs past the end of the
	// input or its number overflows, or that an end-of-contents marker is
	// malformed.
	ErrMalformedTag = errors.New("malformed tag")
	// ErrMalformedLength indicates length octets that are inconsistent, such as an
	// indefinite length on a primitive value or a length that does not fit an int.
	ErrMalformedLength = errors.New("malformed length")
	// ErrReservedLength indicates the reserved length octet 0xFF.
	ErrReservedLength = errors.New("reserved length octet")
	// ErrUnterminated indicates that an indefinite-length value does not reach an
	// end-of-contents marker within the available input.
	ErrUnterminated = errors.New("unterminated indefinite-length value")
	// ErrNestingTooDeep indicates that values are nested deeper than allowed.
	ErrNestingTooDeep = errors.New("nesting too deep")
)

// SyntaxError represents an error in the TLV encoding. The error value contains
// the location of the error within the input as well as the [Header] of the
// data value containing the error, if it could be parsed.
type SyntaxError struct {
	requireKeyedLiterals
	nonComparable

	Err error // underlying error

	// ByteOffset is the location of the error. The location is usually the start of
	// the TLV header containing the error.
	ByteOffset int

	// Header is the TLV header of the data value containing the malformed data.
	// It is the zero value if the header itself could not be parsed.
	Header Header
}

func (e *SyntaxError) Unwrap() error { return e.Err }
func (e *SyntaxError) Error() string {
	b := []byte("tlv: syntax error")
	if e.Header != (Header{}) {
		b = append(b, " within "...)
		b = append(b, e.Header.String()...)
	}
	b = strconv.AppendInt(append(b, " at offset "...), int64(e.ByteOffset), 10)
	if e.Err != nil {
		b = append(b, ": "...)
		b = append(b, e.Err.Error()...)
	}
	return string(b)
}

// syntaxError returns a [*SyntaxError] for err located at the start of b.
func syntaxError(b Buffer, h Header, err error) error {
	return &SyntaxError{Err: err, ByteOffset: b.Offset(), Header: h}
}
