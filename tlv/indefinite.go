// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import asn1 "codello.dev/asn1-template"

// ResolveIndefinite computes the extent of the contents of an
// indefinite-length value. b must start immediately after the length octet of
// the value. The result is the number of bytes from the start of b through the
// end-of-contents marker, including the marker.
//
// The contents are scanned as a sequence of nested TLVs. Nested
// indefinite-length values are resolved recursively, each level decrementing
// maxDepth. If maxDepth reaches zero, ErrNestingTooDeep is returned. If no
// end-of-contents marker is found before b is exhausted, ErrUnterminated is
// returned.
func ResolveIndefinite(b Buffer, maxDepth int) (int, error) {
	if maxDepth <= 0 {
		return 0, syntaxError(b, Header{}, ErrNestingTooDeep)
	}
	n := 0
	for {
		rest := b.Advance(n)
		if rest.HasEndOfContents() {
			return n + 2, nil
		}
		if rest.Len() < 2 {
			return 0, syntaxError(rest, Header{}, ErrUnterminated)
		}
		h, err := ParseHeader(rest)
		if err != nil {
			return 0, err
		}
		if h.Tag == asn1.Universal(TagEndOfContents) {
			// an end-of-contents marker with content or constructed bit
			return 0, syntaxError(rest, h, ErrMalformedTag)
		}
		if h.Length == LengthIndefinite {
			span, err := ResolveIndefinite(rest.Advance(h.Size), maxDepth-1)
			if err != nil {
				return 0, err
			}
			n += h.Size + span
			continue
		}
		if h.Length > rest.Len()-h.Size {
			return 0, syntaxError(rest, h, ErrTruncated)
		}
		n += h.Size + h.Length
	}
}
