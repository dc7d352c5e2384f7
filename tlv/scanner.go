// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"io"
	"iter"
)

// Element is a single TLV visited by a [Scanner].
type Element struct {
	Header

	// Offset is the input offset of the first identifier octet.
	Offset int
	// Depth is the number of constructed TLVs enclosing the element.
	Depth int
	// Value holds the content octets of primitive elements. It aliases the
	// input.
	Value []byte
}

// Scanner visits every TLV of an input in depth-first order. Constructed TLVs
// are reported before their children. End-of-contents markers are not
// reported.
type Scanner struct {
	d    Decoder
	skip bool

	// MaxDepth limits the nesting of constructed TLVs. A value of zero or less
	// selects DefaultMaxDepth.
	MaxDepth int
}

// NewScanner returns a Scanner visiting the TLVs in b.
func NewScanner(b []byte) *Scanner {
	s := new(Scanner)
	s.d.Reset(b)
	return s
}

// SkipChildren makes the running iteration of [Scanner.All] continue after the
// end of the most recently yielded element instead of descending into it. It
// has no effect for primitive elements.
func (s *Scanner) SkipChildren() {
	s.skip = true
}

// All returns a sequence of all elements in the input. After an error the
// sequence ends.
func (s *Scanner) All() iter.Seq2[Element, error] {
	return func(yield func(Element, error) bool) {
		s.d.MaxDepth = s.MaxDepth
		s.skip = false
		for {
			offset := s.d.InputOffset()
			depth := s.d.StackDepth()
			h, v, err := s.d.ReadHeader()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Element{Offset: offset, Depth: depth}, err)
				return
			}
			if h.IsEndOfContents() {
				continue
			}
			e := Element{Header: h, Offset: offset, Depth: depth}
			if !h.Constructed {
				e.Value = v.Bytes()
			}
			if !yield(e, nil) {
				return
			}
			if s.skip && h.Constructed {
				if err = s.d.Skip(); err != nil {
					yield(Element{Offset: s.d.InputOffset(), Depth: depth + 1}, err)
					return
				}
			}
			s.skip = false
		}
	}
}
