// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

// stateEntry represents the decoding state of a constructed TLV.
type stateEntry struct {
	Header

	// End is the input offset directly after the content octets of the TLV, or
	// LengthIndefinite if the TLV uses the indefinite-length format.
	End int

	// Limit is the input offset that nested TLVs must not exceed. This is End
	// for definite-length TLVs and the limit of the parent otherwise.
	Limit int
}

// state maintains the state of a [Decoder]. The state consists of a stack of
// constructed TLVs that are currently being processed. At the bottom of the
// stack there is a virtual constructed indefinite-length TLV representing the
// root level of the input.
type state struct {
	stack  []stateEntry
	curr   stateEntry // top entry of the stack
	offset int        // input offset of the next TLV header
}

// reset clears the state to a single root element spanning n bytes of input.
// The allocated stack space is reused.
func (s *state) reset(n int) {
	if s.stack == nil {
		s.stack = make([]stateEntry, 0, 10)
	}
	s.stack = s.stack[:0]
	s.offset = 0
	s.curr = stateEntry{
		Header: Header{Length: LengthIndefinite, Constructed: true},
		End:    LengthIndefinite,
		Limit:  n,
	}
}

// root indicates whether s is currently at the root level.
func (s *state) root() bool {
	return len(s.stack) == 0
}

// push puts h onto the stack, indicating that the contents of h are now being
// processed. h must start at the current offset.
func (s *state) push(h Header) {
	e := stateEntry{Header: h, End: LengthIndefinite, Limit: s.curr.Limit}
	if h.Length != LengthIndefinite {
		e.End = s.offset + h.Size + h.Length
		e.Limit = e.End
	}
	s.stack = append(s.stack, s.curr)
	s.curr = e
	s.offset += h.Size
}

// pop removes the topmost element from the stack, indicating that processing
// of the topmost element is completed. n is the size of the end-of-contents
// marker that was consumed.
func (s *state) pop(n int) {
	s.offset += n
	s.curr = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}
