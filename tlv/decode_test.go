// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"errors"
	"io"
	"slices"
	"testing"

	asn1 "codello.dev/asn1-template"
)

var (
	hSeqIndef = Header{asn1.Universal(asn1.TagSequence), true, LengthIndefinite, 2}
	hCS0      = Header{asn1.ContextSpecific(0), true, 3, 2}
	hInt      = Header{asn1.Universal(asn1.TagInteger), false, 1, 2}
	hEnd      = Header{} // end of a definite-length TLV
)

// TestDecoder_ReadHeader tests the general reading behavior. Each test case
// consists of an input and the sequence of headers and values produced by
// subsequent [Decoder.ReadHeader] calls. The sequence ends with the error of
// the final call. The values are the content octets of primitive TLVs.
func TestDecoder_ReadHeader(t *testing.T) {
	tests := map[string]struct {
		data       []byte
		maxDepth   int
		want       []Header
		wantValues [][]byte
		wantErr    error
	}{
		"Empty":     {nil, 0, nil, nil, io.EOF},
		"Primitive": {[]byte{0x02, 0x01, 0x15}, 0, []Header{hInt}, [][]byte{{0x15}}, io.EOF},
		"TwoTopLevel": {[]byte{0x02, 0x01, 0x15, 0x02, 0x01, 0x16}, 0,
			[]Header{hInt, hInt}, [][]byte{{0x15}, {0x16}}, io.EOF},
		"Nested": {[]byte{0x30, 0x80, 0x02, 0x01, 0x04, 0xA0, 0x03, 0x02, 0x01, 0x0A, 0x00, 0x00}, 0,
			[]Header{hSeqIndef, hInt, hCS0, hInt, hEnd, EndOfContents}, [][]byte{{0x04}, {0x0A}}, io.EOF},
		"ChildExceedsParent": {[]byte{0x30, 0x03, 0x02, 0x02, 0x15}, 0,
			[]Header{{asn1.Universal(asn1.TagSequence), true, 3, 2}}, nil, ErrTruncated},
		"UnexpectedEOC": {[]byte{0x00, 0x00}, 0, nil, nil, ErrMalformedTag},
		"InvalidEOC":    {[]byte{0x30, 0x80, 0x00, 0x01, 0x00}, 0, []Header{hSeqIndef}, nil, ErrMalformedTag},
		"DefiniteEOC": {[]byte{0x30, 0x04, 0x00, 0x00, 0x02, 0x00}, 0,
			[]Header{{asn1.Universal(asn1.TagSequence), true, 4, 2}}, nil, ErrMalformedTag},
		"Unterminated": {[]byte{0x30, 0x80, 0x02, 0x01, 0x04}, 0,
			[]Header{hSeqIndef, hInt}, [][]byte{{0x04}}, ErrUnterminated},
		"TooDeep": {[]byte{0x30, 0x02, 0x30, 0x00}, 1,
			[]Header{{asn1.Universal(asn1.TagSequence), true, 2, 2}}, nil, ErrNestingTooDeep},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d := NewDecoder(tt.data)
			d.MaxDepth = tt.maxDepth
			var (
				got    []Header
				values [][]byte
			)
			h, v, err := d.ReadHeader()
			for err == nil {
				got = append(got, h)
				if !h.Constructed && !h.IsEndOfContents() {
					values = append(values, v.Bytes())
				}
				h, v, err = d.ReadHeader()
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decoder.ReadHeader() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Decoder.ReadHeader() = %v, want %v", got, tt.want)
			}
			if !slices.EqualFunc(values, tt.wantValues, slices.Equal) {
				t.Errorf("Decoder.ReadHeader() values = % X, want % X", values, tt.wantValues)
			}
		})
	}
}

func TestDecoder_PeekHeader(t *testing.T) {
	d := NewDecoder([]byte{0x02, 0x01, 0x15})
	h1, err := d.PeekHeader()
	if err != nil {
		t.Fatalf("Decoder.PeekHeader() error = %v", err)
	}
	h2, _, err := d.ReadHeader()
	if err != nil {
		t.Fatalf("Decoder.ReadHeader() error = %v", err)
	}
	if h1 != h2 {
		t.Errorf("Decoder.PeekHeader() = %v, ReadHeader() = %v", h1, h2)
	}
	if d.InputOffset() != 3 {
		t.Errorf("Decoder.InputOffset() = %d, want 3", d.InputOffset())
	}
}

func TestDecoder_Skip(t *testing.T) {
	tests := map[string][]byte{
		"Definite":   {0x30, 0x05, 0x30, 0x03, 0x02, 0x01, 0x01, 0x02, 0x01, 0x07},
		"Indefinite": {0x30, 0x80, 0x30, 0x80, 0x02, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x02, 0x01, 0x07},
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			d := NewDecoder(data)
			if _, _, err := d.ReadHeader(); err != nil {
				t.Fatalf("Decoder.ReadHeader() error = %v", err)
			}
			if d.StackDepth() != 1 {
				t.Fatalf("Decoder.StackDepth() = %d, want 1", d.StackDepth())
			}
			if err := d.Skip(); err != nil {
				t.Fatalf("Decoder.Skip() error = %v", err)
			}
			if d.StackDepth() != 0 {
				t.Errorf("Decoder.StackDepth() = %d after Skip, want 0", d.StackDepth())
			}
			h, v, err := d.ReadHeader()
			if err != nil {
				t.Fatalf("Decoder.ReadHeader() error = %v", err)
			}
			if h != hInt || !slices.Equal(v.Bytes(), []byte{0x07}) {
				t.Errorf("Decoder.ReadHeader() = %v % X, want %v 07", h, v.Bytes(), hInt)
			}
		})
	}
}

func TestDecoder_Skip_root(t *testing.T) {
	if err := NewDecoder(nil).Skip(); err == nil {
		t.Errorf("Decoder.Skip() at root returned no error")
	}
}
