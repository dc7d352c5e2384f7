// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"errors"
	"testing"
)

func TestResolveIndefinite(t *testing.T) {
	tests := map[string]struct {
		data     []byte // bytes following the 0x80 length octet
		maxDepth int
		want     int
		wantErr  error
	}{
		"Empty":      {[]byte{0x00, 0x00}, 1, 2, nil},
		"Primitive":  {[]byte{0x02, 0x01, 0x04, 0x00, 0x00}, 1, 5, nil},
		"TrailingOK": {[]byte{0x02, 0x01, 0x04, 0x00, 0x00, 0x05, 0x00}, 1, 5, nil},
		"Nested": {[]byte{
			0x02, 0x01, 0x04,
			0xA0, 0x80,
			0x30, 0x80,
			0x02, 0x01, 0x0A,
			0x00, 0x00,
			0x00, 0x00,
			0x00, 0x00,
		}, 3, 16, nil},
		"DefiniteChild":   {[]byte{0x30, 0x03, 0x02, 0x01, 0x01, 0x00, 0x00}, 1, 7, nil},
		"Unterminated":    {[]byte{0x02, 0x01, 0x04}, 1, 0, ErrUnterminated},
		"NoInput":         {nil, 1, 0, ErrUnterminated},
		"SingleZero":      {[]byte{0x00}, 1, 0, ErrUnterminated},
		"ChildTruncated":  {[]byte{0x04, 0x05, 0x00}, 1, 0, ErrTruncated},
		"InvalidEOC":      {[]byte{0x00, 0x01, 0x00, 0x00, 0x00}, 1, 0, ErrMalformedTag},
		"ConstructedEOC":  {[]byte{0x20, 0x00, 0x00, 0x00}, 1, 0, ErrMalformedTag},
		"TooDeep":         {[]byte{0x30, 0x80, 0x30, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, 2, 0, ErrNestingTooDeep},
		"ExactDepth":      {[]byte{0x30, 0x80, 0x30, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, 3, 10, nil},
		"ZeroDepth":       {[]byte{0x00, 0x00}, 0, 0, ErrNestingTooDeep},
		"ReservedLength":  {[]byte{0x30, 0xFF, 0x00, 0x00}, 1, 0, ErrReservedLength},
		"NestedMissingEO": {[]byte{0x30, 0x80, 0x02, 0x01, 0x01, 0x00, 0x00}, 2, 0, ErrUnterminated},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ResolveIndefinite(NewBuffer(tt.data), tt.maxDepth)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ResolveIndefinite() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveIndefinite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveIndefinite_deepInput(t *testing.T) {
	// 10000 nested indefinite-length SEQUENCEs must be rejected without
	// exhausting the stack.
	const depth = 10000
	data := make([]byte, 0, 4*depth)
	for range depth {
		data = append(data, 0x30, 0x80)
	}
	for range depth {
		data = append(data, 0x00, 0x00)
	}
	_, err := ResolveIndefinite(NewBuffer(data[2:]), DefaultMaxDepth)
	if !errors.Is(err, ErrNestingTooDeep) {
		t.Errorf("ResolveIndefinite() error = %v, want %v", err, ErrNestingTooDeep)
	}
}
