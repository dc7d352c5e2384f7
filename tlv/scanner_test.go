// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlv

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func ExampleScanner() {
	data := []byte{0x30, 0x80, 0x02, 0x01, 0x04, 0xA0, 0x03, 0x02, 0x01, 0x0A, 0x00, 0x00}
	for e, err := range NewScanner(data).All() {
		if err != nil {
			panic(err)
		}
		fmt.Printf("%d %*s%v", e.Offset, 2*e.Depth, "", e.Header)
		if !e.Constructed {
			fmt.Printf(" % X", e.Value)
		}
		fmt.Println()
	}
	// Output:
	// 0 [UNIVERSAL 16]/c:indefinite
	// 2   [UNIVERSAL 2]/p:1 04
	// 5   [0]/c:3
	// 7     [UNIVERSAL 2]/p:1 0A
}

func TestScanner_All(t *testing.T) {
	tests := map[string]struct {
		data     []byte
		maxDepth int
		want     int
		wantErr  error
	}{
		"Empty":       {nil, 0, 0, nil},
		"TopLevel":    {[]byte{0x05, 0x00, 0x05, 0x00}, 0, 2, nil},
		"Nested":      {[]byte{0x30, 0x04, 0x30, 0x02, 0x05, 0x00}, 0, 3, nil},
		"TooDeep":     {[]byte{0x30, 0x04, 0x30, 0x02, 0x05, 0x00}, 1, 1, ErrNestingTooDeep},
		"Truncated":   {[]byte{0x30, 0x04, 0x05, 0x00}, 0, 0, ErrTruncated},
		"Malformed":   {[]byte{0x1F, 0x80}, 0, 0, ErrMalformedTag},
		"Reserved":    {[]byte{0x04, 0xFF}, 0, 0, ErrReservedLength},
		"Primitive0":  {[]byte{0x04, 0x80}, 0, 0, ErrMalformedLength},
		"DefiniteEOC": {[]byte{0x30, 0x04, 0x00, 0x00, 0x02, 0x00}, 0, 1, ErrMalformedTag},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewScanner(tt.data)
			s.MaxDepth = tt.maxDepth
			var (
				got int
				err error
			)
			for _, err = range s.All() {
				if err != nil {
					break
				}
				got++
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Scanner.All() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Scanner.All() yielded %d elements, want %d", got, tt.want)
			}
		})
	}
}

func TestScanner_SkipChildren(t *testing.T) {
	data := []byte{0x30, 0x80,
		0x30, 0x03, 0x02, 0x01, 0x01,
		0x30, 0x80, 0x05, 0x00, 0x00, 0x00,
		0x02, 0x01, 0x07,
		0x00, 0x00}
	s := NewScanner(data)
	var got []int
	for e, err := range s.All() {
		if err != nil {
			t.Fatalf("Scanner.All() error = %v", err)
		}
		got = append(got, e.Offset)
		if e.Depth == 1 {
			s.SkipChildren()
		}
	}
	if want := []int{0, 2, 7, 13}; !slices.Equal(got, want) {
		t.Errorf("Scanner.All() offsets = %v, want %v", got, want)
	}
}

func TestScanner_SkipChildren_unterminated(t *testing.T) {
	s := NewScanner([]byte{0x30, 0x80, 0x30, 0x80, 0x05, 0x00})
	var err error
	for e, err2 := range s.All() {
		if err = err2; err != nil {
			break
		}
		if e.Depth == 1 {
			s.SkipChildren()
		}
	}
	if !errors.Is(err, ErrUnterminated) {
		t.Errorf("Scanner.All() error = %v, want %v", err, ErrUnterminated)
	}
}
