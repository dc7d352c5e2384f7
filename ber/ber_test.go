// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"testing"

	asn1 "codello.dev/asn1-template"
)

func TestRawValue_String(t *testing.T) {
	tests := map[string]struct {
		rv   RawValue
		want string
	}{
		"Short": {RawValue{Tag: asn1.ContextSpecific(3), Bytes: []byte{0x01, 0x02}}, "RawValue{[3] (primitive) {01 02}}"},
		"Long": {RawValue{Tag: asn1.Universal(asn1.TagSequence), Constructed: true, Bytes: bytes.Repeat([]byte{0}, 25)},
			"RawValue{[UNIVERSAL 16] (constructed) {25 bytes}}"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tc.rv.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEncoding_String(t *testing.T) {
	if got := EncodingUTF16.String(); got != "UTF16" {
		t.Errorf("String() = %q, want %q", got, "UTF16")
	}
	if got := parseEncoding("latin1"); got != EncodingLatin1 {
		t.Errorf("parseEncoding() = %v, want %v", got, EncodingLatin1)
	}
	if got := parseEncoding("ebcdic"); got != EncodingAuto {
		t.Errorf("parseEncoding() = %v, want %v", got, EncodingAuto)
	}
}
