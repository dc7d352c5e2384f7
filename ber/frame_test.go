// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/template"
	"codello.dev/asn1-template/tlv"
)

// frameChain returns a frame nested depth levels deep, each level named "v".
func frameChain(d *Decoder, depth int) *Frame {
	f := &Frame{d: d, name: "v", depth: 1}
	for f.depth < depth {
		f = &Frame{d: d, parent: f, name: "v", depth: f.depth + 1}
	}
	return f
}

func TestFrame_Path(t *testing.T) {
	f := frameChain(&Decoder{}, 3)
	f = &Frame{d: f.d, parent: f, name: "[2]", depth: 4}
	if got, want := f.Path(), "v.v.v[2]"; got != want {
		t.Errorf("Frame.Path() = %q, want %q", got, want)
	}
	if got, want := f.pathTo("x"), "v.v.v[2].x"; got != want {
		t.Errorf("Frame.pathTo() = %q, want %q", got, want)
	}
}

func TestFrame_next_errorPath(t *testing.T) {
	f := frameChain(&Decoder{}, 2)
	f.rest = tlv.NewBuffer([]byte{0x04, 0x00})
	_, err := f.next("x", template.Universal(asn1.TagInteger))
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("Frame.next() error = %v, want *SyntaxError", err)
	}
	if serr.Path != "v.v.x" {
		t.Errorf("SyntaxError.Path = %q, want %q", serr.Path, "v.v.x")
	}
}

// A successful match allocates independently of the depth of the frame.
func TestFrame_next_allocs(t *testing.T) {
	info := zerolog.New(io.Discard).Level(zerolog.InfoLevel)
	decoders := map[string]*Decoder{
		"NoLogger":  {},
		"InfoLevel": {Logger: &info},
	}
	content := tlv.NewBuffer([]byte{0x02, 0x01, 0x05})
	tmpl := template.Universal(asn1.TagInteger)
	for name, d := range decoders {
		t.Run(name, func(t *testing.T) {
			allocs := func(depth int) float64 {
				f := frameChain(d, depth)
				return testing.AllocsPerRun(50, func() {
					f.rest = content
					if _, err := f.next("x", tmpl); err != nil {
						t.Fatalf("Frame.next() error = %v", err)
					}
				})
			}
			shallow, deep := allocs(1), allocs(32)
			if deep > shallow {
				t.Errorf("Frame.next() allocs at depth 32 = %v, at depth 1 = %v", deep, shallow)
			}
		})
	}
}
