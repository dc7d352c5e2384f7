// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/ber"
	"codello.dev/asn1-template/schemas/pkcs7"
	"codello.dev/asn1-template/schemas/receipt"
	"codello.dev/asn1-template/tlv"
)

// maxPreview is the number of content octets shown for binary values.
const maxPreview = 16

// decodeInput converts data from the input format to binary. Whitespace is
// ignored in textual formats.
func decodeInput(data []byte, format string) ([]byte, error) {
	if format == formatRaw {
		return data, nil
	}
	text := strings.Join(strings.Fields(string(data)), "")
	var (
		b   []byte
		err error
	)
	switch format {
	case formatHex:
		b, err = hex.DecodeString(text)
	case formatBase64:
		b, err = base64.StdEncoding.DecodeString(text)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s input: %w", format, err)
	}
	return b, nil
}

// dumpTree writes one line per TLV in data. Headers that are longer than
// necessary are marked. Constructed values at the last level of
// cfg.DisplayDepth are printed without their children.
func dumpTree(w io.Writer, data []byte, cfg Config) error {
	bw := bufio.NewWriter(w)
	s := tlv.NewScanner(data)
	s.MaxDepth = cfg.MaxDepth
	for e, err := range s.All() {
		if err != nil {
			bw.Flush()
			return err
		}
		fmt.Fprintf(bw, "%6d %s%s", e.Offset, strings.Repeat("  ", e.Depth), e.Header)
		if e.Size > e.MinimalSize() {
			bw.WriteString(" (non-minimal header)")
		}
		if e.Constructed && cfg.DisplayDepth > 0 && e.Depth+1 >= cfg.DisplayDepth {
			s.SkipChildren()
			bw.WriteString(" ...")
		}
		if !e.Constructed {
			if p := preview(e.Tag, e.Value); p != "" {
				bw.WriteByte(' ')
				bw.WriteString(p)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// preview returns a short representation of the content v of a primitive
// value with the given tag. Values that cannot be interpreted are shown as
// hex.
func preview(tag asn1.Tag, v []byte) string {
	if tag.Class != asn1.ClassUniversal {
		return hexPreview(v)
	}
	switch tag.Number {
	case asn1.TagBoolean:
		if b, err := ber.ParseBool(v); err == nil {
			return strconv.FormatBool(b)
		}
	case asn1.TagInteger, asn1.TagEnumerated:
		if n, err := ber.ParseInteger(v, true); err == nil {
			return n.String()
		}
	case asn1.TagNull:
		if ber.ParseNull(v) == nil {
			return ""
		}
	case asn1.TagOID:
		if oid, err := ber.ParseObjectIdentifier(v); err == nil {
			if name := pkcs7.ContentTypeName(oid); name != oid.String() {
				return oid.String() + " (" + name + ")"
			}
			return oid.String()
		}
	case asn1.TagBitString:
		if s, err := ber.ParseBitString(v); err == nil && s.BitLength <= 8*maxPreview {
			return s.String()
		}
	case asn1.TagUTCTime, asn1.TagGeneralizedTime:
		if s, err := ber.ParseString(v, ber.EncodingASCII); err == nil {
			return strconv.Quote(s)
		}
	default:
		if enc := ber.TagEncoding(tag); enc != ber.EncodingAuto {
			if s, err := ber.ParseString(v, enc); err == nil {
				return strconv.Quote(s)
			}
		}
	}
	return hexPreview(v)
}

func hexPreview(v []byte) string {
	if len(v) == 0 {
		return ""
	}
	if len(v) > maxPreview {
		return fmt.Sprintf("% X ... (%d bytes)", v[:maxPreview], len(v))
	}
	return fmt.Sprintf("% X", v)
}

// dumpSchema decodes data using the named schema and writes the result as
// indented JSON.
func dumpSchema(w io.Writer, data []byte, schema string, d *ber.Decoder) error {
	var (
		v   any
		err error
	)
	switch schema {
	case schemaPKCS7:
		v, err = pkcs7.Parse(data, d)
	case schemaReceipt:
		v, err = receipt.Parse(data, d)
	default:
		return fmt.Errorf("unknown schema %q", schema)
	}
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", schema, err)
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}
