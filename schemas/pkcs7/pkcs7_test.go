// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pkcs7

import (
	stdasn1 "encoding/asn1"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/ber"
)

var (
	oidData       = stdasn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1}
	oidSignedData = stdasn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}
	oidSHA256     = stdasn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}
)

// buildContainer returns a DER encoded container of the given content type.
// encap adds the optional content of the encapsulated content info, certs adds
// the optional certificates.
func buildContainer(contentType stdasn1.ObjectIdentifier, encap, certs func(b *cryptobyte.Builder)) []byte {
	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(contentType)
		b.AddASN1(cbasn1.Tag(0).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
			b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1Int64(1)
				b.AddASN1(cbasn1.SET, func(b *cryptobyte.Builder) {
					b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
						b.AddASN1ObjectIdentifier(oidSHA256)
						b.AddASN1NULL()
					})
				})
				b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
					b.AddASN1ObjectIdentifier(oidData)
					if encap != nil {
						encap(b)
					}
				})
				if certs != nil {
					certs(b)
				}
				// signerInfos
				b.AddASN1(cbasn1.SET, func(b *cryptobyte.Builder) {})
			})
		})
	})
	return b.BytesOrPanic()
}

func primitiveContent(payload []byte) func(b *cryptobyte.Builder) {
	return func(b *cryptobyte.Builder) {
		b.AddASN1(cbasn1.Tag(0).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
			b.AddASN1OctetString(payload)
		})
	}
}

func constructedContent(segments ...[]byte) func(b *cryptobyte.Builder) {
	return func(b *cryptobyte.Builder) {
		b.AddASN1(cbasn1.Tag(0).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
			b.AddASN1(cbasn1.OCTET_STRING.Constructed(), func(b *cryptobyte.Builder) {
				for _, s := range segments {
					b.AddASN1OctetString(s)
				}
			})
		})
	}
}

func TestParse(t *testing.T) {
	tests := map[string]struct {
		data []byte
		want []byte
	}{
		"Primitive":   {buildContainer(oidSignedData, primitiveContent([]byte("payload")), nil), []byte("payload")},
		"Constructed": {buildContainer(oidSignedData, constructedContent([]byte("pay"), []byte("load")), nil), []byte("payload")},
		"Detached":    {buildContainer(oidSignedData, nil, nil), nil},
		"Indefinite": {[]byte{0x30, 0x80,
			0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x07, 0x02,
			0xA0, 0x80,
			0x30, 0x80,
			0x02, 0x01, 0x01,
			0x31, 0x00,
			0x30, 0x80,
			0x06, 0x09, 0x2A, 0x86, 0x48, 0x86, 0xF7, 0x0D, 0x01, 0x07, 0x01,
			0xA0, 0x80,
			0x24, 0x80, 0x04, 0x02, 0xAB, 0xCD, 0x00, 0x00,
			0x00, 0x00,
			0x00, 0x00,
			0x00, 0x00,
			0x00, 0x00,
			0x00, 0x00}, []byte{0xAB, 0xCD}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ci, err := Parse(tc.data, nil)
			require.NoError(t, err)
			assert.True(t, ci.ContentType.Equal(OIDSignedData), "ContentType = %v", ci.ContentType)
			assert.Equal(t, 1, ci.SignedData.Version)
			assert.True(t, ci.SignedData.ContentInfo.ContentType.Equal(OIDData))
			assert.Equal(t, tc.want, ci.Content())
		})
	}
}

func TestParse_rawValues(t *testing.T) {
	data := buildContainer(oidSignedData, primitiveContent([]byte{0x01}), func(b *cryptobyte.Builder) {
		b.AddASN1(cbasn1.Tag(0).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
			b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1Int64(42)
			})
		})
	})
	ci, err := Parse(data, &ber.Decoder{DisallowTrailingData: true})
	require.NoError(t, err)

	algs := ci.SignedData.DigestAlgorithms
	assert.Equal(t, asn1.Universal(asn1.TagSet), algs.Tag)
	assert.True(t, algs.Constructed)
	assert.Len(t, algs.Bytes, 15)

	certs := ci.SignedData.Certificates
	assert.Equal(t, asn1.ContextSpecific(0), certs.Tag)
	assert.Equal(t, []byte{0x30, 0x03, 0x02, 0x01, 0x2A}, certs.Bytes)
}

func TestParse_errors(t *testing.T) {
	valid := buildContainer(oidSignedData, primitiveContent([]byte("payload")), nil)

	t.Run("NotSignedData", func(t *testing.T) {
		_, err := Parse(buildContainer(oidData, nil, nil), nil)
		assert.ErrorIs(t, err, ErrNotSignedData)
		assert.ErrorContains(t, err, "data")
	})
	t.Run("Truncated", func(t *testing.T) {
		_, err := Parse(valid[:len(valid)-4], nil)
		var serr *ber.SyntaxError
		assert.ErrorAs(t, err, &serr)
	})
	t.Run("TrailingData", func(t *testing.T) {
		_, err := Parse(append(valid, 0x00), &ber.Decoder{DisallowTrailingData: true})
		assert.ErrorIs(t, err, ber.ErrTrailingData)
	})
	t.Run("NotSequence", func(t *testing.T) {
		_, err := Parse([]byte{0x31, 0x00}, nil)
		assert.Error(t, err)
	})
}

func TestContentTypeName(t *testing.T) {
	tests := map[string]struct {
		oid  asn1.ObjectIdentifier
		want string
	}{
		"Data":       {OIDData, "data"},
		"SignedData": {OIDSignedData, "signedData"},
		"Enveloped":  {OIDEnvelopedData, "envelopedData"},
		"Both":       {OIDSignedAndEnvelopedData, "signedAndEnvelopedData"},
		"Digested":   {OIDDigestedData, "digestedData"},
		"Encrypted":  {OIDEncryptedData, "encryptedData"},
		"Unknown":    {asn1.ObjectIdentifier{1, 2, 3}, "1.2.3"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ContentTypeName(tc.oid))
		})
	}
}
