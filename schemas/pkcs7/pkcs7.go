// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pkcs7 decodes the envelope of PKCS #7 signed data as defined in
// [RFC 2315]. Only the parts needed to reach the signed content are
// interpreted. Digest algorithms and certificates are kept as raw values and
// signatures are not verified.
//
// The decoder accepts BER, so containers using indefinite lengths or
// constructed OCTET STRINGs (as produced by some signing tools) are supported.
//
// [RFC 2315]: https://www.rfc-editor.org/rfc/rfc2315
package pkcs7

import (
	"errors"
	"fmt"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/ber"
	"codello.dev/asn1-template/template"
)

// Content types defined in section 14 of RFC 2315.
var (
	OIDData                   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1}
	OIDSignedData             = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}
	OIDEnvelopedData          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 3}
	OIDSignedAndEnvelopedData = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 4}
	OIDDigestedData           = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 5}
	OIDEncryptedData          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 6}
)

// ErrNotSignedData indicates that a container holds a content type other than
// signed data.
var ErrNotSignedData = errors.New("pkcs7: content is not signed data")

// ContentTypeName returns the name of a content type as used in RFC 2315. For
// unknown identifiers the dot-separated notation is returned.
func ContentTypeName(oid asn1.ObjectIdentifier) string {
	switch {
	case oid.Equal(OIDData):
		return "data"
	case oid.Equal(OIDSignedData):
		return "signedData"
	case oid.Equal(OIDEnvelopedData):
		return "envelopedData"
	case oid.Equal(OIDSignedAndEnvelopedData):
		return "signedAndEnvelopedData"
	case oid.Equal(OIDDigestedData):
		return "digestedData"
	case oid.Equal(OIDEncryptedData):
		return "encryptedData"
	}
	return oid.String()
}

// ContentInfo is the outermost structure of a PKCS #7 container:
//
//	ContentInfo ::= SEQUENCE {
//	  contentType ContentType,
//	  content [0] EXPLICIT SignedData }
type ContentInfo struct {
	ContentType asn1.ObjectIdentifier `json:"contentType"`
	SignedData  SignedData            `json:"signedData"`
}

func (c *ContentInfo) ASN1Fields() []ber.Field {
	return []ber.Field{
		ber.Value("contentType", template.Universal(asn1.TagOID), &c.ContentType),
		ber.Value("signedData", template.ContextSpecific(0).Constructed().Explicit(asn1.TagSequence).Constructed(), &c.SignedData),
	}
}

// Content returns the encapsulated content octets of c.
func (c *ContentInfo) Content() []byte {
	return c.SignedData.ContentInfo.Content
}

// SignedData holds the signed content and the information needed to verify it.
// Fields following the certificates are not decoded.
type SignedData struct {
	Version          int                 `json:"version"`
	DigestAlgorithms ber.RawValue        `json:"-"`
	ContentInfo      EncapsulatedContent `json:"contentInfo"`
	Certificates     ber.RawValue        `json:"-"`
}

func (s *SignedData) ASN1Fields() []ber.Field {
	return []ber.Field{
		ber.Value("version", template.Universal(asn1.TagInteger), &s.Version),
		ber.Value("digestAlgorithms", template.Universal(asn1.TagSet).Constructed(), &s.DigestAlgorithms),
		ber.Value("contentInfo", template.Universal(asn1.TagSequence).Constructed(), &s.ContentInfo),
		ber.Optional(ber.Value("certificates", template.ContextSpecific(0).Constructed(), &s.Certificates)),
	}
}

// EncapsulatedContent is the content that has been signed. The content is
// absent for detached signatures.
type EncapsulatedContent struct {
	ContentType asn1.ObjectIdentifier `json:"contentType"`
	Content     Content               `json:"content,omitempty"`
}

func (e *EncapsulatedContent) ASN1Fields() []ber.Field {
	return []ber.Field{
		ber.Value("contentType", template.Universal(asn1.TagOID), &e.ContentType),
		ber.Optional(ber.Value("content", Content(nil).ASN1Template(), &e.Content)),
	}
}

// Content holds the octets of an explicitly tagged OCTET STRING. Both the
// primitive and the constructed encoding of the OCTET STRING are accepted.
type Content []byte

// ASN1Template returns the template of the [0] EXPLICIT wrapper.
func (Content) ASN1Template() template.Template {
	return template.ContextSpecific(0).Constructed()
}

func (c *Content) BerDecode(f *ber.Frame, _ template.Object) error {
	t := template.Universal(asn1.TagOctetString)
	if !f.Peek(t) {
		t = t.Constructed()
	}
	obj, err := f.Next(t)
	if err != nil {
		return err
	}
	return f.Decode(obj, (*[]byte)(c))
}

// Parse decodes a PKCS #7 container holding signed data. If d is nil, a
// decoder with default settings is used.
func Parse(b []byte, d *ber.Decoder) (*ContentInfo, error) {
	if d == nil {
		d = &ber.Decoder{}
	}
	ci := new(ContentInfo)
	if err := d.Decode(b, ci); err != nil {
		return nil, fmt.Errorf("pkcs7: %w", err)
	}
	if !ci.ContentType.Equal(OIDSignedData) {
		return nil, fmt.Errorf("%w: %s", ErrNotSignedData, ContentTypeName(ci.ContentType))
	}
	return ci, nil
}
