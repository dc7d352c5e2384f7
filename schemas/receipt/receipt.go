// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package receipt decodes app store receipts. A receipt is a PKCS #7 signed
// data container whose content is a SET of attributes:
//
//	ReceiptAttribute ::= SEQUENCE {
//	  type    INTEGER,
//	  version INTEGER,
//	  value   OCTET STRING }
//
// The value of each attribute holds another DER encoded value whose type
// depends on the attribute type. Attributes with unknown types are ignored.
// The signature of the container is not verified.
package receipt

import (
	"errors"
	"fmt"
	"time"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/ber"
	"codello.dev/asn1-template/schemas/pkcs7"
	"codello.dev/asn1-template/template"
)

// ErrNoContent indicates that a container does not hold a receipt payload.
var ErrNoContent = errors.New("receipt: container has no content")

// Attribute types of a receipt.
const (
	attrEnvironment        = 0
	attrBundleID           = 2
	attrAppVersion         = 3
	attrOpaqueValue        = 4
	attrHash               = 5
	attrCreationDate       = 12
	attrInAppPurchase      = 17
	attrOriginalAppVersion = 19
	attrExpirationDate     = 21
)

// Attribute types of an in-app purchase.
const (
	attrQuantity                   = 1701
	attrProductID                  = 1702
	attrTransactionID              = 1703
	attrPurchaseDate               = 1704
	attrOriginalTransactionID      = 1705
	attrOriginalPurchaseDate       = 1706
	attrProductType                = 1707
	attrSubscriptionExpirationDate = 1708
	attrWebOrderLineItemID         = 1711
	attrCancellationDate           = 1712
	attrTrialPeriod                = 1713
	attrIntroductoryPricePeriod    = 1719
	attrPromotionalOfferID         = 1721
)

// An Attribute is a single entry of a receipt or an in-app purchase. Value
// holds the DER encoding of the attribute value.
type Attribute struct {
	Type    int
	Version int
	Value   []byte
}

// attributeSet locates the attributes of a receipt or an in-app purchase.
var attributeSet = template.Universal(asn1.TagSet).Constructed()

// ParseAttributes decodes a SET of attributes.
func ParseAttributes(b []byte, d *ber.Decoder) ([]Attribute, error) {
	if d == nil {
		d = &ber.Decoder{}
	}
	var attrs []Attribute
	if err := d.DecodeWithTemplate(b, &attrs, attributeSet); err != nil {
		return nil, err
	}
	return attrs, nil
}

// Receipt is the decoded payload of an app receipt.
type Receipt struct {
	Environment        string          `json:"environment,omitempty"`
	BundleID           string          `json:"bundleId"`
	BundleIDData       []byte          `json:"-"`
	AppVersion         string          `json:"appVersion"`
	OriginalAppVersion string          `json:"originalAppVersion"`
	OpaqueValue        []byte          `json:"opaqueValue,omitempty"`
	Hash               []byte          `json:"hash,omitempty"`
	CreationDate       time.Time       `json:"creationDate,omitzero"`
	ExpirationDate     time.Time       `json:"expirationDate,omitzero"`
	InAppPurchases     []InAppPurchase `json:"inAppPurchases,omitempty"`
}

var receiptAttributes = map[int]attributeFunc[Receipt]{
	attrEnvironment: func(d *ber.Decoder, r *Receipt, b []byte) error {
		return d.Decode(b, &r.Environment)
	},
	attrBundleID: func(d *ber.Decoder, r *Receipt, b []byte) error {
		// The encoded bundle identifier is an input of the receipt hash.
		r.BundleIDData = b
		return d.Decode(b, &r.BundleID)
	},
	attrAppVersion: func(d *ber.Decoder, r *Receipt, b []byte) error {
		return d.Decode(b, &r.AppVersion)
	},
	attrOpaqueValue: func(_ *ber.Decoder, r *Receipt, b []byte) error {
		r.OpaqueValue = b
		return nil
	},
	attrHash: func(_ *ber.Decoder, r *Receipt, b []byte) error {
		r.Hash = b
		return nil
	},
	attrCreationDate: func(d *ber.Decoder, r *Receipt, b []byte) error {
		return decodeDate(d, b, &r.CreationDate)
	},
	attrInAppPurchase: func(d *ber.Decoder, r *Receipt, b []byte) error {
		p, err := ParseInAppPurchase(b, d)
		if err != nil {
			return err
		}
		r.InAppPurchases = append(r.InAppPurchases, *p)
		return nil
	},
	attrOriginalAppVersion: func(d *ber.Decoder, r *Receipt, b []byte) error {
		return d.Decode(b, &r.OriginalAppVersion)
	},
	attrExpirationDate: func(d *ber.Decoder, r *Receipt, b []byte) error {
		return decodeDate(d, b, &r.ExpirationDate)
	},
}

// Parse decodes a receipt from its PKCS #7 container. If d is nil, a decoder
// with default settings is used.
func Parse(b []byte, d *ber.Decoder) (*Receipt, error) {
	ci, err := pkcs7.Parse(b, d)
	if err != nil {
		return nil, err
	}
	if len(ci.Content()) == 0 {
		return nil, ErrNoContent
	}
	return ParsePayload(ci.Content(), d)
}

// ParsePayload decodes a receipt from the SET of attributes that forms the
// content of the receipt container.
func ParsePayload(b []byte, d *ber.Decoder) (*Receipt, error) {
	if d == nil {
		d = &ber.Decoder{}
	}
	r := new(Receipt)
	if err := decodeAttributes(d, b, r, receiptAttributes); err != nil {
		return nil, fmt.Errorf("receipt: %w", err)
	}
	return r, nil
}

// InAppPurchase is the receipt of a single in-app purchase.
type InAppPurchase struct {
	Quantity                   int         `json:"quantity"`
	ProductID                  string      `json:"productId"`
	ProductType                ProductType `json:"productType"`
	TransactionID              string      `json:"transactionId"`
	OriginalTransactionID      string      `json:"originalTransactionId"`
	PurchaseDate               time.Time   `json:"purchaseDate,omitzero"`
	OriginalPurchaseDate       time.Time   `json:"originalPurchaseDate,omitzero"`
	SubscriptionExpirationDate time.Time   `json:"subscriptionExpirationDate,omitzero"`
	CancellationDate           time.Time   `json:"cancellationDate,omitzero"`
	WebOrderLineItemID         int64       `json:"webOrderLineItemId,omitempty"`
	TrialPeriod                bool        `json:"trialPeriod"`
	IntroductoryPricePeriod    bool        `json:"introductoryPricePeriod"`
	PromotionalOfferID         string      `json:"promotionalOfferId,omitempty"`
}

var inAppAttributes = map[int]attributeFunc[InAppPurchase]{
	attrQuantity: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		return d.Decode(b, &p.Quantity)
	},
	attrProductID: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		return d.Decode(b, &p.ProductID)
	},
	attrTransactionID: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		return d.Decode(b, &p.TransactionID)
	},
	attrPurchaseDate: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		return decodeDate(d, b, &p.PurchaseDate)
	},
	attrOriginalTransactionID: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		return d.Decode(b, &p.OriginalTransactionID)
	},
	attrOriginalPurchaseDate: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		return decodeDate(d, b, &p.OriginalPurchaseDate)
	},
	attrProductType: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		var n int
		if err := d.Decode(b, &n); err != nil {
			return err
		}
		p.ProductType = productType(n)
		return nil
	},
	attrSubscriptionExpirationDate: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		return decodeDate(d, b, &p.SubscriptionExpirationDate)
	},
	attrWebOrderLineItemID: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		return d.Decode(b, &p.WebOrderLineItemID)
	},
	attrCancellationDate: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		return decodeDate(d, b, &p.CancellationDate)
	},
	attrTrialPeriod: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		return decodeFlag(d, b, &p.TrialPeriod)
	},
	attrIntroductoryPricePeriod: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		return decodeFlag(d, b, &p.IntroductoryPricePeriod)
	},
	attrPromotionalOfferID: func(d *ber.Decoder, p *InAppPurchase, b []byte) error {
		return d.Decode(b, &p.PromotionalOfferID)
	},
}

// ParseInAppPurchase decodes the value of an in-app purchase attribute.
func ParseInAppPurchase(b []byte, d *ber.Decoder) (*InAppPurchase, error) {
	if d == nil {
		d = &ber.Decoder{}
	}
	p := &InAppPurchase{Quantity: 1, ProductType: ProductTypeUnknown}
	if err := decodeAttributes(d, b, p, inAppAttributes); err != nil {
		return nil, fmt.Errorf("in-app purchase: %w", err)
	}
	return p, nil
}

// attributeFunc decodes the value b of an attribute into v.
type attributeFunc[T any] func(d *ber.Decoder, v *T, b []byte) error

// decodeAttributes decodes the attribute SET b and applies the functions in
// fns to the attribute values.
func decodeAttributes[T any](d *ber.Decoder, b []byte, v *T, fns map[int]attributeFunc[T]) error {
	attrs, err := ParseAttributes(b, d)
	if err != nil {
		return err
	}
	for _, a := range attrs {
		fn, ok := fns[a.Type]
		if !ok {
			if d.Logger != nil {
				d.Logger.Debug().Int("type", a.Type).Msg("skip unknown attribute")
			}
			continue
		}
		if err = fn(d, v, a.Value); err != nil {
			return fmt.Errorf("attribute %d: %w", a.Type, err)
		}
	}
	return nil
}

// decodeDate decodes an RFC 3339 date encoded as IA5String. An empty string
// leaves t at its zero value.
func decodeDate(d *ber.Decoder, b []byte, t *time.Time) error {
	var s string
	if err := d.DecodeWithTemplate(b, &s, template.Universal(asn1.TagIA5String)); err != nil {
		return err
	}
	if s == "" {
		*t = time.Time{}
		return nil
	}
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// decodeFlag decodes an INTEGER that is non-zero for true.
func decodeFlag(d *ber.Decoder, b []byte, v *bool) error {
	var n int
	if err := d.Decode(b, &n); err != nil {
		return err
	}
	*v = n != 0
	return nil
}
