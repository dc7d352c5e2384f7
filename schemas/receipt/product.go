// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package receipt

// ProductType identifies the kind of product of an in-app purchase.
type ProductType int

const (
	ProductTypeUnknown                   ProductType = -1
	ProductTypeNonConsumable             ProductType = 0
	ProductTypeConsumable                ProductType = 1
	ProductTypeNonRenewingSubscription   ProductType = 2
	ProductTypeAutoRenewableSubscription ProductType = 3
)

// productType maps unknown values to ProductTypeUnknown.
func productType(n int) ProductType {
	if n < int(ProductTypeNonConsumable) || n > int(ProductTypeAutoRenewableSubscription) {
		return ProductTypeUnknown
	}
	return ProductType(n)
}

func (t ProductType) String() string {
	switch t {
	case ProductTypeNonConsumable:
		return "nonConsumable"
	case ProductTypeConsumable:
		return "consumable"
	case ProductTypeNonRenewingSubscription:
		return "nonRenewingSubscription"
	case ProductTypeAutoRenewableSubscription:
		return "autoRenewableSubscription"
	default:
		return "unknown"
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (t ProductType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
