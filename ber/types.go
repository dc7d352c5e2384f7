// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ber

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/internal/vlq"
)

var (
	errEmptyInteger    = errors.New("empty integer")
	errIntegerTooLarge = errors.New("integer too large")
	errNegativeInteger = errors.New("integer is negative")
)

// Go types with a dedicated decoding.
var (
	bigIntType    = reflect.TypeFor[big.Int]()
	oidType       = reflect.TypeFor[asn1.ObjectIdentifier]()
	bitStringType = reflect.TypeFor[asn1.BitString]()
	nullType      = reflect.TypeFor[asn1.Null]()
	rawValueType  = reflect.TypeFor[RawValue]()
	timeType      = reflect.TypeFor[time.Time]()
)

//region [UNIVERSAL 1] BOOLEAN

// ParseBool interprets b as the content octets of a BOOLEAN. Any non-zero octet
// is decoded as true.
func ParseBool(b []byte) (bool, error) {
	if len(b) != 1 {
		return false, errors.New("invalid BOOLEAN length")
	}
	return b[0] != 0, nil
}

//endregion

//region [UNIVERSAL 2] INTEGER and [UNIVERSAL 10] ENUMERATED

// ParseInteger interprets b as the content octets of an INTEGER. If signed is
// false, b is interpreted as an unsigned big-endian magnitude. Otherwise b
// holds a two's-complement value.
func ParseInteger(b []byte, signed bool) (*big.Int, error) {
	if len(b) == 0 {
		return nil, errEmptyInteger
	}
	n := new(big.Int).SetBytes(b)
	if signed && b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8))
	}
	return n, nil
}

// ParseInt64 works like [ParseInteger] but the value must fit into an int64.
func ParseInt64(b []byte, signed bool) (int64, error) {
	if !signed {
		u, err := ParseUint64(b, false)
		if err != nil {
			return 0, err
		}
		if u > math.MaxInt64 {
			return 0, errIntegerTooLarge
		}
		return int64(u), nil
	}
	if len(b) == 0 {
		return 0, errEmptyInteger
	}
	// drop redundant sign extension
	for len(b) > 1 && (b[0] == 0x00 && b[1]&0x80 == 0 || b[0] == 0xff && b[1]&0x80 != 0) {
		b = b[1:]
	}
	if len(b) > 8 {
		return 0, errIntegerTooLarge
	}
	var v int64
	if b[0]&0x80 != 0 {
		v = -1
	}
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v, nil
}

// ParseUint64 works like [ParseInteger] but the value must fit into a uint64.
// If signed is true, negative values are rejected.
func ParseUint64(b []byte, signed bool) (uint64, error) {
	if len(b) == 0 {
		return 0, errEmptyInteger
	}
	if signed && b[0]&0x80 != 0 {
		return 0, errNegativeInteger
	}
	for len(b) > 1 && b[0] == 0 {
		b = b[1:]
	}
	if len(b) > 8 {
		return 0, errIntegerTooLarge
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

//endregion

//region [UNIVERSAL 3] BIT STRING

// ParseBitString interprets b as the content octets of a primitive BIT STRING.
// Padding bits are decoded as zero bits. The result does not alias b.
func ParseBitString(b []byte) (asn1.BitString, error) {
	if len(b) == 0 {
		return asn1.BitString{}, errors.New("zero length BIT STRING")
	}
	padding := int(b[0])
	if padding > 7 || len(b) == 1 && padding > 0 {
		return asn1.BitString{}, errors.New("invalid padding bits in BIT STRING")
	}
	bs := asn1.BitString{
		Bytes:     bytes.Clone(b[1:]),
		BitLength: (len(b)-1)*8 - padding,
	}
	if len(bs.Bytes) > 0 {
		// zero out padding bits
		bs.Bytes[len(bs.Bytes)-1] &= ^byte(1<<padding - 1)
	}
	return bs, nil
}

//endregion

//region [UNIVERSAL 5] NULL

// ParseNull validates that b is the content of a NULL value.
func ParseNull(b []byte) error {
	if len(b) != 0 {
		return errors.New("invalid NULL value")
	}
	return nil
}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// ParseObjectIdentifier interprets b as the content octets of an OBJECT
// IDENTIFIER. Empty content yields an empty identifier.
//
// The first subidentifier encodes the first two arcs. Below 80 it is split into
// (v/40, v%40), otherwise the first arc is 2 and the second arc is v-80.
// Subsequent subidentifiers use a base-128 encoding with the eighth bit marking
// continuation.
func ParseObjectIdentifier(b []byte) (asn1.ObjectIdentifier, error) {
	if len(b) == 0 {
		return asn1.ObjectIdentifier{}, nil
	}
	// In the worst case, we get two elements from the first byte (which is
	// encoded differently) and then every subidentifier is a single byte long.
	oid := make(asn1.ObjectIdentifier, 2, len(b)+1)
	v, n, err := vlq.Parse[uint](b)
	if err != nil {
		return nil, fmt.Errorf("invalid OBJECT IDENTIFIER: %w", err)
	}
	if v < 80 {
		oid[0], oid[1] = v/40, v%40
	} else {
		oid[0], oid[1] = 2, v-80
	}
	for b = b[n:]; len(b) > 0; b = b[n:] {
		if v, n, err = vlq.Parse[uint](b); err != nil {
			return nil, fmt.Errorf("invalid OBJECT IDENTIFIER: %w", err)
		}
		oid = append(oid, v)
	}
	return oid, nil
}

//endregion
