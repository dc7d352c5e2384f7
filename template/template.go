// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package template describes and matches the chain of tags that lead to an
// ASN.1 value in a BER encoding.
//
// A [Template] is an ordered list of expected tags. The first entry describes
// the outermost TLV, every following entry describes a TLV nested directly
// inside the content of the previous one. EXPLICIT tagging adds an entry,
// IMPLICIT tagging replaces the tag of an entry:
//
//	// [0] EXPLICIT SEQUENCE
//	template.ContextSpecific(0).Constructed().Explicit(asn1.TagSequence).Constructed()
//	// [1] IMPLICIT INTEGER
//	template.Universal(asn1.TagInteger).Implicit(1)
//
// Templates are immutable values. Every builder method returns a new Template
// and leaves its receiver unchanged, so templates can be shared freely between
// goroutines and schema declarations.
//
// A [Matcher] applies a template to a [tlv.Buffer] and returns the innermost
// content window as an [Object].
package template

import (
	"slices"
	"strings"

	asn1 "codello.dev/asn1-template"
	"codello.dev/asn1-template/tlv"
)

// Entry is a single expected tag of a [Template].
type Entry struct {
	Tag         asn1.Tag
	Constructed bool
}

// String returns a representation of e such as "[UNIVERSAL 16]/c".
func (e Entry) String() string {
	if e.Constructed {
		return e.Tag.String() + "/c"
	}
	return e.Tag.String() + "/p"
}

// Template is an ordered list of expected tags. The zero value is the "any"
// template: it matches exactly one TLV regardless of its tag. Use it for values
// whose content is not interpreted.
type Template struct {
	entries []Entry
}

// Of returns a template consisting of the given entries.
func Of(entries ...Entry) Template {
	return Template{slices.Clone(entries)}
}

// Universal returns a template expecting a primitive value with the universal
// tag n.
func Universal(n uint) Template {
	return Of(Entry{Tag: asn1.Universal(n)})
}

// ContextSpecific returns a template expecting a primitive value with the
// context-specific tag n.
func ContextSpecific(n uint) Template {
	return Of(Entry{Tag: asn1.ContextSpecific(n)})
}

// Application returns a template expecting a primitive value with the
// application tag n.
func Application(n uint) Template {
	return Of(Entry{Tag: asn1.Tag{Class: asn1.ClassApplication, Number: n}})
}

// Private returns a template expecting a primitive value with the private tag n.
func Private(n uint) Template {
	return Of(Entry{Tag: asn1.Tag{Class: asn1.ClassPrivate, Number: n}})
}

// with returns a copy of t with the last entry replaced by the result of fn. It
// panics if t is the zero template.
func (t Template) with(op string, fn func(e Entry) Entry) Template {
	if len(t.entries) == 0 {
		panic("template: " + op + " on empty template")
	}
	entries := slices.Clone(t.entries)
	entries[len(entries)-1] = fn(entries[len(entries)-1])
	return Template{entries}
}

// Constructed marks the most recently added entry of t as constructed.
func (t Template) Constructed() Template {
	return t.with("Constructed", func(e Entry) Entry {
		e.Constructed = true
		return e
	})
}

// Explicit appends a primitive entry with the universal tag n. The new entry
// is expected inside the content of the previous last entry.
func (t Template) Explicit(n uint) Template {
	return t.ExplicitTag(asn1.Universal(n))
}

// ExplicitTag appends a primitive entry with the given tag.
func (t Template) ExplicitTag(tag asn1.Tag) Template {
	entries := make([]Entry, len(t.entries), len(t.entries)+1)
	copy(entries, t.entries)
	return Template{append(entries, Entry{Tag: tag})}
}

// Implicit replaces the tag of the most recently added entry with the
// context-specific tag n. The constructed bit of the entry is kept.
func (t Template) Implicit(n uint) Template {
	return t.ImplicitTag(asn1.ContextSpecific(n))
}

// ImplicitTag replaces the tag of the most recently added entry with tag.
func (t Template) ImplicitTag(tag asn1.Tag) Template {
	return t.with("Implicit", func(e Entry) Entry {
		e.Tag = tag
		return e
	})
}

// Append returns a template expecting the entries of inner nested inside the
// content of the last entry of t.
func (t Template) Append(inner Template) Template {
	return Template{slices.Concat(t.entries, inner.entries)}
}

// Len returns the number of entries in t.
func (t Template) Len() int {
	return len(t.entries)
}

// At returns the entry at index i. Index 0 is the outermost entry.
func (t Template) At(i int) Entry {
	return t.entries[i]
}

// Last returns the innermost entry of t. It panics if t is the zero template.
func (t Template) Last() Entry {
	return t.entries[len(t.entries)-1]
}

// IsZero reports whether t is the "any" template.
func (t Template) IsZero() bool {
	return len(t.entries) == 0
}

// Equal reports whether t and u expect the same entries.
func (t Template) Equal(u Template) bool {
	return slices.Equal(t.entries, u.entries)
}

// Accepts reports whether a TLV with header h can be the outermost layer of a
// value matching t.
func (t Template) Accepts(h tlv.Header) bool {
	if t.IsZero() {
		return !h.IsEndOfContents()
	}
	e := t.entries[0]
	return e.Tag == h.Tag && e.Constructed == h.Constructed
}

// String returns a representation of t listing its entries from the outside
// in, such as "[0]/c > [UNIVERSAL 16]/c".
func (t Template) String() string {
	if t.IsZero() {
		return "any"
	}
	var sb strings.Builder
	for i, e := range t.entries {
		if i > 0 {
			sb.WriteString(" > ")
		}
		sb.WriteString(e.String())
	}
	return sb.String()
}
