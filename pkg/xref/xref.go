// Package xref implements the cross-reference table: the inverse index
// from a referenced address to the set of source addresses that
// refer to it, loaded from disk alongside a module and never mutated
// during disassembly.
package xref

import "sort"

// Xref is one recorded reference: the address of the referring instruction
// or word, and the address it refers to.
type Xref struct {
	From uint32
	To   uint32
}

// Table is the per-module reverse index, keyed by the referenced address.
// It is purely informational for analysis tooling; relocations, not xrefs,
// are authoritative for resolving a literal during disassembly.
type Table struct {
	byTarget map[uint32][]uint32
}

// NewTable returns an empty xref table.
func NewTable() *Table {
	return &Table{byTarget: make(map[uint32][]uint32)}
}

// Add records that from refers to to.
func (t *Table) Add(x Xref) {
	t.byTarget[x.To] = append(t.byTarget[x.To], x.From)
}

// ReferencesTo returns every known source address that refers to target,
// in ascending order.
func (t *Table) ReferencesTo(target uint32) []uint32 {
	froms, ok := t.byTarget[target]
	if !ok {
		return nil
	}
	out := make([]uint32, len(froms))
	copy(out, froms)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of distinct targets with at least one reference.
func (t *Table) Len() int {
	return len(t.byTarget)
}

// Targets returns every target address with at least one reference, in
// ascending order.
func (t *Table) Targets() []uint32 {
	out := make([]uint32, 0, len(t.byTarget))
	for target := range t.byTarget {
		out = append(out, target)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// All returns every recorded cross-reference, ordered by target address
// then by referring source address. Used by relocation derivation (see
// the project package), which needs the full (from, to) pair rather than
// just one direction of the index.
func (t *Table) All() []Xref {
	out := make([]Xref, 0, len(t.byTarget))
	for _, target := range t.Targets() {
		for _, from := range t.ReferencesTo(target) {
			out = append(out, Xref{From: from, To: target})
		}
	}
	return out
}
