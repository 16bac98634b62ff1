// Package reloc implements the per-module relocation table: a record of
// which source addresses carry a symbolic reference to another
// module rather than a literal value.
package reloc

import (
	"sort"

	"github.com/dsdecomp/nitrolink/pkg/modkind"
)

// ModuleRef names the module(s) a relocation may target. A relocation born
// from overlay address aliasing can be ambiguous between several
// candidates; FirstModule is the canonical choice, OtherModules lists the
// rest for commentary.
type ModuleRef struct {
	candidates []modkind.Kind
}

// NewModuleRef builds a ModuleRef from one or more candidate modules, in
// preference order. The first is the canonical choice.
func NewModuleRef(candidates ...modkind.Kind) ModuleRef {
	out := make([]modkind.Kind, len(candidates))
	copy(out, candidates)
	return ModuleRef{candidates: out}
}

// IsSameModule reports whether this ModuleRef has no candidates, meaning
// the relocation is a pure same-module reference.
func (m ModuleRef) IsSameModule() bool {
	return len(m.candidates) == 0
}

// FirstModule returns the canonical target module, or ok=false for a
// same-module reference.
func (m ModuleRef) FirstModule() (modkind.Kind, bool) {
	if len(m.candidates) == 0 {
		return modkind.Kind{}, false
	}
	return m.candidates[0], true
}

// OtherModules returns every candidate after the first, for
// ambiguity-comment construction.
func (m ModuleRef) OtherModules() []modkind.Kind {
	if len(m.candidates) <= 1 {
		return nil
	}
	return m.candidates[1:]
}

// Relocation is one record that a source word's stored literal must be
// rewritten to reference a symbol instead.
type Relocation struct {
	Source      uint32
	Destination uint32
	Addend      int32
	Target      ModuleRef
}

// ToAddress returns the address the relocation resolves to once the
// addend is removed: destination - addend.
func (r Relocation) ToAddress() uint32 {
	return uint32(int64(r.Destination) - int64(r.Addend))
}

// Table is the per-module relocation index, keyed by source address.
// Neither Table nor its entries are mutated once disassembly begins
//.
type Table struct {
	bySource map[uint32]Relocation
}

// NewTable returns an empty relocation table.
func NewTable() *Table {
	return &Table{bySource: make(map[uint32]Relocation)}
}

// Add registers a relocation. A second relocation at the same source
// address replaces the first; duplicates are not rejected.
func (t *Table) Add(r Relocation) {
	t.bySource[r.Source] = r
}

// At looks up the relocation registered at source, if any.
func (t *Table) At(source uint32) (Relocation, bool) {
	r, ok := t.bySource[source]
	return r, ok
}

// Len returns the number of registered relocations.
func (t *Table) Len() int {
	return len(t.bySource)
}

// All returns every relocation in ascending source-address order.
func (t *Table) All() []Relocation {
	out := make([]Relocation, 0, len(t.bySource))
	for _, r := range t.bySource {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}
