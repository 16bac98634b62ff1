package symbol

import "sort"

// Map is the per-module symbol table, kept sorted by address to support
// O(log n) address and containing-function lookups.
type Map struct {
	byAddr []Symbol // sorted ascending by Addr; stable for equal addresses
	byName map[string][]int
}

// NewMap returns an empty symbol map.
func NewMap() *Map {
	return &Map{byName: make(map[string][]int)}
}

// insertIndex returns the first index in byAddr whose Addr >= addr.
func (m *Map) insertIndex(addr uint32) int {
	return sort.Search(len(m.byAddr), func(i int) bool { return m.byAddr[i].Addr >= addr })
}

// Add inserts sym, maintaining address order. Multiple symbols may share an
// address (e.g. a label coinciding with a function entry); name collisions
// at different addresses mark both symbols Ambiguous.
func (m *Map) Add(sym Symbol) {
	if existing, ok := m.byName[sym.Name]; ok {
		for _, i := range existing {
			if m.byAddr[i].Addr != sym.Addr {
				sym.Ambiguous = true
				m.byAddr[i].Ambiguous = true
			}
		}
	}

	i := sort.Search(len(m.byAddr), func(i int) bool { return m.byAddr[i].Addr > sym.Addr })
	m.byAddr = append(m.byAddr, Symbol{})
	copy(m.byAddr[i+1:], m.byAddr[i:])
	m.byAddr[i] = sym

	for name, indices := range m.byName {
		for j, idx := range indices {
			if idx >= i {
				m.byName[name][j] = idx + 1
			}
		}
	}
	m.byName[sym.Name] = append(m.byName[sym.Name], i)
}

// AddIfNewAddress inserts sym only if no symbol is already registered at
// sym.Addr; otherwise it is a no-op, making repeated inserts at an
// already-occupied address idempotent, unlike Add which always appends.
func (m *Map) AddIfNewAddress(sym Symbol) {
	if _, ok := m.ByAddress(sym.Addr); ok {
		return
	}
	m.Add(sym)
}

// ByAddress returns the symbol at the exact address, preferring the first
// one added at that address if several share it.
func (m *Map) ByAddress(addr uint32) (Symbol, bool) {
	i := m.insertIndex(addr)
	if i < len(m.byAddr) && m.byAddr[i].Addr == addr {
		return m.byAddr[i], true
	}
	return Symbol{}, false
}

// ByName returns all symbols registered under name, in address order. A
// name is Ambiguous when this slice has more than one distinct address.
func (m *Map) ByName(name string) []Symbol {
	indices, ok := m.byName[name]
	if !ok {
		return nil
	}
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	out := make([]Symbol, 0, len(sorted))
	for _, i := range sorted {
		out = append(out, m.byAddr[i])
	}
	return out
}

// ContainingFunction returns the Function symbol whose [addr, addr+size)
// range contains the queried address — the "which function owns this
// instruction" lookup used by the disassembly emitter and jump-table
// resolver alike.
func (m *Map) ContainingFunction(addr uint32) (Symbol, bool) {
	i := m.insertIndex(addr + 1)
	for j := i - 1; j >= 0; j-- {
		fn, ok := m.byAddr[j].Kind.(Function)
		if !ok {
			continue
		}
		if addr >= m.byAddr[j].Addr && addr < m.byAddr[j].Addr+fn.Size {
			return m.byAddr[j], true
		}
		// Functions don't overlap; once we've passed the one candidate whose
		// start is <= addr we can stop scanning backward.
		break
	}
	return Symbol{}, false
}

// All returns every symbol in ascending address order. The returned slice
// must not be mutated.
func (m *Map) All() []Symbol {
	return m.byAddr
}

// NextAddress returns the address of the first symbol strictly after addr,
// used to derive the implicit size of a Data/Bss symbol with no declared
// size.
func (m *Map) NextAddress(addr uint32) (uint32, bool) {
	i := m.insertIndex(addr + 1)
	if i < len(m.byAddr) {
		return m.byAddr[i].Addr, true
	}
	return 0, false
}
