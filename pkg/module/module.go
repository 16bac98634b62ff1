// Package module implements the per-module container: a Module
// owns its sections, symbol map, relocation table and raw code bytes, and a
// Registry is the cross-module arena the resolution and disassembly phases
// read from once loading is complete.
package module

import (
	"github.com/dsdecomp/nitrolink/pkg/modkind"
	"github.com/dsdecomp/nitrolink/pkg/reloc"
	"github.com/dsdecomp/nitrolink/pkg/section"
	"github.com/dsdecomp/nitrolink/pkg/symbol"
	"github.com/dsdecomp/nitrolink/pkg/xref"
)

// Module is one ARM9 main binary, autoload, or overlay.
type Module struct {
	Name        string
	Kind        modkind.Kind
	Sections    *section.Sections
	Symbols     *symbol.Map
	Relocations *reloc.Table
	Xrefs       *xref.Table
	Code        []byte // raw bytes, addressed relative to the lowest section start
}

// New constructs a module with empty symbol/relocation/xref tables; callers
// populate them as the config and disassembly-input files are parsed.
func New(name string, kind modkind.Kind, sections *section.Sections, code []byte) *Module {
	return &Module{
		Name:        name,
		Kind:        kind,
		Sections:    sections,
		Symbols:     symbol.NewMap(),
		Relocations: reloc.NewTable(),
		Xrefs:       xref.NewTable(),
		Code:        code,
	}
}

// CodeOf returns the raw bytes backing sec, or ok=false for a bss section
// (which carries no bytes in the object file) or one whose range falls
// outside the module's code buffer.
func (m *Module) CodeOf(sec section.Section) ([]byte, bool) {
	if sec.Kind == section.Bss {
		return nil, false
	}
	base, ok := m.Sections.BaseAddress()
	if !ok {
		return nil, false
	}
	start := sec.Start - base
	end := sec.End - base
	if int(end) > len(m.Code) || start > end {
		return nil, false
	}
	return m.Code[start:end], true
}

// GetFunction returns the Function symbol covering address, or ok=false if
// none does. Rendering that function's disassembled text is the
// disassembly emitter's job (pkg/disasm), kept out of Module to avoid a
// module<->disasm import cycle.
func (m *Module) GetFunction(address uint32) (symbol.Symbol, bool) {
	return m.Symbols.ContainingFunction(address)
}

// Registry is the arena of every loaded module, keyed by modkind.Kind, used
// during the resolution and emission phases to look up peer modules by
// kind without holding an owning pointer.
type Registry struct {
	modules []*Module
	byKind  map[modkind.Kind]*Module
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKind: make(map[modkind.Kind]*Module)}
}

// Add registers m under its own Kind. A second Add for the same Kind
// replaces the first for ByKind; All lists both.
func (r *Registry) Add(m *Module) {
	r.byKind[m.Kind] = m
	r.modules = append(r.modules, m)
}

// ByKind looks up a module by its modkind.Kind.
func (r *Registry) ByKind(kind modkind.Kind) (*Module, bool) {
	m, ok := r.byKind[kind]
	return m, ok
}

// All returns every registered module, in registration order.
func (r *Registry) All() []*Module {
	return r.modules
}
