// Package resolve implements the symbol-resolution algorithm: given
// an instruction or data word at a source address that references a
// destination address, decide whether that reference is symbolic, and if
// so produce the name (and, for cross-module references, the addend and
// ambiguity commentary) to emit in its place.
package resolve

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dsdecomp/nitrolink/pkg/modkind"
	"github.com/dsdecomp/nitrolink/pkg/module"
	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/reloc"
	"github.com/dsdecomp/nitrolink/pkg/symbol"
)

// WordRef is a resolved symbolic reference: the symbol name to emit, its
// addend (nonzero only for cross-module relocations), and an optional
// " ; NAME, NAME" ambiguity comment to append.
type WordRef struct {
	Name    string
	Addend  int32
	Comment string
}

// Directive renders ref as the ".word" directive line body (without
// leading indent or trailing newline), e.g. "foo+0x4 ; bar".
func (ref WordRef) Directive() string {
	text := ref.Name
	switch {
	case ref.Addend > 0:
		text += fmt.Sprintf("+%#x", ref.Addend)
	case ref.Addend < 0:
		text += fmt.Sprintf("-%#x", -ref.Addend)
	}
	return text + ref.Comment
}

// Lookup resolves addresses to symbols for one module being emitted,
// consulting its own symbol map, its relocation table, and peer modules'
// symbol maps through the shared registry. Lookup itself never
// mutates any of the tables it reads; they must be fully constructed
// before resolution begins.
type Lookup struct {
	ModuleKind  modkind.Kind
	Local       *symbol.Map
	Relocations *reloc.Table
	Registry    *module.Registry
	Logger      *slog.Logger
}

func (l *Lookup) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l *Lookup) symbolMapFor(kind modkind.Kind) (*symbol.Map, bool) {
	m, ok := l.Registry.ByKind(kind)
	if !ok {
		return nil, false
	}
	return m.Symbols, true
}

// lookupInMap tries an exact address hit first, then falls back to the
// function containing that address — the same two-step lookup used both
// for the primary resolution target and for each ambiguous peer.
func lookupInMap(m *symbol.Map, addr uint32) (symbol.Symbol, bool) {
	if sym, ok := m.ByAddress(addr); ok {
		return sym, true
	}
	return m.ContainingFunction(addr)
}

// WriteSymbol resolves a word at source whose literal value is
// destination: a registered relocation wins, then the local symbol map,
// else matched is false (the word is not a symbol reference at all and
// the caller falls back to raw data literals). err is non-nil only for
// the three fatal cases — a word whose literal disagrees with its
// relocation's destination, an unknown target module, or a relocation
// whose target address resolves to no symbol — as a SymbolResolution
// error.
func (l *Lookup) WriteSymbol(source, destination uint32) (ref WordRef, matched bool, err error) {
	if rel, ok := l.Relocations.At(source); ok {
		if first, ok := rel.Target.FirstModule(); ok {
			symbolAddress := uint32(int64(destination) - int64(rel.Addend))
			if symbolAddress != rel.ToAddress() {
				return WordRef{}, false, nitroerr.Newf(nitroerr.SymbolResolution,
					"word at %#010x in %s holds %#010x but its relocation expects %#010x",
					source, l.ModuleKind, destination, rel.Destination)
			}

			externalMap, ok := l.symbolMapFor(first)
			if !ok {
				return WordRef{}, false, nitroerr.Newf(nitroerr.SymbolResolution,
					"relocation from %#010x in %s to %s has no symbol map, does that module exist?",
					source, l.ModuleKind, first)
			}

			sym, ok := lookupInMap(externalMap, symbolAddress)
			if !ok {
				return WordRef{}, false, nitroerr.Newf(nitroerr.SymbolResolution,
					"symbol not found for relocation from %#010x in %s to %#010x in %s",
					source, l.ModuleKind, symbolAddress, first)
			}

			comment := l.ambiguousComment(source, symbolAddress, rel)
			return WordRef{Name: sym.Name, Addend: rel.Addend, Comment: comment}, true, nil
		}
		// first_module is None: a pure same-module reference recorded as a
		// relocation purely for bookkeeping. Fall through to the local map.
	}

	if sym, ok := l.Local.ByAddress(destination); ok {
		return WordRef{Name: sym.Name}, true, nil
	}

	return WordRef{}, false, nil
}

// ambiguousComment builds the " ; NAME, NAME" suffix for every other
// candidate module of rel. Peers that lack a symbol map or a symbol at
// the address are skipped with a warning logged; ambiguity commentary is
// informational and never aborts an emission.
func (l *Lookup) ambiguousComment(source, destination uint32, rel reloc.Relocation) string {
	others := rel.Target.OtherModules()
	if len(others) == 0 {
		return ""
	}

	names := make([]string, 0, len(others))
	for _, peer := range others {
		peerMap, ok := l.symbolMapFor(peer)
		if !ok {
			l.logger().Warn("ambiguous relocation peer has no symbol map",
				"source", source, "module", l.ModuleKind.String(), "peer", peer.String())
			continue
		}
		sym, ok := lookupInMap(peerMap, destination)
		if !ok {
			l.logger().Warn("ambiguous relocation peer has no symbol at address",
				"source", source, "module", l.ModuleKind.String(), "peer", peer.String(),
				"address", fmt.Sprintf("%#010x", destination))
			continue
		}
		names = append(names, sym.Name)
	}
	if len(names) == 0 {
		return ""
	}
	return " ; " + strings.Join(names, ", ")
}

// SymbolName implements decoder.SymbolNamer: the same resolver that backs
// WriteSymbol also powers the instruction decoder's symbol-name callback.
// Unlike WriteSymbol it returns only a name, and
// any failure mode (missing peer map, missing symbol) is treated as
// warn-and-skip rather than fatal — the decoder simply renders the literal
// address instead of a symbol.
func (l *Lookup) SymbolName(source, destination uint32) (string, bool) {
	if rel, ok := l.Relocations.At(source); ok {
		if first, ok := rel.Target.FirstModule(); ok {
			externalMap, ok := l.symbolMapFor(first)
			if !ok {
				l.logger().Warn("symbol-name callback: relocation target module has no symbol map",
					"source", source, "module", l.ModuleKind.String(), "target", first.String())
				return "", false
			}
			sym, ok := externalMap.ByAddress(destination)
			if !ok {
				l.logger().Warn("symbol-name callback: relocation target module has no symbol at address",
					"source", source, "module", l.ModuleKind.String(), "target", first.String(),
					"address", fmt.Sprintf("%#010x", destination))
				return "", false
			}
			return sym.Name, true
		}
	}

	if sym, ok := l.Local.ByAddress(destination); ok {
		return sym.Name, true
	}
	return "", false
}
