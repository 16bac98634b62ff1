// Package disasm implements the disassembly emitter: for each module, walk
// its sections in address order and render functions, data,
// and bss symbols as reproducible assembly text, filling any byte gap
// between recognized symbols with raw directives so that reassembly
// reproduces the original bytes exactly.
package disasm

import (
	"fmt"
	"io"

	"github.com/dsdecomp/nitrolink/pkg/decoder"
	"github.com/dsdecomp/nitrolink/pkg/module"
	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/resolve"
	"github.com/dsdecomp/nitrolink/pkg/section"
	"github.com/dsdecomp/nitrolink/pkg/symbol"
)

// Emitter renders one module's disassembly. Decoder is injected: this
// package never decodes real ARM/Thumb machine code itself (that
// collaborator is supplied externally); it only drives
// the decoder across each function's address range and resolves its
// operands through Lookup.
type Emitter struct {
	Module  *module.Module
	Lookup  *resolve.Lookup
	Decoder decoder.Decoder
}

// Emit writes module's full disassembly to w: the standard function-macro
// include, then every section in ascending start-address order.
func (e *Emitter) Emit(w io.Writer) error {
	fmt.Fprintln(w, `    .include "macros/function.inc"`)
	fmt.Fprintln(w)

	for _, sec := range e.Module.Sections.SortedByAddress() {
		if err := e.emitSection(w, sec); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitSection(w io.Writer, sec section.Section) error {
	code, hasCode := e.Module.CodeOf(sec)

	if sec.Name == ".text" {
		fmt.Fprintln(w, "    .text")
	} else {
		fmt.Fprintf(w, "    .section %s, 4, 1, 4\n", sec.Name)
	}

	offset := uint32(0)
	for _, sym := range e.Module.Symbols.All() {
		if sym.Addr < sec.Start || sym.Addr >= sec.End {
			continue
		}

		switch kind := sym.Kind.(type) {
		case symbol.Function:
			functionOffset := sym.Addr - sec.Start
			if offset < functionOffset {
				if !hasCode {
					return nitroerr.Newf(nitroerr.DataEmission, "section %s has a function gap but no code bytes", sec.Name)
				}
				if err := dumpBytes(w, code, offset, functionOffset); err != nil {
					return err
				}
				fmt.Fprintln(w)
			}
			if err := e.renderFunction(w, sym, kind); err != nil {
				return err
			}
			offset = sym.Addr + kind.Size - sec.Start

		case symbol.Data:
			start := sym.Addr - sec.Start
			size := e.sizeOrNext(kind.Size, sec, sym)
			end := start + size
			if !hasCode || int(end) > len(code) {
				return nitroerr.Newf(nitroerr.DataEmission, "not enough bytes for data symbol %s (needs %d bytes)", sym.Name, size)
			}
			fmt.Fprintf(w, "%s:", sym.Name)
			if sym.Ambiguous {
				fmt.Fprint(w, " ; ambiguous")
			}
			fmt.Fprintln(w)
			if marker, ok := sym.MappingSymbol(); ok {
				fmt.Fprintf(w, "    %s\n", marker)
			}
			if err := EmitData(w, e.Lookup, sym, kind.Variant, code[start:end]); err != nil {
				return err
			}
			offset = end

		case symbol.Bss:
			size := e.sizeOrNext(kind.Size, sec, sym)
			fmt.Fprintf(w, "%s:\n    .space %#x\n", sym.Name, size)
			offset += size

		default:
			// Labels, pool constants, and jump tables are rendered inline by
			// the containing function (renderFunction), not at this level.
		}
	}

	endOffset := sec.Size()
	if offset < endOffset {
		if hasCode {
			if err := dumpBytes(w, code, offset, endOffset); err != nil {
				return err
			}
			fmt.Fprintln(w)
		} else {
			fmt.Fprintf(w, "    .space %#x\n", endOffset-offset)
		}
	}
	return nil
}

// sizeOrNext returns the declared size if present, else derives it from the
// next symbol's address (clamped to the section end) minus this symbol's
// address.
func (e *Emitter) sizeOrNext(declared *uint32, sec section.Section, sym symbol.Symbol) uint32 {
	if declared != nil {
		return *declared
	}
	next, ok := e.Module.Symbols.NextAddress(sym.Addr)
	if !ok || next > sec.End {
		next = sec.End
	}
	return next - sym.Addr
}

// RenderFunction is the exported entry point to renderFunction, used by
// standalone single-function disassembly (the `overlay` command), which
// has no surrounding section to walk.
func (e *Emitter) RenderFunction(w io.Writer, sym symbol.Symbol) error {
	fn, ok := sym.Kind.(symbol.Function)
	if !ok {
		return nitroerr.Newf(nitroerr.DataEmission, "symbol %s is not a function", sym.Name)
	}
	return e.renderFunction(w, sym, fn)
}

// renderFunction decodes and emits the function's instruction stream,
// resolving operand addresses to symbol names via Lookup, and emitting any
// label, pool-constant, or jump-table symbol that falls within the
// function's range inline.
func (e *Emitter) renderFunction(w io.Writer, sym symbol.Symbol, fn symbol.Function) error {
	fmt.Fprintf(w, "%s:\n", sym.Name)
	if marker, ok := sym.MappingSymbol(); ok {
		fmt.Fprintf(w, "    %s\n", marker)
	}

	base, ok := e.Module.Sections.BaseAddress()
	if !ok {
		return nitroerr.Newf(nitroerr.DataEmission, "module %s has no sections to derive a code base address from", e.Module.Name)
	}

	mode := decoder.FromSymbolMode(fn.Mode)
	addr := sym.Addr
	end := sym.Addr + fn.Size

	for addr < end {
		if addr != sym.Addr {
			if other, ok := e.Module.Symbols.ByAddress(addr); ok {
				switch otherKind := other.Kind.(type) {
				case symbol.Label:
					fmt.Fprintf(w, "%s:\n", other.Name)
					if marker, ok := other.MappingSymbol(); ok {
						fmt.Fprintf(w, "    %s\n", marker)
					}
				case symbol.PoolConstant:
					consumed, err := e.renderPoolConstant(w, other, base)
					if err != nil {
						return err
					}
					addr += consumed
					continue
				case symbol.JumpTable:
					consumed, err := e.renderJumpTable(w, other, otherKind, base)
					if err != nil {
						return err
					}
					addr += consumed
					continue
				}
			}
		}

		codeIndex := addr - base
		if int(codeIndex) >= len(e.Module.Code) {
			return nitroerr.Newf(nitroerr.DataEmission, "function %s runs past the end of module code", sym.Name)
		}

		inst, err := e.Decoder.Decode(e.Module.Code[codeIndex:], addr, mode, e.Lookup)
		if err != nil {
			return nitroerr.At(nitroerr.External, nitroerr.Context{}, err)
		}
		if inst.Size == 0 {
			return nitroerr.Newf(nitroerr.DataEmission, "decoder returned a zero-size instruction at %#010x", addr)
		}

		fmt.Fprintf(w, "    %s\n", inst.Text)
		addr += inst.Size
	}
	return nil
}

// renderPoolConstant emits a single inline pool-constant word,
// resolving it through the same symbol-or-literal path as any other data
// word, and returns the number of bytes consumed.
func (e *Emitter) renderPoolConstant(w io.Writer, sym symbol.Symbol, base uint32) (uint32, error) {
	idx := sym.Addr - base
	if int(idx)+4 > len(e.Module.Code) {
		return 0, nitroerr.Newf(nitroerr.DataEmission, "pool constant %s runs past the end of module code", sym.Name)
	}
	if marker, ok := sym.MappingSymbol(); ok {
		fmt.Fprintf(w, "    %s\n", marker)
	}
	if err := EmitData(w, e.Lookup, sym, symbol.DataWord, e.Module.Code[idx:idx+4]); err != nil {
		return 0, err
	}
	return 4, nil
}

// renderJumpTable emits a jump table's entries as a run of ".word" slots,
// one per jt.Size entry, resolved the same way a
// pool constant's word is. jt.Code only affects whether a $a or $d
// mapping symbol precedes the table; resolution itself is symbol-kind
// agnostic (whatever symbol, code or data, owns the target address).
func (e *Emitter) renderJumpTable(w io.Writer, sym symbol.Symbol, jt symbol.JumpTable, base uint32) (uint32, error) {
	size := jt.Size * 4
	idx := sym.Addr - base
	if int(idx)+int(size) > len(e.Module.Code) {
		return 0, nitroerr.Newf(nitroerr.DataEmission, "jump table %s needs %d bytes past its start, module code is too short", sym.Name, size)
	}
	if marker, ok := sym.MappingSymbol(); ok {
		fmt.Fprintf(w, "    %s\n", marker)
	}
	if err := EmitData(w, e.Lookup, sym, symbol.DataWord, e.Module.Code[idx:idx+size]); err != nil {
		return 0, err
	}
	return size, nil
}

// dumpBytes writes code[offset:end] as ".byte 0xNN, ..." lines of at most
// 16 values each.
func dumpBytes(w io.Writer, code []byte, offset, end uint32) error {
	for offset < end {
		fmt.Fprint(w, "    .byte ")
		row := end - offset
		if row > 16 {
			row = 16
		}
		for i := uint32(0); i < row; i++ {
			if i != 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "0x%02x", code[offset])
			offset++
		}
		fmt.Fprintln(w)
	}
	return nil
}
