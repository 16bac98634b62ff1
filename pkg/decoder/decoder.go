// Package decoder defines the seam between this tool and the ARM/Thumb
// instruction decoder, an external, already-solved black box this tool
// only drives. Nothing in this
// package decodes real machine code; it only describes the interface a
// real decoder must satisfy so the rest of the toolchain — disassembly
// emission, symbolic resolution — can be written and tested against it.
package decoder

import "github.com/dsdecomp/nitrolink/pkg/symbol"

// Mode mirrors symbol.Mode: the instruction set a given address is decoded
// in. Kept as a distinct type so this package has no import-time
// dependency on pkg/symbol's internal kind taxonomy, only its Mode concept.
type Mode int

const (
	ModeARM Mode = iota
	ModeThumb
)

// FromSymbolMode converts a symbol.Mode into a decoder.Mode.
func FromSymbolMode(m symbol.Mode) Mode {
	if m == symbol.ModeThumb {
		return ModeThumb
	}
	return ModeARM
}

// SymbolNamer is the callback a Decoder invokes to turn an address it
// encounters mid-instruction (a branch target, a PC-relative load target)
// into a symbolic name — the same resolver that rewrites data words
// powers this callback. It returns only a
// name, never a full directive; ok is false when the address isn't a
// known symbol reference, in which case the decoder falls back to
// rendering the raw literal.
type SymbolNamer interface {
	SymbolName(source, destination uint32) (name string, ok bool)
}

// Instruction is one decoded instruction: its disassembled mnemonic/operand
// text (with any operand already rewritten to a symbolic name by the
// SymbolNamer callback), and its encoded size in bytes (2 for Thumb, 4 for
// ARM, larger for a BL pair).
type Instruction struct {
	Address uint32
	Size    uint32
	Text    string
}

// Decoder decodes one instruction at addr from code (the module's raw code
// bytes, starting at addr) in the given mode,
// using namer to resolve any address operand to a symbolic name.
//
// This interface has no implementation in this repository: the actual
// ARM9/Thumb instruction set is supplied externally.
// Callers inject a real implementation; tests
// here use a stub that recognizes a tiny fixed instruction shape.
type Decoder interface {
	Decode(code []byte, addr uint32, mode Mode, namer SymbolNamer) (Instruction, error)
}
