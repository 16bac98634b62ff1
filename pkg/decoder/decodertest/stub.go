// Package decodertest provides a minimal decoder.Decoder stand-in for
// tests elsewhere in this module. It is not a real ARM/Thumb decoder and
// makes no attempt to be one — actual instruction decoding is an external
// collaborator. It exists only so that
// pkg/disasm and pkg/resolve can be exercised without that collaborator.
package decodertest

import (
	"fmt"

	"github.com/dsdecomp/nitrolink/pkg/decoder"
)

// Stub decodes fixed-size, fixed-text instructions: every instruction is
// 4 bytes in ARM mode and 2 bytes in Thumb mode, read little-endian from
// the start of code, and renders as "word 0xXXXXXXXX" unless namer
// resolves that value to a name, in which case it renders
// "ldr r0, =SYMBOL".
type Stub struct{}

func (Stub) Decode(code []byte, addr uint32, mode decoder.Mode, namer decoder.SymbolNamer) (decoder.Instruction, error) {
	size := uint32(4)
	if mode == decoder.ModeThumb {
		size = 2
	}
	if uint32(len(code)) < size {
		return decoder.Instruction{}, fmt.Errorf("decodertest: not enough bytes at %#08x", addr)
	}

	var value uint32
	for i := uint32(0); i < size && i < 4; i++ {
		value |= uint32(code[i]) << (8 * i)
	}

	if name, ok := namer.SymbolName(addr, value); ok {
		return decoder.Instruction{Address: addr, Size: size, Text: fmt.Sprintf("ldr r0, =%s", name)}, nil
	}
	return decoder.Instruction{Address: addr, Size: size, Text: fmt.Sprintf("word %#08x", value)}, nil
}
