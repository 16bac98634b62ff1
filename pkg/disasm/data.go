package disasm

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/resolve"
	"github.com/dsdecomp/nitrolink/pkg/symbol"
)

// EmitData renders a Data symbol's byte range as a stream of directives:
// 16-byte rows; within a row, any 4-byte-aligned window is first
// tried as a symbolic word reference, and only falls back to a
// literal in the symbol's declared element size when that fails.
// Consecutive literals on a row are concatenated into one directive line;
// a resolved ".word SYMBOL" reference always starts (and is) its own line.
func EmitData(w io.Writer, lookup *resolve.Lookup, sym symbol.Symbol, variant symbol.DataVariant, bytes []byte) error {
	elemSize := int(variant.ElementSize())

	for offset := 0; offset < len(bytes); offset += 16 {
		open := false

		for column := 0; column < 16; {
			idx := offset + column
			if idx >= len(bytes) {
				break
			}
			chunk := bytes[idx:]
			address := sym.Addr + uint32(idx)

			if len(chunk) >= 4 && address&3 == 0 {
				value := binary.LittleEndian.Uint32(chunk)
				ref, matched, err := lookup.WriteSymbol(address, value)
				if err != nil {
					return err
				}
				if matched {
					if open {
						fmt.Fprintln(w)
						open = false
					}
					fmt.Fprintf(w, "    .word %s\n", ref.Directive())
					column += 4
					continue
				}
			}

			if len(chunk) < elemSize {
				return nitroerr.Newf(nitroerr.DataEmission,
					"data symbol %s declares %s elements but only %d byte(s) remain at %#010x",
					sym.Name, variant.Directive(), len(chunk), address)
			}
			literal := formatLiteral(variant, chunk)
			if !open {
				fmt.Fprintf(w, "    %s %s", variant.Directive(), literal)
				open = true
			} else {
				fmt.Fprintf(w, ", %s", literal)
			}
			column += elemSize
		}

		if open {
			fmt.Fprintln(w)
		}
	}
	return nil
}

// formatLiteral renders one element of variant's size from the start of
// chunk, little-endian.
func formatLiteral(variant symbol.DataVariant, chunk []byte) string {
	switch variant {
	case symbol.DataShort:
		return fmt.Sprintf("0x%04x", binary.LittleEndian.Uint16(chunk))
	case symbol.DataWord:
		return fmt.Sprintf("0x%08x", binary.LittleEndian.Uint32(chunk))
	default:
		return fmt.Sprintf("0x%02x", chunk[0])
	}
}
