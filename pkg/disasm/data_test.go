package disasm_test

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/dsdecomp/nitrolink/pkg/disasm"
	"github.com/dsdecomp/nitrolink/pkg/modkind"
	"github.com/dsdecomp/nitrolink/pkg/module"
	"github.com/dsdecomp/nitrolink/pkg/resolve"
	"github.com/dsdecomp/nitrolink/pkg/section"
	"github.com/dsdecomp/nitrolink/pkg/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLookup(t *testing.T, m *module.Module) *resolve.Lookup {
	t.Helper()
	registry := module.NewRegistry()
	registry.Add(m)
	return &resolve.Lookup{ModuleKind: m.Kind, Local: m.Symbols, Relocations: m.Relocations, Registry: registry}
}

func newDataModule(t *testing.T) *module.Module {
	t.Helper()
	sections := section.NewSections()
	sec, err := section.New(".data", section.Data, 0x02000000, 0x02000020, 4)
	require.NoError(t, err)
	require.NoError(t, sections.Add(sec))
	return module.New("main", modkind.ARM9(), sections, make([]byte, 0x20))
}

// parseByteLiterals extracts every "0x.." token from emitted directive
// lines, in emission order, and parses each according to its element
// width (1/2/4 bytes, little-endian) back into bytes.
func parseByteLiterals(t *testing.T, text string, elemBytes int) []byte {
	t.Helper()
	var out []byte
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, tok := range strings.Split(line, ",") {
			tok = strings.TrimSpace(tok)
			tok = strings.TrimPrefix(tok, ".byte")
			tok = strings.TrimPrefix(tok, ".short")
			tok = strings.TrimPrefix(tok, ".word")
			tok = strings.TrimSpace(tok)
			if !strings.HasPrefix(tok, "0x") {
				continue
			}
			v, err := strconv.ParseUint(tok, 0, 64)
			require.NoError(t, err)
			buf := make([]byte, elemBytes)
			for i := 0; i < elemBytes; i++ {
				buf[i] = byte(v >> (8 * i))
			}
			out = append(out, buf...)
		}
	}
	return out
}

func TestEmitDataRoundTripsByteLiterals(t *testing.T) {
	m := newDataModule(t)
	original := []byte{0x01, 0x02, 0x03, 0x05, 0x06, 0x07}
	copy(m.Code, original)

	sym := symbol.Symbol{Name: "data_02000000", Addr: 0x02000000, Kind: symbol.Data{Variant: symbol.DataByte}}

	var buf bytes.Buffer
	require.NoError(t, disasm.EmitData(&buf, newLookup(t, m), sym, symbol.DataByte, m.Code[:len(original)]))

	roundTripped := parseByteLiterals(t, buf.String(), 1)
	assert.Equal(t, original, roundTripped)
}

func TestEmitDataRoundTripsWordLiteralsWithNoRelocations(t *testing.T) {
	m := newDataModule(t)
	original := []byte{
		0xAA, 0xBB, 0xCC, 0xDD,
		0x11, 0x22, 0x33, 0x44,
	}
	copy(m.Code, original)

	sym := symbol.Symbol{Name: "data_02000000", Addr: 0x02000000, Kind: symbol.Data{Variant: symbol.DataWord}}

	var buf bytes.Buffer
	require.NoError(t, disasm.EmitData(&buf, newLookup(t, m), sym, symbol.DataWord, m.Code[:len(original)]))

	roundTripped := parseByteLiterals(t, buf.String(), 4)
	assert.Equal(t, original, roundTripped)
}

func TestEmitDataResolvesWordToLocalSymbol(t *testing.T) {
	m := newDataModule(t)
	m.Symbols.Add(symbol.Symbol{Name: "target", Addr: 0x02000010, Kind: symbol.Data{Variant: symbol.DataWord}})

	bytesVal := []byte{0x10, 0x00, 0x00, 0x02} // little-endian 0x02000010
	sym := symbol.Symbol{Name: "data_02000000", Addr: 0x02000000, Kind: symbol.Data{Variant: symbol.DataWord}}

	var buf bytes.Buffer
	require.NoError(t, disasm.EmitData(&buf, newLookup(t, m), sym, symbol.DataWord, bytesVal))

	assert.Equal(t, "    .word target\n", buf.String())
}

func TestEmitDataClosesOpenLiteralLineBeforeWordSymbol(t *testing.T) {
	m := newDataModule(t)
	m.Symbols.Add(symbol.Symbol{Name: "target", Addr: 0x02000010, Kind: symbol.Data{Variant: symbol.DataWord}})

	// one literal word followed by a resolvable word reference, same row
	bytesVal := []byte{
		0xFF, 0xFF, 0xFF, 0xFF,
		0x10, 0x00, 0x00, 0x02,
	}
	sym := symbol.Symbol{Name: "data_02000000", Addr: 0x02000000, Kind: symbol.Data{Variant: symbol.DataWord}}

	var buf bytes.Buffer
	require.NoError(t, disasm.EmitData(&buf, newLookup(t, m), sym, symbol.DataWord, bytesVal))

	expected := "    .word 0xffffffff\n    .word target\n"
	assert.Equal(t, expected, buf.String())
}
