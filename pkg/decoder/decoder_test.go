package decoder_test

import (
	"testing"

	"github.com/dsdecomp/nitrolink/pkg/decoder"
	"github.com/dsdecomp/nitrolink/pkg/decoder/decodertest"
	"github.com/dsdecomp/nitrolink/pkg/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNamer struct {
	names map[uint32]string
}

func (f fakeNamer) SymbolName(source, destination uint32) (string, bool) {
	name, ok := f.names[destination]
	return name, ok
}

func TestFromSymbolMode(t *testing.T) {
	assert.Equal(t, decoder.ModeThumb, decoder.FromSymbolMode(symbol.ModeThumb))
	assert.Equal(t, decoder.ModeARM, decoder.FromSymbolMode(symbol.ModeARM))
}

func TestStubDecodeFallsBackToLiteral(t *testing.T) {
	var d decoder.Decoder = decodertest.Stub{}
	code := []byte{0x04, 0x00, 0x00, 0x02}
	inst, err := d.Decode(code, 0x02000000, decoder.ModeARM, fakeNamer{})
	require.NoError(t, err)
	assert.Equal(t, uint32(4), inst.Size)
	assert.Contains(t, inst.Text, "0x02000004")
}

func TestStubDecodeResolvesSymbol(t *testing.T) {
	var d decoder.Decoder = decodertest.Stub{}
	code := []byte{0x00, 0x00, 0x00, 0x02}
	namer := fakeNamer{names: map[uint32]string{0x02000000: "foo"}}
	inst, err := d.Decode(code, 0x02000010, decoder.ModeARM, namer)
	require.NoError(t, err)
	assert.Contains(t, inst.Text, "foo")
}
