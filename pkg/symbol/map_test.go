package symbol_test

import (
	"testing"

	"github.com/dsdecomp/nitrolink/pkg/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapByAddressAndByName(t *testing.T) {
	m := symbol.NewMap()
	m.Add(symbol.Symbol{Name: "func_020001", Addr: 0x020001, Kind: symbol.Function{Mode: symbol.ModeARM, Size: 4}})

	found, ok := m.ByAddress(0x020001)
	require.True(t, ok)
	assert.Equal(t, "func_020001", found.Name)

	byName := m.ByName("func_020001")
	require.Len(t, byName, 1)
	assert.False(t, byName[0].Ambiguous)
}

func TestMapKeepsAddressOrderAcrossInserts(t *testing.T) {
	m := symbol.NewMap()
	m.Add(symbol.Symbol{Name: "c", Addr: 0x300})
	m.Add(symbol.Symbol{Name: "a", Addr: 0x100})
	m.Add(symbol.Symbol{Name: "b", Addr: 0x200})

	all := m.All()
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "b", all[1].Name)
	assert.Equal(t, "c", all[2].Name)
}

func TestMapMarksNameAmbiguousAcrossDistinctAddresses(t *testing.T) {
	m := symbol.NewMap()
	m.Add(symbol.Symbol{Name: "dup", Addr: 0x100})
	m.Add(symbol.Symbol{Name: "dup", Addr: 0x200})

	byName := m.ByName("dup")
	require.Len(t, byName, 2)
	assert.True(t, byName[0].Ambiguous)
	assert.True(t, byName[1].Ambiguous)
}

func TestMapSameNameSameAddressNotAmbiguous(t *testing.T) {
	m := symbol.NewMap()
	m.Add(symbol.Symbol{Name: "same", Addr: 0x100, Kind: symbol.Label{}})
	m.Add(symbol.Symbol{Name: "same", Addr: 0x100, Kind: symbol.Function{Size: 4}})

	byName := m.ByName("same")
	require.Len(t, byName, 2)
	assert.False(t, byName[0].Ambiguous)
	assert.False(t, byName[1].Ambiguous)
}

func TestContainingFunction(t *testing.T) {
	m := symbol.NewMap()
	m.Add(symbol.Symbol{Name: "func_100", Addr: 0x100, Kind: symbol.Function{Mode: symbol.ModeARM, Size: 0x20}})
	m.Add(symbol.Symbol{Name: "label_108", Addr: 0x108, Kind: symbol.Label{Mode: symbol.ModeARM}})

	fn, ok := m.ContainingFunction(0x108)
	require.True(t, ok)
	assert.Equal(t, "func_100", fn.Name)

	fn, ok = m.ContainingFunction(0x11F)
	require.True(t, ok)
	assert.Equal(t, "func_100", fn.Name)

	_, ok = m.ContainingFunction(0x120)
	assert.False(t, ok)
}

func TestNextAddress(t *testing.T) {
	m := symbol.NewMap()
	m.Add(symbol.Symbol{Name: "a", Addr: 0x100})
	m.Add(symbol.Symbol{Name: "b", Addr: 0x200})

	next, ok := m.NextAddress(0x100)
	require.True(t, ok)
	assert.Equal(t, uint32(0x200), next)

	_, ok = m.NextAddress(0x200)
	assert.False(t, ok)
}

func TestAddIfNewAddressIsIdempotentAtExistingAddress(t *testing.T) {
	m := symbol.NewMap()
	m.AddIfNewAddress(symbol.Symbol{Name: "first", Addr: 0x100, Kind: symbol.Function{Size: 4}})
	m.AddIfNewAddress(symbol.Symbol{Name: "second", Addr: 0x100, Kind: symbol.Label{}})

	all := m.All()
	require.Len(t, all, 1)
	assert.Equal(t, "first", all[0].Name)
	assert.Len(t, m.ByName("second"), 0)
}

func TestAddIfNewAddressInsertsAtNewAddress(t *testing.T) {
	m := symbol.NewMap()
	m.AddIfNewAddress(symbol.Symbol{Name: "a", Addr: 0x100})
	m.AddIfNewAddress(symbol.Symbol{Name: "b", Addr: 0x200})

	all := m.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "b", all[1].Name)
}
