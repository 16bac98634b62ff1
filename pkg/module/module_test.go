package module_test

import (
	"testing"

	"github.com/dsdecomp/nitrolink/pkg/modkind"
	"github.com/dsdecomp/nitrolink/pkg/module"
	"github.com/dsdecomp/nitrolink/pkg/section"
	"github.com/dsdecomp/nitrolink/pkg/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule(t *testing.T) *module.Module {
	t.Helper()
	sections := section.NewSections()
	text, err := section.New(".text", section.Code, 0x02000000, 0x02000010, 4)
	require.NoError(t, err)
	require.NoError(t, sections.Add(text))
	bss, err := section.New(".bss", section.Bss, 0x02000010, 0x02000020, 4)
	require.NoError(t, err)
	require.NoError(t, sections.Add(bss))

	code := make([]byte, 0x10)
	return module.New("main", modkind.ARM9(), sections, code)
}

func TestCodeOfReturnsBytesForInitializedSection(t *testing.T) {
	m := newTestModule(t)
	text, _ := m.Sections.ByName(".text")

	code, ok := m.CodeOf(text)
	require.True(t, ok)
	assert.Len(t, code, 0x10)
}

func TestCodeOfRejectsBss(t *testing.T) {
	m := newTestModule(t)
	bss, _ := m.Sections.ByName(".bss")

	_, ok := m.CodeOf(bss)
	assert.False(t, ok)
}

func TestGetFunction(t *testing.T) {
	m := newTestModule(t)
	m.Symbols.Add(symbol.Symbol{Name: "func_02000000", Addr: 0x02000000, Kind: symbol.Function{Mode: symbol.ModeARM, Size: 8}})

	found, ok := m.GetFunction(0x02000004)
	require.True(t, ok)
	assert.Equal(t, "func_02000000", found.Name)

	_, ok = m.GetFunction(0x02000008)
	assert.False(t, ok)
}

func TestRegistryByKind(t *testing.T) {
	reg := module.NewRegistry()
	m := newTestModule(t)
	reg.Add(m)

	found, ok := reg.ByKind(modkind.ARM9())
	require.True(t, ok)
	assert.Same(t, m, found)

	_, ok = reg.ByKind(modkind.Overlay(1))
	assert.False(t, ok)

	assert.Len(t, reg.All(), 1)
}
