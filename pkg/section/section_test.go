package section_test

import (
	"testing"

	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSection(t *testing.T) {
	sec, err := section.New(".text", section.Code, 0x02000000, 0x02000010, 0x4)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), sec.Size())
	assert.Equal(t, uint32(0x02000000), sec.Start)
	assert.Equal(t, uint32(0x02000010), sec.End)
}

func TestNewSectionRejectsEndBeforeStart(t *testing.T) {
	_, err := section.New(".text", section.Code, 0x100, 0x0, 0x4)
	require.Error(t, err)
	assert.True(t, nitroerr.Is(err, nitroerr.SectionInvariant))
}

func TestNewSectionRejectsNonPowerOfTwoAlignment(t *testing.T) {
	_, err := section.New(".text", section.Code, 0, 0x10, 3)
	require.Error(t, err)
	assert.True(t, nitroerr.Is(err, nitroerr.SectionInvariant))
}

func TestNewSectionRejectsMisalignedStart(t *testing.T) {
	_, err := section.New(".text", section.Code, 0x02, 0x10, 4)
	require.Error(t, err)
	assert.True(t, nitroerr.Is(err, nitroerr.SectionInvariant))
}

func TestParseFreshSection(t *testing.T) {
	sec, err := section.ParseFresh(".text kind:code start:0x02000000 end:0x02000010 align:0x4", nitroerr.Context{})
	require.NoError(t, err)
	require.NotNil(t, sec)
	assert.Equal(t, ".text", sec.Name)
	assert.Equal(t, section.Code, sec.Kind)
	assert.Equal(t, uint32(16), sec.Size())
}

func TestParseFreshBlankLineYieldsNoSection(t *testing.T) {
	sec, err := section.ParseFresh("   ", nitroerr.Context{})
	require.NoError(t, err)
	assert.Nil(t, sec)
}

func TestParseFreshUnknownAttribute(t *testing.T) {
	_, err := section.ParseFresh(".text kind:code start:0x0 end:0x10 align:4 bogus:1", nitroerr.Context{})
	require.Error(t, err)
	assert.True(t, nitroerr.Is(err, nitroerr.ConfigParse))
}

func TestParseFreshMissingAttribute(t *testing.T) {
	_, err := section.ParseFresh(".text kind:code start:0x0 end:0x10", nitroerr.Context{})
	require.Error(t, err)
	assert.True(t, nitroerr.Is(err, nitroerr.ConfigParse))
}

func TestParseInherit(t *testing.T) {
	header := section.NewSections()
	headerSec, err := section.ParseFresh(".text kind:code start:0x0 end:0x100 align:0x4", nitroerr.Context{})
	require.NoError(t, err)
	require.NoError(t, header.Add(*headerSec))

	inherited, err := section.ParseInherit(".text start:0x10 end:0x20", nitroerr.Context{}, header)
	require.NoError(t, err)
	require.NotNil(t, inherited)
	assert.Equal(t, ".text", inherited.Name)
	assert.Equal(t, section.Code, inherited.Kind)
	assert.Equal(t, uint32(4), inherited.Alignment)
	assert.Equal(t, uint32(0x10), inherited.Start)
	assert.Equal(t, uint32(0x20), inherited.End)
}

func TestParseInheritRejectsKindAndAlign(t *testing.T) {
	header := section.NewSections()
	headerSec, _ := section.ParseFresh(".text kind:code start:0x0 end:0x100 align:0x4", nitroerr.Context{})
	require.NoError(t, header.Add(*headerSec))

	_, err := section.ParseInherit(".text start:0x10 end:0x20 kind:code", nitroerr.Context{}, header)
	require.Error(t, err)

	_, err = section.ParseInherit(".text start:0x10 end:0x20 align:4", nitroerr.Context{}, header)
	require.Error(t, err)
}

func TestParseInheritNotInHeader(t *testing.T) {
	header := section.NewSections()
	_, err := section.ParseInherit(".text start:0x10 end:0x20", nitroerr.Context{}, header)
	require.Error(t, err)
	assert.True(t, nitroerr.Is(err, nitroerr.ConfigParse))
}
