package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dsdecomp/nitrolink/pkg/decoder/decodertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDisWritesOneFilePerModule(t *testing.T) {
	dir := buildProjectFixture(t)

	prevDecoder := InstructionDecoder
	InstructionDecoder = decodertest.Stub{}
	defer func() { InstructionDecoder = prevDecoder }()

	disConfigPath = filepath.Join(dir, "config.yaml")
	disAsmDir = filepath.Join(dir, "asm")

	require.NoError(t, runDis(nil, nil))

	out, err := os.ReadFile(filepath.Join(dir, "asm", "main.s"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "func_02000000:")
}

func TestRunDisFailsWithoutDecoder(t *testing.T) {
	dir := buildProjectFixture(t)

	prevDecoder := InstructionDecoder
	InstructionDecoder = nil
	defer func() { InstructionDecoder = prevDecoder }()

	disConfigPath = filepath.Join(dir, "config.yaml")
	disAsmDir = filepath.Join(dir, "asm")

	err := runDis(nil, nil)
	require.Error(t, err)
}
