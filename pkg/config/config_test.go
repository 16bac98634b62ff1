package config_test

import (
	"strings"
	"testing"

	"github.com/dsdecomp/nitrolink/pkg/config"
	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
rom_config: rom.yaml
build_path: build
delinks_path: delinks
main_module:
  name: main
  delinks: main/delinks.txt
  xrefs: main/xrefs.txt
  object: main/main.o
autoloads:
  - name: itcm
    delinks: itcm/delinks.txt
    xrefs: itcm/xrefs.txt
    object: itcm/itcm.o
    kind: ITCM
overlays:
  - name: ov005
    delinks: ov005/delinks.txt
    xrefs: ov005/xrefs.txt
    object: ov005/ov005.o
    id: 5
`

func TestLoadConfig(t *testing.T) {
	cfg, err := config.Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "rom.yaml", cfg.RomConfig)
	assert.Equal(t, "main", cfg.MainModule.Name)
	require.Len(t, cfg.Autoloads, 1)
	assert.Equal(t, "ITCM", cfg.Autoloads[0].Kind)
	kind, ok := cfg.Autoloads[0].ResolvedKind()
	require.True(t, ok)
	assert.Equal(t, "ITCM", kind.String())

	require.Len(t, cfg.Overlays, 1)
	assert.Equal(t, uint32(5), cfg.Overlays[0].ID)
}

func TestLoadConfigMalformedYAMLIsExternalError(t *testing.T) {
	_, err := config.Load(strings.NewReader("main_module: [this is not, a map}"))
	require.Error(t, err)
	assert.True(t, nitroerr.Is(err, nitroerr.External))
}

func TestLoadConfigRejectsUnknownField(t *testing.T) {
	_, err := config.Load(strings.NewReader(sampleYAML + "\nbogus_option: true\n"))
	require.Error(t, err)
}
