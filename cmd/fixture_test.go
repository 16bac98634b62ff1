package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

// buildProjectFixture lays out a minimal single-module (ARM9-only) project
// on disk: config.yaml, rom.yaml, and the module's delinks/symbols/xrefs/
// object files.
func buildProjectFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "config.yaml"), `
rom_config: rom.yaml
build_path: build
delinks_path: delinks
main_module:
  name: main
  delinks: main/delinks.txt
  xrefs: main/xrefs.txt
  object: main/main.bin
`)

	writeFile(t, filepath.Join(dir, "rom.yaml"), `
arm9:
  base: 0x02000000
  end: 0x02100000
`)

	writeFile(t, filepath.Join(dir, "main/delinks.txt"), `.text kind:code start:0x02000000 end:0x02000010 align:0x4

a.c
.text start:0x02000000 end:0x02000010
`)
	writeFile(t, filepath.Join(dir, "main/symbols.txt"), `func_02000000 kind:function mode:arm addr:0x02000000 size:0x10
`)
	writeFile(t, filepath.Join(dir, "main/xrefs.txt"), ``)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main/main.bin"), make([]byte, 0x10), 0o644))

	return dir
}
