package lcf_test

import (
	"strings"
	"testing"

	"github.com/dsdecomp/nitrolink/pkg/config"
	"github.com/dsdecomp/nitrolink/pkg/lcf"
	"github.com/dsdecomp/nitrolink/pkg/modkind"
	"github.com/dsdecomp/nitrolink/pkg/overlaygroup"
	"github.com/dsdecomp/nitrolink/pkg/section"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSections(t *testing.T, entries ...section.Section) *section.Sections {
	t.Helper()
	s := section.NewSections()
	for _, e := range entries {
		require.NoError(t, s.Add(e))
	}
	return s
}

func fakeDelinks(t *testing.T, byPath map[string]*config.Delinks) func(string) (*config.Delinks, error) {
	return func(path string) (*config.Delinks, error) {
		d, ok := byPath[path]
		require.Truef(t, ok, "unexpected delinks path %q", path)
		return d, nil
	}
}

func newTestWriter(t *testing.T) (*lcf.Writer, map[string]*config.Delinks) {
	t.Helper()

	text, err := section.New(".text", section.Code, 0x02000000, 0x02000100, 4)
	require.NoError(t, err)

	mainDelinks := &config.Delinks{
		Sections: mustSections(t, text),
		Files: []config.DelinkFile{
			{Path: "main/src/a.c", Complete: true, Sections: mustSections(t, text)},
		},
	}

	ov0Text, err := section.New(".text", section.Code, 0x02300000, 0x02300100, 4)
	require.NoError(t, err)
	ov0Delinks := &config.Delinks{
		Sections: mustSections(t, ov0Text),
		Files: []config.DelinkFile{
			{Path: "ov000/src/b.c", Complete: false, Sections: mustSections(t, ov0Text)},
		},
	}

	ov1Delinks := &config.Delinks{
		Sections: mustSections(t, ov0Text),
		Files: []config.DelinkFile{
			{Path: "ov001/src/c.c", Complete: true, Sections: mustSections(t, ov0Text)},
		},
	}

	byPath := map[string]*config.Delinks{
		"/proj/main/delinks.txt": mainDelinks,
		"/proj/ov000/delinks.txt": ov0Delinks,
		"/proj/ov001/delinks.txt": ov1Delinks,
	}

	cfg := &config.Config{
		MainModule: config.Module{Name: "main", Delinks: "main/delinks.txt", Object: "main/main.o"},
		Overlays: []config.Overlay{
			{Module: config.Module{Name: "ov000", Delinks: "ov000/delinks.txt", Object: "ov000/ov000.o"}, ID: 0},
			{Module: config.Module{Name: "ov001", Delinks: "ov001/delinks.txt", Object: "ov001/ov001.o"}, ID: 1},
		},
	}

	w := &lcf.Writer{
		Config:      cfg,
		ConfigDir:   "/proj",
		BuildPath:   "/proj",
		DelinksPath: "/proj/delinks",
		Rom: lcf.RomInfo{
			Arm9Base: 0x02000000,
			Arm9End:  0x02300000,
			Overlays: []overlaygroup.Overlay{
				{ID: 0, Base: 0x02300000, Size: 0x100},
				{ID: 1, Base: 0x02300000, Size: 0x100},
			},
		},
		LoadDelinks: fakeDelinks(t, byPath),
	}
	return w, byPath
}

func TestWriteMemorySectionGroupsSharedOverlaySlot(t *testing.T) {
	w, _ := newTestWriter(t)
	var lcfOut, objOut strings.Builder

	require.NoError(t, w.Write(&lcfOut, &objOut))

	out := lcfOut.String()
	assert.Contains(t, out, "ARM9 : ORIGIN = 0x2000000 > main/main.o")
	assert.Contains(t, out, "OV000 : ORIGIN = AFTER(ARM9) > ov000/ov000.o")
	assert.Contains(t, out, "OV001 : ORIGIN = AFTER(ARM9) > ov001/ov001.o")
}

func TestWriteKeepSectionSectionIsLiteral(t *testing.T) {
	w, _ := newTestWriter(t)
	var lcfOut, objOut strings.Builder
	require.NoError(t, w.Write(&lcfOut, &objOut))

	assert.Contains(t, lcfOut.String(), "KEEP_SECTION {\n    .init,\n    .ctor\n}\n")
}

func TestWriteSectionsSectionEmitsBoundsAndFiles(t *testing.T) {
	w, _ := newTestWriter(t)
	var lcfOut, objOut strings.Builder
	require.NoError(t, w.Write(&lcfOut, &objOut))

	out := lcfOut.String()
	assert.Contains(t, out, ".arm9 : {")
	assert.Contains(t, out, "ARM9_text_START = .;")
	assert.Contains(t, out, "a.o(.text)")
	assert.Contains(t, out, "ARM9_text_END = .;")
	assert.Contains(t, out, "} > ARM9")
}

func TestWriteObjectListUsesCompleteFlagToPickBasePath(t *testing.T) {
	w, _ := newTestWriter(t)
	var lcfOut, objOut strings.Builder
	require.NoError(t, w.Write(&lcfOut, &objOut))

	objs := objOut.String()
	assert.Contains(t, objs, "/proj/main/src/a.o")
	assert.Contains(t, objs, "/proj/delinks/ov000/src/b.o")
	assert.Contains(t, objs, "/proj/ov001/src/c.o")
}

func TestWriteUnknownAutoloadKindIsFatal(t *testing.T) {
	w, byPath := newTestWriter(t)
	w.Config.Autoloads = []config.Autoload{
		{Module: config.Module{Name: "bogus", Delinks: "bogus/delinks.txt"}, Kind: "WRAM"},
	}
	byPath["bogus/delinks.txt"] = &config.Delinks{Sections: section.NewSections()}

	var lcfOut, objOut strings.Builder
	err := w.Write(&lcfOut, &objOut)
	require.Error(t, err)
}

func TestWriteChainsSequentialOverlayGroups(t *testing.T) {
	w, byPath := newTestWriter(t)
	w.Rom.Overlays = []overlaygroup.Overlay{
		{ID: 0, Base: 0x02300000, Size: 0x100},
		{ID: 1, Base: 0x02300100, Size: 0x100},
	}
	ov1Text, err := section.New(".text", section.Code, 0x02300100, 0x02300200, 4)
	require.NoError(t, err)
	byPath["/proj/ov001/delinks.txt"] = &config.Delinks{
		Sections: mustSections(t, ov1Text),
		Files: []config.DelinkFile{
			{Path: "ov001/src/c.c", Complete: true, Sections: mustSections(t, ov1Text)},
		},
	}

	var lcfOut, objOut strings.Builder
	require.NoError(t, w.Write(&lcfOut, &objOut))

	out := lcfOut.String()
	assert.Contains(t, out, "OV000 : ORIGIN = AFTER(ARM9) > ov000/ov000.o")
	assert.Contains(t, out, "OV001 : ORIGIN = AFTER(OV000) > ov001/ov001.o")
}

func TestModKindSectionNames(t *testing.T) {
	assert.Equal(t, ".arm9", modkind.ARM9().SectionName())
	assert.Equal(t, ".ov001", modkind.Overlay(1).SectionName())
}
