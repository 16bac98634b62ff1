// Package lcf implements the MWCC/mwld linker-command-file generator:
// the MEMORY, KEEP_SECTION and SECTIONS blocks plus the companion
// object-list file consumed by the external linker.
package lcf

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dsdecomp/nitrolink/pkg/config"
	"github.com/dsdecomp/nitrolink/pkg/modkind"
	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/overlaygroup"
)

// AutoloadAddress pairs an autoload kind with the base address it was
// loaded to, a fact the external ROM-unpacking collaborator supplies.
type AutoloadAddress struct {
	Kind modkind.AutoloadKind
	Base uint32
}

// RomInfo is the slice of already-unpacked ROM metadata this writer needs:
// module base/end addresses and overlay load-slot geometry. ROM container
// unpacking itself happens upstream; this struct is the seam an external
// collaborator populates before calling Writer.Write.
type RomInfo struct {
	Arm9Base  uint32
	Arm9End   uint32
	Autoloads []AutoloadAddress
	Overlays  []overlaygroup.Overlay
}

func (r RomInfo) autoloadBase(kind modkind.AutoloadKind) (uint32, bool) {
	for _, a := range r.Autoloads {
		if a.Kind == kind {
			return a.Base, true
		}
	}
	return 0, false
}

// Writer emits the linker script and object list for one ds-decomp build
// configuration. ConfigDir is the directory config.yaml itself lives
// in; every path in Config is resolved relative to it, matching the
// original's config_dir.normalize_join convention.
type Writer struct {
	Config      *config.Config
	Rom         RomInfo
	ConfigDir   string
	BuildPath   string
	DelinksPath string

	// LoadDelinks loads a module's delinks file. Defaults to
	// config.LoadDelinks; overridable for tests to avoid real file I/O.
	LoadDelinks func(path string) (*config.Delinks, error)
}

func (w *Writer) loadDelinks(relPath string) (*config.Delinks, error) {
	load := w.LoadDelinks
	if load == nil {
		load = config.LoadDelinks
	}
	return load(normalizeJoin(w.ConfigDir, relPath))
}

// normalizeJoin joins base and rel and cleans the result, mirroring the
// original's config_dir.normalize_join path utility. Pure string
// manipulation: no filesystem access occurs here.
func normalizeJoin(base, rel string) string {
	return path.Clean(path.Join(base, rel))
}

// relativeToBuild strips the build path prefix from an absolute-ish path,
// matching the original's strip_prefix_ext: mwld expects MEMORY object
// paths relative to the linked ELF binary, which lives under build_path.
func relativeToBuild(buildPath, p string) string {
	rel := strings.TrimPrefix(p, buildPath+"/")
	if rel == p && p == buildPath {
		return "."
	}
	return rel
}

// fileBaseName strips a file path's directory and extension, e.g.
// "src/sub/main.c" -> "main".
func fileBaseName(filePath string) string {
	base := path.Base(filePath)
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// withoutExt strips only the extension, keeping the directory prefix
// (used when building object-list entries, which stay nested under their
// source directory).
func withoutExt(filePath string) string {
	ext := path.Ext(filePath)
	return strings.TrimSuffix(filePath, ext)
}

// Write emits the full linker script to lcfW and the object list to
// objectsW.
func (w *Writer) Write(lcfW, objectsW io.Writer) error {
	groups := overlaygroup.Analyze(w.Rom.Arm9End, w.Rom.Overlays)

	if err := w.writeMemorySection(lcfW, groups); err != nil {
		return err
	}
	if err := writeKeepSectionSection(lcfW); err != nil {
		return err
	}
	return w.writeSectionsSection(lcfW, objectsW)
}

func (w *Writer) objectPath(mod config.Module) string {
	return relativeToBuild(w.BuildPath, normalizeJoin(w.ConfigDir, mod.Object))
}

func (w *Writer) writeMemorySection(lcf io.Writer, groups []overlaygroup.Group) error {
	if _, err := fmt.Fprintln(lcf, "MEMORY {"); err != nil {
		return nitroerr.New(nitroerr.External, err)
	}

	if _, err := fmt.Fprintf(lcf, "    ARM9 : ORIGIN = %#x > %s\n", w.Rom.Arm9Base, w.objectPath(w.Config.MainModule)); err != nil {
		return nitroerr.New(nitroerr.External, err)
	}

	for _, autoload := range w.Config.Autoloads {
		kind, ok := autoload.ResolvedKind()
		if !ok {
			return nitroerr.Newf(nitroerr.ConfigParse, "autoload %q has unknown kind %q", autoload.Module.Name, autoload.Kind)
		}
		base, ok := w.Rom.autoloadBase(kind)
		if !ok {
			return nitroerr.Newf(nitroerr.External, "no ROM autoload matches configured kind %s", kind)
		}
		if _, err := fmt.Fprintf(lcf, "    %s : ORIGIN = %#x > %s\n", kind.String(), base, w.objectPath(autoload.Module)); err != nil {
			return nitroerr.New(nitroerr.External, err)
		}
	}

	for _, group := range groups {
		for _, overlayID := range group.Overlays {
			overlay, ok := w.overlayConfig(overlayID)
			if !ok {
				return nitroerr.Newf(nitroerr.External, "no config overlay entry for overlay id %d", overlayID)
			}

			memoryName := overlayMemoryName(overlayID)
			if _, err := fmt.Fprintf(lcf, "    %s : ORIGIN = AFTER(", memoryName); err != nil {
				return nitroerr.New(nitroerr.External, err)
			}
			if len(group.After) == 0 {
				if _, err := fmt.Fprint(lcf, "ARM9"); err != nil {
					return nitroerr.New(nitroerr.External, err)
				}
			} else {
				for i, id := range group.After {
					if i > 0 {
						if _, err := fmt.Fprint(lcf, ","); err != nil {
							return nitroerr.New(nitroerr.External, err)
						}
					}
					if _, err := fmt.Fprint(lcf, overlayMemoryName(id)); err != nil {
						return nitroerr.New(nitroerr.External, err)
					}
				}
			}
			if _, err := fmt.Fprintf(lcf, ") > %s\n", w.objectPath(overlay.Module)); err != nil {
				return nitroerr.New(nitroerr.External, err)
			}
		}
	}

	_, err := fmt.Fprintln(lcf, "}")
	if err == nil {
		_, err = fmt.Fprintln(lcf)
	}
	if err != nil {
		return nitroerr.New(nitroerr.External, err)
	}
	return nil
}

func (w *Writer) overlayConfig(id uint32) (config.Overlay, bool) {
	for _, o := range w.Config.Overlays {
		if o.ID == id {
			return o, true
		}
	}
	return config.Overlay{}, false
}

// overlayMemoryName zero-pads to three digits, matching the original's
// sprintf("OV%03d", id).
func overlayMemoryName(id uint32) string {
	return fmt.Sprintf("OV%03d", id)
}

func writeKeepSectionSection(lcf io.Writer) error {
	_, err := fmt.Fprint(lcf, "KEEP_SECTION {\n    .init,\n    .ctor\n}\n\n")
	if err != nil {
		return nitroerr.New(nitroerr.External, err)
	}
	return nil
}

func (w *Writer) writeSectionsSection(lcf, objects io.Writer) error {
	if _, err := fmt.Fprintln(lcf, "SECTIONS {"); err != nil {
		return nitroerr.New(nitroerr.External, err)
	}

	if err := w.writeModuleSection(lcf, objects, w.Config.MainModule, modkind.ARM9()); err != nil {
		return err
	}
	for _, autoload := range w.Config.Autoloads {
		kind, ok := autoload.ResolvedKind()
		if !ok {
			return nitroerr.Newf(nitroerr.ConfigParse, "autoload %q has unknown kind %q", autoload.Module.Name, autoload.Kind)
		}
		if err := w.writeModuleSection(lcf, objects, autoload.Module, modkind.Autoload(kind)); err != nil {
			return err
		}
	}
	for _, overlay := range w.Config.Overlays {
		if err := w.writeModuleSection(lcf, objects, overlay.Module, modkind.Overlay(overlay.ID)); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(lcf, "}\n\n"); err != nil {
		return nitroerr.New(nitroerr.External, err)
	}
	return nil
}

func (w *Writer) writeModuleSection(lcf, objects io.Writer, mod config.Module, kind modkind.Kind) error {
	delinks, err := w.loadDelinks(mod.Delinks)
	if err != nil {
		return err
	}

	moduleName := kind.SectionName()
	memoryName := kind.MemoryName()

	if _, err := fmt.Fprintf(lcf, "    %s : {\n", moduleName); err != nil {
		return nitroerr.New(nitroerr.External, err)
	}

	for _, sec := range delinks.Sections.SortedByAddress() {
		if _, err := fmt.Fprintf(lcf, "        . = ALIGN(%d);\n", sec.Alignment); err != nil {
			return nitroerr.New(nitroerr.External, err)
		}
		boundary := sec.BoundaryName()
		if _, err := fmt.Fprintf(lcf, "        %s_%s_START = .;\n", memoryName, boundary); err != nil {
			return nitroerr.New(nitroerr.External, err)
		}
		for _, file := range delinks.Files {
			if !file.HasSection(sec.Name) {
				continue
			}
			if _, err := fmt.Fprintf(lcf, "        %s.o(%s)\n", fileBaseName(file.Path), sec.Name); err != nil {
				return nitroerr.New(nitroerr.External, err)
			}
		}
		if _, err := fmt.Fprintf(lcf, "        %s_%s_END = .;\n", memoryName, boundary); err != nil {
			return nitroerr.New(nitroerr.External, err)
		}
	}

	if _, err := fmt.Fprintf(lcf, "    } > %s\n\n", memoryName); err != nil {
		return nitroerr.New(nitroerr.External, err)
	}

	for _, file := range delinks.Files {
		basePath := w.DelinksPath
		if file.Complete {
			basePath = w.BuildPath
		}
		objPath := path.Join(basePath, withoutExt(file.Path))
		if _, err := fmt.Fprintf(objects, "%s.o\n", objPath); err != nil {
			return nitroerr.New(nitroerr.External, err)
		}
	}

	return nil
}
