// Package project ties together the four on-disk formats (config,
// delinks, symbols, xrefs) into the fully populated module.Registry the
// resolution and emission phases need: every module loads before any
// module emits. It is the orchestration glue the `cmd` package would
// otherwise have to repeat across `dis` and `lcf`.
package project

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/dsdecomp/nitrolink/pkg/config"
	"github.com/dsdecomp/nitrolink/pkg/lcf"
	"github.com/dsdecomp/nitrolink/pkg/modkind"
	"github.com/dsdecomp/nitrolink/pkg/module"
	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/overlaygroup"
	"github.com/dsdecomp/nitrolink/pkg/reloc"
	"github.com/dsdecomp/nitrolink/pkg/utils"
)

// Project is every module this build config describes, loaded and
// registered, plus the already-unpacked ROM metadata (if any) needed to
// generate a linker script.
type Project struct {
	Config    *config.Config
	ConfigDir string
	Rom       *config.RomConfig
	Registry  *module.Registry
}

// Load reads configPath and every module's delinks/symbols/xrefs files and
// raw code object it references, relative to configPath's directory,
// registering each as a module.Module. Relocations are derived afterwards
// (DeriveRelocations), once every module's sections are known, since a
// relocation's ambiguity set depends on which modules' address ranges
// overlap the referenced address.
func Load(configPath string) (*Project, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(configPath)

	var rom *config.RomConfig
	if cfg.RomConfig != "" {
		rom, err = config.LoadRomConfigFile(filepath.Join(dir, cfg.RomConfig))
		if err != nil {
			return nil, err
		}
	}

	registry := module.NewRegistry()

	if err := loadModule(registry, dir, cfg.MainModule, modkind.ARM9()); err != nil {
		return nil, err
	}
	for _, autoload := range cfg.Autoloads {
		kind, ok := autoload.ResolvedKind()
		if !ok {
			return nil, nitroerr.Newf(nitroerr.ConfigParse, "autoload %q has unknown kind %q", autoload.Module.Name, autoload.Kind)
		}
		if err := loadModule(registry, dir, autoload.Module, modkind.Autoload(kind)); err != nil {
			return nil, err
		}
	}
	for _, overlay := range cfg.Overlays {
		if err := loadModule(registry, dir, overlay.Module, modkind.Overlay(overlay.ID)); err != nil {
			return nil, err
		}
	}

	for _, m := range registry.All() {
		DeriveRelocations(m, registry)
	}

	return &Project{Config: cfg, ConfigDir: dir, Rom: rom, Registry: registry}, nil
}

// symbolsPath derives a module's symbols file path from its delinks file's
// directory (named "symbols.txt"), following the sibling-file-per-module
// layout the delinks/xrefs paths themselves use. A module config entry
// carries `{name, delinks, xrefs, object}` only, with no standalone
// `symbols` key, so this is the one place nitrolink resolves an
// implied-by-convention path rather than reading it from config.yaml.
func symbolsPath(delinksPath string) string {
	return filepath.Join(filepath.Dir(delinksPath), "symbols.txt")
}

func loadModule(registry *module.Registry, dir string, mod config.Module, kind modkind.Kind) error {
	delinksPath := filepath.Join(dir, mod.Delinks)
	delinks, err := config.LoadDelinks(delinksPath)
	if err != nil {
		return err
	}

	symbols, err := config.LoadSymbols(symbolsPath(delinksPath))
	if err != nil {
		return err
	}

	xrefs, err := config.LoadXrefs(filepath.Join(dir, mod.Xrefs))
	if err != nil {
		return err
	}

	code, err := os.ReadFile(filepath.Join(dir, mod.Object))
	if err != nil {
		return nitroerr.Wrap(nitroerr.External, err, "reading module %q's raw code object", mod.Name)
	}

	m := module.New(mod.Name, kind, delinks.Sections, code)
	m.Symbols = symbols
	m.Xrefs = xrefs
	registry.Add(m)
	return nil
}

// DeriveRelocations populates m.Relocations from m.Xrefs, the module's own
// inverse reference index, against the full registry's section
// geometry. An xref (from, to) pair becomes a relocation only when `to`
// falls inside a module other than m, or inside more than one module at
// once (overlay address aliasing) — a reference that resolves purely
// within m needs no relocation, since symbol resolution already finds it
// through m's own local symbol map. Candidate modules other than m are
// sorted by their String() form, with m's own kind appended last when it
// is itself a candidate, so the canonical (first) choice is deterministic
// across runs.
func DeriveRelocations(m *module.Module, registry *module.Registry) {
	table := reloc.NewTable()

	for _, x := range m.Xrefs.All() {
		candidates := candidateModules(registry, x.To)
		if len(candidates) == 0 {
			continue
		}
		if len(candidates) == 1 && candidates[0] == m.Kind {
			continue
		}

		ordered := make([]modkind.Kind, 0, len(candidates))
		for _, k := range candidates {
			if k != m.Kind {
				ordered = append(ordered, k)
			}
		}
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].String() < ordered[j].String() })
		if len(candidates) > len(ordered) {
			// m.Kind is itself a candidate (the reference is ambiguous
			// between m and at least one peer): keep it as a fallback
			// choice after the peers, since the peers are the interesting
			// cross-module case this table exists to record.
			ordered = append(ordered, m.Kind)
		}

		table.Add(reloc.Relocation{
			Source:      x.From,
			Destination: x.To,
			Addend:      0,
			Target:      reloc.NewModuleRef(ordered...),
		})
	}

	m.Relocations = table
}

// candidateModules returns every module in the registry whose sections
// contain addr, identifying the module(s) a reference to addr could mean
//.
func candidateModules(registry *module.Registry, addr uint32) []modkind.Kind {
	var out []modkind.Kind
	for _, m := range registry.All() {
		if _, ok := m.Sections.ByContainedAddress(addr); ok {
			out = append(out, m.Kind)
		}
	}
	return out
}

// RomInfo converts the project's RomConfig (if any) into the lcf.RomInfo
// seam struct the linker-script writer consumes, translating overlay
// metadata into overlaygroup.Overlay values along the way.
func (p *Project) RomInfo() (lcf.RomInfo, error) {
	if p.Rom == nil {
		return lcf.RomInfo{}, nitroerr.Newf(nitroerr.External, "project has no rom_config loaded")
	}

	info := lcf.RomInfo{Arm9Base: p.Rom.Arm9.Base, Arm9End: p.Rom.Arm9.End}
	for _, a := range p.Rom.Autoloads {
		kind, ok := a.ResolvedKind()
		if !ok {
			return lcf.RomInfo{}, nitroerr.Newf(nitroerr.ConfigParse, "rom_config autoload has unknown kind %q", a.Kind)
		}
		info.Autoloads = append(info.Autoloads, lcf.AutoloadAddress{Kind: kind, Base: a.Base})
	}
	info.Overlays = utils.Map(p.Rom.Overlays, func(o config.RomOverlay) overlaygroup.Overlay {
		return overlaygroup.Overlay{ID: o.ID, Base: o.Base, Size: o.Size}
	})
	return info, nil
}
