package config

import (
	"fmt"
	"io"
	"os"

	"github.com/dsdecomp/nitrolink/pkg/modkind"
	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"gopkg.in/yaml.v3"
)

// RomAutoload is one autoload's already-extracted load address, as recorded
// in a rom_config file.
type RomAutoload struct {
	Kind string `yaml:"kind"`
	Base uint32 `yaml:"base"`
}

// RomOverlay is one overlay's already-extracted load-slot geometry.
type RomOverlay struct {
	ID   uint32 `yaml:"id"`
	Base uint32 `yaml:"base"`
	Size uint32 `yaml:"size"`
}

// RomConfig is the already-unpacked ROM metadata the `rom_config` config
// option points to: ARM9 load bounds, autoload base addresses, and overlay
// load-slot geometry. Unpacking a ROM container itself (decryption,
// filesystem extraction) happens upstream; this struct only carries the
// small header facts the external `rom` collaborator has already derived,
// so `rom_config` is a config file consumed as-is from disk rather than a
// ROM image this tool parses.
type RomConfig struct {
	Arm9 struct {
		Base uint32 `yaml:"base"`
		End  uint32 `yaml:"end"`
	} `yaml:"arm9"`
	Autoloads []RomAutoload `yaml:"autoloads"`
	Overlays  []RomOverlay  `yaml:"overlays"`
}

// ResolvedKind parses a to a modkind.AutoloadKind.
func (a RomAutoload) ResolvedKind() (modkind.AutoloadKind, bool) {
	return modkind.ParseAutoloadKind(a.Kind)
}

// LoadRomConfig reads and parses a rom_config file from r.
func LoadRomConfig(r io.Reader) (*RomConfig, error) {
	var rc RomConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rc); err != nil {
		return nil, nitroerr.New(nitroerr.External, fmt.Errorf("parsing rom config yaml: %w", err))
	}
	return &rc, nil
}

// LoadRomConfigFile opens path and parses it as a rom_config file.
func LoadRomConfigFile(path string) (*RomConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nitroerr.New(nitroerr.External, fmt.Errorf("opening rom config file %s: %w", path, err))
	}
	defer f.Close()
	return LoadRomConfig(f)
}
