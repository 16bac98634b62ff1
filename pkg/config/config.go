// Package config loads the YAML project configuration and its companion
// text-format files (delinks, symbols, xrefs). Parsing these files from
// disk is the one place this project's otherwise file-I/O-free core
// touches the filesystem and a YAML library directly; the algorithmic
// packages (section/symbol/reloc/disasm/lcf) only ever see the already
// decoded structures.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/dsdecomp/nitrolink/pkg/modkind"
	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"gopkg.in/yaml.v3"
)

// Module is one module entry: the main ARM9 module, an autoload, or an
// overlay.
type Module struct {
	Name    string `yaml:"name"`
	Delinks string `yaml:"delinks"`
	Xrefs   string `yaml:"xrefs"`
	Object  string `yaml:"object"`
}

// Autoload is an autoload module entry, adding its ITCM/DTCM kind.
type Autoload struct {
	Module Module `yaml:",inline"`
	Kind   string `yaml:"kind"`
}

// ResolvedKind parses Kind into a modkind.AutoloadKind.
func (a Autoload) ResolvedKind() (modkind.AutoloadKind, bool) {
	return modkind.ParseAutoloadKind(a.Kind)
}

// Overlay is an overlay module entry, adding its numeric id.
type Overlay struct {
	Module Module `yaml:",inline"`
	ID     uint32 `yaml:"id"`
}

// Config is the top-level project configuration file.
type Config struct {
	RomConfig   string     `yaml:"rom_config"`
	BuildPath   string     `yaml:"build_path"`
	DelinksPath string     `yaml:"delinks_path"`
	MainModule  Module     `yaml:"main_module"`
	Autoloads   []Autoload `yaml:"autoloads"`
	Overlays    []Overlay  `yaml:"overlays"`
}

// Load reads and parses a project configuration file from r.
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, nitroerr.New(nitroerr.External, fmt.Errorf("parsing config yaml: %w", err))
	}
	return &cfg, nil
}

// LoadFile opens path and parses it as a project configuration file,
// closing the file on every exit path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nitroerr.New(nitroerr.External, fmt.Errorf("opening config file %s: %w", path, err))
	}
	defer f.Close()
	return Load(f)
}
