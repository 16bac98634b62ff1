package config

import (
	"fmt"
	"io"
	"os"

	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"gopkg.in/yaml.v3"
)

// OverlayListEntry is one entry of an armX_overlays.yaml file: the overlay's
// load geometry plus the raw-code file it was extracted to. Distinct from
// Overlay (a config.yaml module entry): this file is ROM-extraction output,
// consumed standalone by the `overlay` command rather than as part of a
// full project build.
type OverlayListEntry struct {
	ID       uint32 `yaml:"id"`
	Base     uint32 `yaml:"base"`
	Size     uint32 `yaml:"size"`
	FileName string `yaml:"file_name"`
}

// LoadOverlayList reads and parses an armX_overlays.yaml file from r.
func LoadOverlayList(r io.Reader) ([]OverlayListEntry, error) {
	var entries []OverlayListEntry
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil {
		return nil, nitroerr.New(nitroerr.External, fmt.Errorf("parsing overlay list yaml: %w", err))
	}
	return entries, nil
}

// LoadOverlayListFile opens path and parses it as an overlay list.
func LoadOverlayListFile(path string) ([]OverlayListEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nitroerr.New(nitroerr.External, fmt.Errorf("opening overlay list file %s: %w", path, err))
	}
	defer f.Close()
	return LoadOverlayList(f)
}
