package cmd

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/dsdecomp/nitrolink/pkg/config"
	"github.com/dsdecomp/nitrolink/pkg/disasm"
	"github.com/dsdecomp/nitrolink/pkg/logging"
	"github.com/dsdecomp/nitrolink/pkg/modkind"
	"github.com/dsdecomp/nitrolink/pkg/module"
	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/resolve"
	"github.com/dsdecomp/nitrolink/pkg/section"
	"github.com/dsdecomp/nitrolink/pkg/symbol"
	"github.com/spf13/cobra"
)

var (
	overlayHeaderPath string
	overlayListPath   string
	overlayID         uint32
	overlayStart      string
	overlayEnd        string
	overlayCount      int
	overlaySymbols    string
)

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Disassemble a single overlay outside of a full project build",
	Long: `overlay finds the requested ID in an overlay list, reads its raw
code bytes and pre-existing symbols.txt, and prints each of its functions'
disassembly to stdout, optionally bounded to an address range or function
count.`,
	RunE: runOverlay,
}

func init() {
	RootCmd.AddCommand(overlayCmd)

	overlayCmd.Flags().StringVarP(&overlayHeaderPath, "header", "H", "header.yaml", "path to header.yaml")
	overlayCmd.Flags().StringVarP(&overlayListPath, "overlay-list", "l", "", "path to armX_overlays.yaml")
	overlayCmd.Flags().Uint32VarP(&overlayID, "overlay-id", "i", 0, "ID of overlay to disassemble")
	overlayCmd.Flags().StringVarP(&overlayStart, "start-address", "s", "", "address to start disassembling from")
	overlayCmd.Flags().StringVarP(&overlayEnd, "end-address", "e", "", "address to end disassembling")
	overlayCmd.Flags().IntVarP(&overlayCount, "num-functions", "n", 0, "number of functions to disassemble (0 = all)")
	overlayCmd.Flags().StringVarP(&overlaySymbols, "symbols", "S", "symbols.txt", "path to symbols.txt")
	overlayCmd.MarkFlagRequired("overlay-list")
}

func runOverlay(cmd *cobra.Command, args []string) error {
	logger := logging.New(os.Stderr, verbose)

	if InstructionDecoder == nil {
		return nitroerr.Newf(nitroerr.External, "no instruction decoder is linked into this build; overlay has nothing to decode ARM9/Thumb machine code with")
	}

	// header.yaml carries the ROM version this overlay was extracted from;
	// ROM header parsing itself is out of scope here, so this only confirms
	// the file the caller pointed at actually exists.
	if _, err := os.Stat(overlayHeaderPath); err != nil {
		return nitroerr.New(nitroerr.External, err)
	}

	entries, err := config.LoadOverlayListFile(overlayListPath)
	if err != nil {
		return err
	}

	var entry *config.OverlayListEntry
	for i := range entries {
		if entries[i].ID == overlayID {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return nitroerr.Newf(nitroerr.ConfigParse, "overlay ID %d not found in %s", overlayID, overlayListPath)
	}

	dataPath := filepath.Join(filepath.Dir(overlayListPath), entry.FileName)
	code, err := os.ReadFile(dataPath)
	if err != nil {
		return nitroerr.New(nitroerr.External, err)
	}

	symbols, err := config.LoadSymbols(overlaySymbols)
	if err != nil {
		return err
	}

	sections := section.NewSections()
	sec, err := section.New(".text", section.Code, entry.Base, entry.Base+entry.Size, 4)
	if err != nil {
		return err
	}
	if err := sections.Add(sec); err != nil {
		return err
	}

	kind := modkind.Overlay(entry.ID)
	m := module.New(kind.String(), kind, sections, code)
	m.Symbols = symbols

	registry := module.NewRegistry()
	registry.Add(m)

	lookup := &resolve.Lookup{
		ModuleKind:  m.Kind,
		Local:       m.Symbols,
		Relocations: m.Relocations,
		Registry:    registry,
		Logger:      logger,
	}
	emitter := &disasm.Emitter{Module: m, Lookup: lookup, Decoder: InstructionDecoder}

	start, err := parseOptionalAddress(overlayStart)
	if err != nil {
		return err
	}
	end, err := parseOptionalAddress(overlayEnd)
	if err != nil {
		return err
	}

	printed := 0
	for _, sym := range m.Symbols.All() {
		if _, ok := sym.Kind.(symbol.Function); !ok {
			continue
		}
		if start != nil && sym.Addr < *start {
			continue
		}
		if end != nil && sym.Addr >= *end {
			continue
		}
		if overlayCount > 0 && printed >= overlayCount {
			break
		}

		if err := emitter.RenderFunction(os.Stdout, sym); err != nil {
			return err
		}
		printed++
	}

	return nil
}

func parseOptionalAddress(s string) (*uint32, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return nil, nitroerr.Newf(nitroerr.ConfigParse, "invalid address %q: %v", s, err)
	}
	out := uint32(v)
	return &out, nil
}
