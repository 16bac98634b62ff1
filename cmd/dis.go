package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dsdecomp/nitrolink/pkg/disasm"
	"github.com/dsdecomp/nitrolink/pkg/logging"
	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/project"
	"github.com/dsdecomp/nitrolink/pkg/resolve"
	"github.com/spf13/cobra"
)

var (
	disConfigPath string
	disAsmDir     string
)

var disCmd = &cobra.Command{
	Use:   "dis",
	Short: "Disassemble every module of a project into assembly source",
	Long: `dis loads a project's config.yaml and every module it references
(delinks, symbols, xrefs, raw code object) and writes one .s file per
module under the given output directory, resolving every code and data
word to a symbolic name where the resolution algorithm finds one.`,
	RunE: runDis,
}

func init() {
	RootCmd.AddCommand(disCmd)

	disCmd.Flags().StringVarP(&disConfigPath, "config", "c", "config.yaml", "project config file")
	disCmd.Flags().StringVarP(&disAsmDir, "asm-dir", "a", "asm", "output directory for disassembled module source")
}

func runDis(cmd *cobra.Command, args []string) error {
	logger := logging.New(os.Stderr, verbose)

	if InstructionDecoder == nil {
		return nitroerr.Newf(nitroerr.External, "no instruction decoder is linked into this build; dis has nothing to decode ARM9/Thumb machine code with")
	}

	proj, err := project.Load(disConfigPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(disAsmDir, 0o755); err != nil {
		return nitroerr.New(nitroerr.External, err)
	}

	for _, m := range proj.Registry.All() {
		logger.Info("disassembling module", "module", m.Kind.String())

		lookup := &resolve.Lookup{
			ModuleKind:  m.Kind,
			Local:       m.Symbols,
			Relocations: m.Relocations,
			Registry:    proj.Registry,
			Logger:      logger,
		}
		emitter := &disasm.Emitter{Module: m, Lookup: lookup, Decoder: InstructionDecoder}

		outPath := filepath.Join(disAsmDir, fmt.Sprintf("%s.s", m.Name))
		f, err := os.Create(outPath)
		if err != nil {
			return nitroerr.New(nitroerr.External, err)
		}
		emitErr := emitter.Emit(f)
		closeErr := f.Close()
		if emitErr != nil {
			return emitErr
		}
		if closeErr != nil {
			return nitroerr.New(nitroerr.External, closeErr)
		}
	}

	return nil
}
