package cmd

import (
	"os"

	"github.com/dsdecomp/nitrolink/pkg/lcf"
	"github.com/dsdecomp/nitrolink/pkg/logging"
	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/dsdecomp/nitrolink/pkg/project"
	"github.com/spf13/cobra"
)

var (
	lcfConfigPath  string
	lcfOutputPath  string
	lcfObjectsPath string
	lcfBuildPath   string
)

var lcfCmd = &cobra.Command{
	Use:   "lcf",
	Short: "Generate an MWCC/mwld linker command file and object list",
	Long: `lcf loads a project's config.yaml and rom_config and emits the
MEMORY, KEEP_SECTION and SECTIONS blocks the external mwld linker needs, plus the companion newline-separated object-list file.`,
	RunE: runLcf,
}

func init() {
	RootCmd.AddCommand(lcfCmd)

	lcfCmd.Flags().StringVarP(&lcfConfigPath, "config", "c", "config.yaml", "project config file")
	lcfCmd.Flags().StringVarP(&lcfOutputPath, "output", "l", "linker.lcf", "output linker command file")
	lcfCmd.Flags().StringVarP(&lcfObjectsPath, "objects", "o", "objects.txt", "output object-list file")
	lcfCmd.Flags().StringVarP(&lcfBuildPath, "build-path", "b", "build", "build directory object paths are resolved relative to")
}

func runLcf(cmd *cobra.Command, args []string) error {
	logger := logging.New(os.Stderr, verbose)

	proj, err := project.Load(lcfConfigPath)
	if err != nil {
		return err
	}

	rom, err := proj.RomInfo()
	if err != nil {
		return err
	}

	logger.Info("generating linker command file", "config", lcfConfigPath, "output", lcfOutputPath)

	writer := &lcf.Writer{
		Config:      proj.Config,
		Rom:         rom,
		ConfigDir:   proj.ConfigDir,
		BuildPath:   lcfBuildPath,
		DelinksPath: proj.Config.DelinksPath,
	}

	lcfFile, err := os.Create(lcfOutputPath)
	if err != nil {
		return nitroerr.New(nitroerr.External, err)
	}
	defer lcfFile.Close()

	objectsFile, err := os.Create(lcfObjectsPath)
	if err != nil {
		return nitroerr.New(nitroerr.External, err)
	}
	defer objectsFile.Close()

	return writer.Write(lcfFile, objectsFile)
}
