// Package cmd implements the nitrolink CLI: three leaf subcommands (dis,
// lcf, overlay), each registering its flags as package-level variables
// in init().
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/dsdecomp/nitrolink/pkg/decoder"
	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var verbose bool

// RootCmd is the base command when nitrolink is called without a
// subcommand.
var RootCmd = &cobra.Command{
	Use:   "nitrolink",
	Short: "A decompilation toolkit for Nintendo DS ARM9 ROMs",
	Long: `nitrolink turns a ds-decomp-style project configuration into
disassembled module source, MWCC/mwld linker scripts, and standalone
overlay disassembly.

This CLI is the entry point for the nitrolink toolchain: dis emits a
module's disassembly, lcf emits its linker command file and object list,
and overlay disassembles a single overlay outside of a full project.`,
}

// InstructionDecoder is the ARM/Thumb decoder every dis/overlay run drives.
// Decoding real machine code is handled by an external, already-solved
// collaborator; nitrolink ships no implementation, so this seam is nil
// until a caller assigns one before RootCmd.Execute, e.g. from a wrapper
// main that imports a real decoder package. dis/overlay fail fast with a
// clear error rather than panicking if it is never set.
var InstructionDecoder decoder.Decoder

// Execute runs RootCmd, translating any returned nitroerr.Error into its
// kind's CLI exit code (never panicking out of main). The backtrace every
// nitroerr.Error captures at creation is printed under the message, so a
// failure report always locates the code that raised it.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var nerr *nitroerr.Error
		if errors.As(err, &nerr) {
			fmt.Fprint(os.Stderr, nerr.Backtrace())
		}
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	for _, kind := range []nitroerr.Kind{nitroerr.ConfigParse, nitroerr.SectionInvariant, nitroerr.SymbolResolution, nitroerr.DataEmission, nitroerr.External} {
		if nitroerr.Is(err, kind) {
			return kind.ExitCode()
		}
	}
	return 1
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) logging")
	cobra.OnInitialize(initConfig)
}

// initConfig wires Viper's config discovery: an explicit --config flag
// wins, otherwise Viper searches the
// current directory for "config.yaml" (nitrolink's project file), with
// environment variable overlay for any value not present in the file.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
