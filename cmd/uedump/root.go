package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/skdltmxn/uedump/internal/logger"
	"github.com/skdltmxn/uedump/memory"
	"github.com/skdltmxn/uedump/profile"
	"github.com/skdltmxn/uedump/sdk"
)

var (
	outputFile  string
	output      io.Writer
	profileName string
	profileFile string
	logLevel    string
	moduleBase  string
)

var rootCmd = &cobra.Command{
	Use:   "uedump",
	Short: "Unreal Engine reflection dumper",
	Long: `uedump reads a memory snapshot of an Unreal Engine process and
reconstructs the engine's reflection data: packages, classes, script
structs, enums and functions.

It can list objects, look them up by full name or address, and write
C++ declarations with the reconstructed memory layout of every type.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !slices.Contains(logger.Levels, logger.LogLevel(logLevel)) {
			return fmt.Errorf("unknown log level: %s", logLevel)
		}
		logger.SetupLogger(os.Stderr, logger.LogLevel(logLevel))

		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			output = f
		} else {
			output = os.Stdout
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if f, ok := output.(*os.File); ok && f != os.Stdout {
			f.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "offset profile (default: the one recorded in the snapshot)")
	rootCmd.PersistentFlags().StringVar(&profileFile, "profile-file", "", "load the offset profile from a YAML file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", string(logger.LogLevelWarn), "log level (debug, info, warn, error, none)")
	rootCmd.PersistentFlags().StringVar(&moduleBase, "module-base", "", "override the module base address (hex)")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(objectsCmd)
	rootCmd.AddCommand(packagesCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(profileCmd)
}

// selectedProfile returns the profile chosen on the command line, or nil to
// use the one recorded in the snapshot.
func selectedProfile() (*profile.Offsets, error) {
	switch {
	case profileFile != "":
		return profile.LoadFile(profileFile)
	case profileName != "":
		return profile.Get(profileName)
	}
	return nil, nil
}

func openSnapshot(path string) (*sdk.File, error) {
	var opts []sdk.Option

	off, err := selectedProfile()
	if err != nil {
		return nil, err
	}
	if off != nil {
		opts = append(opts, sdk.WithProfile(off))
	}

	if moduleBase != "" {
		base, err := parseAddress(moduleBase)
		if err != nil {
			return nil, fmt.Errorf("invalid module base: %s", moduleBase)
		}
		opts = append(opts, sdk.WithModuleBase(base))
	}

	f, err := sdk.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	return f, nil
}

func parseAddress(s string) (memory.Address, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"), 16, 64)
	if err != nil {
		return memory.Null, err
	}
	return memory.Address(v), nil
}
