package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skdltmxn/uedump/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile [name]",
	Short: "Print an offset profile",
	Long: `Print an offset profile as YAML.

Without a name the built-in profiles are listed. The printed YAML can be
edited and passed back with --profile-file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && profileFile == "" {
		for _, name := range profile.Names() {
			marker := ""
			if name == profile.DefaultName {
				marker = " (default)"
			}
			fmt.Fprintf(output, "%s%s\n", name, marker)
		}
		return nil
	}

	var (
		off *profile.Offsets
		err error
	)
	if len(args) > 0 {
		off, err = profile.Get(args[0])
	} else {
		off, err = profile.LoadFile(profileFile)
	}
	if err != nil {
		return err
	}
	return profile.Encode(output, off)
}
