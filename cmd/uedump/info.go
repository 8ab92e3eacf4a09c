package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <snapshot>",
	Short: "Display snapshot information",
	Long:  `Display general information about a snapshot including its entry points, profile and object count.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := openSnapshot(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info := f.Info()
	fmt.Fprintf(output, "Snapshot: %s\n", path)
	fmt.Fprintf(output, "Profile: %s\n", info.Profile)
	fmt.Fprintf(output, "Module Base: %s\n", info.ModuleBase)
	fmt.Fprintf(output, "Name Pool: %s\n", info.NamePool)
	fmt.Fprintf(output, "Object Array: %s\n", info.ObjectArray)
	fmt.Fprintf(output, "Regions: %d\n", info.Regions)
	fmt.Fprintf(output, "Objects: %d\n", info.Objects)

	if _, err := f.Registry(); err != nil {
		fmt.Fprintf(output, "Registry: %v\n", err)
	} else {
		fmt.Fprintf(output, "Packages: %d\n", len(f.Packages()))
	}

	fmt.Fprintf(output, "Faulted Reads: %d\n", f.Info().Faults)
	return nil
}
