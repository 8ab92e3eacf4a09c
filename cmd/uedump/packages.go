package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var packagesCmd = &cobra.Command{
	Use:   "packages <snapshot>",
	Short: "List packages in the snapshot",
	Long:  `List every package together with the number of objects it owns.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPackages,
}

func runPackages(cmd *cobra.Command, args []string) error {
	f, err := openSnapshot(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	pkgs := f.Packages()

	fmt.Fprintf(output, "%-18s %-8s %s\n", "ADDRESS", "OBJECTS", "NAME")
	fmt.Fprintf(output, "%s\n", strings.Repeat("-", 80))
	for _, p := range pkgs {
		fmt.Fprintf(output, "%-18s %-8d %s\n", p.Object.Addr(), p.Len(), p.Name)
	}

	fmt.Fprintf(output, "\nTotal: %d packages\n", len(pkgs))
	return nil
}
