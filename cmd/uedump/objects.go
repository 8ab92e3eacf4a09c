package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skdltmxn/uedump/internal/uobject"
)

var (
	objectsKind  string
	objectsLimit int
)

var objectsCmd = &cobra.Command{
	Use:   "objects <snapshot>",
	Short: "List objects in the snapshot",
	Long: `List objects from the global object array.

Use --kind to filter by kind (object, field, property, struct, enum,
function, scriptstruct, class).`,
	Args: cobra.ExactArgs(1),
	RunE: runObjects,
}

func init() {
	objectsCmd.Flags().StringVarP(&objectsKind, "kind", "k", "", "filter by object kind")
	objectsCmd.Flags().IntVarP(&objectsLimit, "limit", "n", 0, "limit number of objects shown (0 = unlimited)")
}

func runObjects(cmd *cobra.Command, args []string) error {
	f, err := openSnapshot(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	reg, err := f.Registry()
	if err != nil {
		return err
	}

	kindFilter := uobject.KindUnknown
	if objectsKind != "" {
		k, ok := uobject.ParseKind(objectsKind)
		if !ok || k == uobject.KindUnknown {
			return fmt.Errorf("unknown object kind: %s", objectsKind)
		}
		kindFilter = k
	}

	fmt.Fprintf(output, "%-8s %-18s %-12s %s\n", "INDEX", "ADDRESS", "KIND", "NAME")
	fmt.Fprintf(output, "%s\n", strings.Repeat("-", 80))

	count := 0
	for o := range f.Objects() {
		if kindFilter != uobject.KindUnknown && !reg.IsA(o, kindFilter) {
			continue
		}

		fmt.Fprintf(output, "%-8d %-18s %-12s %s\n", o.Index(), o.Addr(), reg.Classify(o), o.FullName())
		count++
		if objectsLimit > 0 && count >= objectsLimit {
			break
		}
	}

	fmt.Fprintf(output, "\nTotal: %d objects\n", count)
	return nil
}
