package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/skdltmxn/uedump/internal/layout"
	"github.com/skdltmxn/uedump/memory"
	"github.com/skdltmxn/uedump/sdk"
)

var (
	dumpFormat   string
	dumpDir      string
	dumpPackages []string
	dumpJobs     int
)

var dumpCmd = &cobra.Command{
	Use:   "dump <snapshot>",
	Short: "Reconstruct and write every package",
	Long: `Reconstruct the classes, script structs and enums of every package.

Supported formats:
  - text: one <Package>_classes.h and <Package>_struct.h per package,
          written to --dir (default)
  - json: JSON document written to the output`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "text", "output format (text, json)")
	dumpCmd.Flags().StringVarP(&dumpDir, "dir", "d", "SDK", "directory for text output")
	dumpCmd.Flags().StringSliceVar(&dumpPackages, "package", nil, "only dump the named packages")
	dumpCmd.Flags().IntVarP(&dumpJobs, "jobs", "j", runtime.NumCPU(), "number of packages processed concurrently")
}

func runDump(cmd *cobra.Command, args []string) error {
	if dumpFormat != "text" && dumpFormat != "json" {
		return fmt.Errorf("unknown format: %s", dumpFormat)
	}

	f, err := openSnapshot(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var selected []*sdk.Package
	if len(dumpPackages) > 0 {
		for _, p := range f.Packages() {
			if slices.Contains(dumpPackages, p.Name) {
				selected = append(selected, p)
			}
		}
		if len(selected) == 0 {
			return fmt.Errorf("%w: %v", sdk.ErrPackageNotFound, dumpPackages)
		}
	}

	pkgs, err := f.Dump(cmd.Context(), dumpJobs, selected...)
	if err != nil {
		return fmt.Errorf("failed to dump: %w", err)
	}

	base := f.Roots().ModuleBase
	switch dumpFormat {
	case "json":
		return dumpJSON(pkgs, base)
	default:
		return dumpText(pkgs, base)
	}
}

func dumpText(pkgs []*sdk.Package, base memory.Address) error {
	if err := os.MkdirAll(dumpDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	classes, structs, enums, dropped := 0, 0, 0, 0
	for _, p := range pkgs {
		if err := p.Save(dumpDir, base); err != nil {
			return err
		}
		classes += len(p.Classes)
		structs += len(p.Structs)
		enums += len(p.Enums)
		dropped += p.Dropped
	}

	fmt.Fprintf(output, "Packages: %d\n", len(pkgs))
	fmt.Fprintf(output, "Classes: %d\n", classes)
	fmt.Fprintf(output, "Structs: %d\n", structs)
	fmt.Fprintf(output, "Enums: %d\n", enums)
	fmt.Fprintf(output, "Dropped: %d\n", dropped)
	fmt.Fprintf(output, "Written to: %s\n", dumpDir)
	return nil
}

type PackageDump struct {
	Name    string       `json:"name"`
	Classes []StructDump `json:"classes,omitempty"`
	Structs []StructDump `json:"structs,omitempty"`
	Enums   []EnumDump   `json:"enums,omitempty"`
	Dropped int          `json:"dropped,omitempty"`
}

type StructDump struct {
	FullName  string         `json:"full_name"`
	Name      string         `json:"name"`
	Super     string         `json:"super,omitempty"`
	Size      int32          `json:"size"`
	Inherited int32          `json:"inherited"`
	Members   []MemberDump   `json:"members"`
	Functions []FunctionDump `json:"functions,omitempty"`
}

type MemberDump struct {
	Declaration string `json:"declaration"`
	Offset      int32  `json:"offset"`
	Size        int32  `json:"size"`
	Padding     bool   `json:"padding,omitempty"`
}

type FunctionDump struct {
	FullName    string `json:"full_name"`
	Declaration string `json:"declaration"`
	Params      string `json:"params"`
	Flags       string `json:"flags"`
	Offset      uint64 `json:"offset"`
}

type EnumDump struct {
	FullName string   `json:"full_name"`
	Name     string   `json:"name"`
	Members  []string `json:"members"`
}

func dumpJSON(pkgs []*sdk.Package, base memory.Address) error {
	dump := make([]PackageDump, 0, len(pkgs))
	for _, p := range pkgs {
		pd := PackageDump{Name: p.Name, Dropped: p.Dropped}
		for _, s := range p.Classes {
			pd.Classes = append(pd.Classes, structDump(s, base))
		}
		for _, s := range p.Structs {
			pd.Structs = append(pd.Structs, structDump(s, base))
		}
		for _, e := range p.Enums {
			pd.Enums = append(pd.Enums, EnumDump{FullName: e.FullName, Name: e.Name, Members: e.Members})
		}
		dump = append(dump, pd)
	}

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(dump)
}

func structDump(s *layout.Struct, base memory.Address) StructDump {
	sd := StructDump{
		FullName:  s.FullName,
		Name:      s.Name,
		Super:     s.Super,
		Size:      s.Size,
		Inherited: s.Inherited,
		Members:   make([]MemberDump, len(s.Members)),
	}
	for i, m := range s.Members {
		sd.Members[i] = MemberDump{
			Declaration: m.Declaration(),
			Offset:      m.Offset,
			Size:        m.Size,
			Padding:     m.Padding,
		}
	}
	for i := range s.Functions {
		fn := &s.Functions[i]
		sd.Functions = append(sd.Functions, FunctionDump{
			FullName:    fn.FullName,
			Declaration: fn.Declaration(),
			Params:      fn.ParamList(),
			Flags:       fn.Flags.String(),
			Offset:      fn.Offset(base),
		})
	}
	return sd
}
