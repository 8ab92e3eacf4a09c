package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skdltmxn/uedump/internal/layout"
	"github.com/skdltmxn/uedump/internal/uobject"
	"github.com/skdltmxn/uedump/sdk"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <snapshot> <query>",
	Short: "Look up an object by full name or address",
	Long: `Look up an object in a snapshot.

Query can be:
  - Full name: lookup game.snap "Class Engine.Actor"
  - Address: lookup game.snap 0x2000001a0

Classes, script structs and enums are printed with their reconstructed
declaration.`,
	Args: cobra.ExactArgs(2),
	RunE: runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	query := args[1]

	f, err := openSnapshot(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var o uobject.Object
	if strings.HasPrefix(query, "0x") || strings.HasPrefix(query, "0X") {
		addr, err := parseAddress(query)
		if err != nil {
			return fmt.Errorf("invalid address: %s", query)
		}
		o = f.Object(addr)
	} else {
		o, err = f.Lookup(query)
		if err != nil {
			return err
		}
	}

	return printObjectDetail(f, o)
}

func printObjectDetail(f *sdk.File, o uobject.Object) error {
	reg, err := f.Registry()
	if err != nil {
		return err
	}
	b, err := f.Builder()
	if err != nil {
		return err
	}

	kind := reg.Classify(o)
	fmt.Fprintf(output, "Object:\n")
	fmt.Fprintf(output, "  Name: %s\n", o.FullName())
	fmt.Fprintf(output, "  Address: %s\n", o.Addr())
	fmt.Fprintf(output, "  Index: %d\n", o.Index())
	fmt.Fprintf(output, "  Kind: %s\n", kind)
	fmt.Fprintf(output, "  Class: %s\n", o.Class().FullName())
	if outer := o.Outer(); !outer.IsNull() {
		fmt.Fprintf(output, "  Outer: %s\n", outer.FullName())
	}
	if pkg := o.Package(); !pkg.IsNull() {
		fmt.Fprintf(output, "  Package: %s\n", pkg.Name())
	}

	switch kind {
	case uobject.KindClass, uobject.KindScriptStruct, uobject.KindStruct:
		st, _ := reg.AsStruct(o)
		fmt.Fprintf(output, "  CppName: %s\n", reg.CppName(o))
		fmt.Fprintf(output, "  Size: 0x%X\n", st.Size())
		decl, err := b.Struct(st)
		if err != nil {
			fmt.Fprintf(output, "  Layout: %v\n", err)
			break
		}
		fmt.Fprintln(output)
		return sdk.WriteStructs(output, []*layout.Struct{decl}, f.Roots().ModuleBase)

	case uobject.KindFunction:
		fn, _ := reg.AsFunction(o)
		sig := b.Function(fn)
		fmt.Fprintf(output, "  Signature: %s(%s)\n", sig.Declaration(), sig.ParamList())
		fmt.Fprintf(output, "  Flags: %s\n", sig.Flags)
		fmt.Fprintf(output, "  Entry: game+0x%06x\n", sig.Offset(f.Roots().ModuleBase))

	case uobject.KindEnum:
		en, _ := reg.AsEnum(o)
		decl, err := b.Enum(en)
		if err != nil {
			fmt.Fprintf(output, "  Members: %v\n", err)
			break
		}
		fmt.Fprintln(output)
		return sdk.WriteEnums(output, []*layout.Enum{decl})
	}

	fmt.Fprintln(output)
	return nil
}
