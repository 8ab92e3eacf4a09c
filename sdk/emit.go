package sdk

import (
	"bufio"
	"fmt"
	"io"

	"github.com/skdltmxn/uedump/internal/layout"
	"github.com/skdltmxn/uedump/memory"
)

// WriteStructs writes struct declarations. Function entry points are
// printed relative to moduleBase.
func WriteStructs(w io.Writer, structs []*layout.Struct, moduleBase memory.Address) error {
	bw := bufio.NewWriter(w)
	for _, s := range structs {
		fmt.Fprintf(bw, "// %s\n// Size: 0x%02x (Inherited: 0x%02x)\n%s {", s.FullName, s.Size, s.Inherited, s.Declaration())
		for _, m := range s.Members {
			fmt.Fprintf(bw, "\n\t%s; // 0x%02x(0x%02x)", m.Declaration(), m.Offset, m.Size)
		}
		if len(s.Functions) > 0 {
			bw.WriteString("\n")
			for i := range s.Functions {
				fn := &s.Functions[i]
				fmt.Fprintf(bw, "\n\t%s(%s); // %s // %s // @ game+0x%06x",
					fn.Declaration(), fn.ParamList(), fn.FullName, fn.Flags, fn.Offset(moduleBase))
			}
		}
		bw.WriteString("\n};\n\n")
	}
	return bw.Flush()
}

// WriteEnums writes enum declarations.
func WriteEnums(w io.Writer, enums []*layout.Enum) error {
	bw := bufio.NewWriter(w)
	for _, e := range enums {
		fmt.Fprintf(bw, "// %s\n%s {", e.FullName, e.Declaration())
		for _, m := range e.Members {
			fmt.Fprintf(bw, "\n\t%s,", m)
		}
		bw.WriteString("\n};\n\n")
	}
	return bw.Flush()
}
