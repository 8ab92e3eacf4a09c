// Package layout reconstructs declarations from reflected structs, classes,
// functions and enums.
package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skdltmxn/uedump/internal/uobject"
	"github.com/skdltmxn/uedump/memory"
)

// Errors returned by Builder.
var (
	ErrEmpty     = errors.New("layout: nothing to declare")
	ErrMalformed = errors.New("layout: malformed layout")
)

// Member is one line of a struct body: a property, a byte filler or a bit
// filler.
type Member struct {
	Type     string
	Name     string
	Offset   int32
	Size     int32
	ArrayDim int32 // rendered as [dim] when > 1, always for byte fillers
	BitWidth int32 // rendered as : width when > 0
	Padding  bool
}

// Declaration renders the member without the trailing semicolon.
func (m Member) Declaration() string {
	var sb strings.Builder
	sb.WriteString(m.Type)
	sb.WriteByte(' ')
	sb.WriteString(m.Name)
	if m.ArrayDim > 1 || m.Padding && m.BitWidth == 0 {
		fmt.Fprintf(&sb, "[%#x]", m.ArrayDim)
	}
	if m.BitWidth > 0 {
		fmt.Fprintf(&sb, " : %d", m.BitWidth)
	}
	return sb.String()
}

// Param is a function parameter.
type Param struct {
	Type     string
	Name     string
	ArrayDim int32
}

// Declaration renders the parameter; static arrays decay to pointers.
func (p Param) Declaration() string {
	if p.ArrayDim > 1 {
		return p.Type + "* " + p.Name
	}
	return p.Type + " " + p.Name
}

// Function is a reflected function.
type Function struct {
	FullName   string
	Name       string
	ReturnType string
	Params     []Param
	Flags      uobject.FunctionFlags
	Entry      memory.Address
}

// Declaration renders the return type and name.
func (f *Function) Declaration() string {
	return f.ReturnType + " " + f.Name
}

// ParamList renders the comma separated parameter list.
func (f *Function) ParamList() string {
	decls := make([]string, len(f.Params))
	for i, p := range f.Params {
		decls[i] = p.Declaration()
	}
	return strings.Join(decls, ", ")
}

// Offset returns the entry point relative to moduleBase, or zero when the
// entry lies below it.
func (f *Function) Offset(moduleBase memory.Address) uint64 {
	if f.Entry < moduleBase {
		return 0
	}
	return uint64(f.Entry - moduleBase)
}

// Struct is a reconstructed struct or class.
type Struct struct {
	Addr      memory.Address
	FullName  string
	Name      string
	Super     string
	Size      int32
	Inherited int32
	Members   []Member
	Functions []Function

	// Depends lists the structs that must be declared first: the super
	// and every struct held by value.
	Depends []memory.Address
}

// Declaration renders the struct head.
func (s *Struct) Declaration() string {
	if s.Super == "" {
		return "struct " + s.Name
	}
	return "struct " + s.Name + " : " + s.Super
}

// Enum is a reconstructed enum.
type Enum struct {
	Addr     memory.Address
	FullName string
	Name     string
	Members  []string
}

// Declaration renders the enum head.
func (e *Enum) Declaration() string {
	return "enum class " + e.Name + " : uint8_t"
}
