package uobject

import (
	"iter"
	"strings"

	"github.com/skdltmxn/uedump/memory"
)

// Object is a handle to a UObject.
type Object struct {
	s    *Space
	addr memory.Address
}

func (o Object) Addr() memory.Address { return o.addr }
func (o Object) Space() *Space        { return o.s }
func (o Object) IsNull() bool         { return o.addr.IsNull() }

// Index returns the object's slot in the global object array.
func (o Object) Index() uint32 {
	return o.s.Mem.U32(o.addr.Add(o.s.Off.UObject.Index))
}

// Class returns the object's runtime class.
func (o Object) Class() Class {
	return Class{o.s.structAt(o.s.Mem.Ptr(o.addr.Add(o.s.Off.UObject.Class)))}
}

// Outer returns the object containing this one.
func (o Object) Outer() Object {
	return o.s.Object(o.s.Mem.Ptr(o.addr.Add(o.s.Off.UObject.Outer)))
}

// Name returns the object's display name.
func (o Object) Name() string {
	return o.s.Names.Name(o.addr.Add(o.s.Off.UObject.Name))
}

// Package returns the outermost object on the outer chain, or the absent
// handle when the object has no outer.
func (o Object) Package() Object {
	pkg := o.s.Object(memory.Null)
	for outer := range Walk(o.Outer(), Object.Outer) {
		pkg = outer
	}
	return pkg
}

// FullName returns "<ClassName> <Outermost>.<...>.<Name>".
func (o Object) FullName() string {
	var outers []string
	for outer := range Walk(o.Outer(), Object.Outer) {
		outers = append(outers, outer.Name())
	}

	var sb strings.Builder
	sb.WriteString(o.Class().Name())
	sb.WriteByte(' ')
	for i := len(outers) - 1; i >= 0; i-- {
		sb.WriteString(outers[i])
		sb.WriteByte('.')
	}
	sb.WriteString(o.Name())
	return sb.String()
}

// Field is a handle to a UField, a node of a struct's children list.
type Field struct {
	Object
}

// Next returns the following field in the owner's children list.
func (f Field) Next() Field {
	return Field{f.s.Object(f.s.Mem.Ptr(f.addr.Add(f.s.Off.UField.Next)))}
}

// Struct is a handle to a UStruct.
type Struct struct {
	Field
}

func (s *Space) structAt(addr memory.Address) Struct {
	return Struct{Field{s.Object(addr)}}
}

// Super returns the struct this one derives from.
func (st Struct) Super() Struct {
	return st.s.structAt(st.s.Mem.Ptr(st.addr.Add(st.s.Off.UStruct.SuperStruct)))
}

// Children returns the head of the children list (functions and other
// UFields).
func (st Struct) Children() Field {
	return Field{st.s.Object(st.s.Mem.Ptr(st.addr.Add(st.s.Off.UStruct.Children)))}
}

// ChildProperties returns the head of the property chain.
func (st Struct) ChildProperties() Property {
	return st.s.Property(st.s.Mem.Ptr(st.addr.Add(st.s.Off.UStruct.ChildProperties)))
}

// Size returns the declared size of the struct in bytes.
func (st Struct) Size() int32 {
	return st.s.Mem.I32(st.addr.Add(st.s.Off.UStruct.PropertiesSize))
}

// Supers yields the struct itself followed by its ancestors.
func (st Struct) Supers() iter.Seq[Struct] {
	return Walk(st, Struct.Super)
}

// Fields yields the children list in order.
func (st Struct) Fields() iter.Seq[Field] {
	return Walk(st.Children(), Field.Next)
}

// Properties yields the property chain in declaration order.
func (st Struct) Properties() iter.Seq[Property] {
	return Walk(st.ChildProperties(), Property.Next)
}

// Class is a handle to a UClass.
type Class struct {
	Struct
}

// Function is a handle to a UFunction.
type Function struct {
	Struct
}

// Flags returns the function flags.
func (fn Function) Flags() FunctionFlags {
	return FunctionFlags(fn.s.Mem.U32(fn.addr.Add(fn.s.Off.UFunction.Flags)))
}

// Entry returns the address of the native implementation.
func (fn Function) Entry() memory.Address {
	return fn.s.Mem.Ptr(fn.addr.Add(fn.s.Off.UFunction.FuncPtr))
}

// MaxEnumNames bounds the name array of an enum.
const MaxEnumNames = 1 << 16

// Enum is a handle to a UEnum.
type Enum struct {
	Field
}

// NameArray locates an enum's (name, value) records.
type NameArray struct {
	Data  memory.Address
	Count int
}

// Names returns the location of the enum's name records. Negative or
// oversized counts are clamped.
func (e Enum) Names() NameArray {
	at := e.addr.Add(e.s.Off.UEnum.Names)
	count := int(e.s.Mem.I32(at.Add(8)))
	if count < 0 {
		count = 0
	}
	if count > MaxEnumNames {
		count = MaxEnumNames
	}
	return NameArray{Data: e.s.Mem.Ptr(at), Count: count}
}

// MemberNames returns the display name of every record.
func (e Enum) MemberNames() []string {
	arr := e.Names()
	if arr.Data.IsNull() {
		return nil
	}
	stride := e.s.Off.EnumNameStride()
	out := make([]string, 0, arr.Count)
	for i := 0; i < arr.Count; i++ {
		out = append(out, e.s.Names.Name(arr.Data.Add(uint32(i)*stride)))
	}
	return out
}
