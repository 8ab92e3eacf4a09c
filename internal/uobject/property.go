package uobject

import (
	"github.com/skdltmxn/uedump/memory"
)

// FField is a handle to an FField, a node of a struct's property chain.
// Unlike UObjects, FFields carry a field-class record instead of a
// runtime class.
type FField struct {
	s    *Space
	addr memory.Address
}

func (f FField) Addr() memory.Address { return f.addr }
func (f FField) Space() *Space        { return f.s }
func (f FField) IsNull() bool         { return f.addr.IsNull() }

// Class returns the field-class record.
func (f FField) Class() FieldClass {
	return FieldClass{s: f.s, addr: f.s.Mem.Ptr(f.addr.Add(f.s.Off.FField.Class))}
}

// ClassName returns the display name of the field class, for example
// "IntProperty".
func (f FField) ClassName() string {
	return f.Class().Name()
}

// Name returns the field's display name.
func (f FField) Name() string {
	return f.s.Names.Name(f.addr.Add(f.s.Off.FField.Name))
}

// FieldClass is a handle to an FFieldClass.
type FieldClass struct {
	s    *Space
	addr memory.Address
}

func (c FieldClass) Addr() memory.Address { return c.addr }
func (c FieldClass) Space() *Space        { return c.s }

// Name returns the field class name. An absent class has no name.
func (c FieldClass) Name() string {
	if c.addr.IsNull() {
		return ""
	}
	return c.s.Names.Name(c.addr.Add(c.s.Off.FFieldClass.Name))
}

// Property is a handle to an FProperty.
type Property struct {
	FField
}

// Next returns the following property in the chain.
func (p Property) Next() Property {
	return p.s.Property(p.s.Mem.Ptr(p.addr.Add(p.s.Off.FField.Next)))
}

// ArrayDim returns the static array dimension (1 for scalars).
func (p Property) ArrayDim() int32 {
	return p.s.Mem.I32(p.addr.Add(p.s.Off.FProperty.ArrayDim))
}

// ElementSize returns the size of one element in bytes.
func (p Property) ElementSize() int32 {
	return p.s.Mem.I32(p.addr.Add(p.s.Off.FProperty.ElementSize))
}

// Offset returns the byte offset of the property inside its owner.
func (p Property) Offset() int32 {
	return p.s.Mem.I32(p.addr.Add(p.s.Off.FProperty.Offset))
}

// Flags returns the property flags.
func (p Property) Flags() PropertyFlags {
	return PropertyFlags(p.s.Mem.U64(p.addr.Add(p.s.Off.FProperty.PropertyFlags)))
}

func (p Property) is(names ...string) bool {
	if p.IsNull() {
		return false
	}
	class := p.ClassName()
	for _, n := range names {
		if class == n {
			return true
		}
	}
	return false
}

func (p Property) ptr(off uint32) memory.Address {
	return p.s.Mem.Ptr(p.addr.Add(off))
}

// BoolProperty is a view of a BoolProperty.
type BoolProperty struct {
	Property
}

// AsBool returns the bool view if p is a BoolProperty.
func (p Property) AsBool() (BoolProperty, bool) {
	return BoolProperty{p}, p.is("BoolProperty")
}

func (p BoolProperty) FieldSize() uint8  { return p.s.Mem.U8(p.addr.Add(p.s.Off.FBoolProperty.FieldSize)) }
func (p BoolProperty) ByteOffset() uint8 { return p.s.Mem.U8(p.addr.Add(p.s.Off.FBoolProperty.ByteOffset)) }
func (p BoolProperty) ByteMask() uint8   { return p.s.Mem.U8(p.addr.Add(p.s.Off.FBoolProperty.ByteMask)) }
func (p BoolProperty) FieldMask() uint8  { return p.s.Mem.U8(p.addr.Add(p.s.Off.FBoolProperty.FieldMask)) }

// IsNativeBool reports whether the property occupies a whole byte.
func (p BoolProperty) IsNativeBool() bool {
	return p.FieldMask() == 0xFF
}

// ByteProperty is a view of a ByteProperty.
type ByteProperty struct {
	Property
}

// AsByte returns the byte view if p is a ByteProperty.
func (p Property) AsByte() (ByteProperty, bool) {
	return ByteProperty{p}, p.is("ByteProperty")
}

// Enum returns the enum the byte holds, if any.
func (p ByteProperty) Enum() Enum {
	return Enum{Field{p.s.Object(p.ptr(p.s.Off.FByteProperty.Enum))}}
}

// ObjectProperty is a view of any object reference property.
type ObjectProperty struct {
	Property
}

// AsObject returns the object-reference view if p references objects.
func (p Property) AsObject() (ObjectProperty, bool) {
	return ObjectProperty{p}, p.is("ObjectProperty", "SoftObjectProperty", "WeakObjectProperty",
		"LazyObjectProperty", "ClassProperty", "SoftClassProperty")
}

// PropertyClass returns the class of the referenced objects.
func (p ObjectProperty) PropertyClass() Class {
	return Class{p.s.structAt(p.ptr(p.s.Off.FObjectPropertyBase.PropertyClass))}
}

// ClassProperty is a view of a ClassProperty or SoftClassProperty.
type ClassProperty struct {
	ObjectProperty
}

// AsClass returns the class-reference view if p references classes.
func (p Property) AsClass() (ClassProperty, bool) {
	return ClassProperty{ObjectProperty{p}}, p.is("ClassProperty", "SoftClassProperty")
}

// MetaClass returns the base class of the referenced classes.
func (p ClassProperty) MetaClass() Class {
	return Class{p.s.structAt(p.ptr(p.s.Off.FClassProperty.MetaClass))}
}

// InterfaceProperty is a view of an InterfaceProperty.
type InterfaceProperty struct {
	Property
}

// AsInterface returns the interface view if p is an InterfaceProperty.
func (p Property) AsInterface() (InterfaceProperty, bool) {
	return InterfaceProperty{p}, p.is("InterfaceProperty")
}

// InterfaceClass returns the referenced interface class.
func (p InterfaceProperty) InterfaceClass() Class {
	return Class{p.s.structAt(p.ptr(p.s.Off.FInterfaceProperty.InterfaceClass))}
}

// StructProperty is a view of a StructProperty.
type StructProperty struct {
	Property
}

// AsStruct returns the struct view if p is a StructProperty.
func (p Property) AsStruct() (StructProperty, bool) {
	return StructProperty{p}, p.is("StructProperty")
}

// Struct returns the struct held by value.
func (p StructProperty) Struct() Struct {
	return p.s.structAt(p.ptr(p.s.Off.FStructProperty.Struct))
}

// EnumProperty is a view of an EnumProperty.
type EnumProperty struct {
	Property
}

// AsEnum returns the enum view if p is an EnumProperty.
func (p Property) AsEnum() (EnumProperty, bool) {
	return EnumProperty{p}, p.is("EnumProperty")
}

// Enum returns the enum the property holds.
func (p EnumProperty) Enum() Enum {
	return Enum{Field{p.s.Object(p.ptr(p.s.Off.FEnumProperty.Enum))}}
}

// ArrayProperty is a view of an ArrayProperty.
type ArrayProperty struct {
	Property
}

// AsArray returns the array view if p is an ArrayProperty.
func (p Property) AsArray() (ArrayProperty, bool) {
	return ArrayProperty{p}, p.is("ArrayProperty")
}

// Inner returns the element property.
func (p ArrayProperty) Inner() Property {
	return p.s.Property(p.ptr(p.s.Off.FArrayProperty.Inner))
}

// SetProperty is a view of a SetProperty.
type SetProperty struct {
	Property
}

// AsSet returns the set view if p is a SetProperty.
func (p Property) AsSet() (SetProperty, bool) {
	return SetProperty{p}, p.is("SetProperty")
}

// Element returns the element property.
func (p SetProperty) Element() Property {
	return p.s.Property(p.ptr(p.s.Off.FSetProperty.ElementProp))
}

// MapProperty is a view of a MapProperty.
type MapProperty struct {
	Property
}

// AsMap returns the map view if p is a MapProperty.
func (p Property) AsMap() (MapProperty, bool) {
	return MapProperty{p}, p.is("MapProperty")
}

// Key returns the key property.
func (p MapProperty) Key() Property {
	return p.s.Property(p.ptr(p.s.Off.FMapProperty.KeyProp))
}

// Value returns the value property.
func (p MapProperty) Value() Property {
	return p.s.Property(p.ptr(p.s.Off.FMapProperty.ValueProp))
}
