// Package proptype resolves the C++ type expression of a reflected property.
package proptype

// Tag identifies the semantic kind of a property, keyed by the name of its
// field class.
type Tag uint8

const (
	Unknown Tag = iota
	StructProperty
	ObjectProperty
	SoftObjectProperty
	WeakObjectProperty
	LazyObjectProperty
	ClassProperty
	SoftClassProperty
	InterfaceProperty
	FloatProperty
	DoubleProperty
	ByteProperty
	BoolProperty
	Int8Property
	Int16Property
	IntProperty
	Int64Property
	UInt16Property
	UInt32Property
	UInt64Property
	NameProperty
	StrProperty
	TextProperty
	EnumProperty
	ArrayProperty
	SetProperty
	MapProperty
	DelegateProperty
	MulticastDelegateProperty
	MulticastInlineDelegateProperty
	MulticastSparseDelegateProperty
	tagCount
)

var tagNames = [tagCount]string{
	Unknown:                         "Unknown",
	StructProperty:                  "StructProperty",
	ObjectProperty:                  "ObjectProperty",
	SoftObjectProperty:              "SoftObjectProperty",
	WeakObjectProperty:              "WeakObjectProperty",
	LazyObjectProperty:              "LazyObjectProperty",
	ClassProperty:                   "ClassProperty",
	SoftClassProperty:               "SoftClassProperty",
	InterfaceProperty:               "InterfaceProperty",
	FloatProperty:                   "FloatProperty",
	DoubleProperty:                  "DoubleProperty",
	ByteProperty:                    "ByteProperty",
	BoolProperty:                    "BoolProperty",
	Int8Property:                    "Int8Property",
	Int16Property:                   "Int16Property",
	IntProperty:                     "IntProperty",
	Int64Property:                   "Int64Property",
	UInt16Property:                  "UInt16Property",
	UInt32Property:                  "UInt32Property",
	UInt64Property:                  "UInt64Property",
	NameProperty:                    "NameProperty",
	StrProperty:                     "StrProperty",
	TextProperty:                    "TextProperty",
	EnumProperty:                    "EnumProperty",
	ArrayProperty:                   "ArrayProperty",
	SetProperty:                     "SetProperty",
	MapProperty:                     "MapProperty",
	DelegateProperty:                "DelegateProperty",
	MulticastDelegateProperty:       "MulticastDelegateProperty",
	MulticastInlineDelegateProperty: "MulticastInlineDelegateProperty",
	MulticastSparseDelegateProperty: "MulticastSparseDelegateProperty",
}

var tagsByName = func() map[string]Tag {
	m := make(map[string]Tag, tagCount)
	for t := StructProperty; t < tagCount; t++ {
		m[tagNames[t]] = t
	}
	return m
}()

func (t Tag) String() string {
	if t >= tagCount {
		return tagNames[Unknown]
	}
	return tagNames[t]
}

// ParseTag returns the tag for a field class name, or Unknown.
func ParseTag(className string) Tag {
	return tagsByName[className]
}

// scalars maps the tags with a fixed type expression.
var scalars = map[Tag]string{
	FloatProperty:                   "float",
	DoubleProperty:                  "double",
	Int8Property:                    "int8_t",
	Int16Property:                   "int16_t",
	IntProperty:                     "int32_t",
	Int64Property:                   "int64_t",
	UInt16Property:                  "uint16_t",
	UInt32Property:                  "uint32_t",
	UInt64Property:                  "uint64_t",
	NameProperty:                    "struct FName",
	StrProperty:                     "struct FString",
	TextProperty:                    "struct FText",
	DelegateProperty:                "struct FDelegate",
	MulticastDelegateProperty:       "struct FMulticastDelegate",
	MulticastInlineDelegateProperty: "struct FMulticastInlineDelegate",
	MulticastSparseDelegateProperty: "struct FMulticastSparseDelegate",
}
