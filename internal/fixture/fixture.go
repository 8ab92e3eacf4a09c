// Package fixture builds synthetic engine address spaces for tests.
//
// A World lays out a name pool, a chunked object array, the core
// reflection classes and any packages, classes, structs, enums, functions
// and properties a test asks for, all at the offsets of a profile.
package fixture

import (
	"io"
	"strings"
	"unicode/utf16"

	"github.com/skdltmxn/uedump/memory"
	"github.com/skdltmxn/uedump/profile"
)

// Address layout of a world.
const (
	BufferBase memory.Address = 0x200000000
	ModuleBase memory.Address = 0x140000000

	ObjectSize     = 0x100
	FieldSize      = 0x100
	NameBlockSize  = 0x10000
	ChunkCapacity  = 1024
	fieldClassSize = 0x40
)

// Property flags understood by the function extractor.
const (
	FlagParm       uint64 = 0x80
	FlagReturnParm uint64 = 0x400
)

// Prop describes a property to lay out.
type Prop struct {
	Class       string
	Name        string
	Offset      int32
	ElementSize int32
	ArrayDim    int32 // zero means 1
	Flags       uint64
	FieldMask   uint8          // BoolProperty
	Ref         memory.Address // struct, class, enum or interface target
	MetaClass   memory.Address // ClassProperty
	Inner       memory.Address // array inner, set element or map key
	Value       memory.Address // map value
}

// World is a synthetic engine address space.
type World struct {
	Buf *memory.Buffer
	Off *profile.Offsets

	NamePool    memory.Address
	ObjectArray memory.Address

	CoreUObject memory.Address
	Engine      memory.Address

	ObjectClass       memory.Address
	FieldClass        memory.Address
	StructClass       memory.Address
	ClassClass        memory.Address
	ScriptStructClass memory.Address
	FunctionClass     memory.Address
	EnumClass         memory.Address
	PropertyClass     memory.Address
	PackageClass      memory.Address
	ActorClass        memory.Address

	nameBlock  memory.Address
	nameCursor uint32
	names      map[string]uint32

	chunk    memory.Address
	objects  []memory.Address
	objNames map[memory.Address]string

	fieldClasses map[string]memory.Address
	lastProp     map[memory.Address]memory.Address
	lastChild    map[memory.Address]memory.Address
}

// New creates a world using off, or the default profile when off is nil.
func New(off *profile.Offsets) *World {
	if off == nil {
		off = profile.Default()
	}
	w := &World{
		Buf:          memory.NewBuffer(BufferBase),
		Off:          off,
		names:        make(map[string]uint32),
		objNames:     make(map[memory.Address]string),
		fieldClasses: make(map[string]memory.Address),
		lastProp:     make(map[memory.Address]memory.Address),
		lastChild:    make(map[memory.Address]memory.Address),
	}

	w.NamePool = w.Buf.Alloc(int(off.NamePool.Blocks)+8*4, 8)
	w.nameBlock = w.Buf.Alloc(NameBlockSize, int(off.Stride))
	w.Buf.PutPtr(w.NamePool.Add(off.NamePool.Blocks), w.nameBlock)
	w.Name("None")

	w.ObjectArray = w.Buf.Alloc(0x20, 8)
	chunkTable := w.Buf.Alloc(8, 8)
	w.chunk = w.Buf.Alloc(ChunkCapacity*int(off.ObjectArray.ItemSize), 8)
	w.Buf.PutPtr(w.ObjectArray.Add(off.ObjectArray.Objects), chunkTable)
	w.Buf.PutPtr(chunkTable, w.chunk)

	w.bootstrap()
	return w
}

func (w *World) bootstrap() {
	w.CoreUObject = w.NewObject(memory.Null, memory.Null, "/Script/CoreUObject")

	w.ObjectClass = w.newStruct(memory.Null, w.CoreUObject, "Object", memory.Null, 0x28)
	w.FieldClass = w.newStruct(memory.Null, w.CoreUObject, "Field", w.ObjectClass, 0x30)
	w.StructClass = w.newStruct(memory.Null, w.CoreUObject, "Struct", w.FieldClass, 0xB0)
	w.ClassClass = w.newStruct(memory.Null, w.CoreUObject, "Class", w.StructClass, 0x230)
	w.ScriptStructClass = w.newStruct(memory.Null, w.CoreUObject, "ScriptStruct", w.StructClass, 0xC0)
	w.FunctionClass = w.newStruct(memory.Null, w.CoreUObject, "Function", w.StructClass, 0xE0)
	w.EnumClass = w.newStruct(memory.Null, w.CoreUObject, "Enum", w.FieldClass, 0x60)
	w.PropertyClass = w.newStruct(memory.Null, w.CoreUObject, "Property", w.FieldClass, 0x70)
	w.PackageClass = w.newStruct(memory.Null, w.CoreUObject, "Package", w.ObjectClass, 0x80)

	for _, cls := range []memory.Address{
		w.ObjectClass, w.FieldClass, w.StructClass, w.ClassClass, w.ScriptStructClass,
		w.FunctionClass, w.EnumClass, w.PropertyClass, w.PackageClass,
	} {
		w.Buf.PutPtr(cls.Add(w.Off.UObject.Class), w.ClassClass)
	}
	w.Buf.PutPtr(w.CoreUObject.Add(w.Off.UObject.Class), w.PackageClass)

	w.Engine = w.Package("/Script/Engine")
	w.ActorClass = w.Class(w.Engine, "Actor", w.ObjectClass, 0x220)
}

// Name interns s in the name pool and returns its index.
func (w *World) Name(s string) uint32 {
	if idx, ok := w.names[s]; ok {
		return idx
	}

	wide := false
	for _, r := range s {
		if r > 0x7F {
			wide = true
			break
		}
	}

	var data []byte
	length := len(s)
	if wide {
		units := utf16.Encode([]rune(s))
		length = len(units)
		data = make([]byte, 0, len(units)*2)
		for _, u := range units {
			data = append(data, byte(u), byte(u>>8))
		}
	} else {
		data = []byte(s)
	}

	idx := w.RawName(uint16(length), wide, data)
	w.names[s] = idx
	return idx
}

// RawName writes an entry with an arbitrary header and payload and returns
// its index.
func (w *World) RawName(length uint16, wide bool, data []byte) uint32 {
	off := w.Off
	entry := w.nameBlock.Add(w.nameCursor)

	info := length << off.FNameEntry.LenBitOffset
	if wide {
		info |= 1 << off.FNameEntry.WideBitOffset
	}
	w.Buf.PutU16(entry.Add(off.FNameEntry.InfoOffset), info)
	if len(data) > 0 {
		w.Buf.PutBytes(entry.Add(off.FNameEntry.HeaderSize), data)
	}

	idx := w.nameCursor / off.Stride
	size := off.FNameEntry.HeaderSize + uint32(len(data))
	w.nameCursor += (size + off.Stride - 1) &^ (off.Stride - 1)
	return idx
}

// SetName writes an FName referencing s at addr.
func (w *World) SetName(addr memory.Address, s string, number uint32) {
	w.Buf.PutU32(addr.Add(w.Off.FName.ComparisonIndex), w.Name(s))
	w.Buf.PutU32(addr.Add(w.Off.FName.Number), number)
}

// NewObject lays out an object and registers it in the object array.
func (w *World) NewObject(class, outer memory.Address, name string) memory.Address {
	off := w.Off
	addr := w.Buf.Alloc(ObjectSize, 8)
	index := uint32(len(w.objects))

	w.Buf.PutU32(addr.Add(off.UObject.Index), index)
	w.Buf.PutPtr(addr.Add(off.UObject.Class), class)
	w.SetName(addr.Add(off.UObject.Name), name, 0)
	w.Buf.PutPtr(addr.Add(off.UObject.Outer), outer)

	if index >= ChunkCapacity {
		panic("fixture: object array full")
	}
	w.Buf.PutPtr(w.chunk.Add(index*off.ObjectArray.ItemSize), addr)
	w.objects = append(w.objects, addr)
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	w.objNames[addr] = name
	w.Buf.PutU32(w.ObjectArray.Add(off.ObjectArray.NumElements), uint32(len(w.objects)))
	return addr
}

// Objects returns the registered objects in index order.
func (w *World) Objects() []memory.Address {
	return w.objects
}

// FullName composes the full name of the object at addr from the names the
// world assigned, following outers as they are currently stored.
func (w *World) FullName(addr memory.Address) string {
	mem := w.Accessor()
	name := w.objNames[addr]
	outer := mem.Ptr(addr.Add(w.Off.UObject.Outer))
	for i := 0; !outer.IsNull() && i < 64; i++ {
		name = w.objNames[outer] + "." + name
		outer = mem.Ptr(outer.Add(w.Off.UObject.Outer))
	}
	class := mem.Ptr(addr.Add(w.Off.UObject.Class))
	return w.objNames[class] + " " + name
}

// FindObject returns the first object whose full name is fullName, or Null.
func (w *World) FindObject(fullName string) memory.Address {
	for _, addr := range w.objects {
		if w.FullName(addr) == fullName {
			return addr
		}
	}
	return memory.Null
}

func (w *World) newStruct(class, outer memory.Address, name string, super memory.Address, size int32) memory.Address {
	addr := w.NewObject(class, outer, name)
	w.Buf.PutPtr(addr.Add(w.Off.UStruct.SuperStruct), super)
	w.Buf.PutU32(addr.Add(w.Off.UStruct.PropertiesSize), uint32(size))
	return addr
}

// Package creates a package object.
func (w *World) Package(name string) memory.Address {
	return w.NewObject(w.PackageClass, memory.Null, name)
}

// Class creates a class inside pkg.
func (w *World) Class(pkg memory.Address, name string, super memory.Address, size int32) memory.Address {
	return w.newStruct(w.ClassClass, pkg, name, super, size)
}

// ScriptStruct creates a script struct inside pkg.
func (w *World) ScriptStruct(pkg memory.Address, name string, super memory.Address, size int32) memory.Address {
	return w.newStruct(w.ScriptStructClass, pkg, name, super, size)
}

// Enum creates an enum inside pkg holding the given member names.
func (w *World) Enum(pkg memory.Address, name string, members ...string) memory.Address {
	off := w.Off
	addr := w.NewObject(w.EnumClass, pkg, name)

	stride := off.EnumNameStride()
	data := memory.Null
	if len(members) > 0 {
		data = w.Buf.Alloc(int(stride)*len(members), 8)
	}
	for i, m := range members {
		rec := data.Add(uint32(i) * stride)
		w.SetName(rec, m, 0)
		w.Buf.PutU64(rec.Add(stride-8), uint64(i))
	}

	names := addr.Add(off.UEnum.Names)
	w.Buf.PutPtr(names, data)
	w.Buf.PutU32(names.Add(8), uint32(len(members)))
	w.Buf.PutU32(names.Add(12), uint32(len(members)))
	return addr
}

// Function creates a function owned by owner and links it into the
// owner's children.
func (w *World) Function(owner memory.Address, name string, flags uint32, entry memory.Address) memory.Address {
	fn := w.newStruct(w.FunctionClass, owner, name, memory.Null, 0)
	w.Buf.PutU32(fn.Add(w.Off.UFunction.Flags), flags)
	w.Buf.PutPtr(fn.Add(w.Off.UFunction.FuncPtr), entry)
	w.AddChild(owner, fn)
	return fn
}

// AddChild appends field to the children of owner.
func (w *World) AddChild(owner, field memory.Address) {
	if last, ok := w.lastChild[owner]; ok {
		w.Buf.PutPtr(last.Add(w.Off.UField.Next), field)
	} else {
		w.Buf.PutPtr(owner.Add(w.Off.UStruct.Children), field)
	}
	w.lastChild[owner] = field
}

// FieldClassOf returns the field class object for name, creating it once.
func (w *World) FieldClassOf(name string) memory.Address {
	if addr, ok := w.fieldClasses[name]; ok {
		return addr
	}
	addr := w.Buf.Alloc(fieldClassSize, 8)
	w.SetName(addr.Add(w.Off.FFieldClass.Name), name, 0)
	w.fieldClasses[name] = addr
	return addr
}

// NewProp lays out a property without linking it anywhere.
func (w *World) NewProp(p Prop) memory.Address {
	off := w.Off
	addr := w.Buf.Alloc(FieldSize, 8)

	w.Buf.PutPtr(addr.Add(off.FField.Class), w.FieldClassOf(p.Class))
	w.SetName(addr.Add(off.FField.Name), p.Name, 0)

	dim := p.ArrayDim
	if dim == 0 {
		dim = 1
	}
	w.Buf.PutU32(addr.Add(off.FProperty.ArrayDim), uint32(dim))
	w.Buf.PutU32(addr.Add(off.FProperty.ElementSize), uint32(p.ElementSize))
	w.Buf.PutU64(addr.Add(off.FProperty.PropertyFlags), p.Flags)
	w.Buf.PutU32(addr.Add(off.FProperty.Offset), uint32(p.Offset))

	switch p.Class {
	case "BoolProperty":
		w.Buf.PutU8(addr.Add(off.FBoolProperty.FieldSize), 1)
		w.Buf.PutU8(addr.Add(off.FBoolProperty.ByteOffset), 0)
		w.Buf.PutU8(addr.Add(off.FBoolProperty.ByteMask), p.FieldMask)
		w.Buf.PutU8(addr.Add(off.FBoolProperty.FieldMask), p.FieldMask)
	case "ByteProperty":
		w.Buf.PutPtr(addr.Add(off.FByteProperty.Enum), p.Ref)
	case "StructProperty":
		w.Buf.PutPtr(addr.Add(off.FStructProperty.Struct), p.Ref)
	case "ObjectProperty", "SoftObjectProperty", "WeakObjectProperty", "LazyObjectProperty":
		w.Buf.PutPtr(addr.Add(off.FObjectPropertyBase.PropertyClass), p.Ref)
	case "ClassProperty", "SoftClassProperty":
		w.Buf.PutPtr(addr.Add(off.FObjectPropertyBase.PropertyClass), p.Ref)
		w.Buf.PutPtr(addr.Add(off.FClassProperty.MetaClass), p.MetaClass)
	case "InterfaceProperty":
		w.Buf.PutPtr(addr.Add(off.FInterfaceProperty.InterfaceClass), p.Ref)
	case "EnumProperty":
		w.Buf.PutPtr(addr.Add(off.FEnumProperty.Enum), p.Ref)
	case "ArrayProperty":
		w.Buf.PutPtr(addr.Add(off.FArrayProperty.Inner), p.Inner)
	case "SetProperty":
		w.Buf.PutPtr(addr.Add(off.FSetProperty.ElementProp), p.Inner)
	case "MapProperty":
		w.Buf.PutPtr(addr.Add(off.FMapProperty.KeyProp), p.Inner)
		w.Buf.PutPtr(addr.Add(off.FMapProperty.ValueProp), p.Value)
	}
	return addr
}

// AddProp lays out a property and appends it to the property chain of owner.
func (w *World) AddProp(owner memory.Address, p Prop) memory.Address {
	addr := w.NewProp(p)
	if last, ok := w.lastProp[owner]; ok {
		w.Buf.PutPtr(last.Add(w.Off.FField.Next), addr)
	} else {
		w.Buf.PutPtr(owner.Add(w.Off.UStruct.ChildProperties), addr)
	}
	w.lastProp[owner] = addr
	return addr
}

// Roots returns the entry points of the world.
func (w *World) Roots() memory.Roots {
	return memory.Roots{
		ModuleBase:  ModuleBase,
		NamePool:    w.NamePool,
		ObjectArray: w.ObjectArray,
		Profile:     w.Off.Name,
	}
}

// Accessor returns an accessor over the world's memory.
func (w *World) Accessor() *memory.Accessor {
	return memory.NewAccessor(w.Buf)
}

// WriteSnapshot writes the world as a snapshot file.
func (w *World) WriteSnapshot(out io.Writer) error {
	return memory.WriteSnapshot(out, w.Roots(), w.Buf.Chunk())
}
