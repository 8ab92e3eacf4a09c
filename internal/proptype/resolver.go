package proptype

import (
	"fmt"

	"github.com/skdltmxn/uedump/internal/uobject"
	"github.com/skdltmxn/uedump/memory"
)

// MaxDepth bounds the nesting of container element types.
const MaxDepth = 16

// Type is a resolved property type.
type Type struct {
	Tag  Tag
	Text string

	// Ref is the struct held by value, if any. Declarations holding a
	// struct by value depend on its definition.
	Ref memory.Address
}

// Resolver maps properties to type expressions.
type Resolver struct {
	reg *uobject.Registry
}

// New returns a Resolver naming types through reg.
func New(reg *uobject.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Resolve returns the type of p. Field classes without a rule resolve to
// the Unknown tag with the class name as text.
func (r *Resolver) Resolve(p uobject.Property) Type {
	return r.resolve(p, 0)
}

func (r *Resolver) resolve(p uobject.Property, depth int) Type {
	class := p.ClassName()
	unknown := Type{Tag: Unknown, Text: class}
	if depth > MaxDepth {
		return unknown
	}

	tag := ParseTag(class)
	if text, ok := scalars[tag]; ok {
		return Type{Tag: tag, Text: text}
	}

	switch tag {
	case BoolProperty:
		bp, _ := p.AsBool()
		if bp.IsNativeBool() {
			return Type{Tag: tag, Text: "bool"}
		}
		return Type{Tag: tag, Text: "char"}

	case ByteProperty:
		bp, _ := p.AsByte()
		if e := bp.Enum(); !e.IsNull() {
			return Type{Tag: tag, Text: "enum class " + e.Name()}
		}
		return Type{Tag: tag, Text: "uint8_t"}

	case EnumProperty:
		ep, _ := p.AsEnum()
		e := ep.Enum()
		if e.IsNull() {
			return unknown
		}
		return Type{Tag: tag, Text: "enum class " + e.Name()}

	case StructProperty:
		sp, _ := p.AsStruct()
		st := sp.Struct()
		if st.IsNull() {
			return unknown
		}
		return Type{Tag: tag, Text: "struct " + r.reg.CppName(st.Object), Ref: st.Addr()}

	case ObjectProperty:
		op, _ := p.AsObject()
		return Type{Tag: tag, Text: r.ref(op.PropertyClass()) + "*"}

	case SoftObjectProperty:
		op, _ := p.AsObject()
		return Type{Tag: tag, Text: "struct TSoftObjectPtr<" + r.ref(op.PropertyClass()) + ">"}

	case WeakObjectProperty:
		op, _ := p.AsObject()
		return Type{Tag: tag, Text: "struct TWeakObjectPtr<" + r.ref(op.PropertyClass()) + ">"}

	case LazyObjectProperty:
		op, _ := p.AsObject()
		return Type{Tag: tag, Text: "struct TLazyObjectPtr<" + r.ref(op.PropertyClass()) + ">"}

	case ClassProperty:
		cp, _ := p.AsClass()
		return Type{Tag: tag, Text: r.ref(cp.MetaClass()) + "*"}

	case SoftClassProperty:
		cp, _ := p.AsClass()
		return Type{Tag: tag, Text: "struct TSoftClassPtr<" + r.ref(cp.MetaClass()) + ">"}

	case InterfaceProperty:
		ip, _ := p.AsInterface()
		return Type{Tag: tag, Text: "struct TScriptInterface<" + r.ref(ip.InterfaceClass()) + ">"}

	case ArrayProperty:
		ap, _ := p.AsArray()
		inner := r.resolve(ap.Inner(), depth+1)
		return Type{Tag: tag, Text: "struct TArray<" + inner.Text + ">"}

	case SetProperty:
		sp, _ := p.AsSet()
		elem := r.resolve(sp.Element(), depth+1)
		return Type{Tag: tag, Text: "struct TSet<" + elem.Text + ">"}

	case MapProperty:
		mp, _ := p.AsMap()
		key := r.resolve(mp.Key(), depth+1)
		value := r.resolve(mp.Value(), depth+1)
		return Type{Tag: tag, Text: fmt.Sprintf("struct TMap<%s, %s>", key.Text, value.Text)}
	}

	return unknown
}

// ref renders a reference to class c; an absent class is void.
func (r *Resolver) ref(c uobject.Class) string {
	if c.IsNull() {
		return "void"
	}
	return "struct " + r.reg.CppName(c.Object)
}
