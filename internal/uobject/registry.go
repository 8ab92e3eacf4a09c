package uobject

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skdltmxn/uedump/memory"
)

// Kind identifies the reflection category of an object.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindObject
	KindField
	KindProperty
	KindStruct
	KindEnum
	KindFunction
	KindScriptStruct
	KindClass
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindField:
		return "field"
	case KindProperty:
		return "property"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindFunction:
		return "function"
	case KindScriptStruct:
		return "scriptstruct"
	case KindClass:
		return "class"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k := KindUnknown; k < kindCount; k++ {
		if k.String() == strings.ToLower(s) {
			return k, true
		}
	}
	return KindUnknown, false
}

// markerNames are the full names of the classes marking each kind.
var markerNames = [kindCount]string{
	KindObject:       "Class CoreUObject.Object",
	KindField:        "Class CoreUObject.Field",
	KindProperty:     "Class CoreUObject.Property",
	KindStruct:       "Class CoreUObject.Struct",
	KindEnum:         "Class CoreUObject.Enum",
	KindFunction:     "Class CoreUObject.Function",
	KindScriptStruct: "Class CoreUObject.ScriptStruct",
	KindClass:        "Class CoreUObject.Class",
}

// ActorName is the full name of the class whose descendants take the "A"
// prefix.
const ActorName = "Class Engine.Actor"

// Engines with FProperty no longer have a Property class.
var optionalMarkers = [kindCount]bool{KindProperty: true}

// ErrMarkerMissing indicates a required kind marker was not found.
var ErrMarkerMissing = errors.New("uobject: kind marker not found")

// Finder locates objects by full name.
type Finder interface {
	FindObject(fullName string) memory.Address
}

// Registry holds the kind markers of an address space. It is built once
// and read concurrently afterwards.
type Registry struct {
	s       *Space
	markers [kindCount]memory.Address
	actor   memory.Address
}

// NewRegistry resolves every kind marker through f.
func NewRegistry(s *Space, f Finder) (*Registry, error) {
	r := &Registry{s: s}

	var missing []string
	for k := KindObject; k < kindCount; k++ {
		r.markers[k] = f.FindObject(markerNames[k])
		if r.markers[k].IsNull() && !optionalMarkers[k] {
			missing = append(missing, markerNames[k])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMarkerMissing, strings.Join(missing, ", "))
	}

	r.actor = f.FindObject(ActorName)
	if r.actor.IsNull() {
		s.Log.Debug("actor class not found, using U prefix for all classes")
	}
	return r, nil
}

// Space returns the space the registry was resolved in.
func (r *Registry) Space() *Space { return r.s }

// Marker returns the class marking kind k.
func (r *Registry) Marker(k Kind) Class {
	if k >= kindCount {
		return Class{r.s.structAt(memory.Null)}
	}
	return Class{r.s.structAt(r.markers[k])}
}

// IsA reports whether o's class chain contains the marker of kind k.
func (r *Registry) IsA(o Object, k Kind) bool {
	if k == KindUnknown || k >= kindCount || r.markers[k].IsNull() {
		return false
	}
	for c := range o.Class().Supers() {
		if c.Addr() == r.markers[k] {
			return true
		}
	}
	return false
}

// Classify returns the most specific kind of o: the kind of the nearest
// marker on its class chain.
func (r *Registry) Classify(o Object) Kind {
	if o.IsNull() {
		return KindUnknown
	}
	for c := range o.Class().Supers() {
		for k := KindObject; k < kindCount; k++ {
			if !r.markers[k].IsNull() && c.Addr() == r.markers[k] {
				return k
			}
		}
	}
	return KindUnknown
}

// AsStruct returns o as a struct if it is one.
func (r *Registry) AsStruct(o Object) (Struct, bool) {
	return r.s.structAt(o.Addr()), r.IsA(o, KindStruct)
}

// AsClass returns o as a class if it is one.
func (r *Registry) AsClass(o Object) (Class, bool) {
	return Class{r.s.structAt(o.Addr())}, r.IsA(o, KindClass)
}

// AsScriptStruct returns o as a struct if it is a script struct.
func (r *Registry) AsScriptStruct(o Object) (Struct, bool) {
	return r.s.structAt(o.Addr()), r.IsA(o, KindScriptStruct)
}

// AsFunction returns o as a function if it is one.
func (r *Registry) AsFunction(o Object) (Function, bool) {
	return Function{r.s.structAt(o.Addr())}, r.IsA(o, KindFunction)
}

// AsEnum returns o as an enum if it is one.
func (r *Registry) AsEnum(o Object) (Enum, bool) {
	return Enum{Field{r.s.Object(o.Addr())}}, r.IsA(o, KindEnum)
}

// CppName returns the declaration name of o: classes deriving from Actor
// take "A", other classes "U", everything else "F".
func (r *Registry) CppName(o Object) string {
	prefix := "F"
	if r.IsA(o, KindClass) {
		prefix = ""
		for c := range r.s.structAt(o.Addr()).Supers() {
			if !r.actor.IsNull() && c.Addr() == r.actor {
				prefix = "A"
				break
			}
			if c.Addr() == r.markers[KindObject] {
				prefix = "U"
				break
			}
		}
	}
	return prefix + o.Name()
}
