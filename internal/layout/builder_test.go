package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/skdltmxn/uedump/internal/fixture"
	"github.com/skdltmxn/uedump/internal/logger"
	"github.com/skdltmxn/uedump/internal/names"
	"github.com/skdltmxn/uedump/internal/uobject"
	"github.com/skdltmxn/uedump/memory"
)

type env struct {
	w   *fixture.World
	s   *uobject.Space
	reg *uobject.Registry
	b   *Builder
}

func setup(t *testing.T) *env {
	t.Helper()
	w := fixture.New(nil)
	mem := w.Accessor()
	s := uobject.NewSpace(mem, names.NewPool(mem, w.NamePool, w.Off), w.Off, logger.Discard())
	reg, err := uobject.NewRegistry(s, w)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return &env{w: w, s: s, reg: reg, b: NewBuilder(reg, logger.Discard())}
}

func (e *env) structAt(t *testing.T, addr memory.Address) uobject.Struct {
	t.Helper()
	st, ok := e.reg.AsStruct(e.s.Object(addr))
	if !ok {
		t.Fatalf("%v is not a struct", addr)
	}
	return st
}

func pad(off, size int32, name string) Member {
	return Member{Type: "char", Name: name, Offset: off, Size: size, ArrayDim: size, Padding: true}
}

func bitPad(off, width int32, name string) Member {
	return Member{Type: "char", Name: name, Offset: off, Size: 1, BitWidth: width, Padding: true}
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name  string
		super int32 // declared size of the super, 0 for none
		size  int32
		props []fixture.Prop
		want  []Member
	}{
		{
			name:  "no own members",
			super: 0x28,
			size:  0x28,
			want:  nil,
		},
		{
			name:  "int32 with trailing padding",
			super: 8,
			size:  16,
			props: []fixture.Prop{
				{Class: "IntProperty", Name: "Value", Offset: 8, ElementSize: 4},
			},
			want: []Member{
				{Type: "int32_t", Name: "Value", Offset: 8, Size: 4},
				pad(12, 4, "UnknownData_C"),
			},
		},
		{
			name: "leading gap",
			size: 12,
			props: []fixture.Prop{
				{Class: "IntProperty", Name: "Value", Offset: 4, ElementSize: 4},
			},
			want: []Member{
				pad(0, 4, "UnknownData_0"),
				{Type: "int32_t", Name: "Value", Offset: 4, Size: 4},
				pad(8, 4, "UnknownData_8"),
			},
		},
		{
			name: "adjacent bitfields closed before next member",
			size: 8,
			props: []fixture.Prop{
				{Class: "BoolProperty", Name: "bA", Offset: 0, ElementSize: 1, FieldMask: 0x01},
				{Class: "BoolProperty", Name: "bB", Offset: 0, ElementSize: 1, FieldMask: 0x02},
				{Class: "IntProperty", Name: "Count", Offset: 4, ElementSize: 4},
			},
			want: []Member{
				{Type: "char", Name: "bA", Offset: 0, Size: 1, BitWidth: 1},
				{Type: "char", Name: "bB", Offset: 0, Size: 1, BitWidth: 1},
				bitPad(0, 6, "UnknownData_0_2"),
				pad(1, 3, "UnknownData_1"),
				{Type: "int32_t", Name: "Count", Offset: 4, Size: 4},
			},
		},
		{
			name: "bitfield with low zero bits",
			size: 1,
			props: []fixture.Prop{
				{Class: "BoolProperty", Name: "bHigh", Offset: 0, ElementSize: 1, FieldMask: 0x08},
			},
			want: []Member{
				bitPad(0, 3, "UnknownData_0_0"),
				{Type: "char", Name: "bHigh", Offset: 0, Size: 1, BitWidth: 1},
				bitPad(0, 4, "UnknownData_0_4"),
			},
		},
		{
			name: "bitfields declared out of bit order",
			size: 1,
			props: []fixture.Prop{
				{Class: "BoolProperty", Name: "bB", Offset: 0, ElementSize: 1, FieldMask: 0x02},
				{Class: "BoolProperty", Name: "bA", Offset: 0, ElementSize: 1, FieldMask: 0x01},
			},
			want: []Member{
				bitPad(0, 1, "UnknownData_0_0"),
				{Type: "char", Name: "bB", Offset: 0, Size: 1, BitWidth: 1},
				{Type: "char", Name: "bA", Offset: 0, Size: 1, BitWidth: 1},
				bitPad(0, 5, "UnknownData_0_3"),
			},
		},
		{
			name: "bitfields in consecutive bytes",
			size: 2,
			props: []fixture.Prop{
				{Class: "BoolProperty", Name: "bA", Offset: 0, ElementSize: 1, FieldMask: 0x01},
				{Class: "BoolProperty", Name: "bB", Offset: 1, ElementSize: 1, FieldMask: 0x01},
			},
			want: []Member{
				{Type: "char", Name: "bA", Offset: 0, Size: 1, BitWidth: 1},
				bitPad(0, 7, "UnknownData_0_1"),
				{Type: "char", Name: "bB", Offset: 1, Size: 1, BitWidth: 1},
				bitPad(1, 7, "UnknownData_1_1"),
			},
		},
		{
			name: "native bool and static array",
			size: 0x14,
			props: []fixture.Prop{
				{Class: "BoolProperty", Name: "bEnabled", Offset: 0, ElementSize: 1, FieldMask: 0xFF},
				{Class: "IntProperty", Name: "Slots", Offset: 4, ElementSize: 4, ArrayDim: 4},
			},
			want: []Member{
				{Type: "bool", Name: "bEnabled", Offset: 0, Size: 1},
				pad(1, 3, "UnknownData_1"),
				{Type: "int32_t", Name: "Slots", Offset: 4, Size: 16, ArrayDim: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t)
			super := memory.Null
			if tt.super > 0 {
				super = e.w.ScriptStruct(e.w.CoreUObject, "Base", memory.Null, tt.super)
			}
			addr := e.w.ScriptStruct(e.w.CoreUObject, "Subject", super, tt.size)
			for _, p := range tt.props {
				e.w.AddProp(addr, p)
			}

			got, err := e.b.Struct(e.structAt(t, addr))
			if err != nil {
				t.Fatalf("Struct() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Members); diff != "" {
				t.Errorf("Members mismatch (-want +got):\n%s", diff)
			}
			if got.Size != tt.size || got.Inherited != tt.super {
				t.Errorf("Size, Inherited = %#x, %#x, want %#x, %#x", got.Size, got.Inherited, tt.size, tt.super)
			}
		})
	}
}

func TestStructErrors(t *testing.T) {
	tests := []struct {
		name    string
		super   int32
		size    int32
		props   []fixture.Prop
		wantErr error
	}{
		{name: "zero size", size: 0, wantErr: ErrEmpty},
		{
			name:    "zero member size",
			size:    8,
			props:   []fixture.Prop{{Class: "IntProperty", Name: "Broken", Offset: 0, ElementSize: 0}},
			wantErr: ErrMalformed,
		},
		{
			name:    "member larger than struct",
			size:    8,
			props:   []fixture.Prop{{Class: "IntProperty", Name: "Huge", Offset: 0, ElementSize: 4, ArrayDim: 3}},
			wantErr: ErrMalformed,
		},
		{
			name:    "non-contiguous mask",
			size:    1,
			props:   []fixture.Prop{{Class: "BoolProperty", Name: "bOdd", Offset: 0, ElementSize: 1, FieldMask: 0x05}},
			wantErr: ErrMalformed,
		},
		{
			name:    "zero mask",
			size:    1,
			props:   []fixture.Prop{{Class: "BoolProperty", Name: "bNone", Offset: 0, ElementSize: 1, FieldMask: 0}},
			wantErr: ErrMalformed,
		},
		{name: "inherits more than it declares", super: 0x10, size: 8, wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t)
			super := memory.Null
			if tt.super > 0 {
				super = e.w.ScriptStruct(e.w.CoreUObject, "Base", memory.Null, tt.super)
			}
			addr := e.w.ScriptStruct(e.w.CoreUObject, "Subject", super, tt.size)
			for _, p := range tt.props {
				e.w.AddProp(addr, p)
			}

			got, err := e.b.Struct(e.structAt(t, addr))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Struct() error = %v, want %v", err, tt.wantErr)
			}
			if got != nil {
				t.Errorf("Struct() = %+v, want nil", got)
			}
		})
	}
}

func TestStructIdempotent(t *testing.T) {
	e := setup(t)
	vec := e.w.ScriptStruct(e.w.CoreUObject, "Vector", memory.Null, 0xC)
	cls := e.w.Class(e.w.Engine, "Light", e.w.ActorClass, 0x240)
	e.w.AddProp(cls, fixture.Prop{Class: "StructProperty", Name: "Location", Offset: 0x220, ElementSize: 0xC, Ref: vec})
	e.w.AddProp(cls, fixture.Prop{Class: "BoolProperty", Name: "bOn", Offset: 0x22C, ElementSize: 1, FieldMask: 0x02})
	e.w.Function(cls, "TurnOn", uint32(uobject.FuncNative), fixture.ModuleBase+0x10)

	first, err := e.b.Struct(e.structAt(t, cls))
	if err != nil {
		t.Fatalf("Struct() error = %v", err)
	}
	second, err := e.b.Struct(e.structAt(t, cls))
	if err != nil {
		t.Fatalf("Struct() error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second Struct() differs (-first +second):\n%s", diff)
	}

	if first.Declaration() != "struct ALight : AActor" {
		t.Errorf("Declaration() = %q", first.Declaration())
	}
	if first.FullName != "Class Engine.Light" {
		t.Errorf("FullName = %q", first.FullName)
	}
	if diff := cmp.Diff([]memory.Address{e.w.ActorClass, vec}, first.Depends); diff != "" {
		t.Errorf("Depends mismatch (-want +got):\n%s", diff)
	}
}

func TestFunctions(t *testing.T) {
	e := setup(t)
	cls := e.w.Class(e.w.Engine, "Light", e.w.ActorClass, 0x240)

	set := e.w.Function(cls, "SetIntensity", uint32(uobject.FuncFinal|uobject.FuncNative|uobject.FuncPublic), fixture.ModuleBase+0x1234)
	e.w.AddProp(set, fixture.Prop{Class: "FloatProperty", Name: "NewIntensity", ElementSize: 4, Flags: fixture.FlagParm})
	e.w.AddProp(set, fixture.Prop{Class: "IntProperty", Name: "Slots", ElementSize: 4, ArrayDim: 2, Flags: fixture.FlagParm})
	e.w.AddProp(set, fixture.Prop{Class: "IntProperty", Name: "Local", ElementSize: 4})
	e.w.AddProp(set, fixture.Prop{Class: "BoolProperty", Name: "ReturnValue", ElementSize: 1, FieldMask: 0xFF, Flags: fixture.FlagParm | fixture.FlagReturnParm})

	e.w.Function(cls, "Toggle", uint32(uobject.FuncNative|uobject.FuncBlueprintCallable), 0x1000)
	e.w.AddProp(cls, fixture.Prop{Class: "FloatProperty", Name: "Intensity", Offset: 0x220, ElementSize: 4})

	got := e.b.Functions(e.structAt(t, cls))
	want := []Function{
		{
			FullName:   "Function Engine.Light.SetIntensity",
			Name:       "SetIntensity",
			ReturnType: "bool",
			Params: []Param{
				{Type: "float", Name: "NewIntensity", ArrayDim: 1},
				{Type: "int32_t", Name: "Slots", ArrayDim: 2},
			},
			Flags: uobject.FuncFinal | uobject.FuncNative | uobject.FuncPublic,
			Entry: fixture.ModuleBase + 0x1234,
		},
		{
			FullName:   "Function Engine.Light.Toggle",
			Name:       "Toggle",
			ReturnType: "void",
			Flags:      uobject.FuncNative | uobject.FuncBlueprintCallable,
			Entry:      0x1000,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Functions() mismatch (-want +got):\n%s", diff)
	}

	if s := got[0].Declaration(); s != "bool SetIntensity" {
		t.Errorf("Declaration() = %q", s)
	}
	if s := got[0].ParamList(); s != "float NewIntensity, int32_t* Slots" {
		t.Errorf("ParamList() = %q", s)
	}
	if off := got[0].Offset(fixture.ModuleBase); off != 0x1234 {
		t.Errorf("Offset() = %#x, want 0x1234", off)
	}
	if off := got[1].Offset(fixture.ModuleBase); off != 0 {
		t.Errorf("Offset() below module base = %#x, want 0", off)
	}
	if s := got[1].ParamList(); s != "" {
		t.Errorf("ParamList() = %q, want empty", s)
	}
}

func TestEnum(t *testing.T) {
	e := setup(t)
	mode := e.w.Enum(e.w.Engine, "ENetMode", "ENetMode::NM_Standalone", "NM_Client", "ENetMode::NM_MAX")
	empty := e.w.Enum(e.w.Engine, "EEmpty")

	en, _ := e.reg.AsEnum(e.s.Object(mode))
	got, err := e.b.Enum(en)
	if err != nil {
		t.Fatalf("Enum() error = %v", err)
	}
	want := &Enum{
		Addr:     mode,
		FullName: "Enum Engine.ENetMode",
		Name:     "ENetMode",
		Members:  []string{"NM_Standalone", "NM_Client", "NM_MAX"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Enum() mismatch (-want +got):\n%s", diff)
	}
	if got.Declaration() != "enum class ENetMode : uint8_t" {
		t.Errorf("Declaration() = %q", got.Declaration())
	}

	en, _ = e.reg.AsEnum(e.s.Object(empty))
	if _, err := e.b.Enum(en); !errors.Is(err, ErrEmpty) {
		t.Errorf("Enum() of empty enum error = %v, want %v", err, ErrEmpty)
	}
}

func TestMemberDeclaration(t *testing.T) {
	tests := []struct {
		m    Member
		want string
	}{
		{m: Member{Type: "int32_t", Name: "Value"}, want: "int32_t Value"},
		{m: Member{Type: "int32_t", Name: "Slots", ArrayDim: 16}, want: "int32_t Slots[0x10]"},
		{m: Member{Type: "char", Name: "bOn", BitWidth: 1}, want: "char bOn : 1"},
		{m: pad(0x1C, 1, "UnknownData_1C"), want: "char UnknownData_1C[0x1]"},
		{m: bitPad(0x30, 5, "UnknownData_30_3"), want: "char UnknownData_30_3 : 5"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.m.Declaration(); got != tt.want {
				t.Errorf("Declaration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMaskRun(t *testing.T) {
	tests := []struct {
		mask   uint8
		zeros  int32
		ones   int32
		wantOK bool
	}{
		{mask: 0x01, zeros: 0, ones: 1, wantOK: true},
		{mask: 0x80, zeros: 7, ones: 1, wantOK: true},
		{mask: 0x0C, zeros: 2, ones: 2, wantOK: true},
		{mask: 0xFF, zeros: 0, ones: 8, wantOK: true},
		{mask: 0xF0, zeros: 4, ones: 4, wantOK: true},
		{mask: 0x00},
		{mask: 0x05},
		{mask: 0x81},
	}

	for _, tt := range tests {
		zeros, ones, ok := maskRun(tt.mask)
		if ok != tt.wantOK || zeros != tt.zeros || ones != tt.ones {
			t.Errorf("maskRun(%#02x) = %d, %d, %v, want %d, %d, %v", tt.mask, zeros, ones, ok, tt.zeros, tt.ones, tt.wantOK)
		}
	}
}
