package sdk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/skdltmxn/uedump/internal/fixture"
	"github.com/skdltmxn/uedump/internal/logger"
	"github.com/skdltmxn/uedump/internal/uobject"
	"github.com/skdltmxn/uedump/memory"
	"github.com/skdltmxn/uedump/profile"
)

// engineWorld lays out a small Engine package: two classes, two script
// structs discovered out of dependency order, two enums and a struct that
// cannot be laid out.
func engineWorld() *fixture.World {
	w := fixture.New(nil)

	transform := w.ScriptStruct(w.Engine, "Transform", memory.Null, 0x18)
	vec := w.ScriptStruct(w.Engine, "Vector", memory.Null, 0xC)
	for i, axis := range []string{"X", "Y", "Z"} {
		w.AddProp(vec, fixture.Prop{Class: "FloatProperty", Name: axis, Offset: int32(i) * 4, ElementSize: 4})
	}
	w.AddProp(transform, fixture.Prop{Class: "StructProperty", Name: "Translation", Offset: 0, ElementSize: 0xC, Ref: vec})
	w.AddProp(transform, fixture.Prop{Class: "FloatProperty", Name: "Scale", Offset: 0x10, ElementSize: 4})

	light := w.Class(w.Engine, "Light", w.ActorClass, 0x230)
	w.AddProp(light, fixture.Prop{Class: "StructProperty", Name: "Location", Offset: 0x220, ElementSize: 0xC, Ref: vec})
	w.AddProp(light, fixture.Prop{Class: "BoolProperty", Name: "bOn", Offset: 0x22C, ElementSize: 1, FieldMask: 0x01})
	setOn := w.Function(light, "SetOn", uint32(uobject.FuncNative|uobject.FuncPublic), fixture.ModuleBase+0x1A2B3C)
	w.AddProp(setOn, fixture.Prop{Class: "BoolProperty", Name: "bEnable", ElementSize: 1, FieldMask: 0xFF, Flags: fixture.FlagParm})

	w.Enum(w.Engine, "ENetMode", "ENetMode::NM_Standalone", "ENetMode::NM_Client")
	w.Enum(w.Engine, "EEmpty")

	broken := w.ScriptStruct(w.Engine, "Broken", memory.Null, 8)
	w.AddProp(broken, fixture.Prop{Class: "IntProperty", Name: "Zero", Offset: 0, ElementSize: 0})

	empty := w.Package("/Script/Empty")
	w.Enum(empty, "ENothing")
	return w
}

func newFixtureFile(t *testing.T, w *fixture.World) *File {
	t.Helper()
	f, err := New(w.Buf, w.Roots(), WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

const wantClasses = `// Class Engine.Actor
// Size: 0x220 (Inherited: 0x28)
struct AActor : UObject {
	char UnknownData_28[0x1f8]; // 0x28(0x1f8)
};

// Class Engine.Light
// Size: 0x230 (Inherited: 0x220)
struct ALight : AActor {
	struct FVector Location; // 0x220(0x0c)
	char bOn : 1; // 0x22c(0x01)
	char UnknownData_22C_1 : 7; // 0x22c(0x01)
	char UnknownData_22D[0x3]; // 0x22d(0x03)

	void SetOn(bool bEnable); // Function Engine.Light.SetOn // Native|Public // @ game+0x1a2b3c
};

`

const wantStructs = `// Enum Engine.ENetMode
enum class ENetMode : uint8_t {
	NM_Standalone,
	NM_Client,
};

// ScriptStruct Engine.Vector
// Size: 0x0c (Inherited: 0x00)
struct FVector {
	float X; // 0x00(0x04)
	float Y; // 0x04(0x04)
	float Z; // 0x08(0x04)
};

// ScriptStruct Engine.Transform
// Size: 0x18 (Inherited: 0x00)
struct FTransform {
	struct FVector Translation; // 0x00(0x0c)
	char UnknownData_C[0x4]; // 0x0c(0x04)
	float Scale; // 0x10(0x04)
	char UnknownData_14[0x4]; // 0x14(0x04)
};

`

func TestDumpAndSave(t *testing.T) {
	f := newFixtureFile(t, engineWorld())

	engine, err := f.Package("Engine")
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	pkgs, err := f.Dump(context.Background(), 4, engine)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if len(pkgs) != 1 || pkgs[0] != engine {
		t.Fatalf("Dump() returned %d packages, want the Engine package", len(pkgs))
	}
	if engine.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", engine.Dropped)
	}
	if diff := cmp.Diff([]string{"Engine_classes.h", "Engine_struct.h"}, engine.Files()); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}

	dir := t.TempDir()
	if err := engine.Save(dir, f.Roots().ModuleBase); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	for file, want := range map[string]string{
		"Engine_classes.h": wantClasses,
		"Engine_struct.h":  wantStructs,
	} {
		got, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", file, err)
		}
		if diff := cmp.Diff(want, string(got)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", file, diff)
		}
	}
}

func TestDumpAllPackages(t *testing.T) {
	f := newFixtureFile(t, engineWorld())

	pkgs, err := f.Dump(context.Background(), 2)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	var got []string
	for _, p := range pkgs {
		got = append(got, p.Name)
	}
	if diff := cmp.Diff([]string{"CoreUObject", "Engine"}, got); diff != "" {
		t.Errorf("dumped packages mismatch (-want +got):\n%s", diff)
	}

	var all []string
	for _, p := range f.Packages() {
		all = append(all, p.Name)
	}
	if diff := cmp.Diff([]string{"CoreUObject", "Engine", "Empty"}, all); diff != "" {
		t.Errorf("Packages() mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpIsRepeatable(t *testing.T) {
	f := newFixtureFile(t, engineWorld())
	engine, err := f.Package("Engine")
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}

	if _, err := f.Dump(context.Background(), 1, engine); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	first := *engine
	if _, err := f.Dump(context.Background(), 1, engine); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if diff := cmp.Diff(first.Structs, engine.Structs); diff != "" {
		t.Errorf("Structs differ between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Classes, engine.Classes); diff != "" {
		t.Errorf("Classes differ between runs (-first +second):\n%s", diff)
	}
	if first.Dropped != engine.Dropped {
		t.Errorf("Dropped = %d, then %d", first.Dropped, engine.Dropped)
	}
}

func TestDumpCanceled(t *testing.T) {
	f := newFixtureFile(t, engineWorld())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Dump(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Dump() error = %v, want %v", err, context.Canceled)
	}
}

func TestDumpMissingMarker(t *testing.T) {
	w := fixture.New(nil)
	// Rename the enum class so its marker cannot be found.
	w.SetName(w.EnumClass.Add(w.Off.UObject.Name), "NotEnum", 0)
	f := newFixtureFile(t, w)

	if _, err := f.Dump(context.Background(), 1); !errors.Is(err, uobject.ErrMarkerMissing) {
		t.Errorf("Dump() error = %v, want %v", err, uobject.ErrMarkerMissing)
	}
}

func TestLookup(t *testing.T) {
	w := engineWorld()
	f := newFixtureFile(t, w)

	o, err := f.Lookup("Class Engine.Light")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got := o.FullName(); got != "Class Engine.Light" {
		t.Errorf("FullName() = %q", got)
	}
	if got, want := f.FindObject("Function Engine.Light.SetOn"), w.FindObject("Function Engine.Light.SetOn"); got != want || got.IsNull() {
		t.Errorf("FindObject() = %v, want %v", got, want)
	}

	if _, err := f.Lookup("Class Engine.Missing"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Lookup() error = %v, want %v", err, ErrObjectNotFound)
	}
	if _, err := f.Package("Missing"); !errors.Is(err, ErrPackageNotFound) {
		t.Errorf("Package() error = %v, want %v", err, ErrPackageNotFound)
	}
}

func TestOpenSnapshot(t *testing.T) {
	w := engineWorld()
	path := filepath.Join(t.TempDir(), "game.uesnap")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteSnapshot(out); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := Open(path, WithLogger(logger.Discard()), WithModuleBase(0x7FF600000000))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := &Info{
		Profile:     profile.DefaultName,
		ModuleBase:  0x7FF600000000,
		NamePool:    w.NamePool,
		ObjectArray: w.ObjectArray,
		Regions:     1,
		Objects:     len(w.Objects()),
	}
	if diff := cmp.Diff(want, f.Info()); diff != "" {
		t.Errorf("Info() mismatch (-want +got):\n%s", diff)
	}

	pkgs, err := f.Dump(context.Background(), 2)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if len(pkgs) != 2 {
		t.Errorf("Dump() returned %d packages, want 2", len(pkgs))
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := f.Dump(context.Background(), 1); !errors.Is(err, ErrFileClosed) {
		t.Errorf("Dump() after Close error = %v, want %v", err, ErrFileClosed)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.uesnap")); err == nil {
		t.Error("Open() of a missing file succeeded")
	}

	w := fixture.New(nil)
	roots := w.Roots()
	roots.Profile = "no-such-engine"
	if _, err := New(w.Buf, roots); !errors.Is(err, profile.ErrUnknownProfile) {
		t.Errorf("New() error = %v, want %v", err, profile.ErrUnknownProfile)
	}
}
